package products

import "time"

// CreateProductRequest is the catalog entry body.
type CreateProductRequest struct {
	ProductCode string   `json:"product_code" validate:"required,max=20"`
	ClothType   string   `json:"cloth_type" validate:"required,oneof=DRESS BLOUSE SKIRT TOP PANTS"`
	FabricType  string   `json:"fabric_type" validate:"required,oneof=COTTON SILK DENIM LINEN POLYESTER WOOL"`
	Color       string   `json:"color" validate:"required,max=50"`
	SizeSet     string   `json:"size_set" validate:"required,oneof=STANDARD PLUS"`
	UnitPrice   *float64 `json:"unit_price,omitempty" validate:"omitempty,gte=0"`
	Description string   `json:"description,omitempty" validate:"max=500"`
}

// UpdateProductRequest carries the replacement field values for a product.
// product_code itself is immutable.
type UpdateProductRequest struct {
	ClothType   string   `json:"cloth_type" validate:"required,oneof=DRESS BLOUSE SKIRT TOP PANTS"`
	FabricType  string   `json:"fabric_type" validate:"required,oneof=COTTON SILK DENIM LINEN POLYESTER WOOL"`
	Color       string   `json:"color" validate:"required,max=50"`
	SizeSet     string   `json:"size_set" validate:"required,oneof=STANDARD PLUS"`
	UnitPrice   *float64 `json:"unit_price,omitempty" validate:"omitempty,gte=0"`
	Description string   `json:"description,omitempty" validate:"max=500"`
}

// ProductResponse serialises a catalog entry.
type ProductResponse struct {
	ID          int64     `json:"id"`
	ProductCode string    `json:"product_code"`
	ClothType   string    `json:"cloth_type"`
	FabricType  string    `json:"fabric_type"`
	Color       string    `json:"color"`
	SizeSet     string    `json:"size_set"`
	UnitPrice   *float64  `json:"unit_price"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toProductResponse(p Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		ProductCode: p.ProductCode,
		ClothType:   p.ClothType,
		FabricType:  p.FabricType,
		Color:       p.Color,
		SizeSet:     p.SizeSet,
		UnitPrice:   p.UnitPrice,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProductResponses(list []Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toProductResponse(p))
	}
	return out
}
