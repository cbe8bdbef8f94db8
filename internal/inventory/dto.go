package inventory

import "time"

// CreateMovementRequest is the movement creation body. created_by is always
// derived from the authenticated identity, never from the client.
type CreateMovementRequest struct {
	ProductID    int64  `json:"product_id" validate:"required,gt=0"`
	MovementType string `json:"movement_type" validate:"required,oneof=IN OUT"`
	Quantity     int64  `json:"quantity" validate:"required,gt=0"`
	Reason       string `json:"reason" validate:"required,oneof=PURCHASE SALE DAMAGE RETURN ADJUSTMENT"`
	Notes        string `json:"notes,omitempty" validate:"max=500"`
}

// UpdateStockRequest is the direct stock override body. Quantity is a pointer
// so zero survives decoding; negative values are rejected by the service
// before any write.
type UpdateStockRequest struct {
	Quantity *int64 `json:"quantity" validate:"required"`
}

// CreateInventoryRequest provisions an inventory row manually.
type CreateInventoryRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

// MovementResponse serialises a ledger entry.
type MovementResponse struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"product_id"`
	ProductCode  string    `json:"product_code,omitempty"`
	MovementType string    `json:"movement_type"`
	Quantity     int64     `json:"quantity"`
	Reason       string    `json:"reason"`
	Notes        string    `json:"notes,omitempty"`
	CreatedBy    string    `json:"created_by"`
	MovementDate time.Time `json:"movement_date"`
}

// ItemResponse serialises an inventory row with its product.
type ItemResponse struct {
	ProductID         int64     `json:"product_id"`
	ProductCode       string    `json:"product_code"`
	ClothType         string    `json:"cloth_type"`
	FabricType        string    `json:"fabric_type"`
	Color             string    `json:"color"`
	SizeSet           string    `json:"size_set"`
	UnitPrice         *float64  `json:"unit_price"`
	StockQuantity     int64     `json:"stock_quantity"`
	LowStockThreshold int64     `json:"low_stock_threshold"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// MissingInventoryResponse serialises a reconciliation row.
type MissingInventoryResponse struct {
	ProductID   int64     `json:"product_id"`
	ProductCode string    `json:"product_code"`
	CreatedAt   time.Time `json:"created_at"`
}

func toMovementResponse(m StockMovement) MovementResponse {
	return MovementResponse{
		ID:           m.ID,
		ProductID:    m.ProductID,
		ProductCode:  m.ProductCode,
		MovementType: string(m.Type),
		Quantity:     m.Quantity,
		Reason:       string(m.Reason),
		Notes:        m.Notes,
		CreatedBy:    m.CreatedBy,
		MovementDate: m.MovementDate,
	}
}

func toMovementResponses(movements []StockMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toMovementResponse(m))
	}
	return out
}

func toItemResponse(item Item) ItemResponse {
	return ItemResponse{
		ProductID:         item.ProductID,
		ProductCode:       item.ProductCode,
		ClothType:         item.ClothType,
		FabricType:        item.FabricType,
		Color:             item.Color,
		SizeSet:           item.SizeSet,
		UnitPrice:         item.UnitPrice,
		StockQuantity:     item.StockQuantity,
		LowStockThreshold: item.LowStockThreshold,
		UpdatedAt:         item.UpdatedAt,
	}
}

func toItemResponses(items []Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toItemResponse(item))
	}
	return out
}
