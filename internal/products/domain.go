package products

import (
	"errors"
	"time"
)

// Product is a catalog entry. ProductCode is the business key; ID is
// system-assigned and immutable.
type Product struct {
	ID          int64
	ProductCode string
	ClothType   string
	FabricType  string
	Color       string
	SizeSet     string
	UnitPrice   *float64
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SearchFilter narrows catalog searches. Zero values mean "any".
type SearchFilter struct {
	ClothType  string
	FabricType string
	SizeSet    string
	Code       string
}

// ErrNotFound indicates no product matches the given code.
var ErrNotFound = errors.New("products: product not found")

// ErrDuplicateCode indicates the product_code is already taken.
var ErrDuplicateCode = errors.New("products: product code already exists")
