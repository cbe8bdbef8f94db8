package inventory

import (
	"errors"
	"fmt"
	"time"

	"github.com/loomstock/loomstock/internal/shared"
)

// MovementType enumerates supported stock movements.
type MovementType string

const (
	// MovementIn represents an inbound movement.
	MovementIn MovementType = "IN"
	// MovementOut represents an outbound movement.
	MovementOut MovementType = "OUT"
)

// Valid reports whether the movement type is known.
func (t MovementType) Valid() bool {
	return t == MovementIn || t == MovementOut
}

// MovementReason is the categorical tag for why a movement occurred.
type MovementReason string

const (
	ReasonPurchase   MovementReason = "PURCHASE"
	ReasonSale       MovementReason = "SALE"
	ReasonDamage     MovementReason = "DAMAGE"
	ReasonReturn     MovementReason = "RETURN"
	ReasonAdjustment MovementReason = "ADJUSTMENT"
)

// Valid reports whether the reason is one of the enumerated values.
func (r MovementReason) Valid() bool {
	switch r {
	case ReasonPurchase, ReasonSale, ReasonDamage, ReasonReturn, ReasonAdjustment:
		return true
	}
	return false
}

// Inventory holds the cached stock state for one product. StockQuantity must
// always equal the signed sum of the product's movement ledger.
type Inventory struct {
	ID                int64
	ProductID         int64
	StockQuantity     int64
	LowStockThreshold int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Item is an inventory row joined with its product for listings and reports.
type Item struct {
	ProductID         int64
	ProductCode       string
	ClothType         string
	FabricType        string
	Color             string
	SizeSet           string
	UnitPrice         *float64
	StockQuantity     int64
	LowStockThreshold int64
	UpdatedAt         time.Time
}

// StockMovement is an immutable ledger entry. Movements are never updated or
// deleted once written.
type StockMovement struct {
	ID           int64
	ProductID    int64
	ProductCode  string
	Type         MovementType
	Quantity     int64
	Reason       MovementReason
	Notes        string
	CreatedBy    string
	MovementDate time.Time
}

// MovementInput describes a requested stock movement. Actor is the
// authenticated identity performing the movement and is required.
type MovementInput struct {
	ProductID int64
	Type      MovementType
	Quantity  int64
	Reason    MovementReason
	Notes     string
	Actor     shared.Actor
}

// MovementFilter narrows movement queries.
type MovementFilter struct {
	ProductID int64
	Type      MovementType
	From      time.Time
	To        time.Time
	Limit     int
}

// MissingInventory identifies a product without an inventory row, left behind
// by a failed best-effort provisioning.
type MissingInventory struct {
	ProductID   int64
	ProductCode string
	CreatedAt   time.Time
}

// ErrInvalidMovementType indicates a movement type outside IN/OUT.
var ErrInvalidMovementType = errors.New("inventory: movement type must be IN or OUT")

// ErrInvalidQuantity indicates a non-positive movement quantity.
var ErrInvalidQuantity = errors.New("inventory: quantity must be a positive integer")

// ErrInvalidReason indicates an unknown movement reason.
var ErrInvalidReason = errors.New("inventory: unknown movement reason")

// ErrInventoryNotFound indicates the product has no inventory row.
var ErrInventoryNotFound = errors.New("inventory: no inventory record for product")

// ErrNegativeStock is returned when an override would set stock below zero.
var ErrNegativeStock = errors.New("inventory: stock quantity cannot be negative")

// InsufficientStockError rejects an OUT movement larger than the available
// stock. Available and Requested are always part of the message.
type InsufficientStockError struct {
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock. Available: %d, Requested: %d", e.Available, e.Requested)
}
