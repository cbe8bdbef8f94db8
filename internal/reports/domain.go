package reports

import "time"

// InventoryRow is the snapshot shape the aggregators consume. One row
// per active product with its inventory state joined in.
type InventoryRow struct {
	ProductID         int64
	ProductCode       string
	ClothType         string
	FabricType        string
	Color             string
	SizeSet           string
	UnitPrice         *float64
	StockQuantity     int64
	LowStockThreshold int64
}

// MovementRow is one ledger entry joined with its product code.
type MovementRow struct {
	ID           int64
	ProductID    int64
	ProductCode  string
	ClothType    string
	FabricType   string
	MovementType string
	Quantity     int64
	Reason       string
	Notes        string
	CreatedBy    string
	MovementDate time.Time
}

// InventorySummary is the top-level stock report.
type InventorySummary struct {
	TotalProducts   int                       `json:"totalProducts"`
	TotalStock      int64                     `json:"totalStock"`
	TotalValue      float64                   `json:"totalValue"`
	LowStockItems   int                       `json:"lowStockItems"`
	OutOfStockItems int                       `json:"outOfStockItems"`
	ByClothType     map[string]GroupBreakdown `json:"byClothType"`
	ByFabricType    map[string]GroupBreakdown `json:"byFabricType"`
	BySizeSet       map[string]GroupBreakdown `json:"bySizeSet"`
}

// GroupBreakdown aggregates one grouping bucket.
type GroupBreakdown struct {
	Count      int     `json:"count"`
	TotalStock int64   `json:"totalStock"`
	TotalValue float64 `json:"totalValue"`
}

// LowStockEntry is one row of the low stock report, ordered most
// urgent first.
type LowStockEntry struct {
	ProductCode       string  `json:"product_code"`
	ClothType         string  `json:"cloth_type"`
	FabricType        string  `json:"fabric_type"`
	Color             string  `json:"color"`
	SizeSet           string  `json:"size_set"`
	StockQuantity     int64   `json:"stock_quantity"`
	LowStockThreshold int64   `json:"low_stock_threshold"`
	UnitPrice         float64 `json:"unit_price"`
	Status            string  `json:"status"`
	Urgency           string  `json:"urgency"`
}

// MovementSummary aggregates a window of ledger entries.
type MovementSummary struct {
	TotalMovements     int64                      `json:"totalMovements"`
	TotalIn            int64                      `json:"totalIn"`
	TotalOut           int64                      `json:"totalOut"`
	MovementsByReason  map[string]int64           `json:"movementsByReason"`
	MovementsByProduct map[string]DirectionTotals `json:"movementsByProduct"`
}

// DirectionTotals splits quantities by ledger direction.
type DirectionTotals struct {
	In  int64 `json:"IN"`
	Out int64 `json:"OUT"`
}

// MovementReport pairs the summary with the raw window it was built
// from.
type MovementReport struct {
	Summary   MovementSummary `json:"summary"`
	Movements []MovementRow   `json:"movements"`
}

const (
	StatusInStock    = "In Stock"
	StatusLowStock   = "Low Stock"
	StatusOutOfStock = "Out of Stock"

	UrgencyCritical = "CRITICAL"
	UrgencyHigh     = "HIGH"
)

// StatusFor classifies a stock level. Zero is always out of stock,
// anything at or under the threshold is low.
func StatusFor(quantity, threshold int64) string {
	switch {
	case quantity == 0:
		return StatusOutOfStock
	case quantity <= threshold:
		return StatusLowStock
	default:
		return StatusInStock
	}
}
