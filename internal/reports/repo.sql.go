package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InventorySnapshot returns one row per active product with its
// current stock state.
func (r *Repository) InventorySnapshot(ctx context.Context) ([]InventoryRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.product_code, p.cloth_type, p.fabric_type, p.color, p.size_set,
		       p.unit_price, i.stock_quantity, i.low_stock_threshold
		FROM products p
		JOIN inventory i ON i.product_id = p.id
		WHERE p.is_active
		ORDER BY p.product_code`)
	if err != nil {
		return nil, fmt.Errorf("reports: inventory snapshot: %w", err)
	}
	defer rows.Close()

	var out []InventoryRow
	for rows.Next() {
		var row InventoryRow
		err := rows.Scan(
			&row.ProductID, &row.ProductCode, &row.ClothType, &row.FabricType,
			&row.Color, &row.SizeSet, &row.UnitPrice, &row.StockQuantity,
			&row.LowStockThreshold,
		)
		if err != nil {
			return nil, fmt.Errorf("reports: scan snapshot row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// MovementWindow returns ledger entries in [from, to], optionally
// filtered by movement type, newest first. A zero from or to leaves
// that side of the window open.
func (r *Repository) MovementWindow(ctx context.Context, from, to time.Time, movementType string) ([]MovementRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.product_id, p.product_code, p.cloth_type, p.fabric_type,
		       m.movement_type, m.quantity, m.reason, COALESCE(m.notes, ''),
		       m.created_by, m.movement_date
		FROM stock_movements m
		JOIN products p ON p.id = m.product_id
		WHERE m.movement_date BETWEEN COALESCE($1, '-infinity'::timestamptz)
		                          AND COALESCE($2, 'infinity'::timestamptz)
		  AND ($3 = '' OR m.movement_type = $3)
		ORDER BY m.movement_date DESC`,
		nullTime(from), nullTime(to), movementType)
	if err != nil {
		return nil, fmt.Errorf("reports: movement window: %w", err)
	}
	defer rows.Close()

	out, err := collectMovements(rows)
	if err != nil {
		return nil, err
	}
	return out, rows.Err()
}

func collectMovements(rows pgx.Rows) ([]MovementRow, error) {
	var out []MovementRow
	for rows.Next() {
		var row MovementRow
		err := rows.Scan(
			&row.ID, &row.ProductID, &row.ProductCode, &row.ClothType,
			&row.FabricType, &row.MovementType, &row.Quantity, &row.Reason,
			&row.Notes, &row.CreatedBy, &row.MovementDate,
		)
		if err != nil {
			return nil, fmt.Errorf("reports: scan movement row: %w", err)
		}
		out = append(out, row)
	}
	return out, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
