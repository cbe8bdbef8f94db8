package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loomstock/loomstock/internal/platform/db"
)

// Repository persists inventory data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional operations used by the service. All
// methods run on the same database transaction.
type TxRepository interface {
	GetInventoryForUpdate(ctx context.Context, productID int64) (Inventory, error)
	InsertMovement(ctx context.Context, m StockMovement) (int64, error)
	UpdateStockQuantity(ctx context.Context, productID, quantity int64) error
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("inventory repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// EnsureInventory creates the inventory row for a product if absent. Existing
// rows are left untouched.
func (r *Repository) EnsureInventory(ctx context.Context, productID, threshold int64) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO inventory (product_id, stock_quantity, low_stock_threshold)
VALUES ($1, 0, $2)
ON CONFLICT (product_id) DO NOTHING`, productID, threshold)
	return err
}

const itemColumns = `i.product_id, p.product_code, p.cloth_type, p.fabric_type, p.color, p.size_set, p.unit_price, i.stock_quantity, i.low_stock_threshold, i.updated_at`

// GetItem loads a single inventory row joined with its product.
func (r *Repository) GetItem(ctx context.Context, productID int64) (Item, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+itemColumns+`
FROM inventory i JOIN products p ON p.id = i.product_id
WHERE i.product_id = $1`, productID)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, ErrInventoryNotFound
		}
		return Item{}, err
	}
	return item, nil
}

// ListItems returns inventory for all active products ordered by product code.
func (r *Repository) ListItems(ctx context.Context) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+`
FROM inventory i JOIN products p ON p.id = i.product_id
WHERE p.is_active
ORDER BY p.product_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

// ListLowStock returns active items at or below their low-stock threshold.
func (r *Repository) ListLowStock(ctx context.Context) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+`
FROM inventory i JOIN products p ON p.id = i.product_id
WHERE p.is_active AND i.stock_quantity <= i.low_stock_threshold
ORDER BY i.stock_quantity ASC, p.product_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

// ListMovements returns ledger entries matching the filter, newest first.
func (r *Repository) ListMovements(ctx context.Context, filter MovementFilter) ([]StockMovement, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	rows, err := r.pool.Query(ctx, `SELECT m.id, m.product_id, p.product_code, m.movement_type, m.quantity, m.reason, m.notes, m.created_by, m.movement_date
FROM stock_movements m JOIN products p ON p.id = m.product_id
WHERE ($1 = 0 OR m.product_id = $1)
  AND ($2 = '' OR m.movement_type = $2)
  AND m.movement_date BETWEEN COALESCE($3, '-infinity') AND COALESCE($4, 'infinity')
ORDER BY m.movement_date DESC, m.id DESC
LIMIT $5`, filter.ProductID, string(filter.Type), nullTime(filter.From), nullTime(filter.To), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movements := []StockMovement{}
	for rows.Next() {
		var m StockMovement
		var notes *string
		if err := rows.Scan(&m.ID, &m.ProductID, &m.ProductCode, &m.Type, &m.Quantity, &m.Reason, &notes, &m.CreatedBy, &m.MovementDate); err != nil {
			return nil, err
		}
		if notes != nil {
			m.Notes = *notes
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movements, nil
}

// ProductsMissingInventory lists active products without an inventory row.
func (r *Repository) ProductsMissingInventory(ctx context.Context) ([]MissingInventory, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.id, p.product_code, p.created_at
FROM products p LEFT JOIN inventory i ON i.product_id = p.id
WHERE p.is_active AND i.id IS NULL
ORDER BY p.created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	missing := []MissingInventory{}
	for rows.Next() {
		var m MissingInventory
		if err := rows.Scan(&m.ProductID, &m.ProductCode, &m.CreatedAt); err != nil {
			return nil, err
		}
		missing = append(missing, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return missing, nil
}

func (r *txRepository) GetInventoryForUpdate(ctx context.Context, productID int64) (Inventory, error) {
	var inv Inventory
	err := r.tx.QueryRow(ctx, `SELECT id, product_id, stock_quantity, low_stock_threshold, created_at, updated_at
FROM inventory WHERE product_id = $1 FOR UPDATE`, productID).
		Scan(&inv.ID, &inv.ProductID, &inv.StockQuantity, &inv.LowStockThreshold, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Inventory{}, ErrInventoryNotFound
		}
		return Inventory{}, err
	}
	return inv, nil
}

func (r *txRepository) InsertMovement(ctx context.Context, m StockMovement) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO stock_movements (product_id, movement_type, quantity, reason, notes, created_by, movement_date)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		m.ProductID, string(m.Type), m.Quantity, string(m.Reason), nullString(m.Notes), m.CreatedBy, m.MovementDate).Scan(&id)
	return id, err
}

func (r *txRepository) UpdateStockQuantity(ctx context.Context, productID, quantity int64) error {
	tag, err := r.tx.Exec(ctx, `UPDATE inventory SET stock_quantity = $2, updated_at = NOW() WHERE product_id = $1`, productID, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInventoryNotFound
	}
	return nil
}

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	if err := row.Scan(&item.ProductID, &item.ProductCode, &item.ClothType, &item.FabricType, &item.Color, &item.SizeSet, &item.UnitPrice, &item.StockQuantity, &item.LowStockThreshold, &item.UpdatedAt); err != nil {
		return Item{}, err
	}
	return item, nil
}

func collectItems(rows pgx.Rows) ([]Item, error) {
	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
