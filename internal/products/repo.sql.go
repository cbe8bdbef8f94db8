package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists catalog data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `id, product_code, cloth_type, fabric_type, color, size_set, unit_price, description, is_active, created_at, updated_at`

// Insert creates a product and returns it with system-assigned fields.
func (r *Repository) Insert(ctx context.Context, p Product) (Product, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO products (product_code, cloth_type, fabric_type, color, size_set, unit_price, description, is_active)
VALUES ($1,$2,$3,$4,$5,$6,$7,TRUE)
RETURNING `+productColumns,
		p.ProductCode, p.ClothType, p.FabricType, p.Color, p.SizeSet, p.UnitPrice, nullString(p.Description))
	created, err := scanProduct(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Product{}, ErrDuplicateCode
		}
		return Product{}, err
	}
	return created, nil
}

// GetByCode loads an active product by its business key.
func (r *Repository) GetByCode(ctx context.Context, code string) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE product_code = $1 AND is_active`, code)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

// List returns all active products ordered by product code.
func (r *Repository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE is_active ORDER BY product_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

// Search filters active products.
func (r *Repository) Search(ctx context.Context, filter SearchFilter) ([]Product, error) {
	clauses := []string{"is_active"}
	args := []any{}
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("cloth_type", filter.ClothType)
	add("fabric_type", filter.FabricType)
	add("size_set", filter.SizeSet)
	if filter.Code != "" {
		args = append(args, "%"+filter.Code+"%")
		clauses = append(clauses, fmt.Sprintf("product_code ILIKE $%d", len(args)))
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY product_code`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

// Update saves mutable fields of a product identified by code.
func (r *Repository) Update(ctx context.Context, code string, p Product) (Product, error) {
	row := r.pool.QueryRow(ctx, `UPDATE products
SET cloth_type=$2, fabric_type=$3, color=$4, size_set=$5, unit_price=$6, description=$7, updated_at=NOW()
WHERE product_code = $1 AND is_active
RETURNING `+productColumns,
		code, p.ClothType, p.FabricType, p.Color, p.SizeSet, p.UnitPrice, nullString(p.Description))
	updated, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return updated, nil
}

// Deactivate soft-deletes a product. Ledger history and inventory rows are
// retained; the product simply leaves the catalog.
func (r *Repository) Deactivate(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE product_code = $1 AND is_active`, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	var description *string
	if err := row.Scan(&p.ID, &p.ProductCode, &p.ClothType, &p.FabricType, &p.Color, &p.SizeSet, &p.UnitPrice, &description, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Product{}, err
	}
	if description != nil {
		p.Description = *description
	}
	return p, nil
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
