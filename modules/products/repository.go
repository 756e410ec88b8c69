package products

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/containercalc/containercalc/pkg/pg"
)

const productColumns = `id, name, sku, description, price_cents, currency,
	width_mm, height_mm, depth_mm, weight_g, image_url, created_at, updated_at`

// PgRepository is the Postgres-backed product repository.
type PgRepository struct {
	db *pgxpool.Pool
}

// NewPgRepository creates the repository. It panics on a nil pool.
func NewPgRepository(db *pgxpool.Pool) *PgRepository {
	if db == nil {
		panic("products: db pool is required")
	}
	return &PgRepository{db: db}
}

var _ Repository = (*PgRepository)(nil)

func (r *PgRepository) Create(ctx context.Context, p *Product) error {
	now := time.Now()
	p.ID = uuid.New()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.Exec(ctx,
		`INSERT INTO products (`+productColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.Name, p.SKU, p.Description, p.PriceCents, p.Currency,
		p.WidthMM, p.HeightMM, p.DepthMM, p.WeightG, p.ImageURL, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrDuplicateSKU
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

func (r *PgRepository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

func (r *PgRepository) Update(ctx context.Context, p *Product) error {
	p.UpdatedAt = time.Now()

	tag, err := r.db.Exec(ctx,
		`UPDATE products SET name = $2, sku = $3, description = $4, price_cents = $5,
		 currency = $6, width_mm = $7, height_mm = $8, depth_mm = $9, weight_g = $10,
		 image_url = $11, updated_at = $12
		 WHERE id = $1`,
		p.ID, p.Name, p.SKU, p.Description, p.PriceCents, p.Currency,
		p.WidthMM, p.HeightMM, p.DepthMM, p.WeightG, p.ImageURL, p.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrDuplicateSKU
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *PgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Name, &p.SKU, &p.Description, &p.PriceCents, &p.Currency,
		&p.WidthMM, &p.HeightMM, &p.DepthMM, &p.WeightG, &p.ImageURL,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}
