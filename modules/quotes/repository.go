package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgRepository is the Postgres-backed quote repository.
type PgRepository struct {
	db *pgxpool.Pool
}

// NewPgRepository creates the repository. It panics on a nil pool.
func NewPgRepository(db *pgxpool.Pool) *PgRepository {
	if db == nil {
		panic("quotes: db pool is required")
	}
	return &PgRepository{db: db}
}

var _ Repository = (*PgRepository)(nil)

func (r *PgRepository) Create(ctx context.Context, q *Quote) error {
	q.ID = uuid.New()
	q.CreatedAt = time.Now()

	_, err := r.db.Exec(ctx,
		`INSERT INTO quotes (id, product_id, customer_email, quantity, total_cents,
		 currency, status, share_token, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		q.ID, q.ProductID, q.CustomerEmail, q.Quantity, q.TotalCents,
		q.Currency, q.Status, q.ShareToken, q.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Quote, error) {
	var q Quote
	err := r.db.QueryRow(ctx,
		`SELECT id, product_id, customer_email, quantity, total_cents, currency,
		 status, share_token, created_at
		 FROM quotes WHERE id = $1`, id,
	).Scan(&q.ID, &q.ProductID, &q.CustomerEmail, &q.Quantity, &q.TotalCents,
		&q.Currency, &q.Status, &q.ShareToken, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("get quote: %w", err)
	}
	return &q, nil
}

func (r *PgRepository) RecordEvent(ctx context.Context, e *QuoteEvent) error {
	e.ID = uuid.New()
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO quote_events (id, quote_id, kind, method, occurred_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.QuoteID, e.Kind, e.Method, e.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("record quote event: %w", err)
	}
	return nil
}
