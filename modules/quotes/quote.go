package quotes

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Quote statuses.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusExpired  = "expired"
)

// Event kinds recorded by the tracking endpoints.
const (
	EventView  = "view"
	EventShare = "share"
)

// Quote prices a quantity of a single product. TotalCents is computed from
// the product price at creation time and does not follow later price edits.
type Quote struct {
	ID            uuid.UUID `json:"id"`
	ProductID     uuid.UUID `json:"product_id"`
	CustomerEmail string    `json:"customer_email"`
	Quantity      int       `json:"quantity"`
	TotalCents    int64     `json:"total_cents"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	ShareToken    string    `json:"share_token"`
	CreatedAt     time.Time `json:"created_at"`
}

// QuoteEvent is one recorded view or share. QuoteID is kept as an opaque
// string so tracking accepts ids from older quote systems without a lookup.
type QuoteEvent struct {
	ID         uuid.UUID `json:"id"`
	QuoteID    string    `json:"quote_id"`
	Kind       string    `json:"kind"`
	Method     string    `json:"method,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

var (
	// ErrQuoteNotFound is returned for unknown quote ids.
	ErrQuoteNotFound = errors.New("quote not found")
)

// Repository persists quotes and their event log.
type Repository interface {
	Create(ctx context.Context, q *Quote) error
	GetByID(ctx context.Context, id uuid.UUID) (*Quote, error)
	RecordEvent(ctx context.Context, e *QuoteEvent) error
}
