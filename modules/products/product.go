package products

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
)

// Product is a catalog item. Dimensions are millimetres, weight grams, and
// price minor units of Currency.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	SKU         string    `json:"sku"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	Currency    string    `json:"currency"`
	WidthMM     int       `json:"width_mm"`
	HeightMM    int       `json:"height_mm"`
	DepthMM     int       `json:"depth_mm"`
	WeightG     int       `json:"weight_g"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks the product fields ahead of persistence.
func (p Product) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.SKU, validation.Required, validation.Length(1, 64)),
		validation.Field(&p.Currency, validation.Required, validation.Length(3, 3)),
		validation.Field(&p.PriceCents, validation.Min(int64(0))),
		validation.Field(&p.WidthMM, validation.Min(0)),
		validation.Field(&p.HeightMM, validation.Min(0)),
		validation.Field(&p.DepthMM, validation.Min(0)),
		validation.Field(&p.WeightG, validation.Min(0)),
	)
}

var (
	// ErrProductNotFound is returned for unknown product ids.
	ErrProductNotFound = errors.New("product not found")
	// ErrDuplicateSKU is returned when a SKU is already taken.
	ErrDuplicateSKU = errors.New("sku already exists")
)

// Repository is the persistence behind the product module.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}
