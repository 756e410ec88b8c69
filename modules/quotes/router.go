package quotes

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"

	"github.com/containercalc/containercalc/modules/products"
	"github.com/containercalc/containercalc/pkg/handler"
	"github.com/containercalc/containercalc/pkg/logger"
	"github.com/containercalc/containercalc/pkg/qrcode"
)

// Config holds the quote module settings.
type Config struct {
	// ShareBaseURL is the origin shared quote links are built on.
	ShareBaseURL string `env:"QUOTE_SHARE_BASE_URL" envDefault:"http://localhost:8080"`
	// QRSize is the pixel size of generated QR codes.
	QRSize int `env:"QUOTE_QR_SIZE" envDefault:"256"`
}

// ProductCatalog is the product lookup needed to price quotes.
// products.Repository satisfies it.
type ProductCatalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (*products.Product, error)
}

type createQuoteRequest struct {
	ProductID     string `json:"product_id"`
	CustomerEmail string `json:"customer_email"`
	Quantity      int    `json:"quantity"`
}

func (r createQuoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.Required, is.UUID),
		validation.Field(&r.CustomerEmail, validation.Required, is.Email),
		validation.Field(&r.Quantity, validation.Required, validation.Min(1)),
	)
}

// Router mounts the quote endpoints.
func Router(repo Repository, catalog ProductCatalog, cfg Config, log *slog.Logger) chi.Router {
	h := newHandlers(repo, catalog, cfg, log)

	r := chi.NewRouter()
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Get("/{id}/qr", h.shareQR)
	return r
}

// TrackingRouter mounts the engagement-tracking endpoints. Mount it under
// /api so the paths are /api/track-quote-view and /api/track-quote-share.
func TrackingRouter(repo Repository, log *slog.Logger) chi.Router {
	h := newHandlers(repo, nil, Config{}, log)

	r := chi.NewRouter()
	r.Post("/track-quote-view", h.trackView)
	r.Post("/track-quote-share", h.trackShare)
	return r
}

type handlers struct {
	repo    Repository
	catalog ProductCatalog
	cfg     Config
	log     *slog.Logger
}

func newHandlers(repo Repository, catalog ProductCatalog, cfg Config, log *slog.Logger) *handlers {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &handlers{repo: repo, catalog: catalog, cfg: cfg, log: log}
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	var req createQuoteRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		handler.ValidationFailed(w, err)
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		handler.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	product, err := h.catalog.GetByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, products.ErrProductNotFound) {
			handler.Error(w, http.StatusNotFound, "Product not found")
			return
		}
		h.log.ErrorContext(r.Context(), "product lookup failed", logger.Error(err))
		handler.Error(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	token, err := shareToken()
	if err != nil {
		h.log.ErrorContext(r.Context(), "share token generation failed", logger.Error(err))
		handler.Error(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	quote := &Quote{
		ProductID:     product.ID,
		CustomerEmail: req.CustomerEmail,
		Quantity:      req.Quantity,
		TotalCents:    product.PriceCents * int64(req.Quantity),
		Currency:      product.Currency,
		Status:        StatusPending,
		ShareToken:    token,
	}
	if err := h.repo.Create(r.Context(), quote); err != nil {
		h.log.ErrorContext(r.Context(), "quote creation failed", logger.Error(err))
		handler.Error(w, http.StatusInternalServerError, "Failed to create quote")
		return
	}
	handler.JSON(w, http.StatusCreated, map[string]any{"quote": quote})
}

func (h *handlers) get(w http.ResponseWriter, r *http.Request) {
	quote, ok := h.loadQuote(w, r)
	if !ok {
		return
	}
	handler.JSON(w, http.StatusOK, map[string]any{"quote": quote})
}

// shareQR answers a PNG QR code pointing at the quote's share URL.
func (h *handlers) shareQR(w http.ResponseWriter, r *http.Request) {
	quote, ok := h.loadQuote(w, r)
	if !ok {
		return
	}

	png, err := qrcode.Generate(h.shareURL(quote), h.cfg.QRSize)
	if err != nil {
		h.log.ErrorContext(r.Context(), "QR generation failed",
			logger.QuoteID(quote.ID.String()), logger.Error(err))
		handler.Error(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", fmt.Sprint(len(png)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

type trackRequest struct {
	QuoteID string `json:"quoteId"`
	Method  string `json:"method"`
}

func (h *handlers) trackView(w http.ResponseWriter, r *http.Request) {
	h.track(w, r, EventView)
}

func (h *handlers) trackShare(w http.ResponseWriter, r *http.Request) {
	h.track(w, r, EventShare)
}

// track records one engagement event. Responses are never cacheable, a
// missing quoteId is a 400, a storage failure a 500, success 200 with
// {"success": true}.
func (h *handlers) track(w http.ResponseWriter, r *http.Request, kind string) {
	handler.NoStore(w)

	var req trackRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.Error(w, http.StatusBadRequest, "Quote ID is required")
		return
	}
	if req.QuoteID == "" {
		handler.Error(w, http.StatusBadRequest, "Quote ID is required")
		return
	}

	event := &QuoteEvent{QuoteID: req.QuoteID, Kind: kind}
	if kind == EventShare {
		event.Method = req.Method
		if event.Method == "" {
			event.Method = "unknown"
		}
	}

	if err := h.repo.RecordEvent(r.Context(), event); err != nil {
		h.log.ErrorContext(r.Context(), "failed to record quote event",
			logger.QuoteID(req.QuoteID), logger.Event(kind), logger.Error(err))
		handler.Error(w, http.StatusInternalServerError, "Failed to track quote "+kind)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *handlers) loadQuote(w http.ResponseWriter, r *http.Request) (*Quote, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.Error(w, http.StatusBadRequest, "Invalid quote id")
		return nil, false
	}

	quote, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrQuoteNotFound) {
			handler.Error(w, http.StatusNotFound, "Quote not found")
			return nil, false
		}
		h.log.ErrorContext(r.Context(), "quote lookup failed", logger.Error(err))
		handler.Error(w, http.StatusInternalServerError, "Something went wrong")
		return nil, false
	}
	return quote, true
}

func (h *handlers) shareURL(q *Quote) string {
	base := h.cfg.ShareBaseURL
	if base == "" {
		base = "http://localhost:8080"
	}
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		u = &url.URL{Scheme: "http", Host: "localhost:8080"}
	}
	u.Path = "/quotes/share/" + q.ShareToken
	return u.String()
}

func shareToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
