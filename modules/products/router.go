package products

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/containercalc/containercalc/pkg/file"
	"github.com/containercalc/containercalc/pkg/handler"
	"github.com/containercalc/containercalc/pkg/logger"
)

// maxImageBytes caps product image uploads.
const maxImageBytes = 10 << 20 // 10 MiB

type productInput struct {
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
	WidthMM     int    `json:"width_mm"`
	HeightMM    int    `json:"height_mm"`
	DepthMM     int    `json:"depth_mm"`
	WeightG     int    `json:"weight_g"`
}

func (in productInput) apply(p *Product) {
	p.Name = in.Name
	p.SKU = in.SKU
	p.Description = in.Description
	p.PriceCents = in.PriceCents
	p.Currency = in.Currency
	p.WidthMM = in.WidthMM
	p.HeightMM = in.HeightMM
	p.DepthMM = in.DepthMM
	p.WeightG = in.WeightG
}

// Router mounts the product CRUD and image-upload endpoints. The caller is
// responsible for wrapping mutating routes in an auth middleware; requireAuth
// is applied by passing the middleware in.
func Router(repo Repository, images file.Storage, requireAuth func(http.Handler) http.Handler, log *slog.Logger) chi.Router {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	h := &handlers{repo: repo, images: images, log: log}

	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/{id}", h.get)

	r.Group(func(r chi.Router) {
		if requireAuth != nil {
			r.Use(requireAuth)
		}
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		r.Post("/{id}/image", h.uploadImage)
	})
	return r
}

type handlers struct {
	repo   Repository
	images file.Storage
	log    *slog.Logger
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to list products", logger.Error(err))
		handler.Error(w, http.StatusInternalServerError, "Failed to load products")
		return
	}
	if items == nil {
		items = []Product{}
	}
	handler.JSON(w, http.StatusOK, map[string]any{"products": items})
}

func (h *handlers) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]any{"product": p})
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if err := handler.Decode(r, &in); err != nil {
		handler.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var p Product
	in.apply(&p)
	if err := p.Validate(); err != nil {
		handler.ValidationFailed(w, err)
		return
	}

	if err := h.repo.Create(r.Context(), &p); err != nil {
		h.writeRepoError(w, r, err)
		return
	}
	handler.JSON(w, http.StatusCreated, map[string]any{"product": p})
}

func (h *handlers) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var in productInput
	if err := handler.Decode(r, &in); err != nil {
		handler.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, r, err)
		return
	}

	in.apply(p)
	if err := p.Validate(); err != nil {
		handler.ValidationFailed(w, err)
		return
	}

	if err := h.repo.Update(r.Context(), p); err != nil {
		h.writeRepoError(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]any{"product": p})
}

func (h *handlers) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, r, err)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.writeRepoError(w, r, err)
		return
	}

	// Image cleanup is best effort; an orphaned object is not worth a 500.
	if h.images != nil && p.ImageURL != "" {
		if err := h.images.Delete(r.Context(), imagePath(p.ID)); err != nil {
			h.log.WarnContext(r.Context(), "failed to delete product image",
				logger.ProductID(p.ID.String()), logger.Error(err))
		}
	}
	handler.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *handlers) uploadImage(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		handler.Error(w, http.StatusNotImplemented, "Image storage is not configured")
		return
	}

	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	f, header, err := r.FormFile("image")
	if err != nil {
		handler.Error(w, http.StatusBadRequest, "An image file is required")
		return
	}
	defer f.Close()

	contentType := header.Header.Get("Content-Type")
	if !file.IsAllowedImageType(contentType) {
		handler.Error(w, http.StatusUnsupportedMediaType, "Only JPEG, PNG, GIF, and WebP images are accepted")
		return
	}

	stored, err := h.images.Save(r.Context(), f, imagePath(p.ID), contentType)
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to store product image",
			logger.ProductID(p.ID.String()), logger.Error(err))
		handler.Error(w, http.StatusInternalServerError, "Failed to store image")
		return
	}

	p.ImageURL = stored.URL
	if err := h.repo.Update(r.Context(), p); err != nil {
		h.writeRepoError(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]any{"product": p})
}

func (h *handlers) productID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.Error(w, http.StatusBadRequest, "Invalid product id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *handlers) writeRepoError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrProductNotFound):
		handler.Error(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, ErrDuplicateSKU):
		handler.Error(w, http.StatusConflict, "A product with this SKU already exists")
	default:
		h.log.ErrorContext(r.Context(), "product operation failed", logger.Error(err))
		handler.Error(w, http.StatusInternalServerError, "Something went wrong")
	}
}

func imagePath(id uuid.UUID) string {
	return path.Join("products", fmt.Sprintf("%s.img", id))
}
