package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/shopdesk/internal/domain"
)

// ProductService is the catalog surface exposed over HTTP
type ProductService interface {
	List() []domain.Product
	Search(term string) []domain.Product
	LowStock(threshold float64) []domain.Product
	Get(id string) (domain.Product, error)
	Add(ctx context.Context, in domain.ProductInput) (domain.Product, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error)
	Remove(ctx context.Context, id string) error
}

type ProductHandler struct {
	products          ProductService
	logger            *slog.Logger
	timeout           time.Duration
	lowStockThreshold float64
}

func NewProductHandler(products ProductService, logger *slog.Logger, timeout time.Duration, lowStockThreshold float64) *ProductHandler {
	return &ProductHandler{
		products:          products,
		logger:            logger,
		timeout:           timeout,
		lowStockThreshold: lowStockThreshold,
	}
}

type ProductsResponse struct {
	Products []domain.Product `json:"products"`
}

// List returns the whole catalog, or the name matches when ?search= is set
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var products []domain.Product
	if term := r.URL.Query().Get("search"); term != "" {
		products = h.products.Search(term)
	} else {
		products = h.products.List()
	}
	respondJSON(w, http.StatusOK, &ProductsResponse{Products: products})
}

func (h *ProductHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	threshold := h.lowStockThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			respondError(w, http.StatusBadRequest, "invalid_threshold", "threshold must be a non-negative number")
			return
		}
		threshold = v
	}
	respondJSON(w, http.StatusOK, &ProductsResponse{Products: h.products.LowStock(threshold)})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var in domain.ProductInput
	if !decodeJSON(w, r, &in) {
		return
	}

	p, err := h.products.Add(ctx, in)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var patch domain.ProductPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	p, err := h.products.Update(ctx, chi.URLParam(r, "id"), patch)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.products.Remove(ctx, chi.URLParam(r, "id")); err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
