package http

import (
	"log/slog"
	"net/http"

	"github.com/fjod/shopdesk/internal/units"
)

type QuoteHandler struct {
	products ProductService
	logger   *slog.Logger
}

func NewQuoteHandler(products ProductService, logger *slog.Logger) *QuoteHandler {
	return &QuoteHandler{products: products, logger: logger}
}

// Get answers "how much of this product does this money buy"
func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := q.Get("product_id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	p, err := h.products.Get(id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, units.QuoteFor(q.Get("amount"), p))
}
