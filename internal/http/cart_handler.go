package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/shopdesk/internal/cart"
	"github.com/fjod/shopdesk/internal/domain"
	"github.com/fjod/shopdesk/internal/receipt"
	"github.com/fjod/shopdesk/internal/session"
	"github.com/fjod/shopdesk/internal/units"
)

type CartHandler struct {
	cart     *cart.Calculator
	products ProductService
	receipts receipt.Publisher
	logger   *slog.Logger
	timeout  time.Duration
}

func NewCartHandler(c *cart.Calculator, products ProductService, receipts receipt.Publisher, logger *slog.Logger, timeout time.Duration) *CartHandler {
	return &CartHandler{
		cart:     c,
		products: products,
		receipts: receipts,
		logger:   logger,
		timeout:  timeout,
	}
}

type AddLineRequestDTO struct {
	ProductID string `json:"product_id"`
}

type UpdateQuantityRequestDTO struct {
	Quantity float64 `json:"quantity"`
}

type UpdateAmountRequestDTO struct {
	Amount float64 `json:"amount"`
}

type LineResponse struct {
	domain.CartLine
	Display string `json:"display"`
}

type CartResponse struct {
	Lines []LineResponse `json:"lines"`
	Total float64        `json:"total"`
}

func newLineResponse(l domain.CartLine) LineResponse {
	return LineResponse{CartLine: l, Display: units.Format(l.Quantity, l.Unit)}
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	lines, total := h.cart.Snapshot()
	resp := CartResponse{Lines: make([]LineResponse, len(lines)), Total: total}
	for i, l := range lines {
		resp.Lines[i] = newLineResponse(l)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	var req AddLineRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	p, err := h.products.Get(req.ProductID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, newLineResponse(h.cart.AddLine(p)))
}

func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	line, err := h.cart.SetQuantity(chi.URLParam(r, "product_id"), req.Quantity)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newLineResponse(line))
}

func (h *CartHandler) SetAmount(w http.ResponseWriter, r *http.Request) {
	var req UpdateAmountRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	line, err := h.cart.SetAmount(chi.URLParam(r, "product_id"), req.Amount)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newLineResponse(line))
}

func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.RemoveLine(chi.URLParam(r, "product_id")); err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Checkout decrements stock and announces the bill. A failed announcement is logged,
// the stock change has already happened and is not rolled back.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := session.MustUser(r.Context())

	bill, err := h.cart.Checkout(ctx)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	if err := h.receipts.Publish(ctx, bill); err != nil {
		h.logger.Warn("failed to publish receipt", "bill_id", bill.ID, "error", err)
	}
	h.logger.Info("receipt issued", "bill_id", bill.ID, "cashier", user.Email)

	respondJSON(w, http.StatusOK, bill)
}
