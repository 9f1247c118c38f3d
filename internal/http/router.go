package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sony/gobreaker/v2"

	"github.com/fjod/shopdesk/internal/cart"
	"github.com/fjod/shopdesk/internal/receipt"
	"github.com/fjod/shopdesk/internal/session"
	"github.com/fjod/shopdesk/internal/storage"
)

type RouterConfig struct {
	Products          ProductService
	Cart              *cart.Calculator
	Gate              *session.Gate
	Receipts          receipt.Publisher
	Storage           storage.Store // optional, reported by /health
	Logger            *slog.Logger
	RequestTimeout    time.Duration
	LowStockThreshold float64
}

func NewRouter(cfg RouterConfig) http.Handler {
	receipts := cfg.Receipts
	if receipts == nil {
		receipts = receipt.NopPublisher{}
	}

	sessionHandler := NewSessionHandler(cfg.Gate, cfg.Logger, cfg.RequestTimeout)
	productHandler := NewProductHandler(cfg.Products, cfg.Logger, cfg.RequestTimeout, cfg.LowStockThreshold)
	cartHandler := NewCartHandler(cfg.Cart, cfg.Products, receipts, cfg.Logger, cfg.RequestTimeout)
	quoteHandler := NewQuoteHandler(cfg.Products, cfg.Logger)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", healthHandler(cfg.Storage))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Get("/", sessionHandler.Get)
			r.Post("/login", sessionHandler.Login)
			r.Post("/logout", sessionHandler.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireSession(cfg.Gate))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", productHandler.List)
				r.Post("/", productHandler.Create)
				r.Get("/low-stock", productHandler.LowStock)
				r.Get("/{id}", productHandler.Get)
				r.Patch("/{id}", productHandler.Update)
				r.Delete("/{id}", productHandler.Delete)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.Get)
				r.Delete("/", cartHandler.Clear)
				r.Post("/lines", cartHandler.AddLine)
				r.Put("/lines/{product_id}/quantity", cartHandler.SetQuantity)
				r.Put("/lines/{product_id}/amount", cartHandler.SetAmount)
				r.Delete("/lines/{product_id}", cartHandler.RemoveLine)
				r.Post("/checkout", cartHandler.Checkout)
			})

			r.Get("/quote", quoteHandler.Get)
		})
	})

	return r
}

// healthHandler reports unavailable while the storage breaker is open
func healthHandler(kv storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]string{"status": "ok"}
		if bs, ok := kv.(*storage.BreakerStore); ok {
			state := bs.State()
			resp["storage"] = state.String()
			if state == gobreaker.StateOpen {
				resp["status"] = "degraded"
				respondJSON(w, http.StatusServiceUnavailable, resp)
				return
			}
		}
		respondJSON(w, http.StatusOK, resp)
	}
}
