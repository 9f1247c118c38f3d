package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/fjod/shopdesk/internal/cart"
	"github.com/fjod/shopdesk/internal/domain"
	h "github.com/fjod/shopdesk/internal/http"
	"github.com/fjod/shopdesk/internal/receipt"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, appCtx)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	cfg := a.cfg
	logger := a.logger

	var receipts receipt.Publisher = receipt.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		receipts = receipt.NewKafkaPublisher(logger, cfg.KafkaBrokers...)
	}
	defer receipts.Close()

	unsubscribe := a.catalog.Subscribe(func(products []domain.Product) {
		for _, p := range products {
			if p.Stock < cfg.LowStockThreshold {
				logger.Warn("low stock", "product_id", p.ID, "name", p.Name, "stock", p.Stock)
			}
		}
	})
	defer unsubscribe()

	router := h.NewRouter(h.RouterConfig{
		Products:          a.catalog,
		Cart:              cart.NewCalculator(a.catalog, logger),
		Gate:              a.gate,
		Receipts:          receipts,
		Storage:           a.kv,
		Logger:            logger,
		RequestTimeout:    cfg.RequestTimeout,
		LowStockThreshold: cfg.LowStockThreshold,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "shopdesk"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// requests arriving before this finishes are held by the session middleware
	g.Go(func() error {
		if err := a.gate.Rehydrate(gCtx); err != nil {
			logger.Warn("session rehydration failed, starting logged out", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("shopdesk starting", "port", cfg.HTTPPort, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
		return err
	}
	logger.Info("server exited")
	return nil
}
