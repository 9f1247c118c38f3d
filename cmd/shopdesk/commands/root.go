package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fjod/shopdesk/internal/catalog"
	"github.com/fjod/shopdesk/internal/config"
	"github.com/fjod/shopdesk/internal/session"
	"github.com/fjod/shopdesk/internal/storage"
)

// app is the state shared by every subcommand, built once in PersistentPreRunE
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	kv      storage.Store
	catalog *catalog.Store
	gate    *session.Gate
	out     io.Writer
}

var (
	appCtx        *app
	storageDriver string
)

func Execute() error {
	return newRootCmd(os.Stdout).ExecuteContext(context.Background())
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "shopdesk",
		Short:        "Shop inventory, billing and quote backend",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), out)
			if err != nil {
				return err
			}
			appCtx = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if appCtx == nil {
				return nil
			}
			err := appCtx.kv.Close()
			appCtx = nil
			return err
		},
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&storageDriver, "storage", "", "storage driver, overrides STORAGE_DRIVER (memory, file, sqlite, postgres, redis, mongo)")

	root.AddCommand(serveCmd(), productsCmd(), quoteCmd(), loginCmd(), logoutCmd(), sessionCmd())
	return root
}

func newApp(ctx context.Context, out io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if storageDriver != "" {
		cfg.StorageDriver = storageDriver
	}

	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	kv, err := storage.Open(ctx, cfg.StorageOptions(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.StorageDriver, err)
	}

	products := catalog.New(kv, logger)
	if err := products.Load(ctx); err != nil {
		kv.Close()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		kv:      kv,
		catalog: products,
		gate:    session.NewGate(kv, logger),
		out:     out,
	}, nil
}
