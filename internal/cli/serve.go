package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/cimillas/ticket-ledger/internal/clock"
	"github.com/cimillas/ticket-ledger/internal/config"
	"github.com/cimillas/ticket-ledger/internal/telemetry"
	transporthttp "github.com/cimillas/ticket-ledger/internal/transport/http"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API on PORT using the configured store driver.

Postgres migrations are applied on startup unless --skip-migrations is set.
SIGINT and SIGTERM trigger a graceful shutdown bounded by SHUTDOWN_TIMEOUT.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts, skipMigrations)
		},
	}

	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply postgres migrations on startup")
	return cmd
}

func runServe(ctx context.Context, opts *RootOptions, skipMigrations bool) error {
	cfg, logger := opts.Config, opts.Logger

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelURL, cfg.ServiceName)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.WithError(err).Warn("tracing shutdown")
		}
	}()

	backend, err := OpenBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	if cfg.StoreDriver == config.DriverPostgres && !skipMigrations {
		applied, err := backend.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		if len(applied) > 0 {
			logger.WithField("migrations", applied).Info("migrations applied")
		}
	}

	services := Services(backend, cfg, clock.NewSystem(), logger)
	handler := transporthttp.NewAPI(transporthttp.NewHandler(services, logger), cfg.CORSOrigins, cfg.ServiceName)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.WithFields(logrus.Fields{
		"port":   cfg.Port,
		"driver": cfg.StoreDriver,
	}).Info("api listening")

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
