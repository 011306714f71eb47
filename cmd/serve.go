package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mateusmacedo/go-fleet/internal/config"
	"github.com/mateusmacedo/go-fleet/internal/fleet"
	pkgApp "github.com/mateusmacedo/go-fleet/pkg/application"
	pkgInfra "github.com/mateusmacedo/go-fleet/pkg/infrastructure"
	"github.com/mateusmacedo/go-fleet/pkg/infrastructure/tracing"
	zapAdapter "github.com/mateusmacedo/go-fleet/pkg/infrastructure/zaplogger/adapter"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the fleet HTTP service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			envFiles, _ := cmd.Flags().GetStringSlice("env-file")
			cfg, err := config.Load(envFiles...)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	logger, syncLogger, err := zapAdapter.NewZapAppLogger(zapAdapter.Options{
		App:   cfg.ServiceName,
		Level: cfg.LogLevel,
		File:  cfg.LogFile,
	})
	if err != nil {
		return err
	}
	defer func() { _ = syncLogger() }()

	shutdownTracing, err := tracing.Setup(ctx, cfg.ServiceName, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	eventBus, closeTransport, err := newEventBus(ctx, cfg, logger)
	if err != nil {
		pkgApp.LogError(ctx, logger, "failed to start event transport", err, map[string]interface{}{"transport": cfg.EventTransport})
		return err
	}
	defer func() { _ = closeTransport() }()

	journal, closeJournal, err := newJournal(cfg, logger)
	if err != nil {
		pkgApp.LogError(ctx, logger, "failed to open journal", err, map[string]interface{}{"driver": cfg.JournalDriver})
		return err
	}
	defer func() { _ = closeJournal() }()

	slice := fleet.NewFleetSlice(fleet.Dependencies{
		Logger:      logger,
		IDGenerator: pkgInfra.GenerateUUID,
		EventBus:    eventBus,
		Journal:     journal,
	})

	router := chi.NewRouter()
	router.Use(middleware.RequestID, requestLogger(logger), middleware.Recoverer)
	slice.RegisterRoutes(router)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pkgApp.LogInfo(gctx, logger, "server starting", map[string]interface{}{
			"addr":      cfg.HTTPAddr,
			"transport": cfg.EventTransport,
			"journal":   cfg.JournalDriver,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		pkgApp.LogInfo(context.Background(), logger, "shutting down server", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		pkgApp.LogError(context.Background(), logger, "server stopped with error", err, nil)
		return err
	}
	pkgApp.LogInfo(context.Background(), logger, "server stopped", nil)
	return nil
}

// requestLogger copies chi's request ID into the context so every log line
// of a request carries it.
func requestLogger(logger pkgApp.AppLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := zapAdapter.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
			pkgApp.LogDebug(ctx, logger, "request received", map[string]interface{}{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
