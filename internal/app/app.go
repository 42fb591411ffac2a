// Package app wires configuration, storage, domain services, and the HTTP
// server into a running ordertext instance.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/allforyou/ordertext/internal/domain/order"
	"github.com/allforyou/ordertext/internal/domain/template"
	"github.com/allforyou/ordertext/internal/handler"
	"github.com/allforyou/ordertext/internal/storage/file"
	"github.com/allforyou/ordertext/internal/storage/memory"
	"github.com/allforyou/ordertext/internal/storage/postgres"
	"github.com/allforyou/ordertext/pkg/clipboard"
	"github.com/allforyou/ordertext/pkg/health"
	"github.com/allforyou/ordertext/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("backend", cfg.Storage.Backend),
	)

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	repo, cleanup, err := openRepository(ctx, lg, cfg, healthSvc)
	if err != nil {
		return err
	}
	defer cleanup()

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	orderSvc := order.NewService(repo)
	engine := template.New()

	var clip clipboard.Copier
	if cfg.Clipboard.Enabled {
		clip = clipboard.NewSystem()
	}

	h := handler.New(orderSvc, engine, clip)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", h.Routes())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins: cfg.CORS.Origins,
				AllowHeaders: []string{"Content-Type"},
				MaxAge:       86400,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// openRepository constructs the configured storage backend and registers its
// readiness checks. The returned cleanup releases backend resources.
func openRepository(ctx context.Context, lg *zap.Logger, cfg *Config, healthSvc *health.Health) (order.Repository, func(), error) {
	switch cfg.Storage.Backend {
	case BackendMemory:
		return memory.New(), func() {}, nil

	case BackendFile:
		store, err := openFileStore(lg, cfg)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil

	case BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, errors.Wrap(err, "run migrations")
		}
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
		return postgres.NewStore(pool), pool.Close, nil

	default:
		return nil, nil, errors.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// openFileStore opens the order blob. An unreadable blob is fatal unless
// recovery is enabled, in which case the blob is moved aside with a
// timestamped suffix and the store starts empty.
func openFileStore(lg *zap.Logger, cfg *Config) (*file.Store, error) {
	store, err := file.Open(cfg.Storage.Path)
	if err == nil {
		lg.Info("Order blob loaded",
			zap.String("path", cfg.Storage.Path),
			zap.Int("orders", store.Len()),
		)
		return store, nil
	}

	var corrupt *order.CorruptStoreError
	if !errors.As(err, &corrupt) {
		return nil, errors.Wrap(err, "open order store")
	}
	if !cfg.Storage.Recover {
		return nil, errors.Wrap(err, "open order store (re-run with -recover to move the blob aside)")
	}

	aside := fmt.Sprintf("%s.corrupt-%d", cfg.Storage.Path, time.Now().Unix())
	if renameErr := os.Rename(cfg.Storage.Path, aside); renameErr != nil {
		return nil, errors.Wrap(renameErr, "move corrupt blob aside")
	}
	lg.Warn("Corrupt order blob moved aside, starting empty",
		zap.String("path", cfg.Storage.Path),
		zap.String("moved_to", aside),
		zap.Error(corrupt),
	)
	return file.Open(cfg.Storage.Path)
}
