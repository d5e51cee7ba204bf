package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/assigner/internal/adapters/http/api"
	"github.com/okian/assigner/internal/adapters/http/swagger"
	service "github.com/okian/assigner/internal/app"
	"github.com/okian/assigner/internal/config"
	"github.com/okian/assigner/internal/domain/model"
	"github.com/okian/assigner/internal/domain/scoring"
	"github.com/okian/assigner/internal/domain/types"
	"github.com/okian/assigner/pkg/logger"
	"github.com/okian/assigner/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, loggerInstance); err != nil {
		loggerInstance.Error(ctx, "server failed", logger.Error(err))
		os.Exit(1)
	}
}

// run serves the API until ctx is cancelled, then shuts down gracefully.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	handler, closer, err := newHandler(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closer.Close()

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}

// newHandler wires the scorer, the service and every route. The returned
// closer stops the service and releases the scorer's resources.
func newHandler(ctx context.Context, cfg *config.Config, log logger.Logger) (http.Handler, io.Closer, error) {
	metrics.Setup(
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithNamespace(cfg.MetricsNamespace),
	)

	settings := scoring.SettingsFromConfig(cfg)
	settings.Logger = log.Named("scoring")
	scorer, scorerCloser, err := scoring.Build(ctx, settings)
	if err != nil {
		return nil, nil, err
	}

	svc := service.New(
		service.WithLogger(log.Named("service")),
		service.WithScorer(scorer),
		service.WithBulkConcurrency(cfg.BulkConcurrency),
	)
	if err := svc.Start(ctx); err != nil {
		_ = scorerCloser.Close()
		return nil, nil, err
	}

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)

	api.NewServer(svc,
		api.WithMaxCandidates(cfg.MaxCandidates),
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
		api.WithMaxBulkRequests(cfg.MaxBulkRequests),
		api.WithDefaults(types.Defaults{
			Priority:      model.Priority(cfg.DefaultPriority),
			DeadlineHours: cfg.DefaultDeadlineHours,
		}),
		api.WithLogger(log.Named("api")),
	).Register(ctx, mux)

	closer := closerFunc(func() error {
		svc.Stop()
		return scorerCloser.Close()
	})
	return mux, closer, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
