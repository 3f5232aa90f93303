package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/taskbounty/internal/adapters/http/api"
	"github.com/okian/taskbounty/internal/adapters/http/swagger"
	"github.com/okian/taskbounty/internal/adapters/remote"
	service "github.com/okian/taskbounty/internal/app"
	"github.com/okian/taskbounty/internal/config"
	"github.com/okian/taskbounty/internal/domain/request"
	"github.com/okian/taskbounty/pkg/logger"
	"github.com/okian/taskbounty/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	// writeTimeout covers a full auction run, which waits on the decision service.
	writeTimeout              = 3 * time.Minute
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logs: " + err.Error() + "\n")
		}
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "dashboard stopped with error", logger.Error(err))
		stop()
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log := logger.Get()

	// Load configuration (defaults -> optional file -> .env -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store := newStore(cfg, log)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, store, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info(gctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("base_url", cfg.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info(ctx, "shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(ctx, "server shutdown failed", logger.Error(err))
			return err
		}
		return nil
	})

	g.Go(func() error {
		startSystemMetricsUpdater(gctx)
		return nil
	})

	if cfg.LoadDemoOnStart {
		g.Go(func() error {
			store.RunDemo(gctx, cfg.DefaultSeed, cfg.DefaultRounds)
			return nil
		})
	}

	err = g.Wait()
	log.Info(ctx, "server stopped")
	return err
}

func newStore(cfg *config.Config, log logger.Logger) *service.Store {
	client := remote.New(cfg.BaseURL,
		remote.WithTimeout(cfg.RequestTimeout()),
		remote.WithLogger(log.Named("remote")),
	)
	return service.New(client,
		service.WithLogger(log.Named("store")),
		service.WithDiscardStale(cfg.DiscardStale),
	)
}

// newHandler registers the dashboard and docs routes and wraps them with the router middleware.
func newHandler(ctx context.Context, cfg *config.Config, store *service.Store, log logger.Logger) http.Handler {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)

	server := api.NewServer(store, store,
		api.WithDefaults(api.Defaults{Form: defaultForm(cfg)}),
		api.WithLogger(log.Named("http")),
	)
	server.Register(ctx, mux)
	return api.Handler(mux)
}

// defaultForm is the task form seeded with the configured demo parameters.
func defaultForm(cfg *config.Config) request.Form {
	f := request.DefaultForm()
	f.Seed = cfg.DefaultSeed
	f.Rounds = cfg.DefaultRounds
	return f
}

// startSystemMetricsUpdater updates system metrics until ctx is done.
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
