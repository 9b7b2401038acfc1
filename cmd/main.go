package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/arcade/internal/adapters/http/api"
	"github.com/okian/arcade/internal/adapters/http/site"
	"github.com/okian/arcade/internal/adapters/http/swagger"
	"github.com/okian/arcade/internal/adapters/upstream"
	"github.com/okian/arcade/internal/app"
	"github.com/okian/arcade/internal/client"
	"github.com/okian/arcade/internal/config"
	"github.com/okian/arcade/internal/telemetry"
	"github.com/okian/arcade/pkg/logger"
	"github.com/okian/arcade/pkg/metrics"
)

// HTTP server timeout constants. There is no write timeout: a forwarded call
// is bounded only by upstream_timeout_ms and the transport.
const (
	readTimeout               = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	imageCheckTimeout         = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (.env -> defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.Init(logger.Options{Format: cfg.LogFormat}); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	shutdownTracing, err := telemetry.Init(ctx, cfg.ServiceName)
	if err != nil {
		log.Error(ctx, "failed to initialize tracing", logger.Error(err))
		return
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn(sctx, "tracer shutdown failed", logger.Error(err))
		}
	}()

	if _, ok := os.LookupEnv(config.UpstreamEnv); !ok {
		log.Warn(ctx, "API_BASE_URL is not set; proxied endpoints will fail until it is")
	}

	handler, err := newHandler(cfg, config.EnvUpstream{})
	if err != nil {
		log.Error(ctx, "failed to build handlers", logger.Error(err))
		return
	}

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("service", cfg.ServiceName))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(context.Background(), "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}

	log.Info(shutdownCtx, "server stopped")
}

// newHandler wires the proxy, the docs and the dashboard onto one router. The
// dashboard calls the proxy in-process.
func newHandler(cfg *config.Config, up config.Upstream) (http.Handler, error) {
	proxy := api.NewServer(
		upstream.New(up, upstream.WithTimeout(cfg.UpstreamTimeout())),
		cfg.ServiceName,
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
	)
	inProcess := chi.NewRouter()
	proxy.Register(inProcess)

	instructions, err := readInstructions(cfg.InstructionsPath)
	if err != nil {
		return nil, err
	}
	checker := app.NewHTTPImageChecker(telemetry.InstrumentClient(&http.Client{Timeout: imageCheckTimeout}))
	pages, err := site.New(
		client.New("", client.WithHandler(inProcess)),
		site.WithIdentityHeader(cfg.IdentityHeader),
		site.WithInstructions(instructions),
		site.WithViewOptions(
			app.WithTrustedImagePrefix(cfg.TrustedImagePrefix),
			app.WithMaxVotes(cfg.MaxVotes),
			app.WithDefaultTemperature(cfg.DefaultTemperature),
			app.WithImageChecker(checker),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build dashboard: %w", err)
	}

	r := chi.NewRouter()
	r.Use(api.RequestID)
	r.Use(telemetry.Middleware(cfg.ServiceName))
	proxy.Register(r)
	swagger.Register(r)
	pages.Register(r)
	return r, nil
}

// readInstructions loads the markdown override. An empty path keeps the
// embedded document.
func readInstructions(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read instructions_path: %w", err)
	}
	return b, nil
}

// startSystemMetricsUpdater refreshes system gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metrics.RefreshInterval())
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
