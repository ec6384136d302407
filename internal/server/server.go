// Package server exposes the generation endpoint over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/scgen/internal/ai"
	"github.com/amishk599/scgen/internal/config"
)

// Options carries the server's collaborators.
type Options struct {
	// Provider may be nil; the endpoint then answers 503 without calling out.
	Provider     ai.LLMProvider
	ProviderName string
	Logger       *slog.Logger
	// Registry receives the server's metrics and backs GET /metrics.
	// A private registry is created when nil.
	Registry    *prometheus.Registry
	ServiceName string
}

// Server is the stateless generation endpoint. Concurrent requests share
// nothing but the metric collectors.
type Server struct {
	cfg          config.ServerConfig
	provider     ai.LLMProvider
	providerName string
	logger       *slog.Logger
	metrics      *Metrics
	engine       *gin.Engine
}

// New builds the gin engine and registers every route.
func New(cfg config.ServerConfig, opts Options) *Server {
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	providerName := opts.ProviderName
	if opts.Provider == nil {
		providerName = "none"
	}
	serviceName := opts.ServiceName
	if serviceName == "" {
		serviceName = "scgen"
	}

	s := &Server{
		cfg:          cfg,
		provider:     opts.Provider,
		providerName: providerName,
		logger:       logger,
		metrics:      NewMetrics(reg),
	}

	engine := gin.New()
	engine.Use(
		RequestID(),
		Recovery(logger),
		RequestLogger(logger),
		CORS(cfg.CORSOrigins),
		otelgin.Middleware(serviceName),
		TraceContext(),
		s.metrics.Middleware(),
		BodyLimit(cfg.MaxBodyBytes),
	)

	engine.POST(GeneratePath, s.handleGenerate)
	engine.GET("/healthz", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	s.engine = engine
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully within the
// configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("generation endpoint listening", "addr", s.cfg.Addr, "provider", s.providerName)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down generation endpoint")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
