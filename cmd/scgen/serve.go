package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/amishk599/scgen/internal/ai"
	"github.com/amishk599/scgen/internal/model"
	"github.com/amishk599/scgen/internal/server"
	"github.com/amishk599/scgen/internal/tracing"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the generation endpoint",
	Long:  "Serve POST /api/generate, /healthz and /metrics; blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		bootstrapLogger().Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	logger := setupLogger(os.Stdout, cfg.Log, debug)

	logger.Info("config loaded",
		"addr", cfg.Server.Addr,
		"provider", cfg.AI.Provider,
		"model", cfg.AI.Model,
		"tracing", cfg.Tracing.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		logger.Error("failed to init tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracing shutdown", "error", err)
		}
	}()

	var provider ai.LLMProvider
	httpClient := &http.Client{Timeout: cfg.AI.Timeout}
	p, err := ai.NewProvider(ctx, cfg.AI, httpClient)
	switch {
	case errors.Is(err, model.ErrNotConfigured):
		logger.Warn("no AI provider API key configured; generation requests will be rejected", "provider", cfg.AI.Provider)
	case err != nil:
		logger.Error("failed to create AI provider", "error", err)
		return err
	default:
		provider = p
	}

	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.New(cfg.Server, server.Options{
		Provider:     provider,
		ProviderName: cfg.AI.Provider,
		Logger:       logger,
		ServiceName:  cfg.Tracing.ServiceName,
	})
	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		return err
	}

	logger.Info("goodbye")
	return nil
}
