package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/shehryarbajwa/tvsnap/internal/api"
	"github.com/shehryarbajwa/tvsnap/internal/capture"
	"github.com/shehryarbajwa/tvsnap/internal/config"
	"github.com/shehryarbajwa/tvsnap/internal/mcpserver"
	"github.com/shehryarbajwa/tvsnap/internal/stats"
	"github.com/shehryarbajwa/tvsnap/pkg/logger"
)

func main() {
	// Variables set by the MCP client take precedence over the .env file.
	envLoaded := godotenv.Load() == nil

	cfg := config.Load()

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	// stdout carries the MCP protocol; all logging goes to stderr.
	logger.Init(os.Stderr, level)
	if !envLoaded {
		slog.Debug("no .env file found, using system environment variables")
	}
	slog.Info("starting tvsnap",
		"headless", cfg.Headless,
		"viewport", map[string]int{"width": cfg.WindowWidth, "height": cfg.WindowHeight},
		"chart_page_id", cfg.ChartPageID,
		"max_concurrent", cfg.MaxConcurrent,
	)

	engine := capture.NewEngine(cfg)
	if err := engine.Init(context.Background()); err != nil {
		slog.Error("browser launch failed", "error", err)
		os.Exit(1)
	}
	slog.Info("capture engine ready")

	collector := stats.NewCollector()
	srv := mcpserver.New(engine, collector)

	var debugSrv *http.Server
	if cfg.StatsAddr != "" {
		handler := api.NewHandler(engine, collector)
		debugSrv = &http.Server{
			Addr:         cfg.StatsAddr,
			Handler:      handler.SetupRoutes(),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			slog.Info("debug http server listening", "addr", cfg.StatsAddr)
			if err := debugSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("debug http server failed", "error", err)
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ServeStdio()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down", "signal", sig.String())
	case err := <-serveErr:
		if err != nil {
			slog.Error("mcp server stopped", "error", err)
		}
	}

	if debugSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := debugSrv.Shutdown(ctx); err != nil {
			slog.Warn("debug http server shutdown failed", "error", err)
		}
		cancel()
	}

	if err := engine.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
	}
	slog.Info("server stopped")
}
