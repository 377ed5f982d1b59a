package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finvue/marketsync/internal/bridge"
	"github.com/finvue/marketsync/internal/bus"
	"github.com/finvue/marketsync/internal/config"
	"github.com/finvue/marketsync/internal/engine"
	"github.com/finvue/marketsync/internal/feed"
	"github.com/finvue/marketsync/internal/model"
	"github.com/finvue/marketsync/internal/session"
	"github.com/finvue/marketsync/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/syncd.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	build := version.Current()
	logger.Info("starting syncd",
		"version", build.Version,
		"commit", build.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"feed_url", cfg.Feeds.BaseURL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Session clock
	clockCfg, err := cfg.Session.ClockConfig()
	if err != nil {
		logger.Error("failed to build session clock", "error", err)
		os.Exit(1)
	}
	clock := session.NewClock(clockCfg)

	// Event bus
	eventBus := bus.New(logger)

	// Pull feed client
	paths := make(map[model.Channel]string, len(cfg.Feeds.Paths))
	for name, path := range cfg.Feeds.Paths {
		paths[model.Channel(name)] = path
	}
	feedClient := feed.NewClient(
		cfg.Feeds.BaseURL,
		paths,
		feed.WithLogger(logger),
		feed.WithTimeout(cfg.Feeds.Timeout),
	)

	// Sync engine
	engineCfg := engine.Config{
		PushURL:      cfg.Push.URL,
		PushBuffer:   cfg.Push.BufferSize,
		PingTimeout:  cfg.Push.PingTimeout,
		WriteTimeout: cfg.Push.WriteTimeout,
		Backoff: engine.BackoffPolicy{
			Base:        cfg.Reconnect.BaseDelay,
			MaxDelay:    cfg.Reconnect.MaxDelay,
			MaxAttempts: cfg.Reconnect.MaxAttempts,
		},
		OpenInterval:   cfg.Polling.OpenInterval,
		ClosedInterval: cfg.Polling.ClosedInterval,
		FetchTimeout:   cfg.Polling.FetchTimeout,
		SessionTick:    cfg.Session.Tick,
		HealthInterval: cfg.Health.Interval,
	}
	eng := engine.New(engineCfg, clock, eventBus, feedClient, logger)

	// Optional NATS bridge
	if cfg.Bridge.NATSURL != "" {
		logger.Info("connecting event bridge", "url", cfg.Bridge.NATSURL)
		br, err := bridge.New(bridge.Config{
			URL:     cfg.Bridge.NATSURL,
			Subject: cfg.Bridge.Subject,
		}, eventBus, logger)
		if err != nil {
			logger.Error("failed to connect event bridge", "error", err)
			os.Exit(1)
		}
		br.Start()
		defer br.Stop()
	}

	// Status server
	statusServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: createStatusHandler(eng, logger),
	}
	go func() {
		logger.Info("starting status server", "port", cfg.Server.Port)
		if err := statusServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("status server error", "error", err)
		}
	}()

	// Start the engine
	if err := eng.Initialize(ctx); err != nil {
		logger.Error("failed to start sync engine", "error", err)
		os.Exit(1)
	}

	logger.Info("syncd running",
		"instance_id", cfg.Instance.ID,
		"status_url", fmt.Sprintf("http://localhost:%d/status", cfg.Server.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := eng.Shutdown(shutdownCtx); err != nil {
		logger.Error("engine shutdown error", "error", err)
	}
	statusServer.Shutdown(shutdownCtx)

	logger.Info("syncd stopped")
}

// createStatusHandler creates the HTTP handler for introspection.
func createStatusHandler(eng *engine.Engine, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		phase := eng.Phase()
		out := struct {
			Build    version.Info          `json:"build"`
			Phase    model.SessionPhase    `json:"phase"`
			IsOpen   bool                  `json:"is_open"`
			Channels []model.ChannelStatus `json:"channels"`
		}{
			Build:    version.Current(),
			Phase:    phase,
			IsOpen:   phase == model.PhaseOpen,
			Channels: eng.Status(),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		health := struct {
			Status string `json:"status"`
		}{Status: "healthy"}

		for _, row := range eng.Status() {
			if !row.Status.Serving() {
				health.Status = "degraded"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/debug/cache", func(w http.ResponseWriter, r *http.Request) {
		out := make(map[string]any, len(model.AllChannels()))
		for _, ch := range model.AllChannels() {
			records, err := eng.LastCachedData(ch)
			if err != nil {
				logger.Warn("cache read failed", "channel", ch, "error", err)
				continue
			}
			out[string(ch)] = map[string]any{
				"count":   len(records),
				"records": records,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	})

	return mux
}
