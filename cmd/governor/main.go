// Package main runs the governor service: a periodic telemetry-to-decision
// cycle plus an HTTP surface for health, metrics and status.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"governor-xrpl-lab/internal/config"
	"governor-xrpl-lab/internal/council"
	"governor-xrpl-lab/internal/guardian"
	"governor-xrpl-lab/internal/horizon"
	"governor-xrpl-lab/internal/pipeline"
	"governor-xrpl-lab/internal/publish"
	"governor-xrpl-lab/internal/telemetry"
)

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	configPath := flag.String("config", os.Getenv("GOVERNOR_CONFIG"), "Path to YAML config file")
	envPrefix := flag.String("env-prefix", "GOVERNOR_", "Prefix of environment overrides")
	addr := flag.String("addr", os.Getenv("GOVERNOR_ADDR"), "HTTP listen address (overrides config)")
	offline := flag.Bool("offline", false, "Do not contact ledger nodes; every cycle uses the fallback snapshot")

	flag.Parse()

	logger := log.New(os.Stdout, "[governor] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load(*configPath, *envPrefix)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	ctx, cancel := context.WithCancel(context.Background())

	st, cleanup, err := createStores(ctx, cfg.Storage)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()
	logger.Printf("Storage driver: %s", cfg.Storage.Driver)

	publisher, err := publish.Open(cfg.Publish.Driver, cfg.Publish.RabbitMQ)
	if err != nil {
		logger.Fatalf("Failed to create publisher: %v", err)
	}
	defer publisher.Close()

	var source *telemetry.SnapshotSource
	if !*offline {
		var closeNodes func()
		source, closeNodes = telemetry.Dial(ctx, cfg.RPC.Dial(), log.New(os.Stdout, "[telemetry] ", log.LstdFlags|log.Lshortfile))
		defer closeNodes()
	}

	predictor := horizon.NewPredictor(cfg.Horizon, horizon.Options{
		Store:  st.history,
		Logger: log.New(os.Stdout, "[horizon] ", log.LstdFlags|log.Lshortfile),
	})
	if err := predictor.Restore(ctx); err != nil {
		logger.Printf("Restore history: %v", err)
	}
	logger.Printf("Restored %d history points", predictor.Len())

	classifier := telemetry.NewClassifier(cfg.FeeBand)
	guardianEngine := guardian.NewEngine(cfg.Guardian, guardian.Options{})

	runnerOpts := pipeline.RunnerOptions{
		Classifier: classifier,
		Predictor:  predictor,
		Guardian:   guardianEngine,
		Council:    council.NewAggregator(council.VotersWithCutoffs(lensCutoffs(classifier.Thresholds()))...),
		Policies:   st.policies,
		Publisher:  publisher,
		Logger:     log.New(os.Stdout, "[cycle] ", log.LstdFlags|log.Lshortfile),
	}
	if source != nil {
		runnerOpts.Source = source
	}
	runner := pipeline.NewRunner(runnerOpts)

	server := &Server{
		runner:  runner,
		source:  source,
		logger:  logger,
		started: time.Now(),
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Printf("Starting HTTP server on %s", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("HTTP server error: %v", err)
		}
	}()

	err = runner.Run(ctx, cfg.Server.CycleInterval)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	if serr := httpServer.Shutdown(shutdownCtx); serr != nil {
		logger.Printf("HTTP shutdown: %v", serr)
	}
	shutdownCancel()

	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Governor error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// lensCutoffs aligns the council's live-metric voters with the configured fee bands.
func lensCutoffs(th telemetry.BandThresholds) council.LensCutoffs {
	return council.LensCutoffs{
		ElevatedLoad:   th.ElevatedLoad,
		ExtremeLoad:    th.ExtremeLoad,
		ElevatedMedian: th.ElevatedMedian,
	}
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
