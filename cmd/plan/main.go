// Package main plans a single transaction intent and prints the execution
// bundle as JSON. It reads the intent from a file or stdin.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"governor-xrpl-lab/internal/config"
	"governor-xrpl-lab/internal/domain"
	"governor-xrpl-lab/internal/execution"
	"governor-xrpl-lab/internal/guardian"
	"governor-xrpl-lab/internal/horizon"
	"governor-xrpl-lab/internal/protocol"
	"governor-xrpl-lab/internal/publish"
	feesignal "governor-xrpl-lab/internal/signal"
	"governor-xrpl-lab/internal/storage/file"
	"governor-xrpl-lab/internal/telemetry"
)

func main() {
	configPath := flag.String("config", os.Getenv("GOVERNOR_CONFIG"), "Path to YAML config file")
	intentPath := flag.String("intent", "-", "Intent JSON file, - for stdin")
	historyPath := flag.String("history", "", "JSONL fee history used for the horizon (optional)")
	offline := flag.Bool("offline", false, "Do not contact ledger nodes")
	timeout := flag.Duration("timeout", 15*time.Second, "Overall timeout")
	publishBundle := flag.Bool("publish", false, "Also publish the bundle through the configured publisher")

	flag.Parse()

	logger := log.New(os.Stderr, "[plan] ", log.LstdFlags)

	cfg, err := config.Load(*configPath, "GOVERNOR_")
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	intent, err := readIntent(*intentPath, os.Stdin)
	if err != nil {
		logger.Fatalf("Failed to read intent: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	planner, closeNodes, err := buildPlanner(ctx, cfg, *historyPath, *offline, logger)
	if err != nil {
		logger.Fatalf("Failed to build planner: %v", err)
	}
	defer closeNodes()

	bundle := planner.Plan(ctx, intent)

	if *publishBundle {
		if err := publishOnce(ctx, cfg.Publish, bundle); err != nil {
			logger.Printf("Publish bundle: %v", err)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(bundle); err != nil {
		logger.Fatalf("Failed to write bundle: %v", err)
	}
}

// publishOnce sends bundle as an execution_bundle message keyed by its guardian policy id.
func publishOnce(ctx context.Context, cfg config.PublishConfig, bundle domain.ExecutionBundle) error {
	p, err := publish.Open(cfg.Driver, cfg.RabbitMQ)
	if err != nil {
		return err
	}
	defer p.Close()

	body, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	return p.Publish(ctx, publish.Message{
		Kind: publish.KindExecutionBundle,
		Key:  bundle.Guardian.ID,
		Body: body,
	})
}

func readIntent(path string, stdin io.Reader) (domain.TxIntent, error) {
	var r io.Reader = stdin
	if path != "-" && path != "" {
		f, err := os.Open(path)
		if err != nil {
			return domain.TxIntent{}, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	var intent domain.TxIntent
	if err := json.NewDecoder(r).Decode(&intent); err != nil {
		return domain.TxIntent{}, fmt.Errorf("decode intent: %w", err)
	}
	return intent, nil
}

// buildPlanner wires the planner from cfg. The returned func releases the ledger nodes.
func buildPlanner(ctx context.Context, cfg config.Config, historyPath string, offline bool, logger *log.Logger) (*execution.Planner, func(), error) {
	cleanup := func() {}

	classifier := telemetry.NewClassifier(cfg.FeeBand)
	catalog := protocol.DefaultCatalog()

	opts := execution.Options{
		Classifier: classifier,
		Guardian:   guardian.NewEngine(cfg.Guardian, guardian.Options{}),
		Signal:     feesignal.NewFuser(),
		Selector:   protocol.NewSelector(catalog),
		Router:     protocol.NewRouter(catalog, classifier),
		Catalog:    catalog,
		RiskBudget: cfg.Planner.RiskBudget,
	}

	if historyPath != "" {
		store, err := file.NewHistoryStore(historyPath)
		if err != nil {
			return nil, cleanup, fmt.Errorf("open history: %w", err)
		}
		predictor := horizon.NewPredictor(cfg.Horizon, horizon.Options{Store: store, Logger: logger})
		if err := predictor.Restore(ctx); err != nil {
			return nil, cleanup, fmt.Errorf("restore history: %w", err)
		}
		opts.Forecaster = predictor
	}

	if !offline {
		source, closeNodes := telemetry.Dial(ctx, cfg.RPC.Dial(), logger)
		opts.Source = source
		cleanup = closeNodes
	}

	return execution.NewPlanner(opts), cleanup, nil
}
