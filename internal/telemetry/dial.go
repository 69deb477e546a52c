package telemetry

import (
	"context"
	"log"
	"time"

	"governor-xrpl-lab/internal/xrpl"
)

// DialConfig lists the ledger nodes a source should use.
type DialConfig struct {
	WSEndpoints   []string
	RPCEndpoints  []string
	Timeout       time.Duration
	RateLimit     float64
	RateBurst     int
	EMAAlpha      float64
	UseServerInfo bool
}

// Dial connects the WebSocket nodes and builds the JSON-RPC clients, then
// returns a source over both. WebSocket nodes that cannot connect are skipped;
// RPC clients connect lazily. The returned func closes the WebSocket nodes.
func Dial(ctx context.Context, cfg DialConfig, logger *log.Logger) (*SnapshotSource, func()) {
	var (
		wsNodes  []Node
		rpcNodes []Node
		closers  []func() error
	)

	for _, ep := range cfg.WSEndpoints {
		wsCfg := xrpl.DefaultWSConfig()
		if cfg.Timeout > 0 {
			wsCfg.RequestTimeout = cfg.Timeout
		}
		ws, err := xrpl.NewWSClient(ctx, ep, &wsCfg)
		if err != nil {
			if logger != nil {
				logger.Printf("Skipping WebSocket node %s: %v", ep, err)
			}
			continue
		}
		wsNodes = append(wsNodes, ws)
		closers = append(closers, ws.Close)
	}

	for _, ep := range cfg.RPCEndpoints {
		opts := []xrpl.ClientOption{
			// The source rotates nodes itself, so attempts stay bounded by the node count.
			xrpl.WithMaxRetries(0),
		}
		if cfg.Timeout > 0 {
			opts = append(opts, xrpl.WithTimeout(cfg.Timeout))
		}
		if cfg.RateLimit > 0 {
			opts = append(opts, xrpl.WithRateLimit(cfg.RateLimit, cfg.RateBurst))
		}
		rpcNodes = append(rpcNodes, xrpl.NewHTTPClient(ep, opts...))
	}

	if logger != nil {
		logger.Printf("Ledger nodes: %d websocket, %d rpc", len(wsNodes), len(rpcNodes))
	}

	source := NewSnapshotSource(wsNodes, rpcNodes, SourceConfig{
		Timeout:       cfg.Timeout,
		EMAAlpha:      cfg.EMAAlpha,
		UseServerInfo: cfg.UseServerInfo,
		Logger:        logger,
	})
	return source, func() {
		for _, c := range closers {
			c()
		}
	}
}
