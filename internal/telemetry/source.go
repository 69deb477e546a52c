// Package telemetry turns ledger node readings into network snapshots and fee bands.
package telemetry

import (
	"context"
	"io"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"governor-xrpl-lab/internal/domain"
	"governor-xrpl-lab/internal/observability"
	"governor-xrpl-lab/internal/xrpl"
)

// Source defaults.
const (
	MaxCallTimeout     = 10 * time.Second
	DefaultEMAAlpha    = 0.12
	OpenLedgerMarkup   = 1.3
	MaxSaneMedianDrops = 1_000_000
)

// DefaultRPCEndpoints are public rippled JSON-RPC nodes.
var DefaultRPCEndpoints = []string{
	"https://s1.ripple.com:51234/",
	"https://s2.ripple.com:51234/",
	"https://xrplcluster.com/",
}

// Node is a ledger node the source can query.
type Node interface {
	xrpl.RPCClient
	Endpoint() string
}

// SourceConfig configures SnapshotSource.
type SourceConfig struct {
	// Timeout bounds each node call. Values above MaxCallTimeout are capped.
	Timeout time.Duration
	// EMAAlpha is the smoothing factor of the median fee EMA.
	EMAAlpha float64
	// UseServerInfo reads the load factor from server_info when true.
	UseServerInfo bool
	Logger        *log.Logger
	Clock         func() time.Time
}

// EndpointStatus is the trust view of one node.
type EndpointStatus struct {
	Endpoint  string `json:"endpoint"`
	Transport string `json:"transport"`
	Failures  int    `json:"failures"`
}

type endpoint struct {
	node      Node
	transport string
	priority  int
	failures  int
}

// SnapshotSource produces network snapshots from a prioritized list of nodes.
// WebSocket nodes are tried before RPC nodes; within a transport the node with
// the fewest recent failures goes first. FetchSnapshot never fails.
type SnapshotSource struct {
	ws  []*endpoint
	rpc []*endpoint

	timeout       time.Duration
	alpha         float64
	useServerInfo bool
	logger        *log.Logger
	clock         func() time.Time

	mu      sync.Mutex
	ema     float64
	emaInit bool
}

// NewSnapshotSource creates a source over the given nodes.
// Either list may be empty; with both empty every snapshot is the fallback.
func NewSnapshotSource(wsNodes, rpcNodes []Node, cfg SourceConfig) *SnapshotSource {
	s := &SnapshotSource{
		timeout:       cfg.Timeout,
		alpha:         cfg.EMAAlpha,
		useServerInfo: cfg.UseServerInfo,
		logger:        cfg.Logger,
		clock:         cfg.Clock,
	}
	if s.timeout <= 0 || s.timeout > MaxCallTimeout {
		s.timeout = MaxCallTimeout
	}
	if s.alpha <= 0 || s.alpha > 1 {
		s.alpha = DefaultEMAAlpha
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard, "", 0)
	}
	if s.clock == nil {
		s.clock = func() time.Time { return time.Now().UTC() }
	}
	for i, n := range wsNodes {
		s.ws = append(s.ws, &endpoint{node: n, transport: domain.SnapshotSourceWS, priority: i})
	}
	for i, n := range rpcNodes {
		s.rpc = append(s.rpc, &endpoint{node: n, transport: domain.SnapshotSourceRPC, priority: i})
	}
	return s
}

// FetchSnapshot returns the current network snapshot.
// On total failure it returns the static fallback snapshot.
func (s *SnapshotSource) FetchSnapshot(ctx context.Context) domain.NetworkSnapshot {
	for _, group := range [][]*endpoint{s.ws, s.rpc} {
		for _, ep := range s.ordered(group) {
			if ctx.Err() != nil {
				break
			}
			snap, err := s.fetchFrom(ctx, ep)
			if err != nil {
				s.logger.Printf("%s node %s failed: %v", ep.transport, ep.node.Endpoint(), err)
				continue
			}
			observability.RecordSnapshot(snap.Source, snap.LedgerSeq, snap.MedianFee, snap.LoadFactor)
			return snap
		}
	}

	snap := domain.FallbackSnapshot(s.clock())
	s.logger.Printf("all nodes failed, using fallback snapshot")
	observability.RecordSnapshot(snap.Source, snap.LedgerSeq, snap.MedianFee, snap.LoadFactor)
	return snap
}

// ordered returns a copy of group sorted by failures, then configured priority.
func (s *SnapshotSource) ordered(group []*endpoint) []*endpoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*endpoint, len(group))
	copy(out, group)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].failures != out[j].failures {
			return out[i].failures < out[j].failures
		}
		return out[i].priority < out[j].priority
	})
	return out
}

func (s *SnapshotSource) fetchFrom(ctx context.Context, ep *endpoint) (domain.NetworkSnapshot, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	name := ep.node.Endpoint()
	start := time.Now()
	fee, err := ep.node.Fee(callCtx)
	observability.RecordRPCLatency(name, "fee", time.Since(start).Seconds())
	if err != nil {
		s.markFailure(ep)
		return domain.NetworkSnapshot{}, err
	}

	load := fee.LoadFactor()
	if s.useServerInfo {
		start = time.Now()
		info, err := ep.node.ServerInfo(callCtx)
		observability.RecordRPCLatency(name, "server_info", time.Since(start).Seconds())
		if err == nil && info.LoadFactor > 0 {
			load = info.LoadFactor
		}
	}

	snap := s.buildSnapshot(fee, load, ep.transport)
	s.markSuccess(ep)
	return snap, nil
}

// buildSnapshot applies outlier rejection and EMA smoothing to a fee reading.
func (s *SnapshotSource) buildSnapshot(fee *xrpl.FeeResult, load float64, transport string) domain.NetworkSnapshot {
	base := fee.BaseFee
	if base <= 0 {
		base = domain.FallbackBaseFee
	}
	median := fee.MedianFee
	if median > MaxSaneMedianDrops {
		s.logger.Printf("median fee %d drops rejected as outlier, using base fee %d", median, base)
		median = base
	}
	if median <= 0 {
		median = base
	}
	if load <= 0 {
		load = domain.FallbackLoad
	}

	s.mu.Lock()
	if !s.emaInit {
		s.ema = float64(median)
		s.emaInit = true
	} else {
		s.ema = s.alpha*float64(median) + (1-s.alpha)*s.ema
	}
	ema := s.ema
	s.mu.Unlock()

	recommended := median
	if v := int64(math.Round(OpenLedgerMarkup * float64(fee.OpenLedgerFee))); v > recommended {
		recommended = v
	}
	if v := int64(math.Round(ema)); v > recommended {
		recommended = v
	}

	return domain.NetworkSnapshot{
		LedgerSeq:      fee.LedgerCurrentIndex,
		BaseFee:        base,
		MedianFee:      median,
		RecommendedFee: recommended,
		OpenLedgerFee:  fee.OpenLedgerFee,
		LoadFactor:     load,
		Timestamp:      s.clock(),
		Source:         transport,
	}
}

func (s *SnapshotSource) markFailure(ep *endpoint) {
	s.mu.Lock()
	ep.failures++
	s.mu.Unlock()
	observability.RecordEndpointFailure(ep.node.Endpoint())
}

func (s *SnapshotSource) markSuccess(ep *endpoint) {
	s.mu.Lock()
	ep.failures = 0
	s.mu.Unlock()
}

// EMA returns the current smoothed median fee and whether it has been seeded.
func (s *SnapshotSource) EMA() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ema, s.emaInit
}

// EndpointStatus returns the failure counters of every configured node.
func (s *SnapshotSource) EndpointStatus() []EndpointStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]EndpointStatus, 0, len(s.ws)+len(s.rpc))
	for _, group := range [][]*endpoint{s.ws, s.rpc} {
		for _, ep := range group {
			out = append(out, EndpointStatus{
				Endpoint:  ep.node.Endpoint(),
				Transport: ep.transport,
				Failures:  ep.failures,
			})
		}
	}
	return out
}
