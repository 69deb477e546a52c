package xrpl

import "context"

// RPCClient defines the XRPL read-only RPC surface used for fee telemetry.
type RPCClient interface {
	// Fee returns the current transaction cost levels (fee method).
	Fee(ctx context.Context) (*FeeResult, error)

	// ServerInfo returns server state including the load factor (server_info method).
	ServerInfo(ctx context.Context) (*ServerInfo, error)
}

// FeeResult is the decoded result of the fee method. Fee values are in drops.
type FeeResult struct {
	LedgerCurrentIndex int64
	BaseFee            int64
	MedianFee          int64
	MinimumFee         int64
	OpenLedgerFee      int64
	MedianLevel        int64
	OpenLedgerLevel    int64
	ReferenceLevel     int64
	CurrentQueueSize   int64
	ExpectedLedgerSize int64
}

// LoadFactor derives a load multiplier from the open ledger fee level.
// Returns 0 when the levels are not reported.
func (r *FeeResult) LoadFactor() float64 {
	if r == nil || r.ReferenceLevel <= 0 || r.OpenLedgerLevel <= 0 {
		return 0
	}
	return float64(r.OpenLedgerLevel) / float64(r.ReferenceLevel)
}

// ServerInfo is the subset of server_info used by the snapshot source.
type ServerInfo struct {
	BuildVersion       string
	ServerState        string
	LoadFactor         float64
	ValidatedLedgerSeq int64
	BaseFeeXRP         float64
}
