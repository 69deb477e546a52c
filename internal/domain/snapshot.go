package domain

import (
	"errors"
	"fmt"
	"time"
)

// Snapshot source labels.
const (
	SnapshotSourceRPC      = "rpc"
	SnapshotSourceWS       = "ws"
	SnapshotSourceFallback = "fallback"
)

// Fallback snapshot values used when no ledger node answers.
const (
	FallbackBaseFee   int64   = 10
	FallbackMedianFee int64   = 5000
	FallbackLoad      float64 = 1.0
)

// ErrInvalidSnapshot is returned by Validate for snapshots that cannot be used as-is.
var ErrInvalidSnapshot = errors.New("invalid network snapshot")

// NetworkSnapshot is a point-in-time reading of ledger fee and load conditions.
// Fees are in drops.
type NetworkSnapshot struct {
	LedgerSeq      int64     `json:"ledger_seq"`
	BaseFee        int64     `json:"base_fee"`
	MedianFee      int64     `json:"median_fee"`
	RecommendedFee int64     `json:"recommended_fee"`
	OpenLedgerFee  int64     `json:"open_ledger_fee"`
	LoadFactor     float64   `json:"load_factor"`
	Timestamp      time.Time `json:"timestamp"`
	Source         string    `json:"source"`
}

// FallbackSnapshot returns the deterministic snapshot used when upstream data is unavailable.
func FallbackSnapshot(ts time.Time) NetworkSnapshot {
	return NetworkSnapshot{
		LedgerSeq:      0,
		BaseFee:        FallbackBaseFee,
		MedianFee:      FallbackMedianFee,
		RecommendedFee: FallbackMedianFee,
		OpenLedgerFee:  FallbackMedianFee,
		LoadFactor:     FallbackLoad,
		Timestamp:      ts,
		Source:         SnapshotSourceFallback,
	}
}

// Validate reports whether the snapshot carries usable values.
func (s NetworkSnapshot) Validate() error {
	switch {
	case s.LedgerSeq < 0:
		return fmt.Errorf("%w: negative ledger_seq %d", ErrInvalidSnapshot, s.LedgerSeq)
	case s.BaseFee <= 0:
		return fmt.Errorf("%w: base_fee %d", ErrInvalidSnapshot, s.BaseFee)
	case s.MedianFee <= 0:
		return fmt.Errorf("%w: median_fee %d", ErrInvalidSnapshot, s.MedianFee)
	case s.LoadFactor <= 0:
		return fmt.Errorf("%w: load_factor %v", ErrInvalidSnapshot, s.LoadFactor)
	}
	return nil
}

// Normalize returns a copy with missing or non-positive fields replaced by
// conservative defaults. The recommended fee is never below the median.
func (s NetworkSnapshot) Normalize() NetworkSnapshot {
	out := s
	if out.LedgerSeq < 0 {
		out.LedgerSeq = 0
	}
	if out.BaseFee <= 0 {
		out.BaseFee = FallbackBaseFee
	}
	if out.MedianFee <= 0 {
		out.MedianFee = out.BaseFee
	}
	if out.OpenLedgerFee <= 0 {
		out.OpenLedgerFee = out.MedianFee
	}
	if out.RecommendedFee < out.MedianFee {
		out.RecommendedFee = out.MedianFee
	}
	if out.LoadFactor <= 0 {
		out.LoadFactor = FallbackLoad
	}
	if out.Source == "" {
		out.Source = SnapshotSourceFallback
	}
	return out
}
