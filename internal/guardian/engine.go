// Package guardian derives the defensive operating mode from a network snapshot
// and records it as an auditable policy.
package guardian

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"governor-xrpl-lab/internal/domain"
)

// ErrInvalidThresholds is returned when a threshold table is not ordered.
var ErrInvalidThresholds = errors.New("invalid guardian thresholds")

// Thresholds are the trigger levels per mode. A mode fires on either metric.
type Thresholds struct {
	AttackMedian      int64   `yaml:"attack_median" env:"ATTACK_MEDIAN"`
	AttackLoad        float64 `yaml:"attack_load" env:"ATTACK_LOAD"`
	StressMedian      int64   `yaml:"stress_median" env:"STRESS_MEDIAN"`
	StressLoad        float64 `yaml:"stress_load" env:"STRESS_LOAD"`
	FeePressureMedian int64   `yaml:"fee_pressure_median" env:"FEE_PRESSURE_MEDIAN"`
	FeePressureLoad   float64 `yaml:"fee_pressure_load" env:"FEE_PRESSURE_LOAD"`
	// Calm requires both metrics at or below these values.
	CalmMedian int64   `yaml:"calm_median" env:"CALM_MEDIAN"`
	CalmLoad   float64 `yaml:"calm_load" env:"CALM_LOAD"`
}

// DefaultThresholds returns the canonical guardian thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AttackMedian:      8000,
		AttackLoad:        6.0,
		StressMedian:      2000,
		StressLoad:        4.0,
		FeePressureMedian: 200,
		FeePressureLoad:   2.0,
		CalmMedian:        20,
		CalmLoad:          1.2,
	}
}

// Validate checks that thresholds are positive and strictly ordered.
func (t Thresholds) Validate() error {
	if t.CalmMedian <= 0 || t.CalmLoad <= 0 {
		return fmt.Errorf("%w: calm thresholds must be positive", ErrInvalidThresholds)
	}
	if !(t.CalmMedian < t.FeePressureMedian && t.FeePressureMedian < t.StressMedian && t.StressMedian < t.AttackMedian) {
		return fmt.Errorf("%w: median thresholds must increase calm < fee_pressure < stress < attack", ErrInvalidThresholds)
	}
	if !(t.CalmLoad < t.FeePressureLoad && t.FeePressureLoad < t.StressLoad && t.StressLoad < t.AttackLoad) {
		return fmt.Errorf("%w: load thresholds must increase calm < fee_pressure < stress < attack", ErrInvalidThresholds)
	}
	return nil
}

// Options holds optional engine collaborators.
type Options struct {
	// Clock defaults to time.Now in UTC.
	Clock func() time.Time
	// NewID defaults to random UUIDs.
	NewID func() string
}

// Engine maps snapshots to guardian decisions. It holds no state between calls.
type Engine struct {
	th    Thresholds
	clock func() time.Time
	newID func() string
}

// NewEngine creates an engine. Invalid thresholds fall back to the defaults.
func NewEngine(th Thresholds, opts Options) *Engine {
	if th.Validate() != nil {
		th = DefaultThresholds()
	}
	clock := opts.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	newID := opts.NewID
	if newID == nil {
		newID = func() string { return uuid.NewString() }
	}
	return &Engine{th: th, clock: clock, newID: newID}
}

// Thresholds returns the active thresholds.
func (e *Engine) Thresholds() Thresholds {
	return e.th
}

// Mode returns the guardian mode for the given metrics, most severe first.
func (e *Engine) Mode(median int64, load float64) domain.GuardianMode {
	t := e.th
	switch {
	case median >= t.AttackMedian || load >= t.AttackLoad:
		return domain.ModeAttack
	case median >= t.StressMedian || load >= t.StressLoad:
		return domain.ModeStress
	case median >= t.FeePressureMedian || load >= t.FeePressureLoad:
		return domain.ModeFeePressure
	case median <= t.CalmMedian && load <= t.CalmLoad:
		return domain.ModeCalm
	default:
		return domain.ModeNormal
	}
}

// Classify builds the guardian decision for a snapshot.
// The snapshot is normalized first, so partial input still yields a full decision.
func (e *Engine) Classify(s domain.NetworkSnapshot) domain.GuardianDecision {
	s = s.Normalize()
	mode := e.Mode(s.MedianFee, s.LoadFactor)

	status := domain.StatusAttentionRequired
	if mode == domain.ModeCalm || mode == domain.ModeNormal {
		status = domain.StatusCompliant
	}

	policy := domain.GuardianPolicy{
		ID:        e.newID(),
		Mode:      mode,
		Status:    status,
		CreatedAt: e.clock(),
		Payload: domain.PolicyPayload{
			LedgerSeq:      s.LedgerSeq,
			MedianFee:      s.MedianFee,
			RecommendedFee: s.RecommendedFee,
			LoadFactor:     s.LoadFactor,
		},
	}

	return domain.GuardianDecision{
		Policy: policy,
		Explanation: fmt.Sprintf("Guardian mode %s at ledger %d: median fee %d drops, load factor %.2f.",
			mode, s.LedgerSeq, s.MedianFee, s.LoadFactor),
		Forge: domain.ForgeProposal{
			UpgradeID:    e.newID(),
			InferredMode: mode,
			Status:       "draft",
			Suggestions:  Suggestions(mode),
		},
	}
}

var suggestions = map[domain.GuardianMode][]string{
	domain.ModeCalm: {
		"Keep the current fee band.",
		"Schedule deferred batch work while fees are at the floor.",
		"Continue sampling XRPL nodes at the normal cadence.",
		"Run experiments and archival jobs at full concurrency.",
	},
	domain.ModeNormal: {
		"Maintain the current fee band.",
		"Monitor ledger close rate; no intervention needed.",
		"Continue sampling XRPL nodes.",
		"Keep experiments on a limited budget.",
	},
	domain.ModeFeePressure: {
		"Tighten the fee band for non-essential flows.",
		"Prefer simple, low-cost transaction types.",
		"Batch settlements into fewer transactions.",
		"Pause experimental workloads until fees ease.",
	},
	domain.ModeStress: {
		"Restrict traffic to essential payments and settlements.",
		"Raise the safe fee margin for time-critical transactions.",
		"Defer analytics and archival jobs.",
		"Increase node sampling frequency to detect recovery early.",
		"Alert integrators to expect delayed confirmations.",
	},
	domain.ModeAttack: {
		"Enforce maximum priority on essential payments only.",
		"Deny complex, high-cost transaction classes.",
		"Hard-pause experiments and analytics.",
		"Cross-check fee readings against independent nodes.",
		"Escalate to node operators for manual review.",
	},
}

// Suggestions returns a copy of the stock forge suggestions for mode.
// Unknown modes get the normal set.
func Suggestions(mode domain.GuardianMode) []string {
	s, ok := suggestions[mode]
	if !ok {
		s = suggestions[domain.ModeNormal]
	}
	return append([]string(nil), s...)
}
