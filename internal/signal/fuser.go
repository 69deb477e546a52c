// Package signal fuses band, fee levels and guardian posture into one fee signal.
package signal

import (
	"fmt"
	"math"

	"governor-xrpl-lab/internal/domain"
)

const (
	// MaxPressure caps the pressure score.
	MaxPressure = 2.0
	// SafeFeeMarkup is applied to the higher of median and recommended fee.
	SafeFeeMarkup = 1.1
	// LoadReference is the load factor at which load alone yields full pressure.
	LoadReference = 2.0
)

// Fuser computes fee signals. It has no state.
type Fuser struct{}

// NewFuser creates a fuser.
func NewFuser() *Fuser {
	return &Fuser{}
}

// Fuse returns the fee signal for a snapshot under the given band and guardian policy.
func (f *Fuser) Fuse(s domain.NetworkSnapshot, band domain.Band, policy domain.GuardianPolicy) domain.FeeSignal {
	s = s.Normalize()
	pressure := Pressure(s.MedianFee, s.RecommendedFee, s.LoadFactor)

	safe := SafeFee(s.MedianFee, s.RecommendedFee)

	attention := policy.Status == domain.StatusAttentionRequired || band.IsStressed()

	notes := []string{
		fmt.Sprintf("Pressure %.2f from median %d over recommended %d drops at load %.2f.",
			pressure, s.MedianFee, s.RecommendedFee, s.LoadFactor),
		fmt.Sprintf("Safe fee %d drops.", safe),
	}
	if attention {
		notes = append(notes, fmt.Sprintf("Attention required: band %s, guardian %s.", band, policy.Mode))
	}

	return domain.FeeSignal{
		Band:              band,
		MedianFee:         s.MedianFee,
		RecommendedFee:    s.RecommendedFee,
		SafeFee:           safe,
		PressureScore:     pressure,
		GuardianMode:      policy.Mode,
		AttentionRequired: attention,
		Notes:             notes,
	}
}

// Pressure is (median/recommended) × (load/LoadReference), clamped to [0, MaxPressure].
func Pressure(median, recommended int64, load float64) float64 {
	if recommended <= 0 || load <= 0 {
		return 0
	}
	p := float64(median) / float64(recommended) * load / LoadReference
	return math.Max(0, math.Min(MaxPressure, p))
}

// SafeFee is round(max(median, recommended) × 1.1), so it always sits above
// the recommended fee.
func SafeFee(median, recommended int64) int64 {
	return int64(math.Round(float64(max(median, recommended)) * SafeFeeMarkup))
}
