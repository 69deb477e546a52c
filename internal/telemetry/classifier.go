package telemetry

import (
	"errors"
	"fmt"

	"governor-xrpl-lab/internal/domain"
)

// ErrInvalidThresholds is returned when band thresholds are not ordered.
var ErrInvalidThresholds = errors.New("invalid band thresholds")

// BandThresholds are the fee band cut-offs. Loads are multipliers, medians are drops.
type BandThresholds struct {
	ExtremeLoad    float64 `yaml:"extreme_load" env:"EXTREME_LOAD"`
	ExtremeMedian  int64   `yaml:"extreme_median" env:"EXTREME_MEDIAN"`
	ElevatedLoad   float64 `yaml:"elevated_load" env:"ELEVATED_LOAD"`
	ElevatedMedian int64   `yaml:"elevated_median" env:"ELEVATED_MEDIAN"`
	LowLoad        float64 `yaml:"low_load" env:"LOW_LOAD"`
	LowMedian      int64   `yaml:"low_median" env:"LOW_MEDIAN"`
}

// DefaultBandThresholds returns the canonical cut-offs.
func DefaultBandThresholds() BandThresholds {
	return BandThresholds{
		ExtremeLoad:    4.0,
		ExtremeMedian:  2000,
		ElevatedLoad:   2.0,
		ElevatedMedian: 200,
		LowLoad:        1.2,
		LowMedian:      20,
	}
}

// Validate checks that low < elevated < extreme on both axes.
func (t BandThresholds) Validate() error {
	if !(t.LowLoad < t.ElevatedLoad && t.ElevatedLoad < t.ExtremeLoad) {
		return fmt.Errorf("%w: load cut-offs %v/%v/%v", ErrInvalidThresholds, t.LowLoad, t.ElevatedLoad, t.ExtremeLoad)
	}
	if !(t.LowMedian < t.ElevatedMedian && t.ElevatedMedian < t.ExtremeMedian) {
		return fmt.Errorf("%w: median cut-offs %d/%d/%d", ErrInvalidThresholds, t.LowMedian, t.ElevatedMedian, t.ExtremeMedian)
	}
	return nil
}

// Classifier maps snapshots to fee bands.
type Classifier struct {
	th BandThresholds
}

// NewClassifier creates a classifier. Invalid thresholds fall back to the defaults.
func NewClassifier(th BandThresholds) *Classifier {
	if th.Validate() != nil {
		th = DefaultBandThresholds()
	}
	return &Classifier{th: th}
}

// Thresholds returns the active cut-offs.
func (c *Classifier) Thresholds() BandThresholds {
	return c.th
}

// Classify returns the band for a snapshot. Rules are evaluated from most to
// least severe, so a snapshot on a boundary gets the more severe band.
func (c *Classifier) Classify(s domain.NetworkSnapshot) domain.FeeBand {
	load, median := s.LoadFactor, s.MedianFee
	switch {
	case load >= c.th.ExtremeLoad || median >= c.th.ExtremeMedian:
		return domain.FeeBand{
			Band:    domain.BandExtreme,
			Comment: fmt.Sprintf("Extreme congestion: load %.2f, median %d drops. Defer non-essential traffic.", load, median),
		}
	case load >= c.th.ElevatedLoad || median >= c.th.ElevatedMedian:
		return domain.FeeBand{
			Band:    domain.BandElevated,
			Comment: fmt.Sprintf("Elevated fees: load %.2f, median %d drops. Expect queueing.", load, median),
		}
	case load <= c.th.LowLoad && median <= c.th.LowMedian:
		return domain.FeeBand{
			Band:    domain.BandLow,
			Comment: fmt.Sprintf("Quiet network: load %.2f, median %d drops.", load, median),
		}
	default:
		return domain.FeeBand{
			Band:    domain.BandNormal,
			Comment: fmt.Sprintf("Normal conditions: load %.2f, median %d drops.", load, median),
		}
	}
}
