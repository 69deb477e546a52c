package pipeline

import (
	"fmt"
	"math"

	"governor-xrpl-lab/internal/domain"
)

// Scenario labels of the predictive risk read.
const (
	ScenarioCalm      = "calm"
	ScenarioBuildUp   = "build_up"
	ScenarioPressure  = "pressure"
	ScenarioStormRisk = "storm_risk"
)

// RiskRead is an advisory read of near-term fee pressure.
type RiskRead struct {
	Scenario  string       `json:"scenario"`
	Score     float64      `json:"score"`
	Band      domain.Band  `json:"band"`
	MedianFee int64        `json:"median_fee"`
	Load      float64      `json:"load_factor"`
	Short     domain.Trend `json:"trend_short"`
	Long      domain.Trend `json:"trend_long"`
}

// AssessRisk scores the projected band, median fee and load into [0, 1].
func AssessRisk(s domain.NetworkSnapshot, h domain.FeeHorizon) RiskRead {
	band := h.ProjectedBand
	if !band.IsValid() {
		band = h.CurrentBand
	}

	risk := 0.10
	switch band {
	case domain.BandExtreme:
		risk += 0.70
	case domain.BandElevated:
		risk += 0.40
	case domain.BandNormal:
		risk += 0.10
	}

	switch {
	case s.MedianFee >= 10000:
		risk += 0.30
	case s.MedianFee >= 5000:
		risk += 0.15
	case s.MedianFee <= 20:
		risk -= 0.05
	}

	switch {
	case s.LoadFactor >= 3.0:
		risk += 0.30
	case s.LoadFactor >= 2.0:
		risk += 0.15
	case s.LoadFactor <= 1.0:
		risk -= 0.05
	}

	// Keep two decimals so scenario cut-offs are not subject to float drift.
	risk = math.Round(math.Max(0, math.Min(1, risk))*100) / 100

	return RiskRead{
		Scenario:  scenarioFor(risk),
		Score:     risk,
		Band:      band,
		MedianFee: s.MedianFee,
		Load:      s.LoadFactor,
		Short:     h.TrendShort,
		Long:      h.TrendLong,
	}
}

func scenarioFor(risk float64) string {
	switch {
	case risk < 0.25:
		return ScenarioCalm
	case risk < 0.55:
		return ScenarioBuildUp
	case risk < 0.80:
		return ScenarioPressure
	default:
		return ScenarioStormRisk
	}
}

func (r RiskRead) String() string {
	return fmt.Sprintf("%s (%.2f)", r.Scenario, r.Score)
}
