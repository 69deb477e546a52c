package pipeline

import (
	"testing"

	"governor-xrpl-lab/internal/domain"
)

func TestAssessRisk(t *testing.T) {
	tests := []struct {
		name      string
		band      domain.Band
		median    int64
		load      float64
		wantScore float64
		wantScen  string
	}{
		{"quiet", domain.BandLow, 10, 0.8, 0.0, ScenarioCalm},
		{"normal", domain.BandNormal, 100, 1.5, 0.2, ScenarioCalm},
		{"elevated with load", domain.BandElevated, 500, 2.5, 0.65, ScenarioPressure},
		{"elevated", domain.BandElevated, 300, 1.5, 0.5, ScenarioBuildUp},
		{"extreme", domain.BandExtreme, 2500, 1.5, 0.8, ScenarioStormRisk},
		{"clamped", domain.BandExtreme, 20000, 5, 1.0, ScenarioStormRisk},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.NetworkSnapshot{MedianFee: tt.median, LoadFactor: tt.load}
			got := AssessRisk(s, domain.FeeHorizon{ProjectedBand: tt.band, CurrentBand: tt.band})
			if got.Score != tt.wantScore {
				t.Errorf("score = %v, want %v", got.Score, tt.wantScore)
			}
			if got.Scenario != tt.wantScen {
				t.Errorf("scenario = %s, want %s", got.Scenario, tt.wantScen)
			}
		})
	}
}

func TestAssessRisk_UsesProjectedBand(t *testing.T) {
	s := domain.NetworkSnapshot{MedianFee: 500, LoadFactor: 1.5}
	got := AssessRisk(s, domain.FeeHorizon{ProjectedBand: domain.BandExtreme, CurrentBand: domain.BandElevated})
	if got.Band != domain.BandExtreme {
		t.Errorf("expected projected band, got %s", got.Band)
	}

	got = AssessRisk(s, domain.FeeHorizon{CurrentBand: domain.BandElevated})
	if got.Band != domain.BandElevated {
		t.Errorf("expected fallback to current band, got %s", got.Band)
	}
}
