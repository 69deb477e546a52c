package council

import (
	"testing"

	"governor-xrpl-lab/internal/domain"
)

func TestConvene_Calm(t *testing.T) {
	a := NewAggregator()
	votes, intent := a.Convene(domain.MeshInputs{Band: domain.BandLow, LoadFactor: 1.0, MedianFee: 10})

	if len(votes) != 4 {
		t.Fatalf("expected 4 votes, got %d", len(votes))
	}
	if intent.Mode != domain.MeshAccelerate {
		t.Errorf("expected accelerate, got %s", intent.Mode)
	}
	if intent.Priority != domain.PriorityBalanced {
		t.Errorf("expected balanced, got %s", intent.Priority)
	}
	if w := intent.ModeWeights[domain.MeshAccelerate]; w < 0.999 || w > 1.001 {
		t.Errorf("expected full weight on accelerate, got %f", w)
	}
}

func TestConvene_InfraOverridesOnLoad(t *testing.T) {
	a := NewAggregator()
	// Band says normal, but load 4.5 makes infra see extreme and median makes liquidity see elevated.
	votes, intent := a.Convene(domain.MeshInputs{Band: domain.BandNormal, LoadFactor: 4.5, MedianFee: 300})

	if votes[0].Mode != domain.MeshDefensive {
		t.Errorf("infra should vote defensive, got %s", votes[0].Mode)
	}
	if votes[1].Mode != domain.MeshFeePressure {
		t.Errorf("liquidity should vote fee_pressure, got %s", votes[1].Mode)
	}
	// defensive 0.4, fee_pressure 0.3, steady_state 0.3
	if intent.Mode != domain.MeshDefensive {
		t.Errorf("expected defensive, got %s", intent.Mode)
	}
	// safety_first 0.7 vs balanced 0.3
	if intent.Priority != domain.PrioritySafetyFirst {
		t.Errorf("expected safety_first, got %s", intent.Priority)
	}
}

func TestConvene_ProjectionSplitsVotes(t *testing.T) {
	a := NewAggregator()
	// Live metrics read elevated, the horizon projects extreme.
	votes, intent := a.Convene(domain.MeshInputs{
		Band: domain.BandExtreme, ScheduleBand: domain.BandElevated, LoadFactor: 1.5, MedianFee: 1000,
	})

	want := []domain.MeshMode{domain.MeshFeePressure, domain.MeshFeePressure, domain.MeshDefensive, domain.MeshDefensive}
	for i, m := range want {
		if votes[i].Mode != m {
			t.Errorf("%s voted %s, want %s", votes[i].AgentName, votes[i].Mode, m)
		}
	}
	// fee_pressure 0.7, defensive 0.3
	if intent.Mode != domain.MeshFeePressure {
		t.Errorf("expected fee_pressure, got %s", intent.Mode)
	}
	if len(intent.ModeWeights) != 2 {
		t.Errorf("expected a split vote, got %v", intent.ModeWeights)
	}
}

func TestVotersWithCutoffs(t *testing.T) {
	a := NewAggregator(VotersWithCutoffs(LensCutoffs{ElevatedLoad: 1.5, ExtremeLoad: 3, ElevatedMedian: 100})...)
	votes, _ := a.Convene(domain.MeshInputs{Band: domain.BandNormal, ScheduleBand: domain.BandNormal, LoadFactor: 1.6, MedianFee: 120})

	if votes[0].Mode != domain.MeshFeePressure || votes[1].Mode != domain.MeshFeePressure {
		t.Errorf("custom cut-offs not applied: %s/%s", votes[0].Mode, votes[1].Mode)
	}
	if votes[2].Mode != domain.MeshSteadyState {
		t.Errorf("policy voter should follow the band, got %s", votes[2].Mode)
	}
}

func TestConvene_TieGoesToCaution(t *testing.T) {
	a := NewAggregator(
		Voter{Name: "a", Weight: 0.5, Lens: func(domain.MeshInputs) domain.Band { return domain.BandLow }},
		Voter{Name: "b", Weight: 0.5, Lens: func(domain.MeshInputs) domain.Band { return domain.BandElevated }},
	)
	_, intent := a.Convene(domain.MeshInputs{Band: domain.BandNormal})

	if intent.Mode != domain.MeshFeePressure {
		t.Errorf("tie should resolve to fee_pressure, got %s", intent.Mode)
	}
	if intent.Priority != domain.PrioritySafetyFirst {
		t.Errorf("priority tie should resolve to safety_first, got %s", intent.Priority)
	}
}

func TestConvene_ExtremeBand(t *testing.T) {
	_, intent := NewAggregator().Convene(domain.MeshInputs{
		Band: domain.BandExtreme, ScheduleBand: domain.BandExtreme, LoadFactor: 4.5, MedianFee: 10000,
	})
	if intent.Mode != domain.MeshDefensive {
		t.Errorf("expected defensive, got %s", intent.Mode)
	}
	if intent.Inputs.ScheduleBand != domain.BandExtreme {
		t.Errorf("schedule band not carried into inputs: %s", intent.Inputs.ScheduleBand)
	}
	if len(intent.Advice.Wallets) == 0 || len(intent.Advice.Integrators) == 0 || len(intent.Advice.NodeOperators) == 0 {
		t.Errorf("advice should cover every audience: %+v", intent.Advice)
	}
}

func TestConvene_InvalidBand(t *testing.T) {
	_, intent := NewAggregator().Convene(domain.MeshInputs{Band: "???", LoadFactor: 1.0, MedianFee: 50})
	if intent.Mode != domain.MeshSteadyState {
		t.Errorf("unknown band should read as normal, got %s", intent.Mode)
	}
	if intent.Inputs.Band != domain.BandNormal {
		t.Errorf("inputs should record normal, got %s", intent.Inputs.Band)
	}
}

func TestModeForBand(t *testing.T) {
	tests := map[domain.Band]domain.MeshMode{
		domain.BandLow:      domain.MeshAccelerate,
		domain.BandNormal:   domain.MeshSteadyState,
		domain.BandElevated: domain.MeshFeePressure,
		domain.BandExtreme:  domain.MeshDefensive,
	}
	for band, want := range tests {
		if got := ModeForBand(band); got != want {
			t.Errorf("ModeForBand(%s) = %s, want %s", band, got, want)
		}
	}
}
