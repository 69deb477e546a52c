package protocol

import (
	"errors"
	"testing"

	"governor-xrpl-lab/internal/domain"
)

func TestCatalog_Lookup(t *testing.T) {
	c := DefaultCatalog()

	s, err := c.Lookup(StreamPayV1)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if s.Risk != 3 || s.Kind != domain.ProtocolStream || s.TxType != "PaymentChannelCreate" {
		t.Errorf("unexpected spec: %+v", s)
	}

	if _, err := c.Lookup("teleport_v9"); !errors.Is(err, ErrUnknownProtocol) {
		t.Errorf("expected ErrUnknownProtocol, got %v", err)
	}

	names := c.Names()
	if len(names) != 4 || names[0] != SimplePaymentV1 {
		t.Errorf("unexpected order: %v", names)
	}
}

func TestCatalog_MustLookupPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustLookup should panic on unknown protocol")
		}
	}()
	DefaultCatalog().MustLookup("missing")
}

func TestSelector_CalmPayment(t *testing.T) {
	sel := NewSelector(nil)
	plan := sel.SelectForIntent("simple_payment", Conditions{
		Band: domain.BandLow, GuardianMode: domain.ModeCalm, MedianFee: 10, RecommendedFee: 13,
	}, 3)

	if plan.Protocol != SimplePaymentV1 {
		t.Errorf("expected %s, got %s", SimplePaymentV1, plan.Protocol)
	}
	if plan.RiskLevel != 1 {
		t.Errorf("expected risk 1, got %d", plan.RiskLevel)
	}
	if len(plan.Steps) == 0 || len(plan.Reasons) == 0 {
		t.Errorf("plan should carry steps and reasons: %+v", plan)
	}
}

func TestSelector_NeverEmptyUnderPressure(t *testing.T) {
	sel := NewSelector(nil)
	plan := sel.SelectForIntent("simple_payment", Conditions{
		Band: domain.BandExtreme, GuardianMode: domain.ModeFeePressure, MedianFee: 3000, RecommendedFee: 2500,
	}, 1)

	if plan.Protocol == "" {
		t.Fatal("expected a protocol")
	}
	if plan.RiskLevel < domain.MinRisk || plan.RiskLevel > domain.MaxRisk {
		t.Errorf("risk out of range: %d", plan.RiskLevel)
	}
	if plan.Score <= 0 {
		t.Errorf("expected positive score, got %f", plan.Score)
	}
}

func TestSelector_BudgetRelaxed(t *testing.T) {
	sel := NewSelector(nil)
	plan := sel.SelectForIntent("streamed_salary", Conditions{Band: domain.BandNormal, GuardianMode: domain.ModeNormal}, 1)

	if plan.Protocol != StreamPayV1 {
		t.Errorf("expected %s, got %s", StreamPayV1, plan.Protocol)
	}
	if !contains(plan.Reasons, ReasonRiskBudgetRelaxed) {
		t.Errorf("expected %s in reasons: %v", ReasonRiskBudgetRelaxed, plan.Reasons)
	}
}

func TestSelector_UnknownKindFallsBackToPayment(t *testing.T) {
	sel := NewSelector(nil)
	plan := sel.SelectForIntent("flash_loan", Conditions{Band: domain.BandNormal}, 5)

	if plan.Kind != domain.ProtocolPayment {
		t.Errorf("expected payment fallback, got %s", plan.Kind)
	}
	if len(plan.Reasons) == 0 {
		t.Error("fallback should be explained in reasons")
	}
}

func TestSelector_KindAliases(t *testing.T) {
	sel := NewSelector(nil)
	for kind, want := range map[string]string{
		"escrow_milestone": EscrowMilestoneV1,
		"escrow":           EscrowMilestoneV1,
		" Stream ":         StreamPayV1,
		"payment":          SimplePaymentV1,
	} {
		if got := sel.SelectForIntent(kind, Conditions{}, 3).Protocol; got != want {
			t.Errorf("SelectForIntent(%q) = %s, want %s", kind, got, want)
		}
	}
}

func TestSelector_BudgetNormalization(t *testing.T) {
	if NormalizeBudget(0) != 1 || NormalizeBudget(-4) != 1 || NormalizeBudget(9) != 5 || NormalizeBudget(3) != 3 {
		t.Error("budget should clamp to [1,5]")
	}
}

func TestScore_Penalties(t *testing.T) {
	base := score(2, 2, Conditions{GuardianMode: domain.ModeCalm})
	if base != 1.0 {
		t.Fatalf("expected 1.0 at budget, got %f", base)
	}
	pressured := score(2, 2, Conditions{GuardianMode: domain.ModeFeePressure})
	if pressured < 0.699 || pressured > 0.701 {
		t.Errorf("expected 0.7 under fee_pressure, got %f", pressured)
	}
	for _, mode := range []domain.GuardianMode{domain.ModeStress, domain.ModeAttack} {
		if sc := score(2, 2, Conditions{GuardianMode: mode}); sc != 1.0 {
			t.Errorf("guardian penalty should only apply to fee_pressure, %s got %f", mode, sc)
		}
	}
	if score(1, 1, Conditions{GuardianMode: domain.ModeFeePressure}) != 1.0 {
		t.Error("risk 1 should not get the guardian penalty")
	}
	overpriced := score(2, 2, Conditions{MedianFee: 20, RecommendedFee: 10})
	if overpriced != 0.85 {
		t.Errorf("expected 0.85, got %f", overpriced)
	}
}

func TestRouter_Calm(t *testing.T) {
	r := NewRouter(nil, nil)
	intent := domain.TxIntent{Kind: domain.IntentSimplePayment}
	plan := NewSelector(nil).SelectForIntent("simple_payment", Conditions{Band: domain.BandLow, GuardianMode: domain.ModeCalm}, 3)

	d := r.Route(intent, plan, domain.NetworkSnapshot{BaseFee: 10, MedianFee: 10, LoadFactor: 0.8}, domain.ModeCalm)

	if d.SelectedProtocol != SimplePaymentV1 {
		t.Errorf("expected %s, got %s", SimplePaymentV1, d.SelectedProtocol)
	}
	if d.FinalRiskLevel != 1 || d.Score != 1.0 {
		t.Errorf("expected risk 1 score 1.0, got %d %f", d.FinalRiskLevel, d.Score)
	}
	if d.Selected.Protocol != d.SelectedProtocol {
		t.Error("selected candidate should match selected protocol")
	}
	if len(d.Candidates) != 2 {
		t.Errorf("expected both payment protocols as candidates, got %d", len(d.Candidates))
	}
}

type fixedBand domain.Band

func (b fixedBand) Classify(domain.NetworkSnapshot) domain.FeeBand {
	return domain.FeeBand{Band: domain.Band(b)}
}

func TestRouter_StressedAdjustments(t *testing.T) {
	r := NewRouter(nil, fixedBand(domain.BandExtreme))
	plan := domain.ProtocolPlan{Protocol: EscrowMilestoneV1, RiskLevel: 3}

	d := r.Route(domain.TxIntent{Kind: domain.IntentEscrowMilestone}, plan, domain.NetworkSnapshot{}, domain.ModeAttack)

	if d.Selected.BaseRisk != 3 || d.FinalRiskLevel != 4 {
		t.Errorf("expected base 3 final 4, got %d/%d", d.Selected.BaseRisk, d.FinalRiskLevel)
	}
	if d.Score < 0.549 || d.Score > 0.551 {
		t.Errorf("expected score 0.55, got %f", d.Score)
	}
	if d.Meta.Band != domain.BandExtreme || d.Meta.GuardianMode != domain.ModeAttack {
		t.Errorf("unexpected meta: %+v", d.Meta)
	}
}

func TestFinalRiskAndScore(t *testing.T) {
	tests := []struct {
		base  int
		band  domain.Band
		mode  domain.GuardianMode
		final int
	}{
		{1, domain.BandLow, domain.ModeCalm, 1},
		{1, domain.BandElevated, domain.ModeNormal, 2},
		{2, domain.BandNormal, domain.ModeFeePressure, 3},
		{3, domain.BandExtreme, domain.ModeFeePressure, 5},
		{1, domain.BandExtreme, domain.ModeStress, 2},
		{1, domain.BandExtreme, domain.ModeAttack, 2},
		{3, domain.BandExtreme, domain.ModeStress, 4},
		{5, domain.BandExtreme, domain.ModeAttack, 5},
	}
	for _, tt := range tests {
		if got := FinalRisk(tt.base, tt.band, tt.mode); got != tt.final {
			t.Errorf("FinalRisk(%d,%s,%s) = %d, want %d", tt.base, tt.band, tt.mode, got, tt.final)
		}
	}
	if RiskScore(20) != 0.1 {
		t.Error("score should floor at 0.1")
	}
}

func TestRouter_AttackSnapshotNoGuardianStep(t *testing.T) {
	r := NewRouter(nil, fixedBand(domain.BandExtreme))
	plan := domain.ProtocolPlan{Protocol: SimplePaymentV1, RiskLevel: 1}
	s := domain.NetworkSnapshot{LedgerSeq: 90000000, BaseFee: 10, MedianFee: 9500, RecommendedFee: 12000, LoadFactor: 6.5}

	d := r.Route(domain.TxIntent{Kind: domain.IntentSimplePayment}, plan, s, domain.ModeAttack)

	if d.FinalRiskLevel != 2 {
		t.Errorf("expected final risk 2 under attack, got %d", d.FinalRiskLevel)
	}
	if d.Score < 0.849 || d.Score > 0.851 {
		t.Errorf("expected score 0.85, got %f", d.Score)
	}
}

func TestSelector_GuardianReasonOnlyForFeePressure(t *testing.T) {
	sel := NewSelector(nil)
	attack := sel.SelectForIntent("simple_payment", Conditions{Band: domain.BandExtreme, GuardianMode: domain.ModeAttack}, 3)
	if contains(attack.Reasons, "guardian penalty applied to risk > 1") {
		t.Errorf("attack mode should not carry the guardian penalty: %v", attack.Reasons)
	}
	pressure := sel.SelectForIntent("simple_payment", Conditions{Band: domain.BandElevated, GuardianMode: domain.ModeFeePressure}, 3)
	if !contains(pressure.Reasons, "guardian penalty applied to risk > 1") {
		t.Errorf("fee_pressure should carry the guardian penalty: %v", pressure.Reasons)
	}
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
