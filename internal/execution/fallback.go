package execution

import (
	"math"

	"governor-xrpl-lab/internal/domain"
	"governor-xrpl-lab/internal/protocol"
)

// FallbackSignal is the heuristic signal used without a fuser.
func FallbackSignal(s domain.NetworkSnapshot, band domain.Band, mode domain.GuardianMode) domain.FeeSignal {
	pressure := 0.3
	if band.IsStressed() {
		pressure = 1.0
	}
	safe := int64(math.Round(float64(s.MedianFee) * 1.1))
	return domain.FeeSignal{
		Band:              band,
		MedianFee:         s.MedianFee,
		RecommendedFee:    s.RecommendedFee,
		SafeFee:           safe,
		PressureScore:     pressure,
		GuardianMode:      mode,
		AttentionRequired: band.IsStressed(),
		Notes:             []string{"Fallback signal: safe fee is median × 1.1."},
	}
}

// FallbackPlan is the flat simple_payment_v1 plan at risk 1.
func FallbackPlan(intent domain.TxIntent) domain.ProtocolPlan {
	return domain.ProtocolPlan{
		Protocol:  protocol.SimplePaymentV1,
		Kind:      domain.ProtocolPayment,
		RiskLevel: domain.MinRisk,
		Score:     0.25,
		Reasons:   []string{"fallback_tx_plan", "intent=" + string(intent.Kind)},
		Steps: []domain.PlanStep{
			{Name: "check_accounts", Description: "Confirm source and destination accounts exist and are funded."},
			{Name: "estimate_fee", Description: "Use the quoted fee in drops."},
			{Name: "prepare_payment_instruction", Description: "Build a direct XRP Payment for the intent amount."},
		},
	}
}

// FallbackRoute echoes plan as a single candidate scored 0.5.
func FallbackRoute(plan domain.ProtocolPlan, mode domain.GuardianMode) domain.RouteDecision {
	risk := domain.ClampRisk(plan.RiskLevel)
	c := domain.RouteCandidate{
		Protocol:  plan.Protocol,
		Score:     0.5,
		Reason:    "fallback_router",
		BaseRisk:  risk,
		FinalRisk: risk,
	}
	return domain.RouteDecision{
		SelectedProtocol: c.Protocol,
		FinalRiskLevel:   c.FinalRisk,
		Score:            c.Score,
		Selected:         c,
		Candidates:       []domain.RouteCandidate{c},
		Meta: domain.RouteMeta{
			Band:         domain.BandNormal,
			GuardianMode: mode,
			Notes:        []string{"Fallback router decision."},
		},
	}
}
