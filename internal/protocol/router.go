package protocol

import (
	"fmt"

	"governor-xrpl-lab/internal/domain"
)

// BandClassifier maps a snapshot to a fee band.
type BandClassifier interface {
	Classify(s domain.NetworkSnapshot) domain.FeeBand
}

// Router scores a selected plan against live conditions.
type Router struct {
	catalog    *Catalog
	classifier BandClassifier
}

// NewRouter creates a router. A nil catalog uses DefaultCatalog.
// A nil classifier bands by median fee alone.
func NewRouter(catalog *Catalog, classifier BandClassifier) *Router {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Router{catalog: catalog, classifier: classifier}
}

// Route scores every protocol of the plan's kind and selects the plan's protocol.
// Panics if plan.Protocol is not in the catalog.
func (r *Router) Route(intent domain.TxIntent, plan domain.ProtocolPlan, s domain.NetworkSnapshot, mode domain.GuardianMode) domain.RouteDecision {
	selectedSpec := r.catalog.MustLookup(plan.Protocol)
	band := r.band(s.Normalize())

	candidates := make([]domain.RouteCandidate, 0, 4)
	var selected domain.RouteCandidate
	for _, spec := range r.catalog.ByKind(selectedSpec.Kind) {
		c := candidate(intent, spec, band, mode)
		if spec.Name == selectedSpec.Name {
			selected = c
		}
		candidates = append(candidates, c)
	}

	return domain.RouteDecision{
		SelectedProtocol: selected.Protocol,
		FinalRiskLevel:   selected.FinalRisk,
		Score:            selected.Score,
		Selected:         selected,
		Candidates:       candidates,
		Meta: domain.RouteMeta{
			Band:         band,
			GuardianMode: mode,
			Notes: []string{
				"Routing is advisory only.",
				"Final risk adds one step for a stressed band and one for guardian fee_pressure mode.",
			},
		},
	}
}

func (r *Router) band(s domain.NetworkSnapshot) domain.Band {
	if r.classifier != nil {
		return r.classifier.Classify(s).Band
	}
	switch {
	case s.MedianFee <= 20:
		return domain.BandLow
	case s.MedianFee < 200:
		return domain.BandNormal
	case s.MedianFee < 2000:
		return domain.BandElevated
	default:
		return domain.BandExtreme
	}
}

// FinalRisk applies the band and guardian adjustments to a base risk.
func FinalRisk(base int, band domain.Band, mode domain.GuardianMode) int {
	risk := base
	if band.IsStressed() {
		risk++
	}
	if mode == domain.ModeFeePressure {
		risk++
	}
	return domain.ClampRisk(risk)
}

// RiskScore maps a final risk to a score in [0.1, 1].
func RiskScore(finalRisk int) float64 {
	sc := 1.0 - 0.15*float64(finalRisk-1)
	if sc < 0.1 {
		sc = 0.1
	}
	return sc
}

func candidate(intent domain.TxIntent, spec Spec, band domain.Band, mode domain.GuardianMode) domain.RouteCandidate {
	final := FinalRisk(spec.Risk, band, mode)
	return domain.RouteCandidate{
		Protocol:  spec.Name,
		Score:     RiskScore(final),
		Reason:    fmt.Sprintf("intent=%s band=%s guardian=%s risk=%d", intent.Kind, band, mode, final),
		BaseRisk:  spec.Risk,
		FinalRisk: final,
	}
}
