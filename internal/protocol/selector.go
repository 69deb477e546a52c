package protocol

import (
	"fmt"
	"strings"

	"governor-xrpl-lab/internal/domain"
)

// Reason recorded when no protocol fits the risk budget.
const ReasonRiskBudgetRelaxed = "risk_budget_relaxed"

// Conditions are the network inputs to selection.
type Conditions struct {
	Band           domain.Band
	GuardianMode   domain.GuardianMode
	MedianFee      int64
	RecommendedFee int64
}

// Selector picks the best catalog protocol for an intent.
type Selector struct {
	catalog *Catalog
}

// NewSelector creates a selector. A nil catalog uses DefaultCatalog.
func NewSelector(catalog *Catalog) *Selector {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Selector{catalog: catalog}
}

// Catalog returns the selector's catalog.
func (s *Selector) Catalog() *Catalog {
	return s.catalog
}

// NormalizeBudget clamps a risk budget to [1, 5].
func NormalizeBudget(budget int) int {
	return domain.ClampRisk(budget)
}

// SelectForIntent returns the lowest-risk protocol for kind within budget.
// It always returns a plan; unknown kinds fall back to payment protocols.
func (s *Selector) SelectForIntent(kind string, cond Conditions, riskBudget int) domain.ProtocolPlan {
	budget := NormalizeBudget(riskBudget)
	normalized := strings.ToLower(strings.TrimSpace(kind))

	var reasons []string
	pk, ok := KindForIntent(normalized)
	if !ok {
		reasons = append(reasons, fmt.Sprintf("unknown intent kind %q, falling back to payment protocols", kind))
	}

	pool := s.catalog.ByKind(pk)
	if len(pool) == 0 {
		pool = s.catalog.ByKind(domain.ProtocolPayment)
		reasons = append(reasons, fmt.Sprintf("no %s protocols in catalog, falling back to payment protocols", pk))
	}

	var within []Spec
	for _, spec := range pool {
		if spec.Risk <= budget {
			within = append(within, spec)
		}
	}
	if len(within) == 0 {
		within = pool
		reasons = append(reasons, ReasonRiskBudgetRelaxed)
	}

	if len(within) == 0 {
		// Catalog has no payment protocols either.
		return domain.ProtocolPlan{
			Protocol:  SimplePaymentV1,
			Kind:      domain.ProtocolPayment,
			RiskLevel: domain.MinRisk,
			Score:     0.5,
			Reasons:   append(reasons, "catalog empty, using simple_payment_v1"),
			Steps:     []domain.PlanStep{},
		}
	}

	// The lowest intrinsic risk wins; the score ranks protocols of equal risk.
	best, bestScore := within[0], score(within[0].Risk, budget, cond)
	for _, spec := range within[1:] {
		if spec.Risk != best.Risk {
			break
		}
		if sc := score(spec.Risk, budget, cond); sc > bestScore {
			best, bestScore = spec, sc
		}
	}

	reasons = append(reasons,
		fmt.Sprintf("intent=%s kind=%s budget=%d", normalized, pk, budget),
		fmt.Sprintf("band=%s guardian=%s risk=%d", cond.Band, cond.GuardianMode, best.Risk),
	)
	if cond.GuardianMode == domain.ModeFeePressure {
		reasons = append(reasons, "guardian penalty applied to risk > 1")
	}
	if cond.MedianFee > cond.RecommendedFee {
		reasons = append(reasons, "median fee above recommended, scores reduced")
	}

	return domain.ProtocolPlan{
		Protocol:  best.Name,
		Kind:      best.Kind,
		RiskLevel: best.Risk,
		Score:     bestScore,
		Reasons:   reasons,
		Steps:     append([]domain.PlanStep{}, best.Steps...),
	}
}

func score(risk, budget int, cond Conditions) float64 {
	d := risk - budget
	if d < 0 {
		d = -d
	}
	sc := 1.0 / (1.0 + float64(d))
	if cond.GuardianMode == domain.ModeFeePressure && risk > 1 {
		sc *= 0.7
	}
	if cond.MedianFee > cond.RecommendedFee {
		sc *= 0.85
	}
	return sc
}
