package domain

// ProtocolKind is the family a catalog protocol belongs to.
type ProtocolKind string

const (
	ProtocolPayment ProtocolKind = "payment"
	ProtocolStream  ProtocolKind = "stream"
	ProtocolEscrow  ProtocolKind = "escrow"
)

// Risk levels are integers in [MinRisk, MaxRisk].
const (
	MinRisk = 1
	MaxRisk = 5
)

// ClampRisk bounds r to [MinRisk, MaxRisk].
func ClampRisk(r int) int {
	if r < MinRisk {
		return MinRisk
	}
	if r > MaxRisk {
		return MaxRisk
	}
	return r
}

// PlanStep is one advisory step of a protocol plan.
type PlanStep struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProtocolPlan is the selector's recommendation for an intent.
type ProtocolPlan struct {
	Protocol  string       `json:"protocol"`
	Kind      ProtocolKind `json:"kind"`
	RiskLevel int          `json:"risk_level"`
	Score     float64      `json:"score"`
	Reasons   []string     `json:"reasons"`
	Steps     []PlanStep   `json:"steps"`
}

// RouteCandidate is one scored protocol considered by the router.
type RouteCandidate struct {
	Protocol  string  `json:"protocol"`
	Score     float64 `json:"score"`
	Reason    string  `json:"reason"`
	BaseRisk  int     `json:"base_risk"`
	FinalRisk int     `json:"final_risk"`
}

// RouteMeta records the conditions a route decision was made under.
type RouteMeta struct {
	Band         Band         `json:"band"`
	GuardianMode GuardianMode `json:"guardian_mode"`
	Notes        []string     `json:"notes"`
}

// RouteDecision is the router output. Exactly one candidate is selected.
type RouteDecision struct {
	SelectedProtocol string           `json:"selected_protocol"`
	FinalRiskLevel   int              `json:"final_risk_level"`
	Score            float64          `json:"score"`
	Selected         RouteCandidate   `json:"selected"`
	Candidates       []RouteCandidate `json:"candidates"`
	Meta             RouteMeta        `json:"meta"`
}
