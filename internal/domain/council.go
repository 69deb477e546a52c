package domain

// MeshMode is the aggregated operating posture chosen by the council.
type MeshMode string

const (
	MeshAccelerate  MeshMode = "accelerate"
	MeshSteadyState MeshMode = "steady_state"
	MeshFeePressure MeshMode = "fee_pressure"
	MeshDefensive   MeshMode = "defensive"
)

// Caution returns how conservative a mesh mode is. Higher is more cautious.
func (m MeshMode) Caution() int {
	switch m {
	case MeshAccelerate:
		return 0
	case MeshSteadyState:
		return 1
	case MeshFeePressure:
		return 2
	case MeshDefensive:
		return 3
	}
	return -1
}

// Priority is the aggregated priority chosen by the council.
type Priority string

const (
	PriorityBalanced    Priority = "balanced"
	PrioritySafetyFirst Priority = "safety_first"
)

// CouncilVote is one voter's proposal.
type CouncilVote struct {
	AgentName string   `json:"agent_name"`
	Role      string   `json:"role"`
	Weight    float64  `json:"weight"`
	Mode      MeshMode `json:"mode"`
	Priority  Priority `json:"priority"`
	Comment   string   `json:"comment"`
}

// MeshInputs records what the council saw.
type MeshInputs struct {
	Band         Band    `json:"band"`
	ScheduleBand Band    `json:"schedule_band"`
	LoadFactor   float64 `json:"load_factor"`
	MedianFee    int64   `json:"median_fee"`
}

// Advice carries audience-specific guidance.
type Advice struct {
	Wallets       []string `json:"wallets"`
	Integrators   []string `json:"integrators"`
	NodeOperators []string `json:"node_operators"`
}

// MeshIntent is the council's aggregated decision.
type MeshIntent struct {
	Mode            MeshMode             `json:"mode"`
	Priority        Priority             `json:"priority"`
	Inputs          MeshInputs           `json:"inputs"`
	Advice          Advice               `json:"advice"`
	ModeWeights     map[MeshMode]float64 `json:"mode_weights"`
	PriorityWeights map[Priority]float64 `json:"priority_weights"`
}
