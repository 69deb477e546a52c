// Package council aggregates weighted votes from a fixed roster of voters into
// a single mesh intent.
package council

import (
	"fmt"

	"governor-xrpl-lab/internal/domain"
)

// Lens turns the shared inputs into the band a voter believes in.
// Voters without a lens follow in.Band, the projected band.
type Lens func(in domain.MeshInputs) domain.Band

// Voter is one member of the council.
type Voter struct {
	Name   string
	Role   string
	Weight float64
	Lens   Lens
}

// Vote maps the voter's perceived band onto a mode and priority.
func (v Voter) Vote(in domain.MeshInputs) domain.CouncilVote {
	band := in.Band
	if v.Lens != nil {
		band = v.Lens(in)
	}
	if !band.IsValid() {
		band = domain.BandNormal
	}
	return domain.CouncilVote{
		AgentName: v.Name,
		Role:      v.Role,
		Weight:    v.Weight,
		Mode:      ModeForBand(band),
		Priority:  PriorityForBand(band),
		Comment:   fmt.Sprintf("%s reads the network as %s.", v.Name, band),
	}
}

// ModeForBand is the mapping every voter shares.
func ModeForBand(b domain.Band) domain.MeshMode {
	switch b {
	case domain.BandLow:
		return domain.MeshAccelerate
	case domain.BandElevated:
		return domain.MeshFeePressure
	case domain.BandExtreme:
		return domain.MeshDefensive
	default:
		return domain.MeshSteadyState
	}
}

// PriorityForBand returns safety_first for stressed bands.
func PriorityForBand(b domain.Band) domain.Priority {
	if b.IsStressed() {
		return domain.PrioritySafetyFirst
	}
	return domain.PriorityBalanced
}

// atLeast returns the more severe of b and floor.
func atLeast(b, floor domain.Band) domain.Band {
	if !b.IsValid() || b.Rank() < floor.Rank() {
		return floor
	}
	return b
}

// currentBand is the band observed now. Inputs without a schedule band
// fall back to the projected band.
func currentBand(in domain.MeshInputs) domain.Band {
	if in.ScheduleBand.IsValid() {
		return in.ScheduleBand
	}
	return in.Band
}

// LensCutoffs are the live-metric levels at which the infra and liquidity
// voters escalate past the current band.
type LensCutoffs struct {
	ElevatedLoad   float64
	ExtremeLoad    float64
	ElevatedMedian int64
}

// DefaultLensCutoffs matches the default fee band thresholds.
func DefaultLensCutoffs() LensCutoffs {
	return LensCutoffs{ElevatedLoad: 2, ExtremeLoad: 4, ElevatedMedian: 200}
}

// DefaultVoters returns the standard four-member roster.
// Infra and liquidity judge the live load and median against the current
// band; policy and integrator follow the projected band.
func DefaultVoters() []Voter {
	return VotersWithCutoffs(DefaultLensCutoffs())
}

// VotersWithCutoffs returns the standard roster with the given lens cut-offs.
func VotersWithCutoffs(c LensCutoffs) []Voter {
	return []Voter{
		{
			Name: "InfraSentinel", Role: "infra", Weight: 0.4,
			Lens: func(in domain.MeshInputs) domain.Band {
				band := currentBand(in)
				switch {
				case in.LoadFactor >= c.ExtremeLoad:
					return domain.BandExtreme
				case in.LoadFactor >= c.ElevatedLoad:
					return atLeast(band, domain.BandElevated)
				}
				return band
			},
		},
		{
			Name: "LiquidityHermes", Role: "liquidity", Weight: 0.3,
			Lens: func(in domain.MeshInputs) domain.Band {
				band := currentBand(in)
				if in.MedianFee >= c.ElevatedMedian {
					return atLeast(band, domain.BandElevated)
				}
				return band
			},
		},
		{Name: "GuardianLex", Role: "policy", Weight: 0.2},
		{Name: "IntegratorMuse", Role: "integrator", Weight: 0.1},
	}
}

// Aggregator runs the council.
type Aggregator struct {
	voters []Voter
}

// NewAggregator creates an aggregator. No voters means the default roster.
func NewAggregator(voters ...Voter) *Aggregator {
	if len(voters) == 0 {
		voters = DefaultVoters()
	}
	return &Aggregator{voters: append([]Voter(nil), voters...)}
}

// Voters returns a copy of the roster.
func (a *Aggregator) Voters() []Voter {
	return append([]Voter(nil), a.voters...)
}

// Convene collects every vote and picks the heaviest mode and priority
// independently. Ties go to the more cautious value.
func (a *Aggregator) Convene(in domain.MeshInputs) ([]domain.CouncilVote, domain.MeshIntent) {
	if !in.Band.IsValid() {
		in.Band = domain.BandNormal
	}

	votes := make([]domain.CouncilVote, 0, len(a.voters))
	modeWeights := make(map[domain.MeshMode]float64)
	priorityWeights := make(map[domain.Priority]float64)
	for _, v := range a.voters {
		vote := v.Vote(in)
		votes = append(votes, vote)
		modeWeights[vote.Mode] += vote.Weight
		priorityWeights[vote.Priority] += vote.Weight
	}

	mode := domain.MeshSteadyState
	if len(votes) > 0 {
		mode = votes[0].Mode
		for m, w := range modeWeights {
			best := modeWeights[mode]
			if w > best || (w == best && m.Caution() > mode.Caution()) {
				mode = m
			}
		}
	}

	priority := domain.PriorityBalanced
	if priorityWeights[domain.PrioritySafetyFirst] >= priorityWeights[domain.PriorityBalanced] && len(votes) > 0 {
		priority = domain.PrioritySafetyFirst
	}

	return votes, domain.MeshIntent{
		Mode:            mode,
		Priority:        priority,
		Inputs:          in,
		Advice:          adviceFor(mode),
		ModeWeights:     modeWeights,
		PriorityWeights: priorityWeights,
	}
}

func adviceFor(mode domain.MeshMode) domain.Advice {
	switch mode {
	case domain.MeshAccelerate:
		return domain.Advice{
			Wallets:       []string{"Network is calm; a good moment for settlements and housekeeping."},
			Integrators:   []string{"Safe window for scheduled payouts and account maintenance."},
			NodeOperators: []string{"Use the window for light maintenance and index catch-up."},
		}
	case domain.MeshFeePressure:
		return domain.Advice{
			Wallets:       []string{"Prefer simple payments and avoid complex paths while fees are elevated."},
			Integrators:   []string{"Batch non-urgent payouts and avoid unnecessary on-ledger churn."},
			NodeOperators: []string{"Watch queue depth and trim non-essential workloads."},
		}
	case domain.MeshDefensive:
		return domain.Advice{
			Wallets:       []string{"Send only essential payments and expect higher fees."},
			Integrators:   []string{"Hold non-urgent payouts until the network recovers."},
			NodeOperators: []string{"Monitor validator health closely and pause non-essential jobs."},
		}
	default:
		return domain.Advice{
			Wallets:       []string{"Operate normally with standard fee policies."},
			Integrators:   []string{"Maintain normal flow and keep monitoring fee signals."},
			NodeOperators: []string{"Keep the usual monitoring and observability in place."},
		}
	}
}
