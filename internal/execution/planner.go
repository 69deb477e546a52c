// Package execution composes the decision stages into an advisory execution
// bundle for a single transaction intent. It never signs or submits anything.
package execution

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"governor-xrpl-lab/internal/domain"
	"governor-xrpl-lab/internal/guardian"
	"governor-xrpl-lab/internal/observability"
	"governor-xrpl-lab/internal/protocol"
	"governor-xrpl-lab/internal/telemetry"
)

// DefaultRiskBudget is used when Options.RiskBudget is not set.
const DefaultRiskBudget = 3

// SnapshotSource supplies the current network snapshot.
type SnapshotSource interface {
	FetchSnapshot(ctx context.Context) domain.NetworkSnapshot
}

// Classifier bands a snapshot.
type Classifier interface {
	Classify(s domain.NetworkSnapshot) domain.FeeBand
}

// Forecaster projects the band from history already observed.
type Forecaster interface {
	Forecast(band domain.Band) domain.FeeHorizon
}

// GuardianEngine derives the guardian decision.
type GuardianEngine interface {
	Classify(s domain.NetworkSnapshot) domain.GuardianDecision
}

// SignalFuser builds the fee signal.
type SignalFuser interface {
	Fuse(s domain.NetworkSnapshot, band domain.Band, policy domain.GuardianPolicy) domain.FeeSignal
}

// ProtocolSelector picks a protocol plan.
type ProtocolSelector interface {
	SelectForIntent(kind string, cond protocol.Conditions, riskBudget int) domain.ProtocolPlan
}

// TxRouter scores the plan against live conditions.
type TxRouter interface {
	Route(intent domain.TxIntent, plan domain.ProtocolPlan, s domain.NetworkSnapshot, mode domain.GuardianMode) domain.RouteDecision
}

// Options holds the planner's collaborators. Nil fields are unavailable
// and replaced by conservative fallbacks, each recorded in the bundle notes.
type Options struct {
	Source     SnapshotSource
	Classifier Classifier
	Forecaster Forecaster
	Guardian   GuardianEngine
	Signal     SignalFuser
	// Selector and Router must be built over Catalog: the router panics on
	// protocols outside its catalog. A selected protocol missing from Catalog
	// is replaced by the fallback plan before routing.
	Selector   ProtocolSelector
	Router     TxRouter
	// Catalog resolves transaction types for offline templates.
	Catalog    *protocol.Catalog
	RiskBudget int
	Clock      func() time.Time
	Logger     *log.Logger
}

// Planner builds execution bundles.
type Planner struct {
	opts   Options
	logger *log.Logger
}

// NewPlanner creates a planner. Classifier, guardian and catalog default to
// the standard implementations since every bundle needs them.
func NewPlanner(opts Options) *Planner {
	if opts.Classifier == nil {
		opts.Classifier = telemetry.NewClassifier(telemetry.DefaultBandThresholds())
	}
	if opts.Guardian == nil {
		opts.Guardian = guardian.NewEngine(guardian.DefaultThresholds(), guardian.Options{Clock: opts.Clock})
	}
	if opts.Catalog == nil {
		opts.Catalog = protocol.DefaultCatalog()
	}
	if opts.RiskBudget == 0 {
		opts.RiskBudget = DefaultRiskBudget
	}
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return time.Now().UTC() }
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Planner{opts: opts, logger: logger}
}

// Plan builds the bundle for intent. It always returns a complete bundle.
func (p *Planner) Plan(ctx context.Context, intent domain.TxIntent) domain.ExecutionBundle {
	var notes []string
	if err := intent.Validate(); err != nil {
		notes = append(notes, fmt.Sprintf("Intent failed validation (%v); planning continues advisory-only.", err))
	}

	snap := p.snapshot(ctx, &notes)
	feeBand := p.opts.Classifier.Classify(snap)
	horizon := p.horizon(feeBand.Band, &notes)
	decision := p.opts.Guardian.Classify(snap)
	sig := p.signal(snap, feeBand.Band, decision.Policy, &notes)
	plan := p.plan(intent, snap, feeBand.Band, decision.Policy.Mode, &notes)
	route := p.route(intent, plan, snap, decision.Policy.Mode, &notes)
	hint := BuildHint(feeBand.Band, sig.PressureScore)
	fee := quote(snap, sig, hint)

	txType := "Payment"
	if spec, err := p.opts.Catalog.Lookup(route.SelectedProtocol); err == nil {
		txType = spec.TxType
	} else {
		notes = append(notes, fmt.Sprintf("Protocol %q not in catalog, offline template uses Payment.", route.SelectedProtocol))
	}

	notes = append(notes,
		fmt.Sprintf("Band %s projected %s over %ds.", feeBand.Band, horizon.ProjectedBand, horizon.HorizonSeconds),
		fmt.Sprintf("Guardian %s (%s).", decision.Policy.Mode, decision.Policy.Status),
	)

	observability.RecordBundle(string(hint.Mode), route.SelectedProtocol)
	p.logger.Printf("planned %s via %s: band=%s guardian=%s hint=%s fee=%d",
		intent.Kind, route.SelectedProtocol, feeBand.Band, decision.Policy.Mode, hint.Mode, fee.FinalFee)

	return domain.ExecutionBundle{
		Version:             domain.BundleVersion,
		CreatedAt:           p.opts.Clock(),
		Intent:              intent,
		Snapshot:            snap,
		FeeBand:             feeBand,
		Horizon:             horizon,
		Guardian:            decision.Policy,
		Signal:              sig,
		Plan:                plan,
		Route:               route,
		Fee:                 fee,
		ExecutionHint:       hint,
		OfflineInstructions: OfflineInstructions(intent, txType, fee.FinalFee),
		Safety:              Safety(),
		Notes:               notes,
	}
}

func (p *Planner) snapshot(ctx context.Context, notes *[]string) domain.NetworkSnapshot {
	if p.opts.Source == nil {
		*notes = append(*notes, "Snapshot source unavailable, using the static fallback snapshot.")
		return domain.FallbackSnapshot(p.opts.Clock())
	}
	s := p.opts.Source.FetchSnapshot(ctx)
	if err := s.Validate(); err != nil {
		*notes = append(*notes, fmt.Sprintf("Snapshot normalized: %v.", err))
	}
	if s.Source == domain.SnapshotSourceFallback {
		*notes = append(*notes, "No ledger node answered, using the static fallback snapshot.")
	}
	return s.Normalize()
}

func (p *Planner) horizon(band domain.Band, notes *[]string) domain.FeeHorizon {
	if p.opts.Forecaster != nil {
		return p.opts.Forecaster.Forecast(band)
	}
	*notes = append(*notes, "Horizon predictor unavailable, projecting the current band.")
	return domain.FeeHorizon{
		ProjectedBand: band,
		CurrentBand:   band,
		TrendShort:    domain.Trend{Direction: domain.TrendFlat},
		TrendLong:     domain.Trend{Direction: domain.TrendFlat},
		Comment:       "Fallback horizon: flat trends at the current band.",
	}
}

func (p *Planner) signal(s domain.NetworkSnapshot, band domain.Band, policy domain.GuardianPolicy, notes *[]string) domain.FeeSignal {
	if p.opts.Signal != nil {
		return p.opts.Signal.Fuse(s, band, policy)
	}
	*notes = append(*notes, "Fee signal unavailable, using the heuristic fallback.")
	return FallbackSignal(s, band, policy.Mode)
}

func (p *Planner) plan(intent domain.TxIntent, s domain.NetworkSnapshot, band domain.Band, mode domain.GuardianMode, notes *[]string) domain.ProtocolPlan {
	if p.opts.Selector != nil {
		plan := p.opts.Selector.SelectForIntent(string(intent.Kind), protocol.Conditions{
			Band:           band,
			GuardianMode:   mode,
			MedianFee:      s.MedianFee,
			RecommendedFee: s.RecommendedFee,
		}, p.opts.RiskBudget)
		if _, err := p.opts.Catalog.Lookup(plan.Protocol); err == nil {
			return plan
		}
		*notes = append(*notes, fmt.Sprintf("Selected protocol %q not in catalog, using simple_payment_v1.", plan.Protocol))
		return FallbackPlan(intent)
	}
	*notes = append(*notes, "Protocol selector unavailable, using simple_payment_v1.")
	return FallbackPlan(intent)
}

func (p *Planner) route(intent domain.TxIntent, plan domain.ProtocolPlan, s domain.NetworkSnapshot, mode domain.GuardianMode, notes *[]string) domain.RouteDecision {
	if p.opts.Router != nil {
		return p.opts.Router.Route(intent, plan, s, mode)
	}
	*notes = append(*notes, "Transaction router unavailable, echoing the selected plan.")
	return FallbackRoute(plan, mode)
}

// quote picks the final fee: the safe fee when the hint defers or attention
// is required, otherwise the recommended fee.
func quote(s domain.NetworkSnapshot, sig domain.FeeSignal, hint domain.ExecutionHint) domain.FeeQuote {
	final := s.RecommendedFee
	if hint.Mode == domain.HintDelayedOrBatched || sig.AttentionRequired {
		final = sig.SafeFee
	}
	if final < s.BaseFee {
		final = s.BaseFee
	}
	return domain.FeeQuote{
		BaseFee:        s.BaseFee,
		RecommendedFee: s.RecommendedFee,
		SafeFee:        sig.SafeFee,
		FinalFee:       final,
		Unit:           "drops",
	}
}
