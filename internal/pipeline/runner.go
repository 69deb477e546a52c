// Package pipeline runs the periodic telemetry-to-decision cycle.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"governor-xrpl-lab/internal/council"
	"governor-xrpl-lab/internal/domain"
	"governor-xrpl-lab/internal/guardian"
	"governor-xrpl-lab/internal/horizon"
	"governor-xrpl-lab/internal/observability"
	"governor-xrpl-lab/internal/publish"
	"governor-xrpl-lab/internal/scheduler"
	"governor-xrpl-lab/internal/storage"
	"governor-xrpl-lab/internal/telemetry"
)

// SnapshotSource supplies network snapshots.
type SnapshotSource interface {
	FetchSnapshot(ctx context.Context) domain.NetworkSnapshot
}

// CycleReport is the full output of one cycle.
type CycleReport struct {
	CycleID   string                  `json:"cycle_id"`
	StartedAt time.Time               `json:"started_at"`
	Snapshot  domain.NetworkSnapshot  `json:"snapshot"`
	FeeBand   domain.FeeBand          `json:"fee_band"`
	Horizon   domain.FeeHorizon       `json:"horizon"`
	Guardian  domain.GuardianDecision `json:"guardian"`
	Votes     []domain.CouncilVote    `json:"votes"`
	Mesh      domain.MeshIntent       `json:"mesh"`
	Schedule  domain.SchedulerPlan    `json:"schedule"`
	Risk      RiskRead                `json:"risk"`
	Notes     []string                `json:"notes"`
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Source     SnapshotSource
	Classifier *telemetry.Classifier
	Predictor  *horizon.Predictor
	Guardian   *guardian.Engine
	Council    *council.Aggregator
	// Policies receives every guardian policy. Optional.
	Policies  storage.PolicyStore
	Publisher publish.Publisher
	Clock     func() time.Time
	NewID     func() string
	Logger    *log.Logger
}

// Runner executes cycles one at a time.
type Runner struct {
	source     SnapshotSource
	classifier *telemetry.Classifier
	predictor  *horizon.Predictor
	guardian   *guardian.Engine
	council    *council.Aggregator
	policies   storage.PolicyStore
	publisher  publish.Publisher
	clock      func() time.Time
	newID      func() string
	logger     *log.Logger

	mu sync.Mutex // serializes cycles

	lmu    sync.RWMutex
	last   *CycleReport
	cycles int
}

// NewRunner creates a runner. A nil source makes every cycle use the fallback snapshot.
func NewRunner(opts RunnerOptions) *Runner {
	r := &Runner{
		source:     opts.Source,
		classifier: opts.Classifier,
		predictor:  opts.Predictor,
		guardian:   opts.Guardian,
		council:    opts.Council,
		policies:   opts.Policies,
		publisher:  opts.Publisher,
		clock:      opts.Clock,
		newID:      opts.NewID,
		logger:     opts.Logger,
	}
	if r.clock == nil {
		r.clock = func() time.Time { return time.Now().UTC() }
	}
	if r.newID == nil {
		r.newID = uuid.NewString
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard, "", 0)
	}
	if r.classifier == nil {
		r.classifier = telemetry.NewClassifier(telemetry.DefaultBandThresholds())
	}
	if r.predictor == nil {
		r.predictor = horizon.NewPredictor(horizon.DefaultConfig(), horizon.Options{Logger: r.logger})
	}
	if r.guardian == nil {
		r.guardian = guardian.NewEngine(guardian.DefaultThresholds(), guardian.Options{Clock: r.clock})
	}
	if r.council == nil {
		r.council = council.NewAggregator()
	}
	if r.publisher == nil {
		r.publisher = publish.Noop{}
	}
	return r
}

// Predictor returns the runner's horizon predictor, shared with the planner.
func (r *Runner) Predictor() *horizon.Predictor {
	return r.predictor
}

// RunCycle executes one full cycle. It never fails: persistence and
// publishing errors are logged and noted in the report.
func (r *Runner) RunCycle(ctx context.Context) CycleReport {
	r.mu.Lock()
	defer r.mu.Unlock()

	started := r.clock()
	report := CycleReport{
		CycleID:   r.newID(),
		StartedAt: started,
		Notes:     []string{},
	}

	var snap domain.NetworkSnapshot
	if r.source != nil {
		snap = r.source.FetchSnapshot(ctx)
	} else {
		snap = domain.FallbackSnapshot(started)
	}
	if err := snap.Validate(); err != nil {
		report.Notes = append(report.Notes, fmt.Sprintf("Snapshot normalized: %v.", err))
	}
	snap = snap.Normalize()
	if snap.Source == domain.SnapshotSourceFallback {
		report.Notes = append(report.Notes, "No ledger node answered, cycle ran on the static fallback snapshot.")
	}
	report.Snapshot = snap

	report.FeeBand = r.classifier.Classify(snap)
	band := report.FeeBand.Band
	report.Horizon = r.predictor.Observe(ctx, snap, band)
	report.Guardian = r.guardian.Classify(snap)
	report.Schedule = scheduler.Plan(band)

	// Voters that follow the band read the projection; the scheduler band
	// keeps the current reading for the live-metric voters.
	report.Votes, report.Mesh = r.council.Convene(domain.MeshInputs{
		Band:         report.Horizon.ProjectedBand,
		ScheduleBand: report.Schedule.Band,
		LoadFactor:   snap.LoadFactor,
		MedianFee:    snap.MedianFee,
	})
	report.Risk = AssessRisk(snap, report.Horizon)

	if r.policies != nil {
		policy := report.Guardian.Policy
		if err := r.policies.Insert(ctx, &policy); err != nil {
			r.logger.Printf("insert guardian policy %s: %v", policy.ID, err)
			observability.RecordStoreError("policy", "insert")
			report.Notes = append(report.Notes, "Guardian policy was not persisted.")
		}
	}

	observability.RecordDecision(string(band), string(report.Guardian.Policy.Mode), string(report.Mesh.Mode))
	finished := r.clock()
	observability.RecordCycle(snap.Source, finished.Sub(started).Seconds(), finished.Unix())

	r.publish(ctx, publish.KindGuardianPolicy, report.Guardian.Policy.ID, report.Guardian)
	r.publish(ctx, publish.KindCycleReport, report.CycleID, report)

	r.logger.Printf("cycle %s: ledger=%d band=%s projected=%s guardian=%s mesh=%s risk=%s",
		report.CycleID, snap.LedgerSeq, band, report.Horizon.ProjectedBand,
		report.Guardian.Policy.Mode, report.Mesh.Mode, report.Risk)

	r.lmu.Lock()
	stored := report
	r.last = &stored
	r.cycles++
	r.lmu.Unlock()

	return report
}

func (r *Runner) publish(ctx context.Context, kind, key string, v any) {
	body, err := json.Marshal(v)
	if err == nil {
		err = r.publisher.Publish(ctx, publish.Message{Kind: kind, Key: key, Body: body})
	}
	observability.RecordPublish(kind, err)
	if err != nil {
		r.logger.Printf("publish %s %s: %v", kind, key, err)
	}
}

// Last returns the most recent report, if any cycle has completed.
func (r *Runner) Last() (CycleReport, bool) {
	r.lmu.RLock()
	defer r.lmu.RUnlock()
	if r.last == nil {
		return CycleReport{}, false
	}
	return *r.last, true
}

// Cycles returns the number of completed cycles.
func (r *Runner) Cycles() int {
	r.lmu.RLock()
	defer r.lmu.RUnlock()
	return r.cycles
}

// Run executes a cycle immediately and then every interval until ctx is cancelled.
func (r *Runner) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("invalid cycle interval %v", interval)
	}
	r.logger.Printf("Starting cycle loop, interval %v", interval)

	r.RunCycle(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Println("Cycle loop stopping...")
			return ctx.Err()
		case <-ticker.C:
			r.RunCycle(ctx)
		}
	}
}
