package domain

// JobMode is the advisory run mode of an internal job class.
type JobMode string

const (
	JobAggressive    JobMode = "aggressive"
	JobNormal        JobMode = "normal"
	JobLimited       JobMode = "limited"
	JobPrioritized   JobMode = "prioritized"
	JobEssentialOnly JobMode = "essential_only"
	JobPaused        JobMode = "paused"
	JobHardPaused    JobMode = "hard_paused"
)

// Job class names.
const (
	JobIndexer          = "indexer"
	JobAnalytics        = "analytics"
	JobBatchSettlements = "batch_settlements"
	JobExperiments      = "experiments"
	JobArchival         = "archival"
)

// JobPlan is the recommended concurrency for one job class.
type JobPlan struct {
	Name              string  `json:"name"`
	BaseConcurrency   int     `json:"base_concurrency"`
	TargetConcurrency int     `json:"target_concurrency"`
	Multiplier        float64 `json:"multiplier"`
	Mode              JobMode `json:"mode"`
}

// SchedulerPlan is the per-band concurrency plan.
type SchedulerPlan struct {
	Band  Band      `json:"band"`
	Jobs  []JobPlan `json:"jobs"`
	Notes []string  `json:"notes"`
}

// Job returns the plan for the named job class.
func (p SchedulerPlan) Job(name string) (JobPlan, bool) {
	for _, j := range p.Jobs {
		if j.Name == name {
			return j, true
		}
	}
	return JobPlan{}, false
}
