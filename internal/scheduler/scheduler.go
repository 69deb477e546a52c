// Package scheduler recommends per-job concurrency for the current fee band.
// Plans are advisory; nothing here starts or stops work.
package scheduler

import (
	"fmt"
	"math"

	"governor-xrpl-lab/internal/domain"
)

// BaseConcurrency is the worker count each job class runs at in a normal band.
var BaseConcurrency = map[string]int{
	domain.JobIndexer:          4,
	domain.JobAnalytics:        2,
	domain.JobBatchSettlements: 2,
	domain.JobExperiments:      1,
	domain.JobArchival:         1,
}

// jobOrder fixes the order of jobs in a plan.
var jobOrder = []string{
	domain.JobIndexer,
	domain.JobAnalytics,
	domain.JobBatchSettlements,
	domain.JobExperiments,
	domain.JobArchival,
}

// essential job classes keep running in an extreme band.
var essential = map[string]bool{
	domain.JobIndexer:          true,
	domain.JobBatchSettlements: true,
}

type rule struct {
	multiplier float64
	mode       domain.JobMode
}

var bandTable = map[domain.Band]map[string]rule{
	domain.BandLow: {
		domain.JobIndexer:          {1.5, domain.JobAggressive},
		domain.JobAnalytics:        {1.5, domain.JobAggressive},
		domain.JobBatchSettlements: {1.2, domain.JobNormal},
		domain.JobExperiments:      {1.5, domain.JobNormal},
		domain.JobArchival:         {1.3, domain.JobNormal},
	},
	domain.BandNormal: {
		domain.JobIndexer:          {1.0, domain.JobNormal},
		domain.JobAnalytics:        {1.0, domain.JobNormal},
		domain.JobBatchSettlements: {1.0, domain.JobNormal},
		domain.JobExperiments:      {1.0, domain.JobLimited},
		domain.JobArchival:         {1.0, domain.JobNormal},
	},
	domain.BandElevated: {
		domain.JobIndexer:          {0.9, domain.JobNormal},
		domain.JobAnalytics:        {0.7, domain.JobLimited},
		domain.JobBatchSettlements: {1.0, domain.JobPrioritized},
		domain.JobExperiments:      {0.0, domain.JobPaused},
		domain.JobArchival:         {0.5, domain.JobLimited},
	},
	domain.BandExtreme: {
		domain.JobIndexer:          {0.5, domain.JobEssentialOnly},
		domain.JobAnalytics:        {0.0, domain.JobPaused},
		domain.JobBatchSettlements: {0.8, domain.JobEssentialOnly},
		domain.JobExperiments:      {0.0, domain.JobHardPaused},
		domain.JobArchival:         {0.0, domain.JobPaused},
	},
}

var bandNotes = map[domain.Band]string{
	domain.BandLow:      "Low fees: run catch-up work at raised concurrency.",
	domain.BandNormal:   "Normal fees: standard concurrency, experiments on a limited budget.",
	domain.BandElevated: "Elevated fees: settlements prioritized, experiments paused.",
	domain.BandExtreme:  "Extreme fees: essential jobs only, everything else paused.",
}

// Plan returns the concurrency plan for band. Unknown bands use the normal table.
func Plan(band domain.Band) domain.SchedulerPlan {
	var notes []string
	table, ok := bandTable[band]
	if !ok {
		notes = append(notes, fmt.Sprintf("Unknown band %q, using the normal table.", band))
		band = domain.BandNormal
		table = bandTable[band]
	}
	notes = append(notes, bandNotes[band])

	jobs := make([]domain.JobPlan, 0, len(jobOrder))
	for _, name := range jobOrder {
		r := table[name]
		base := BaseConcurrency[name]
		target := int(math.Round(float64(base) * r.multiplier))
		if target < 0 || (band == domain.BandExtreme && !essential[name]) {
			target = 0
		}
		jobs = append(jobs, domain.JobPlan{
			Name:              name,
			BaseConcurrency:   base,
			TargetConcurrency: target,
			Multiplier:        r.multiplier,
			Mode:              r.mode,
		})
	}

	return domain.SchedulerPlan{Band: band, Jobs: jobs, Notes: notes}
}

// IsEssential reports whether a job class keeps running in an extreme band.
func IsEssential(job string) bool {
	return essential[job]
}
