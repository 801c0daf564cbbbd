package cron

import (
	"context"

	"github.com/angelmondragon/mycrew-backend/internal/integrity"
	"github.com/angelmondragon/mycrew-backend/pkg/logger"
)

// Job represents a scheduled task that runs inside the cron worker.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry tracks registered jobs in registration order.
type Registry struct {
	jobs []Job
}

func NewRegistry(jobs ...Job) *Registry {
	r := &Registry{}
	for _, job := range jobs {
		r.Register(job)
	}
	return r
}

// Register adds a job; nil jobs are ignored.
func (r *Registry) Register(job Job) {
	if job == nil {
		return
	}
	r.jobs = append(r.jobs, job)
}

// Jobs returns a copy of the registered jobs.
func (r *Registry) Jobs() []Job {
	return append([]Job(nil), r.jobs...)
}

// IntegritySweepJobName is also the name of the distributed lock.
const IntegritySweepJobName = "integrity-sweep"

type sweeper interface {
	Run(ctx context.Context) (integrity.Report, error)
}

// IntegritySweepJob runs the location repair pass over the whole store.
type IntegritySweepJob struct {
	sweeper sweeper
	logg    *logger.Logger
}

func NewIntegritySweepJob(s sweeper, logg *logger.Logger) *IntegritySweepJob {
	return &IntegritySweepJob{sweeper: s, logg: logg}
}

func (j *IntegritySweepJob) Name() string { return IntegritySweepJobName }

func (j *IntegritySweepJob) Run(ctx context.Context) error {
	report, err := j.sweeper.Run(ctx)
	if j.logg != nil {
		j.logg.Info(j.logg.WithFields(ctx, map[string]any{
			"scanned":           report.Scanned,
			"repaired":          report.Repaired,
			"removed_locations": report.RemovedLocations,
		}), "integrity sweep finished")
	}
	return err
}
