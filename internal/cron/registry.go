package cron

import (
	"context"
	"slices"
)

// Job is one scheduled task run by the cron worker.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry keeps jobs in registration order. A later job with a name
// already taken replaces the earlier one in place.
type Registry struct {
	jobs []Job
}

func NewRegistry(jobs ...Job) *Registry {
	r := &Registry{}
	for _, j := range jobs {
		r.Register(j)
	}
	return r
}

// Register adds job; nil is ignored.
func (r *Registry) Register(job Job) {
	if job == nil {
		return
	}
	if i := slices.IndexFunc(r.jobs, func(j Job) bool { return j.Name() == job.Name() }); i >= 0 {
		r.jobs[i] = job
		return
	}
	r.jobs = append(r.jobs, job)
}

func (r *Registry) Jobs() []Job { return slices.Clone(r.jobs) }

func (r *Registry) Names() []string {
	out := make([]string, len(r.jobs))
	for i, j := range r.jobs {
		out[i] = j.Name()
	}
	return out
}
