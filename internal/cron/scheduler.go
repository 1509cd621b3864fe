package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/sherryseats/orders-backend/pkg/logger"
)

const defaultInterval = time.Hour

type runRecorder interface {
	ObserveRun(job string, took time.Duration, err error, now time.Time)
	ObserveSkip()
}

type SchedulerParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  runRecorder
	Interval time.Duration
}

// Scheduler runs every registered job once per interval while holding Lock.
type Scheduler struct {
	logg     *logger.Logger
	jobs     []Job
	lock     Lock
	rec      runRecorder
	interval time.Duration
	now      func() time.Time
}

func NewScheduler(p SchedulerParams) (*Scheduler, error) {
	if p.Logger == nil || p.Lock == nil {
		return nil, errors.New("cron scheduler: logger and lock required")
	}
	s := &Scheduler{
		logg:     p.Logger,
		lock:     p.Lock,
		rec:      p.Metrics,
		interval: p.Interval,
		now:      time.Now,
	}
	if p.Registry != nil {
		s.jobs = p.Registry.Jobs()
	}
	if s.interval <= 0 {
		s.interval = defaultInterval
	}
	if s.rec == nil {
		s.rec = noRecorder{}
	}
	return s, nil
}

// Run ticks once at start and then every interval until ctx ends. Job
// failures are logged and never stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		if err := s.Tick(ctx); err != nil {
			s.logg.Error(ctx, "cron cycle finished with errors", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

// Tick runs one cycle. It is a no-op when another worker holds the lock.
// Every job runs even if an earlier one fails; the failures are combined.
func (s *Scheduler) Tick(ctx context.Context) (err error) {
	held, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire cron lock: %w", err)
	}
	if !held {
		s.rec.ObserveSkip()
		s.logg.Info(ctx, "cron lock held elsewhere, skipping cycle")
		return nil
	}
	defer func() {
		if relErr := s.lock.Release(ctx); relErr != nil {
			s.logg.Error(ctx, "release cron lock", relErr)
		}
	}()

	for _, job := range s.jobs {
		if ctx.Err() != nil {
			return multierr.Append(err, ctx.Err())
		}
		err = multierr.Append(err, s.runOne(ctx, job))
	}
	return err
}

func (s *Scheduler) runOne(ctx context.Context, job Job) error {
	name := job.Name()
	ctx = s.logg.WithField(ctx, "job", name)
	started := s.now()
	runErr := job.Run(ctx)
	took := s.now().Sub(started)
	s.rec.ObserveRun(name, took, runErr, s.now())

	ctx = s.logg.WithField(ctx, "duration_ms", took.Milliseconds())
	if runErr != nil {
		s.logg.Error(ctx, "cron job failed", runErr)
		return fmt.Errorf("%s: %w", name, runErr)
	}
	s.logg.Info(ctx, "cron job done")
	return nil
}

type noRecorder struct{}

func (noRecorder) ObserveRun(string, time.Duration, error, time.Time) {}
func (noRecorder) ObserveSkip()                                       {}
