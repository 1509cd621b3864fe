// Command cron-worker runs the periodic jobs under a redis lease so only
// one replica works each cycle.
package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sherryseats/orders-backend/internal/bootstrap"
	"github.com/sherryseats/orders-backend/internal/cron"
	"github.com/sherryseats/orders-backend/internal/events"
	"github.com/sherryseats/orders-backend/internal/inventory"
	"github.com/sherryseats/orders-backend/pkg/calendar"
	"github.com/sherryseats/orders-backend/pkg/metrics"
	"github.com/sherryseats/orders-backend/pkg/outbox"
)

func main() {
	bootstrap.Main("cron-worker", func(ctx context.Context, rt *bootstrap.Runtime) error {
		jobs, err := buildJobs(ctx, rt)
		if err != nil {
			return err
		}
		cache, err := rt.Redis(ctx)
		if err != nil {
			return err
		}
		lock, err := cron.NewRedisLock(cache, lockKey(rt.Config.App.Env), rt.Config.Cron.LockTTL)
		if err != nil {
			return err
		}
		scheduler, err := cron.NewScheduler(cron.SchedulerParams{
			Logger:   rt.Logger,
			Registry: jobs,
			Lock:     lock,
			Metrics:  metrics.NewCronMetrics(prometheus.DefaultRegisterer),
			Interval: rt.Config.Cron.Interval,
		})
		if err != nil {
			return err
		}
		rt.Logger.Info(rt.Logger.WithField(ctx, "jobs", jobs.Names()), "cron jobs registered")
		return scheduler.Run(ctx)
	})
}

func buildJobs(ctx context.Context, rt *bootstrap.Runtime) (*cron.Registry, error) {
	cfg, logg, store := rt.Config, rt.Logger, rt.DB.DB()

	loc, err := cfg.Business.Location()
	if err != nil {
		return nil, err
	}
	cal, err := calendar.NewClient(ctx, cfg.Calendar, loc, logg)
	if err != nil {
		return nil, fmt.Errorf("calendar: %w", err)
	}
	eventSvc, err := events.NewService(events.NewRepository(store), rt.DB, cal, logg)
	if err != nil {
		return nil, err
	}
	stock, err := inventory.NewService(inventory.NewRepository(store), rt.DB, outbox.NewEmitter(outbox.NewStore(store), logg))
	if err != nil {
		return nil, err
	}

	calendarJob, err := cron.NewCalendarSyncJob(cron.CalendarSyncJobParams{Logger: logg, Events: eventSvc})
	if err != nil {
		return nil, err
	}
	lowStockJob, err := cron.NewLowStockJob(cron.LowStockJobParams{Logger: logg, Inventory: stock})
	if err != nil {
		return nil, err
	}
	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:          logg,
		DB:              rt.DB,
		Store:           outbox.NewStore(store),
		RetentionDays:   cfg.Outbox.RetentionDays,
		AbandonAttempts: cfg.Outbox.MaxAttempts,
	})
	if err != nil {
		return nil, err
	}
	return cron.NewRegistry(calendarJob, lowStockJob, retentionJob), nil
}

// lockKey scopes the lease per environment so staging never blocks prod.
func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return "lock:cron-worker:" + env
}
