package cron

import (
	"context"
	"fmt"

	"github.com/sherryseats/orders-backend/pkg/logger"
)

type calendarSyncer interface {
	SyncCalendar(ctx context.Context) (int, error)
}

type CalendarSyncJobParams struct {
	Logger *logger.Logger
	Events calendarSyncer
}

// NewCalendarSyncJob mirrors upcoming public calendar entries into the
// events table so orders can reference them.
func NewCalendarSyncJob(params CalendarSyncJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("events service required")
	}
	return &calendarSyncJob{logg: params.Logger, events: params.Events}, nil
}

type calendarSyncJob struct {
	logg   *logger.Logger
	events calendarSyncer
}

func (j *calendarSyncJob) Name() string { return "calendar_sync" }

func (j *calendarSyncJob) Run(ctx context.Context) error {
	synced, err := j.events.SyncCalendar(ctx)
	if err != nil {
		return fmt.Errorf("calendar sync: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "events_synced", synced), "calendar sync complete")
	return nil
}
