package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sherryseats/orders-backend/pkg/logger"
)

const (
	defaultRetentionDays   = 30
	defaultAbandonAttempts = 5
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPurger interface {
	Purge(ctx context.Context, tx *gorm.DB, cutoff time.Time, minAttempts int) (int64, error)
}

// OutboxRetentionJobParams configure the outbox cleanup. RetentionDays and
// AbandonAttempts fall back to 30 days and 5 attempts.
type OutboxRetentionJobParams struct {
	Logger          *logger.Logger
	DB              txRunner
	Store           outboxPurger
	RetentionDays   int
	AbandonAttempts int
}

type outboxRetentionJob struct {
	logg     *logger.Logger
	db       txRunner
	store    outboxPurger
	keep     time.Duration
	attempts int
	now      func() time.Time
}

func NewOutboxRetentionJob(p OutboxRetentionJobParams) (Job, error) {
	switch {
	case p.Logger == nil:
		return nil, errors.New("outbox retention: logger required")
	case p.DB == nil:
		return nil, errors.New("outbox retention: db required")
	case p.Store == nil:
		return nil, errors.New("outbox retention: store required")
	}
	days := p.RetentionDays
	if days <= 0 {
		days = defaultRetentionDays
	}
	attempts := p.AbandonAttempts
	if attempts <= 0 {
		attempts = defaultAbandonAttempts
	}
	return &outboxRetentionJob{
		logg:     p.Logger,
		db:       p.DB,
		store:    p.Store,
		keep:     time.Duration(days) * 24 * time.Hour,
		attempts: attempts,
		now:      time.Now,
	}, nil
}

func (j *outboxRetentionJob) Name() string { return "outbox_retention" }

func (j *outboxRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.keep)
	var purged int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) (err error) {
		purged, err = j.store.Purge(ctx, tx, cutoff, j.attempts)
		return err
	})
	if err != nil {
		return fmt.Errorf("purge outbox before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": purged,
	}), "outbox purged")
	return nil
}
