package config

import "time"

type OutboxConfig struct {
	BatchSize      int `envconfig:"SHERRYS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SHERRYS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SHERRYS_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"SHERRYS_OUTBOX_RETENTION_DAYS" default:"30"`
}

// PollInterval is how long the relay idles after an empty batch.
func (o OutboxConfig) PollInterval() time.Duration {
	return time.Duration(o.PollIntervalMS) * time.Millisecond
}

// CronConfig paces the cron worker. LockTTL must not exceed Interval.
type CronConfig struct {
	Interval time.Duration `envconfig:"SHERRYS_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"SHERRYS_CRON_LOCK_TTL" default:"50m"`
}
