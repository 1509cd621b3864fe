package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sherryseats/orders-backend/pkg/config"
	"github.com/sherryseats/orders-backend/pkg/db/models"
	"github.com/sherryseats/orders-backend/pkg/enums"
	"github.com/sherryseats/orders-backend/pkg/logger"
	"github.com/sherryseats/orders-backend/pkg/outbox/registry"
)

const (
	sendTimeout   = 15 * time.Second
	idleCeiling   = 10 * time.Second
	maxJitter     = 250 * time.Millisecond
	fallbackBatch = 50
	fallbackPoll  = 500 * time.Millisecond
	fallbackTries = 10
)

type txDB interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type claimStore interface {
	Claim(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublished(tx *gorm.DB, id uuid.UUID, at time.Time) error
	RecordFailure(tx *gorm.DB, id uuid.UUID, cause error) error
	Park(tx *gorm.DB, id uuid.UUID, cause error, ceiling int) error
}

type deadLetterSink interface {
	Add(tx *gorm.DB, entry models.OutboxDLQ) error
}

type resolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type outcomeRecorder interface {
	IncPublished(eventType string)
	IncFailed(eventType string)
	IncDeadLetter(eventType, reason string)
}

// sender delivers one message to a topic and waits for the broker ack.
type sender interface {
	Send(ctx context.Context, topic string, msg *gcppubsub.Message) error
}

type topicSource interface {
	Ping(context.Context) error
	Publisher(topic string) *gcppubsub.Publisher
}

type RelayParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          txDB
	Store       claimStore
	DeadLetters deadLetterSink
	Registry    resolver
	Sender      sender
	Metrics     outcomeRecorder
	// Pingers are checked once before the loop starts.
	Pingers map[string]func(context.Context) error
}

// Relay drains outbox_events to Pub/Sub. Rows that can never publish are
// copied to outbox_dlq and parked at the attempt ceiling.
type Relay struct {
	logg     *logger.Logger
	db       txDB
	store    claimStore
	dlq      deadLetterSink
	registry resolver
	sender   sender
	metrics  outcomeRecorder
	pingers  map[string]func(context.Context) error

	batch    int
	ceiling  int
	interval time.Duration
	now      func() time.Time
}

func NewRelay(p RelayParams) (*Relay, error) {
	missing := map[string]bool{
		"config":       p.Config == nil,
		"logger":       p.Logger == nil,
		"db":           p.DB == nil,
		"store":        p.Store == nil,
		"dead letters": p.DeadLetters == nil,
		"registry":     p.Registry == nil,
		"sender":       p.Sender == nil,
	}
	for name, absent := range missing {
		if absent {
			return nil, fmt.Errorf("outbox relay: %s required", name)
		}
	}

	r := &Relay{
		logg:     p.Logger,
		db:       p.DB,
		store:    p.Store,
		dlq:      p.DeadLetters,
		registry: p.Registry,
		sender:   p.Sender,
		metrics:  p.Metrics,
		pingers:  p.Pingers,
		batch:    positiveOr(p.Config.Outbox.BatchSize, fallbackBatch),
		ceiling:  positiveOr(p.Config.Outbox.MaxAttempts, fallbackTries),
		interval: fallbackPoll,
		now:      time.Now,
	}
	if p.Config.Outbox.PollInterval() > 0 {
		r.interval = p.Config.Outbox.PollInterval()
	}
	if r.metrics == nil {
		r.metrics = discardOutcomes{}
	}
	return r, nil
}

// Run polls until ctx is cancelled. A full batch is followed immediately by
// another poll; storage errors double the wait up to idleCeiling.
func (r *Relay) Run(ctx context.Context) error {
	for name, ping := range r.pingers {
		if err := ping(ctx); err != nil {
			r.logg.Error(ctx, name+" ping failed", err)
			return fmt.Errorf("%s ping: %w", name, err)
		}
	}

	wait := r.interval
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := r.Drain(ctx)
		switch {
		case err != nil:
			r.logg.Error(ctx, "outbox drain failed", err)
			wait = min(wait*2, idleCeiling)
		case n > 0:
			wait = r.interval
			continue
		default:
			wait = r.interval
		}

		if err := pause(ctx, wait+rand.N(maxJitter)); err != nil {
			return err
		}
	}
}

// Drain claims one batch and settles every row inside a single transaction.
// It returns how many rows were claimed.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	var claimed int
	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := r.store.Claim(tx, r.batch, r.ceiling)
		if err != nil {
			return fmt.Errorf("claim outbox rows: %w", err)
		}
		claimed = len(rows)
		for _, row := range rows {
			if err := r.settle(ctx, tx, row); err != nil {
				return err
			}
		}
		return nil
	})
	return claimed, err
}

func (r *Relay) settle(ctx context.Context, tx *gorm.DB, row models.OutboxEvent) error {
	kind := string(row.EventType)
	fields := map[string]any{
		"outbox_id":      row.ID.String(),
		"event_type":     kind,
		"aggregate_type": string(row.AggregateType),
		"aggregate_id":   row.AggregateID.String(),
		"attempt_count":  row.AttemptCount,
	}

	resolved, err := r.registry.Resolve(row)
	if err != nil {
		return r.deadLetter(ctx, tx, row, enums.OutboxDLQReasonNonRetryable, err, fields)
	}
	fields["event_id"] = resolved.Envelope.EventID
	fields["topic"] = resolved.Descriptor.Topic

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	err = r.sender.Send(sendCtx, resolved.Descriptor.Topic, message(row, resolved))
	cancel()

	var permanent registry.NonRetryableError
	switch {
	case err == nil:
		if err := r.store.MarkPublished(tx, row.ID, r.now()); err != nil {
			return fmt.Errorf("mark %s published: %w", row.ID, err)
		}
		r.metrics.IncPublished(kind)
		r.logg.Info(r.logg.WithFields(ctx, fields), "outbox event published")
		return nil
	case errors.As(err, &permanent):
		return r.deadLetter(ctx, tx, row, enums.OutboxDLQReasonNonRetryable, err, fields)
	case row.AttemptCount+1 >= r.ceiling:
		return r.deadLetter(ctx, tx, row, enums.OutboxDLQReasonMaxAttempts,
			fmt.Errorf("gave up after %d attempts: %w", row.AttemptCount+1, err), fields)
	}

	if err := r.store.RecordFailure(tx, row.ID, err); err != nil {
		return fmt.Errorf("record %s failure: %w", row.ID, err)
	}
	r.metrics.IncFailed(kind)
	fields["error"] = err.Error()
	r.logg.Warn(r.logg.WithFields(ctx, fields), "outbox publish failed, will retry")
	return nil
}

func (r *Relay) deadLetter(ctx context.Context, tx *gorm.DB, row models.OutboxEvent, reason enums.OutboxDLQErrorReason, cause error, fields map[string]any) error {
	text := cause.Error()
	entry := models.OutboxDLQ{
		EventID:       row.ID,
		EventType:     row.EventType,
		AggregateType: row.AggregateType,
		AggregateID:   row.AggregateID,
		Payload:       row.Payload,
		ErrorReason:   reason,
		ErrorMessage:  &text,
		AttemptCount:  row.AttemptCount,
		FailedAt:      r.now().UTC(),
	}
	if err := r.dlq.Add(tx, entry); err != nil {
		return fmt.Errorf("dead-letter %s: %w", row.ID, err)
	}
	if err := r.store.Park(tx, row.ID, cause, r.ceiling); err != nil {
		return fmt.Errorf("park %s: %w", row.ID, err)
	}
	r.metrics.IncDeadLetter(string(row.EventType), string(reason))

	fields["error_reason"] = string(reason)
	fields["error"] = text
	r.logg.Warn(r.logg.WithFields(ctx, fields), "outbox event dead-lettered")
	return nil
}

func message(row models.OutboxEvent, resolved *registry.ResolvedEvent) *gcppubsub.Message {
	return &gcppubsub.Message{
		Data: row.Payload,
		Attributes: map[string]string{
			"event_id":       resolved.Envelope.EventID,
			"schema_version": strconv.Itoa(resolved.Envelope.Version),
			"event_type":     string(row.EventType),
			"aggregate_type": string(row.AggregateType),
			"aggregate_id":   row.AggregateID.String(),
			"created_at":     row.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	}
}

// pubsubSender resolves a publisher per topic from the pubsub client.
type pubsubSender struct {
	topics topicSource
}

func (s pubsubSender) Send(ctx context.Context, topic string, msg *gcppubsub.Message) error {
	pub := s.topics.Publisher(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("no publisher for topic %q", topic))
	}
	_, err := pub.Publish(ctx, msg).Get(ctx)
	return err
}

type discardOutcomes struct{}

func (discardOutcomes) IncPublished(string)          {}
func (discardOutcomes) IncFailed(string)             {}
func (discardOutcomes) IncDeadLetter(string, string) {}

func pause(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
