// Package registry maps outbox event types to their Pub/Sub topic and
// decodes stored rows back into typed payloads for the relay.
package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/sherryseats/orders-backend/pkg/config"
	"github.com/sherryseats/orders-backend/pkg/db/models"
	"github.com/sherryseats/orders-backend/pkg/enums"
	"github.com/sherryseats/orders-backend/pkg/outbox"
	"github.com/sherryseats/orders-backend/pkg/outbox/payloads"
)

type EventDescriptor struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	Topic         string

	decode func(json.RawMessage) (any, error)
}

type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    any
}

// NonRetryableError marks a row that will never publish, however often it
// is retried.
type NonRetryableError struct {
	Err error
}

func NewNonRetryableError(err error) NonRetryableError { return NonRetryableError{Err: err} }

func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

func (e NonRetryableError) Unwrap() error { return e.Err }

type EventRegistry struct {
	byType map[enums.OutboxEventType]EventDescriptor
}

func route[T any](event enums.OutboxEventType, aggregate enums.OutboxAggregateType, topic string) EventDescriptor {
	return EventDescriptor{
		EventType:     event,
		AggregateType: aggregate,
		Topic:         topic,
		decode: func(raw json.RawMessage) (any, error) {
			v := new(T)
			if err := json.Unmarshal(raw, v); err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

// NewEventRegistry sends every order and inventory event to the orders topic.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	if cfg.OrdersTopic == "" {
		return nil, errors.New("orders topic is required")
	}
	r := &EventRegistry{byType: map[enums.OutboxEventType]EventDescriptor{}}
	for _, d := range []EventDescriptor{
		route[payloads.OrderCreatedEvent](enums.EventOrderCreated, enums.AggregateOrder, cfg.OrdersTopic),
		route[payloads.OrderStatusChangedEvent](enums.EventOrderStatusChanged, enums.AggregateOrder, cfg.OrdersTopic),
		route[payloads.StockAdjustedEvent](enums.EventStockAdjusted, enums.AggregateInventory, cfg.OrdersTopic),
	} {
		r.byType[d.EventType] = d
	}
	return r, nil
}

// Topics returns each destination topic once, sorted.
func (r *EventRegistry) Topics() []string {
	var out []string
	for _, d := range r.byType {
		if !slices.Contains(out, d.Topic) {
			out = append(out, d.Topic)
		}
	}
	slices.Sort(out)
	return out
}

// Resolve checks the row against its descriptor and decodes the payload.
// Every failure is a NonRetryableError.
func (r *EventRegistry) Resolve(row models.OutboxEvent) (*ResolvedEvent, error) {
	d, ok := r.byType[row.EventType]
	switch {
	case !ok:
		return nil, permanent("unsupported event type %s", row.EventType)
	case d.AggregateType != row.AggregateType:
		return nil, permanent("%s belongs to %s aggregates, row says %s", row.EventType, d.AggregateType, row.AggregateType)
	case row.AggregateID == uuid.Nil:
		return nil, permanent("%s row has no aggregate id", row.EventType)
	}

	var env outbox.PayloadEnvelope
	if err := json.Unmarshal(row.Payload, &env); err != nil {
		return nil, permanent("decode envelope: %w", err)
	}
	if env.Version > outbox.EnvelopeVersion {
		return nil, permanent("envelope version %d is newer than %d", env.Version, outbox.EnvelopeVersion)
	}
	if data := bytes.TrimSpace(env.Data); len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, permanent("%s row has an empty payload", row.EventType)
	}
	payload, err := d.decode(env.Data)
	if err != nil {
		return nil, permanent("decode %s payload: %w", row.EventType, err)
	}
	return &ResolvedEvent{Descriptor: d, Envelope: env, Payload: payload}, nil
}

func permanent(format string, args ...any) error {
	return NewNonRetryableError(fmt.Errorf(format, args...))
}
