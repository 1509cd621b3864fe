package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sherryseats/orders-backend/pkg/db/dbtest"
	"github.com/sherryseats/orders-backend/pkg/db/models"
	"github.com/sherryseats/orders-backend/pkg/enums"
	"github.com/sherryseats/orders-backend/pkg/outbox/payloads"
)

func TestEmitWritesEnvelope(t *testing.T) {
	conn := dbtest.Open(t)
	emitter := NewEmitter(NewStore(conn), nil)
	orderID := uuid.New()

	err := conn.Transaction(func(tx *gorm.DB) error {
		return emitter.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Actor:         &ActorRef{Source: "api", RequestID: "req-1"},
			Data:          payloads.OrderCreatedEvent{OrderID: orderID, ItemCount: 2},
		})
	})
	require.NoError(t, err)

	var rows []models.OutboxEvent
	require.NoError(t, conn.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, orderID, rows[0].AggregateID)
	assert.Equal(t, enums.EventOrderCreated, rows[0].EventType)
	assert.Nil(t, rows[0].PublishedAt)
	assert.Zero(t, rows[0].AttemptCount)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &envelope))
	assert.Equal(t, EnvelopeVersion, envelope.Version)
	assert.NotEmpty(t, envelope.EventID)
	require.NotNil(t, envelope.Actor)
	assert.Equal(t, "req-1", envelope.Actor.RequestID)

	var data payloads.OrderCreatedEvent
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	assert.Equal(t, 2, data.ItemCount)
}

func TestEmitRollsBackWithCaller(t *testing.T) {
	conn := dbtest.Open(t)
	emitter := NewEmitter(NewStore(conn), nil)
	boom := errors.New("boom")

	err := conn.Transaction(func(tx *gorm.DB) error {
		if err := emitter.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventStockAdjusted,
			AggregateType: enums.AggregateInventory,
			AggregateID:   uuid.New(),
			Data:          payloads.StockAdjustedEvent{ItemName: "Apple Pie"},
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEmitRejectsUnknownTypes(t *testing.T) {
	conn := dbtest.Open(t)
	emitter := NewEmitter(NewStore(conn), nil)

	err := emitter.Emit(context.Background(), conn, DomainEvent{
		EventType:     "nope",
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
	})
	assert.ErrorContains(t, err, "unknown event type")

	err = emitter.Emit(context.Background(), conn, DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: "basket",
		AggregateID:   uuid.New(),
	})
	assert.ErrorContains(t, err, "unknown aggregate type")

	assert.ErrorIs(t, emitter.Emit(context.Background(), nil, DomainEvent{}), errNoTx)
}
