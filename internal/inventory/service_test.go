package inventory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sherryseats/orders-backend/pkg/db/dbtest"
	"github.com/sherryseats/orders-backend/pkg/db/models"
	"github.com/sherryseats/orders-backend/pkg/enums"
	pkgerrors "github.com/sherryseats/orders-backend/pkg/errors"
	"github.com/sherryseats/orders-backend/pkg/outbox"
	"github.com/sherryseats/orders-backend/pkg/outbox/payloads"
)

func newService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	client, conn := dbtest.Client(t)
	svc, err := NewService(NewRepository(conn), client, outbox.NewEmitter(outbox.NewStore(conn), nil))
	require.NoError(t, err)
	for _, item := range []models.InventoryItem{
		{ID: uuid.New(), ItemName: "Chips (1lb bags)", CurrentStock: 50, MinStock: 20, Unit: "bags"},
		{ID: uuid.New(), ItemName: "Inferno Salsa (16oz)", CurrentStock: 15, MinStock: 10, Unit: "jars"},
	} {
		item.LastUpdated = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, conn.Create(&item).Error)
	}
	return svc, conn
}

func TestSetStockOverwritesAndStamps(t *testing.T) {
	svc, conn := newService(t)
	fixed := time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)
	svc.(*service).now = func() time.Time { return fixed }

	item, err := svc.SetStock(context.Background(), "Inferno Salsa (16oz)", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, item.CurrentStock)
	assert.True(t, item.BelowMinimum())

	var stored models.InventoryItem
	require.NoError(t, conn.Where("item_name = ?", "Inferno Salsa (16oz)").First(&stored).Error)
	assert.Equal(t, 4, stored.CurrentStock)
	assert.True(t, fixed.Equal(stored.LastUpdated))

	var event models.OutboxEvent
	require.NoError(t, conn.Where("event_type = ?", enums.EventStockAdjusted).First(&event).Error)
	var envelope outbox.PayloadEnvelope
	require.NoError(t, json.Unmarshal(event.Payload, &envelope))
	var data payloads.StockAdjustedEvent
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	assert.Equal(t, 15, data.PreviousStock)
	assert.Equal(t, 4, data.CurrentStock)
	assert.True(t, data.BelowMinimum)
}

func TestSetStockZeroIsAllowed(t *testing.T) {
	svc, _ := newService(t)
	item, err := svc.SetStock(context.Background(), "Chips (1lb bags)", 0)
	require.NoError(t, err)
	assert.Zero(t, item.CurrentStock)
}

func TestSetStockRejectsNegative(t *testing.T) {
	svc, conn := newService(t)
	_, err := svc.SetStock(context.Background(), "Chips (1lb bags)", -1)
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	assert.Equal(t, "invalid inventory", pkgerrors.As(err).Message())

	var stored models.InventoryItem
	require.NoError(t, conn.Where("item_name = ?", "Chips (1lb bags)").First(&stored).Error)
	assert.Equal(t, 50, stored.CurrentStock)
}

func TestSetStockUnknownItem(t *testing.T) {
	svc, conn := newService(t)
	_, err := svc.SetStock(context.Background(), "chips (1lb bags)", 3)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	var count int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListAndBelowMinimum(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Chips (1lb bags)", items[0].ItemName)

	low, err := svc.BelowMinimum(ctx)
	require.NoError(t, err)
	assert.Empty(t, low)

	_, err = svc.SetStock(ctx, "Chips (1lb bags)", 5)
	require.NoError(t, err)
	low, err = svc.BelowMinimum(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Chips (1lb bags)", low[0].ItemName)
}
