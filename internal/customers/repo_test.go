package customers

import (
	"context"
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
	"github.com/sherryseats/orders-backend/pkg/types"
)

func strPtr(v string) *string { return &v }

func TestUpsertInsertsThenReplaces(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	first, err := repo.Upsert(ctx, Input{
		Name:       "Dana Miller",
		Phone:      "810-555-0101",
		Email:      "dana@example.com",
		HeardFrom:  strPtr("facebook"),
		EmailOptIn: true,
		SMSOptIn:   true,
	})
	require.NoError(t, err)

	second, err := repo.Upsert(ctx, Input{
		Name:       "Dana M. Miller",
		Phone:      "810-555-0101",
		Email:      "dana.m@example.com",
		EmailOptIn: false,
		SMSOptIn:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Dana M. Miller", second.Name)
	assert.Equal(t, "dana.m@example.com", second.Email)
	assert.Nil(t, second.HeardFrom, "full replace clears fields omitted by the second submission")
	assert.False(t, second.EmailOptIn)

	var count int64
	require.NoError(t, conn.Model(&models.Customer{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpsertEmailCollisionIsConflict(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, Input{Name: "A", Phone: "111", Email: "shared@example.com"})
	require.NoError(t, err)

	_, err = repo.Upsert(ctx, Input{Name: "B", Phone: "222", Email: "shared@example.com"})
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeConflict))

	var count int64
	require.NoError(t, conn.Model(&models.Customer{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpsertInsideTransactionRollsBack(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)

	err := conn.Transaction(func(tx *gorm.DB) error {
		if _, err := repo.WithTx(tx).Upsert(context.Background(), Input{Name: "A", Phone: "111", Email: "a@example.com"}); err != nil {
			return err
		}
		return gorm.ErrInvalidData
	})
	require.ErrorIs(t, err, gorm.ErrInvalidData)

	var count int64
	require.NoError(t, conn.Model(&models.Customer{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestFindByIDNotFound(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestServiceListsWithEventsAttended(t *testing.T) {
	client, conn := dbtest.Client(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	dana, err := repo.Upsert(ctx, Input{Name: "Dana", Phone: "111", Email: "dana@example.com"})
	require.NoError(t, err)
	lee, err := repo.Upsert(ctx, Input{Name: "Lee", Phone: "222", Email: "lee@example.com"})
	require.NoError(t, err)

	market := models.Event{ID: uuid.New(), Title: "Lapeer Market"}
	require.NoError(t, conn.Create(&market).Error)
	fest := models.Event{ID: uuid.New(), Title: "Oxford Fest"}
	require.NoError(t, conn.Create(&fest).Error)

	insertOrder(t, conn, dana, &market.ID)
	insertOrder(t, conn, dana, &market.ID)
	insertOrder(t, conn, dana, &fest.ID)
	insertOrder(t, conn, lee, nil)

	svc, err := NewService(repo, client)
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	byName := map[string]Summary{}
	for _, s := range all {
		byName[s.Name] = s
	}
	assert.Equal(t, []string{"Lapeer Market", "Oxford Fest"}, byName["Dana"].EventsAttended)
	assert.Empty(t, byName["Lee"].EventsAttended)

	atMarket, err := svc.ListByEvent(ctx, market.ID)
	require.NoError(t, err)
	require.Len(t, atMarket, 1)
	assert.Equal(t, dana.ID, atMarket[0].ID)
}

func TestListIsNewestFirstThenByName(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	base := time.Date(2026, time.October, 1, 12, 0, 0, 0, time.UTC)
	for _, c := range []struct {
		name string
		at   time.Time
	}{
		{"Ada", base},
		{"Zed", base.Add(time.Hour)},
		{"Bea", base.Add(time.Hour)},
	} {
		require.NoError(t, conn.Create(&models.Customer{
			ID:        uuid.New(),
			Name:      c.name,
			Phone:     c.name + "-phone",
			Email:     c.name + "@example.com",
			CreatedAt: c.at,
		}).Error)
	}

	rows, err := repo.List(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}
	assert.Equal(t, []string{"Bea", "Zed", "Ada"}, names)
}

func insertOrder(t *testing.T, conn *gorm.DB, customer *models.Customer, eventID *uuid.UUID) {
	t.Helper()
	order := models.Order{
		ID:               uuid.New(),
		CustomerID:       customer.ID,
		CustomerName:     customer.Name,
		CustomerPhone:    customer.Phone,
		CustomerEmail:    customer.Email,
		OrderDate:        time.Now().UTC(),
		DeliveryDate:     types.NewDate(2026, time.November, 1),
		DeliveryLocation: "Lapeer",
		EventID:          eventID,
		Status:           enums.OrderStatusPending,
		PaymentStatus:    enums.PaymentStatusUnpaid,
	}
	require.NoError(t, conn.Create(&order).Error)
}
