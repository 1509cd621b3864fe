package production

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
	"github.com/sherryseats/orders-backend/pkg/money"
	"github.com/sherryseats/orders-backend/pkg/types"
)

var detroit = mustLoad("America/Detroit")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// 2026-10-18 12:00 in Detroit.
var now = time.Date(2026, time.October, 18, 16, 0, 0, 0, time.UTC)

type fixture struct {
	t        *testing.T
	conn     *gorm.DB
	svc      Service
	customer models.Customer
}

type line struct {
	name string
	qty  int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client, conn := dbtest.Client(t)
	svc, err := NewService(NewRepository(conn), client, detroit, nil)
	require.NoError(t, err)
	customer := models.Customer{ID: uuid.New(), Name: "Dana", Phone: "111", Email: "dana@example.com"}
	require.NoError(t, conn.Create(&customer).Error)
	return &fixture{t: t, conn: conn, svc: svc, customer: customer}
}

func (f *fixture) stock(name string, qty int) {
	f.t.Helper()
	require.NoError(f.t, f.conn.Create(&models.InventoryItem{
		ID:           uuid.New(),
		ItemName:     name,
		CurrentStock: qty,
		MinStock:     10,
		Unit:         "units",
		LastUpdated:  now,
	}).Error)
}

func (f *fixture) order(status enums.OrderStatus, delivery types.Date, eventID *uuid.UUID, lines ...line) {
	f.t.Helper()
	orderID := uuid.New()
	require.NoError(f.t, f.conn.Create(&models.Order{
		ID:               orderID,
		CustomerID:       f.customer.ID,
		CustomerName:     f.customer.Name,
		CustomerPhone:    f.customer.Phone,
		CustomerEmail:    f.customer.Email,
		OrderDate:        now,
		DeliveryDate:     delivery,
		DeliveryLocation: "Lapeer",
		EventID:          eventID,
		Status:           status,
		PaymentStatus:    enums.PaymentStatusUnpaid,
	}).Error)
	for i, l := range lines {
		require.NoError(f.t, f.conn.Create(&models.OrderItem{
			ID:              uuid.New(),
			OrderID:         orderID,
			Position:        i,
			ProductType:     "food",
			ProductName:     l.name,
			Quantity:        l.qty,
			UnitPriceCents:  money.Cents(100),
			TotalPriceCents: money.Cents(100 * l.qty),
		}).Error)
	}
}

var (
	today     = types.NewDate(2026, time.October, 18)
	tomorrow  = today.AddDays(1)
	yesterday = today.AddDays(-1)
)

func TestPlanAggregatesAgainstStock(t *testing.T) {
	f := newFixture(t)
	f.stock("Chips", 50)
	f.order(enums.OrderStatusPending, tomorrow, nil, line{"Chips", 40})
	f.order(enums.OrderStatusPending, tomorrow, nil, line{"Chips", 40})

	lines, err := f.svc.Plan(context.Background(), now, nil)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, Line{ProductName: "Chips", TotalNeeded: 80, CurrentStock: 50, NeedToMake: 30}, lines[0])
}

func TestPlanExcludesNonPendingAndPastOrders(t *testing.T) {
	f := newFixture(t)
	f.order(enums.OrderStatusPending, tomorrow, nil, line{"Salsa", 5})
	f.order(enums.OrderStatusConfirmed, tomorrow, nil, line{"Salsa", 100})
	f.order(enums.OrderStatusCancelled, tomorrow, nil, line{"Salsa", 100})
	f.order(enums.OrderStatusPending, yesterday, nil, line{"Salsa", 100})
	f.order(enums.OrderStatusPending, today, nil, line{"Salsa", 1})

	lines, err := f.svc.Plan(context.Background(), now, nil)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 6, lines[0].TotalNeeded)
}

func TestPlanTodayFollowsBusinessTimezone(t *testing.T) {
	f := newFixture(t)
	f.order(enums.OrderStatusPending, today, nil, line{"Chips", 2})

	// 02:00 UTC on the 19th is still the evening of the 18th in Detroit.
	lateEvening := time.Date(2026, time.October, 19, 2, 0, 0, 0, time.UTC)
	lines, err := f.svc.Plan(context.Background(), lateEvening, nil)
	require.NoError(t, err)
	assert.Len(t, lines, 1)

	nextMorning := time.Date(2026, time.October, 19, 14, 0, 0, 0, time.UTC)
	lines, err = f.svc.Plan(context.Background(), nextMorning, nil)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestPlanMissingInventoryCountsAsZero(t *testing.T) {
	f := newFixture(t)
	f.order(enums.OrderStatusPending, tomorrow, nil, line{"Tamales", 12})

	lines, err := f.svc.Plan(context.Background(), now, nil)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 0, lines[0].CurrentStock)
	assert.Equal(t, 12, lines[0].NeedToMake)
}

func TestPlanOmitsCoveredProductsAndOrdersByNeed(t *testing.T) {
	f := newFixture(t)
	f.stock("Covered", 100)
	f.stock("Beta", 1)
	f.stock("Alpha", 1)
	f.order(enums.OrderStatusPending, tomorrow, nil,
		line{"Covered", 10},
		line{"Beta", 6},
		line{"Alpha", 6},
		line{"Big", 20},
	)

	lines, err := f.svc.Plan(context.Background(), now, nil)
	require.NoError(t, err)
	names := []string{}
	for _, l := range lines {
		names = append(names, l.ProductName)
	}
	assert.Equal(t, []string{"Big", "Alpha", "Beta"}, names)
}

func TestPlanScopedToEvent(t *testing.T) {
	f := newFixture(t)
	event := models.Event{ID: uuid.New(), Title: "Metamora Fair"}
	require.NoError(t, f.conn.Create(&event).Error)
	other := uuid.New()

	f.order(enums.OrderStatusPending, tomorrow, &event.ID, line{"Chips", 3})
	f.order(enums.OrderStatusPending, tomorrow, &other, line{"Chips", 50})
	f.order(enums.OrderStatusPending, tomorrow, nil, line{"Chips", 50})

	lines, err := f.svc.Plan(context.Background(), now, &event.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].TotalNeeded)
	require.NotNil(t, lines[0].EventName)
	assert.Equal(t, "Metamora Fair", *lines[0].EventName)

	unscoped, err := f.svc.Plan(context.Background(), now, nil)
	require.NoError(t, err)
	require.Len(t, unscoped, 1)
	assert.Equal(t, 103, unscoped[0].TotalNeeded)
	assert.Nil(t, unscoped[0].EventName)
}

func TestPlanUnknownEventIsNotFound(t *testing.T) {
	f := newFixture(t)
	missing := uuid.New()
	_, err := f.svc.Plan(context.Background(), now, &missing)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestUnmatchedProducts(t *testing.T) {
	f := newFixture(t)
	f.stock("Mild Salsa (16oz)", 5)
	f.order(enums.OrderStatusPending, tomorrow, nil,
		line{"Mild Salsa (16oz)", 1},
		line{"mild salsa (16oz)", 1},
		line{"Chips", 1},
	)
	f.order(enums.OrderStatusPending, yesterday, nil, line{"Expired Thing", 1})

	missing, err := f.svc.UnmatchedProducts(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, []string{"Chips", "mild salsa (16oz)"}, missing)
}

func TestShortfallTieBreaksByName(t *testing.T) {
	lines := shortfall(
		map[string]int{"b": 5, "a": 5, "c": 9},
		[]string{"a", "b", "c"},
		map[string]int{"c": 4},
		nil,
	)
	require.Len(t, lines, 3)
	assert.Equal(t, "a", lines[0].ProductName)
	assert.Equal(t, "b", lines[1].ProductName)
	assert.Equal(t, "c", lines[2].ProductName)
}
