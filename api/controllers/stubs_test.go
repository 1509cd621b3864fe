package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sherryseats/orders-backend/internal/customers"
	"github.com/sherryseats/orders-backend/internal/events"
	"github.com/sherryseats/orders-backend/internal/orders"
	"github.com/sherryseats/orders-backend/internal/production"
	"github.com/sherryseats/orders-backend/pkg/calendar"
	"github.com/sherryseats/orders-backend/pkg/db/models"
	"github.com/sherryseats/orders-backend/pkg/enums"
)

type stubOrders struct {
	create       func(ctx context.Context, input orders.CreateOrderInput) (uuid.UUID, error)
	get          func(ctx context.Context, id uuid.UUID) (*orders.OrderView, error)
	list         func(ctx context.Context, filter orders.ListFilter) ([]orders.OrderView, error)
	updateStatus func(ctx context.Context, input orders.UpdateStatusInput) (*orders.OrderView, error)
}

func (s *stubOrders) Create(ctx context.Context, input orders.CreateOrderInput) (uuid.UUID, error) {
	return s.create(ctx, input)
}

func (s *stubOrders) Get(ctx context.Context, id uuid.UUID) (*orders.OrderView, error) {
	return s.get(ctx, id)
}

func (s *stubOrders) List(ctx context.Context, filter orders.ListFilter) ([]orders.OrderView, error) {
	return s.list(ctx, filter)
}

func (s *stubOrders) UpdateStatus(ctx context.Context, input orders.UpdateStatusInput) (*orders.OrderView, error) {
	return s.updateStatus(ctx, input)
}

type stubProduction struct {
	plan      func(ctx context.Context, now time.Time, eventID *uuid.UUID) ([]production.Line, error)
	unmatched func(ctx context.Context, now time.Time) ([]string, error)
}

func (s *stubProduction) Plan(ctx context.Context, now time.Time, eventID *uuid.UUID) ([]production.Line, error) {
	return s.plan(ctx, now, eventID)
}

func (s *stubProduction) UnmatchedProducts(ctx context.Context, now time.Time) ([]string, error) {
	return s.unmatched(ctx, now)
}

type stubInventory struct {
	list     func(ctx context.Context) ([]models.InventoryItem, error)
	setStock func(ctx context.Context, itemName string, newStock int) (*models.InventoryItem, error)
}

func (s *stubInventory) List(ctx context.Context) ([]models.InventoryItem, error) {
	return s.list(ctx)
}

func (s *stubInventory) SetStock(ctx context.Context, itemName string, newStock int) (*models.InventoryItem, error) {
	return s.setStock(ctx, itemName, newStock)
}

func (s *stubInventory) BelowMinimum(context.Context) ([]models.InventoryItem, error) {
	return nil, nil
}

type stubCustomers struct {
	list        func(ctx context.Context) ([]customers.Summary, error)
	listByEvent func(ctx context.Context, eventID uuid.UUID) ([]customers.Summary, error)
}

func (s *stubCustomers) List(ctx context.Context) ([]customers.Summary, error) {
	return s.list(ctx)
}

func (s *stubCustomers) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]customers.Summary, error) {
	return s.listByEvent(ctx, eventID)
}

type stubEvents struct {
	events.Service
	create   func(ctx context.Context, input events.Input) (*models.Event, error)
	remove   func(ctx context.Context, id uuid.UUID) error
	inCity   func(ctx context.Context, city string, now time.Time) ([]models.Event, error)
	calendar []calendar.Event
}

func (s *stubEvents) Create(ctx context.Context, input events.Input) (*models.Event, error) {
	return s.create(ctx, input)
}

func (s *stubEvents) Delete(ctx context.Context, id uuid.UUID) error {
	return s.remove(ctx, id)
}

func (s *stubEvents) UpcomingInCity(ctx context.Context, city string, now time.Time) ([]models.Event, error) {
	return s.inCity(ctx, city, now)
}

func (s *stubEvents) CalendarEvents(context.Context) []calendar.Event {
	return s.calendar
}

type stubCityRequests struct {
	create       func(ctx context.Context, city, email string) (*models.CityRequest, error)
	list         func(ctx context.Context) ([]models.CityRequest, error)
	updateStatus func(ctx context.Context, id uuid.UUID, status enums.CityRequestStatus) (*models.CityRequest, error)
}

func (s *stubCityRequests) Create(ctx context.Context, city, email string) (*models.CityRequest, error) {
	return s.create(ctx, city, email)
}

func (s *stubCityRequests) List(ctx context.Context) ([]models.CityRequest, error) {
	return s.list(ctx)
}

func (s *stubCityRequests) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.CityRequestStatus) (*models.CityRequest, error) {
	return s.updateStatus(ctx, id, status)
}

// serve routes a single request through a chi router so URL params resolve.
func serve(method, pattern, target string, body io.Reader, handler http.HandlerFunc) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, handler)
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
