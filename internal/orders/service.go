package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sherryseats/orders-backend/internal/customers"
	"github.com/sherryseats/orders-backend/pkg/db/models"
	"github.com/sherryseats/orders-backend/pkg/enums"
	pkgerrors "github.com/sherryseats/orders-backend/pkg/errors"
	"github.com/sherryseats/orders-backend/pkg/outbox"
	"github.com/sherryseats/orders-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	Bound(ctx context.Context) (context.Context, context.CancelFunc)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// IntakeRecorder observes intake outcomes. metrics.OrderMetrics satisfies it.
type IntakeRecorder interface {
	ObserveIntake(outcome string, itemCount int)
}

// Service defines order intake and the staff-facing order operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderView, error)
	List(ctx context.Context, filter ListFilter) ([]OrderView, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderView, error)
}

type service struct {
	repo      Repository
	customers customers.Repository
	tx        txRunner
	outbox    outboxPublisher
	recorder  IntakeRecorder
	now       func() time.Time
}

// NewService wires the intake transaction. recorder may be nil.
func NewService(repo Repository, customerRepo customers.Repository, tx txRunner, outbox outboxPublisher, recorder IntakeRecorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if customerRepo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:      repo,
		customers: customerRepo,
		tx:        tx,
		outbox:    outbox,
		recorder:  recorder,
		now:       time.Now,
	}, nil
}

// Create upserts the customer, writes the order with every item and queues
// order_created in one transaction. Nothing persists unless all of it does.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (uuid.UUID, error) {
	prepared, err := prepare(input)
	if err != nil {
		s.observe(err, 0)
		return uuid.Nil, err
	}

	orderID := uuid.New()
	assignOrder(prepared.items, orderID)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txCtx := tx.Statement.Context

		customer, err := s.customers.WithTx(tx).Upsert(txCtx, input.Customer)
		if err != nil {
			return err
		}

		order := &models.Order{
			ID:               orderID,
			CustomerID:       customer.ID,
			CustomerName:     customer.Name,
			CustomerPhone:    customer.Phone,
			CustomerEmail:    customer.Email,
			OrderDate:        s.now().UTC(),
			DeliveryDate:     prepared.deliveryDate,
			DeliveryLocation: strings.TrimSpace(input.DeliveryLocation),
			EventID:          input.EventID,
			TotalAmountCents: prepared.total,
			Status:           enums.OrderStatusPending,
			PaymentStatus:    enums.PaymentStatusUnpaid,
			Notes:            input.Notes,
		}
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrder(txCtx, order); err != nil {
			return err
		}
		for i := range prepared.items {
			if err := repo.CreateItem(txCtx, &prepared.items[i]); err != nil {
				return err
			}
		}

		return s.outbox.Emit(txCtx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Actor:         &outbox.ActorRef{Source: "api", RequestID: input.RequestID},
			Data: payloads.OrderCreatedEvent{
				OrderID:          orderID,
				CustomerID:       customer.ID,
				EventID:          input.EventID,
				DeliveryDate:     prepared.deliveryDate,
				DeliveryLocation: order.DeliveryLocation,
				TotalAmountCents: prepared.total,
				ItemCount:        len(prepared.items),
				EmailOptIn:       customer.EmailOptIn,
				SMSOptIn:         customer.SMSOptIn,
			},
		})
	})
	s.observe(err, len(prepared.items))
	if err != nil {
		return uuid.Nil, err
	}
	return orderID, nil
}

func (s *service) observe(err error, itemCount int) {
	if s.recorder == nil {
		return
	}
	if err != nil {
		s.recorder.ObserveIntake(strings.ToLower(string(pkgerrors.CodeOf(err))), 0)
		return
	}
	s.recorder.ObserveIntake("created", itemCount)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderView, error) {
	ctx, cancel := s.tx.Bound(ctx)
	defer cancel()

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.withEventNames(ctx, []models.Order{*order})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]OrderView, error) {
	ctx, cancel := s.tx.Bound(ctx)
	defer cancel()

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.withEventNames(ctx, rows)
}

func (s *service) withEventNames(ctx context.Context, rows []models.Order) ([]OrderView, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	seen := map[uuid.UUID]struct{}{}
	for _, row := range rows {
		if row.EventID == nil {
			continue
		}
		if _, ok := seen[*row.EventID]; ok {
			continue
		}
		seen[*row.EventID] = struct{}{}
		ids = append(ids, *row.EventID)
	}
	titles, err := s.repo.EventTitles(ctx, ids)
	if err != nil {
		return nil, err
	}
	views := make([]OrderView, 0, len(rows))
	for _, row := range rows {
		view := OrderView{Order: row}
		if row.EventID != nil {
			if title, ok := titles[*row.EventID]; ok {
				view.EventName = &title
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// UpdateStatus changes status and/or payment status and queues order_status_changed.
// Delivered and cancelled orders keep their status.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderView, error) {
	if input.Status == nil && input.PaymentStatus == nil {
		return nil, invalidOrder("status", "status or payment_status is required")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, invalidOrder("status", fmt.Sprintf("unknown order status %q", *input.Status))
	}
	if input.PaymentStatus != nil && !input.PaymentStatus.IsValid() {
		return nil, invalidOrder("payment_status", fmt.Sprintf("unknown payment status %q", *input.PaymentStatus))
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txCtx := tx.Statement.Context
		repo := s.repo.WithTx(tx)

		current, err := repo.FindByID(txCtx, input.OrderID)
		if err != nil {
			return err
		}

		next := current.Status
		if input.Status != nil {
			next = *input.Status
		}
		nextPayment := current.PaymentStatus
		if input.PaymentStatus != nil {
			nextPayment = *input.PaymentStatus
		}
		if next == current.Status && nextPayment == current.PaymentStatus {
			return nil
		}
		if next != current.Status && current.Status.IsTerminal() {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "order is already %s", current.Status).
				WithDetails(map[string]any{"status": current.Status, "requested": next})
		}

		if err := repo.UpdateOrder(txCtx, current.ID, map[string]any{
			"status":         next,
			"payment_status": nextPayment,
			"updated_at":     s.now().UTC(),
		}); err != nil {
			return err
		}
		return s.outbox.Emit(txCtx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   current.ID,
			Actor:         &outbox.ActorRef{Source: "api"},
			Data: payloads.OrderStatusChangedEvent{
				OrderID:         current.ID,
				PreviousStatus:  current.Status,
				Status:          next,
				PreviousPayment: current.PaymentStatus,
				PaymentStatus:   nextPayment,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, input.OrderID)
}
