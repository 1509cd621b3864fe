package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

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

// Service is the staff-maintained stock ledger.
type Service interface {
	List(ctx context.Context) ([]models.InventoryItem, error)
	SetStock(ctx context.Context, itemName string, newStock int) (*models.InventoryItem, error)
	BelowMinimum(ctx context.Context) ([]models.InventoryItem, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	now    func() time.Time
}

func NewService(repo Repository, tx txRunner, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outbox, now: time.Now}, nil
}

func (s *service) List(ctx context.Context) ([]models.InventoryItem, error) {
	ctx, cancel := s.tx.Bound(ctx)
	defer cancel()
	return s.repo.List(ctx)
}

func (s *service) BelowMinimum(ctx context.Context) ([]models.InventoryItem, error) {
	ctx, cancel := s.tx.Bound(ctx)
	defer cancel()
	return s.repo.BelowMinimum(ctx)
}

// SetStock overwrites the on-hand count. There is no history and no delta:
// the last write wins.
func (s *service) SetStock(ctx context.Context, itemName string, newStock int) (*models.InventoryItem, error) {
	name := strings.TrimSpace(itemName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid inventory").
			WithDetails(map[string]any{"field": "item_name", "reason": "item name is required"})
	}
	if newStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid inventory").
			WithDetails(map[string]any{"field": "new_stock", "reason": "stock must not be negative"})
	}

	var updated *models.InventoryItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txCtx := tx.Statement.Context
		repo := s.repo.WithTx(tx)

		current, err := repo.FindByName(txCtx, name, true)
		if err != nil {
			return err
		}
		at := s.now().UTC()
		if err := repo.SetStock(txCtx, name, newStock, at); err != nil {
			return err
		}

		next := *current
		next.CurrentStock = newStock
		next.LastUpdated = at
		updated = &next

		return s.outbox.Emit(txCtx, tx, outbox.DomainEvent{
			EventType:     enums.EventStockAdjusted,
			AggregateType: enums.AggregateInventory,
			AggregateID:   current.ID,
			Actor:         &outbox.ActorRef{Source: "api"},
			Data: payloads.StockAdjustedEvent{
				ItemName:      name,
				PreviousStock: current.CurrentStock,
				CurrentStock:  newStock,
				MinStock:      current.MinStock,
				BelowMinimum:  next.BelowMinimum(),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
