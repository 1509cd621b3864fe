package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sherryseats/orders-backend/pkg/db/models"
)

// Repository persists orders and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateItem(ctx context.Context, item *models.OrderItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter ListFilter) ([]models.Order, error)
	EventTitles(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]string, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

// ListFilter narrows order listings. A nil EventID lists every order.
type ListFilter struct {
	EventID *uuid.UUID
}
