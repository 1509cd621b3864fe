package production

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sherryseats/orders-backend/pkg/db"
	"github.com/sherryseats/orders-backend/pkg/db/models"
	"github.com/sherryseats/orders-backend/pkg/enums"
	pkgerrors "github.com/sherryseats/orders-backend/pkg/errors"
	"github.com/sherryseats/orders-backend/pkg/types"
)

// DemandRow is one qualifying order line.
type DemandRow struct {
	ProductName string
	Quantity    int
}

// Repository reads committed orders and the inventory ledger. It never writes.
type Repository interface {
	PendingDemand(ctx context.Context, from types.Date, eventID *uuid.UUID) ([]DemandRow, error)
	StockByName(ctx context.Context, names []string) (map[string]int, error)
	EventTitle(ctx context.Context, eventID uuid.UUID) (string, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

// PendingDemand returns the items of pending orders delivering on or after from.
func (r *repository) PendingDemand(ctx context.Context, from types.Date, eventID *uuid.UUID) ([]DemandRow, error) {
	query := r.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.product_name AS product_name, order_items.quantity AS quantity").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status = ?", enums.OrderStatusPending).
		Where("orders.delivery_date >= ?", from.String())
	if eventID != nil {
		query = query.Where("orders.event_id = ?", *eventID)
	}
	var rows []DemandRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, db.Classify(err, "load pending demand")
	}
	return rows, nil
}

// StockByName returns current stock keyed by exact item name. Names without
// an inventory row are absent from the map.
func (r *repository) StockByName(ctx context.Context, names []string) (map[string]int, error) {
	out := make(map[string]int, len(names))
	if len(names) == 0 {
		return out, nil
	}
	var items []models.InventoryItem
	err := r.db.WithContext(ctx).
		Select("item_name", "current_stock").
		Where("item_name IN ?", names).
		Find(&items).Error
	if err != nil {
		return nil, db.Classify(err, "load inventory")
	}
	for _, item := range items {
		out[item.ItemName] = item.CurrentStock
	}
	return out, nil
}

func (r *repository) EventTitle(ctx context.Context, eventID uuid.UUID) (string, error) {
	var event models.Event
	err := r.db.WithContext(ctx).Select("id", "title").Where("id = ?", eventID).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return "", db.Classify(err, "find event")
	}
	return event.Title, nil
}
