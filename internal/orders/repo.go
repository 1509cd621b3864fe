package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sherryseats/orders-backend/pkg/db"
	"github.com/sherryseats/orders-backend/pkg/db/models"
	pkgerrors "github.com/sherryseats/orders-backend/pkg/errors"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error; err != nil {
		return db.Classify(err, "insert order")
	}
	return nil
}

func (r *repository) CreateItem(ctx context.Context, item *models.OrderItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return db.Classify(err, "insert order item")
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, db.Classify(err, "find order")
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") })
	if filter.EventID != nil {
		query = query.Where("event_id = ?", *filter.EventID)
	}
	var rows []models.Order
	if err := query.Order("order_date DESC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, db.Classify(err, "list orders")
	}
	return rows, nil
}

// EventTitles resolves event ids to titles. Ids of deleted events are absent from the result.
func (r *repository) EventTitles(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(eventIDs))
	if len(eventIDs) == 0 {
		return out, nil
	}
	var events []models.Event
	if err := r.db.WithContext(ctx).Select("id", "title").Where("id IN ?", eventIDs).Find(&events).Error; err != nil {
		return nil, db.Classify(err, "load event titles")
	}
	for _, event := range events {
		out[event.ID] = event.Title
	}
	return out, nil
}

func (r *repository) UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return db.Classify(result.Error, "update order")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}
