package inventory

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sherryseats/orders-backend/pkg/db"
	"github.com/sherryseats/orders-backend/pkg/db/models"
	pkgerrors "github.com/sherryseats/orders-backend/pkg/errors"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.InventoryItem, error)
	FindByName(ctx context.Context, itemName string, forUpdate bool) (*models.InventoryItem, error)
	SetStock(ctx context.Context, itemName string, stock int, at time.Time) error
	BelowMinimum(ctx context.Context) ([]models.InventoryItem, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context) ([]models.InventoryItem, error) {
	var rows []models.InventoryItem
	if err := r.db.WithContext(ctx).Order("item_name ASC").Find(&rows).Error; err != nil {
		return nil, db.Classify(err, "list inventory")
	}
	return rows, nil
}

func (r *repository) FindByName(ctx context.Context, itemName string, forUpdate bool) (*models.InventoryItem, error) {
	query := r.db.WithContext(ctx).Where("item_name = ?", itemName)
	if forUpdate && r.db.Dialector != nil && r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var item models.InventoryItem
	if err := query.First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "inventory item %q not found", itemName)
		}
		return nil, db.Classify(err, "find inventory item")
	}
	return &item, nil
}

func (r *repository) SetStock(ctx context.Context, itemName string, stock int, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("item_name = ?", itemName).
		Updates(map[string]any{
			"current_stock": stock,
			"last_updated":  at,
		})
	if result.Error != nil {
		return db.Classify(result.Error, "update inventory")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "inventory item %q not found", itemName)
	}
	return nil
}

func (r *repository) BelowMinimum(ctx context.Context) ([]models.InventoryItem, error) {
	var rows []models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("current_stock < min_stock").
		Order("item_name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, db.Classify(err, "list low inventory")
	}
	return rows, nil
}
