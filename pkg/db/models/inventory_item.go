package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem is the on-hand stock for one product, matched to order items by ItemName.
type InventoryItem struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ItemName     string    `gorm:"column:item_name;not null;uniqueIndex"`
	CurrentStock int       `gorm:"column:current_stock;not null;default:0"`
	MinStock     int       `gorm:"column:min_stock;not null;default:10"`
	Unit         string    `gorm:"column:unit;not null;default:'units'"`
	LastUpdated  time.Time `gorm:"column:last_updated;not null"`
}

func (InventoryItem) TableName() string { return "inventory" }

// BelowMinimum reports whether stock has dropped under the reorder threshold.
func (i InventoryItem) BelowMinimum() bool {
	return i.CurrentStock < i.MinStock
}
