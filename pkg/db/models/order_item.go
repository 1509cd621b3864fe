package models

import (
	"github.com/google/uuid"

	"github.com/sherryseats/orders-backend/pkg/money"
)

// OrderItem is immutable once written. ProductName is the join key into inventory.
type OrderItem struct {
	ID              uuid.UUID   `gorm:"column:id;type:uuid;primaryKey"`
	OrderID         uuid.UUID   `gorm:"column:order_id;type:uuid;not null"`
	Position        int         `gorm:"column:position;not null"`
	ProductType     string      `gorm:"column:product_type;not null"`
	ProductName     string      `gorm:"column:product_name;not null"`
	Quantity        int         `gorm:"column:quantity;not null"`
	UnitPriceCents  money.Cents `gorm:"column:unit_price_cents;not null"`
	TotalPriceCents money.Cents `gorm:"column:total_price_cents;not null"`
}

func (OrderItem) TableName() string { return "order_items" }
