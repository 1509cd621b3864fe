package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sherryseats/orders-backend/pkg/enums"
	"github.com/sherryseats/orders-backend/pkg/money"
	"github.com/sherryseats/orders-backend/pkg/types"
)

// Order snapshots the customer at submission time. EventID carries no foreign
// key: a deleted event leaves the reference dangling.
type Order struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID       uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	CustomerName     string              `gorm:"column:customer_name;not null"`
	CustomerPhone    string              `gorm:"column:customer_phone;not null"`
	CustomerEmail    string              `gorm:"column:customer_email;not null"`
	OrderDate        time.Time           `gorm:"column:order_date;not null"`
	DeliveryDate     types.Date          `gorm:"column:delivery_date;type:date;not null"`
	DeliveryLocation string              `gorm:"column:delivery_location;not null"`
	EventID          *uuid.UUID          `gorm:"column:event_id;type:uuid"`
	TotalAmountCents money.Cents         `gorm:"column:total_amount_cents;not null"`
	Status           enums.OrderStatus   `gorm:"column:status;type:order_status;not null;default:'pending'"`
	PaymentStatus    enums.PaymentStatus `gorm:"column:payment_status;type:payment_status;not null;default:'unpaid'"`
	Notes            *string             `gorm:"column:notes"`
	Items            []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }
