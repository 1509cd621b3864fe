package payloads

import (
	"github.com/google/uuid"

	"github.com/sherryseats/orders-backend/pkg/enums"
	"github.com/sherryseats/orders-backend/pkg/money"
	"github.com/sherryseats/orders-backend/pkg/types"
)

// OrderCreatedEvent is emitted once an order and all of its items commit.
type OrderCreatedEvent struct {
	OrderID          uuid.UUID   `json:"order_id"`
	CustomerID       uuid.UUID   `json:"customer_id"`
	EventID          *uuid.UUID  `json:"event_id,omitempty"`
	DeliveryDate     types.Date  `json:"delivery_date"`
	DeliveryLocation string      `json:"delivery_location"`
	TotalAmountCents money.Cents `json:"total_amount_cents"`
	ItemCount        int         `json:"item_count"`
	EmailOptIn       bool        `json:"email_optin"`
	SMSOptIn         bool        `json:"sms_optin"`
}

// OrderStatusChangedEvent records a lifecycle or payment transition.
type OrderStatusChangedEvent struct {
	OrderID         uuid.UUID           `json:"order_id"`
	PreviousStatus  enums.OrderStatus   `json:"previous_status"`
	Status          enums.OrderStatus   `json:"status"`
	PreviousPayment enums.PaymentStatus `json:"previous_payment_status"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
}

// StockAdjustedEvent records a ledger overwrite.
type StockAdjustedEvent struct {
	ItemName      string `json:"item_name"`
	PreviousStock int    `json:"previous_stock"`
	CurrentStock  int    `json:"current_stock"`
	MinStock      int    `json:"min_stock"`
	BelowMinimum  bool   `json:"below_minimum"`
}
