package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sherryseats/orders-backend/internal/customers"
	"github.com/sherryseats/orders-backend/pkg/db/models"
	"github.com/sherryseats/orders-backend/pkg/enums"
)

// CreateOrderInput is one order submission as received from a customer.
type CreateOrderInput struct {
	Customer         customers.Input
	Items            []ItemInput
	DeliveryDate     string
	DeliveryLocation string
	EventID          *uuid.UUID
	Notes            *string
	RequestID        string
}

// ItemInput is a requested line. UnitPrice is in dollars.
type ItemInput struct {
	Type      string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// UpdateStatusInput moves an order along its lifecycle. At least one field must be set.
type UpdateStatusInput struct {
	OrderID       uuid.UUID
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
}

// OrderView is an order with its line items and the title of its event, when
// the event still exists.
type OrderView struct {
	models.Order
	EventName *string
}
