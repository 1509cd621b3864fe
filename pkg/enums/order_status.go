package enums

// OrderStatus tracks an order from intake through delivery.
type OrderStatus string

const (
	OrderStatusPending      OrderStatus = "pending"
	OrderStatusConfirmed    OrderStatus = "confirmed"
	OrderStatusInProduction OrderStatus = "in_production"
	OrderStatusReady        OrderStatus = "ready"
	OrderStatusDelivered    OrderStatus = "delivered"
	OrderStatusCancelled    OrderStatus = "cancelled"
)

var orderStatuses = []OrderStatus{
	OrderStatusPending, OrderStatusConfirmed, OrderStatusInProduction,
	OrderStatusReady, OrderStatusDelivered, OrderStatusCancelled,
}

func (s OrderStatus) String() string { return string(s) }
func (s OrderStatus) IsValid() bool  { return known(orderStatuses, s) }

// IsTerminal is true once no further status change is expected.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func ParseOrderStatus(raw string) (OrderStatus, error) {
	return parse("order status", orderStatuses, raw)
}
