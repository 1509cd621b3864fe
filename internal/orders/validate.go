package orders

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/sherryseats/orders-backend/pkg/db/models"
	pkgerrors "github.com/sherryseats/orders-backend/pkg/errors"
	"github.com/sherryseats/orders-backend/pkg/money"
	"github.com/sherryseats/orders-backend/pkg/types"
)

// maxUnitPrice caps a single unit at $100,000.00.
const maxUnitPrice money.Cents = 10_000_000

type preparedOrder struct {
	deliveryDate types.Date
	items        []models.OrderItem
	total        money.Cents
}

func invalidOrder(field, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).
		WithDetails(map[string]any{"field": field})
}

// prepare validates the submission and prices every line with the same
// integer rule used for the order total.
func prepare(input CreateOrderInput) (*preparedOrder, error) {
	c := input.Customer
	switch {
	case strings.TrimSpace(c.Name) == "":
		return nil, invalidOrder("customer.name", "customer name is required")
	case strings.TrimSpace(c.Phone) == "":
		return nil, invalidOrder("customer.phone", "customer phone is required")
	case strings.TrimSpace(c.Email) == "":
		return nil, invalidOrder("customer.email", "customer email is required")
	}
	if strings.TrimSpace(input.DeliveryLocation) == "" {
		return nil, invalidOrder("delivery_location", "delivery location is required")
	}
	deliveryDate, err := types.ParseDate(input.DeliveryDate)
	if err != nil {
		return nil, invalidOrder("delivery_date", err.Error())
	}
	if len(input.Items) == 0 {
		return nil, invalidOrder("items", "order must contain at least one item")
	}

	items := make([]models.OrderItem, 0, len(input.Items))
	lineTotals := make([]money.Cents, 0, len(input.Items))
	for i, item := range input.Items {
		field := fmt.Sprintf("items[%d]", i)
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return nil, invalidOrder(field+".name", "item name is required")
		}
		if strings.TrimSpace(item.Type) == "" {
			return nil, invalidOrder(field+".type", "item type is required")
		}
		if item.Quantity <= 0 {
			return nil, invalidOrder(field+".quantity", "quantity must be greater than zero")
		}
		if item.Quantity > math.MaxInt32 {
			return nil, invalidOrder(field+".quantity", fmt.Sprintf("quantity must not exceed %d", math.MaxInt32))
		}
		if item.UnitPrice.IsNegative() {
			return nil, invalidOrder(field+".unit_price", "unit price must not be negative")
		}
		unit, err := money.FromDecimal(item.UnitPrice)
		if err != nil || unit > maxUnitPrice {
			return nil, invalidOrder(field+".unit_price", "unit price must not exceed "+maxUnitPrice.String())
		}
		line, err := unit.Times(item.Quantity)
		if err != nil {
			return nil, invalidOrder(field, "line total is out of range")
		}
		lineTotals = append(lineTotals, line)
		items = append(items, models.OrderItem{
			Position:        i,
			ProductType:     strings.TrimSpace(item.Type),
			ProductName:     name,
			Quantity:        item.Quantity,
			UnitPriceCents:  unit,
			TotalPriceCents: line,
		})
	}

	total, err := money.Sum(lineTotals...)
	if err != nil {
		return nil, invalidOrder("items", "order total is out of range")
	}
	return &preparedOrder{
		deliveryDate: deliveryDate,
		items:        items,
		total:        total,
	}, nil
}

func assignOrder(items []models.OrderItem, orderID uuid.UUID) {
	for i := range items {
		items[i].ID = uuid.New()
		items[i].OrderID = orderID
	}
}
