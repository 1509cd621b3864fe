package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sherryseats/orders-backend/internal/customers"
	"github.com/sherryseats/orders-backend/internal/orders"
	"github.com/sherryseats/orders-backend/internal/production"
	"github.com/sherryseats/orders-backend/pkg/db/models"
	"github.com/sherryseats/orders-backend/pkg/types"
)

type customerRequest struct {
	Name           string  `json:"name"`
	Phone          string  `json:"phone"`
	Email          string  `json:"email"`
	HeardFrom      *string `json:"heard_from"`
	ReferralNames  *string `json:"referral_names"`
	ReferralEmails *string `json:"referral_emails"`
	EmailOptIn     *bool   `json:"email_optin"`
	SMSOptIn       *bool   `json:"sms_optin"`
}

type orderItemRequest struct {
	Type      string          `json:"type"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// createOrderRequest is the storefront checkout payload. Field checks live in
// the orders service.
type createOrderRequest struct {
	Customer         customerRequest    `json:"customer"`
	Items            []orderItemRequest `json:"items"`
	DeliveryDate     string             `json:"delivery_date"`
	DeliveryLocation string             `json:"delivery_location"`
	EventID          *uuid.UUID         `json:"event_id"`
	Notes            *string            `json:"notes"`
}

func (r createOrderRequest) toInput(requestID string) orders.CreateOrderInput {
	items := make([]orders.ItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, orders.ItemInput{
			Type:      item.Type,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return orders.CreateOrderInput{
		Customer: customers.Input{
			Name:           r.Customer.Name,
			Phone:          r.Customer.Phone,
			Email:          r.Customer.Email,
			HeardFrom:      r.Customer.HeardFrom,
			ReferralNames:  r.Customer.ReferralNames,
			ReferralEmails: r.Customer.ReferralEmails,
			EmailOptIn:     boolOr(r.Customer.EmailOptIn, true),
			SMSOptIn:       boolOr(r.Customer.SMSOptIn, true),
		},
		Items:            items,
		DeliveryDate:     r.DeliveryDate,
		DeliveryLocation: r.DeliveryLocation,
		EventID:          r.EventID,
		Notes:            r.Notes,
		RequestID:        requestID,
	}
}

type updateOrderStatusRequest struct {
	Status        *string `json:"status"`
	PaymentStatus *string `json:"payment_status"`
}

type updateStockRequest struct {
	ItemName string `json:"item_name" validate:"notblank"`
	NewStock *int   `json:"new_stock" validate:"required"`
}

type eventRequest struct {
	Title            string     `json:"title" validate:"notblank,max=200"`
	Description      *string    `json:"description"`
	EventDate        *time.Time `json:"event_date"`
	Location         *string    `json:"location"`
	GoogleCalendarID *string    `json:"google_calendar_id"`
}

type cityRequestRequest struct {
	City  string `json:"city" validate:"notblank,max=100"`
	Email string `json:"email" validate:"required,email"`
}

type cityRequestStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type orderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductType string          `json:"product_type"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

type orderResponse struct {
	ID               uuid.UUID           `json:"id"`
	CustomerID       uuid.UUID           `json:"customer_id"`
	CustomerName     string              `json:"customer_name"`
	CustomerPhone    string              `json:"customer_phone"`
	CustomerEmail    string              `json:"customer_email"`
	OrderDate        time.Time           `json:"order_date"`
	DeliveryDate     types.Date          `json:"delivery_date"`
	DeliveryLocation string              `json:"delivery_location"`
	EventID          *uuid.UUID          `json:"event_id"`
	EventName        *string             `json:"event_name"`
	TotalAmount      decimal.Decimal     `json:"total_amount"`
	Status           string              `json:"status"`
	PaymentStatus    string              `json:"payment_status"`
	Notes            *string             `json:"notes"`
	Items            []orderItemResponse `json:"items"`
}

func newOrderResponse(view orders.OrderView) orderResponse {
	items := make([]orderItemResponse, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, orderItemResponse{
			ID:          item.ID,
			ProductType: item.ProductType,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPriceCents.Decimal(),
			TotalPrice:  item.TotalPriceCents.Decimal(),
		})
	}
	return orderResponse{
		ID:               view.ID,
		CustomerID:       view.CustomerID,
		CustomerName:     view.CustomerName,
		CustomerPhone:    view.CustomerPhone,
		CustomerEmail:    view.CustomerEmail,
		OrderDate:        view.OrderDate,
		DeliveryDate:     view.DeliveryDate,
		DeliveryLocation: view.DeliveryLocation,
		EventID:          view.EventID,
		EventName:        view.EventName,
		TotalAmount:      view.TotalAmountCents.Decimal(),
		Status:           string(view.Status),
		PaymentStatus:    string(view.PaymentStatus),
		Notes:            view.Notes,
		Items:            items,
	}
}

func newOrderResponses(views []orders.OrderView) []orderResponse {
	out := make([]orderResponse, 0, len(views))
	for _, view := range views {
		out = append(out, newOrderResponse(view))
	}
	return out
}

type productionLineResponse struct {
	ProductName  string  `json:"product_name"`
	TotalNeeded  int     `json:"total_needed"`
	CurrentStock int     `json:"current_stock"`
	NeedToMake   int     `json:"need_to_make"`
	EventName    *string `json:"event_name,omitempty"`
}

func newProductionResponse(lines []production.Line) []productionLineResponse {
	out := make([]productionLineResponse, 0, len(lines))
	for _, line := range lines {
		out = append(out, productionLineResponse{
			ProductName:  line.ProductName,
			TotalNeeded:  line.TotalNeeded,
			CurrentStock: line.CurrentStock,
			NeedToMake:   line.NeedToMake,
			EventName:    line.EventName,
		})
	}
	return out
}

type inventoryResponse struct {
	ID           uuid.UUID `json:"id"`
	ItemName     string    `json:"item_name"`
	CurrentStock int       `json:"current_stock"`
	MinStock     int       `json:"min_stock"`
	Unit         string    `json:"unit"`
	LastUpdated  time.Time `json:"last_updated"`
	BelowMinimum bool      `json:"below_minimum"`
}

func newInventoryResponse(item models.InventoryItem) inventoryResponse {
	return inventoryResponse{
		ID:           item.ID,
		ItemName:     item.ItemName,
		CurrentStock: item.CurrentStock,
		MinStock:     item.MinStock,
		Unit:         item.Unit,
		LastUpdated:  item.LastUpdated,
		BelowMinimum: item.BelowMinimum(),
	}
}

type customerResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	HeardFrom      *string   `json:"heard_from"`
	ReferralNames  *string   `json:"referral_names"`
	ReferralEmails *string   `json:"referral_emails"`
	EmailOptIn     bool      `json:"email_optin"`
	SMSOptIn       bool      `json:"sms_optin"`
	CreatedAt      time.Time `json:"created_at"`
	EventsAttended []string  `json:"events_attended"`
}

func newCustomerResponses(summaries []customers.Summary) []customerResponse {
	out := make([]customerResponse, 0, len(summaries))
	for _, s := range summaries {
		attended := s.EventsAttended
		if attended == nil {
			attended = []string{}
		}
		out = append(out, customerResponse{
			ID:             s.ID,
			Name:           s.Name,
			Phone:          s.Phone,
			Email:          s.Email,
			HeardFrom:      s.HeardFrom,
			ReferralNames:  s.ReferralNames,
			ReferralEmails: s.ReferralEmails,
			EmailOptIn:     s.EmailOptIn,
			SMSOptIn:       s.SMSOptIn,
			CreatedAt:      s.CreatedAt,
			EventsAttended: attended,
		})
	}
	return out
}

type eventResponse struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Description      *string    `json:"description"`
	EventDate        *time.Time `json:"event_date"`
	Location         *string    `json:"location"`
	GoogleCalendarID *string    `json:"google_calendar_id"`
}

func newEventResponse(event models.Event) eventResponse {
	return eventResponse{
		ID:               event.ID,
		Title:            event.Title,
		Description:      event.Description,
		EventDate:        event.EventDate,
		Location:         event.Location,
		GoogleCalendarID: event.GoogleCalendarID,
	}
}

func newEventResponses(events []models.Event) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, newEventResponse(event))
	}
	return out
}

type cityRequestResponse struct {
	ID          uuid.UUID `json:"id"`
	City        string    `json:"city"`
	Email       string    `json:"email"`
	Status      string    `json:"status"`
	RequestDate time.Time `json:"request_date"`
}

func newCityRequestResponse(row models.CityRequest) cityRequestResponse {
	return cityRequestResponse{
		ID:          row.ID,
		City:        row.City,
		Email:       row.Email,
		Status:      string(row.Status),
		RequestDate: row.RequestDate,
	}
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
