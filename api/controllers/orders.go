package controllers

import (
	"net/http"

	"github.com/sherryseats/orders-backend/api/responses"
	"github.com/sherryseats/orders-backend/api/validators"
	"github.com/sherryseats/orders-backend/internal/orders"
	"github.com/sherryseats/orders-backend/pkg/enums"
	pkgerrors "github.com/sherryseats/orders-backend/pkg/errors"
	"github.com/sherryseats/orders-backend/pkg/logger"
)

// CreateOrder accepts a storefront order and answers 201 with the new id.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := svc.Create(r.Context(), req.toInput(w.Header().Get(requestIDHeader)))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithOrderID(r.Context(), orderID.String()), "order.created")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"order_id": orderID,
			"message":  "Order submitted successfully!",
		})
	}
}

func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := svc.List(r.Context(), orders.ListFilter{})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponses(views))
	}
}

func ListEventOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := validators.ParseUUIDParam(r, "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views, err := svc.List(r.Context(), orders.ListFilter{EventID: &eventID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponses(views))
	}
}

func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(*view))
	}
}

// UpdateOrderStatus changes status and/or payment status.
func UpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateOrderStatusRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if req.Status == nil && req.PaymentStatus == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "status or payment_status is required").
				WithDetails(map[string]any{"field": "status"}))
			return
		}

		input := orders.UpdateStatusInput{OrderID: orderID}
		if req.Status != nil {
			status := enums.OrderStatus(*req.Status)
			input.Status = &status
		}
		if req.PaymentStatus != nil {
			payment := enums.PaymentStatus(*req.PaymentStatus)
			input.PaymentStatus = &payment
		}

		view, err := svc.UpdateStatus(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(*view))
	}
}
