package controllers

import (
	"net/http"

	"github.com/sherryseats/orders-backend/api/responses"
	"github.com/sherryseats/orders-backend/api/validators"
	"github.com/sherryseats/orders-backend/internal/customers"
	"github.com/sherryseats/orders-backend/pkg/logger"
)

func ListCustomers(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summaries, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCustomerResponses(summaries))
	}
}

func ListEventCustomers(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := validators.ParseUUIDParam(r, "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summaries, err := svc.ListByEvent(r.Context(), eventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCustomerResponses(summaries))
	}
}
