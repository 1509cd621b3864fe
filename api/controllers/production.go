package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sherryseats/orders-backend/api/responses"
	"github.com/sherryseats/orders-backend/api/validators"
	"github.com/sherryseats/orders-backend/internal/production"
	"github.com/sherryseats/orders-backend/pkg/logger"
)

// ProductionList answers what still has to be baked for pending orders.
// ?at=RFC3339 pins "now" so a plan can be previewed for another day.
func ProductionList(svc production.Service, clock func() time.Time, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writePlan(w, r, svc, clock, nil, logg)
	}
}

func EventProductionList(svc production.Service, clock func() time.Time, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := validators.ParseUUIDParam(r, "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writePlan(w, r, svc, clock, &eventID, logg)
	}
}

func UnmatchedProducts(svc production.Service, clock func() time.Time, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now, err := validators.ParseQueryTime(r, "at", clock())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		names, err := svc.UnmatchedProducts(r.Context(), now)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if names == nil {
			names = []string{}
		}
		responses.WriteSuccess(w, names)
	}
}

func writePlan(w http.ResponseWriter, r *http.Request, svc production.Service, clock func() time.Time, eventID *uuid.UUID, logg *logger.Logger) {
	now, err := validators.ParseQueryTime(r, "at", clock())
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	lines, err := svc.Plan(r.Context(), now, eventID)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, newProductionResponse(lines))
}
