package controllers

import (
	"net/http"

	"github.com/sherryseats/orders-backend/api/responses"
	"github.com/sherryseats/orders-backend/api/validators"
	"github.com/sherryseats/orders-backend/internal/cityrequests"
	"github.com/sherryseats/orders-backend/pkg/enums"
	"github.com/sherryseats/orders-backend/pkg/logger"
)

// CreateCityRequest records interest in deliveries to an unserved city.
func CreateCityRequest(svc cityrequests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cityRequestRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.Create(r.Context(), validators.SanitizeString(req.City, 100), validators.SanitizeString(req.Email, 254))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCityRequestResponse(*row))
	}
}

func ListCityRequests(svc cityrequests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]cityRequestResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, newCityRequestResponse(row))
		}
		responses.WriteSuccess(w, out)
	}
}

func UpdateCityRequestStatus(svc cityrequests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req cityRequestStatusRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.UpdateStatus(r.Context(), id, enums.CityRequestStatus(req.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCityRequestResponse(*row))
	}
}
