package controllers

import (
	"net/http"

	"github.com/sherryseats/orders-backend/api/responses"
	"github.com/sherryseats/orders-backend/api/validators"
	"github.com/sherryseats/orders-backend/internal/inventory"
	"github.com/sherryseats/orders-backend/pkg/logger"
)

func ListInventory(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]inventoryResponse, 0, len(items))
		for _, item := range items {
			out = append(out, newInventoryResponse(item))
		}
		responses.WriteSuccess(w, out)
	}
}

// UpdateInventory overwrites the on-hand count of one catalog item.
func UpdateInventory(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateStockRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.SetStock(r.Context(), validators.SanitizeString(req.ItemName, 0), *req.NewStock)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newInventoryResponse(*item))
	}
}
