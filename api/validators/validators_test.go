package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/sherryseats/orders-backend/pkg/errors"
)

type stockBody struct {
	ItemName string `json:"item_name" validate:"required"`
	NewStock *int   `json:"new_stock" validate:"required,min=0"`
}

func TestDecodeJSONBodyValidates(t *testing.T) {
	var dest stockBody
	req := httptest.NewRequest(http.MethodPut, "/api/inventory", strings.NewReader(`{"item_name":"Pie","new_stock":-1}`))
	err := DecodeJSONBody(httptest.NewRecorder(), req, &dest)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, map[string]string{"new_stock": "must be at least 0"}, typed.Details())
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	var dest stockBody
	req := httptest.NewRequest(http.MethodPut, "/api/inventory", strings.NewReader(`{"item_name":"Pie","new_stock":3,"extra":true}`))
	assert.True(t, pkgerrors.Is(DecodeJSONBody(httptest.NewRecorder(), req, &dest), pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyAcceptsZero(t *testing.T) {
	var dest stockBody
	req := httptest.NewRequest(http.MethodPut, "/api/inventory", strings.NewReader(`{"item_name":"Pie","new_stock":0}`))
	require.NoError(t, DecodeJSONBody(httptest.NewRecorder(), req, &dest))
	assert.Equal(t, 0, *dest.NewStock)
}

func TestDecodeJSONBodyRejectsBlankAndOversized(t *testing.T) {
	type cityBody struct {
		City string `json:"city" validate:"notblank,max=5"`
	}
	var dest cityBody
	req := httptest.NewRequest(http.MethodPost, "/api/city-requests", strings.NewReader(`{"city":"   "}`))
	err := DecodeJSONBody(httptest.NewRecorder(), req, &dest)
	require.Error(t, err)
	assert.Equal(t, map[string]string{"city": "must not be blank"}, pkgerrors.As(err).Details())

	req = httptest.NewRequest(http.MethodPost, "/api/city-requests", strings.NewReader(`{"city":"Kalamazoo"}`))
	err = DecodeJSONBody(httptest.NewRecorder(), req, &dest)
	assert.Equal(t, map[string]string{"city": "must be at most 5"}, pkgerrors.As(err).Details())

	huge := `{"city":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/api/city-requests", strings.NewReader(huge))
	err = DecodeJSONBody(httptest.NewRecorder(), req, &dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestParseQueryTime(t *testing.T) {
	fallback := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	req := httptest.NewRequest(http.MethodGet, "/api/production-list", nil)
	got, err := ParseQueryTime(req, "at", fallback)
	require.NoError(t, err)
	assert.Equal(t, fallback, got)

	req = httptest.NewRequest(http.MethodGet, "/api/production-list?at=2026-06-01T08:00:00-04:00", nil)
	got, err = ParseQueryTime(req, "at", fallback)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)))

	req = httptest.NewRequest(http.MethodGet, "/api/production-list?at=tomorrow", nil)
	_, err = ParseQueryTime(req, "at", fallback)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()
	withParam := func(value string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/orders/"+value, nil)
		rc := chi.NewRouteContext()
		rc.URLParams.Add("orderId", value)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	}

	got, err := ParseUUIDParam(withParam(id.String()), "orderId")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseUUIDParam(withParam("not-a-uuid"), "orderId")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Lapeer", SanitizeString("  Lapeer  ", 0))
	assert.Equal(t, "Lap", SanitizeString("Lapeer", 3))
	assert.Equal(t, "Saint Ignace", SanitizeString("Saint\x00 Ignace\t", 0))
	assert.Equal(t, "Café", SanitizeString("Café au lait", 4))
}
