package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sherryseats/orders-backend/api/validators"
	pkgerrors "github.com/sherryseats/orders-backend/pkg/errors"
)

type replayMap struct {
	data     map[string]string
	ttls     map[string]time.Duration
	claimErr error
}

func newReplayMap() *replayMap {
	return &replayMap{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *replayMap) Lookup(_ context.Context, key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *replayMap) Claim(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	if m.claimErr != nil {
		return false, m.claimErr
	}
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return true, nil
}

func (m *replayMap) Put(_ context.Context, key, value string, ttl time.Duration) error {
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *replayMap) Forget(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func intake(body, key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	if key != "" {
		req.Header.Set(idempotencyHeader, key)
	}
	return req
}

func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	return payload.Error.Code
}

func TestReplayableRoutes(t *testing.T) {
	cases := []struct {
		method, path string
		want         bool
	}{
		{http.MethodPost, "/api/orders", true},
		{http.MethodPatch, "/api/orders/8c1f/status", true},
		{http.MethodPatch, "/api/city-requests/42/status", true},
		{http.MethodPut, "/api/inventory", true},
		{http.MethodPost, "/api/city-requests", true},
		{http.MethodGet, "/api/orders", false},
		{http.MethodPost, "/api/events", false},
		{http.MethodPatch, "/api/orders//status", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, isReplayable(tc.method, tc.path), "%s %s", tc.method, tc.path)
	}
}

func TestIdempotencyIgnoresRequestsWithoutKey(t *testing.T) {
	store := newReplayMap()
	calls := 0
	h := Idempotency(store, 0, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	h.ServeHTTP(httptest.NewRecorder(), intake(`{}`, ""))
	h.ServeHTTP(httptest.NewRecorder(), intake(`{}`, ""))
	assert.Equal(t, 2, calls)
	assert.Empty(t, store.data)
}

func TestIdempotencyReplaysFirstResponse(t *testing.T) {
	store := newReplayMap()
	calls := 0
	h := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"order_id":"abc"}`))
	}))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, intake(`{"a":1}`, "k1"))
	require.Equal(t, http.StatusCreated, first.Code)

	again := httptest.NewRecorder()
	h.ServeHTTP(again, intake(`{"a":1}`, "k1"))
	assert.Equal(t, http.StatusCreated, again.Code)
	assert.Equal(t, `{"order_id":"abc"}`, again.Body.String())
	assert.Equal(t, "application/json", again.Header().Get("Content-Type"))
	assert.Equal(t, "true", again.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, 1, calls)
	assert.Equal(t, time.Hour, store.ttls["idempotency:POST:/api/orders:k1"])
}

func TestIdempotencyCapsBufferedBody(t *testing.T) {
	store := newReplayMap()
	calls := 0
	h := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	huge := `{"notes":"` + strings.Repeat("x", validators.MaxBodyBytes) + `"}`
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, intake(huge, "big"))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, string(pkgerrors.CodeValidation), errorCode(t, resp))
	assert.Zero(t, calls)
	assert.Empty(t, store.data)
}

func TestIdempotencyRejectsDifferentBody(t *testing.T) {
	store := newReplayMap()
	h := Idempotency(store, 0, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	h.ServeHTTP(httptest.NewRecorder(), intake(`{"a":1}`, "k2"))

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, intake(`{"a":2}`, "k2"))
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, string(pkgerrors.CodeIdempotency), errorCode(t, resp))
}

func TestIdempotencyReportsInFlightDuplicate(t *testing.T) {
	store := newReplayMap()
	var h http.Handler
	var nested *httptest.ResponseRecorder
	h = Idempotency(store, 0, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if nested == nil {
			nested = httptest.NewRecorder()
			h.ServeHTTP(nested, intake(`{"a":1}`, "k3"))
		}
		w.WriteHeader(http.StatusCreated)
	}))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, intake(`{"a":1}`, "k3"))
	assert.Equal(t, http.StatusCreated, first.Code)
	require.NotNil(t, nested)
	assert.Equal(t, http.StatusConflict, nested.Code)
	assert.Equal(t, string(pkgerrors.CodeConflict), errorCode(t, nested))
}

func TestIdempotencyForgetsServerErrors(t *testing.T) {
	store := newReplayMap()
	calls := 0
	h := Idempotency(store, 0, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	h.ServeHTTP(httptest.NewRecorder(), intake(`{}`, "k4"))
	h.ServeHTTP(httptest.NewRecorder(), intake(`{}`, "k4"))
	assert.Equal(t, 2, calls)
	assert.Empty(t, store.data)
}

func TestIdempotencyStoreFailure(t *testing.T) {
	store := newReplayMap()
	store.claimErr = errors.New("redis down")
	h := Idempotency(store, 0, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, intake(`{}`, "k5"))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}
