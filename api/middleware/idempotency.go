package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sherryseats/orders-backend/api/responses"
	"github.com/sherryseats/orders-backend/api/validators"
	pkgerrors "github.com/sherryseats/orders-backend/pkg/errors"
	"github.com/sherryseats/orders-backend/pkg/logger"
)

const (
	idempotencyHeader     = "Idempotency-Key"
	defaultIdempotencyTTL = 24 * time.Hour
	// pendingTTL bounds how long a crashed request can block its key.
	pendingTTL = 2 * time.Minute
)

// ReplayStore is the slice of the redis client the idempotency layer uses.
type ReplayStore interface {
	Lookup(ctx context.Context, key string) (string, bool, error)
	Claim(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Forget(ctx context.Context, keys ...string) error
}

// replayable lists the writes that honour Idempotency-Key.
var replayable = []struct {
	method string
	match  func(path string) bool
}{
	{http.MethodPost, equals("/api/orders")},
	{http.MethodPost, equals("/api/city-requests")},
	{http.MethodPatch, wraps("/api/orders/", "/status")},
	{http.MethodPatch, wraps("/api/city-requests/", "/status")},
	{http.MethodPut, equals("/api/inventory")},
}

// replayEntry is what the store holds per key. A pending entry marks a
// request that is still running.
type replayEntry struct {
	Pending     bool   `json:"pending,omitempty"`
	Fingerprint string `json:"fingerprint"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Idempotency makes the writes in replayable safe to retry. The first request
// with a given key runs and its response is kept for ttl; later requests with
// the same key and body get that response back without touching the handler.
// Server errors are forgotten so the client may retry them.
func Idempotency(store ReplayStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			path := trimmedPath(r)
			if store == nil || clientKey == "" || !isReplayable(r.Method, path) {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, validators.MaxBodyBytes))
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				responses.WriteError(ctx, logg, w, pkgerrors.Newf(pkgerrors.CodeValidation, "request body exceeds %d bytes", tooBig.Limit))
				return
			}
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := "idempotency:" + r.Method + ":" + path + ":" + clientKey
			fp := fingerprint(body)

			marker, _ := json.Marshal(replayEntry{Pending: true, Fingerprint: fp})
			won, err := store.Claim(ctx, key, string(marker), pendingTTL)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key"))
				return
			}
			if !won {
				replay(ctx, store, key, fp, w, logg)
				return
			}

			capture := &bodyCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			if capture.code() >= http.StatusInternalServerError {
				if err := store.Forget(ctx, key); err != nil && logg != nil {
					logg.Error(ctx, "release idempotency key", err)
				}
				return
			}
			done, _ := json.Marshal(replayEntry{
				Fingerprint: fp,
				Status:      capture.code(),
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.buf.Bytes(),
			})
			if err := store.Put(ctx, key, string(done), ttl); err != nil && logg != nil {
				logg.Error(ctx, "store idempotent response", err)
			}
		})
	}
}

func replay(ctx context.Context, store ReplayStore, key, fp string, w http.ResponseWriter, logg *logger.Logger) {
	raw, found, err := store.Lookup(ctx, key)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read idempotency key"))
		return
	}
	var entry replayEntry
	if !found {
		// the first request finished with a server error in between
		entry.Pending = true
		entry.Fingerprint = fp
	} else if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency entry"))
		return
	}

	switch {
	case entry.Fingerprint != fp:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with a different request body"))
	case entry.Pending:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "a request with this idempotency key is still in progress"))
	default:
		if entry.ContentType != "" {
			w.Header().Set("Content-Type", entry.ContentType)
		}
		w.Header().Set("Idempotent-Replayed", "true")
		w.WriteHeader(entry.Status)
		_, _ = w.Write(entry.Body)
	}
}

func isReplayable(method, path string) bool {
	for _, route := range replayable {
		if route.method == method && route.match(path) {
			return true
		}
	}
	return false
}

func fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// trimmedPath is used instead of the chi route pattern because router-level
// middleware runs before the sub-route resolves.
func trimmedPath(r *http.Request) string {
	p := r.URL.Path
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

func equals(want string) func(string) bool {
	return func(p string) bool { return p == want }
}

func wraps(prefix, suffix string) func(string) bool {
	return func(p string) bool {
		return len(p) > len(prefix)+len(suffix) && strings.HasPrefix(p, prefix) && strings.HasSuffix(p, suffix)
	}
}

type bodyCapture struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (c *bodyCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *bodyCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.buf.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *bodyCapture) code() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
