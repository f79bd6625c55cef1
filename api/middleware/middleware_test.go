package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/irsalhamdi/cart-admin/api/web"
	"github.com/irsalhamdi/cart-admin/api/weberr"
	"github.com/irsalhamdi/cart-admin/rate"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func serve(t *testing.T, h web.Handler, r *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	if err := h(context.Background(), w, r); err != nil {
		t.Fatalf("error escaped the chain: %v", err)
	}
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var e weberr.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("cannot unmarshal %s: %v", w.Body.String(), err)
	}
	return e.Error
}

func TestErrors(t *testing.T) {
	log, hook := test.NewNullLogger()

	tests := []struct {
		name   string
		err    error
		status int
		msg    string
		level  logrus.Level
	}{
		{"bad request", weberr.BadRequest(errors.New("name is required")), http.StatusBadRequest, "name is required", logrus.WarnLevel},
		{"internal", weberr.InternalError(errors.New("boom"), "Failed to fetch carts"), http.StatusInternalServerError, "Failed to fetch carts", logrus.ErrorLevel},
		{"bare error", errors.New("boom"), http.StatusInternalServerError, "Internal Server Error", logrus.ErrorLevel},
		{"mirrored", weberr.Mirror(errors.New("boom"), "upstream", 302), http.StatusBadGateway, "upstream", logrus.ErrorLevel},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			hook.Reset()

			h := Errors(log)(func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				return weberr.Wrap(tc.err, weberr.WithFields(map[string]any{"cart_id": "7"}))
			})

			w := serve(t, h, httptest.NewRequest(http.MethodGet, "/carts/7", nil))
			if w.Code != tc.status {
				t.Fatalf("status %d, want %d", w.Code, tc.status)
			}
			if got := errorBody(t, w); got != tc.msg {
				t.Fatalf("error %q, want %q", got, tc.msg)
			}

			entry := hook.LastEntry()
			if entry == nil || entry.Level != tc.level || entry.Data["cart_id"] != "7" {
				t.Fatalf("unexpected log entry %+v", entry)
			}
		})
	}
}

func TestPanics(t *testing.T) {
	log, _ := test.NewNullLogger()

	h := Errors(log)(Panics()(func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		panic("nil map")
	}))

	w := serve(t, h, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		seen = ContextRequestID(ctx)
		return nil
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "abc")
	w := serve(t, h, r)
	if seen != "abc" || w.Header().Get(RequestIDHeader) != "abc" {
		t.Fatalf("request id %q, header %q", seen, w.Header().Get(RequestIDHeader))
	}

	serve(t, h, httptest.NewRequest(http.MethodGet, "/", nil))
	first := seen
	serve(t, h, httptest.NewRequest(http.MethodGet, "/", nil))
	if first == "" || first == seen {
		t.Fatalf("generated ids should be unique, got %q and %q", first, seen)
	}
}

func TestRateLimit(t *testing.T) {
	lim := rate.NewLimiter(1, time.Minute, rate.Every(time.Hour))
	defer lim.Stop()

	log := logrus.New()
	log.SetOutput(io.Discard)

	h := Errors(log)(RateLimit(lim)(func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}))

	r := httptest.NewRequest(http.MethodPost, "/auth", nil)
	if w := serve(t, h, r); w.Code != http.StatusNoContent {
		t.Fatalf("first call: status %d", w.Code)
	}

	w := serve(t, h, r)
	if w.Code != http.StatusTooManyRequests || errorBody(t, w) != "too many requests, try again later" {
		t.Fatalf("second call: status %d: %s", w.Code, w.Body)
	}

	other := httptest.NewRequest(http.MethodPost, "/auth", nil)
	other.RemoteAddr = "10.0.0.9:4000"
	if w := serve(t, h, other); w.Code != http.StatusNoContent {
		t.Fatalf("other client: status %d", w.Code)
	}
}
