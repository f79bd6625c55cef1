package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/cart-admin/api"
	"github.com/irsalhamdi/cart-admin/core/auth"
	"github.com/irsalhamdi/cart-admin/core/cart"
	"github.com/irsalhamdi/cart-admin/core/catalog"
	"github.com/sirupsen/logrus"
)

const (
	operatorName = "admin123"
	operatorPass = "12345678"
)

// now is the clock every test env runs on.
var now = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

type TestEnv struct {
	*httptest.Server
	Catalog *mockCatalog
	Tokens  *auth.Tokens
}

type envOption func(*api.APIConfig)

func NewTestEnv(t *testing.T, opts ...envOption) (*TestEnv, error) {
	mc := newMockCatalog()
	upstream := httptest.NewServer(mc.handle())
	t.Cleanup(upstream.Close)

	cat, err := catalog.New(upstream.URL, upstream.Client())
	if err != nil {
		return nil, fmt.Errorf("building catalog client: %w", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	op, err := auth.NewOperator(operatorName, operatorPass, 8)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokens("test secret", time.Hour)
	if err != nil {
		return nil, err
	}

	clock := func() time.Time { return now }

	cfg := api.APIConfig{
		Log:      log,
		Session:  scs.New(),
		Products: cat,
		Remote:   cat,
		Carts:    cart.NewService(cat, log, cart.WithClock(clock)),
		Operator: op,
		Tokens:   tokens,
		UserID:   1,
		Now:      clock,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	srv := httptest.NewServer(api.APIMux(cfg))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	srv.Client().Jar = jar

	return &TestEnv{Server: srv, Catalog: mc, Tokens: tokens}, nil
}

// Do sends body as JSON and returns the response with its body read.
func (env *TestEnv) Do(t *testing.T, method, path string, body any, header ...string) (*http.Response, []byte) {
	t.Helper()

	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewBuffer(raw)
	}

	r, err := http.NewRequest(method, env.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	if rd != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		r.Header.Set(header[i], header[i+1])
	}

	w, err := env.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	b, err := io.ReadAll(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	return w, b
}

func decode(t *testing.T, b []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatalf("cannot unmarshal %s: %v", b, err)
	}
}

func expectStatus(t *testing.T, w *http.Response, b []byte, status int) {
	t.Helper()
	if w.StatusCode != status {
		t.Fatalf("%s %s: status %s, want %d: %s", w.Request.Method, w.Request.URL.Path, w.Status, status, b)
	}
}

func expectError(t *testing.T, w *http.Response, b []byte, status int, msg string) {
	t.Helper()
	expectStatus(t, w, b, status)

	var e struct {
		Error string `json:"error"`
	}
	decode(t, b, &e)
	if e.Error != msg {
		t.Fatalf("%s %s: error %q, want %q", w.Request.Method, w.Request.URL.Path, e.Error, msg)
	}
}

func Login(env *TestEnv, username, password string) error {
	w, b := env.do(http.MethodPost, "/auth", map[string]string{"username": username, "password": password})
	if w == nil {
		return fmt.Errorf("login: %s", b)
	}
	if w.StatusCode != http.StatusOK {
		return fmt.Errorf("login: status %s: %s", w.Status, b)
	}
	return nil
}

func Logout(env *TestEnv) error {
	w, b := env.do(http.MethodPost, "/logout", nil)
	if w == nil {
		return fmt.Errorf("logout: %s", b)
	}
	if w.StatusCode != http.StatusNoContent {
		return fmt.Errorf("logout: status %s", w.Status)
	}
	return nil
}

// do is Do for helpers that report errors instead of failing the test.
func (env *TestEnv) do(method, path string, body any) (*http.Response, []byte) {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, []byte(err.Error())
		}
		rd = bytes.NewBuffer(raw)
	}

	r, err := http.NewRequest(method, env.URL+path, rd)
	if err != nil {
		return nil, []byte(err.Error())
	}

	w, err := env.Client().Do(r)
	if err != nil {
		return nil, []byte(err.Error())
	}
	defer w.Body.Close()

	b, _ := io.ReadAll(w.Body)
	return w, b
}
