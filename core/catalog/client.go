package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/irsalhamdi/cart-admin/api/middleware"
)

const maxBody = 4 << 20

type Client struct {
	base *url.URL
	http *http.Client
}

// New builds a client for the catalog rooted at baseURL. A nil httpClient
// means http.DefaultClient.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing catalog url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("catalog url %q must be absolute", baseURL)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{base: u, http: httpClient}, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var ps []Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &ps); err != nil {
		return nil, err
	}
	return ps, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, &p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (c *Client) ListCarts(ctx context.Context) ([]Cart, error) {
	var cs []Cart
	if err := c.do(ctx, http.MethodGet, "/carts", nil, &cs); err != nil {
		return nil, err
	}
	return cs, nil
}

func (c *Client) GetCart(ctx context.Context, id string) (Cart, error) {
	var ct Cart
	if err := c.do(ctx, http.MethodGet, "/carts/"+url.PathEscape(id), nil, &ct); err != nil {
		return Cart{}, err
	}
	return ct, nil
}

func (c *Client) CreateCart(ctx context.Context, nc CartNew) (Cart, error) {
	var ct Cart
	if err := c.do(ctx, http.MethodPost, "/carts", nc, &ct); err != nil {
		return Cart{}, err
	}
	return ct, nil
}

func (c *Client) UpdateCart(ctx context.Context, id string, nc CartNew) (Cart, error) {
	var ct Cart
	if err := c.do(ctx, http.MethodPut, "/carts/"+url.PathEscape(id), nc, &ct); err != nil {
		return Cart{}, err
	}
	return ct, nil
}

func (c *Client) DeleteCart(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/carts/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Login(ctx context.Context, cred Credentials) (Token, error) {
	var t Token
	if err := c.do(ctx, http.MethodPost, "/auth/login", cred, &t); err != nil {
		return Token{}, err
	}
	return t, nil
}

// do issues one request. A nil out discards the response body. Failures are
// reported once and never retried.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	u := *c.base
	u.Path = c.base.Path + path

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if rid := middleware.ContextRequestID(ctx); rid != "" {
		req.Header.Set(middleware.RequestIDHeader, rid)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling catalog %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("reading catalog %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    upstreamMessage(raw),
		}
	}

	if out == nil {
		return nil
	}

	// The catalog answers some unknown ids with 200 and an empty body.
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: http.StatusNotFound,
			Status:     "404 " + http.StatusText(http.StatusNotFound),
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding catalog %s %s: %w", method, path, err)
	}

	return nil
}

// upstreamMessage pulls a human readable reason out of an error body, which
// the catalog sends either as {"message": ...}, {"error": ...} or plain text.
func upstreamMessage(raw []byte) string {
	var m struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		s := strings.TrimSpace(string(raw))
		if len(s) > 200 {
			s = s[:200]
		}
		return s
	}

	if m.Message != "" {
		return m.Message
	}
	return m.Error
}
