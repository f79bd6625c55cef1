package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/irsalhamdi/cart-admin/api/web"
	"github.com/irsalhamdi/cart-admin/api/weberr"
	"github.com/irsalhamdi/cart-admin/rate"
)

// RateLimit rejects callers that exceed lim, keyed by remote host.
func RateLimit(lim *rate.Limiter) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			if !lim.Check(host) {
				err := errors.New("too many requests, try again later")
				return weberr.NewError(err, err.Error(), http.StatusTooManyRequests,
					weberr.WithFields(map[string]any{"client": host}))
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
