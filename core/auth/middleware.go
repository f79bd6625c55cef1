package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/cart-admin/api/web"
	"github.com/irsalhamdi/cart-admin/api/weberr"
	"github.com/irsalhamdi/cart-admin/core/claims"
)

// LoadAndSave runs the rest of the chain inside scs, which loads the session
// before and commits it after.
func LoadAndSave(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			var err error
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				err = handler(r.Context(), w, r)
			})

			session.LoadAndSave(next).ServeHTTP(w, r.WithContext(ctx))
			return err
		}
		return h
	}
	return m
}

// Authenticate puts the signed-in user into the context, taken from the
// session or else from a bearer token. A request with neither passes
// through untouched; a bad bearer token is rejected.
func Authenticate(session *scs.SessionManager, tokens *Tokens) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if c, ok := sessionUser(ctx, session); ok {
				return handler(claims.Set(ctx, c), w, r)
			}

			raw, ok := bearer(r)
			if !ok {
				return handler(ctx, w, r)
			}

			username, err := tokens.Parse(raw)
			if err != nil {
				return weberr.NotAuthorized(ErrInvalidToken, weberr.WithFields(map[string]any{"cause": err}))
			}

			return handler(claims.Set(ctx, claims.Claims{Username: username, Token: raw}), w, r)
		}
		return h
	}
	return m
}

// Required rejects requests Authenticate found no user for.
func Required() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if _, err := claims.Get(ctx); err != nil {
				return weberr.NotAuthorized(errors.New("authentication required"))
			}
			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
