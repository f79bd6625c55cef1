// Package claims carries the signed-in operator through a request context.
package claims

import (
	"context"
	"errors"
)

type Claims struct {
	Username string `json:"username"`
	Token    string `json:"token,omitempty"`
}

type ctxKey int

const claimsKey ctxKey = 1

var ErrMissing = errors.New("claim value missing from context")

func Set(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func Get(ctx context.Context) (Claims, error) {
	v, ok := ctx.Value(claimsKey).(Claims)
	if !ok {
		return Claims{}, ErrMissing
	}
	return v, nil
}
