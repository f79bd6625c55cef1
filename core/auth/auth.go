// Package auth signs the dashboard operator in and out. Two flows exist:
// /auth checks the configured operator credentials and issues a local
// token, /login hands the credentials to the catalog and keeps its token.
// Either way the user ends up in the scs session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/cart-admin/api/web"
	"github.com/irsalhamdi/cart-admin/api/weberr"
	"github.com/irsalhamdi/cart-admin/core/catalog"
	"github.com/irsalhamdi/cart-admin/core/claims"
	"github.com/irsalhamdi/cart-admin/validate"
	"golang.org/x/crypto/bcrypt"
)

const (
	usernameKey = "username"
	tokenKey    = "token"
)

var ErrBadCredentials = errors.New("invalid username or password")

// Operator is the single set of credentials /auth accepts.
type Operator struct {
	username string
	hash     []byte
	minLen   int
}

func NewOperator(username, password string, minPasswordLength int) (*Operator, error) {
	if username == "" {
		return nil, errors.New("operator username must not be empty")
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("operator password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing operator password: %w", err)
	}

	return &Operator{username: username, hash: hash, minLen: minPasswordLength}, nil
}

func (o *Operator) Match(username, password string) bool {
	err := bcrypt.CompareHashAndPassword(o.hash, []byte(password))
	return err == nil && username == o.username
}

// Remote is the catalog's login endpoint.
type Remote interface {
	Login(ctx context.Context, cr catalog.Credentials) (catalog.Token, error)
}

type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Session struct {
	User  claims.Claims `json:"user"`
	Token string        `json:"token"`
}

// HandleAuth checks the body against the configured operator.
func HandleAuth(session *scs.SessionManager, op *Operator, tokens *Tokens) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var cr Credentials
		if err := web.Decode(w, r, &cr); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(cr); err != nil {
			return weberr.BadRequest(err)
		}

		if len(cr.Password) < op.minLen {
			return weberr.BadRequest(fmt.Errorf("password must be at least %d characters", op.minLen))
		}

		if !op.Match(cr.Username, cr.Password) {
			return weberr.NotAuthorized(ErrBadCredentials, weberr.WithFields(map[string]any{"username": cr.Username}))
		}

		token, err := tokens.Issue(cr.Username)
		if err != nil {
			return weberr.InternalError(err, "")
		}

		if err := signIn(ctx, session, cr.Username, token); err != nil {
			return weberr.InternalError(err, "")
		}

		return web.Respond(ctx, w, Session{User: claims.Claims{Username: cr.Username}, Token: token}, http.StatusOK)
	}
}

// HandleLogin forwards the body to the catalog and keeps the token it
// answers with.
func HandleLogin(session *scs.SessionManager, remote Remote) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var cr Credentials
		if err := web.Decode(w, r, &cr); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(cr); err != nil {
			return weberr.BadRequest(err)
		}

		tok, err := remote.Login(ctx, catalog.Credentials{Username: cr.Username, Password: cr.Password})
		if err != nil {
			var se *catalog.StatusError
			if errors.As(err, &se) {
				msg := se.Message
				if msg == "" {
					msg = "Authentication failed"
				}
				return weberr.Mirror(err, msg, se.StatusCode)
			}
			return weberr.InternalError(err, "Authentication failed")
		}

		if tok.Token == "" {
			return weberr.InternalError(errors.New("catalog answered without a token"), "Authentication failed")
		}

		if err := signIn(ctx, session, cr.Username, tok.Token); err != nil {
			return weberr.InternalError(err, "")
		}

		user := claims.Claims{Username: cr.Username, Token: tok.Token}
		return web.Respond(ctx, w, Session{User: user, Token: tok.Token}, http.StatusOK)
	}
}

// HandleSession answers with the signed-in user. It expects Authenticate
// to have run.
func HandleSession() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		c, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("no active session"))
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleLogout(session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := session.Destroy(ctx); err != nil {
			return weberr.InternalError(err, "")
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func signIn(ctx context.Context, session *scs.SessionManager, username, token string) error {
	if err := session.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}
	session.Put(ctx, usernameKey, username)
	session.Put(ctx, tokenKey, token)
	return nil
}

func sessionUser(ctx context.Context, session *scs.SessionManager) (claims.Claims, bool) {
	username := session.GetString(ctx, usernameKey)
	if username == "" {
		return claims.Claims{}, false
	}
	return claims.Claims{Username: username, Token: session.GetString(ctx, tokenKey)}, true
}
