package api

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/irsalhamdi/cart-admin/api/middleware"
	"github.com/irsalhamdi/cart-admin/api/web"
	"github.com/irsalhamdi/cart-admin/core/auth"
	"github.com/irsalhamdi/cart-admin/core/cart"
	"github.com/irsalhamdi/cart-admin/core/product"
	"github.com/irsalhamdi/cart-admin/rate"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	Log      logrus.FieldLogger
	Session  *scs.SessionManager
	Products product.Source
	Remote   auth.Remote
	Carts    *cart.Service
	Operator *auth.Operator
	Tokens   *auth.Tokens
	// Limiter throttles the sign-in routes; nil leaves them unthrottled.
	Limiter *rate.Limiter
	// AuthRequired closes the product and cart routes to anonymous callers.
	AuthRequired bool
	UserID       int
	Now          func() time.Time
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	a.mw = append(a.mw, auth.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	authen := auth.Authenticate(cfg.Session, cfg.Tokens)

	var limit web.Middleware
	if cfg.Limiter != nil {
		limit = middleware.RateLimit(cfg.Limiter)
	}

	var gate []web.Middleware
	if cfg.AuthRequired {
		gate = []web.Middleware{authen, auth.Required()}
	}

	a.Handle(http.MethodPost, "/auth", auth.HandleAuth(cfg.Session, cfg.Operator, cfg.Tokens), limit)
	a.Handle(http.MethodPost, "/login", auth.HandleLogin(cfg.Session, cfg.Remote), limit)
	a.Handle(http.MethodGet, "/session", auth.HandleSession(), authen)
	a.Handle(http.MethodPost, "/logout", auth.HandleLogout(cfg.Session))

	a.Handle(http.MethodGet, "/test", handleTest(now))

	a.Handle(http.MethodGet, "/products", product.HandleList(cfg.Products, cfg.Log), gate...)
	a.Handle(http.MethodGet, "/products/{id}", product.HandleShow(cfg.Products), gate...)

	a.Handle(http.MethodGet, "/carts/table", cart.HandleTable(cfg.Carts, now), gate...)
	a.Handle(http.MethodGet, "/carts/{id}", cart.HandleShow(cfg.Carts), gate...)
	a.Handle(http.MethodGet, "/carts", cart.HandleList(cfg.Carts), gate...)
	a.Handle(http.MethodPost, "/carts", cart.HandleCreate(cfg.Carts, cfg.UserID), gate...)
	a.Handle(http.MethodPut, "/carts/{id}", cart.HandleUpdate(cfg.Carts, cfg.UserID), gate...)
	a.Handle(http.MethodDelete, "/carts/{id}", cart.HandleDelete(cfg.Carts), gate...)

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}

func handleTest(now func() time.Time) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.Respond(ctx, w, struct {
			Message   string    `json:"message"`
			Timestamp time.Time `json:"timestamp"`
		}{"Test endpoint working", now().UTC()}, http.StatusOK)
	}
}
