package middleware

import (
	"context"
	"net/http"

	"github.com/irsalhamdi/cart-admin/api/web"
	"github.com/irsalhamdi/cart-admin/api/weberr"
	"github.com/sirupsen/logrus"
)

// Errors renders handler errors as {"error": ...} bodies. Errors carrying a
// response keep their status; anything else becomes a bare 500.
func Errors(log logrus.FieldLogger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			err := handler(ctx, w, r)
			if err == nil {
				return nil
			}

			fields := logrus.Fields{
				"req_id":  ContextRequestID(ctx),
				"message": err,
			}
			if f, ok := weberr.Fields(err); ok {
				for k, v := range f {
					fields[k] = v
				}
			}

			body, code, ok := weberr.Response(err)
			if !ok {
				code = http.StatusInternalServerError
				body = weberr.ErrorResponse{Error: http.StatusText(code)}
			}
			fields["statuscode"] = code

			if code >= http.StatusInternalServerError {
				log.WithFields(fields).Error("ERROR")
			} else {
				log.WithFields(fields).Warn("request rejected")
			}

			return web.Respond(ctx, w, body, code)
		}
		return h
	}
	return m
}
