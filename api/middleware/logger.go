package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/irsalhamdi/cart-admin/api/web"
	"github.com/sirupsen/logrus"
	"github.com/zenazn/goji/web/mutil"
)

// Logger writes one line when a request arrives and one when it is served.
// Cart listings are driven by the query string, so it is logged with the path.
func Logger(log logrus.FieldLogger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			entry := log.WithFields(logrus.Fields{
				"req_id":     ContextRequestID(ctx),
				"method":     r.Method,
				"path":       r.URL.Path,
				"remoteaddr": r.RemoteAddr,
			})
			if q := r.URL.RawQuery; q != "" {
				entry = entry.WithField("query", q)
			}
			entry.Debug("started")

			start := time.Now()
			lw := mutil.WrapWriter(w)
			err := handler(ctx, lw, r)

			status := lw.Status()
			if status == 0 {
				status = http.StatusOK
			}
			done := entry.WithFields(logrus.Fields{
				"statuscode": status,
				"bytes":      lw.BytesWritten(),
				"took":       time.Since(start).String(),
			})
			if status >= http.StatusInternalServerError {
				done.Warn("completed")
			} else {
				done.Info("completed")
			}
			return err
		}
		return h
	}
	return m
}
