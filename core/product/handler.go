package product

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/cart-admin/api/web"
	"github.com/irsalhamdi/cart-admin/api/weberr"
	"github.com/irsalhamdi/cart-admin/core/catalog"
	"github.com/irsalhamdi/cart-admin/validate"
	"github.com/sirupsen/logrus"
)

type Source interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
}

// Fetch reads one product from the catalog and normalizes it.
func Fetch(ctx context.Context, src Source, id string) (Product, error) {
	raw, err := src.GetProduct(ctx, id)
	if err != nil {
		return Product{}, fmt.Errorf("fetching product[%s]: %w", id, err)
	}

	p, err := Normalize(raw)
	if err != nil {
		return Product{}, fmt.Errorf("product[%s]: %w", id, err)
	}
	return p, nil
}

// List reads the whole catalog. Records that cannot be normalized are logged
// and left out.
func List(ctx context.Context, src Source, log logrus.FieldLogger) ([]Product, error) {
	raws, err := src.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	ps := make([]Product, 0, len(raws))
	for i, raw := range raws {
		p, err := Normalize(raw)
		if err != nil {
			log.WithFields(logrus.Fields{"index": i, "message": err}).Warn("dropping product")
			continue
		}
		ps = append(ps, p)
	}
	return ps, nil
}

func HandleList(src Source, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ps, err := List(ctx, src, log)
		if err != nil {
			return upstreamError(err, "Failed to fetch products")
		}

		return web.Respond(ctx, w, ps, http.StatusOK)
	}
}

func HandleShow(src Source) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		p, err := Fetch(ctx, src, id)
		if err != nil {
			return upstreamError(err, fmt.Sprintf("Failed to fetch product with ID %s", id))
		}

		return web.Respond(ctx, w, p, http.StatusOK)
	}
}

// upstreamError mirrors the catalog's status when it answered, and falls
// back to a 500 otherwise.
func upstreamError(err error, msg string) error {
	var se *catalog.StatusError
	if errors.As(err, &se) {
		return weberr.Mirror(err, fmt.Sprintf("%s: %s", msg, http.StatusText(se.StatusCode)), se.StatusCode)
	}
	return weberr.InternalError(err, msg)
}
