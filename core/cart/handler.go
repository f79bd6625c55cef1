package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/irsalhamdi/cart-admin/api/web"
	"github.com/irsalhamdi/cart-admin/api/weberr"
	"github.com/irsalhamdi/cart-admin/core/catalog"
	"github.com/irsalhamdi/cart-admin/core/product"
	"github.com/irsalhamdi/cart-admin/validate"
)

const unknownProduct = "Unknown Product"

// flexID accepts an id sent either as a JSON string or a JSON number.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id %s is neither a string nor a number", b)
	}
	*f = flexID(n.String())
	return nil
}

type ItemRequest struct {
	ProductID   flexID           `json:"productId"`
	Product     *product.Product `json:"product"`
	Quantity    int              `json:"quantity" validate:"gte=0"`
	Title       string           `json:"title"`
	Price       float64          `json:"price" validate:"gte=0"`
	Description string           `json:"description"`
	Image       string           `json:"image"`
}

type CreateRequest struct {
	Items  []ItemRequest `json:"items" validate:"required,min=1,dive"`
	UserID int           `json:"userId" validate:"gte=0"`
}

type ProductLine struct {
	ID          flexID  `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price" validate:"gte=0"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
}

type UpdateRequest struct {
	Products []ProductLine `json:"products" validate:"required,min=1,dive"`
	UserID   int           `json:"userId" validate:"gte=0"`
}

// itemNew applies the dashboard's defaults: a missing product id is taken
// from the embedded product, a zero quantity means one, and a missing
// product is assembled from the flat fields.
func (it ItemRequest) itemNew() ItemNew {
	pid := string(it.ProductID)
	if pid == "" && it.Product != nil {
		pid = it.Product.ID
	}

	qty := it.Quantity
	if qty == 0 {
		qty = 1
	}

	var p product.Product
	if it.Product != nil {
		p = *it.Product
	} else {
		p = product.Product{
			ID:          pid,
			Name:        it.Title,
			Price:       it.Price,
			Description: it.Description,
			Image:       it.Image,
		}
		if p.Name == "" {
			p.Name = unknownProduct
		}
	}

	return ItemNew{ProductID: pid, Product: p, Quantity: qty}
}

func (pl ProductLine) itemNew() ItemNew {
	qty := pl.Quantity
	if qty == 0 {
		qty = 1
	}

	name := pl.Title
	if name == "" {
		name = unknownProduct
	}

	return ItemNew{
		ProductID: string(pl.ID),
		Product: product.Product{
			ID:          string(pl.ID),
			Name:        name,
			Price:       pl.Price,
			Description: pl.Description,
			Image:       pl.Image,
		},
		Quantity: qty,
	}
}

// HandleList answers with the carts as an array. The optional start and end
// query values filter by creation date, page and pageSize select a window;
// X-Total-Count carries the number of carts that passed the filter.
func HandleList(svc *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		q, paged, err := parseQuery(r, 0)
		if err != nil {
			return weberr.BadRequest(err)
		}

		carts, err := svc.List(ctx)
		if err != nil {
			return operationError(err, "Failed to fetch carts")
		}

		carts = FilterByDateRange(carts, q.Start, q.End)
		w.Header().Set("X-Total-Count", strconv.Itoa(len(carts)))
		if paged {
			carts = Paginate(carts, q.Page, q.PageSize)
		}

		return web.Respond(ctx, w, carts, http.StatusOK)
	}
}

// HandleTable answers with one page of the dashboard's cart table.
func HandleTable(svc *Service, now func() time.Time) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		q, _, err := parseQuery(r, DefaultPageSize)
		if err != nil {
			return weberr.BadRequest(err)
		}
		if !slices.Contains(PageSizes, q.PageSize) {
			return weberr.BadRequest(fmt.Errorf("pageSize must be one of %v", PageSizes))
		}

		carts, err := svc.List(ctx)
		if err != nil {
			return operationError(err, "Failed to fetch carts")
		}

		return web.Respond(ctx, w, BuildTable(carts, q, now()), http.StatusOK)
	}
}

func HandleShow(svc *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		c, err := svc.Get(ctx, id)
		if err != nil {
			return operationError(err, "Failed to fetch cart")
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleCreate(svc *Service, defaultUserID int) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var req CreateRequest
		if err := web.Decode(w, r, &req); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(req); err != nil {
			return weberr.BadRequest(fmt.Errorf("invalid request: %w", err))
		}

		items := make([]ItemNew, len(req.Items))
		for i, it := range req.Items {
			items[i] = it.itemNew()
		}

		userID := req.UserID
		if userID == 0 {
			userID = defaultUserID
		}

		c, err := svc.Create(ctx, userID, items)
		if err != nil {
			return operationError(err, "Failed to create cart")
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleUpdate(svc *Service, defaultUserID int) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		var req UpdateRequest
		if err := web.Decode(w, r, &req); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(req); err != nil {
			return weberr.BadRequest(fmt.Errorf("invalid request: %w", err))
		}

		items := make([]ItemNew, len(req.Products))
		for i, pl := range req.Products {
			items[i] = pl.itemNew()
		}

		userID := req.UserID
		if userID == 0 {
			userID = defaultUserID
		}

		c, err := svc.Update(ctx, id, userID, items)
		if err != nil {
			return operationError(err, "Failed to update cart")
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleDelete(svc *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		if err := svc.Delete(ctx, id); err != nil {
			return operationError(err, "Failed to delete cart")
		}

		return web.Respond(ctx, w, struct {
			Success bool `json:"success"`
		}{true}, http.StatusOK)
	}
}

// parseQuery reads the filter and window of a cart listing. paged reports
// whether the caller asked for a window at all.
func parseQuery(r *http.Request, defPageSize int) (q Query, paged bool, err error) {
	if q.Start, err = web.QueryTime(r, "start"); err != nil {
		return Query{}, false, err
	}
	if q.End, err = web.QueryTime(r, "end"); err != nil {
		return Query{}, false, err
	}

	vals := r.URL.Query()
	paged = vals.Has("page") || vals.Has("pageSize")
	if paged && defPageSize == 0 {
		defPageSize = DefaultPageSize
	}

	if q.Page, err = web.QueryInt(r, "page", 0); err != nil {
		return Query{}, false, err
	}
	if q.PageSize, err = web.QueryInt(r, "pageSize", defPageSize); err != nil {
		return Query{}, false, err
	}
	if q.Page < 0 {
		return Query{}, false, errors.New("page must not be negative")
	}
	if paged && q.PageSize < 1 {
		return Query{}, false, errors.New("pageSize must be positive")
	}

	return q, paged, nil
}

// operationError maps a Service failure to a response. Rejected input is a
// 400; a catalog that answered the cart call itself has its status mirrored;
// everything else is a 500 carrying msg.
func operationError(err error, msg string) error {
	var oe *OperationError
	if !errors.As(err, &oe) {
		return weberr.InternalError(err, msg)
	}

	fields := weberr.WithFields(map[string]any{"op": oe.Op, "cart_id": oe.CartID})

	if errors.Is(oe.Err, ErrNoItems) || errors.Is(oe.Err, ErrInvalidItems) {
		return weberr.BadRequest(oe.Err, fields)
	}

	if se, ok := oe.Err.(*catalog.StatusError); ok {
		return weberr.Mirror(err, fmt.Sprintf("%s: %s", msg, http.StatusText(se.StatusCode)), se.StatusCode, fields)
	}

	return weberr.InternalError(err, msg, fields)
}
