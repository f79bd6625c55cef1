package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/irsalhamdi/cart-admin/core/catalog"
	"github.com/irsalhamdi/cart-admin/core/product"
	"github.com/irsalhamdi/cart-admin/validate"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

// isoMillis is the timestamp layout the catalog stores cart dates in.
const isoMillis = "2006-01-02T15:04:05.000Z"

var (
	ErrNoItems      = errors.New("cart needs at least one item")
	ErrInvalidItems = errors.New("invalid cart item")
)

// Catalog is what Service needs from the external catalog.
type Catalog interface {
	product.Source
	ListCarts(ctx context.Context) ([]catalog.Cart, error)
	GetCart(ctx context.Context, id string) (catalog.Cart, error)
	CreateCart(ctx context.Context, nc catalog.CartNew) (catalog.Cart, error)
	UpdateCart(ctx context.Context, id string, nc catalog.CartNew) (catalog.Cart, error)
	DeleteCart(ctx context.Context, id string) error
}

// Service runs cart operations against the catalog. Every error it returns
// is an *OperationError.
type Service struct {
	catalog Catalog
	log     logrus.FieldLogger
	fanOut  int
	now     func() time.Time
}

type Option func(*Service)

// WithFanOut bounds how many carts a listing normalizes at once. Zero or
// less means no bound.
func WithFanOut(n int) Option {
	return func(s *Service) {
		if n <= 0 {
			n = -1
		}
		s.fanOut = n
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(c Catalog, log logrus.FieldLogger, opts ...Option) *Service {
	s := &Service{
		catalog: c,
		log:     log,
		fanOut:  -1,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every cart that could be normalized. A cart whose products
// cannot be resolved is logged and left out; only a failure to read the
// cart collection itself fails the call.
//
// Get fails on the very condition List skips. Whether listing should fail
// fast too, or a single read should degrade, is still undecided; the two
// policies are kept apart on purpose until it is.
func (s *Service) List(ctx context.Context) (carts []Cart, err error) {
	ctx, end := s.trace(ctx, OpList, "")
	defer func() { end(err) }()

	raws, err := s.catalog.ListCarts(ctx)
	if err != nil {
		return nil, &OperationError{Op: OpList, Err: err}
	}

	snapshot, err := product.List(ctx, s.catalog, s.log)
	if err != nil {
		s.log.WithField("message", err).Warn("product snapshot unavailable, resolving products one by one")
	}
	lk := newLookup(ctx, s.catalog, snapshot)

	slots := make([]*Cart, len(raws))

	var g errgroup.Group
	g.SetLimit(s.fanOut)
	for i, raw := range raws {
		g.Go(func() error {
			c, err := Normalize(ctx, raw, lk.resolve)
			if err != nil {
				s.log.WithFields(logrus.Fields{
					"cart_id": rawID(raw),
					"message": err,
				}).Warn("dropping cart from listing")
				return nil
			}
			slots[i] = &c
			return nil
		})
	}
	_ = g.Wait()

	// A cancelled request drops every cart; report that instead of an empty list.
	if err := ctx.Err(); err != nil {
		return nil, &OperationError{Op: OpList, Err: err}
	}

	carts = make([]Cart, 0, len(slots))
	for _, c := range slots {
		if c != nil {
			carts = append(carts, *c)
		}
	}
	return carts, nil
}

// Get reads one cart. Any line whose product cannot be resolved fails the
// whole read.
func (s *Service) Get(ctx context.Context, id string) (c Cart, err error) {
	ctx, end := s.trace(ctx, OpGet, id)
	defer func() { end(err) }()

	raw, err := s.catalog.GetCart(ctx, id)
	if err != nil {
		return Cart{}, &OperationError{Op: OpGet, CartID: id, Err: err}
	}

	c, err = Normalize(ctx, raw, fetchEach(s.catalog))
	if err != nil {
		return Cart{}, &OperationError{Op: OpGet, CartID: id, Err: fmt.Errorf("normalizing: %w", err)}
	}
	return c, nil
}

// Create stores a new cart for userID. The returned cart's lines carry the
// submitted products, not the catalog's copies.
func (s *Service) Create(ctx context.Context, userID int, items []ItemNew) (c Cart, err error) {
	ctx, end := s.trace(ctx, OpCreate, "")
	defer func() { end(err) }()

	nc, err := s.payload(userID, items)
	if err != nil {
		return Cart{}, &OperationError{Op: OpCreate, Err: err}
	}

	raw, err := s.catalog.CreateCart(ctx, nc)
	if err != nil {
		return Cart{}, &OperationError{Op: OpCreate, Err: err}
	}

	c, err = fromSubmitted(raw, items, nc.Date)
	if err != nil {
		return Cart{}, &OperationError{Op: OpCreate, Err: fmt.Errorf("normalizing: %w", err)}
	}
	return c, nil
}

// Update replaces the lines of cart id, echoing the submitted products the
// same way Create does.
func (s *Service) Update(ctx context.Context, id string, userID int, items []ItemNew) (c Cart, err error) {
	ctx, end := s.trace(ctx, OpUpdate, id)
	defer func() { end(err) }()

	nc, err := s.payload(userID, items)
	if err != nil {
		return Cart{}, &OperationError{Op: OpUpdate, CartID: id, Err: err}
	}

	raw, err := s.catalog.UpdateCart(ctx, id, nc)
	if err != nil {
		return Cart{}, &OperationError{Op: OpUpdate, CartID: id, Err: err}
	}

	if raw.ID == nil {
		if n, perr := parseID(id); perr == nil {
			raw.ID = &n
		}
	}

	c, err = fromSubmitted(raw, items, nc.Date)
	if err != nil {
		return Cart{}, &OperationError{Op: OpUpdate, CartID: id, Err: fmt.Errorf("normalizing: %w", err)}
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id string) (err error) {
	ctx, end := s.trace(ctx, OpDelete, id)
	defer func() { end(err) }()

	if err := s.catalog.DeleteCart(ctx, id); err != nil {
		return &OperationError{Op: OpDelete, CartID: id, Err: err}
	}
	return nil
}

// payload translates submitted lines into the catalog's cart body, dated now.
func (s *Service) payload(userID int, items []ItemNew) (catalog.CartNew, error) {
	if len(items) == 0 {
		return catalog.CartNew{}, ErrNoItems
	}

	lines := make([]catalog.CartLine, len(items))
	for i, it := range items {
		pid, err := parseID(it.ProductID)
		if err != nil {
			return catalog.CartNew{}, fmt.Errorf("%w: items[%d]: product id %q is not a catalog id", ErrInvalidItems, i, it.ProductID)
		}
		if it.Product.ID != "" && it.Product.ID != it.ProductID {
			return catalog.CartNew{}, fmt.Errorf("%w: items[%d]: product %q does not match product id %q", ErrInvalidItems, i, it.Product.ID, it.ProductID)
		}
		if it.Quantity < 1 {
			return catalog.CartNew{}, fmt.Errorf("%w: items[%d]: quantity must be at least 1", ErrInvalidItems, i)
		}
		lines[i] = catalog.CartLine{ProductID: int(pid), Quantity: it.Quantity}
	}

	return catalog.CartNew{
		UserID:   userID,
		Date:     s.now().UTC().Format(isoMillis),
		Products: lines,
	}, nil
}

func (s *Service) trace(ctx context.Context, op Op, id string) (context.Context, func(error)) {
	ctx, span := otel.Tracer("github.com/irsalhamdi/cart-admin/core/cart").Start(ctx, "cart."+string(op))
	if id != "" {
		span.SetAttributes(attribute.String("cart.id", id))
	}

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

func parseID(s string) (catalog.ID, error) {
	if err := validate.CheckID(s); err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	return catalog.ID(n), err
}

func rawID(raw catalog.Cart) string {
	if raw.ID == nil {
		return ""
	}
	return raw.ID.String()
}
