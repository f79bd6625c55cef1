package cart

import (
	"context"
	"fmt"
	"strconv"

	"github.com/irsalhamdi/cart-admin/core/catalog"
	"github.com/irsalhamdi/cart-admin/core/product"
	"golang.org/x/sync/errgroup"
)

// Resolver looks a product up by id. It may go to the network.
type Resolver func(ctx context.Context, productID string) (product.Product, error)

// Normalize converts a catalog cart into a Cart, resolving every line's
// product concurrently. The first failing line fails the whole cart and
// cancels the lookups still in flight; no partial cart is returned.
func Normalize(ctx context.Context, raw catalog.Cart, resolve Resolver) (Cart, error) {
	if raw.ID == nil {
		return Cart{}, &catalog.NormalizationError{Record: "cart", Field: "id"}
	}
	cartID := raw.ID.String()

	for i, ln := range raw.Products {
		if ln.Quantity < 1 {
			return Cart{}, &catalog.NormalizationError{
				Record: "cart " + cartID,
				Field:  fmt.Sprintf("products[%d].quantity", i),
				Reason: fmt.Sprintf("is %d, want at least 1", ln.Quantity),
			}
		}
	}

	items := make([]Item, len(raw.Products))
	ids := newLineIDs(cartID)

	g, gctx := errgroup.WithContext(ctx)
	for i, ln := range raw.Products {
		pid := strconv.Itoa(ln.ProductID)
		items[i] = Item{
			ID:        ids.next(pid, i),
			ProductID: pid,
			Quantity:  ln.Quantity,
		}

		g.Go(func() error {
			p, err := resolve(gctx, pid)
			if err != nil {
				return fmt.Errorf("resolving product[%s]: %w", pid, err)
			}
			if p.ID != pid {
				return &catalog.NormalizationError{
					Record: "cart " + cartID,
					Field:  "product " + pid,
					Reason: fmt.Sprintf("resolved to product %q", p.ID),
				}
			}
			items[i].Product = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Cart{}, err
	}

	return Cart{
		ID:          cartID,
		Items:       items,
		CreatedAt:   raw.Date,
		TotalAmount: ComputeTotal(items),
	}, nil
}

// fromSubmitted builds the cart returned after a create or update. Lines
// echo what the caller submitted rather than what the catalog stored.
func fromSubmitted(raw catalog.Cart, submitted []ItemNew, fallbackDate string) (Cart, error) {
	if raw.ID == nil {
		return Cart{}, &catalog.NormalizationError{Record: "cart", Field: "id"}
	}
	cartID := raw.ID.String()

	createdAt := raw.Date
	if createdAt == "" {
		createdAt = fallbackDate
	}

	ids := newLineIDs(cartID)
	items := make([]Item, len(submitted))
	for i, in := range submitted {
		p := in.Product
		if p.ID == "" {
			p.ID = in.ProductID
		}
		items[i] = Item{
			ID:        ids.next(in.ProductID, i),
			ProductID: in.ProductID,
			Product:   p,
			Quantity:  in.Quantity,
		}
	}

	return Cart{
		ID:          cartID,
		Items:       items,
		CreatedAt:   createdAt,
		TotalAmount: ComputeTotal(items),
	}, nil
}

// lineIDs hands out ci-<cart>-<product> ids, using the line's position when
// the product id is unknown or already taken in this cart.
type lineIDs struct {
	cartID string
	seen   map[string]bool
}

func newLineIDs(cartID string) *lineIDs {
	return &lineIDs{cartID: cartID, seen: make(map[string]bool)}
}

func (l *lineIDs) next(productID string, index int) string {
	id := fmt.Sprintf("ci-%s-%s", l.cartID, productID)
	switch {
	case productID == "":
		id = fmt.Sprintf("ci-%s-%d", l.cartID, index)
	case l.seen[id]:
		id = fmt.Sprintf("ci-%s-%s-%d", l.cartID, productID, index)
	}
	l.seen[id] = true
	return id
}
