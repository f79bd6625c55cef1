package cart

import (
	"context"
	"sync"

	"github.com/irsalhamdi/cart-admin/core/product"
	"golang.org/x/sync/singleflight"
)

// lookup resolves products for the lifetime of one listing. It starts from
// a snapshot of the catalog and fetches the ids missing from it, sharing one
// fetch among concurrent callers asking for the same id. Successful fetches
// are remembered; failures are not, so each cart gets its own attempt.
//
// Shared fetches run under the listing's context rather than the caller's:
// a cart whose lookups are cancelled after a sibling line failed must not
// fail the other carts waiting on the same id.
type lookup struct {
	ctx   context.Context
	src   product.Source
	group singleflight.Group

	mu    sync.RWMutex
	known map[string]product.Product
}

func newLookup(ctx context.Context, src product.Source, snapshot []product.Product) *lookup {
	known := make(map[string]product.Product, len(snapshot))
	for _, p := range snapshot {
		known[p.ID] = p
	}
	return &lookup{ctx: ctx, src: src, known: known}
}

func (l *lookup) resolve(ctx context.Context, id string) (product.Product, error) {
	l.mu.RLock()
	p, ok := l.known[id]
	l.mu.RUnlock()
	if ok {
		return p, nil
	}

	ch := l.group.DoChan(id, func() (any, error) {
		p, err := product.Fetch(l.ctx, l.src, id)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.known[id] = p
		l.mu.Unlock()
		return p, nil
	})

	select {
	case <-ctx.Done():
		return product.Product{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return product.Product{}, res.Err
		}
		return res.Val.(product.Product), nil
	}
}

// fetchEach is the resolver for single cart reads: every line goes to the
// catalog on its own.
func fetchEach(src product.Source) Resolver {
	return func(ctx context.Context, id string) (product.Product, error) {
		return product.Fetch(ctx, src, id)
	}
}
