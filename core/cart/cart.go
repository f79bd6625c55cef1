// Package cart joins catalog carts with product details, computes their
// totals, and filters and pages cart collections for the dashboard.
package cart

import (
	"fmt"

	"github.com/irsalhamdi/cart-admin/core/product"
)

type Cart struct {
	ID          string  `json:"id"`
	Items       []Item  `json:"items"`
	CreatedAt   string  `json:"createdAt"`
	TotalAmount float64 `json:"totalAmount"`
}

// Item is one line of a cart. Its ID only means something inside the cart.
type Item struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Product   product.Product `json:"product"`
	Quantity  int             `json:"quantity"`
}

// ItemNew is a line submitted for a create or update. Product is echoed back
// as submitted.
type ItemNew struct {
	ProductID string
	Product   product.Product
	Quantity  int
}

type Op string

const (
	OpList   Op = "list"
	OpGet    Op = "get"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// OperationError is the single error shape returned by Service. It keeps the
// operation that failed and the underlying cause.
type OperationError struct {
	Op     Op
	CartID string
	Err    error
}

func (e *OperationError) Error() string {
	if e.CartID == "" {
		return fmt.Sprintf("cart %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("cart %s[%s]: %v", e.Op, e.CartID, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }
