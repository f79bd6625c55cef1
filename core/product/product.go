package product

import "github.com/irsalhamdi/cart-admin/core/catalog"

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image,omitempty"`
}

// Normalize turns a catalog product record into a Product. The id becomes
// its decimal string form and the title becomes the name.
func Normalize(raw catalog.Product) (Product, error) {
	if raw.ID == nil {
		return Product{}, &catalog.NormalizationError{Record: "product", Field: "id"}
	}
	if raw.Title == nil {
		return Product{}, &catalog.NormalizationError{Record: "product", Field: "title"}
	}

	return Product{
		ID:          raw.ID.String(),
		Name:        *raw.Title,
		Price:       raw.Price,
		Description: raw.Description,
		Image:       raw.Image,
	}, nil
}
