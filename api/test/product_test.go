package test

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/cart-admin/core/product"
)

func TestProducts(t *testing.T) {
	env, err := NewTestEnv(t)
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	w, b := env.Do(t, http.MethodGet, "/products", nil)
	expectStatus(t, w, b, http.StatusOK)

	var ps []product.Product
	decode(t, b, &ps)

	// The record without a title is left out.
	want := []product.Product{
		{ID: "1", Name: "Shirt", Price: 10, Description: "cotton", Image: "shirt.png"},
		{ID: "2", Name: "Mug", Price: 5.5, Description: "ceramic", Image: "mug.png"},
		{ID: "3", Name: "Hat", Price: 20, Description: "wool", Image: "hat.png"},
	}
	if diff := cmp.Diff(want, ps); diff != "" {
		t.Fatalf("unexpected products (-want +got):\n%s", diff)
	}

	w, b = env.Do(t, http.MethodGet, "/products/2", nil)
	expectStatus(t, w, b, http.StatusOK)

	var p product.Product
	decode(t, b, &p)
	if diff := cmp.Diff(want[1], p); diff != "" {
		t.Fatalf("unexpected product (-want +got):\n%s", diff)
	}

	w, b = env.Do(t, http.MethodGet, "/products/99", nil)
	expectError(t, w, b, http.StatusNotFound, "Failed to fetch product with ID 99: Not Found")

	w, b = env.Do(t, http.MethodGet, "/products/4", nil)
	expectError(t, w, b, http.StatusInternalServerError, "Failed to fetch product with ID 4")

	w, b = env.Do(t, http.MethodGet, "/products/0", nil)
	expectError(t, w, b, http.StatusBadRequest, "ID is not in its proper form")
}
