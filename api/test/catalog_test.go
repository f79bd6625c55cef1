package test

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/irsalhamdi/cart-admin/api/middleware"
	"github.com/irsalhamdi/cart-admin/api/web"
	"github.com/irsalhamdi/cart-admin/core/catalog"
)

const (
	upstreamUser  = "mor_2314"
	upstreamPass  = "83r5^_"
	upstreamToken = "upstream-token"
)

// mockCatalog behaves like the public catalog: unknown ids are answered
// with 200 and an empty body.
type mockCatalog struct {
	mu sync.Mutex

	products []json.RawMessage
	carts    map[string]catalog.Cart

	// cartsStatus, when set, fails GET /carts with that status.
	cartsStatus int

	writes     []catalog.CartNew
	deleted    []string
	requestIDs []string
}

func newMockCatalog() *mockCatalog {
	m := &mockCatalog{
		products: []json.RawMessage{
			json.RawMessage(`{"id":1,"title":"Shirt","price":10,"description":"cotton","image":"shirt.png","category":"clothing","rating":{"rate":4.1,"count":120}}`),
			json.RawMessage(`{"id":2,"title":"Mug","price":5.5,"description":"ceramic","image":"mug.png","category":"home","rating":{"rate":3.9,"count":40}}`),
			json.RawMessage(`{"id":3,"title":"Hat","price":20,"description":"wool","image":"hat.png","category":"clothing","rating":{"rate":4.7,"count":12}}`),
			json.RawMessage(`{"id":4,"price":1,"description":"a record without a title"}`),
		},
		carts: make(map[string]catalog.Cart),
	}

	for _, c := range []catalog.Cart{
		{ID: cid(1), UserID: 1, Date: "2024-01-05T00:00:00.000Z", Products: []catalog.CartLine{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}}},
		{ID: cid(2), UserID: 2, Date: "2024-01-10T00:00:00.000Z", Products: []catalog.CartLine{{ProductID: 3, Quantity: 1}}},
		{ID: cid(3), UserID: 3, Date: "2024-01-01T00:00:00.000Z", Products: []catalog.CartLine{{ProductID: 1, Quantity: 1}, {ProductID: 99, Quantity: 1}}},
	} {
		m.carts[c.ID.String()] = c
	}
	return m
}

func cid(n int) *catalog.ID {
	id := catalog.ID(n)
	return &id
}

func (m *mockCatalog) product(id string) (json.RawMessage, bool) {
	for _, raw := range m.products {
		var p struct {
			ID int `json:"id"`
		}
		if err := json.Unmarshal(raw, &p); err == nil && strconv.Itoa(p.ID) == id {
			return raw, true
		}
	}
	return nil, false
}

func (m *mockCatalog) handle() http.Handler {
	listProducts := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		web.Respond(context.Background(), w, m.products, http.StatusOK)
	})

	showProduct := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := m.product(mux.Vars(r)["id"]); ok {
			web.Respond(context.Background(), w, p, http.StatusOK)
		}
	})

	listCarts := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()

		m.requestIDs = append(m.requestIDs, r.Header.Get(middleware.RequestIDHeader))

		if m.cartsStatus != 0 {
			web.Respond(context.Background(), w, map[string]string{"message": "down for maintenance"}, m.cartsStatus)
			return
		}

		cs := make([]catalog.Cart, 0, len(m.carts))
		for _, c := range m.carts {
			cs = append(cs, c)
		}
		sort.Slice(cs, func(i, j int) bool { return *cs[i].ID < *cs[j].ID })
		web.Respond(context.Background(), w, cs, http.StatusOK)
	})

	showCart := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()

		if c, ok := m.carts[mux.Vars(r)["id"]]; ok {
			web.Respond(context.Background(), w, c, http.StatusOK)
		}
	})

	createCart := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var nc catalog.CartNew
		if err := json.NewDecoder(r.Body).Decode(&nc); err != nil {
			web.Respond(context.Background(), w, nil, http.StatusBadRequest)
			return
		}

		m.mu.Lock()
		m.writes = append(m.writes, nc)
		m.mu.Unlock()

		// The catalog does not store new carts, it only answers with an id.
		web.Respond(context.Background(), w, catalog.Cart{ID: cid(21), UserID: nc.UserID, Date: nc.Date, Products: nc.Products}, http.StatusOK)
	})

	updateCart := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var nc catalog.CartNew
		if err := json.NewDecoder(r.Body).Decode(&nc); err != nil {
			web.Respond(context.Background(), w, nil, http.StatusBadRequest)
			return
		}

		m.mu.Lock()
		m.writes = append(m.writes, nc)
		m.mu.Unlock()

		// Updates echo the id back as a string.
		web.Respond(context.Background(), w, map[string]any{
			"id":       mux.Vars(r)["id"],
			"userId":   nc.UserID,
			"date":     nc.Date,
			"products": nc.Products,
		}, http.StatusOK)
	})

	deleteCart := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()

		id := mux.Vars(r)["id"]
		c, ok := m.carts[id]
		if !ok {
			web.Respond(context.Background(), w, map[string]string{"message": "cart not found"}, http.StatusNotFound)
			return
		}
		m.deleted = append(m.deleted, id)
		web.Respond(context.Background(), w, c, http.StatusOK)
	})

	login := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var cr catalog.Credentials
		if err := json.NewDecoder(r.Body).Decode(&cr); err != nil {
			web.Respond(context.Background(), w, nil, http.StatusBadRequest)
			return
		}

		if cr.Username != upstreamUser || cr.Password != upstreamPass {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("username or password is incorrect"))
			return
		}
		web.Respond(context.Background(), w, catalog.Token{Token: upstreamToken}, http.StatusOK)
	})

	r := mux.NewRouter()
	r.Handle("/products", listProducts).Methods("GET")
	r.Handle("/products/{id}", showProduct).Methods("GET")
	r.Handle("/carts", listCarts).Methods("GET")
	r.Handle("/carts", createCart).Methods("POST")
	r.Handle("/carts/{id}", showCart).Methods("GET")
	r.Handle("/carts/{id}", updateCart).Methods("PUT")
	r.Handle("/carts/{id}", deleteCart).Methods("DELETE")
	r.Handle("/auth/login", login).Methods("POST")
	return r
}
