// Package catalog speaks to the external product/cart catalog. Its types
// mirror the catalog's wire schema and are never handed to the UI directly.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// ID is a catalog record id. The catalog sends it as a number, though some
// of its write endpoints echo it back as a string.
type ID int

func (id ID) String() string { return strconv.Itoa(int(id)) }

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("id %q is not an integer", s)
		}
		*id = ID(n)
		return nil
	}

	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id %s is not an integer", b)
	}
	*id = ID(n)
	return nil
}

// Product is a catalog product record. ID and Title are pointers so that a
// record missing them can be told apart from a zero value.
type Product struct {
	ID          *ID     `json:"id"`
	Title       *string `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	Rating      Rating  `json:"rating"`
}

type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

type Cart struct {
	ID       *ID        `json:"id"`
	UserID   int        `json:"userId"`
	Date     string     `json:"date"`
	Products []CartLine `json:"products"`
	V        int        `json:"__v,omitempty"`
}

type CartLine struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// CartNew is the body of a cart create or update call.
type CartNew struct {
	UserID   int        `json:"userId"`
	Date     string     `json:"date"`
	Products []CartLine `json:"products"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Token struct {
	Token string `json:"token"`
}

// StatusError is returned when the catalog answers with a non-2xx status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	// Message is the catalog's own explanation, when it sent one.
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog %s %s: %s", e.Method, e.Path, e.Status)
}

// NotFound reports whether the catalog said the record does not exist.
func (e *StatusError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// NormalizationError is returned when a catalog record lacks a field the
// application cannot do without.
type NormalizationError struct {
	Record string
	Field  string
	Reason string
}

func (e *NormalizationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("normalizing %s: missing %s", e.Record, e.Field)
	}
	return fmt.Sprintf("normalizing %s: %s %s", e.Record, e.Field, e.Reason)
}
