package product

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/cart-admin/core/catalog"
	"github.com/sirupsen/logrus"
)

func raw(id int, title string) catalog.Product {
	cid := catalog.ID(id)
	return catalog.Product{ID: &cid, Title: &title, Price: 1, Description: "d", Image: "i"}
}

func TestNormalize(t *testing.T) {
	in := raw(7, "X")

	got, err := Normalize(in)
	if err != nil {
		t.Fatalf("normalizing: %v", err)
	}

	want := Product{ID: "7", Name: "X", Price: 1, Description: "d", Image: "i"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected product (-want +got):\n%s", diff)
	}

	again, _ := Normalize(in)
	if again.ID != got.ID {
		t.Fatalf("id changed between calls: %q then %q", got.ID, again.ID)
	}
}

func TestNormalizeMissingFields(t *testing.T) {
	noID := raw(1, "X")
	noID.ID = nil
	noTitle := raw(1, "X")
	noTitle.Title = nil

	for name, in := range map[string]catalog.Product{"id": noID, "title": noTitle} {
		_, err := Normalize(in)

		var ne *catalog.NormalizationError
		if !errors.As(err, &ne) || ne.Field != name {
			t.Fatalf("missing %s: unexpected error %v", name, err)
		}
	}
}

type source []catalog.Product

func (s source) ListProducts(context.Context) ([]catalog.Product, error) { return s, nil }

func (s source) GetProduct(_ context.Context, id string) (catalog.Product, error) {
	for _, p := range s {
		if p.ID != nil && p.ID.String() == id {
			return p, nil
		}
	}
	return catalog.Product{}, &catalog.StatusError{StatusCode: 404, Status: "404 Not Found"}
}

func TestListDropsBrokenRecords(t *testing.T) {
	broken := raw(2, "")
	broken.Title = nil
	src := source{raw(1, "A"), broken, raw(3, "C")}

	log := logrus.New()
	log.SetOutput(io.Discard)

	ps, err := List(context.Background(), src, log)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(ps) != 2 || ps[0].ID != "1" || ps[1].ID != "3" {
		t.Fatalf("unexpected products %+v", ps)
	}
}

func TestFetch(t *testing.T) {
	src := source{raw(1, "A")}

	p, err := Fetch(context.Background(), src, "1")
	if err != nil || p.Name != "A" {
		t.Fatalf("fetching: %+v, %v", p, err)
	}

	_, err = Fetch(context.Background(), src, "2")
	var se *catalog.StatusError
	if !errors.As(err, &se) || !se.NotFound() {
		t.Fatalf("expected not found, got %v", err)
	}
}
