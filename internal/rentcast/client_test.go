package rentcast

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDisabledClient(t *testing.T) {
	t.Parallel()

	c := New("", "")
	if c.Enabled() {
		t.Fatal("client without API key must report disabled")
	}
	list, err := c.Properties(context.Background())
	if err != nil {
		t.Fatalf("Properties: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("disabled client must return empty list, got %d", len(list))
	}
	if _, err := c.PropertyByAddress(context.Background(), "123 Main St"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestProperties(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization header: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"properties":[{"id":"p1","address":"123 Main St","price":250000,"square_feet":1800,"year_built":1995,"owner_name":"Jane Roe","owner_type":"Individual","legal_description":"Lot 4"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	list, err := c.Properties(context.Background())
	if err != nil {
		t.Fatalf("Properties: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("want 1 property, got %d", len(list))
	}
	p := list[0]
	if p.ID != "p1" || p.Address != "123 Main St" || p.SquareFootage != 1800 || p.YearBuilt != 1995 {
		t.Fatalf("mapping mismatch: %+v", p)
	}
}

func TestProperties_BareArray(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"p2","address":"9 Oak Ave","price":1}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	list, err := c.Properties(context.Background())
	if err != nil {
		t.Fatalf("Properties: %v", err)
	}
	if len(list) != 1 || list[0].ID != "p2" {
		t.Fatalf("bare array not handled: %+v", list)
	}
}

func TestPropertyByAddress(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("address"); got != "9 Oak Ave" {
			t.Errorf("address query: %q", got)
		}
		w.Write([]byte(`[{"id":"p2","address":"9 Oak Ave","owner_name":"ACME LLC","owner_type":"Organization"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	p, err := c.PropertyByAddress(context.Background(), "9 Oak Ave")
	if err != nil {
		t.Fatalf("PropertyByAddress: %v", err)
	}
	if p.ID != "p2" || p.OwnerName != "ACME LLC" {
		t.Fatalf("mapping mismatch: %+v", p)
	}
}

func TestPropertyByAddress_NotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	if _, err := c.PropertyByAddress(context.Background(), "nowhere"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUpstreamError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	if _, err := c.Properties(context.Background()); err == nil {
		t.Fatal("5xx from upstream must surface as error")
	}
}
