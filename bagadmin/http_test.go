package bagadmin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"connbag/bag"
)

type httpTestItem struct {
	bag.Entry
	label string
}

func (i *httpTestItem) BagEntry() *bag.Entry { return &i.Entry }

func (i *httpTestItem) String() string { return i.label }

func newHTTPTestBag(t *testing.T) *bag.Bag[*httpTestItem] {
	t.Helper()
	b := bag.New[*httpTestItem](nil)
	if err := b.Add(&httpTestItem{label: "a"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := b.Add(&httpTestItem{label: "b"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	return b
}

func doJSON(t *testing.T, r http.Handler, method, target string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body %q: %v", rec.Body.String(), err)
	}
	body["__status"] = float64(rec.Code)
	return body
}

func TestHTTPSize(t *testing.T) {
	b := newHTTPTestBag(t)
	r := NewHTTPServer(b)

	body := doJSON(t, r, http.MethodGet, "/size")
	if got := body["size"]; got != float64(2) {
		t.Fatalf("size = %v, want 2", got)
	}
}

func TestHTTPCountByState(t *testing.T) {
	b := newHTTPTestBag(t)
	if _, err := b.Borrow(context.Background(), 0, nil); err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	r := NewHTTPServer(b)

	body := doJSON(t, r, http.MethodGet, "/count?state=IN_USE")
	if got := body["count"]; got != float64(1) {
		t.Fatalf("count(IN_USE) = %v, want 1", got)
	}

	body = doJSON(t, r, http.MethodGet, "/count?state=NOT_IN_USE")
	if got := body["count"]; got != float64(1) {
		t.Fatalf("count(NOT_IN_USE) = %v, want 1", got)
	}
}

func TestHTTPCountRejectsUnknownState(t *testing.T) {
	b := newHTTPTestBag(t)
	r := NewHTTPServer(b)

	body := doJSON(t, r, http.MethodGet, "/count?state=REMOVED")
	if got := body["__status"]; got != float64(http.StatusBadRequest) {
		t.Fatalf("status = %v, want 400", got)
	}
}

func TestHTTPValuesListsLabels(t *testing.T) {
	b := newHTTPTestBag(t)
	r := NewHTTPServer(b)

	body := doJSON(t, r, http.MethodGet, "/values?state=NOT_IN_USE")
	values, ok := body["values"].([]any)
	if !ok {
		t.Fatalf("values field = %v (%T), want a []any", body["values"], body["values"])
	}
	if len(values) != 2 {
		t.Fatalf("len(values) = %d, want 2", len(values))
	}
}

func TestHTTPPending(t *testing.T) {
	b := newHTTPTestBag(t)
	r := NewHTTPServer(b)

	body := doJSON(t, r, http.MethodGet, "/pending")
	if got := body["pending"]; got != float64(0) {
		t.Fatalf("pending = %v, want 0", got)
	}
}

func TestHTTPDump(t *testing.T) {
	b := newHTTPTestBag(t)
	r := NewHTTPServer(b)

	body := doJSON(t, r, http.MethodPost, "/dump")
	if got := body["status"]; got != "ok" {
		t.Fatalf("status = %v, want ok", got)
	}
}
