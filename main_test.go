package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabbir-tanvir/storefront/backend"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		in   backend.Amount
		want string
	}{
		{"", "-"},
		{"12.50", "12.5"},
		{"1234.5", "1,234.5"},
		{"100", "100"},
		{"free", "free"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, price(tt.in), tt.in)
	}
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "0 products", plural(0, "product"))
	assert.Equal(t, "1 product", plural(1, "product"))
	assert.Equal(t, "1,200 shops", plural(1200, "shop"))
}

func TestPrintProducts(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	items := []backend.Product{
		{ID: 1, Name: "Tea", Price: "12.50", Stock: 1500},
		{ID: 22, Name: "Coffee beans", Price: "450"},
	}

	var buf bytes.Buffer
	require.NoError(t, printProducts(&buf, items, now.Add(-3*time.Minute), now))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "ID  NAME          PRICE  STOCK", lines[0])
	assert.Equal(t, "1   Tea           12.5   1,500", lines[1])
	assert.Equal(t, "22  Coffee beans  450    0", lines[2])
	assert.Equal(t, "2 products, fetched 3 minutes ago", lines[3])
}

func TestPrintShops(t *testing.T) {
	page := backend.Page[backend.Shop]{
		Count:   41,
		Next:    "http://b/api/shops/?page=3",
		Results: []backend.Shop{{ID: 5, Name: "Corner", Address: "Dhaka"}},
	}

	var buf bytes.Buffer
	require.NoError(t, printShops(&buf, page, 2))
	assert.Contains(t, buf.String(), "5   Corner  Dhaka")
	assert.Contains(t, buf.String(), "page 2, 1 shop of 41 (more with --page 3)")
}

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/products/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"results":[{"id":1,"name":"Tea","price":"10"},{"id":2,"name":"Milk","price":5}]}`)
	})
	mux.HandleFunc("/api/shops/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "9" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"detail":"Invalid page."}`)
			return
		}
		_, _ = io.WriteString(w, `[{"id":5,"name":"Corner"}]`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_Products(t *testing.T) {
	srv := newBackend(t)

	var out bytes.Buffer
	code := realMain(context.Background(), []string{"storefront", "--backend", srv.URL, "products", "--limit", "1"}, &out)
	require.Equal(t, 0, code)
	assert.Contains(t, out.String(), "Tea")
	assert.NotContains(t, out.String(), "Milk")
	assert.Contains(t, out.String(), "1 product, fetched now")
}

func TestRun_ProductsBackendDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	var out bytes.Buffer
	code := realMain(context.Background(), []string{"storefront", "--backend", srv.URL, "products"}, &out)
	assert.Equal(t, 1, code)
}

func TestRun_BackendFromEnv(t *testing.T) {
	srv := newBackend(t)
	t.Setenv("STOREFRONT_BACKEND_URL", srv.URL)

	var out bytes.Buffer
	require.Equal(t, 0, realMain(context.Background(), []string{"storefront", "shops"}, &out))
	assert.Contains(t, out.String(), "Corner")
	assert.Contains(t, out.String(), "page 1, 1 shop of 1")
}

func TestRun_Shops(t *testing.T) {
	srv := newBackend(t)

	var out bytes.Buffer
	assert.Equal(t, 1, realMain(context.Background(), []string{"storefront", "--backend", srv.URL, "shops", "--page", "9"}, &out))
	assert.Equal(t, 1, realMain(context.Background(), []string{"storefront", "--backend", srv.URL, "shops", "--page", "0"}, &out))
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.Equal(t, 0, realMain(context.Background(), []string{"storefront", "version"}, &out))
	assert.Equal(t, version+"\n", out.String())
}
