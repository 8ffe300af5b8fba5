package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/funnelcart/internal/catalog"
	"github.com/angelmondragon/funnelcart/pkg/enums"
)

func TestPackageMetricsEndpoint(t *testing.T) {
	t.Parallel()

	reg, err := catalog.NewRegistry([]catalog.Package{
		{RefID: 5, UnitPrice: decimal.RequireFromString("40"), UnitRetailPrice: decimal.RequireFromString("50"), QuantityPerPackage: 2},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	r := chi.NewRouter()
	r.Get("/packages/{refID}", PackageMetrics(reg, enums.CurrencyUSD, nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/packages/5", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data packageMetricsResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := envelope.Data
	if !got.TotalPrice.Value.Equal(decimal.RequireFromString("80")) {
		t.Fatalf("total price: got %s", got.TotalPrice.Value)
	}
	if got.TotalPrice.Formatted != "$80.00" {
		t.Fatalf("formatted total: got %q", got.TotalPrice.Formatted)
	}
	if !got.TotalSavings.Value.Equal(decimal.RequireFromString("20")) {
		t.Fatalf("total savings: got %s", got.TotalSavings.Value)
	}
	if !got.HasSavings || !got.IsBundle {
		t.Fatalf("flags: %+v", got)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/packages/404", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown package: expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/packages/zero", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad ref id: expected 400, got %d", rec.Code)
	}
}
