package catalog

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/funnelcart/pkg/enums"
	pkgerrors "github.com/angelmondragon/funnelcart/pkg/errors"
	"github.com/angelmondragon/funnelcart/pkg/redis"
)

func TestRegistryGetPackage(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry([]Package{
		{RefID: 5, UnitPrice: decimal.RequireFromString("80"), UnitRetailPrice: decimal.RequireFromString("100"), QuantityPerPackage: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pkg, err := reg.GetPackage(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pkg.UnitPrice.Equal(decimal.RequireFromString("80")) {
		t.Fatalf("unexpected unit price: %s", pkg.UnitPrice)
	}

	if _, err := reg.GetPackage(context.Background(), 99); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry([]Package{
		{RefID: 1, QuantityPerPackage: 1},
		{RefID: 1, QuantityPerPackage: 1},
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNormalizeClampsMalformedData(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry([]Package{
		{RefID: 7, UnitPrice: decimal.RequireFromString("-3"), QuantityPerPackage: 0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pkg, err := reg.GetPackage(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pkg.UnitPrice.IsZero() || pkg.QuantityPerPackage != 1 {
		t.Fatalf("expected clamped package, got %+v", pkg)
	}
	if pkg.Currency != enums.CurrencyUSD {
		t.Fatalf("expected USD default, got %s", pkg.Currency)
	}
}

func TestEffectiveTotalsFallBackToUnitMath(t *testing.T) {
	t.Parallel()

	pkg := Package{
		RefID:              3,
		UnitPrice:          decimal.RequireFromString("10"),
		QuantityPerPackage: 3,
	}

	if !pkg.EffectiveTotalPrice().Equal(decimal.RequireFromString("30")) {
		t.Fatalf("unexpected total: %s", pkg.EffectiveTotalPrice())
	}
	// No retail data at all: retail falls back to the current price.
	if !pkg.EffectiveTotalRetailPrice().Equal(decimal.RequireFromString("30")) {
		t.Fatalf("unexpected retail total: %s", pkg.EffectiveTotalRetailPrice())
	}
}

type fakeStore struct {
	values map[string]string
	gets   atomic.Int64
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	f.gets.Add(1)
	if value, ok := f.values[key]; ok {
		return value, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

func TestCachedLookupPopulatesAndReuses(t *testing.T) {
	t.Parallel()

	var upstream atomic.Int64
	inner := LookupFunc(func(_ context.Context, refID int) (*Package, error) {
		upstream.Add(1)
		return &Package{RefID: refID, UnitPrice: decimal.RequireFromString("12"), QuantityPerPackage: 1}, nil
	})
	store := &fakeStore{values: map[string]string{}}
	cached := NewCachedLookup(inner, store, time.Minute, nil)

	for i := 0; i < 3; i++ {
		pkg, err := cached.GetPackage(context.Background(), 8)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pkg.RefID != 8 {
			t.Fatalf("unexpected package: %+v", pkg)
		}
	}

	if upstream.Load() != 1 {
		t.Fatalf("expected one upstream call, got %d", upstream.Load())
	}
}

func TestCachedLookupDoesNotCacheNotFound(t *testing.T) {
	t.Parallel()

	var upstream atomic.Int64
	inner := LookupFunc(func(_ context.Context, refID int) (*Package, error) {
		upstream.Add(1)
		return nil, pkgerrors.PackageNotFound(refID)
	})
	store := &fakeStore{values: map[string]string{}}
	cached := NewCachedLookup(inner, store, time.Minute, nil)

	for i := 0; i < 2; i++ {
		if _, err := cached.GetPackage(context.Background(), 404); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			t.Fatalf("expected not-found, got %v", err)
		}
	}
	if upstream.Load() != 2 {
		t.Fatalf("expected misses to hit upstream, got %d calls", upstream.Load())
	}
}
