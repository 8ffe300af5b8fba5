package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/funnelcart/pkg/enums"
	pkgerrors "github.com/angelmondragon/funnelcart/pkg/errors"
)

// Package is an immutable catalog record. Prices are per unit unless the
// total fields are present; totals fall back to unit price times quantity.
type Package struct {
	RefID              int             `json:"ref_id" validate:"required,gt=0"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	UnitRetailPrice    decimal.Decimal `json:"unit_retail_price"`
	QuantityPerPackage int             `json:"quantity_per_package" validate:"gte=0"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	TotalRetailPrice   decimal.Decimal `json:"total_retail_price"`
	Currency           enums.Currency  `json:"currency"`
}

// Lookup resolves catalog packages by ref id.
type Lookup interface {
	GetPackage(ctx context.Context, refID int) (*Package, error)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(ctx context.Context, refID int) (*Package, error)

func (fn LookupFunc) GetPackage(ctx context.Context, refID int) (*Package, error) {
	return fn(ctx, refID)
}

var validate = validator.New()

// Registry is an in-memory catalog loaded once at startup.
type Registry struct {
	packages map[int]Package
}

// NewRegistry validates and indexes the given packages.
func NewRegistry(packages []Package) (*Registry, error) {
	indexed := make(map[int]Package, len(packages))
	for _, pkg := range packages {
		if err := validate.Struct(pkg); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid package %d", pkg.RefID))
		}
		if _, exists := indexed[pkg.RefID]; exists {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate package ref id %d", pkg.RefID))
		}
		indexed[pkg.RefID] = normalize(pkg)
	}
	return &Registry{packages: indexed}, nil
}

// LoadFile reads a JSON array of packages and builds a registry.
func LoadFile(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read catalog file")
	}
	var packages []Package
	if err := json.Unmarshal(raw, &packages); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode catalog file")
	}
	return NewRegistry(packages)
}

// GetPackage implements Lookup.
func (r *Registry) GetPackage(_ context.Context, refID int) (*Package, error) {
	pkg, ok := r.packages[refID]
	if !ok {
		return nil, pkgerrors.PackageNotFound(refID)
	}
	return &pkg, nil
}

// Len reports the number of registered packages.
func (r *Registry) Len() int {
	return len(r.packages)
}

// normalize applies the clamp policy: the catalog is remote data the engine
// does not control, so malformed records are sanitized rather than rejected.
func normalize(pkg Package) Package {
	if pkg.QuantityPerPackage < 1 {
		pkg.QuantityPerPackage = 1
	}
	if pkg.UnitPrice.IsNegative() {
		pkg.UnitPrice = decimal.Zero
	}
	if pkg.UnitRetailPrice.IsNegative() {
		pkg.UnitRetailPrice = decimal.Zero
	}
	if pkg.TotalPrice.IsNegative() {
		pkg.TotalPrice = decimal.Zero
	}
	if pkg.TotalRetailPrice.IsNegative() {
		pkg.TotalRetailPrice = decimal.Zero
	}
	if pkg.Currency == "" {
		pkg.Currency = enums.CurrencyUSD
	}
	return pkg
}

// EffectiveTotalPrice returns the bundled price for one package: the
// pre-computed total when present, otherwise unit price times quantity.
func (p *Package) EffectiveTotalPrice() decimal.Decimal {
	if p.TotalPrice.IsPositive() {
		return p.TotalPrice
	}
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.QuantityPerPackage)))
}

// EffectiveTotalRetailPrice mirrors EffectiveTotalPrice for the list price,
// falling back to the current price when retail data is missing.
func (p *Package) EffectiveTotalRetailPrice() decimal.Decimal {
	if p.TotalRetailPrice.IsPositive() {
		return p.TotalRetailPrice
	}
	retailUnit := p.UnitRetailPrice
	if !retailUnit.IsPositive() {
		retailUnit = p.UnitPrice
	}
	return retailUnit.Mul(decimal.NewFromInt(int64(p.QuantityPerPackage)))
}
