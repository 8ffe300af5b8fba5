package discount

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/funnelcart/pkg/enums"
	pkgerrors "github.com/angelmondragon/funnelcart/pkg/errors"
)

// Definition is a coupon as supplied by configuration, validated once at
// ingestion so the allocator never re-checks shapes.
type Definition struct {
	Code        string            `json:"code" validate:"required"`
	Type        enums.CouponType  `json:"type" validate:"required"`
	Value       decimal.Decimal   `json:"value"`
	Scope       enums.CouponScope `json:"scope" validate:"required"`
	PackageIDs  []int             `json:"package_ids,omitempty"`
	MaxDiscount *decimal.Decimal  `json:"max_discount,omitempty"`
	Combinable  bool              `json:"combinable"`
}

// AppliesTo reports whether the coupon participates for the given package.
func (d Definition) AppliesTo(packageID int) bool {
	if d.Scope == enums.CouponScopeOrder {
		return true
	}
	for _, id := range d.PackageIDs {
		if id == packageID {
			return true
		}
	}
	return false
}

// Applied is one entry in the ledger's active-coupon list.
type Applied struct {
	Code       string     `json:"code"`
	Definition Definition `json:"definition"`
}

var validate = validator.New()

// Registry holds the configured coupon definitions keyed by code.
type Registry struct {
	coupons map[string]Definition
}

// NewRegistry validates and indexes the given definitions.
func NewRegistry(definitions []Definition) (*Registry, error) {
	indexed := make(map[string]Definition, len(definitions))
	for _, def := range definitions {
		if err := validateDefinition(def); err != nil {
			return nil, err
		}
		key := normalizeCode(def.Code)
		if _, exists := indexed[key]; exists {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate coupon code %q", def.Code))
		}
		indexed[key] = def
	}
	return &Registry{coupons: indexed}, nil
}

// LoadFile reads a JSON array of coupon definitions and builds a registry.
func LoadFile(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read coupons file")
	}
	var definitions []Definition
	if err := json.Unmarshal(raw, &definitions); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode coupons file")
	}
	return NewRegistry(definitions)
}

// Get resolves a coupon by code, case-insensitively.
func (r *Registry) Get(code string) (Definition, error) {
	def, ok := r.coupons[normalizeCode(code)]
	if !ok {
		return Definition{}, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found").
			WithDetails(map[string]any{"code": code})
	}
	return def, nil
}

func validateDefinition(def Definition) error {
	if err := validate.Struct(def); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid coupon %q", def.Code))
	}
	if !def.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("coupon %q: invalid type %q", def.Code, def.Type))
	}
	if !def.Scope.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("coupon %q: invalid scope %q", def.Code, def.Scope))
	}
	if def.Scope == enums.CouponScopePackage && len(def.PackageIDs) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("coupon %q: package scope requires package ids", def.Code))
	}
	if def.Value.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("coupon %q: value cannot be negative", def.Code))
	}
	if def.MaxDiscount != nil && def.MaxDiscount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("coupon %q: max discount cannot be negative", def.Code))
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
