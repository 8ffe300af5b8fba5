package discount

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/funnelcart/pkg/enums"
	pkgerrors "github.com/angelmondragon/funnelcart/pkg/errors"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func applied(def Definition) Applied {
	return Applied{Code: def.Code, Definition: def}
}

func TestAllocateOrderPercentage(t *testing.T) {
	t.Parallel()

	lines := []LineView{{ID: "a", PackageID: 5, Total: dec("80")}}
	coupons := []Applied{applied(Definition{
		Code:       "SAVE10",
		Type:       enums.CouponTypePercentage,
		Value:      dec("10"),
		Scope:      enums.CouponScopeOrder,
		Combinable: true,
	})}

	got := Allocate(lines, coupons)
	if !got["a"].Equal(dec("8")) {
		t.Fatalf("expected $8 discount, got %s", got["a"])
	}
}

func TestAllocatePackageFixedOnlyHitsScopedLines(t *testing.T) {
	t.Parallel()

	lines := []LineView{
		{ID: "a", PackageID: 1, Total: dec("60")},
		{ID: "b", PackageID: 2, Total: dec("40")},
	}
	coupons := []Applied{applied(Definition{
		Code:       "PKG20",
		Type:       enums.CouponTypeFixed,
		Value:      dec("20"),
		Scope:      enums.CouponScopePackage,
		PackageIDs: []int{1},
	})}

	got := Allocate(lines, coupons)
	if !got["a"].Equal(dec("20")) {
		t.Fatalf("expected full $20 on package 1, got %s", got["a"])
	}
	if !got["b"].IsZero() {
		t.Fatalf("expected zero on package 2, got %s", got["b"])
	}
}

func TestAllocateFixedSplitsProportionally(t *testing.T) {
	t.Parallel()

	lines := []LineView{
		{ID: "a", PackageID: 1, Total: dec("60")},
		{ID: "b", PackageID: 2, Total: dec("40")},
	}
	coupons := []Applied{applied(Definition{
		Code:  "FLAT10",
		Type:  enums.CouponTypeFixed,
		Value: dec("10"),
		Scope: enums.CouponScopeOrder,
	})}

	got := Allocate(lines, coupons)
	if !got["a"].Equal(dec("6")) {
		t.Fatalf("expected $6 share, got %s", got["a"])
	}
	if !got["b"].Equal(dec("4")) {
		t.Fatalf("expected $4 share, got %s", got["b"])
	}
}

func TestAllocateFixedReconcilesExactly(t *testing.T) {
	t.Parallel()

	// Thirds do not divide evenly; the residue lands on the last line.
	lines := []LineView{
		{ID: "a", PackageID: 1, Total: dec("10")},
		{ID: "b", PackageID: 2, Total: dec("10")},
		{ID: "c", PackageID: 3, Total: dec("10")},
	}
	coupons := []Applied{applied(Definition{
		Code:  "FLAT10",
		Type:  enums.CouponTypeFixed,
		Value: dec("10"),
		Scope: enums.CouponScopeOrder,
	})}

	got := Allocate(lines, coupons)
	sum := got["a"].Add(got["b"]).Add(got["c"])
	if !sum.Equal(dec("10")) {
		t.Fatalf("fixed coupon must reconcile exactly, got %s", sum)
	}
}

func TestAllocateAdditiveNotCompounding(t *testing.T) {
	t.Parallel()

	lines := []LineView{{ID: "a", PackageID: 1, Total: dec("100")}}
	ten := Definition{
		Type:       enums.CouponTypePercentage,
		Value:      dec("10"),
		Scope:      enums.CouponScopeOrder,
		Combinable: true,
	}
	first := ten
	first.Code = "TEN1"
	second := ten
	second.Code = "TEN2"

	got := Allocate(lines, []Applied{applied(first), applied(second)})
	if !got["a"].Equal(dec("20")) {
		t.Fatalf("two 10%% coupons must stack to $20, got %s", got["a"])
	}
}

func TestAllocateNeverExceedsLineTotal(t *testing.T) {
	t.Parallel()

	lines := []LineView{{ID: "a", PackageID: 1, Total: dec("15")}}
	coupons := []Applied{applied(Definition{
		Code:  "BIG",
		Type:  enums.CouponTypeFixed,
		Value: dec("50"),
		Scope: enums.CouponScopeOrder,
	})}

	got := Allocate(lines, coupons)
	if !got["a"].Equal(dec("15")) {
		t.Fatalf("discount must clamp at line total, got %s", got["a"])
	}
}

func TestAllocatePercentageMaxDiscountPerLine(t *testing.T) {
	t.Parallel()

	// The cap is enforced per line, so two qualifying lines can each take the
	// full cap. Deliberate: pins the observed funnel behavior.
	limit := dec("5")
	lines := []LineView{
		{ID: "a", PackageID: 1, Total: dec("100")},
		{ID: "b", PackageID: 1, Total: dec("100")},
	}
	coupons := []Applied{applied(Definition{
		Code:        "CAP",
		Type:        enums.CouponTypePercentage,
		Value:       dec("10"),
		Scope:       enums.CouponScopePackage,
		PackageIDs:  []int{1},
		MaxDiscount: &limit,
	})}

	got := Allocate(lines, coupons)
	if !got["a"].Equal(dec("5")) || !got["b"].Equal(dec("5")) {
		t.Fatalf("expected per-line cap of $5, got %s / %s", got["a"], got["b"])
	}
}

func TestAllocateEmptyCartShortCircuits(t *testing.T) {
	t.Parallel()

	got := Allocate(nil, []Applied{applied(Definition{
		Code:  "TEN",
		Type:  enums.CouponTypePercentage,
		Value: dec("10"),
		Scope: enums.CouponScopeOrder,
	})})
	if len(got) != 0 {
		t.Fatalf("expected empty allocation, got %v", got)
	}
}

func TestAllocateCouponWithNoMatchingLines(t *testing.T) {
	t.Parallel()

	lines := []LineView{{ID: "a", PackageID: 1, Total: dec("50")}}
	coupons := []Applied{applied(Definition{
		Code:       "GHOST",
		Type:       enums.CouponTypeFixed,
		Value:      dec("20"),
		Scope:      enums.CouponScopePackage,
		PackageIDs: []int{99},
	})}

	got := Allocate(lines, coupons)
	if !got["a"].IsZero() {
		t.Fatalf("expected zero discount, got %s", got["a"])
	}
}

func TestAllocateZeroParticipatingTotalEvenSplit(t *testing.T) {
	t.Parallel()

	lines := []LineView{
		{ID: "a", PackageID: 1, Total: decimal.Zero},
		{ID: "b", PackageID: 2, Total: dec("30")},
	}
	// Only free lines participate; the split is even and the final clamp
	// zeroes it back out so no line goes negative.
	coupons := []Applied{applied(Definition{
		Code:       "FREE",
		Type:       enums.CouponTypeFixed,
		Value:      dec("10"),
		Scope:      enums.CouponScopePackage,
		PackageIDs: []int{1},
	})}

	got := Allocate(lines, coupons)
	if got["a"].GreaterThan(decimal.Zero) {
		t.Fatalf("zero-total line discount must clamp to its total, got %s", got["a"])
	}
	if got["b"].GreaterThan(dec("30")) {
		t.Fatalf("discount exceeds line total: %s", got["b"])
	}
}

func TestRegistryValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewRegistry([]Definition{{
		Code:  "NOPKGS",
		Type:  enums.CouponTypeFixed,
		Value: dec("5"),
		Scope: enums.CouponScopePackage,
	}}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for package scope without ids, got %v", err)
	}

	reg, err := NewRegistry([]Definition{{
		Code:       "save10",
		Type:       enums.CouponTypePercentage,
		Value:      dec("10"),
		Scope:      enums.CouponScopeOrder,
		Combinable: true,
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := reg.Get("SAVE10"); err != nil {
		t.Fatalf("lookup should be case-insensitive: %v", err)
	}
	if _, err := reg.Get("MISSING"); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}
