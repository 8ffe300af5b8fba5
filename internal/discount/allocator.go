package discount

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/funnelcart/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// LineView is the slice of a cart line the allocator needs: identity plus
// the line's undiscounted total.
type LineView struct {
	ID        string
	PackageID int
	Total     decimal.Decimal
}

// Allocate distributes the active coupons across the lines and returns the
// final per-line discount amounts keyed by line id.
//
// Coupons are additive, not compounding: every coupon is computed against
// the original line totals in application order. Fixed amounts are split
// across participating lines proportional to each line's share of the
// participating total, with the residue pinned to the last participant so
// the coupon value reconciles exactly. The accumulated discount for a line
// is clamped at that line's own total at the end.
func Allocate(lines []LineView, coupons []Applied) map[string]decimal.Decimal {
	allocated := make(map[string]decimal.Decimal, len(lines))
	for _, line := range lines {
		allocated[line.ID] = decimal.Zero
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Total)
	}
	if subtotal.IsZero() {
		return allocated
	}

	for _, coupon := range coupons {
		participating := participatingLines(lines, coupon.Definition)
		if len(participating) == 0 {
			// A coupon whose packages are absent from the cart contributes zero.
			continue
		}

		switch coupon.Definition.Type {
		case enums.CouponTypePercentage:
			for _, line := range participating {
				amount := line.Total.Mul(coupon.Definition.Value).Div(hundred)
				// The cap applies per line, matching the observed behavior of
				// the funnel even though a multi-line cart can then exceed the
				// stated cap in aggregate.
				if max := coupon.Definition.MaxDiscount; max != nil && amount.GreaterThan(*max) {
					amount = *max
				}
				allocated[line.ID] = allocated[line.ID].Add(amount)
			}
		case enums.CouponTypeFixed:
			distributeFixed(allocated, participating, coupon.Definition.Value)
		}
	}

	for _, line := range lines {
		if allocated[line.ID].GreaterThan(line.Total) {
			allocated[line.ID] = line.Total
		}
	}
	return allocated
}

func participatingLines(lines []LineView, def Definition) []LineView {
	participating := make([]LineView, 0, len(lines))
	for _, line := range lines {
		if def.AppliesTo(line.PackageID) {
			participating = append(participating, line)
		}
	}
	return participating
}

func distributeFixed(allocated map[string]decimal.Decimal, participating []LineView, value decimal.Decimal) {
	participatingTotal := decimal.Zero
	for _, line := range participating {
		participatingTotal = participatingTotal.Add(line.Total)
	}

	if participatingTotal.IsZero() {
		// All participating lines are free: fall back to an even split.
		share := value.Div(decimal.NewFromInt(int64(len(participating))))
		for _, line := range participating {
			allocated[line.ID] = allocated[line.ID].Add(share)
		}
		return
	}

	distributed := decimal.Zero
	for i, line := range participating {
		var share decimal.Decimal
		if i == len(participating)-1 {
			share = value.Sub(distributed)
		} else {
			share = value.Mul(line.Total).Div(participatingTotal)
			distributed = distributed.Add(share)
		}
		allocated[line.ID] = allocated[line.ID].Add(share)
	}
}
