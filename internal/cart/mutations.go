package cart

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/funnelcart/internal/catalog"
	"github.com/angelmondragon/funnelcart/internal/discount"
	"github.com/angelmondragon/funnelcart/internal/history"
	"github.com/angelmondragon/funnelcart/pkg/enums"
	pkgerrors "github.com/angelmondragon/funnelcart/pkg/errors"
)

// AddItemInput describes one item to insert into the ledger.
type AddItemInput struct {
	PackageID int  `json:"package_id" validate:"required,gt=0"`
	Quantity  int  `json:"quantity" validate:"gte=0"`
	IsUpsell  bool `json:"is_upsell"`
}

// AddItem resolves the package and inserts it, merging quantities when a
// line with the same (package, upsell) identity already exists. The catalog
// lookup runs before any state changes, so a missing package leaves the
// ledger untouched.
func (c *Cart) AddItem(ctx context.Context, input AddItemInput) error {
	if input.Quantity == 0 {
		input.Quantity = 1
	}
	if input.Quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	return c.queue.Do(ctx, "add_item", func(ctx context.Context) error {
		pkg, err := c.catalog.GetPackage(ctx, input.PackageID)
		if err != nil {
			return err
		}

		merged := false
		for i := range c.lines {
			line := &c.lines[i]
			if line.PackageID == input.PackageID && line.IsUpsell == input.IsUpsell {
				line.Quantity += input.Quantity
				merged = true
				break
			}
		}
		if !merged {
			c.lines = append(c.lines, newLine(pkg, input.Quantity, input.IsUpsell))
		}

		c.record(ctx, history.Event{
			Type:          enums.CartEventItemAdded,
			PackageRefID:  intPtr(input.PackageID),
			Quantity:      input.Quantity,
			ItemsAffected: 1,
		})
		c.commit()
		return nil
	})
}

// RemoveItem deletes every line carrying the given package id. Removing an
// absent package is a no-op.
func (c *Cart) RemoveItem(ctx context.Context, packageID int) error {
	return c.queue.Do(ctx, "remove_item", func(ctx context.Context) error {
		kept := c.lines[:0]
		removed := 0
		for _, line := range c.lines {
			if line.PackageID == packageID {
				removed++
				continue
			}
			kept = append(kept, line)
		}
		if removed == 0 {
			return nil
		}
		c.lines = kept

		c.record(ctx, history.Event{
			Type:          enums.CartEventItemRemoved,
			PackageRefID:  intPtr(packageID),
			ItemsAffected: removed,
		})
		c.commit()
		return nil
	})
}

// UpdateQuantity sets the quantity on every line carrying the package id.
// Zero or negative quantities remove the item; an absent package is a no-op.
func (c *Cart) UpdateQuantity(ctx context.Context, packageID, quantity int) error {
	if quantity <= 0 {
		return c.RemoveItem(ctx, packageID)
	}

	return c.queue.Do(ctx, "update_quantity", func(ctx context.Context) error {
		updated := 0
		for i := range c.lines {
			if c.lines[i].PackageID == packageID {
				c.lines[i].Quantity = quantity
				updated++
			}
		}
		if updated == 0 {
			return nil
		}
		c.commit()
		return nil
	})
}

// SwapPackage removes the old package and inserts the replacement as a fresh
// line. The replacement is resolved before the removal so a bad swap leaves
// the ledger untouched.
func (c *Cart) SwapPackage(ctx context.Context, oldPackageID int, replacement AddItemInput) error {
	if replacement.Quantity == 0 {
		replacement.Quantity = 1
	}
	if replacement.Quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	return c.queue.Do(ctx, "swap_package", func(ctx context.Context) error {
		pkg, err := c.catalog.GetPackage(ctx, replacement.PackageID)
		if err != nil {
			return err
		}

		kept := c.lines[:0]
		removed := 0
		for _, line := range c.lines {
			if line.PackageID == oldPackageID {
				removed++
				continue
			}
			kept = append(kept, line)
		}
		c.lines = append(kept, newLine(pkg, replacement.Quantity, replacement.IsUpsell))

		if removed > 0 {
			c.record(ctx, history.Event{
				Type:          enums.CartEventItemRemoved,
				PackageRefID:  intPtr(oldPackageID),
				ItemsAffected: removed,
			})
		}
		c.record(ctx, history.Event{
			Type:          enums.CartEventItemAdded,
			PackageRefID:  intPtr(replacement.PackageID),
			Quantity:      replacement.Quantity,
			ItemsAffected: 1,
		})
		c.commit()
		return nil
	})
}

// Clear empties the ledger's lines. Applied coupons, the active profile,
// and the profile snapshot all stay in place: an explicit clear does not
// forfeit the pre-profile selection a later revert restores.
func (c *Cart) Clear(ctx context.Context) error {
	return c.queue.Do(ctx, "clear", func(ctx context.Context) error {
		affected := len(c.lines)
		c.lines = nil

		c.record(ctx, history.Event{
			Type:          enums.CartEventCleared,
			ItemsAffected: affected,
		})
		c.commit()
		return nil
	})
}

// ApplyCoupon resolves the code against the coupon registry and appends it
// to the active list. Combinability is enforced in both directions: a
// non-combinable coupon cannot join others, and nothing can join a
// non-combinable coupon already in place.
func (c *Cart) ApplyCoupon(ctx context.Context, code string) error {
	if c.coupons == nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "no coupon registry configured")
	}

	return c.queue.Do(ctx, "apply_coupon", func(ctx context.Context) error {
		def, err := c.coupons.Get(code)
		if err != nil {
			return err
		}

		for _, active := range c.applied {
			if active.Code == def.Code {
				return pkgerrors.New(pkgerrors.CodeConflict, "coupon already applied").
					WithDetails(map[string]any{"code": def.Code})
			}
			if !active.Definition.Combinable || !def.Combinable {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "coupon cannot be combined").
					WithDetails(map[string]any{"code": def.Code, "active": active.Code})
			}
		}

		c.applied = append(c.applied, discount.Applied{Code: def.Code, Definition: def})
		c.record(ctx, history.Event{
			Type:       enums.CartEventCouponApplied,
			CouponCode: strPtr(def.Code),
		})
		c.commit()
		return nil
	})
}

// RemoveCoupon drops the code from the active list; an absent code is a
// no-op, mirroring RemoveItem.
func (c *Cart) RemoveCoupon(ctx context.Context, code string) error {
	return c.queue.Do(ctx, "remove_coupon", func(ctx context.Context) error {
		kept := c.applied[:0]
		removed := false
		var removedCode string
		for _, active := range c.applied {
			if !removed && equalCouponCode(active.Code, code) {
				removed = true
				removedCode = active.Code
				continue
			}
			kept = append(kept, active)
		}
		if !removed {
			return nil
		}
		c.applied = kept

		c.record(ctx, history.Event{
			Type:       enums.CartEventCouponRemoved,
			CouponCode: strPtr(removedCode),
		})
		c.commit()
		return nil
	})
}

// SetShippingMethod selects the fulfillment option whose price feeds the
// totals. A nil method clears the selection.
func (c *Cart) SetShippingMethod(ctx context.Context, method *ShippingMethod) error {
	return c.queue.Do(ctx, "set_shipping_method", func(ctx context.Context) error {
		c.shipping = method
		c.commit()
		return nil
	})
}

func equalCouponCode(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func newLine(pkg *catalog.Package, quantity int, isUpsell bool) Line {
	return Line{
		ID:          uuid.NewString(),
		PackageID:   pkg.RefID,
		Quantity:    quantity,
		IsUpsell:    isUpsell,
		UnitTotal:   pkg.EffectiveTotalPrice(),
		RetailTotal: pkg.EffectiveTotalRetailPrice(),
	}
}
