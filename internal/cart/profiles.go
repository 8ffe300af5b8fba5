package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/funnelcart/internal/history"
	"github.com/angelmondragon/funnelcart/internal/profile"
	"github.com/angelmondragon/funnelcart/pkg/enums"
)

// ApplyProfileOptions tunes a profile application.
type ApplyProfileOptions struct {
	// PreserveQuantities carries each line's quantity through the remap;
	// otherwise remapped lines reset to quantity 1.
	PreserveQuantities bool
	// ClearCart empties the ledger instead of remapping it.
	ClearCart bool
	// SkipValidation keeps lines whose mapped package cannot be resolved
	// against the catalog, carrying the old pricing forward.
	SkipValidation bool
}

// ApplyProfile remaps every line through the profile's package mappings.
// The pre-profile snapshot is captured only on the first transition out of
// the no-profile state and never overwritten while a profile is active, so
// revert always restores the customer's own selection. Applying the empty
// or "default" id reverts; re-applying the active profile is a no-op.
func (c *Cart) ApplyProfile(ctx context.Context, profileID string, opts ApplyProfileOptions) error {
	return c.queue.Do(ctx, "apply_profile", func(ctx context.Context) error {
		return c.applyProfile(ctx, profileID, opts)
	})
}

// RevertProfile restores the snapshot taken when the first profile was
// applied and clears the active profile. Reverting with no profile active
// is a no-op.
func (c *Cart) RevertProfile(ctx context.Context) error {
	return c.queue.Do(ctx, "revert_profile", func(ctx context.Context) error {
		return c.revertProfile(ctx)
	})
}

// SwitchProfile moves from one profile to another in a single queued
// mutation. The from id is advisory: a mismatch is logged, not fatal, since
// display collaborators race against each other.
func (c *Cart) SwitchProfile(ctx context.Context, fromProfileID, toProfileID string, opts ApplyProfileOptions) error {
	return c.queue.Do(ctx, "switch_profile", func(ctx context.Context) error {
		if fromProfileID != c.activeProfileID {
			lctx := c.logg.WithFields(ctx, map[string]any{
				"cart_id":  c.id,
				"expected": fromProfileID,
				"active":   c.activeProfileID,
			})
			c.logg.Warn(lctx, "switch profile: from id does not match active profile")
		}
		return c.applyProfile(ctx, toProfileID, opts)
	})
}

// applyProfile runs on the drain goroutine.
func (c *Cart) applyProfile(ctx context.Context, profileID string, opts ApplyProfileOptions) error {
	if profileID == "" || profileID == profile.DefaultID {
		return c.revertProfile(ctx)
	}

	prof, err := c.profiles.Get(profileID)
	if err != nil {
		return err
	}
	if profileID == c.activeProfileID {
		return nil
	}

	previous := c.activeProfileID

	if opts.ClearCart {
		c.lines = nil
		c.snapshot = nil
		c.activeProfileID = profileID
		c.record(ctx, history.Event{
			Type:              enums.CartEventProfileApplied,
			ProfileID:         strPtr(profileID),
			PreviousProfileID: previousPtr(previous),
		})
		c.commit()
		return nil
	}

	// Snapshot only on the first transition out of the no-profile state.
	if previous == "" {
		c.snapshot = cloneLines(c.lines)
	}

	remapped := make([]Line, 0, len(c.lines))
	for _, line := range c.lines {
		mappedID, ok := prof.MappedID(line.PackageID)
		if !ok {
			c.warnDropped(ctx, profileID, line.PackageID, "no mapping in profile")
			continue
		}

		next := Line{
			ID:                uuid.NewString(),
			PackageID:         mappedID,
			Quantity:          1,
			IsUpsell:          line.IsUpsell,
			OriginalPackageID: intPtr(line.PackageID),
		}
		if opts.PreserveQuantities {
			next.Quantity = line.Quantity
		}

		pkg, err := c.catalog.GetPackage(ctx, mappedID)
		switch {
		case err == nil:
			next.UnitTotal = pkg.EffectiveTotalPrice()
			next.RetailTotal = pkg.EffectiveTotalRetailPrice()
		case opts.SkipValidation:
			// Unresolvable but validation is off: keep the line on its
			// pre-remap pricing rather than dropping it.
			next.UnitTotal = line.UnitTotal
			next.RetailTotal = line.RetailTotal
		default:
			c.warnDropped(ctx, profileID, line.PackageID, fmt.Sprintf("mapped package %d not in catalog", mappedID))
			continue
		}

		remapped = append(remapped, next)
	}

	c.lines = remapped
	c.activeProfileID = profileID

	c.record(ctx, history.Event{
		Type:              enums.CartEventProfileApplied,
		ProfileID:         strPtr(profileID),
		PreviousProfileID: previousPtr(previous),
		ItemsAffected:     len(remapped),
	})
	c.commit()
	return nil
}

// revertProfile runs on the drain goroutine.
func (c *Cart) revertProfile(ctx context.Context) error {
	if c.activeProfileID == "" && c.snapshot == nil {
		return nil
	}

	previous := c.activeProfileID
	restored := 0
	if c.snapshot != nil {
		// Restored lines are fresh inserts: new ids, no remap marker.
		lines := make([]Line, len(c.snapshot))
		for i, line := range c.snapshot {
			line.ID = uuid.NewString()
			line.OriginalPackageID = nil
			lines[i] = line
		}
		c.lines = lines
		c.snapshot = nil
		restored = len(lines)
	}
	c.activeProfileID = ""

	c.record(ctx, history.Event{
		Type:              enums.CartEventProfileRevert,
		PreviousProfileID: previousPtr(previous),
		ItemsAffected:     restored,
	})
	c.commit()
	return nil
}

func (c *Cart) warnDropped(ctx context.Context, profileID string, packageID int, reason string) {
	lctx := c.logg.WithFields(ctx, map[string]any{
		"cart_id":    c.id,
		"profile_id": profileID,
		"package_id": packageID,
		"reason":     reason,
	})
	c.logg.Warn(lctx, "profile apply dropped a cart line")
}

func cloneLines(lines []Line) []Line {
	cloned := make([]Line, len(lines))
	copy(cloned, lines)
	return cloned
}

func previousPtr(id string) *string {
	if id == "" {
		return nil
	}
	return strPtr(id)
}
