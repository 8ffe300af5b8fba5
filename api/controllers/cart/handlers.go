package cart

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/funnelcart/api/responses"
	"github.com/angelmondragon/funnelcart/api/validators"
	enginecart "github.com/angelmondragon/funnelcart/internal/cart"
	"github.com/angelmondragon/funnelcart/internal/history"
	pkgerrors "github.com/angelmondragon/funnelcart/pkg/errors"
	"github.com/angelmondragon/funnelcart/pkg/logger"
)

// Fetch returns the committed cart state.
func Fetch(c *enginecart.Cart, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, c.State())
	}
}

// AddItem inserts or merges a package into the cart.
func AddItem(c *enginecart.Cart, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		err := c.AddItem(r.Context(), enginecart.AddItemInput{
			PackageID: payload.PackageID,
			Quantity:  payload.Quantity,
			IsUpsell:  payload.IsUpsell,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, c.State())
	}
}

// UpdateQuantity sets the quantity for a package; zero removes it.
func UpdateQuantity(c *enginecart.Cart, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refID, err := refIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := c.UpdateQuantity(r.Context(), refID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c.State())
	}
}

// RemoveItem deletes every line carrying the package.
func RemoveItem(c *enginecart.Cart, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refID, err := refIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := c.RemoveItem(r.Context(), refID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c.State())
	}
}

// Swap replaces one package with another in a single mutation.
func Swap(c *enginecart.Cart, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload swapRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		err := c.SwapPackage(r.Context(), payload.OldPackageID, enginecart.AddItemInput{
			PackageID: payload.PackageID,
			Quantity:  payload.Quantity,
			IsUpsell:  payload.IsUpsell,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c.State())
	}
}

// Clear empties the cart's lines.
func Clear(c *enginecart.Cart, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := c.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c.State())
	}
}

// ApplyCoupon activates a coupon code on the cart.
func ApplyCoupon(c *enginecart.Cart, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload applyCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := c.ApplyCoupon(r.Context(), payload.Code); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c.State())
	}
}

// RemoveCoupon deactivates a coupon code; unknown codes are a no-op.
func RemoveCoupon(c *enginecart.Cart, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required"))
			return
		}
		if err := c.RemoveCoupon(r.Context(), code); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c.State())
	}
}

// ApplyProfile applies or switches a pricing profile.
func ApplyProfile(c *enginecart.Cart, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload applyProfileRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		opts := enginecart.ApplyProfileOptions{
			PreserveQuantities: payload.PreserveQuantities,
			ClearCart:          payload.ClearCart,
			SkipValidation:     payload.SkipValidation,
		}
		var err error
		if payload.FromProfileID != "" {
			err = c.SwitchProfile(r.Context(), payload.FromProfileID, payload.ProfileID, opts)
		} else {
			err = c.ApplyProfile(r.Context(), payload.ProfileID, opts)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c.State())
	}
}

// RevertProfile restores the pre-profile selection.
func RevertProfile(c *enginecart.Cart, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := c.RevertProfile(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c.State())
	}
}

// SetShipping selects the shipping method priced into totals.
func SetShipping(c *enginecart.Cart, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload shippingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		err := c.SetShippingMethod(r.Context(), &enginecart.ShippingMethod{
			RefID: payload.RefID,
			Code:  payload.Code,
			Price: payload.Price,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c.State())
	}
}

// History lists the cart's recorded events in commit order.
func History(c *enginecart.Cart, events history.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if events == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "history service unavailable"))
			return
		}
		records, err := events.ListByCart(r.Context(), c.ID())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}

func refIDParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "refID")
	refID, err := strconv.Atoi(raw)
	if err != nil || refID <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "ref id must be a positive integer").
			WithDetails(map[string]any{"ref_id": raw})
	}
	return refID, nil
}
