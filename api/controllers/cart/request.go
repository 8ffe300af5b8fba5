package cart

import "github.com/shopspring/decimal"

type addItemRequest struct {
	PackageID int  `json:"package_id" validate:"required,gt=0"`
	Quantity  int  `json:"quantity" validate:"gte=0"`
	IsUpsell  bool `json:"is_upsell"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

type swapRequest struct {
	OldPackageID int  `json:"old_package_id" validate:"required,gt=0"`
	PackageID    int  `json:"package_id" validate:"required,gt=0"`
	Quantity     int  `json:"quantity" validate:"gte=0"`
	IsUpsell     bool `json:"is_upsell"`
}

type applyCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

type applyProfileRequest struct {
	ProfileID          string `json:"profile_id" validate:"required"`
	FromProfileID      string `json:"from_profile_id"`
	PreserveQuantities bool   `json:"preserve_quantities"`
	ClearCart          bool   `json:"clear_cart"`
	SkipValidation     bool   `json:"skip_validation"`
}

type shippingRequest struct {
	RefID int             `json:"ref_id" validate:"required,gt=0"`
	Code  string          `json:"code" validate:"required"`
	Price decimal.Decimal `json:"price"`
}
