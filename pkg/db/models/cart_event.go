package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/funnelcart/pkg/enums"
)

// CartEvent is one immutable row in the cart history ledger.
type CartEvent struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	CartID            string              `gorm:"column:cart_id;not null;index"`
	Type              enums.CartEventType `gorm:"column:type;not null;index"`
	PackageRefID      *int                `gorm:"column:package_ref_id"`
	ProfileID         *string             `gorm:"column:profile_id"`
	PreviousProfileID *string             `gorm:"column:previous_profile_id"`
	CouponCode        *string             `gorm:"column:coupon_code"`
	Quantity          int                 `gorm:"column:quantity;not null;default:0"`
	ItemsAffected     int                 `gorm:"column:items_affected;not null;default:0"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
}

// TableName pins the table name regardless of gorm pluralization settings.
func (CartEvent) TableName() string {
	return "cart_events"
}
