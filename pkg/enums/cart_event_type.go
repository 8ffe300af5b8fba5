package enums

import "fmt"

// CartEventType classifies history events emitted after committed mutations.
type CartEventType string

const (
	CartEventItemAdded      CartEventType = "cart:item-added"
	CartEventItemRemoved    CartEventType = "cart:item-removed"
	CartEventCleared        CartEventType = "cart:cleared"
	CartEventCouponApplied  CartEventType = "cart:coupon-applied"
	CartEventCouponRemoved  CartEventType = "cart:coupon-removed"
	CartEventProfileApplied CartEventType = "profile:applied"
	CartEventProfileRevert  CartEventType = "profile:reverted"
)

var validCartEventTypes = []CartEventType{
	CartEventItemAdded,
	CartEventItemRemoved,
	CartEventCleared,
	CartEventCouponApplied,
	CartEventCouponRemoved,
	CartEventProfileApplied,
	CartEventProfileRevert,
}

// String implements fmt.Stringer.
func (c CartEventType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CartEventType.
func (c CartEventType) IsValid() bool {
	for _, candidate := range validCartEventTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartEventType converts raw input into a CartEventType.
func ParseCartEventType(value string) (CartEventType, error) {
	for _, candidate := range validCartEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart event type %q", value)
}
