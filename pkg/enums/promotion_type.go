package enums

import "fmt"

// PromotionType determines how a promotion's value converts into a discount.
type PromotionType string

const (
	PromotionTypePercent      PromotionType = "PERCENT"
	PromotionTypeFixed        PromotionType = "FIXED"
	PromotionTypeFreeDelivery PromotionType = "FREE_DELIVERY"
	PromotionTypeFirstOrder   PromotionType = "FIRST_ORDER"
)

var validPromotionTypes = []PromotionType{
	PromotionTypePercent,
	PromotionTypeFixed,
	PromotionTypeFreeDelivery,
	PromotionTypeFirstOrder,
}

// String implements fmt.Stringer.
func (t PromotionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known PromotionType.
func (t PromotionType) IsValid() bool {
	for _, candidate := range validPromotionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParsePromotionType converts raw input into a PromotionType.
func ParsePromotionType(value string) (PromotionType, error) {
	for _, candidate := range validPromotionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid promotion type %q", value)
}
