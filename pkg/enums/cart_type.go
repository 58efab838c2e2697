package enums

import "fmt"

// CartType scopes a promo evaluation to a checkout vertical.
type CartType string

const (
	CartTypeFood CartType = "FOOD"
	CartTypeShop CartType = "SHOP"
)

var validCartTypes = []CartType{
	CartTypeFood,
	CartTypeShop,
}

// String implements fmt.Stringer.
func (t CartType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known CartType.
func (t CartType) IsValid() bool {
	for _, candidate := range validCartTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseCartType converts raw input into a CartType.
func ParseCartType(value string) (CartType, error) {
	for _, candidate := range validCartTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart type %q", value)
}
