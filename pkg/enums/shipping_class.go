package enums

import "fmt"

// ShippingClassCode is the handling category constraining carrier choice.
type ShippingClassCode string

const (
	ShippingClassNormal     ShippingClassCode = "normal"
	ShippingClassOversized  ShippingClassCode = "oversized"
	ShippingClassDangerous  ShippingClassCode = "dangerous"
	ShippingClassPickupOnly ShippingClassCode = "pickup_only"
)

var validShippingClassCodes = []ShippingClassCode{
	ShippingClassNormal,
	ShippingClassOversized,
	ShippingClassDangerous,
	ShippingClassPickupOnly,
}

// String implements fmt.Stringer.
func (c ShippingClassCode) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ShippingClassCode.
func (c ShippingClassCode) IsValid() bool {
	for _, candidate := range validShippingClassCodes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseShippingClassCode converts raw input into a ShippingClassCode.
func ParseShippingClassCode(value string) (ShippingClassCode, error) {
	for _, candidate := range validShippingClassCodes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipping class %q", value)
}
