package enums

import "fmt"

// PaymentMethod identifies how the customer chose to pay at checkout.
type PaymentMethod string

const (
	PaymentMethodWebpay   PaymentMethod = "webpay"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodWebpay,
	PaymentMethodTransfer,
}

// String implements fmt.Stringer.
func (m PaymentMethod) String() string {
	return string(m)
}

// IsValid reports whether the value is a known PaymentMethod.
func (m PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// RequiresGateway reports whether the method drives the external gateway.
func (m PaymentMethod) RequiresGateway() bool {
	return m == PaymentMethodWebpay
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
