package enums

import "fmt"

// PaymentStatus mirrors the gateway payment-intent lifecycle.
type PaymentStatus string

const (
	PaymentStatusRequiresAction PaymentStatus = "REQUIRES_ACTION"
	PaymentStatusProcessing     PaymentStatus = "PROCESSING"
	PaymentStatusSucceeded      PaymentStatus = "SUCCEEDED"
	PaymentStatusCanceled       PaymentStatus = "CANCELED"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusRequiresAction,
	PaymentStatusProcessing,
	PaymentStatusSucceeded,
	PaymentStatusCanceled,
}

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentStatus.
func (p PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are expected.
func (p PaymentStatus) IsTerminal() bool {
	return p == PaymentStatusSucceeded || p == PaymentStatusCanceled
}

// ParsePaymentStatus converts raw input into a PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}
