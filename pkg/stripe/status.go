package stripe

import (
	"github.com/stripe/stripe-go/v84"

	"github.com/orbit-delivery/orbit-backend/pkg/enums"
)

// MapIntentStatus converts a gateway intent status to the internal payment status.
// Anything that is not succeeded/processing/canceled still requires action.
func MapIntentStatus(status stripe.PaymentIntentStatus) enums.PaymentStatus {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return enums.PaymentStatusSucceeded
	case stripe.PaymentIntentStatusProcessing:
		return enums.PaymentStatusProcessing
	case stripe.PaymentIntentStatusCanceled:
		return enums.PaymentStatusCanceled
	default:
		return enums.PaymentStatusRequiresAction
	}
}
