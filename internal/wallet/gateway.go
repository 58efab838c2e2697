package wallet

import (
	"context"

	"github.com/stripe/stripe-go/v84"

	pkgstripe "github.com/orbit-delivery/orbit-backend/pkg/stripe"
)

// PaymentGateway exposes the subset of gateway operations the wallet service needs.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountMinorUnits int64, currency string, metadata map[string]string) (*stripe.PaymentIntent, error)
	UpdateIntentMetadata(ctx context.Context, intentID string, metadata map[string]string) error
}

type stripeGateway struct {
	api *stripe.Client
}

// NewPaymentGateway wraps the shared Stripe client so the wallet service can be tested.
func NewPaymentGateway(client *pkgstripe.Client) PaymentGateway {
	if client == nil || client.API() == nil {
		return nil
	}
	return &stripeGateway{api: client.API()}
}

func (g *stripeGateway) CreateIntent(ctx context.Context, amountMinorUnits int64, currency string, metadata map[string]string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(amountMinorUnits),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	return g.api.V1PaymentIntents.Create(ctx, params)
}

func (g *stripeGateway) UpdateIntentMetadata(ctx context.Context, intentID string, metadata map[string]string) error {
	params := &stripe.PaymentIntentUpdateParams{}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	_, err := g.api.V1PaymentIntents.Update(ctx, intentID, params)
	return err
}
