package service

import (
	"context"
	"math"
	"time"

	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
)

// sessionExpiry is how long a checkout session stays payable.
const sessionExpiry = 24 * time.Hour

// StripeSessionProvider implements SessionProvider with Stripe Checkout.
// The API key is set globally via stripe.Key at startup.
type StripeSessionProvider struct{}

// NewStripeSessionProvider creates a new StripeSessionProvider.
func NewStripeSessionProvider() *StripeSessionProvider {
	return &StripeSessionProvider{}
}

// CreateSession creates a Stripe Checkout session for the given amount.
func (p *StripeSessionProvider) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		ExpiresAt:  stripe.Int64(time.Now().Add(sessionExpiry).Unix()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(toCents(req.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.ProductName),
					},
				},
			},
		},
	}
	params.Context = ctx

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, err
	}

	return &Session{ID: sess.ID, URL: sess.URL}, nil
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
