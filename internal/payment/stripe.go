package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/cx-tal-miterani/ticket-checkout/internal/models"
	"github.com/stripe/stripe-go/v82"
)

const (
	DefaultCurrency      = "inr"
	DefaultPaymentMethod = "pm_card_visa"
)

// StripeProcessor charges orders by confirming a Stripe PaymentIntent.
// Amounts are whole rupees; Stripe takes the smallest currency unit.
type StripeProcessor struct {
	client        *stripe.Client
	currency      string
	paymentMethod string
}

// NewStripeProcessor wraps an API client. Empty currency or payment method
// fall back to the defaults.
func NewStripeProcessor(client *stripe.Client, currency, paymentMethod string) *StripeProcessor {
	if currency == "" {
		currency = DefaultCurrency
	}
	if paymentMethod == "" {
		paymentMethod = DefaultPaymentMethod
	}
	return &StripeProcessor{client: client, currency: currency, paymentMethod: paymentMethod}
}

func (p *StripeProcessor) Charge(ctx context.Context, req models.PaymentRequest, attempt int) (models.ChargeResult, error) {
	params := &stripe.PaymentIntentCreateParams{
		Amount:        stripe.Int64(req.TotalAmount * 100),
		Currency:      stripe.String(p.currency),
		Description:   stripe.String(fmt.Sprintf("%s: %d x %s", req.Title, req.SeatCount, req.CategoryName)),
		PaymentMethod: stripe.String(p.paymentMethod),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	if req.Email != "" {
		params.ReceiptEmail = stripe.String(req.Email)
	}
	params.AddMetadata("order_id", req.OrderID)
	params.AddMetadata("attempt", strconv.Itoa(attempt))
	params.SetIdempotencyKey(fmt.Sprintf("%s-%d", req.OrderID, attempt))

	pi, err := p.client.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return models.ChargeResult{
				Success:  false,
				Error:    stripeErr.Msg,
				CanRetry: stripeErr.Code == stripe.ErrorCodeProcessingError,
			}, nil
		}
		return models.ChargeResult{}, fmt.Errorf("failed to create payment intent: %w", err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return models.ChargeResult{
			Success:  false,
			Error:    fmt.Sprintf("payment intent %s is %s", pi.ID, pi.Status),
			CanRetry: false,
		}, nil
	}
	return models.ChargeResult{Success: true, TransactionID: pi.ID}, nil
}
