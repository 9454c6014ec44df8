package activities

import (
	"context"
	"fmt"

	"github.com/cx-tal-miterani/ticket-checkout/internal/models"
	"github.com/cx-tal-miterani/ticket-checkout/internal/payment"
	"go.temporal.io/sdk/activity"
)

// Activity names as registered on the worker
const (
	ChargePaymentName = "ChargePayment"
	RecordPaymentName = "RecordPayment"
)

// PaymentLedger stores the settled state of a payment
type PaymentLedger interface {
	RecordPayment(ctx context.Context, result models.PaymentResult) error
}

// Activities holds the dependencies of the payment activities
type Activities struct {
	processor payment.Processor
	ledger    PaymentLedger
}

// NewActivities creates the activity set. ledger may be nil, in which case
// RecordPayment only logs.
func NewActivities(processor payment.Processor, ledger PaymentLedger) *Activities {
	return &Activities{processor: processor, ledger: ledger}
}

// ChargePaymentInput is the input for ChargePayment
type ChargePaymentInput struct {
	Request models.PaymentRequest `json:"request"`
	Attempt int                   `json:"attempt"`
}

// ChargePayment makes a single charge attempt. A decline is a successful
// activity with Success=false; only an incomplete attempt returns an error.
func (a *Activities) ChargePayment(ctx context.Context, input ChargePaymentInput) (*models.ChargeResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Charging payment", "orderId", input.Request.OrderID, "amount", input.Request.TotalAmount, "attempt", input.Attempt)

	result, err := a.processor.Charge(ctx, input.Request, input.Attempt)
	if err != nil {
		logger.Error("Charge attempt failed", "orderId", input.Request.OrderID, "error", err)
		return nil, fmt.Errorf("charge attempt %d failed: %w", input.Attempt, err)
	}

	if result.Success {
		logger.Info("Payment charged", "orderId", input.Request.OrderID, "transactionId", result.TransactionID)
	} else {
		logger.Warn("Payment declined", "orderId", input.Request.OrderID, "reason", result.Error, "canRetry", result.CanRetry)
	}
	return &result, nil
}

// RecordPayment stores the final payment state of an order
func (a *Activities) RecordPayment(ctx context.Context, result models.PaymentResult) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Recording payment", "orderId", result.OrderID, "success", result.Success, "attempts", result.Attempts)

	if a.ledger == nil {
		return nil
	}
	if err := a.ledger.RecordPayment(ctx, result); err != nil {
		return fmt.Errorf("failed to record payment for %s: %w", result.OrderID, err)
	}
	return nil
}
