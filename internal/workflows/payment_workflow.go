package workflows

import (
	"time"

	"github.com/cx-tal-miterani/ticket-checkout/internal/activities"
	"github.com/cx-tal-miterani/ticket-checkout/internal/models"
	"github.com/cx-tal-miterani/ticket-checkout/internal/payment"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	// PaymentTimeout is how long a single charge attempt may take (10 seconds)
	PaymentTimeout = payment.AttemptTimeout
	// MaxPaymentAttempts is the maximum number of charge attempts
	MaxPaymentAttempts = payment.MaxAttempts
	// RetryBackoff is the wait before the second attempt, doubled after that
	RetryBackoff = payment.RetryBackoff
)

// PaymentWorkflow charges an order, retrying declines and failed attempts up
// to MaxPaymentAttempts times, then records the outcome.
func PaymentWorkflow(ctx workflow.Context, input models.PaymentWorkflowInput) (*models.PaymentResult, error) {
	logger := workflow.GetLogger(ctx)
	req := input.Request
	logger.Info("Payment workflow started", "orderId", req.OrderID, "amount", req.TotalAmount)

	state := models.PaymentWorkflowState{
		OrderID: req.OrderID,
		Status:  models.PaymentStatusPending,
	}
	err := workflow.SetQueryHandler(ctx, models.QueryGetPaymentState, func() (models.PaymentWorkflowState, error) {
		return state, nil
	})
	if err != nil {
		return nil, err
	}

	// Activity options
	activityOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOpts)

	// Charges are retried by the loop below, never by the server
	paymentCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: PaymentTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})

	result := &models.PaymentResult{OrderID: req.OrderID}
	backoff := RetryBackoff

attempts:
	for attempt := 1; attempt <= MaxPaymentAttempts; attempt++ {
		result.Attempts = attempt
		state.Attempts = attempt

		var charge models.ChargeResult
		err := workflow.ExecuteActivity(paymentCtx, activities.ChargePaymentName, activities.ChargePaymentInput{
			Request: req,
			Attempt: attempt,
		}).Get(ctx, &charge)

		switch {
		case err != nil:
			logger.Warn("Charge attempt failed", "orderId", req.OrderID, "attempt", attempt, "error", err)
			result.FailureReason = err.Error()
		case charge.Success:
			result.Success = true
			result.TransactionID = charge.TransactionID
			result.FailureReason = ""
			break attempts
		default:
			logger.Warn("Payment declined", "orderId", req.OrderID, "attempt", attempt, "reason", charge.Error)
			result.FailureReason = charge.Error
			if !charge.CanRetry {
				break attempts
			}
		}
		state.FailureReason = result.FailureReason

		if attempt < MaxPaymentAttempts {
			if err := workflow.Sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff *= 2
		}
	}

	state.Status = models.PaymentStatusSucceeded
	if !result.Success {
		state.Status = models.PaymentStatusFailed
	}
	state.FailureReason = result.FailureReason

	if err := workflow.ExecuteActivity(ctx, activities.RecordPaymentName, *result).Get(ctx, nil); err != nil {
		logger.Error("Failed to record payment", "orderId", req.OrderID, "error", err)
	}

	logger.Info("Payment workflow completed", "orderId", req.OrderID, "success", result.Success, "attempts", result.Attempts)
	return result, nil
}
