package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/cx-tal-miterani/ticket-checkout/internal/logging"
	"github.com/cx-tal-miterani/ticket-checkout/internal/models"
	"github.com/jonboulle/clockwork"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/log"
)

// WorkflowName is the name PaymentWorkflow is registered under on the worker
const WorkflowName = "PaymentWorkflow"

// TemporalGateway pays for orders by running PaymentWorkflow and waiting for
// its result.
type TemporalGateway struct {
	client    client.Client
	taskQueue string
}

// NewTemporalGateway creates a gateway that starts workflows on taskQueue
func NewTemporalGateway(c client.Client, taskQueue string) *TemporalGateway {
	return &TemporalGateway{client: c, taskQueue: taskQueue}
}

func (g *TemporalGateway) Pay(ctx context.Context, req models.PaymentRequest) (models.PaymentResult, error) {
	options := client.StartWorkflowOptions{
		ID:        "payment-" + req.OrderID,
		TaskQueue: g.taskQueue,
	}
	run, err := g.client.ExecuteWorkflow(ctx, options, WorkflowName, models.PaymentWorkflowInput{Request: req})
	if err != nil {
		return models.PaymentResult{}, fmt.Errorf("failed to start payment workflow: %w", err)
	}

	var result models.PaymentResult
	if err := run.Get(ctx, &result); err != nil {
		return models.PaymentResult{}, fmt.Errorf("payment workflow %s failed: %w", run.GetID(), err)
	}
	return result, nil
}

// DirectGateway runs the same attempt loop as PaymentWorkflow in process. It
// is used when no Temporal cluster is configured.
type DirectGateway struct {
	processor   Processor
	maxAttempts int
	timeout     time.Duration
	backoff     time.Duration
	clock       clockwork.Clock
	logger      log.Logger
}

// DirectOption configures a DirectGateway
type DirectOption func(*DirectGateway)

func WithClock(clock clockwork.Clock) DirectOption {
	return func(g *DirectGateway) { g.clock = clock }
}

func WithLogger(logger log.Logger) DirectOption {
	return func(g *DirectGateway) { g.logger = logger }
}

func WithBackoff(d time.Duration) DirectOption {
	return func(g *DirectGateway) { g.backoff = d }
}

// NewDirectGateway creates a gateway charging through processor
func NewDirectGateway(processor Processor, opts ...DirectOption) *DirectGateway {
	g := &DirectGateway{
		processor:   processor,
		maxAttempts: MaxAttempts,
		timeout:     AttemptTimeout,
		backoff:     RetryBackoff,
		clock:       clockwork.NewRealClock(),
		logger:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *DirectGateway) Pay(ctx context.Context, req models.PaymentRequest) (models.PaymentResult, error) {
	result := models.PaymentResult{OrderID: req.OrderID}
	backoff := g.backoff

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		result.Attempts = attempt

		charge, err := g.charge(ctx, req, attempt)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			g.logger.Warn("Payment attempt failed", "orderId", req.OrderID, "attempt", attempt, "error", err)
			result.FailureReason = err.Error()
		case charge.Success:
			g.logger.Info("Payment succeeded", "orderId", req.OrderID, "attempt", attempt)
			result.Success = true
			result.TransactionID = charge.TransactionID
			result.FailureReason = ""
			return result, nil
		default:
			g.logger.Warn("Payment declined", "orderId", req.OrderID, "attempt", attempt, "reason", charge.Error)
			result.FailureReason = charge.Error
			if !charge.CanRetry {
				return result, nil
			}
		}

		if attempt < g.maxAttempts {
			select {
			case <-g.clock.After(backoff):
			case <-ctx.Done():
				return result, ctx.Err()
			}
			backoff *= 2
		}
	}
	return result, nil
}

func (g *DirectGateway) charge(ctx context.Context, req models.PaymentRequest, attempt int) (models.ChargeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.processor.Charge(ctx, req, attempt)
}
