package payment

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/cx-tal-miterani/ticket-checkout/internal/models"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stripe/stripe-go/v82"
)

const (
	// DefaultDeclineRate is the share of simulated charges the provider declines
	DefaultDeclineRate = 0.15
	// MaxAttempts is the maximum number of charge attempts per order
	MaxAttempts = 3
	// AttemptTimeout bounds a single charge attempt
	AttemptTimeout = 10 * time.Second
	// RetryBackoff is the wait before the second attempt; it doubles after that
	RetryBackoff = 2 * time.Second
)

// Processor charges a payment request once. A declined charge is reported in
// the result; an error means the attempt itself could not complete.
type Processor interface {
	Charge(ctx context.Context, req models.PaymentRequest, attempt int) (models.ChargeResult, error)
}

// SimulatedProcessor approves charges except for a random share it declines.
type SimulatedProcessor struct {
	declineRate float64
	delay       time.Duration
	clock       clockwork.Clock

	mu  sync.Mutex
	rng *rand.Rand
}

// SimulatedOption configures a SimulatedProcessor
type SimulatedOption func(*SimulatedProcessor)

// WithRand sets the source for decline decisions.
func WithRand(rng *rand.Rand) SimulatedOption {
	return func(p *SimulatedProcessor) { p.rng = rng }
}

// WithDelay makes every charge take d on the processor's clock.
func WithDelay(d time.Duration, clock clockwork.Clock) SimulatedOption {
	return func(p *SimulatedProcessor) {
		p.delay = d
		p.clock = clock
	}
}

// NewSimulatedProcessor creates a processor that declines roughly declineRate
// of all charges.
func NewSimulatedProcessor(declineRate float64, opts ...SimulatedOption) *SimulatedProcessor {
	p := &SimulatedProcessor{
		declineRate: declineRate,
		clock:       clockwork.NewRealClock(),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *SimulatedProcessor) Charge(ctx context.Context, req models.PaymentRequest, attempt int) (models.ChargeResult, error) {
	if req.TotalAmount <= 0 {
		return models.ChargeResult{
			Success:  false,
			Error:    fmt.Sprintf("invalid amount %d", req.TotalAmount),
			CanRetry: false,
		}, nil
	}

	if p.delay > 0 {
		select {
		case <-p.clock.After(p.delay):
		case <-ctx.Done():
			return models.ChargeResult{}, ctx.Err()
		}
	}

	p.mu.Lock()
	declined := p.rng.Float64() < p.declineRate
	p.mu.Unlock()

	if declined {
		return models.ChargeResult{
			Success:  false,
			Error:    "Payment declined by provider",
			CanRetry: true,
		}, nil
	}
	return models.ChargeResult{
		Success:       true,
		TransactionID: "TXN-" + uuid.New().String()[:8],
	}, nil
}

// NewProcessor returns a Stripe processor when secretKey is set and a
// simulated one otherwise.
func NewProcessor(secretKey, currency string, declineRate float64) Processor {
	if secretKey != "" {
		return NewStripeProcessor(stripe.NewClient(secretKey), currency, "")
	}
	return NewSimulatedProcessor(declineRate)
}
