package service

import (
	"context"
	"time"

	"github.com/cx-tal-miterani/ticket-checkout/internal/models"
	"github.com/cx-tal-miterani/ticket-checkout/internal/session"
	"github.com/cx-tal-miterani/ticket-checkout/internal/wizard"
	"github.com/google/uuid"
)

const trackTimeout = 5 * time.Second

func newBookingID() string {
	return "BK-" + uuid.New().String()[:8]
}

// The methods below implement session.Listener. They run on the session
// goroutine, so anything slow is pushed to its own goroutine.

func (s *checkoutServiceImpl) StepCompleted(sess *session.Session, completed, next wizard.Stage) {
	s.track(models.ActivityStepCompleted, map[string]any{
		"sessionId": sess.ID(),
		"eventId":   sess.Event().ID,
		"stage":     completed.String(),
		"step":      completed.Step(),
		"next":      next.String(),
	})
}

func (s *checkoutServiceImpl) Notice(sess *session.Session, n models.Notice) {
	if s.opts.Notifier != nil {
		s.opts.Notifier.Notify(sess.ID(), n)
	}
}

func (s *checkoutServiceImpl) Submitted(sess *session.Session, order models.Order) {
	s.setOutcome(models.Outcome{
		SessionID:     sess.ID(),
		Status:        models.OutcomeSubmitted,
		OrderID:       order.ID,
		TotalAmount:   order.Pricing.Total,
		PaymentStatus: models.PaymentStatusPending,
		ClosedAt:      s.opts.Clock.Now(),
	})

	s.payments.Add(1)
	go func() {
		defer s.payments.Done()
		s.settle(sess.ID(), order)
	}()
}

func (s *checkoutServiceImpl) Abandoned(sess *session.Session, reason string) {
	outcome := models.Outcome{
		SessionID: sess.ID(),
		Status:    models.OutcomeAbandoned,
		Reason:    reason,
		ClosedAt:  s.opts.Clock.Now(),
	}
	s.setOutcome(outcome)
	s.track(models.ActivitySessionAbandoned, map[string]any{
		"sessionId": sess.ID(),
		"eventId":   sess.Event().ID,
		"reason":    reason,
	})
}

// settle pays for a submitted order, then persists the booking and records
// the final outcome.
func (s *checkoutServiceImpl) settle(sessionID string, order models.Order) {
	logger := s.opts.Logger
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.PaymentTimeout)
	defer cancel()

	result, err := s.opts.Payments.Pay(ctx, models.NewPaymentRequest(order))
	if err != nil {
		logger.Error("Payment failed", "orderId", order.ID, "error", err)
		result = models.PaymentResult{
			OrderID:       order.ID,
			Success:       false,
			FailureReason: err.Error(),
		}
	}

	record := models.NewBookingRecord(s.opts.NewBookingID(), order, result, s.opts.Clock.Now())
	if s.opts.Bookings != nil {
		// The payment context may already be spent by a timed out gateway.
		saveCtx, saveCancel := context.WithTimeout(context.Background(), trackTimeout)
		err := s.opts.Bookings.SaveBooking(saveCtx, record)
		saveCancel()
		if err != nil {
			logger.Error("Failed to save booking", "bookingId", record.ID, "orderId", order.ID, "error", err)
		}
	}

	outcome := models.Outcome{
		SessionID:     sessionID,
		Status:        models.OutcomeSubmitted,
		OrderID:       order.ID,
		TotalAmount:   order.Pricing.Total,
		PaymentStatus: models.PaymentStatusSucceeded,
		TransactionID: result.TransactionID,
		BookingID:     record.ID,
		FailureReason: result.FailureReason,
		ClosedAt:      order.CreatedAt,
	}
	if !result.Success {
		outcome.PaymentStatus = models.PaymentStatusFailed
	}
	s.setOutcome(outcome)

	logger.Info("Booking settled", "orderId", order.ID, "bookingId", record.ID, "status", record.Status)
	s.track(models.ActivityBookingCompleted, map[string]any{
		"sessionId":   sessionID,
		"orderId":     order.ID,
		"bookingId":   record.ID,
		"eventId":     order.EventID,
		"seatCount":   order.SeatCount,
		"totalAmount": order.Pricing.Total,
		"status":      string(record.Status),
	})
}

func (s *checkoutServiceImpl) setOutcome(outcome models.Outcome) {
	s.mu.Lock()
	s.outcomes[outcome.SessionID] = outcome
	s.mu.Unlock()
}

// track is fire-and-forget.
func (s *checkoutServiceImpl) track(name string, payload map[string]any) {
	if s.opts.Tracker == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), trackTimeout)
		defer cancel()
		if err := s.opts.Tracker.Track(ctx, name, payload); err != nil {
			s.opts.Logger.Warn("Failed to track activity", "activity", name, "error", err)
		}
	}()
}
