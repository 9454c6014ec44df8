package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/cx-tal-miterani/ticket-checkout/internal/catalog"
	"github.com/cx-tal-miterani/ticket-checkout/internal/logging"
	"github.com/cx-tal-miterani/ticket-checkout/internal/models"
	"github.com/cx-tal-miterani/ticket-checkout/internal/seating"
	"github.com/cx-tal-miterani/ticket-checkout/internal/session"
	"github.com/cx-tal-miterani/ticket-checkout/internal/wizard"
	"github.com/jonboulle/clockwork"
	"go.temporal.io/sdk/log"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionOpen     = errors.New("session is still open")
)

// PaymentGateway charges a submitted order. It may block for the whole
// payment, so it is always called off the session goroutine.
type PaymentGateway interface {
	Pay(ctx context.Context, req models.PaymentRequest) (models.PaymentResult, error)
}

// BookingStore persists settled bookings
type BookingStore interface {
	SaveBooking(ctx context.Context, record models.BookingRecord) error
}

// Notifier delivers named notices to whoever watches a session. It must not
// block.
type Notifier interface {
	Notify(sessionID string, n models.Notice)
}

// ActivityTracker records analytics events. Failures are logged and never
// affect the checkout.
type ActivityTracker interface {
	Track(ctx context.Context, name string, payload map[string]any) error
}

// OutcomeCache keeps terminal outcomes after their session is reaped.
type OutcomeCache interface {
	SaveOutcome(ctx context.Context, outcome models.Outcome) error
	LoadOutcome(ctx context.Context, sessionID string) (models.Outcome, bool, error)
}

// CheckoutService defines the checkout service interface
type CheckoutService interface {
	ListEvents(ctx context.Context) []catalog.Event
	GetEvent(ctx context.Context, eventID string) (catalog.Event, error)
	OpenSession(ctx context.Context, eventID string, mode string) (session.View, error)
	CloseSession(ctx context.Context, sessionID string) error
	View(ctx context.Context, sessionID string) (session.View, error)
	SeatMap(ctx context.Context, sessionID string) (session.SeatMap, error)
	ToggleSeat(ctx context.Context, sessionID string, seatID string) (session.View, error)
	ChooseCategory(ctx context.Context, sessionID string, category string, quantity int) (session.View, error)
	SetAddOns(ctx context.Context, sessionID string, addOns []string, insurance bool) (session.View, error)
	SetContact(ctx context.Context, sessionID string, contact wizard.Contact, guests []wizard.Guest) (session.View, error)
	Advance(ctx context.Context, sessionID string) (session.View, error)
	Retreat(ctx context.Context, sessionID string) (session.View, error)
	Submit(ctx context.Context, sessionID string) (models.Order, error)
	Outcome(ctx context.Context, sessionID string) (models.Outcome, error)
	Reap(ctx context.Context, grace time.Duration) int
	Shutdown(ctx context.Context) error
}

// Options wires the service. Events and Payments are required; the other
// collaborators are optional.
type Options struct {
	Events         *catalog.Events
	Payments       PaymentGateway
	Bookings       BookingStore
	Notifier       Notifier
	Tracker        ActivityTracker
	Outcomes       OutcomeCache
	Clock          clockwork.Clock
	Budget         time.Duration
	PaymentTimeout time.Duration
	NewRand        func() *rand.Rand
	NewBookingID   func() string
	Logger         log.Logger
}

// checkoutServiceImpl implements CheckoutService
type checkoutServiceImpl struct {
	opts Options

	mu       sync.RWMutex
	sessions map[string]*session.Session
	outcomes map[string]models.Outcome

	payments sync.WaitGroup
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(opts Options) CheckoutService {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Budget <= 0 {
		opts.Budget = session.DefaultBudget
	}
	if opts.PaymentTimeout <= 0 {
		opts.PaymentTimeout = 2 * time.Minute
	}
	if opts.NewRand == nil {
		opts.NewRand = func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		}
	}
	if opts.NewBookingID == nil {
		opts.NewBookingID = newBookingID
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &checkoutServiceImpl{
		opts:     opts,
		sessions: make(map[string]*session.Session),
		outcomes: make(map[string]models.Outcome),
	}
}

func (s *checkoutServiceImpl) ListEvents(ctx context.Context) []catalog.Event {
	return s.opts.Events.List()
}

func (s *checkoutServiceImpl) GetEvent(ctx context.Context, eventID string) (catalog.Event, error) {
	return s.opts.Events.Get(eventID)
}

func (s *checkoutServiceImpl) OpenSession(ctx context.Context, eventID string, mode string) (session.View, error) {
	event, err := s.opts.Events.Get(eventID)
	if err != nil {
		return session.View{}, err
	}
	m, err := session.ParseMode(mode, event)
	if err != nil {
		return session.View{}, err
	}

	sess := session.Open(event, m, session.Config{
		Budget:   s.opts.Budget,
		Clock:    s.opts.Clock,
		Rand:     s.opts.NewRand(),
		Logger:   s.opts.Logger,
		Listener: s,
	})

	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()

	return sess.View(ctx)
}

func (s *checkoutServiceImpl) session(sessionID string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return sess, nil
}

func (s *checkoutServiceImpl) CloseSession(ctx context.Context, sessionID string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	return sess.Close(ctx)
}

func (s *checkoutServiceImpl) View(ctx context.Context, sessionID string) (session.View, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return session.View{}, err
	}
	return sess.View(ctx)
}

func (s *checkoutServiceImpl) SeatMap(ctx context.Context, sessionID string) (session.SeatMap, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return session.SeatMap{}, err
	}
	return sess.SeatMap(ctx)
}

func (s *checkoutServiceImpl) ToggleSeat(ctx context.Context, sessionID string, seatID string) (session.View, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return session.View{}, err
	}
	return sess.ToggleSeat(ctx, seating.SeatID(seatID))
}

func (s *checkoutServiceImpl) ChooseCategory(ctx context.Context, sessionID string, category string, quantity int) (session.View, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return session.View{}, err
	}
	id, err := catalog.ParseCategory(category)
	if err != nil {
		return session.View{}, err
	}
	return sess.ChooseCategory(ctx, id, quantity)
}

func (s *checkoutServiceImpl) SetAddOns(ctx context.Context, sessionID string, addOns []string, insurance bool) (session.View, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return session.View{}, err
	}
	ids := make([]catalog.AddOnID, 0, len(addOns))
	for _, raw := range addOns {
		id, err := catalog.ParseAddOn(raw)
		if err != nil {
			return session.View{}, err
		}
		ids = append(ids, id)
	}
	return sess.SetAddOns(ctx, ids, insurance)
}

func (s *checkoutServiceImpl) SetContact(ctx context.Context, sessionID string, contact wizard.Contact, guests []wizard.Guest) (session.View, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return session.View{}, err
	}
	return sess.SetContact(ctx, contact, guests)
}

func (s *checkoutServiceImpl) Advance(ctx context.Context, sessionID string) (session.View, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return session.View{}, err
	}
	return sess.Advance(ctx)
}

func (s *checkoutServiceImpl) Retreat(ctx context.Context, sessionID string) (session.View, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return session.View{}, err
	}
	return sess.Retreat(ctx)
}

func (s *checkoutServiceImpl) Submit(ctx context.Context, sessionID string) (models.Order, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return models.Order{}, err
	}
	return sess.Submit(ctx)
}

// Outcome returns the terminal outcome of a session, from memory or, once
// the session was reaped, from the outcome cache.
func (s *checkoutServiceImpl) Outcome(ctx context.Context, sessionID string) (models.Outcome, error) {
	s.mu.RLock()
	outcome, ok := s.outcomes[sessionID]
	_, open := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return outcome, nil
	}
	if open {
		return models.Outcome{}, fmt.Errorf("%w: %s", ErrSessionOpen, sessionID)
	}

	if s.opts.Outcomes != nil {
		cached, found, err := s.opts.Outcomes.LoadOutcome(ctx, sessionID)
		if err != nil {
			return models.Outcome{}, fmt.Errorf("failed to load outcome: %w", err)
		}
		if found {
			return cached, nil
		}
	}
	return models.Outcome{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
}

// Shutdown cancels every open session and waits for in-flight payments.
func (s *checkoutServiceImpl) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	open := make([]*session.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.RUnlock()

	for _, sess := range open {
		if err := sess.Close(ctx); err != nil {
			return fmt.Errorf("failed to close session %s: %w", sess.ID(), err)
		}
	}

	done := make(chan struct{})
	go func() {
		s.payments.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
