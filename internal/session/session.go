// Package session runs one checkout session: the seat inventory (or
// category picker), the wizard, pricing and the countdown, all owned by a
// single goroutine. Every operation is a command executed on that goroutine,
// interleaved with timer ticks, so the session state never needs a lock.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/cx-tal-miterani/ticket-checkout/internal/catalog"
	"github.com/cx-tal-miterani/ticket-checkout/internal/logging"
	"github.com/cx-tal-miterani/ticket-checkout/internal/models"
	"github.com/cx-tal-miterani/ticket-checkout/internal/pricing"
	"github.com/cx-tal-miterani/ticket-checkout/internal/seating"
	"github.com/cx-tal-miterani/ticket-checkout/internal/wizard"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.temporal.io/sdk/log"
)

var (
	ErrSessionExpired = errors.New("session expired")
	ErrSessionClosed  = errors.New("session closed")
	ErrWrongMode      = errors.New("operation not available in this selection mode")
)

// Mode is how seats are chosen.
type Mode string

const (
	ModeSeatMap  Mode = "seat_map"
	ModeCategory Mode = "category"
)

// ParseMode defaults to the seat map when the event has one.
func ParseMode(s string, event catalog.Event) (Mode, error) {
	switch Mode(s) {
	case "":
		if event.HasSeatMap {
			return ModeSeatMap, nil
		}
		return ModeCategory, nil
	case ModeCategory:
		return ModeCategory, nil
	case ModeSeatMap:
		if !event.HasSeatMap {
			return "", fmt.Errorf("%w: event %s has no seat map", ErrWrongMode, event.ID)
		}
		return ModeSeatMap, nil
	}
	return "", fmt.Errorf("%w: %q", ErrWrongMode, s)
}

type Status string

const (
	StatusOpen      Status = "open"
	StatusSubmitted Status = "submitted"
	StatusAbandoned Status = "abandoned"
)

// Abandon reasons
const (
	ReasonExpired   = "expired"
	ReasonCancelled = "cancelled"
)

// Listener observes a session. Its methods run on the session goroutine and
// must not call back into the session.
type Listener interface {
	StepCompleted(s *Session, completed, next wizard.Stage)
	Notice(s *Session, n models.Notice)
	Submitted(s *Session, order models.Order)
	Abandoned(s *Session, reason string)
}

type nopListener struct{}

func (nopListener) StepCompleted(*Session, wizard.Stage, wizard.Stage) {}
func (nopListener) Notice(*Session, models.Notice)                     {}
func (nopListener) Submitted(*Session, models.Order)                   {}
func (nopListener) Abandoned(*Session, string)                         {}

// Config carries the collaborators of a session. Zero values get defaults.
type Config struct {
	Budget   time.Duration
	Clock    clockwork.Clock
	Rand     *rand.Rand
	Logger   log.Logger
	Listener Listener
}

// Session is a single checkout.
type Session struct {
	id        string
	event     catalog.Event
	mode      Mode
	clock     clockwork.Clock
	logger    log.Logger
	listener  Listener
	createdAt time.Time

	// owned by the loop goroutine
	inventory *seating.Inventory
	picker    *seating.CategoryPicker
	wizard    *wizard.Wizard
	timer     *Timer
	status    Status
	reason    string
	order     *models.Order
	closedAt  time.Time

	// final is written once by the loop before done is closed
	final View

	cmds chan func()
	done chan struct{}
}

// Open builds a session for event and starts its loop.
func Open(event catalog.Event, mode Mode, cfg Config) *Session {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(cfg.Clock.Now().UnixNano()))
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.Listener == nil {
		cfg.Listener = nopListener{}
	}

	s := &Session{
		id:        uuid.New().String(),
		event:     event,
		mode:      mode,
		clock:     cfg.Clock,
		listener:  cfg.Listener,
		createdAt: cfg.Clock.Now(),
		status:    StatusOpen,
		cmds:      make(chan func()),
		done:      make(chan struct{}),
	}
	s.logger = log.With(cfg.Logger, "sessionId", s.id, "eventId", event.ID)

	max := seating.MaxCategoryQuantity
	if mode == ModeSeatMap {
		max = seating.MaxSeatMapSelection
		s.inventory = seating.NewInventory(event.ID, cfg.Rand, max)
	} else {
		s.picker = seating.NewCategoryPicker(cfg.Rand, max)
	}
	s.wizard = wizard.New(max, wizard.WithObserver(func(completed, next wizard.Stage) {
		s.listener.StepCompleted(s, completed, next)
	}))
	s.timer = NewTimer(cfg.Clock, cfg.Budget)

	s.logger.Info("Session opened", "mode", mode, "budgetSeconds", s.timer.Remaining())
	go s.run()
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Event() catalog.Event {
	return s.event
}

func (s *Session) Mode() Mode {
	return s.mode
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Done is closed once the session reached a terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) run() {
	defer close(s.done)
	for {
		select {
		case cmd := <-s.cmds:
			cmd()
		case <-s.timer.C():
			if s.timer.Tick() {
				s.expire()
			}
		}
		if s.status != StatusOpen {
			s.final = s.snapshot()
			return
		}
	}
}

// do runs fn on the session goroutine and waits for it.
func (s *Session) do(ctx context.Context, fn func() error) error {
	reply := make(chan error, 1)
	cmd := func() { reply <- fn() }

	select {
	case s.cmds <- cmd:
	case <-s.done:
		return s.terminalErr()
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// terminalErr must only be called after done is closed.
func (s *Session) terminalErr() error {
	if s.reason == ReasonExpired {
		return ErrSessionExpired
	}
	return ErrSessionClosed
}

func isTerminal(err error) bool {
	return errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrSessionClosed)
}

// View returns the current state of the session. A closed session returns
// its final state.
func (s *Session) View(ctx context.Context) (View, error) {
	var v View
	err := s.do(ctx, func() error {
		v = s.snapshot()
		return nil
	})
	if isTerminal(err) {
		return s.final, nil
	}
	return v, err
}

// SeatMap returns the seat rows of a seat-map session.
func (s *Session) SeatMap(ctx context.Context) (SeatMap, error) {
	var m SeatMap
	err := s.do(ctx, func() error {
		if s.inventory == nil {
			return ErrWrongMode
		}
		m = SeatMap{
			Rows:   s.inventory.Rows(),
			Counts: s.inventory.Counts(),
			Max:    s.inventory.Max(),
		}
		return nil
	})
	return m, err
}

// ToggleSeat selects or deselects a seat and re-prices the draft.
func (s *Session) ToggleSeat(ctx context.Context, id seating.SeatID) (View, error) {
	return s.mutate(ctx, func() error {
		if s.inventory == nil {
			return ErrWrongMode
		}
		sel, err := s.inventory.Toggle(id)
		if err != nil {
			return err
		}
		category, _ := sel.PrimaryCategory()
		return s.wizard.SetSeats(sel.IDs(), category)
	})
}

// ChooseCategory sets the tier and quantity of a picker session.
func (s *Session) ChooseCategory(ctx context.Context, id catalog.CategoryID, quantity int) (View, error) {
	return s.mutate(ctx, func() error {
		if s.picker == nil {
			return ErrWrongMode
		}
		choice, err := s.picker.Choose(id, quantity)
		if err != nil {
			return err
		}
		return s.wizard.SetCategory(choice.Category, choice.Quantity)
	})
}

func (s *Session) SetAddOns(ctx context.Context, ids []catalog.AddOnID, insurance bool) (View, error) {
	return s.mutate(ctx, func() error {
		return s.wizard.SetAddOns(ids, insurance)
	})
}

func (s *Session) SetContact(ctx context.Context, c wizard.Contact, guests []wizard.Guest) (View, error) {
	return s.mutate(ctx, func() error {
		return s.wizard.SetContact(c, guests)
	})
}

// Advance moves to the next stage when the current one validates.
func (s *Session) Advance(ctx context.Context) (View, error) {
	return s.mutate(ctx, func() error {
		err := s.wizard.Advance()
		s.noticeFor(err)
		return err
	})
}

func (s *Session) Retreat(ctx context.Context) (View, error) {
	return s.mutate(ctx, s.wizard.Retreat)
}

// Submit freezes the draft into an order and closes the session. The order
// is handed to the listener before Submit returns.
func (s *Session) Submit(ctx context.Context) (models.Order, error) {
	var order models.Order
	err := s.do(ctx, func() error {
		breakdown, err := s.quote(s.wizard.Draft())
		if err != nil {
			return err
		}
		draft, err := s.wizard.Submit()
		if err != nil {
			s.noticeFor(err)
			return err
		}
		order = s.buildOrder(draft, breakdown)
		s.order = &order
		s.finish(StatusSubmitted, "")
		s.logger.Info("Session submitted", "orderId", order.ID, "total", order.Pricing.Total)
		s.listener.Submitted(s, order)
		return nil
	})
	return order, err
}

// Close cancels an open session. Closing a terminal session is a no-op.
func (s *Session) Close(ctx context.Context) error {
	err := s.do(ctx, func() error {
		s.abandon(ReasonCancelled)
		return nil
	})
	if isTerminal(err) {
		return nil
	}
	return err
}

func (s *Session) mutate(ctx context.Context, fn func() error) (View, error) {
	var v View
	err := s.do(ctx, func() error {
		err := fn()
		v = s.snapshot()
		return err
	})
	return v, err
}

func (s *Session) expire() {
	s.logger.Warn("Session expired", "stage", s.wizard.Stage())
	s.listener.Notice(s, models.Notice{
		Name:    models.NoticeSessionExpired,
		Message: "Your session has expired. Please start again.",
		Stage:   s.wizard.Stage().String(),
		At:      s.clock.Now(),
	})
	s.abandon(ReasonExpired)
}

func (s *Session) abandon(reason string) {
	if !s.wizard.Expire() {
		return
	}
	s.finish(StatusAbandoned, reason)
	s.logger.Info("Session abandoned", "reason", reason)
	s.listener.Abandoned(s, reason)
}

func (s *Session) finish(status Status, reason string) {
	s.timer.Stop()
	s.status = status
	s.reason = reason
	s.closedAt = s.clock.Now()
}

func (s *Session) noticeFor(err error) {
	var verr *wizard.ValidationError
	if !errors.As(err, &verr) {
		return
	}
	n := models.Notice{
		Name:   models.NoticeMissingInformation,
		Stage:  verr.Stage.String(),
		Fields: verr.Fields,
		At:     s.clock.Now(),
	}
	if verr.Stage == wizard.StageSeatSelection {
		n.Name = models.NoticeSelectionRequired
		n.Message = "Please select at least one seat or category."
	} else {
		n.Message = "Please fill in all required fields."
	}
	s.listener.Notice(s, n)
}

// lines prices the current selection: one line per category on the seat
// map, a single line in the picker.
func (s *Session) lines() []pricing.Line {
	if s.inventory != nil {
		counts := s.inventory.Selection().ByCategory()
		var lines []pricing.Line
		for _, c := range catalog.Categories() {
			if n := counts[c.ID]; n > 0 {
				lines = append(lines, pricing.Line{Category: c.ID, Quantity: n})
			}
		}
		return lines
	}
	if choice, ok := s.picker.Choice(); ok {
		return []pricing.Line{{Category: choice.Category, Quantity: choice.Quantity}}
	}
	return nil
}

func (s *Session) quote(d wizard.Draft) (pricing.Breakdown, error) {
	b, err := pricing.Quote(pricing.Input{
		Lines:     s.lines(),
		AddOns:    d.AddOns,
		Insurance: d.Insurance,
	})
	if err != nil {
		s.logger.Error("Failed to price draft", "error", err)
	}
	return b, err
}

func (s *Session) buildOrder(d wizard.Draft, breakdown pricing.Breakdown) models.Order {
	category, _ := catalog.LookupCategory(d.Category)
	var seats []string
	if len(d.Seats) > 0 {
		for _, id := range d.Seats {
			seats = append(seats, string(id))
		}
	} else {
		for i := 1; i <= d.Quantity; i++ {
			seats = append(seats, fmt.Sprintf("%s #%d", category.Name, i))
		}
	}
	return models.Order{
		ID:           uuid.New().String(),
		SessionID:    s.id,
		EventID:      s.event.ID,
		EventTitle:   s.event.Title,
		EventDate:    s.event.Date,
		Venue:        s.event.Venue,
		Category:     d.Category,
		CategoryName: category.Name,
		SeatCount:    d.SeatCount(),
		Seats:        seats,
		AddOns:       d.AddOns,
		Insurance:    d.Insurance,
		Pricing:      breakdown,
		Contact:      d.Contact,
		Guests:       d.Guests,
		CreatedAt:    s.clock.Now(),
	}
}
