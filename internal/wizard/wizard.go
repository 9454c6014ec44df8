// Package wizard implements the four-stage booking wizard: seat selection,
// add-ons, contact details and review. Each stage has an entry validator that
// gates Advance; Submitted and Abandoned are terminal.
package wizard

import (
	"errors"
	"fmt"

	"github.com/cx-tal-miterani/ticket-checkout/internal/catalog"
	"github.com/cx-tal-miterani/ticket-checkout/internal/seating"
	"github.com/go-playground/validator/v10"
)

var (
	ErrTerminal     = errors.New("wizard is in a terminal state")
	ErrNotReviewing = errors.New("submit is only allowed from review")
)

type Stage int

const (
	StageSeatSelection Stage = iota
	StageAddOns
	StageContactDetails
	StageReviewAndPay
	StageSubmitted
	StageAbandoned
)

var stageNames = map[Stage]string{
	StageSeatSelection:  "seat_selection",
	StageAddOns:         "add_ons",
	StageContactDetails: "contact_details",
	StageReviewAndPay:   "review_and_pay",
	StageSubmitted:      "submitted",
	StageAbandoned:      "abandoned",
}

func (s Stage) String() string {
	if n, ok := stageNames[s]; ok {
		return n
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(text []byte) error {
	for stage, name := range stageNames {
		if name == string(text) {
			*s = stage
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", text)
}

// Terminal reports whether no transition can leave s.
func (s Stage) Terminal() bool {
	return s == StageSubmitted || s == StageAbandoned
}

// Step is the 1-based position of an interactive stage, 0 for terminals.
func (s Stage) Step() int {
	if s.Terminal() {
		return 0
	}
	return int(s) + 1
}

// Observer is called after every successful forward transition.
type Observer func(completed, next Stage)

type Option func(*Wizard)

// WithObserver installs an observer for step completions.
func WithObserver(o Observer) Option {
	return func(w *Wizard) {
		w.observer = o
	}
}

// Wizard is not safe for concurrent use.
type Wizard struct {
	stage    Stage
	draft    Draft
	maxSeats int
	validate *validator.Validate
	observer Observer
}

// New returns a wizard on the first stage with an empty draft. maxSeats
// bounds the seat count accepted by the selection stage.
func New(maxSeats int, opts ...Option) *Wizard {
	w := &Wizard{
		stage:    StageSeatSelection,
		maxSeats: maxSeats,
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Wizard) Stage() Stage {
	return w.stage
}

// Draft returns a copy of the current draft.
func (w *Wizard) Draft() Draft {
	return w.draft.clone()
}

func (w *Wizard) editable() error {
	if w.stage.Terminal() {
		return fmt.Errorf("%w: %s", ErrTerminal, w.stage)
	}
	return nil
}

// SetSeats records a seat-map selection and its inferred category.
func (w *Wizard) SetSeats(ids []seating.SeatID, category catalog.CategoryID) error {
	if err := w.editable(); err != nil {
		return err
	}
	w.draft.Seats = append([]seating.SeatID(nil), ids...)
	w.draft.Category = category
	w.draft.Quantity = len(ids)
	return nil
}

// SetCategory records a picker-mode selection.
func (w *Wizard) SetCategory(category catalog.CategoryID, quantity int) error {
	if err := w.editable(); err != nil {
		return err
	}
	w.draft.Seats = nil
	w.draft.Category = category
	w.draft.Quantity = quantity
	return nil
}

// SetAddOns replaces the add-on set and the insurance flag.
func (w *Wizard) SetAddOns(ids []catalog.AddOnID, insurance bool) error {
	if err := w.editable(); err != nil {
		return err
	}
	w.draft.AddOns = catalog.NormalizeAddOns(ids)
	w.draft.Insurance = insurance
	return nil
}

// SetContact replaces the contact and guest records.
func (w *Wizard) SetContact(c Contact, guests []Guest) error {
	if err := w.editable(); err != nil {
		return err
	}
	w.draft.Contact = c
	w.draft.Guests = append([]Guest(nil), guests...)
	return nil
}

// Check validates the current stage without moving.
func (w *Wizard) Check() error {
	if err := w.editable(); err != nil {
		return err
	}
	return w.check(w.stage)
}

// Advance validates the current stage and moves to the next one. On
// ReviewAndPay it is a no-op; use Submit.
func (w *Wizard) Advance() error {
	if err := w.editable(); err != nil {
		return err
	}
	if w.stage == StageReviewAndPay {
		return nil
	}
	if err := w.check(w.stage); err != nil {
		return err
	}
	completed := w.stage
	w.stage++
	if w.observer != nil {
		w.observer(completed, w.stage)
	}
	return nil
}

// Retreat moves one stage back without validation. It is a no-op on the
// first stage.
func (w *Wizard) Retreat() error {
	if err := w.editable(); err != nil {
		return err
	}
	if w.stage > StageSeatSelection {
		w.stage--
	}
	return nil
}

// Submit re-validates every stage and freezes the draft.
func (w *Wizard) Submit() (Draft, error) {
	if err := w.editable(); err != nil {
		return Draft{}, err
	}
	if w.stage != StageReviewAndPay {
		return Draft{}, fmt.Errorf("%w: current stage is %s", ErrNotReviewing, w.stage)
	}
	if err := w.check(StageReviewAndPay); err != nil {
		return Draft{}, err
	}
	w.stage = StageSubmitted
	if w.observer != nil {
		w.observer(StageReviewAndPay, StageSubmitted)
	}
	return w.draft.clone(), nil
}

// Expire abandons the wizard from any non-terminal stage and discards the
// draft. It reports whether a transition happened.
func (w *Wizard) Expire() bool {
	if w.stage.Terminal() {
		return false
	}
	w.stage = StageAbandoned
	w.draft = Draft{}
	return true
}
