package session

import (
	"time"

	"github.com/cx-tal-miterani/ticket-checkout/internal/models"
	"github.com/cx-tal-miterani/ticket-checkout/internal/pricing"
	"github.com/cx-tal-miterani/ticket-checkout/internal/seating"
	"github.com/cx-tal-miterani/ticket-checkout/internal/wizard"
)

// View is a point-in-time copy of a session for display
type View struct {
	ID               string                   `json:"id"`
	EventID          string                   `json:"eventId"`
	EventTitle       string                   `json:"eventTitle"`
	Mode             Mode                     `json:"mode"`
	Status           Status                   `json:"status"`
	Reason           string                   `json:"reason,omitempty"`
	Stage            wizard.Stage             `json:"stage"`
	Step             int                      `json:"step"`
	RemainingSeconds int                      `json:"remainingSeconds"`
	Urgent           bool                     `json:"urgent"`
	MaxSelectable    int                      `json:"maxSelectable"`
	Draft            wizard.Draft             `json:"draft"`
	Selection        []seating.Seat           `json:"selection,omitempty"`
	Options          []seating.CategoryOption `json:"options,omitempty"`
	Pricing          pricing.Breakdown        `json:"pricing"`
	Order            *models.Order            `json:"order,omitempty"`
	CreatedAt        time.Time                `json:"createdAt"`
	ClosedAt         *time.Time               `json:"closedAt,omitempty"`
}

// SeatMap is the seat grid of a seat-map session.
type SeatMap struct {
	Rows   [][]seating.Seat           `json:"rows"`
	Counts map[seating.SeatStatus]int `json:"counts"`
	Max    int                        `json:"max"`
}

func (s *Session) snapshot() View {
	draft := s.wizard.Draft()
	v := View{
		ID:               s.id,
		EventID:          s.event.ID,
		EventTitle:       s.event.Title,
		Mode:             s.mode,
		Status:           s.status,
		Reason:           s.reason,
		Stage:            s.wizard.Stage(),
		Step:             s.wizard.Stage().Step(),
		RemainingSeconds: s.timer.Remaining(),
		Urgent:           s.status == StatusOpen && s.timer.Urgent(),
		Draft:            draft,
		CreatedAt:        s.createdAt,
	}
	if s.inventory != nil {
		v.MaxSelectable = s.inventory.Max()
		if s.status == StatusOpen {
			v.Selection = s.inventory.Selection().Seats
		}
	} else {
		v.MaxSelectable = s.picker.Max()
		if s.status == StatusOpen {
			v.Options = s.picker.Options()
		}
	}
	if s.status == StatusOpen {
		v.Pricing, _ = s.quote(draft)
	}
	if s.order != nil {
		order := *s.order
		v.Order = &order
		v.Pricing = order.Pricing
	}
	if !s.closedAt.IsZero() {
		closedAt := s.closedAt
		v.ClosedAt = &closedAt
	}
	return v
}
