package wizard

import (
	"github.com/cx-tal-miterani/ticket-checkout/internal/catalog"
	"github.com/cx-tal-miterani/ticket-checkout/internal/seating"
)

// Contact holds the lead booker's details.
type Contact struct {
	Name             string `json:"name" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone" validate:"required,phone"`
	EmergencyContact string `json:"emergencyContact,omitempty"`
	SpecialRequests  string `json:"specialRequests,omitempty" validate:"max=500"`
}

// Guest is an additional attendee. Age is optional; zero means unset.
type Guest struct {
	Name string `json:"name" validate:"required"`
	Age  int    `json:"age,omitempty" validate:"omitempty,min=1,max=100"`
}

// Draft accumulates a session's choices. In seat-map mode Seats is set and
// Category is inferred from them; in picker mode Seats is empty and Quantity
// carries the count.
type Draft struct {
	Category  catalog.CategoryID `json:"category,omitempty"`
	Quantity  int                `json:"quantity"`
	Seats     []seating.SeatID   `json:"seats,omitempty"`
	AddOns    []catalog.AddOnID  `json:"addOns"`
	Insurance bool               `json:"insurance"`
	Contact   Contact            `json:"contact"`
	Guests    []Guest            `json:"guests"`
}

// SeatCount is the number of tickets in the draft.
func (d Draft) SeatCount() int {
	if len(d.Seats) > 0 {
		return len(d.Seats)
	}
	return d.Quantity
}

// GuestsRequired is max(0, SeatCount-1).
func (d Draft) GuestsRequired() int {
	if n := d.SeatCount() - 1; n > 0 {
		return n
	}
	return 0
}

func (d Draft) clone() Draft {
	c := d
	c.Seats = append([]seating.SeatID(nil), d.Seats...)
	c.AddOns = append([]catalog.AddOnID(nil), d.AddOns...)
	c.Guests = append([]Guest(nil), d.Guests...)
	return c
}
