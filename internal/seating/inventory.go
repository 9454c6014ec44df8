package seating

import (
	"fmt"
	"math/rand"

	"github.com/cx-tal-miterani/ticket-checkout/internal/catalog"
)

// Inventory manages the seat map of one session. It is not safe for
// concurrent use; the owning session serializes access.
type Inventory struct {
	eventID  string
	rng      *rand.Rand
	max      int
	rows     [][]SeatID
	seats    map[SeatID]*Seat
	selected []SeatID
}

// NewInventory generates a fresh seat map for eventID.
func NewInventory(eventID string, rng *rand.Rand, max int) *Inventory {
	if max <= 0 {
		max = MaxSeatMapSelection
	}
	inv := &Inventory{eventID: eventID, rng: rng, max: max}
	inv.Regenerate()
	return inv
}

// Regenerate replaces the inventory with a newly generated seat map and
// clears the selection.
func (inv *Inventory) Regenerate() {
	generated := Generate(inv.eventID, inv.rng)
	inv.rows = make([][]SeatID, 0, len(generated))
	inv.seats = make(map[SeatID]*Seat)
	inv.selected = nil
	for _, line := range generated {
		ids := make([]SeatID, 0, len(line))
		for i := range line {
			seat := line[i]
			inv.seats[seat.ID] = &seat
			ids = append(ids, seat.ID)
		}
		inv.rows = append(inv.rows, ids)
	}
}

// Max returns the selection limit.
func (inv *Inventory) Max() int {
	return inv.max
}

// Toggle selects an available seat or deselects a selected one.
func (inv *Inventory) Toggle(id SeatID) (Selection, error) {
	seat, ok := inv.seats[id]
	if !ok {
		return inv.Selection(), fmt.Errorf("%w: %s", ErrSeatNotFound, id)
	}

	switch seat.Status {
	case SeatStatusOccupied, SeatStatusBlocked:
		return inv.Selection(), fmt.Errorf("%w: %s is %s", ErrSeatUnavailable, id, seat.Status)
	case SeatStatusSelected:
		seat.Status = SeatStatusAvailable
		inv.removeSelected(id)
		return inv.Selection(), nil
	}

	if len(inv.selected) >= inv.max {
		return inv.Selection(), fmt.Errorf("%w: at most %d seats", ErrSelectionLimitReached, inv.max)
	}
	seat.Status = SeatStatusSelected
	inv.selected = append(inv.selected, id)
	return inv.Selection(), nil
}

func (inv *Inventory) removeSelected(id SeatID) {
	for i, sid := range inv.selected {
		if sid == id {
			inv.selected = append(inv.selected[:i], inv.selected[i+1:]...)
			return
		}
	}
}

// Seat returns a copy of the seat with id.
func (inv *Inventory) Seat(id SeatID) (Seat, bool) {
	seat, ok := inv.seats[id]
	if !ok {
		return Seat{}, false
	}
	return *seat, true
}

// Rows returns a copy of the seat map, one slice per venue row.
func (inv *Inventory) Rows() [][]Seat {
	out := make([][]Seat, 0, len(inv.rows))
	for _, ids := range inv.rows {
		line := make([]Seat, 0, len(ids))
		for _, id := range ids {
			line = append(line, *inv.seats[id])
		}
		out = append(out, line)
	}
	return out
}

// Selection returns the selected seats in insertion order.
func (inv *Inventory) Selection() Selection {
	seats := make([]Seat, 0, len(inv.selected))
	for _, id := range inv.selected {
		seats = append(seats, *inv.seats[id])
	}
	return Selection{Seats: seats}
}

// Counts returns the number of seats per status.
func (inv *Inventory) Counts() map[SeatStatus]int {
	counts := make(map[SeatStatus]int, 4)
	for _, seat := range inv.seats {
		counts[seat.Status]++
	}
	return counts
}

// Selection is a snapshot of the selected seats.
type Selection struct {
	Seats []Seat `json:"seats"`
}

func (s Selection) Count() int {
	return len(s.Seats)
}

// IDs returns the selected seat ids in insertion order.
func (s Selection) IDs() []SeatID {
	ids := make([]SeatID, len(s.Seats))
	for i, seat := range s.Seats {
		ids[i] = seat.ID
	}
	return ids
}

// ByCategory counts the selected seats per category.
func (s Selection) ByCategory() map[catalog.CategoryID]int {
	out := make(map[catalog.CategoryID]int)
	for _, seat := range s.Seats {
		out[seat.Category]++
	}
	return out
}

// PrimaryCategory infers the category of the selection: the one holding the
// most seats, ties going to the more expensive tier. It returns false for an
// empty selection.
func (s Selection) PrimaryCategory() (catalog.CategoryID, bool) {
	var best catalog.CategoryID
	bestCount := 0
	for cat, n := range s.ByCategory() {
		if n > bestCount || (n == bestCount && cat.Rank() > best.Rank()) {
			best, bestCount = cat, n
		}
	}
	return best, bestCount > 0
}
