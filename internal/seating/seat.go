// Package seating models the per-session seat inventory: a generated seat
// map with mutually exclusive seat states, and the simplified category picker
// used for events without a seat map.
package seating

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/cx-tal-miterani/ticket-checkout/internal/catalog"
)

var (
	ErrSeatNotFound          = errors.New("seat not found")
	ErrSeatUnavailable       = errors.New("seat unavailable")
	ErrSelectionLimitReached = errors.New("selection limit reached")
	ErrInvalidQuantity       = errors.New("quantity must be at least 1")
)

const (
	// MaxSeatMapSelection caps how many seats one session may select on the map.
	MaxSeatMapSelection = 6
	// MaxCategoryQuantity caps the quantity in the category picker.
	MaxCategoryQuantity = 10

	occupiedRate = 0.30
	blockedRate  = 0.03
)

// SeatID is "<section>-<row>-<col>", e.g. "B-3-07".
type SeatID string

// NewSeatID builds the composite identity of a seat.
func NewSeatID(section string, row, col int) SeatID {
	return SeatID(fmt.Sprintf("%s-%d-%02d", section, row, col))
}

type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "available"
	SeatStatusSelected  SeatStatus = "selected"
	SeatStatusOccupied  SeatStatus = "occupied"
	SeatStatusBlocked   SeatStatus = "blocked"
)

// ViewQuality is ordered: a larger value is a better view.
type ViewQuality int

const (
	ViewRestricted ViewQuality = iota
	ViewStandard
	ViewGood
	ViewExcellent
)

func (v ViewQuality) String() string {
	switch v {
	case ViewRestricted:
		return "restricted"
	case ViewStandard:
		return "standard"
	case ViewGood:
		return "good"
	case ViewExcellent:
		return "excellent"
	}
	return "unknown"
}

func (v ViewQuality) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *ViewQuality) UnmarshalText(text []byte) error {
	for q := ViewRestricted; q <= ViewExcellent; q++ {
		if q.String() == string(text) {
			*v = q
			return nil
		}
	}
	return fmt.Errorf("unknown view quality %q", text)
}

// Seat represents a seat in a session's seat map
type Seat struct {
	ID         SeatID             `json:"id"`
	EventID    string             `json:"eventId"`
	Section    string             `json:"section"`
	Row        int                `json:"row"`
	Column     int                `json:"column"`
	Category   catalog.CategoryID `json:"category"`
	Price      int64              `json:"price"`
	View       ViewQuality        `json:"view"`
	Accessible bool               `json:"accessible"`
	Status     SeatStatus         `json:"status"`
}

// Section describes one block of the venue.
type Section struct {
	Name     string
	Category catalog.CategoryID
	Rows     int
	Cols     int
}

// DefaultLayout is the fixed venue layout, front to back.
var DefaultLayout = []Section{
	{Name: "A", Category: catalog.CategoryVIP, Rows: 3, Cols: 10},
	{Name: "B", Category: catalog.CategoryPremium, Rows: 4, Cols: 12},
	{Name: "C", Category: catalog.CategoryStandard, Rows: 6, Cols: 14},
	{Name: "D", Category: catalog.CategoryEconomy, Rows: 6, Cols: 16},
}

// Generate builds the seat map for an event, one slice per venue row. The
// layout is fixed; initial occupancy is drawn from rng to simulate live demand.
func Generate(eventID string, rng *rand.Rand) [][]Seat {
	var rows [][]Seat
	for _, sec := range DefaultLayout {
		price := sec.Category.Price()
		for row := 1; row <= sec.Rows; row++ {
			line := make([]Seat, 0, sec.Cols)
			for col := 1; col <= sec.Cols; col++ {
				line = append(line, Seat{
					ID:         NewSeatID(sec.Name, row, col),
					EventID:    eventID,
					Section:    sec.Name,
					Row:        row,
					Column:     col,
					Category:   sec.Category,
					Price:      price,
					View:       viewFor(sec, row),
					Accessible: row == sec.Rows && (col == 1 || col == sec.Cols),
					Status:     initialStatus(rng),
				})
			}
			rows = append(rows, line)
		}
	}
	return rows
}

func initialStatus(rng *rand.Rand) SeatStatus {
	r := rng.Float64()
	switch {
	case r < blockedRate:
		return SeatStatusBlocked
	case r < blockedRate+occupiedRate:
		return SeatStatusOccupied
	default:
		return SeatStatusAvailable
	}
}

func viewFor(sec Section, row int) ViewQuality {
	switch sec.Category {
	case catalog.CategoryVIP:
		return ViewExcellent
	case catalog.CategoryPremium:
		if row == 1 {
			return ViewExcellent
		}
		return ViewGood
	case catalog.CategoryStandard:
		if row <= 2 {
			return ViewGood
		}
		return ViewStandard
	default:
		if row > sec.Rows-2 {
			return ViewRestricted
		}
		return ViewStandard
	}
}
