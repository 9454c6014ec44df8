package catalog

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var ErrEventNotFound = errors.New("event not found")

// Event represents a ticketed event
type Event struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Venue      string    `json:"venue"`
	Date       time.Time `json:"date"`
	HasSeatMap bool      `json:"hasSeatMap"`
}

// Events is an in-memory event listing.
type Events struct {
	byID map[string]Event
}

// NewEvents indexes the given events by id.
func NewEvents(events ...Event) *Events {
	e := &Events{byID: make(map[string]Event, len(events))}
	for _, ev := range events {
		e.byID[ev.ID] = ev
	}
	return e
}

// SampleEvents seeds a listing relative to now.
func SampleEvents(now time.Time) *Events {
	return NewEvents(
		Event{
			ID:         "EV001",
			Title:      "Arijit Singh Live",
			Venue:      "NSCI Dome, Mumbai",
			Date:       now.Add(72 * time.Hour),
			HasSeatMap: true,
		},
		Event{
			ID:         "EV002",
			Title:      "Sunburn Arena",
			Venue:      "Jawaharlal Nehru Stadium, Delhi",
			Date:       now.Add(10 * 24 * time.Hour),
			HasSeatMap: false,
		},
		Event{
			ID:         "EV003",
			Title:      "Comedy Night with Zakir Khan",
			Venue:      "Phoenix Marketcity, Bengaluru",
			Date:       now.Add(36 * time.Hour),
			HasSeatMap: true,
		},
	)
}

// Get returns the event with id.
func (e *Events) Get(id string) (Event, error) {
	ev, ok := e.byID[id]
	if !ok {
		return Event{}, fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	return ev, nil
}

// List returns all events ordered by date.
func (e *Events) List() []Event {
	out := make([]Event, 0, len(e.byID))
	for _, ev := range e.byID {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
