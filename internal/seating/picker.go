package seating

import (
	"fmt"
	"math/rand"

	"github.com/cx-tal-miterani/ticket-checkout/internal/catalog"
)

// categoryCapacity is the total inventory per tier for a picker-mode event.
var categoryCapacity = map[catalog.CategoryID]int{
	catalog.CategoryEconomy:  1000,
	catalog.CategoryStandard: 600,
	catalog.CategoryPremium:  300,
	catalog.CategoryVIP:      100,
}

// CategoryOption is one row of the category picker.
type CategoryOption struct {
	ID          catalog.CategoryID `json:"id"`
	Name        string             `json:"name"`
	UnitPrice   int64              `json:"unitPrice"`
	Remaining   int                `json:"remaining"`
	Features    []string           `json:"features"`
	SoldPercent int                `json:"soldPercent"`
}

// Choice is the picker's current selection.
type Choice struct {
	Category catalog.CategoryID `json:"category"`
	Quantity int                `json:"quantity"`
}

// CategoryPicker is the simplified selection mode: pick a tier and a
// quantity instead of individual seats.
type CategoryPicker struct {
	options []CategoryOption
	max     int
	choice  *Choice
}

// NewCategoryPicker draws the remaining inventory of every tier from rng.
func NewCategoryPicker(rng *rand.Rand, max int) *CategoryPicker {
	if max <= 0 {
		max = MaxCategoryQuantity
	}
	p := &CategoryPicker{max: max}
	for _, c := range catalog.Categories() {
		capacity := categoryCapacity[c.ID]
		// between 30% and 100% sold
		sold := capacity * (30 + rng.Intn(71)) / 100
		soldPercent := 0
		if capacity > 0 {
			soldPercent = sold * 100 / capacity
		}
		p.options = append(p.options, CategoryOption{
			ID:          c.ID,
			Name:        c.Name,
			UnitPrice:   c.Price,
			Remaining:   capacity - sold,
			Features:    c.Features,
			SoldPercent: soldPercent,
		})
	}
	return p
}

// Options returns the picker rows, cheapest first.
func (p *CategoryPicker) Options() []CategoryOption {
	out := make([]CategoryOption, len(p.options))
	copy(out, p.options)
	return out
}

// Max returns the quantity limit.
func (p *CategoryPicker) Max() int {
	return p.max
}

// Choose selects a tier and quantity, replacing any previous choice.
func (p *CategoryPicker) Choose(id catalog.CategoryID, quantity int) (Choice, error) {
	opt, ok := p.option(id)
	if !ok {
		return Choice{}, fmt.Errorf("%w: %q", catalog.ErrUnknownCategory, id)
	}
	if quantity < 1 {
		return Choice{}, ErrInvalidQuantity
	}
	if quantity > p.max {
		return Choice{}, fmt.Errorf("%w: at most %d tickets", ErrSelectionLimitReached, p.max)
	}
	if quantity > opt.Remaining {
		return Choice{}, fmt.Errorf("%w: only %d %s tickets left", ErrSeatUnavailable, opt.Remaining, opt.Name)
	}
	c := Choice{Category: id, Quantity: quantity}
	p.choice = &c
	return c, nil
}

// Choice returns the current choice, if any.
func (p *CategoryPicker) Choice() (Choice, bool) {
	if p.choice == nil {
		return Choice{}, false
	}
	return *p.choice, true
}

func (p *CategoryPicker) option(id catalog.CategoryID) (CategoryOption, bool) {
	for _, o := range p.options {
		if o.ID == id {
			return o, true
		}
	}
	return CategoryOption{}, false
}
