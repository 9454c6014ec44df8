// Package catalog holds the closed set of seat categories and add-ons that
// a checkout session can price. Unknown ids are rejected at parse time so the
// pricing engine never sees them.
package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownCategory = errors.New("unknown seat category")
	ErrUnknownAddOn    = errors.New("unknown add-on")
)

// CategoryID identifies a seat tier
type CategoryID string

const (
	CategoryEconomy  CategoryID = "economy"
	CategoryStandard CategoryID = "standard"
	CategoryPremium  CategoryID = "premium"
	CategoryVIP      CategoryID = "vip"
)

// Category is a priced seat tier. Prices are whole rupees.
type Category struct {
	ID       CategoryID `json:"id"`
	Name     string     `json:"name"`
	Price    int64      `json:"price"`
	Features []string   `json:"features"`
}

// categories is ordered from cheapest to most expensive.
var categories = []Category{
	{
		ID:       CategoryEconomy,
		Name:     "Economy",
		Price:    400,
		Features: []string{"General admission area", "Access to food court"},
	},
	{
		ID:       CategoryStandard,
		Name:     "Standard",
		Price:    800,
		Features: []string{"Reserved seating", "Access to food court"},
	},
	{
		ID:       CategoryPremium,
		Name:     "Premium",
		Price:    1500,
		Features: []string{"Reserved seating", "Close to stage", "Dedicated entry gate"},
	},
	{
		ID:       CategoryVIP,
		Name:     "VIP",
		Price:    3000,
		Features: []string{"Front rows", "Lounge access", "Complimentary drinks", "Dedicated entry gate"},
	},
}

// Categories returns every category, cheapest first.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// LookupCategory returns the category for id.
func LookupCategory(id CategoryID) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// ParseCategory converts raw input into a known CategoryID.
func ParseCategory(s string) (CategoryID, error) {
	if _, ok := LookupCategory(CategoryID(s)); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return CategoryID(s), nil
}

// Rank orders categories by price; a higher rank is a more expensive tier.
func (id CategoryID) Rank() int {
	for i, c := range categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Price returns the unit price of the category, or 0 for an unknown id.
func (id CategoryID) Price() int64 {
	c, _ := LookupCategory(id)
	return c.Price
}

// AddOnID identifies an optional extra
type AddOnID string

const (
	AddOnParking   AddOnID = "parking"
	AddOnFoodCombo AddOnID = "food_combo"
	AddOnMerchPack AddOnID = "merch_pack"
	AddOnFastTrack AddOnID = "fast_track"
)

// AddOn is an optional purchasable extra attached to a booking.
type AddOn struct {
	ID              AddOnID `json:"id"`
	Name            string  `json:"name"`
	Price           int64   `json:"price"`
	DiscountPercent int64   `json:"discountPercent"`
	Popular         bool    `json:"popular"`
}

var addOns = []AddOn{
	{ID: AddOnParking, Name: "Reserved Parking", Price: 200},
	{ID: AddOnFoodCombo, Name: "Food & Beverage Combo", Price: 899, DiscountPercent: 15, Popular: true},
	{ID: AddOnMerchPack, Name: "Merchandise Pack", Price: 1299, DiscountPercent: 10},
	{ID: AddOnFastTrack, Name: "Fast Track Entry", Price: 499, Popular: true},
}

// AddOns returns every add-on in catalog order.
func AddOns() []AddOn {
	out := make([]AddOn, len(addOns))
	copy(out, addOns)
	return out
}

// LookupAddOn returns the add-on for id.
func LookupAddOn(id AddOnID) (AddOn, bool) {
	for _, a := range addOns {
		if a.ID == id {
			return a, true
		}
	}
	return AddOn{}, false
}

// ParseAddOn converts raw input into a known AddOnID.
func ParseAddOn(s string) (AddOnID, error) {
	if _, ok := LookupAddOn(AddOnID(s)); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAddOn, s)
	}
	return AddOnID(s), nil
}

// NetHundredths is the discounted price in hundredths of a rupee. It is exact:
// price*100 - price*discount never leaves the integers.
func (a AddOn) NetHundredths() int64 {
	return a.Price*100 - a.Price*a.DiscountPercent
}

// NormalizeAddOns removes duplicates and returns ids in catalog order.
func NormalizeAddOns(ids []AddOnID) []AddOnID {
	seen := make(map[AddOnID]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	out := make([]AddOnID, 0, len(seen))
	for _, a := range addOns {
		if seen[a.ID] {
			out = append(out, a.ID)
		}
	}
	return out
}
