// Package pricing computes the itemized cost of a booking.
//
// All arithmetic runs on int64 hundredths of a rupee and every rounding point
// rounds half away from zero, so a quote is reproducible to the paisa.
package pricing

import (
	"fmt"

	"github.com/cx-tal-miterani/ticket-checkout/internal/catalog"
)

const (
	// InsuranceRatePercent is charged on the base fare when insurance is on.
	InsuranceRatePercent = 5
	// ConvenienceFeeRatePercent applies to base plus add-ons.
	ConvenienceFeeRatePercent = 8
	// GSTRatePercent applies to base, add-ons and the convenience fee.
	// Insurance is not part of the GST base.
	GSTRatePercent = 18
)

// Line is one priced category in a quote.
type Line struct {
	Category catalog.CategoryID `json:"category"`
	Quantity int                `json:"quantity"`
}

// Input is everything the engine needs. Category and add-on ids are closed
// enumerations; Quote rejects any id missing from the catalog.
type Input struct {
	Lines     []Line
	AddOns    []catalog.AddOnID
	Insurance bool
}

// LineItem is a priced Line.
type LineItem struct {
	Category  catalog.CategoryID `json:"category"`
	Name      string             `json:"name"`
	UnitPrice int64              `json:"unitPrice"`
	Quantity  int                `json:"quantity"`
	Amount    int64              `json:"amount"`
}

// AddOnItem is a priced add-on. NetHundredths is exact; Net is rounded for
// display only.
type AddOnItem struct {
	ID              catalog.AddOnID `json:"id"`
	Name            string          `json:"name"`
	Price           int64           `json:"price"`
	DiscountPercent int64           `json:"discountPercent"`
	NetHundredths   int64           `json:"netHundredths"`
	Net             int64           `json:"net"`
}

// Breakdown is the auditable result of a quote. Amounts are whole rupees
// except AddOnsHundredths.
type Breakdown struct {
	Lines            []LineItem  `json:"lines"`
	AddOnItems       []AddOnItem `json:"addOnItems"`
	SeatCount        int         `json:"seatCount"`
	Base             int64       `json:"base"`
	AddOnsHundredths int64       `json:"addOnsHundredths"`
	AddOns           int64       `json:"addOns"`
	Insurance        int64       `json:"insurance"`
	ConvenienceFee   int64       `json:"convenienceFee"`
	GST              int64       `json:"gst"`
	Total            int64       `json:"total"`
}

// Quote prices in. It is pure: the same input always yields the same
// breakdown.
func Quote(in Input) (Breakdown, error) {
	var b Breakdown

	for _, l := range in.Lines {
		if l.Quantity <= 0 {
			continue
		}
		c, ok := catalog.LookupCategory(l.Category)
		if !ok {
			return Breakdown{}, fmt.Errorf("%w: %q", catalog.ErrUnknownCategory, l.Category)
		}
		amount := c.Price * int64(l.Quantity)
		b.Lines = append(b.Lines, LineItem{
			Category:  l.Category,
			Name:      c.Name,
			UnitPrice: c.Price,
			Quantity:  l.Quantity,
			Amount:    amount,
		})
		b.Base += amount
		b.SeatCount += l.Quantity
	}

	for _, id := range in.AddOns {
		if _, ok := catalog.LookupAddOn(id); !ok {
			return Breakdown{}, fmt.Errorf("%w: %q", catalog.ErrUnknownAddOn, id)
		}
	}
	for _, id := range catalog.NormalizeAddOns(in.AddOns) {
		a, _ := catalog.LookupAddOn(id)
		net := a.NetHundredths()
		b.AddOnItems = append(b.AddOnItems, AddOnItem{
			ID:              a.ID,
			Name:            a.Name,
			Price:           a.Price,
			DiscountPercent: a.DiscountPercent,
			NetHundredths:   net,
			Net:             divRound(net, 100),
		})
		b.AddOnsHundredths += net
	}
	b.AddOns = divRound(b.AddOnsHundredths, 100)

	baseH := b.Base * 100
	if in.Insurance {
		b.Insurance = divRound(b.Base*InsuranceRatePercent, 100)
	}
	b.ConvenienceFee = divRound((baseH+b.AddOnsHundredths)*ConvenienceFeeRatePercent, 100*100)
	b.GST = divRound((baseH+b.AddOnsHundredths+b.ConvenienceFee*100)*GSTRatePercent, 100*100)
	b.Total = divRound(baseH+b.AddOnsHundredths+(b.Insurance+b.ConvenienceFee+b.GST)*100, 100)
	return b, nil
}

// divRound returns n/d rounded half away from zero. d must be positive.
func divRound(n, d int64) int64 {
	if n < 0 {
		return -((-n + d/2) / d)
	}
	return (n + d/2) / d
}
