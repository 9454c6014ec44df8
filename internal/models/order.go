package models

import (
	"time"

	"github.com/cx-tal-miterani/ticket-checkout/internal/catalog"
	"github.com/cx-tal-miterani/ticket-checkout/internal/pricing"
	"github.com/cx-tal-miterani/ticket-checkout/internal/wizard"
)

// Order is the frozen result of a submitted checkout session
type Order struct {
	ID           string             `json:"id"`
	SessionID    string             `json:"sessionId"`
	EventID      string             `json:"eventId"`
	EventTitle   string             `json:"eventTitle"`
	EventDate    time.Time          `json:"eventDate"`
	Venue        string             `json:"venue"`
	Category     catalog.CategoryID `json:"category"`
	CategoryName string             `json:"categoryName"`
	SeatCount    int                `json:"seatCount"`
	Seats        []string           `json:"seats"`
	AddOns       []catalog.AddOnID  `json:"addOns"`
	Insurance    bool               `json:"insurance"`
	Pricing      pricing.Breakdown  `json:"pricing"`
	Contact      wizard.Contact     `json:"contact"`
	Guests       []wizard.Guest     `json:"guests"`
	CreatedAt    time.Time          `json:"createdAt"`
}

type BookingStatus string

const (
	BookingStatusConfirmed     BookingStatus = "confirmed"
	BookingStatusPaymentFailed BookingStatus = "payment_failed"
)

// BookingRecord is what gets persisted once payment for an order settles
type BookingRecord struct {
	ID          string        `json:"id"`
	OrderID     string        `json:"orderId"`
	EventID     string        `json:"eventId"`
	EventTitle  string        `json:"eventTitle"`
	EventDate   time.Time     `json:"eventDate"`
	Venue       string        `json:"venue"`
	Seats       []string      `json:"seats"`
	TotalAmount int64         `json:"totalAmount"`
	Status      BookingStatus `json:"status"`
	BookingDate time.Time     `json:"bookingDate"`
	PaymentID   string        `json:"paymentId,omitempty"`
}

// NewBookingRecord builds the record for order from the payment result.
func NewBookingRecord(id string, order Order, result PaymentResult, at time.Time) BookingRecord {
	status := BookingStatusConfirmed
	if !result.Success {
		status = BookingStatusPaymentFailed
	}
	return BookingRecord{
		ID:          id,
		OrderID:     order.ID,
		EventID:     order.EventID,
		EventTitle:  order.EventTitle,
		EventDate:   order.EventDate,
		Venue:       order.Venue,
		Seats:       append([]string(nil), order.Seats...),
		TotalAmount: order.Pricing.Total,
		Status:      status,
		BookingDate: at,
		PaymentID:   result.TransactionID,
	}
}

type OutcomeStatus string

const (
	OutcomeSubmitted OutcomeStatus = "submitted"
	OutcomeAbandoned OutcomeStatus = "abandoned"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Outcome is the terminal state of a session as seen by callers after it
// closed.
type Outcome struct {
	SessionID     string        `json:"sessionId"`
	Status        OutcomeStatus `json:"status"`
	Reason        string        `json:"reason,omitempty"`
	OrderID       string        `json:"orderId,omitempty"`
	TotalAmount   int64         `json:"totalAmount,omitempty"`
	PaymentStatus PaymentStatus `json:"paymentStatus,omitempty"`
	TransactionID string        `json:"transactionId,omitempty"`
	BookingID     string        `json:"bookingId,omitempty"`
	FailureReason string        `json:"failureReason,omitempty"`
	ClosedAt      time.Time     `json:"closedAt"`
}

// OpenSessionRequest starts a checkout session for an event
type OpenSessionRequest struct {
	EventID string `json:"eventId"`
	Mode    string `json:"mode,omitempty"`
}

type ChooseCategoryRequest struct {
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
}

type SetAddOnsRequest struct {
	AddOns    []string `json:"addOns"`
	Insurance bool     `json:"insurance"`
}

type SetContactRequest struct {
	Contact wizard.Contact `json:"contact"`
	Guests  []wizard.Guest `json:"guests"`
}
