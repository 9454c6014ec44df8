package models

// PaymentRequest is what the payment collaborator receives for an order
type PaymentRequest struct {
	OrderID      string `json:"orderId"`
	Title        string `json:"title"`
	SeatCount    int    `json:"seatCount"`
	CategoryName string `json:"categoryName"`
	TotalAmount  int64  `json:"totalAmount"`
	Email        string `json:"email,omitempty"`
}

// NewPaymentRequest extracts the payment view of an order.
func NewPaymentRequest(order Order) PaymentRequest {
	return PaymentRequest{
		OrderID:      order.ID,
		Title:        order.EventTitle,
		SeatCount:    order.SeatCount,
		CategoryName: order.CategoryName,
		TotalAmount:  order.Pricing.Total,
		Email:        order.Contact.Email,
	}
}

// PaymentResult is the settled outcome of a payment
type PaymentResult struct {
	OrderID       string `json:"orderId"`
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId,omitempty"`
	Attempts      int    `json:"attempts"`
	FailureReason string `json:"failureReason,omitempty"`
}

// PaymentWorkflowInput represents input for the payment workflow
type PaymentWorkflowInput struct {
	Request PaymentRequest `json:"request"`
}

// PaymentWorkflowState is exposed through QueryGetPaymentState
type PaymentWorkflowState struct {
	OrderID       string        `json:"orderId"`
	Status        PaymentStatus `json:"status"`
	Attempts      int           `json:"attempts"`
	FailureReason string        `json:"failureReason,omitempty"`
}

// Queries for workflow state
const (
	QueryGetPaymentState = "get_payment_state"
)

// Activity results
type ChargeResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId,omitempty"`
	Error         string `json:"error,omitempty"`
	CanRetry      bool   `json:"canRetry"`
}
