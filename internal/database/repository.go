package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/cx-tal-miterani/ticket-checkout/internal/models"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound = errors.New("not found")
)

// Repository handles all database operations
type Repository struct {
	pool DB
}

// NewRepository creates a new repository
func NewRepository(pool DB) *Repository {
	return &Repository{pool: pool}
}

// --- Booking Operations ---

// SaveBooking stores a booking and its seats. Saving the same booking twice
// is a no-op.
func (r *Repository) SaveBooking(ctx context.Context, record models.BookingRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		INSERT INTO bookings (id, order_id, event_id, event_title, event_date, venue,
		                      total_amount, status, booking_date, payment_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''))
		ON CONFLICT (id) DO NOTHING
	`, record.ID, record.OrderID, record.EventID, record.EventTitle, record.EventDate,
		record.Venue, record.TotalAmount, string(record.Status), record.BookingDate, record.PaymentID)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil
	}

	for i, seat := range record.Seats {
		_, err = tx.Exec(ctx, `
			INSERT INTO booking_seats (booking_id, position, seat)
			VALUES ($1, $2, $3)
		`, record.ID, i, seat)
		if err != nil {
			return fmt.Errorf("failed to add booking seat: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// FindBooking returns a booking by ID with its seats
func (r *Repository) FindBooking(ctx context.Context, id string) (*models.BookingRecord, error) {
	query := `
		SELECT id, order_id, event_id, event_title, event_date, venue,
		       total_amount, status, booking_date, payment_id
		FROM bookings
		WHERE id = $1
	`

	var b models.BookingRecord
	var status string
	var paymentID *string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.OrderID, &b.EventID, &b.EventTitle, &b.EventDate, &b.Venue,
		&b.TotalAmount, &status, &b.BookingDate, &paymentID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	b.Status = models.BookingStatus(status)
	if paymentID != nil {
		b.PaymentID = *paymentID
	}

	rows, err := r.pool.Query(ctx, `
		SELECT seat FROM booking_seats WHERE booking_id = $1 ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query booking seats: %w", err)
	}
	defer rows.Close()

	b.Seats = []string{}
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return nil, fmt.Errorf("failed to scan seat: %w", err)
		}
		b.Seats = append(b.Seats, seat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read booking seats: %w", err)
	}

	return &b, nil
}

// CountEventBookings returns how many confirmed bookings an event has
func (r *Repository) CountEventBookings(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM bookings WHERE event_id = $1 AND status = $2
	`, eventID, string(models.BookingStatusConfirmed)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// --- Payment Operations ---

// RecordPayment stores the settled payment state of an order, replacing any
// earlier record for it.
func (r *Repository) RecordPayment(ctx context.Context, result models.PaymentResult) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO payments (order_id, success, transaction_id, attempts, failure_reason)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''))
		ON CONFLICT (order_id) DO UPDATE
		SET success = EXCLUDED.success,
		    transaction_id = EXCLUDED.transaction_id,
		    attempts = EXCLUDED.attempts,
		    failure_reason = EXCLUDED.failure_reason,
		    recorded_at = NOW()
	`, result.OrderID, result.Success, result.TransactionID, result.Attempts, result.FailureReason)
	if err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	return nil
}

// FindPayment returns the recorded payment of an order
func (r *Repository) FindPayment(ctx context.Context, orderID string) (*models.PaymentResult, error) {
	var p models.PaymentResult
	var transactionID, failureReason *string
	err := r.pool.QueryRow(ctx, `
		SELECT order_id, success, transaction_id, attempts, failure_reason
		FROM payments
		WHERE order_id = $1
	`, orderID).Scan(&p.OrderID, &p.Success, &transactionID, &p.Attempts, &failureReason)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if transactionID != nil {
		p.TransactionID = *transactionID
	}
	if failureReason != nil {
		p.FailureReason = *failureReason
	}
	return &p, nil
}
