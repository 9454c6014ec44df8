package mocks

import (
	"context"

	"github.com/cx-tal-miterani/ticket-checkout/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockPaymentGateway is a mock implementation of PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) Pay(ctx context.Context, req models.PaymentRequest) (models.PaymentResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(models.PaymentResult), args.Error(1)
}

// MockBookingStore is a mock implementation of BookingStore
type MockBookingStore struct {
	mock.Mock
}

func (m *MockBookingStore) SaveBooking(ctx context.Context, record models.BookingRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(sessionID string, n models.Notice) {
	m.Called(sessionID, n)
}

// MockActivityTracker is a mock implementation of ActivityTracker
type MockActivityTracker struct {
	mock.Mock
}

func (m *MockActivityTracker) Track(ctx context.Context, name string, payload map[string]any) error {
	args := m.Called(ctx, name, payload)
	return args.Error(0)
}

// MockOutcomeCache is a mock implementation of OutcomeCache
type MockOutcomeCache struct {
	mock.Mock
}

func (m *MockOutcomeCache) SaveOutcome(ctx context.Context, outcome models.Outcome) error {
	args := m.Called(ctx, outcome)
	return args.Error(0)
}

func (m *MockOutcomeCache) LoadOutcome(ctx context.Context, sessionID string) (models.Outcome, bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(models.Outcome), args.Bool(1), args.Error(2)
}
