package mocks

import (
	"context"
	"time"

	"github.com/cx-tal-miterani/ticket-checkout/internal/catalog"
	"github.com/cx-tal-miterani/ticket-checkout/internal/models"
	"github.com/cx-tal-miterani/ticket-checkout/internal/session"
	"github.com/cx-tal-miterani/ticket-checkout/internal/wizard"
	"github.com/stretchr/testify/mock"
)

// MockCheckoutService is a mock implementation of CheckoutService
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) ListEvents(ctx context.Context) []catalog.Event {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]catalog.Event)
}

func (m *MockCheckoutService) GetEvent(ctx context.Context, eventID string) (catalog.Event, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(catalog.Event), args.Error(1)
}

func (m *MockCheckoutService) OpenSession(ctx context.Context, eventID string, mode string) (session.View, error) {
	args := m.Called(ctx, eventID, mode)
	return args.Get(0).(session.View), args.Error(1)
}

func (m *MockCheckoutService) CloseSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockCheckoutService) View(ctx context.Context, sessionID string) (session.View, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(session.View), args.Error(1)
}

func (m *MockCheckoutService) SeatMap(ctx context.Context, sessionID string) (session.SeatMap, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(session.SeatMap), args.Error(1)
}

func (m *MockCheckoutService) ToggleSeat(ctx context.Context, sessionID string, seatID string) (session.View, error) {
	args := m.Called(ctx, sessionID, seatID)
	return args.Get(0).(session.View), args.Error(1)
}

func (m *MockCheckoutService) ChooseCategory(ctx context.Context, sessionID string, category string, quantity int) (session.View, error) {
	args := m.Called(ctx, sessionID, category, quantity)
	return args.Get(0).(session.View), args.Error(1)
}

func (m *MockCheckoutService) SetAddOns(ctx context.Context, sessionID string, addOns []string, insurance bool) (session.View, error) {
	args := m.Called(ctx, sessionID, addOns, insurance)
	return args.Get(0).(session.View), args.Error(1)
}

func (m *MockCheckoutService) SetContact(ctx context.Context, sessionID string, contact wizard.Contact, guests []wizard.Guest) (session.View, error) {
	args := m.Called(ctx, sessionID, contact, guests)
	return args.Get(0).(session.View), args.Error(1)
}

func (m *MockCheckoutService) Advance(ctx context.Context, sessionID string) (session.View, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(session.View), args.Error(1)
}

func (m *MockCheckoutService) Retreat(ctx context.Context, sessionID string) (session.View, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(session.View), args.Error(1)
}

func (m *MockCheckoutService) Submit(ctx context.Context, sessionID string) (models.Order, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(models.Order), args.Error(1)
}

func (m *MockCheckoutService) Outcome(ctx context.Context, sessionID string) (models.Outcome, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(models.Outcome), args.Error(1)
}

func (m *MockCheckoutService) Reap(ctx context.Context, grace time.Duration) int {
	args := m.Called(ctx, grace)
	return args.Int(0)
}

func (m *MockCheckoutService) Shutdown(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
