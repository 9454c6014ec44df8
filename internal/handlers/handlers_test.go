package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cx-tal-miterani/ticket-checkout/internal/catalog"
	"github.com/cx-tal-miterani/ticket-checkout/internal/database"
	"github.com/cx-tal-miterani/ticket-checkout/internal/models"
	"github.com/cx-tal-miterani/ticket-checkout/internal/seating"
	"github.com/cx-tal-miterani/ticket-checkout/internal/service"
	"github.com/cx-tal-miterani/ticket-checkout/internal/service/mocks"
	"github.com/cx-tal-miterani/ticket-checkout/internal/session"
	"github.com/cx-tal-miterani/ticket-checkout/internal/wizard"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubWatcher struct {
	served []string
}

func (s *stubWatcher) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	s.served = append(s.served, sessionID)
	w.WriteHeader(http.StatusSwitchingProtocols)
}

type stubBookings map[string]models.BookingRecord

func (s stubBookings) FindBooking(ctx context.Context, id string) (*models.BookingRecord, error) {
	b, ok := s[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &b, nil
}

func setupTestRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/events", h.GetEvents).Methods(http.MethodGet)
	api.HandleFunc("/events/{id}", h.GetEvent).Methods(http.MethodGet)
	api.HandleFunc("/sessions", h.OpenSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", h.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", h.CloseSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/seats", h.GetSeatMap).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/seats/{seatId}", h.ToggleSeat).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/category", h.ChooseCategory).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{id}/addons", h.SetAddOns).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{id}/contact", h.SetContact).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{id}/advance", h.Advance).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/retreat", h.Retreat).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/submit", h.Submit).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/outcome", h.GetOutcome).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/ws", h.WatchSession).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id}", h.GetBooking).Methods(http.MethodGet)
	return r
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func testView() session.View {
	return session.View{
		ID:               "sess-1",
		EventID:          "EV001",
		EventTitle:       "Arijit Singh Live",
		Mode:             session.ModeSeatMap,
		Status:           session.StatusOpen,
		Stage:            wizard.StageSeatSelection,
		Step:             1,
		RemainingSeconds: 900,
		MaxSelectable:    10,
	}
}

func TestHandler_GetEvents(t *testing.T) {
	mockService := new(mocks.MockCheckoutService)
	router := setupTestRouter(NewHandler(mockService, nil, nil))

	events := []catalog.Event{
		{ID: "EV001", Title: "Arijit Singh Live", Venue: "NSCI Dome, Mumbai", HasSeatMap: true},
	}
	mockService.On("ListEvents", mock.Anything).Return(events)

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var response []catalog.Event
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Len(t, response, 1)
	assert.Equal(t, "EV001", response[0].ID)
	mockService.AssertExpectations(t)
}

func TestHandler_GetEvent(t *testing.T) {
	tests := []struct {
		name           string
		eventID        string
		mockReturn     catalog.Event
		mockError      error
		expectedStatus int
	}{
		{
			name:           "event found",
			eventID:        "EV001",
			mockReturn:     catalog.Event{ID: "EV001", Title: "Arijit Singh Live"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "event not found",
			eventID:        "EV999",
			mockError:      fmt.Errorf("%w: EV999", catalog.ErrEventNotFound),
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockCheckoutService)
			router := setupTestRouter(NewHandler(mockService, nil, nil))
			mockService.On("GetEvent", mock.Anything, tt.eventID).Return(tt.mockReturn, tt.mockError)

			req := httptest.NewRequest(http.MethodGet, "/api/events/"+tt.eventID, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_OpenSession(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*mocks.MockCheckoutService)
		expectedStatus int
	}{
		{
			name: "seat map session",
			body: models.OpenSessionRequest{EventID: "EV001", Mode: "seat_map"},
			setupMock: func(m *mocks.MockCheckoutService) {
				m.On("OpenSession", mock.Anything, "EV001", "seat_map").Return(testView(), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing event id",
			body:           models.OpenSessionRequest{},
			setupMock:      func(m *mocks.MockCheckoutService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid body",
			body:           "not json",
			setupMock:      func(m *mocks.MockCheckoutService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "seat map on an event without one",
			body: models.OpenSessionRequest{EventID: "EV002", Mode: "seat_map"},
			setupMock: func(m *mocks.MockCheckoutService) {
				m.On("OpenSession", mock.Anything, "EV002", "seat_map").
					Return(session.View{}, fmt.Errorf("%w: EV002 has no seat map", session.ErrWrongMode))
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockCheckoutService)
			tt.setupMock(mockService)
			router := setupTestRouter(NewHandler(mockService, nil, nil))

			var body *bytes.Buffer
			if s, ok := tt.body.(string); ok {
				body = bytes.NewBufferString(s)
			} else {
				body = jsonBody(t, tt.body)
			}
			req := httptest.NewRequest(http.MethodPost, "/api/sessions", body)
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_ToggleSeat_ErrorMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"selected", nil, http.StatusOK},
		{"unknown session", fmt.Errorf("%w: sess-1", service.ErrSessionNotFound), http.StatusNotFound},
		{"unknown seat", fmt.Errorf("%w: Z-9-99", seating.ErrSeatNotFound), http.StatusNotFound},
		{"seat taken", fmt.Errorf("%w: A-1-01", seating.ErrSeatUnavailable), http.StatusConflict},
		{"limit reached", seating.ErrSelectionLimitReached, http.StatusConflict},
		{"wrong mode", session.ErrWrongMode, http.StatusConflict},
		{"expired", session.ErrSessionExpired, http.StatusGone},
		{"closed", session.ErrSessionClosed, http.StatusGone},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockCheckoutService)
			router := setupTestRouter(NewHandler(mockService, nil, nil))
			mockService.On("ToggleSeat", mock.Anything, "sess-1", "A-1-01").Return(testView(), tt.err)

			req := httptest.NewRequest(http.MethodPost, "/api/sessions/sess-1/seats/A-1-01", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_ChooseCategory(t *testing.T) {
	mockService := new(mocks.MockCheckoutService)
	router := setupTestRouter(NewHandler(mockService, nil, nil))

	view := testView()
	view.Mode = session.ModeCategory
	mockService.On("ChooseCategory", mock.Anything, "sess-1", "vip", 2).Return(view, nil)
	mockService.On("ChooseCategory", mock.Anything, "sess-1", "balcony", 2).
		Return(session.View{}, fmt.Errorf("%w: balcony", catalog.ErrUnknownCategory))
	mockService.On("ChooseCategory", mock.Anything, "sess-1", "vip", 0).
		Return(session.View{}, seating.ErrInvalidQuantity)

	cases := map[string]int{
		`{"category":"vip","quantity":2}`:     http.StatusOK,
		`{"category":"balcony","quantity":2}`: http.StatusUnprocessableEntity,
		`{"category":"vip","quantity":0}`:     http.StatusUnprocessableEntity,
	}
	for body, status := range cases {
		req := httptest.NewRequest(http.MethodPut, "/api/sessions/sess-1/category", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, status, rec.Code, body)
	}
	mockService.AssertExpectations(t)
}

func TestHandler_SetAddOns(t *testing.T) {
	mockService := new(mocks.MockCheckoutService)
	router := setupTestRouter(NewHandler(mockService, nil, nil))
	mockService.On("SetAddOns", mock.Anything, "sess-1", []string{"parking", "food_combo"}, true).Return(testView(), nil)

	req := httptest.NewRequest(http.MethodPut, "/api/sessions/sess-1/addons",
		jsonBody(t, models.SetAddOnsRequest{AddOns: []string{"parking", "food_combo"}, Insurance: true}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockService.AssertExpectations(t)
}

func TestHandler_SetContact(t *testing.T) {
	mockService := new(mocks.MockCheckoutService)
	router := setupTestRouter(NewHandler(mockService, nil, nil))

	contact := wizard.Contact{Name: "Jane Doe", Email: "jane@example.com", Phone: "+919876543210"}
	guests := []wizard.Guest{{Name: "Jane Doe", Age: 30}}
	mockService.On("SetContact", mock.Anything, "sess-1", contact, guests).Return(testView(), nil)

	req := httptest.NewRequest(http.MethodPut, "/api/sessions/sess-1/contact",
		jsonBody(t, models.SetContactRequest{Contact: contact, Guests: guests}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockService.AssertExpectations(t)
}

func TestHandler_Advance_ValidationError(t *testing.T) {
	mockService := new(mocks.MockCheckoutService)
	router := setupTestRouter(NewHandler(mockService, nil, nil))

	verr := &wizard.ValidationError{Stage: wizard.StageContactDetails, Fields: []string{"email"}}
	mockService.On("Advance", mock.Anything, "sess-1").Return(session.View{}, fmt.Errorf("advance: %w", verr))

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/sess-1/advance", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var response struct {
		Error  string   `json:"error"`
		Stage  string   `json:"stage"`
		Fields []string `json:"fields"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "contact_details", response.Stage)
	assert.Equal(t, []string{"email"}, response.Fields)
	mockService.AssertExpectations(t)
}

func TestHandler_Retreat(t *testing.T) {
	mockService := new(mocks.MockCheckoutService)
	router := setupTestRouter(NewHandler(mockService, nil, nil))
	mockService.On("Retreat", mock.Anything, "sess-1").Return(testView(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/sess-1/retreat", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockService.AssertExpectations(t)
}

func TestHandler_Submit(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"accepted", nil, http.StatusAccepted},
		{"not at review", wizard.ErrNotReviewing, http.StatusConflict},
		{"already submitted", session.ErrSessionClosed, http.StatusGone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockCheckoutService)
			router := setupTestRouter(NewHandler(mockService, nil, nil))
			order := models.Order{ID: "order-1", SessionID: "sess-1", EventID: "EV001", SeatCount: 2}
			mockService.On("Submit", mock.Anything, "sess-1").Return(order, tt.err)

			req := httptest.NewRequest(http.MethodPost, "/api/sessions/sess-1/submit", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.err == nil {
				var response models.Order
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
				assert.Equal(t, "order-1", response.ID)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_GetOutcome(t *testing.T) {
	mockService := new(mocks.MockCheckoutService)
	router := setupTestRouter(NewHandler(mockService, nil, nil))

	outcome := models.Outcome{
		SessionID:     "sess-1",
		Status:        models.OutcomeSubmitted,
		PaymentStatus: models.PaymentStatusSucceeded,
		BookingID:     "BK-1",
		ClosedAt:      time.Now().UTC(),
	}
	mockService.On("Outcome", mock.Anything, "sess-1").Return(outcome, nil)
	mockService.On("Outcome", mock.Anything, "sess-2").Return(models.Outcome{}, service.ErrSessionOpen)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/sess-1/outcome", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/sessions/sess-2/outcome", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)

	mockService.AssertExpectations(t)
}

func TestHandler_CloseSession(t *testing.T) {
	mockService := new(mocks.MockCheckoutService)
	router := setupTestRouter(NewHandler(mockService, nil, nil))
	mockService.On("CloseSession", mock.Anything, "sess-1").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/sessions/sess-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockService.AssertExpectations(t)
}

func TestHandler_GetSession_And_SeatMap(t *testing.T) {
	mockService := new(mocks.MockCheckoutService)
	router := setupTestRouter(NewHandler(mockService, nil, nil))
	mockService.On("View", mock.Anything, "sess-1").Return(testView(), nil)
	mockService.On("SeatMap", mock.Anything, "sess-1").Return(session.SeatMap{Max: 10}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/sess-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	var view session.View
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, testView(), view)

	req = httptest.NewRequest(http.MethodGet, "/api/sessions/sess-1/seats", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	mockService.AssertExpectations(t)
}

func TestHandler_WatchSession(t *testing.T) {
	mockService := new(mocks.MockCheckoutService)
	watcher := &stubWatcher{}
	router := setupTestRouter(NewHandler(mockService, watcher, nil))
	mockService.On("View", mock.Anything, "sess-1").Return(testView(), nil)
	mockService.On("View", mock.Anything, "sess-x").Return(session.View{}, service.ErrSessionNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/sess-1/ws", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, []string{"sess-1"}, watcher.served)

	req = httptest.NewRequest(http.MethodGet, "/api/sessions/sess-x/ws", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, watcher.served, 1)
}

func TestHandler_WatchSession_Disabled(t *testing.T) {
	router := setupTestRouter(NewHandler(new(mocks.MockCheckoutService), nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/sess-1/ws", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandler_GetBooking(t *testing.T) {
	bookings := stubBookings{
		"BK-1": {ID: "BK-1", OrderID: "order-1", Status: models.BookingStatusConfirmed, Seats: []string{"A-1-01"}},
	}
	router := setupTestRouter(NewHandler(new(mocks.MockCheckoutService), nil, bookings))

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/BK-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	var booking models.BookingRecord
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&booking))
	assert.Equal(t, "order-1", booking.OrderID)

	req = httptest.NewRequest(http.MethodGet, "/api/bookings/BK-2", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
