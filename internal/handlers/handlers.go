package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cx-tal-miterani/ticket-checkout/internal/catalog"
	"github.com/cx-tal-miterani/ticket-checkout/internal/database"
	"github.com/cx-tal-miterani/ticket-checkout/internal/models"
	"github.com/cx-tal-miterani/ticket-checkout/internal/seating"
	"github.com/cx-tal-miterani/ticket-checkout/internal/service"
	"github.com/cx-tal-miterani/ticket-checkout/internal/session"
	"github.com/cx-tal-miterani/ticket-checkout/internal/wizard"
	"github.com/gorilla/mux"
)

// SessionWatcher streams notices of one session over a WebSocket
type SessionWatcher interface {
	ServeWS(w http.ResponseWriter, r *http.Request, sessionID string)
}

// BookingFinder looks up persisted bookings
type BookingFinder interface {
	FindBooking(ctx context.Context, id string) (*models.BookingRecord, error)
}

// Handler contains HTTP handlers for the API
type Handler struct {
	checkoutService service.CheckoutService
	watcher         SessionWatcher
	bookings        BookingFinder
}

// NewHandler creates a new Handler instance. watcher and bookings may be nil;
// their routes then answer 503.
func NewHandler(checkoutService service.CheckoutService, watcher SessionWatcher, bookings BookingFinder) *Handler {
	return &Handler{
		checkoutService: checkoutService,
		watcher:         watcher,
		bookings:        bookings,
	}
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps a domain error to its HTTP status
func respondServiceError(w http.ResponseWriter, err error) {
	var verr *wizard.ValidationError
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  err.Error(),
			"stage":  verr.Stage,
			"fields": verr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, catalog.ErrEventNotFound),
		errors.Is(err, seating.ErrSeatNotFound),
		errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, seating.ErrSeatUnavailable),
		errors.Is(err, seating.ErrSelectionLimitReached),
		errors.Is(err, session.ErrWrongMode),
		errors.Is(err, service.ErrSessionOpen),
		errors.Is(err, wizard.ErrNotReviewing):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, catalog.ErrUnknownCategory),
		errors.Is(err, catalog.ErrUnknownAddOn),
		errors.Is(err, seating.ErrInvalidQuantity):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, session.ErrSessionExpired),
		errors.Is(err, session.ErrSessionClosed),
		errors.Is(err, wizard.ErrTerminal):
		respondError(w, http.StatusGone, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// GetEvents handles GET /api/events
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.checkoutService.ListEvents(r.Context()))
}

// GetEvent handles GET /api/events/{id}
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.checkoutService.GetEvent(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, event)
}

// OpenSession handles POST /api/sessions
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req models.OpenSessionRequest
	if !decode(w, r, &req) {
		return
	}
	if req.EventID == "" {
		respondError(w, http.StatusBadRequest, "Event ID is required")
		return
	}

	view, err := h.checkoutService.OpenSession(r.Context(), req.EventID, req.Mode)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

// GetSession handles GET /api/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.checkoutService.View(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// CloseSession handles DELETE /api/sessions/{id}
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.checkoutService.CloseSession(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Session cancelled"})
}

// GetSeatMap handles GET /api/sessions/{id}/seats
func (h *Handler) GetSeatMap(w http.ResponseWriter, r *http.Request) {
	seatMap, err := h.checkoutService.SeatMap(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, seatMap)
}

// ToggleSeat handles POST /api/sessions/{id}/seats/{seatId}
func (h *Handler) ToggleSeat(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	view, err := h.checkoutService.ToggleSeat(r.Context(), vars["id"], vars["seatId"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// ChooseCategory handles PUT /api/sessions/{id}/category
func (h *Handler) ChooseCategory(w http.ResponseWriter, r *http.Request) {
	var req models.ChooseCategoryRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := h.checkoutService.ChooseCategory(r.Context(), mux.Vars(r)["id"], req.Category, req.Quantity)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// SetAddOns handles PUT /api/sessions/{id}/addons
func (h *Handler) SetAddOns(w http.ResponseWriter, r *http.Request) {
	var req models.SetAddOnsRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := h.checkoutService.SetAddOns(r.Context(), mux.Vars(r)["id"], req.AddOns, req.Insurance)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// SetContact handles PUT /api/sessions/{id}/contact
func (h *Handler) SetContact(w http.ResponseWriter, r *http.Request) {
	var req models.SetContactRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := h.checkoutService.SetContact(r.Context(), mux.Vars(r)["id"], req.Contact, req.Guests)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Advance handles POST /api/sessions/{id}/advance
func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	view, err := h.checkoutService.Advance(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Retreat handles POST /api/sessions/{id}/retreat
func (h *Handler) Retreat(w http.ResponseWriter, r *http.Request) {
	view, err := h.checkoutService.Retreat(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Submit handles POST /api/sessions/{id}/submit. Payment runs in the
// background; poll the outcome route for the result.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	order, err := h.checkoutService.Submit(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, order)
}

// GetOutcome handles GET /api/sessions/{id}/outcome
func (h *Handler) GetOutcome(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.checkoutService.Outcome(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}

// WatchSession handles GET /api/sessions/{id}/ws
func (h *Handler) WatchSession(w http.ResponseWriter, r *http.Request) {
	if h.watcher == nil {
		respondError(w, http.StatusServiceUnavailable, "Notifications are not enabled")
		return
	}
	sessionID := mux.Vars(r)["id"]
	if _, err := h.checkoutService.View(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}
	h.watcher.ServeWS(w, r, sessionID)
}

// GetBooking handles GET /api/bookings/{id}
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	if h.bookings == nil {
		respondError(w, http.StatusServiceUnavailable, "Booking storage is not enabled")
		return
	}
	booking, err := h.bookings.FindBooking(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}
