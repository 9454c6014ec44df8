package router

import (
	"net/http"

	"github.com/cx-tal-miterani/ticket-checkout/internal/handlers"
	"github.com/gorilla/mux"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(h *handlers.Handler) *mux.Router {
	r := mux.NewRouter()

	// CORS middleware
	r.Use(corsMiddleware)

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	// Subrouters report a method mismatch as 404 unless they have their own handler
	api.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	// Events
	api.HandleFunc("/events", h.GetEvents).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/events/{id}", h.GetEvent).Methods(http.MethodGet, http.MethodOptions)

	// Sessions
	api.HandleFunc("/sessions", h.OpenSession).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{id}", h.GetSession).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/sessions/{id}", h.CloseSession).Methods(http.MethodDelete, http.MethodOptions)
	api.HandleFunc("/sessions/{id}/seats", h.GetSeatMap).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/sessions/{id}/seats/{seatId}", h.ToggleSeat).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{id}/category", h.ChooseCategory).Methods(http.MethodPut, http.MethodOptions)
	api.HandleFunc("/sessions/{id}/addons", h.SetAddOns).Methods(http.MethodPut, http.MethodOptions)
	api.HandleFunc("/sessions/{id}/contact", h.SetContact).Methods(http.MethodPut, http.MethodOptions)
	api.HandleFunc("/sessions/{id}/advance", h.Advance).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{id}/retreat", h.Retreat).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{id}/submit", h.Submit).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{id}/outcome", h.GetOutcome).Methods(http.MethodGet, http.MethodOptions)

	// WebSocket for session notices
	api.HandleFunc("/sessions/{id}/ws", h.WatchSession).Methods(http.MethodGet)

	// Bookings
	api.HandleFunc("/bookings/{id}", h.GetBooking).Methods(http.MethodGet, http.MethodOptions)

	// Health check
	r.HandleFunc("/health", healthCheck).Methods(http.MethodGet)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	w.Write([]byte(`{"error":"method not allowed"}`))
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
