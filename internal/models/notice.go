package models

import "time"

// Notice names emitted to the presentation layer
const (
	NoticeSelectionRequired  = "selection_required"
	NoticeMissingInformation = "missing_information"
	NoticeSessionExpired     = "session_expired"
)

// Activity names emitted to the tracking collaborator
const (
	ActivityStepCompleted    = "step_completed"
	ActivityBookingCompleted = "booking_completed"
	ActivitySessionAbandoned = "session_abandoned"
)

// Notice is a named, user-facing event of a session. Rendering is up to the
// client.
type Notice struct {
	Name    string    `json:"name"`
	Message string    `json:"message,omitempty"`
	Stage   string    `json:"stage,omitempty"`
	Fields  []string  `json:"fields,omitempty"`
	At      time.Time `json:"at"`
}
