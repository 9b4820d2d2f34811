package model

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Venue       string `json:"venue"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Capacity    int    `json:"max_participants" validate:"gte=0,lte=100000"`
}

// RegisterRequest is the payload for a single registration attempt. Source
// defaults to "self" when omitted.
type RegisterRequest struct {
	Contact
	Source Source `json:"source,omitempty"`
}

// ReconcileRequest carries the externally collected rows for one event.
type ReconcileRequest struct {
	Rows []Contact `json:"rows" validate:"required"`
}

// UpdateParticipantRequest updates profile fields only. The identity key
// (email) is immutable and deliberately absent here.
type UpdateParticipantRequest struct {
	RegNo      *string `json:"reg_no,omitempty"`
	Name       *string `json:"name,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Department *string `json:"department,omitempty"`
	Year       *string `json:"year,omitempty"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
