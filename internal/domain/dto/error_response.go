package dto

import "time"

// ErrorResponse is the standardized JSON error envelope returned by every
// failing API endpoint.
//
// Fields:
//   - Message: human-readable description of what went wrong.
//   - ErrorDetails: optional inner error text (omitted when empty).
//   - Timestamp: server time the error was produced.
type ErrorResponse struct {
	Message      string    `json:"message" example:"invalid date format"`
	ErrorDetails string    `json:"error,omitempty" example:"parsing time ..."`
	Timestamp    time.Time `json:"timestamp"`
}

// Error implements the error interface so an ErrorResponse can travel
// through error-typed plumbing (e.g., gin's c.Error).
func (e ErrorResponse) Error() string {
	if e.ErrorDetails != "" {
		return e.Message + ": " + e.ErrorDetails
	}
	return e.Message
}

// NewErrorResponse builds an ErrorResponse from a message and an optional
// inner error.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{
		Message:   message,
		Timestamp: time.Now(),
	}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}
