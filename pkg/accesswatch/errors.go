package accesswatch

import (
	"errors"
	"fmt"
)

var (
	// ErrRequestFailed wraps every failed API call: transport errors, non-200
	// answers (as *APIError) and undecodable bodies.
	ErrRequestFailed = errors.New("access watch request failed")

	ErrMissingAPIKey  = errors.New("api key is required")
	ErrInvalidBaseURL = errors.New("invalid base url")
)

// APIError is the error envelope returned with non-200 responses.
type APIError struct {
	Status  int    `json:"-"`
	Code    any    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == nil {
		return fmt.Sprintf("access watch (http %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("access watch (%v): %s", e.Code, e.Message)
}
