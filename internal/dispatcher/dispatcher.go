// Package dispatcher forwards a query to an explanation backend and returns
// the backend's raw JSON document.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
)

// ErrBlocked means the provider refused the request until the user verifies
// in a browser.
var ErrBlocked = errors.New("provider requires browser verification")

// StatusError is returned when the backend answers outside 2xx.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("unexpected status: %s", e.Status)
	}
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// Query is the text to explain plus the optional classification fields.
type Query struct {
	Text              string `json:"text"`
	ExplanationLevel  string `json:"explanationLevel,omitempty"`
	Department        string `json:"department,omitempty"`
	UserRole          string `json:"userRole,omitempty"`
	AdditionalContext string `json:"additionalContext,omitempty"`
}

// Explainer sends one query and returns the raw response body. Implementations
// make a single attempt with no retry.
type Explainer interface {
	Explain(ctx context.Context, q Query) ([]byte, error)
}
