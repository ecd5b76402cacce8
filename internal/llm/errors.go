package llm

import (
	"errors"
	"fmt"
)

// ServerError is a non-200 reply from the generation endpoint.
type ServerError struct {
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("generation endpoint returned %d: %s", e.StatusCode, e.Body)
}

// TransportError covers everything that prevented a usable reply: dial
// failures, timeouts, unreadable or malformed bodies.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AnalysisText collapses a generation result into the string returned to
// API callers. It never fails.
func AnalysisText(text string, err error) string {
	if err == nil {
		return text
	}

	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return "LLM Error: " + serverErr.Body
	}
	return "LLM Connection Error: " + err.Error()
}
