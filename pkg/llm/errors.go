package llm

import (
	"fmt"
)

// Error is a structured LLM failure carrying explicit retryability so the
// retry package never pattern-matches provider-specific text.
type Error struct {
	Message    string
	Retryable  bool
	Cause      error
	StatusCode int // HTTP status code if applicable
}

func (e *Error) Error() string {
	msg := e.Message
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable implements the retry.RetryableError interface.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

func retryableStatus(code int) bool {
	return code == 429 || code >= 500
}
