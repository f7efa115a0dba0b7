package domain

import (
	"errors"
	"fmt"
)

// ErrMerchantNotFound marks lookups for shops that never installed the app
// or have since uninstalled it.
var ErrMerchantNotFound = errors.New("merchant not found")

// UpstreamError wraps any failure reported by the commerce platform: a bad
// HTTP status, a populated GraphQL error list, or user-facing validation
// errors (userErrors). Validation messages propagate verbatim.
type UpstreamError struct {
	Status   int
	Messages []string
}

func (e *UpstreamError) Error() string {
	if len(e.Messages) > 0 {
		msg := e.Messages[0]
		for _, m := range e.Messages[1:] {
			msg += "; " + m
		}
		return "upstream error: " + msg
	}
	return fmt.Sprintf("upstream error: status %d", e.Status)
}

// PersistenceError wraps a failed interaction log or counter write.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
