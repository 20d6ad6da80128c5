package services

import "fmt"

// ValidationError rejects malformed input before any mutation. It is the
// only error surfaced to public entry points; handlers map it to 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NotFoundError marks events addressed to an unknown conversation or widget.
// Logged and dropped internally; handlers map it to 404.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// StateConflictError marks a transition invalid for the current state.
// Logged, the event is dropped, never propagated.
type StateConflictError struct {
	Status string
	Event  string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("event %s not valid in state %s", e.Event, e.Status)
}

// ProviderError wraps an LLM or WhatsApp failure. Recovered locally into
// fallback messages; conversation state still advances.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider failure during %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
