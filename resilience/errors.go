package resilience

import "errors"

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrMaxRetriesExceeded wraps the last failure when retry attempts
	// are exhausted.
	ErrMaxRetriesExceeded = errors.New("resilience: max retries exceeded")

	// ErrInvalidPolicy is returned when a retry policy is rejected at
	// construction.
	ErrInvalidPolicy = errors.New("resilience: invalid retry policy")
)
