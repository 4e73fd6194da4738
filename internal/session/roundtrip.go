package session

// Status is the observable state of one request/response round-trip.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Ticket identifies one started request. Completions carrying a ticket other
// than the latest are discarded.
type Ticket uint64

// RoundTrip tracks idle → pending → succeeded | failed for a value of type T.
// The zero value is idle. It is not safe for concurrent use; Store serialises
// access.
type RoundTrip[T any] struct {
	status  Status
	value   T
	err     error
	current Ticket
}

// Status reports the current state.
func (r *RoundTrip[T]) Status() Status {
	if r.status == "" {
		return StatusIdle
	}
	return r.status
}

// Value returns the result of the last successful completion.
func (r *RoundTrip[T]) Value() (T, bool) {
	return r.value, r.status == StatusSucceeded
}

// Err returns the failure of the last completion, if it failed.
func (r *RoundTrip[T]) Err() error {
	return r.err
}

// Pending reports whether a request is in flight.
func (r *RoundTrip[T]) Pending() bool {
	return r.status == StatusPending
}

// Begin moves to pending, dropping any previous value or error, and returns
// the ticket the completion must present.
func (r *RoundTrip[T]) Begin() Ticket {
	var zero T
	r.current++
	r.status = StatusPending
	r.value = zero
	r.err = nil
	return r.current
}

// Succeed records v if t is still the pending request.
func (r *RoundTrip[T]) Succeed(t Ticket, v T) bool {
	if !r.accepts(t) {
		return false
	}
	r.status = StatusSucceeded
	r.value = v
	return true
}

// Fail records err if t is still the pending request.
func (r *RoundTrip[T]) Fail(t Ticket, err error) bool {
	if !r.accepts(t) {
		return false
	}
	r.status = StatusFailed
	r.err = err
	return true
}

// Reset returns to idle and invalidates any outstanding ticket.
func (r *RoundTrip[T]) Reset() {
	var zero T
	r.current++
	r.status = StatusIdle
	r.value = zero
	r.err = nil
}

func (r *RoundTrip[T]) accepts(t Ticket) bool {
	return r.status == StatusPending && t == r.current
}
