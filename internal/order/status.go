package order

import "github.com/marcosvbento/storefront-backend/internal/apperr"

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipping  Status = "SHIPPING"
	StatusDelivered Status = "DELIVERED"
	StatusCanceled  Status = "CANCELED"
)

// transitions lists, per state, the states an order may move to. DELIVERED
// and CANCELED are terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCanceled},
	StatusConfirmed: {StatusShipping, StatusCanceled},
	StatusShipping:  {StatusDelivered, StatusCanceled},
	StatusDelivered: {},
	StatusCanceled:  {},
}

// ParseStatus validates a client-supplied status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := transitions[s]; !ok {
		return "", apperr.Validationf("unknown order status %q", raw)
	}
	return s, nil
}

// CanTransitionTo reports whether moving from s to next is allowed. A
// transition to the current state is allowed and treated as a no-op by
// callers.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible from s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}
