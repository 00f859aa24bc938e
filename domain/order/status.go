package order

import "strings"

// Status Order status enum
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusPayed     Status = "PAYED"
	StatusFailed    Status = "FAILED"
	StatusCanceled  Status = "CANCELED"
	StatusDelivered Status = "DELIVERED"
)

// transitions lists the statuses reachable from each status.
// Staying in the same status is always allowed and is a no-op.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusPayed, StatusFailed, StatusCanceled},
	StatusConfirmed: {StatusPayed, StatusFailed, StatusCanceled},
	StatusFailed:    {StatusCanceled, StatusPayed},
	StatusPayed:     {StatusDelivered},
	StatusCanceled:  nil,
	StatusDelivered: nil,
}

// ParseStatus validates a textual status, ignoring case.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", NewInvalidStatusError(s)
	}
	return st, nil
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	if s == target {
		return true
	}
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminalForPayment reports whether payment events may still change the status.
// DELIVERED follows PAYED and is therefore never regressed either.
func (s Status) IsTerminalForPayment() bool {
	return s == StatusPayed || s == StatusCanceled || s == StatusDelivered
}

// AllowsLineChanges reports whether lines may still be added or removed.
func (s Status) AllowsLineChanges() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) String() string { return string(s) }
