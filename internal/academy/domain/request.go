package domain

import "time"

// RequestStatus is the lifecycle of an activation request. Terminal statuses
// are never mutated again; a new cycle creates a new record.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestDeclined RequestStatus = "declined"
)

// LifetimeMonths is the sentinel for "no fixed term" in MonthsRequested.
const LifetimeMonths = 0

// ActivationRequest is one subscription ask by an owner. At most one pending
// request exists per owner at a time.
type ActivationRequest struct {
	ID         string
	OwnerPhone string
	// Name is a snapshot of the owner's display name at request time.
	Name            string
	MonthsRequested int
	Status          RequestStatus
	CreatedAt       time.Time
}

// IsLifetime reports whether the request asks for an unlimited term.
func (r ActivationRequest) IsLifetime() bool {
	return r.MonthsRequested == LifetimeMonths
}
