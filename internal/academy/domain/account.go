package domain

import (
	"errors"
	"time"
)

// Role identifies what kind of principal an account record represents.
type Role string

const (
	// RoleOwner owns a data partition (students, attendance, fees).
	RoleOwner Role = "owner"
	// RoleTeacher borrows an owner's partition via LinkedOwner.
	RoleTeacher Role = "teacher"
	// RoleAdmin is the single superuser. It has no partition and is never
	// persisted as an account record.
	RoleAdmin Role = "admin"
)

// Plan is the coarse entitlement level of a tenant.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanSubscribed Plan = "subscribed"
)

// TermKind classifies the subscription term. An explicit tri-state instead of
// a far-future end date, so "lifetime" never drifts at a century boundary.
type TermKind string

const (
	TermNone      TermKind = "none"
	TermFixed     TermKind = "fixed"
	TermUnlimited TermKind = "unlimited"
)

// Term describes how long a subscription runs. End is set only for TermFixed.
type Term struct {
	Kind TermKind
	End  *time.Time
}

// Subscription carries the human-approved entitlement flags for a tenant.
type Subscription struct {
	Active bool
	Term   Term
	Start  *time.Time
}

// Student quotas. Free tenants get a small fixed ceiling; subscribed tenants
// get an effectively unlimited one.
const (
	FreeStudentQuota      = 6
	UnlimitedStudentQuota = 99999
)

// Account is one tenant/user record. Phone is the identity and the record
// key; it is immutable once created.
type Account struct {
	Phone        string
	Name         string
	Email        string
	Address      string
	Role         Role
	Plan         Plan
	Subscription Subscription
	StudentQuota int

	// AccessCode is set by owners for the role-linking protocol. Unique
	// across owners, enforced at set time.
	AccessCode string

	// LinkedOwner is set on teacher records only: the phone of the owner
	// whose partition they read and write. A teacher's own plan and quota
	// fields are inert; all checks resolve through the linked owner.
	LinkedOwner string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EntitlementState is the derived position of a tenant in the subscription
// lifecycle. PENDING is a property of the request table, so deriving it
// needs the "has pending request" bit alongside the account.
type EntitlementState string

const (
	StateFree    EntitlementState = "FREE"
	StatePending EntitlementState = "PENDING"
	StateActive  EntitlementState = "ACTIVE"
	StatePaused  EntitlementState = "PAUSED"
)

// State derives the entitlement state from the account plus whether a
// pending activation request exists for it.
func (a Account) State(hasPendingRequest bool) EntitlementState {
	if a.Plan == PlanSubscribed {
		if a.Subscription.Active {
			return StateActive
		}
		return StatePaused
	}
	if hasPendingRequest {
		return StatePending
	}
	return StateFree
}

// IsOwner reports whether the account owns a partition.
func (a Account) IsOwner() bool { return a.Role == RoleOwner }

// PartitionOwner returns the phone whose partition this account operates on.
func (a Account) PartitionOwner() string {
	if a.Role == RoleTeacher {
		return a.LinkedOwner
	}
	return a.Phone
}

var (
	ErrNotSubscribed     = errors.New("account is not subscribed")
	ErrAlreadySubscribed = errors.New("account is already subscribed")
	ErrNotOwner          = errors.New("account is not an owner")
)

// NewOwner builds a fresh FREE owner record as created at first login.
func NewOwner(phone, name string, now time.Time) Account {
	return Account{
		Phone:        phone,
		Name:         name,
		Role:         RoleOwner,
		Plan:         PlanFree,
		Subscription: Subscription{Term: Term{Kind: TermNone}},
		StudentQuota: FreeStudentQuota,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Activate moves the account to the subscribed, unlimited-term state. Legal
// from FREE or PENDING; a no-op error if already subscribed so duplicate
// triggers (admin accept racing reconciliation) surface cleanly.
func (a *Account) Activate(now time.Time) error {
	if !a.IsOwner() {
		return ErrNotOwner
	}
	if a.Plan == PlanSubscribed {
		return ErrAlreadySubscribed
	}
	start := now
	a.Plan = PlanSubscribed
	a.Subscription = Subscription{
		Active: true,
		Term:   Term{Kind: TermUnlimited},
		Start:  &start,
	}
	a.StudentQuota = UnlimitedStudentQuota
	return nil
}

// SetPaused flips only the active flag. Quota and term are untouched while
// paused; pausing restricts usage at the edge, not the data layer.
func (a *Account) SetPaused(paused bool) error {
	if a.Plan != PlanSubscribed {
		return ErrNotSubscribed
	}
	a.Subscription.Active = !paused
	return nil
}

// Cancel revokes the subscription and resets entitlement to FREE defaults.
// Legal from ACTIVE or PAUSED.
func (a *Account) Cancel() error {
	if a.Plan != PlanSubscribed {
		return ErrNotSubscribed
	}
	a.Plan = PlanFree
	a.Subscription = Subscription{Term: Term{Kind: TermNone}}
	a.StudentQuota = FreeStudentQuota
	return nil
}
