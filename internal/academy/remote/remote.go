// Package remote talks to the external approval authority that decides
// which accounts get a paid subscription. Three interchangeable bindings
// exist; which one is live is a deployment choice. All of them treat the
// authority as best-effort: callers are expected to survive any error
// here and keep serving from local state.
package remote

import (
	"context"
	"errors"
)

var (
	// ErrProfileMissing is returned when the authority has no record for
	// the given phone. Callers typically react by pushing the profile up
	// and retrying on the next pass.
	ErrProfileMissing = errors.New("remote profile not found")

	// ErrUnavailable wraps transport and upstream failures.
	ErrUnavailable = errors.New("remote authority unavailable")
)

// Profile is the subset of account data mirrored to the authority.
type Profile struct {
	Phone string
	Name  string
}

// Status is the authority's current verdict for one account.
type Status struct {
	Accepted bool
	Paused   bool
}

// Authority is the approval backend. Implementations must be safe for
// concurrent use.
type Authority interface {
	// UpsertProfile registers the account with the authority, or updates
	// its display name if it is already known. Approval flags are never
	// written by this call.
	UpsertProfile(ctx context.Context, p Profile) error

	// SubmitRequest flags the account as awaiting approval.
	SubmitRequest(ctx context.Context, p Profile) error

	// FetchStatus returns the authority's verdict for the account, or
	// ErrProfileMissing if it has never heard of it.
	FetchStatus(ctx context.Context, phone string) (Status, error)
}
