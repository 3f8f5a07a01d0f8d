package remote

import "context"

// Disabled is the authority used when no backend is configured. Every call
// reports unavailable, which callers already treat as "skip and keep local
// state", so deployments without an approval backend degrade cleanly to the
// manual activation-code path.
type Disabled struct{}

func (Disabled) UpsertProfile(context.Context, Profile) error { return ErrUnavailable }
func (Disabled) SubmitRequest(context.Context, Profile) error { return ErrUnavailable }
func (Disabled) FetchStatus(context.Context, string) (Status, error) {
	return Status{}, ErrUnavailable
}
