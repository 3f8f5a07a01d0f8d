package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/remote"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/store"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/store/drivers/sqlite"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// fakeAuthority is an in-memory remote.Authority with scriptable status.
type fakeAuthority struct {
	mu sync.Mutex

	status   map[string]remote.Status
	err      error
	upserts  []remote.Profile
	requests []remote.Profile
}

func newFakeAuthority() *fakeAuthority {
	return &fakeAuthority{status: make(map[string]remote.Status)}
}

func (f *fakeAuthority) setStatus(phone string, s remote.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[phone] = s
}

func (f *fakeAuthority) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeAuthority) UpsertProfile(_ context.Context, p remote.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, p)
	if _, ok := f.status[p.Phone]; !ok {
		f.status[p.Phone] = remote.Status{}
	}
	return nil
}

func (f *fakeAuthority) SubmitRequest(_ context.Context, p remote.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.requests = append(f.requests, p)
	return nil
}

func (f *fakeAuthority) FetchStatus(_ context.Context, phone string) (remote.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return remote.Status{}, f.err
	}
	s, ok := f.status[phone]
	if !ok {
		return remote.Status{}, remote.ErrProfileMissing
	}
	return s, nil
}

func (f *fakeAuthority) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.upserts)
}

func (f *fakeAuthority) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}
