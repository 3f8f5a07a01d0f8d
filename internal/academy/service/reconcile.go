package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/domain"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/remote"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/store"
	"github.com/suhastanajipatil1735-oss/super-management/pkg/slogx"
)

// Outcome reports what a reconciliation pass did.
type Outcome struct {
	// Synced is false when the authority could not be reached; local
	// state is preserved untouched in that case.
	Synced bool

	// Registered means the authority had no record and the profile was
	// pushed up. Flags are diffed on a later pass.
	Registered bool

	// Changed means a local mutation was applied.
	Changed bool

	// State is the entitlement state after the pass.
	State domain.EntitlementState
}

// Reconciler pulls approval flags from the remote authority and applies
// one-directional, idempotent corrections to local accounts. Remote failure
// is absorbed here: a pass that cannot reach the authority reports
// Synced=false and mutates nothing.
type Reconciler struct {
	Store     store.Store
	Authority remote.Authority

	// Timeout bounds one detached pass end to end.
	Timeout time.Duration

	mu       sync.Mutex
	inflight map[string]context.CancelFunc
	wg       sync.WaitGroup
}

// NewReconciler builds a reconciler. A zero timeout defaults to 15s.
func NewReconciler(st store.Store, authority remote.Authority, timeout time.Duration) *Reconciler {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Reconciler{
		Store:     st,
		Authority: authority,
		Timeout:   timeout,
		inflight:  make(map[string]context.CancelFunc),
	}
}

// Reconcile runs one session-guarded pass for an owner: corrections apply
// only while that owner is still the logged-in identity, so a pass that
// resolves after logout cannot resurrect the session's view.
func (r *Reconciler) Reconcile(ctx context.Context, phone string) (Outcome, error) {
	return r.reconcile(ctx, phone, false)
}

// ReconcileSweep runs one pass without the session guard. The periodic
// sweep uses it to keep pending owners fresh regardless of who is logged in.
func (r *Reconciler) ReconcileSweep(ctx context.Context, phone string) (Outcome, error) {
	return r.reconcile(ctx, phone, true)
}

func (r *Reconciler) reconcile(ctx context.Context, phone string, sweep bool) (Outcome, error) {
	log := slogx.FromContext(ctx)

	// 1. Only owner accounts reconcile.
	acct, err := r.Store.Accounts().GetByPhone(ctx, phone)
	if err != nil {
		return Outcome{}, err
	}
	if !acct.IsOwner() {
		return Outcome{}, domain.ErrNotOwner
	}

	pending, hasPending, err := r.pendingRequest(ctx, phone)
	if err != nil {
		return Outcome{}, err
	}

	// 2. Ask the authority. Unreachable means skip, never regress.
	status, err := r.Authority.FetchStatus(ctx, phone)
	if errors.Is(err, remote.ErrProfileMissing) {
		// 3. Not registered remotely yet: push the profile up and let a
		// later pass diff the flags.
		if err := r.Authority.UpsertProfile(ctx, remote.Profile{Phone: acct.Phone, Name: acct.Name}); err != nil {
			log.Warn("skipping reconciliation, authority unreachable", slog.Any("error", err))
			return Outcome{State: acct.State(hasPending)}, nil
		}
		return Outcome{Synced: true, Registered: true, State: acct.State(hasPending)}, nil
	}
	if err != nil {
		log.Warn("skipping reconciliation, authority unreachable", slog.Any("error", err))
		return Outcome{State: acct.State(hasPending)}, nil
	}

	// 4. Session guard. Applies to interactive passes only.
	if !sweep {
		current, err := r.Store.Session().Get(ctx)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return Outcome{}, err
		}
		if current != phone {
			log.Debug("dropping reconciliation result, session changed",
				slog.String("phone", phone),
			)
			return Outcome{Synced: true, State: acct.State(hasPending)}, nil
		}
	}

	// 5. Diff and correct.
	changed, err := r.apply(ctx, &acct, status, pending, hasPending)
	if err != nil {
		return Outcome{}, err
	}
	if changed {
		hasPending = hasPending && !status.Accepted
	}

	out := Outcome{Synced: true, Changed: changed, State: acct.State(hasPending)}
	log.Debug("reconciliation pass complete",
		slog.String("phone", phone),
		slog.Bool("changed", changed),
		slog.String("state", string(out.State)),
	)
	return out, nil
}

func (r *Reconciler) apply(
	ctx context.Context,
	acct *domain.Account,
	status remote.Status,
	pending domain.ActivationRequest,
	hasPending bool,
) (bool, error) {
	switch {
	case status.Accepted && acct.Plan != domain.PlanSubscribed:
		// FREE or PENDING to ACTIVE.
		if err := acct.Activate(time.Now().UTC()); err != nil {
			return false, err
		}
		err := r.Store.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Accounts().SetEntitlement(ctx, acct.Phone, acct.Plan, acct.Subscription, acct.StudentQuota); err != nil {
				return err
			}
			if hasPending {
				if err := tx.Requests().SetStatus(ctx, pending.ID, domain.RequestAccepted); err != nil && !errors.Is(err, store.ErrNotFound) {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return false, err
		}
		return true, nil

	case acct.Plan == domain.PlanSubscribed:
		// A remote pause always wins over local, in both directions.
		wantActive := !status.Paused
		if acct.Subscription.Active == wantActive {
			return false, nil
		}
		if err := r.Store.Accounts().SetActive(ctx, acct.Phone, wantActive); err != nil {
			return false, err
		}
		acct.Subscription.Active = wantActive
		return true, nil

	default:
		return false, nil
	}
}

// SweepPending reconciles every owner with an outstanding activation
// request, unguarded. Returns how many owners were visited and how many
// changed; one owner's failure does not stop the rest.
func (r *Reconciler) SweepPending(ctx context.Context) (visited, changed int, err error) {
	owners, err := r.Store.Requests().ListPendingOwners(ctx)
	if err != nil {
		return 0, 0, err
	}

	log := slogx.FromContext(ctx)
	for _, phone := range owners {
		out, err := r.ReconcileSweep(ctx, phone)
		if err != nil {
			log.Error("sweep reconciliation failed",
				slog.String("owner", phone),
				slog.Any("error", err),
			)
			continue
		}
		if out.Changed {
			changed++
		}
	}
	return len(owners), changed, nil
}

func (r *Reconciler) pendingRequest(ctx context.Context, phone string) (domain.ActivationRequest, bool, error) {
	req, err := r.Store.Requests().GetPendingByOwner(ctx, phone)
	if errors.Is(err, store.ErrNotFound) {
		return domain.ActivationRequest{}, false, nil
	}
	if err != nil {
		return domain.ActivationRequest{}, false, err
	}
	return req, true, nil
}

// Trigger starts a detached reconciliation for the owner. At most one is in
// flight per identity; later triggers while one is outstanding coalesce into
// a no-op. The pass runs on its own deadline, detached from the caller's
// request lifetime but keeping its logger.
func (r *Reconciler) Trigger(ctx context.Context, phone string) {
	r.mu.Lock()
	if _, running := r.inflight[phone]; running {
		r.mu.Unlock()
		return
	}

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.Timeout)
	r.inflight[phone] = cancel
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer func() {
			cancel()
			r.mu.Lock()
			delete(r.inflight, phone)
			r.mu.Unlock()
			r.wg.Done()
		}()

		if _, err := r.Reconcile(runCtx, phone); err != nil {
			slogx.FromContext(runCtx).Error("detached reconciliation failed",
				slog.String("phone", phone),
				slog.Any("error", err),
			)
		}
	}()
}

// InFlight reports whether a detached pass is outstanding for the owner,
// which drives the "syncing" affordance.
func (r *Reconciler) InFlight(phone string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, running := r.inflight[phone]
	return running
}

// CancelFor aborts any in-flight pass for the identity. Called on logout.
func (r *Reconciler) CancelFor(phone string) {
	r.mu.Lock()
	cancel, running := r.inflight[phone]
	r.mu.Unlock()
	if running {
		cancel()
	}
}

// Close cancels everything in flight and waits for the workers to drain.
func (r *Reconciler) Close() {
	r.mu.Lock()
	for _, cancel := range r.inflight {
		cancel()
	}
	r.mu.Unlock()
	r.wg.Wait()
}
