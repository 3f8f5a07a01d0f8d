package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/domain"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/store"
	"github.com/suhastanajipatil1735-oss/super-management/pkg/slogx"
)

var ErrConfirmationRequired = errors.New("cascade delete requires confirmation")

// AdminService is the administrator's read surface plus the one
// irreversible operation: cascading a tenant out of existence.
type AdminService struct {
	Store store.Store
}

// Stats is the admin dashboard summary.
type Stats struct {
	Owners              int
	Teachers            int
	Students            int
	ActiveSubscriptions int
	PendingRequests     int
}

// Stats aggregates the dashboard counters.
func (s *AdminService) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	var err error

	if out.Owners, err = s.Store.Accounts().CountByRole(ctx, domain.RoleOwner); err != nil {
		return Stats{}, err
	}
	if out.Teachers, err = s.Store.Accounts().CountByRole(ctx, domain.RoleTeacher); err != nil {
		return Stats{}, err
	}
	if out.Students, err = s.Store.Students().CountAll(ctx); err != nil {
		return Stats{}, err
	}
	if out.ActiveSubscriptions, err = s.Store.Accounts().CountActiveSubscribed(ctx); err != nil {
		return Stats{}, err
	}
	if out.PendingRequests, err = s.Store.Requests().CountPending(ctx); err != nil {
		return Stats{}, err
	}
	return out, nil
}

// ListOwners returns every owner account, newest first.
func (s *AdminService) ListOwners(ctx context.Context) ([]domain.Account, error) {
	return s.Store.Accounts().ListByRole(ctx, domain.RoleOwner)
}

// PendingRequests returns the approval queue, newest first.
func (s *AdminService) PendingRequests(ctx context.Context) ([]domain.ActivationRequest, error) {
	return s.Store.Requests().ListPending(ctx)
}

// DeleteTenant cascades an owner out of every partitioned collection:
// students, attendance, exams, receipts, expenses, activation requests and
// linked teacher records, then the account itself. The confirm flag must be
// set; there is no undo.
func (s *AdminService) DeleteTenant(ctx context.Context, ownerPhone string, confirm bool) error {
	log := slogx.FromContext(ctx)

	if !confirm {
		return ErrConfirmationRequired
	}

	acct, err := s.Store.Accounts().GetByPhone(ctx, ownerPhone)
	if err != nil {
		return err
	}
	if !acct.IsOwner() {
		return domain.ErrNotOwner
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Students().DeleteByOwner(ctx, ownerPhone); err != nil {
			return err
		}
		if err := tx.Attendance().DeleteByOwner(ctx, ownerPhone); err != nil {
			return err
		}
		if err := tx.Exams().DeleteByOwner(ctx, ownerPhone); err != nil {
			return err
		}
		if err := tx.Receipts().DeleteByOwner(ctx, ownerPhone); err != nil {
			return err
		}
		if err := tx.Expenses().DeleteByOwner(ctx, ownerPhone); err != nil {
			return err
		}
		if err := tx.Requests().DeleteByOwner(ctx, ownerPhone); err != nil {
			return err
		}
		if err := tx.Accounts().DeleteTeachersOf(ctx, ownerPhone); err != nil {
			return err
		}
		return tx.Accounts().Delete(ctx, ownerPhone)
	})
	if err != nil {
		log.Error("tenant cascade failed",
			slog.String("owner", ownerPhone),
			slog.Any("error", err),
		)
		return err
	}

	// A session left pointing at the deleted tenant is now meaningless.
	if current, err := s.Store.Session().Get(ctx); err == nil && current == ownerPhone {
		_ = s.Store.Session().Clear(ctx)
	}

	log.Info("tenant deleted", slog.String("owner", ownerPhone))
	return nil
}
