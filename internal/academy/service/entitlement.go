package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/domain"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/remote"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/store"
	"github.com/suhastanajipatil1735-oss/super-management/pkg/idx"
	"github.com/suhastanajipatil1735-oss/super-management/pkg/slogx"
)

var (
	ErrActivationCodeMismatch = errors.New("activation code does not match")
	ErrRequestNotFound        = errors.New("activation request not found")
	ErrRequestNotPending      = errors.New("activation request already resolved")
)

// EntitlementService owns every subscription state transition: request
// submission by owners, accept/decline and pause/cancel by the
// administrator, and the manual activation-code path.
type EntitlementService struct {
	Store     store.Store
	Authority remote.Authority

	// ActivationCode is the global manual unlock secret. Compared
	// case-insensitively; equality is the entire contract.
	ActivationCode string
}

// Plan is the entitlement view for one owner: the account, its derived
// state, and the pending request if one exists.
type Plan struct {
	Account    domain.Account
	State      domain.EntitlementState
	Pending    *domain.ActivationRequest
	StudentUse int
}

// PlanOf assembles the entitlement view for an owner.
func (s *EntitlementService) PlanOf(ctx context.Context, ownerPhone string) (Plan, error) {
	acct, err := s.Store.Accounts().GetByPhone(ctx, ownerPhone)
	if err != nil {
		return Plan{}, err
	}
	if !acct.IsOwner() {
		return Plan{}, domain.ErrNotOwner
	}

	var pending *domain.ActivationRequest
	req, err := s.Store.Requests().GetPendingByOwner(ctx, ownerPhone)
	switch {
	case err == nil:
		pending = &req
	case !errors.Is(err, store.ErrNotFound):
		return Plan{}, err
	}

	used, err := s.Store.Students().CountByOwner(ctx, ownerPhone)
	if err != nil {
		return Plan{}, err
	}

	return Plan{
		Account:    acct,
		State:      acct.State(pending != nil),
		Pending:    pending,
		StudentUse: used,
	}, nil
}

// RequestActivation submits a subscription ask for the owner. Re-invoking
// while a request is already pending returns the existing request unchanged,
// so duplicate clicks are harmless. The ask is mirrored to the remote
// authority best-effort; its failure never fails the local submission.
func (s *EntitlementService) RequestActivation(ctx context.Context, ownerPhone string, months int) (domain.ActivationRequest, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate the account.
	acct, err := s.Store.Accounts().GetByPhone(ctx, ownerPhone)
	if err != nil {
		return domain.ActivationRequest{}, err
	}
	if !acct.IsOwner() {
		return domain.ActivationRequest{}, domain.ErrNotOwner
	}
	if acct.Plan == domain.PlanSubscribed {
		return domain.ActivationRequest{}, domain.ErrAlreadySubscribed
	}

	// 2. Idempotency: an outstanding request absorbs the resubmit.
	existing, err := s.Store.Requests().GetPendingByOwner(ctx, ownerPhone)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.ActivationRequest{}, err
	}

	// 3. Create the request.
	req := domain.ActivationRequest{
		ID:              idx.New().String(),
		OwnerPhone:      ownerPhone,
		Name:            acct.Name,
		MonthsRequested: months,
		Status:          domain.RequestPending,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.Store.Requests().Create(ctx, req); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost a race with a duplicate submit; surface the winner.
			return s.Store.Requests().GetPendingByOwner(ctx, ownerPhone)
		}
		log.Error("failed to create activation request", slog.Any("error", err))
		return domain.ActivationRequest{}, err
	}

	// 4. Mirror to the authority, best-effort.
	if s.Authority != nil {
		if err := s.Authority.SubmitRequest(ctx, remote.Profile{Phone: ownerPhone, Name: acct.Name}); err != nil {
			log.Warn("could not mirror request to authority", slog.Any("error", err))
		}
	}

	log.Info("activation requested",
		slog.String("owner", ownerPhone),
		slog.Int("months", months),
	)
	return req, nil
}

// RedeemActivationCode is the manual unlock path from FREE or PENDING
// straight to ACTIVE, bypassing the remote authority entirely.
func (s *EntitlementService) RedeemActivationCode(ctx context.Context, ownerPhone, code string) (domain.Account, error) {
	if s.ActivationCode == "" || !strings.EqualFold(strings.TrimSpace(code), s.ActivationCode) {
		return domain.Account{}, ErrActivationCodeMismatch
	}
	return s.activate(ctx, ownerPhone)
}

// Accept resolves a pending request and activates its owner. The two writes
// commit together.
func (s *EntitlementService) Accept(ctx context.Context, requestID string) (domain.ActivationRequest, error) {
	req, err := s.Store.Requests().GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ActivationRequest{}, ErrRequestNotFound
		}
		return domain.ActivationRequest{}, err
	}
	if req.Status != domain.RequestPending {
		return domain.ActivationRequest{}, ErrRequestNotPending
	}

	acct, err := s.Store.Accounts().GetByPhone(ctx, req.OwnerPhone)
	if err != nil {
		return domain.ActivationRequest{}, err
	}
	if err := acct.Activate(time.Now().UTC()); err != nil {
		return domain.ActivationRequest{}, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Requests().SetStatus(ctx, req.ID, domain.RequestAccepted); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRequestNotPending
			}
			return err
		}
		return tx.Accounts().SetEntitlement(ctx, acct.Phone, acct.Plan, acct.Subscription, acct.StudentQuota)
	})
	if err != nil {
		return domain.ActivationRequest{}, err
	}

	// Best-effort: keep the authority's record of the owner current. The
	// local acceptance stands either way.
	if s.Authority != nil {
		if err := s.Authority.UpsertProfile(ctx, remote.Profile{Phone: acct.Phone, Name: acct.Name}); err != nil {
			slogx.FromContext(ctx).Warn("could not mirror acceptance to authority", slog.Any("error", err))
		}
	}

	slogx.FromContext(ctx).Info("activation request accepted",
		slog.String("request_id", req.ID),
		slog.String("owner", req.OwnerPhone),
	)
	req.Status = domain.RequestAccepted
	return req, nil
}

// Decline resolves a pending request without touching the account.
func (s *EntitlementService) Decline(ctx context.Context, requestID string) error {
	err := s.Store.Requests().SetStatus(ctx, requestID, domain.RequestDeclined)
	if errors.Is(err, store.ErrNotFound) {
		// Either no such request or it already reached a terminal status.
		if _, getErr := s.Store.Requests().GetByID(ctx, requestID); getErr == nil {
			return ErrRequestNotPending
		}
		return ErrRequestNotFound
	}
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("activation request declined", slog.String("request_id", requestID))
	return nil
}

// TogglePause flips the active flag on a subscribed account. Everything
// else, quota included, stays as is.
func (s *EntitlementService) TogglePause(ctx context.Context, ownerPhone string, paused bool) (domain.Account, error) {
	acct, err := s.Store.Accounts().GetByPhone(ctx, ownerPhone)
	if err != nil {
		return domain.Account{}, err
	}
	if err := acct.SetPaused(paused); err != nil {
		return domain.Account{}, err
	}
	if err := s.Store.Accounts().SetActive(ctx, ownerPhone, acct.Subscription.Active); err != nil {
		return domain.Account{}, err
	}

	slogx.FromContext(ctx).Info("subscription pause toggled",
		slog.String("owner", ownerPhone),
		slog.Bool("paused", paused),
	)
	return acct, nil
}

// Cancel revokes a subscription, returning the account to FREE defaults.
func (s *EntitlementService) Cancel(ctx context.Context, ownerPhone string) (domain.Account, error) {
	acct, err := s.Store.Accounts().GetByPhone(ctx, ownerPhone)
	if err != nil {
		return domain.Account{}, err
	}
	if err := acct.Cancel(); err != nil {
		return domain.Account{}, err
	}
	if err := s.Store.Accounts().SetEntitlement(ctx, ownerPhone, acct.Plan, acct.Subscription, acct.StudentQuota); err != nil {
		return domain.Account{}, err
	}

	slogx.FromContext(ctx).Info("subscription cancelled", slog.String("owner", ownerPhone))
	return acct, nil
}

func (s *EntitlementService) activate(ctx context.Context, ownerPhone string) (domain.Account, error) {
	acct, err := s.Store.Accounts().GetByPhone(ctx, ownerPhone)
	if err != nil {
		return domain.Account{}, err
	}
	if err := acct.Activate(time.Now().UTC()); err != nil {
		return domain.Account{}, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().SetEntitlement(ctx, acct.Phone, acct.Plan, acct.Subscription, acct.StudentQuota); err != nil {
			return err
		}
		// A pending request, if any, rides along to accepted.
		req, err := tx.Requests().GetPendingByOwner(ctx, ownerPhone)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Requests().SetStatus(ctx, req.ID, domain.RequestAccepted)
	})
	if err != nil {
		return domain.Account{}, err
	}

	slogx.FromContext(ctx).Info("subscription activated", slog.String("owner", ownerPhone))
	return acct, nil
}
