package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/domain"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/store"
)

func newEntitlementFixture(t *testing.T) (*EntitlementService, *fakeAuthority) {
	t.Helper()

	authority := newFakeAuthority()
	svc := &EntitlementService{
		Store:          newTestStore(t),
		Authority:      authority,
		ActivationCode: "UNLOCK2024",
	}

	ctx := context.Background()
	login := &LoginService{Store: svc.Store, AdminName: "headoffice", AdminPhone: "9000000000"}
	_, err := login.Login(ctx, "Wisdom Academy", "9000000001")
	require.NoError(t, err)

	return svc, authority
}

func TestRequestActivationLifecycle(t *testing.T) {
	t.Parallel()

	svc, authority := newEntitlementFixture(t)
	ctx := context.Background()

	req, err := svc.RequestActivation(ctx, "9000000001", domain.LifetimeMonths)
	require.NoError(t, err)
	require.Equal(t, domain.RequestPending, req.Status)
	require.True(t, req.IsLifetime())
	require.Equal(t, "Wisdom Academy", req.Name)
	require.Equal(t, 1, authority.requestCount())

	// Re-submitting while pending is a no-op returning the same request.
	again, err := svc.RequestActivation(ctx, "9000000001", 12)
	require.NoError(t, err)
	require.Equal(t, req.ID, again.ID)
	require.Equal(t, 1, authority.requestCount())

	plan, err := svc.PlanOf(ctx, "9000000001")
	require.NoError(t, err)
	require.Equal(t, domain.StatePending, plan.State)
	require.NotNil(t, plan.Pending)
}

func TestRequestActivationAuthorityFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	svc, authority := newEntitlementFixture(t)
	authority.setErr(context.DeadlineExceeded)

	req, err := svc.RequestActivation(context.Background(), "9000000001", domain.LifetimeMonths)
	require.NoError(t, err)
	require.Equal(t, domain.RequestPending, req.Status)
}

func TestAcceptActivatesOwner(t *testing.T) {
	t.Parallel()

	svc, _ := newEntitlementFixture(t)
	ctx := context.Background()

	req, err := svc.RequestActivation(ctx, "9000000001", domain.LifetimeMonths)
	require.NoError(t, err)

	accepted, err := svc.Accept(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RequestAccepted, accepted.Status)

	acct, err := svc.Store.Accounts().GetByPhone(ctx, "9000000001")
	require.NoError(t, err)
	require.Equal(t, domain.PlanSubscribed, acct.Plan)
	require.True(t, acct.Subscription.Active)
	require.Equal(t, domain.TermUnlimited, acct.Subscription.Term.Kind)
	require.Equal(t, domain.UnlimitedStudentQuota, acct.StudentQuota)

	// The request reached a terminal status; accepting again fails.
	_, err = svc.Accept(ctx, req.ID)
	require.ErrorIs(t, err, ErrRequestNotPending)
}

func TestDeclineLeavesAccountUntouched(t *testing.T) {
	t.Parallel()

	svc, _ := newEntitlementFixture(t)
	ctx := context.Background()

	req, err := svc.RequestActivation(ctx, "9000000001", domain.LifetimeMonths)
	require.NoError(t, err)
	require.NoError(t, svc.Decline(ctx, req.ID))

	acct, err := svc.Store.Accounts().GetByPhone(ctx, "9000000001")
	require.NoError(t, err)
	require.Equal(t, domain.PlanFree, acct.Plan)

	// Declining a resolved request reports it as such.
	require.ErrorIs(t, svc.Decline(ctx, req.ID), ErrRequestNotPending)
	require.ErrorIs(t, svc.Decline(ctx, "no-such-id"), ErrRequestNotFound)

	// A new cycle creates a new record.
	next, err := svc.RequestActivation(ctx, "9000000001", domain.LifetimeMonths)
	require.NoError(t, err)
	require.NotEqual(t, req.ID, next.ID)
}

func TestRedeemActivationCode(t *testing.T) {
	t.Parallel()

	svc, _ := newEntitlementFixture(t)
	ctx := context.Background()

	_, err := svc.RedeemActivationCode(ctx, "9000000001", "wrong")
	require.ErrorIs(t, err, ErrActivationCodeMismatch)

	// Case-insensitive equality is the entire contract.
	acct, err := svc.RedeemActivationCode(ctx, "9000000001", "  unlock2024 ")
	require.NoError(t, err)
	require.Equal(t, domain.PlanSubscribed, acct.Plan)
	require.True(t, acct.Subscription.Active)

	_, err = svc.RedeemActivationCode(ctx, "9000000001", "UNLOCK2024")
	require.ErrorIs(t, err, domain.ErrAlreadySubscribed)
}

func TestRedeemActivationCodeResolvesPendingRequest(t *testing.T) {
	t.Parallel()

	svc, _ := newEntitlementFixture(t)
	ctx := context.Background()

	req, err := svc.RequestActivation(ctx, "9000000001", domain.LifetimeMonths)
	require.NoError(t, err)

	_, err = svc.RedeemActivationCode(ctx, "9000000001", "UNLOCK2024")
	require.NoError(t, err)

	got, err := svc.Store.Requests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RequestAccepted, got.Status)

	_, err = svc.Store.Requests().GetPendingByOwner(ctx, "9000000001")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestTogglePause(t *testing.T) {
	t.Parallel()

	svc, _ := newEntitlementFixture(t)
	ctx := context.Background()

	// Pausing a FREE account is illegal.
	_, err := svc.TogglePause(ctx, "9000000001", true)
	require.ErrorIs(t, err, domain.ErrNotSubscribed)

	_, err = svc.RedeemActivationCode(ctx, "9000000001", "UNLOCK2024")
	require.NoError(t, err)

	paused, err := svc.TogglePause(ctx, "9000000001", true)
	require.NoError(t, err)
	require.False(t, paused.Subscription.Active)
	// Plan and quota survive the pause.
	require.Equal(t, domain.PlanSubscribed, paused.Plan)
	require.Equal(t, domain.UnlimitedStudentQuota, paused.StudentQuota)

	plan, err := svc.PlanOf(ctx, "9000000001")
	require.NoError(t, err)
	require.Equal(t, domain.StatePaused, plan.State)

	resumed, err := svc.TogglePause(ctx, "9000000001", false)
	require.NoError(t, err)
	require.True(t, resumed.Subscription.Active)
}

func TestCancelReturnsToFreeDefaults(t *testing.T) {
	t.Parallel()

	svc, _ := newEntitlementFixture(t)
	ctx := context.Background()

	_, err := svc.Cancel(ctx, "9000000001")
	require.ErrorIs(t, err, domain.ErrNotSubscribed)

	_, err = svc.RedeemActivationCode(ctx, "9000000001", "UNLOCK2024")
	require.NoError(t, err)

	acct, err := svc.Cancel(ctx, "9000000001")
	require.NoError(t, err)
	require.Equal(t, domain.PlanFree, acct.Plan)
	require.Equal(t, domain.FreeStudentQuota, acct.StudentQuota)
	require.False(t, acct.Subscription.Active)
	require.Equal(t, domain.TermNone, acct.Subscription.Term.Kind)
}
