package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/domain"
)

func newLoginService(t *testing.T) *LoginService {
	t.Helper()
	return &LoginService{
		Store:      newTestStore(t),
		AdminName:  "headoffice",
		AdminPhone: "9000000000",
	}
}

func TestLoginCreatesFreeOwnerOnFirstContact(t *testing.T) {
	t.Parallel()

	svc := newLoginService(t)
	ctx := context.Background()

	p, err := svc.Login(ctx, "Wisdom Academy", "9000000001")
	require.NoError(t, err)
	require.Equal(t, domain.RoleOwner, p.Role)
	require.NotNil(t, p.Account)
	require.Equal(t, domain.PlanFree, p.Account.Plan)
	require.Equal(t, domain.FreeStudentQuota, p.Account.StudentQuota)

	acct, err := svc.Store.Accounts().GetByPhone(ctx, "9000000001")
	require.NoError(t, err)
	require.Equal(t, "Wisdom Academy", acct.Name)
	require.Equal(t, domain.StateFree, acct.State(false))
}

func TestLoginRefreshesNameButNotEntitlement(t *testing.T) {
	t.Parallel()

	svc := newLoginService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "Wisdom Academy", "9000000001")
	require.NoError(t, err)

	// Promote the account out of band.
	acct, err := svc.Store.Accounts().GetByPhone(ctx, "9000000001")
	require.NoError(t, err)
	require.NoError(t, acct.Activate(acct.CreatedAt))
	require.NoError(t, svc.Store.Accounts().SetEntitlement(ctx, acct.Phone, acct.Plan, acct.Subscription, acct.StudentQuota))

	p, err := svc.Login(ctx, "Wisdom Academy Renamed", "9000000001")
	require.NoError(t, err)
	require.Equal(t, "Wisdom Academy Renamed", p.Account.Name)
	require.Equal(t, domain.PlanSubscribed, p.Account.Plan)
	require.Equal(t, domain.UnlimitedStudentQuota, p.Account.StudentQuota)
}

func TestLoginAdminPairSkipsEntitlement(t *testing.T) {
	t.Parallel()

	svc := newLoginService(t)
	ctx := context.Background()

	p, err := svc.Login(ctx, "HeadOffice", "9000000000")
	require.NoError(t, err)
	require.True(t, p.IsAdmin())
	require.Nil(t, p.Account)

	// No account record is ever created for the administrator.
	_, err = svc.Store.Accounts().GetByPhone(ctx, "9000000000")
	require.Error(t, err)
}

func TestLoginRejectsMissingCredentials(t *testing.T) {
	t.Parallel()

	svc := newLoginService(t)

	_, err := svc.Login(context.Background(), "", "9000000001")
	require.ErrorIs(t, err, ErrMissingCredentials)

	_, err = svc.Login(context.Background(), "Wisdom", "  ")
	require.ErrorIs(t, err, ErrMissingCredentials)
}

func TestRestoreRebuildsPrincipal(t *testing.T) {
	t.Parallel()

	svc := newLoginService(t)
	ctx := context.Background()

	_, err := svc.Restore(ctx)
	require.ErrorIs(t, err, ErrNoSession)

	_, err = svc.Login(ctx, "Wisdom Academy", "9000000001")
	require.NoError(t, err)

	p, err := svc.Restore(ctx)
	require.NoError(t, err)
	require.Equal(t, "9000000001", p.Phone)
	require.Equal(t, domain.RoleOwner, p.Role)
}

func TestRestoreClearsStaleSession(t *testing.T) {
	t.Parallel()

	svc := newLoginService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "Wisdom Academy", "9000000001")
	require.NoError(t, err)
	require.NoError(t, svc.Store.Accounts().Delete(ctx, "9000000001"))

	_, err = svc.Restore(ctx)
	require.ErrorIs(t, err, ErrNoSession)

	// The dangling session row is gone too.
	_, err = svc.Restore(ctx)
	require.ErrorIs(t, err, ErrNoSession)
}

func TestLogoutClearsSession(t *testing.T) {
	t.Parallel()

	svc := newLoginService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "Wisdom Academy", "9000000001")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx))

	_, err = svc.Restore(ctx)
	require.ErrorIs(t, err, ErrNoSession)

	// Logging out twice is harmless.
	require.NoError(t, svc.Logout(ctx))
}
