package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/domain"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/store"
	"github.com/suhastanajipatil1735-oss/super-management/pkg/slogx"
)

var (
	ErrMissingCredentials = errors.New("name and phone are required")
	ErrNoSession          = errors.New("no active session")
)

// Principal is the resolved identity for a login or a restored session.
// Account is nil for the administrator, who has no partition and no record.
type Principal struct {
	Role    domain.Role
	Phone   string
	Name    string
	Account *domain.Account
}

// IsAdmin reports whether the principal is the administrator.
func (p Principal) IsAdmin() bool { return p.Role == domain.RoleAdmin }

// LoginService resolves (name, phone) pairs into principals. There is no
// password: possession of the phone number is the whole credential, matching
// the trust model of the approval backends.
type LoginService struct {
	Store      store.Store
	Reconciler *Reconciler

	// The single administrator pair. Matching it skips all entitlement
	// logic and yields a principal with no partition.
	AdminName  string
	AdminPhone string
}

// Login resolves the credentials, creating a fresh FREE owner on first
// contact, and persists the session so a restart restores the principal.
// Owners get a detached reconciliation kicked off; teachers and the
// administrator never reconcile.
func (s *LoginService) Login(ctx context.Context, name, phone string) (Principal, error) {
	log := slogx.FromContext(ctx)

	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" || phone == "" {
		return Principal{}, ErrMissingCredentials
	}

	// 1. The administrator pair short-circuits everything.
	if strings.EqualFold(name, s.AdminName) && phone == s.AdminPhone {
		if err := s.Store.Session().Put(ctx, phone); err != nil {
			log.Error("failed to persist admin session", slog.Any("error", err))
			return Principal{}, err
		}
		log.Info("administrator logged in")
		return Principal{Role: domain.RoleAdmin, Phone: phone, Name: s.AdminName}, nil
	}

	// 2. Resolve the account by phone, creating a FREE owner on first login.
	acct, err := s.Store.Accounts().GetByPhone(ctx, phone)
	switch {
	case errors.Is(err, store.ErrNotFound):
		acct = domain.NewOwner(phone, name, time.Now().UTC())
		if err := s.Store.Accounts().Create(ctx, acct); err != nil {
			log.Error("failed to create account", slog.Any("error", err))
			return Principal{}, err
		}
		log.Info("created new owner account", slog.String("phone", phone))
	case err != nil:
		log.Error("failed to fetch account", slog.Any("error", err))
		return Principal{}, err
	default:
		// 3. Refresh the display name only. Role never changes here and
		// plan and quota never regress on login.
		if acct.Name != name {
			if err := s.Store.Accounts().UpdateName(ctx, phone, name); err != nil {
				log.Error("failed to refresh display name", slog.Any("error", err))
				return Principal{}, err
			}
			acct.Name = name
		}
	}

	// 4. Persist the session.
	if err := s.Store.Session().Put(ctx, phone); err != nil {
		log.Error("failed to persist session", slog.Any("error", err))
		return Principal{}, err
	}

	// 5. Owners get a detached reconciliation; the login response does not
	// wait for it.
	if acct.IsOwner() && s.Reconciler != nil {
		s.Reconciler.Trigger(ctx, phone)
	}

	log.Debug("login resolved",
		slog.String("phone", phone),
		slog.String("role", string(acct.Role)),
	)
	return Principal{Role: acct.Role, Phone: acct.Phone, Name: acct.Name, Account: &acct}, nil
}

// Restore rebuilds the principal from the persisted session, or returns
// ErrNoSession when nobody is logged in.
func (s *LoginService) Restore(ctx context.Context) (Principal, error) {
	phone, err := s.Store.Session().Get(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Principal{}, ErrNoSession
		}
		return Principal{}, err
	}

	if phone == s.AdminPhone {
		return Principal{Role: domain.RoleAdmin, Phone: phone, Name: s.AdminName}, nil
	}

	acct, err := s.Store.Accounts().GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Stale session pointing at a cascaded account.
			_ = s.Store.Session().Clear(ctx)
			return Principal{}, ErrNoSession
		}
		return Principal{}, err
	}

	return Principal{Role: acct.Role, Phone: acct.Phone, Name: acct.Name, Account: &acct}, nil
}

// Logout tears the session down and cancels any reconciliation still in
// flight for that identity, so a late result cannot resurrect it.
func (s *LoginService) Logout(ctx context.Context) error {
	phone, err := s.Store.Session().Get(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if err := s.Store.Session().Clear(ctx); err != nil {
		return err
	}
	if phone != "" && s.Reconciler != nil {
		s.Reconciler.CancelFor(phone)
	}

	slogx.FromContext(ctx).Info("logged out", slog.String("phone", phone))
	return nil
}
