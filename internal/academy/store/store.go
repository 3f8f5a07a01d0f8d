package store

import (
	"context"
	"errors"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable. Every screen in the application reads from this store; it is the
// local source of truth and its errors are never swallowed.
type Store interface {
	Accounts() Accounts
	Requests() Requests
	Students() Students
	Attendance() Attendance
	Exams() Exams
	Receipts() Receipts
	Expenses() Expenses
	Session() Session

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back if fn returns
	// an error and committing otherwise. Preferred over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	// GetByPhone returns an account by its phone identity.
	GetByPhone(ctx context.Context, phone string) (domain.Account, error)

	// Create inserts a new account. Fails with ErrAlreadyExists on a
	// duplicate phone.
	Create(ctx context.Context, a domain.Account) error

	// UpdateName refreshes the display name only (login path).
	UpdateName(ctx context.Context, phone, name string) error

	// UpdateProfile patches the mutable profile fields.
	UpdateProfile(ctx context.Context, phone, name, email, address string) error

	// SetEntitlement replaces plan, subscription and quota in one write.
	SetEntitlement(ctx context.Context, phone string, plan domain.Plan, sub domain.Subscription, quota int) error

	// SetActive flips only the subscription active flag.
	SetActive(ctx context.Context, phone string, active bool) error

	// SetAccessCode sets the owner's role-linking code.
	SetAccessCode(ctx context.Context, phone, code string) error

	// GetByAccessCode resolves an owner by its access code. Codes are
	// unique by construction, so this is an exact lookup, not first-match.
	GetByAccessCode(ctx context.Context, code string) (domain.Account, error)

	// UpsertTeacher creates or overwrites a teacher record keyed by its
	// own phone. Redemption is idempotent through this.
	UpsertTeacher(ctx context.Context, a domain.Account) error

	// ListByRole returns accounts of one role, newest first.
	ListByRole(ctx context.Context, role domain.Role) ([]domain.Account, error)

	// ListTeachersOf returns the teacher records linked to an owner.
	ListTeachersOf(ctx context.Context, ownerPhone string) ([]domain.Account, error)

	// Delete removes a single account.
	Delete(ctx context.Context, phone string) error

	// DeleteTeachersOf removes every teacher linked to an owner (cascade).
	DeleteTeachersOf(ctx context.Context, ownerPhone string) error

	// CountByRole returns the number of accounts with the given role.
	CountByRole(ctx context.Context, role domain.Role) (int, error)

	// CountActiveSubscribed returns the number of subscribed accounts
	// whose subscription is currently active.
	CountActiveSubscribed(ctx context.Context) (int, error)
}

type Requests interface {
	// Create inserts a new activation request.
	Create(ctx context.Context, r domain.ActivationRequest) error

	// GetByID returns a request by id.
	GetByID(ctx context.Context, id string) (domain.ActivationRequest, error)

	// GetPendingByOwner returns the owner's pending request, if any.
	GetPendingByOwner(ctx context.Context, ownerPhone string) (domain.ActivationRequest, error)

	// SetStatus moves a pending request to a terminal status. It only
	// matches rows still pending, so terminal statuses are never rewritten.
	SetStatus(ctx context.Context, id string, status domain.RequestStatus) error

	// ListPending returns all pending requests, newest first.
	ListPending(ctx context.Context) ([]domain.ActivationRequest, error)

	// ListByOwner returns all requests for one owner, newest first.
	ListByOwner(ctx context.Context, ownerPhone string) ([]domain.ActivationRequest, error)

	// ListPendingOwners returns the distinct owner phones with a pending
	// request (the reconciliation sweep set).
	ListPendingOwners(ctx context.Context) ([]string, error)

	// DeleteByOwner removes all requests for an owner (cascade).
	DeleteByOwner(ctx context.Context, ownerPhone string) error

	// CountPending returns the number of pending requests.
	CountPending(ctx context.Context) (int, error)
}

type Students interface {
	Create(ctx context.Context, s domain.Student) error
	GetByID(ctx context.Context, id string) (domain.Student, error)
	Update(ctx context.Context, s domain.Student) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerPhone string) ([]domain.Student, error)
	CountByOwner(ctx context.Context, ownerPhone string) (int, error)
	CountAll(ctx context.Context) (int, error)

	// AddFeesPaid bumps the student's paid total (receipt path).
	AddFeesPaid(ctx context.Context, id string, amount int64) error

	// DeleteByOwner removes the owner's whole student partition (cascade).
	DeleteByOwner(ctx context.Context, ownerPhone string) error
}

type Attendance interface {
	Create(ctx context.Context, rec domain.AttendanceRecord) error
	ListByOwner(ctx context.Context, ownerPhone string) ([]domain.AttendanceRecord, error)
	DeleteByOwner(ctx context.Context, ownerPhone string) error
}

type Exams interface {
	Create(ctx context.Context, rec domain.ExamRecord) error
	ListByOwner(ctx context.Context, ownerPhone string) ([]domain.ExamRecord, error)
	DeleteByOwner(ctx context.Context, ownerPhone string) error
}

type Receipts interface {
	Create(ctx context.Context, r domain.ReceiptLog) error
	ListByOwner(ctx context.Context, ownerPhone string) ([]domain.ReceiptLog, error)
	DeleteByOwner(ctx context.Context, ownerPhone string) error
}

type Expenses interface {
	Create(ctx context.Context, e domain.Expense) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerPhone string) ([]domain.Expense, error)
	DeleteByOwner(ctx context.Context, ownerPhone string) error
}

// Session persists the logged-in identity under a single well-known row so a
// restart restores the principal. Absence means "show login".
type Session interface {
	// Get returns the persisted identity or ErrNotFound.
	Get(ctx context.Context) (string, error)

	// Put replaces the persisted identity.
	Put(ctx context.Context, phone string) error

	// Clear removes the persisted identity. Clearing an empty session is
	// not an error.
	Clear(ctx context.Context) error
}
