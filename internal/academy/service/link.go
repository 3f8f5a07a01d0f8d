package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/domain"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/store"
	"github.com/suhastanajipatil1735-oss/super-management/pkg/linkx"
	"github.com/suhastanajipatil1735-oss/super-management/pkg/slogx"
)

var (
	ErrCodeEmpty      = errors.New("access code must not be empty")
	ErrCodeTaken      = errors.New("access code already in use")
	ErrCodeNotFound   = errors.New("access code does not match any owner")
	ErrNoAccessCode   = errors.New("owner has no access code set")
	ErrCannotLinkSelf = errors.New("owner cannot link to itself")
)

// LinkService implements the role-linking protocol: owners mint an access
// code (and optionally a self-contained join link), teachers redeem it to
// attach to the owner's partition.
type LinkService struct {
	Store store.Store

	// JoinBaseURL is the page join links point at.
	JoinBaseURL string
}

// SetAccessCode sets or replaces the owner's code. Codes are unique across
// owners; a clash is reported, never silently first-matched.
func (s *LinkService) SetAccessCode(ctx context.Context, ownerPhone, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrCodeEmpty
	}

	acct, err := s.Store.Accounts().GetByPhone(ctx, ownerPhone)
	if err != nil {
		return err
	}
	if !acct.IsOwner() {
		return domain.ErrNotOwner
	}

	if err := s.Store.Accounts().SetAccessCode(ctx, ownerPhone, code); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrCodeTaken
		}
		return err
	}

	slogx.FromContext(ctx).Info("access code set", slog.String("owner", ownerPhone))
	return nil
}

// RedeemCode attaches a teacher to the owner that minted the code. Redeeming
// twice with the same teacher phone overwrites the existing teacher record,
// it never duplicates.
func (s *LinkService) RedeemCode(ctx context.Context, teacherPhone, teacherName, code string) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	owner, err := s.Store.Accounts().GetByAccessCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrCodeNotFound
		}
		return domain.Account{}, err
	}
	// A code must resolve to a current owner. A stale code on an account
	// that has since become a teacher does not link.
	if !owner.IsOwner() {
		return domain.Account{}, ErrCodeNotFound
	}
	if owner.Phone == teacherPhone {
		return domain.Account{}, ErrCannotLinkSelf
	}

	now := time.Now().UTC()
	teacher := domain.Account{
		Phone:       teacherPhone,
		Name:        teacherName,
		Role:        domain.RoleTeacher,
		Plan:        domain.PlanFree,
		LinkedOwner: owner.Phone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.Accounts().UpsertTeacher(ctx, teacher); err != nil {
		log.Error("failed to link teacher", slog.Any("error", err))
		return domain.Account{}, err
	}

	log.Info("teacher linked",
		slog.String("teacher", teacherPhone),
		slog.String("owner", owner.Phone),
	)
	return teacher, nil
}

// JoinLink mints the owner's shareable deep link. It requires an access code
// to already be set; the link embeds identity, display name and code so the
// receiving side can pre-populate the owner before redeeming.
func (s *LinkService) JoinLink(ctx context.Context, ownerPhone string) (string, error) {
	acct, err := s.Store.Accounts().GetByPhone(ctx, ownerPhone)
	if err != nil {
		return "", err
	}
	if !acct.IsOwner() {
		return "", domain.ErrNotOwner
	}
	if acct.AccessCode == "" {
		return "", ErrNoAccessCode
	}

	return linkx.Encode(s.JoinBaseURL, linkx.JoinInvite{
		OwnerPhone: acct.Phone,
		OwnerName:  acct.Name,
		AccessCode: acct.AccessCode,
	}), nil
}

// Prepopulate seeds the owner carried by a join link into the local store,
// so the subsequent code redemption resolves even before that owner has ever
// logged in here. An owner that already exists is left untouched.
func (s *LinkService) Prepopulate(ctx context.Context, inv linkx.JoinInvite) error {
	log := slogx.FromContext(ctx)

	_, err := s.Store.Accounts().GetByPhone(ctx, inv.OwnerPhone)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	owner := domain.NewOwner(inv.OwnerPhone, inv.OwnerName, time.Now().UTC())
	owner.AccessCode = inv.AccessCode
	if err := s.Store.Accounts().Create(ctx, owner); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Either a concurrent login beat the link, in which case the
			// existing record wins, or the embedded code clashes with
			// another owner's.
			if _, getErr := s.Store.Accounts().GetByPhone(ctx, inv.OwnerPhone); getErr == nil {
				return nil
			}
			return ErrCodeTaken
		}
		log.Error("failed to prepopulate owner", slog.Any("error", err))
		return err
	}

	log.Info("owner prepopulated from join link", slog.String("owner", inv.OwnerPhone))
	return nil
}

// TeachersOf lists the teacher records attached to an owner.
func (s *LinkService) TeachersOf(ctx context.Context, ownerPhone string) ([]domain.Account, error) {
	return s.Store.Accounts().ListTeachersOf(ctx, ownerPhone)
}
