package sqlite

import (
	"context"
	"database/sql"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/domain"
)

type accountsRepo struct {
	q dbtx
}

const accountColumns = `phone, name, email, address, role, plan,
	sub_active, sub_term, sub_term_end, sub_start,
	student_quota, access_code, linked_owner, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		a          domain.Account
		termEnd    sql.NullTime
		subStart   sql.NullTime
		accessCode sql.NullString
	)
	err := row.Scan(
		&a.Phone, &a.Name, &a.Email, &a.Address, &a.Role, &a.Plan,
		&a.Subscription.Active, &a.Subscription.Term.Kind, &termEnd, &subStart,
		&a.StudentQuota, &accessCode, &a.LinkedOwner, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, err
	}
	a.Subscription.Term.End = mapNullTimePtr(termEnd)
	a.Subscription.Start = mapNullTimePtr(subStart)
	a.AccessCode = mapNullString(accessCode)
	return a, nil
}

func (r *accountsRepo) GetByPhone(ctx context.Context, phone string) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE phone = ?`, phone)
	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) Create(ctx context.Context, a domain.Account) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO accounts (
			phone, name, email, address, role, plan,
			sub_active, sub_term, sub_term_end, sub_start,
			student_quota, access_code, linked_owner, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Phone, a.Name, a.Email, a.Address, a.Role, a.Plan,
		a.Subscription.Active, a.Subscription.Term.Kind,
		mapOptionalTime(a.Subscription.Term.End), mapOptionalTime(a.Subscription.Start),
		a.StudentQuota, mapStringNull(a.AccessCode), a.LinkedOwner,
		a.CreatedAt, a.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *accountsRepo) UpdateName(ctx context.Context, phone, name string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE accounts SET name = ?, updated_at = ? WHERE phone = ?`,
		name, now(), phone)
	return err
}

func (r *accountsRepo) UpdateProfile(ctx context.Context, phone, name, email, address string) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE accounts SET name = ?, email = ?, address = ?, updated_at = ?
		WHERE phone = ?`,
		name, email, address, now(), phone)
	return err
}

func (r *accountsRepo) SetEntitlement(
	ctx context.Context,
	phone string,
	plan domain.Plan,
	sub domain.Subscription,
	quota int,
) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE accounts SET
			plan = ?, sub_active = ?, sub_term = ?, sub_term_end = ?,
			sub_start = ?, student_quota = ?, updated_at = ?
		WHERE phone = ?`,
		plan, sub.Active, sub.Term.Kind, mapOptionalTime(sub.Term.End),
		mapOptionalTime(sub.Start), quota, now(), phone)
	return err
}

func (r *accountsRepo) SetActive(ctx context.Context, phone string, active bool) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE accounts SET sub_active = ?, updated_at = ? WHERE phone = ?`,
		active, now(), phone)
	return err
}

func (r *accountsRepo) SetAccessCode(ctx context.Context, phone, code string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE accounts SET access_code = ?, updated_at = ? WHERE phone = ?`,
		mapStringNull(code), now(), phone)
	return mapConflict(err)
}

func (r *accountsRepo) GetByAccessCode(ctx context.Context, code string) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE access_code = ?`, code)
	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) UpsertTeacher(ctx context.Context, a domain.Account) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO accounts (
			phone, name, email, address, role, plan,
			sub_active, sub_term, sub_term_end, sub_start,
			student_quota, access_code, linked_owner, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (phone) DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			linked_owner = excluded.linked_owner,
			access_code = NULL,
			updated_at = excluded.updated_at`,
		a.Phone, a.Name, a.Email, a.Address, a.Role, a.Plan,
		a.Subscription.Active, a.Subscription.Term.Kind,
		mapOptionalTime(a.Subscription.Term.End), mapOptionalTime(a.Subscription.Start),
		a.StudentQuota, mapStringNull(a.AccessCode), a.LinkedOwner,
		a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func (r *accountsRepo) ListByRole(ctx context.Context, role domain.Role) ([]domain.Account, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE role = ? ORDER BY created_at DESC`,
		role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func (r *accountsRepo) ListTeachersOf(ctx context.Context, ownerPhone string) ([]domain.Account, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE role = ? AND linked_owner = ? ORDER BY created_at DESC`,
		domain.RoleTeacher, ownerPhone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func collectAccounts(rows *sql.Rows) ([]domain.Account, error) {
	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *accountsRepo) Delete(ctx context.Context, phone string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM accounts WHERE phone = ?`, phone)
	return err
}

func (r *accountsRepo) DeleteTeachersOf(ctx context.Context, ownerPhone string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM accounts WHERE role = ? AND linked_owner = ?`,
		domain.RoleTeacher, ownerPhone)
	return err
}

func (r *accountsRepo) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE role = ?`, role).Scan(&count)
	return count, err
}

func (r *accountsRepo) CountActiveSubscribed(ctx context.Context) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE plan = ? AND sub_active = 1`,
		domain.PlanSubscribed).Scan(&count)
	return count, err
}
