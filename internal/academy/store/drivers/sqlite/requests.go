package sqlite

import (
	"context"
	"database/sql"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/domain"
)

type requestsRepo struct {
	q dbtx
}

const requestColumns = `id, owner_phone, name, months_requested, status, created_at`

func scanRequest(row rowScanner) (domain.ActivationRequest, error) {
	var r domain.ActivationRequest
	err := row.Scan(&r.ID, &r.OwnerPhone, &r.Name, &r.MonthsRequested, &r.Status, &r.CreatedAt)
	if err != nil {
		return domain.ActivationRequest{}, err
	}
	return r, nil
}

func (r *requestsRepo) Create(ctx context.Context, req domain.ActivationRequest) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO activation_requests (id, owner_phone, name, months_requested, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		req.ID, req.OwnerPhone, req.Name, req.MonthsRequested, req.Status, req.CreatedAt)
	return mapConflict(err)
}

func (r *requestsRepo) GetByID(ctx context.Context, id string) (domain.ActivationRequest, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM activation_requests WHERE id = ?`, id)
	req, err := scanRequest(row)
	if err != nil {
		return domain.ActivationRequest{}, mapNotFound(err)
	}
	return req, nil
}

func (r *requestsRepo) GetPendingByOwner(ctx context.Context, ownerPhone string) (domain.ActivationRequest, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+requestColumns+` FROM activation_requests
		WHERE owner_phone = ? AND status = ?`,
		ownerPhone, domain.RequestPending)
	req, err := scanRequest(row)
	if err != nil {
		return domain.ActivationRequest{}, mapNotFound(err)
	}
	return req, nil
}

// SetStatus only matches rows still pending, so requests in a terminal
// status are never rewritten.
func (r *requestsRepo) SetStatus(ctx context.Context, id string, status domain.RequestStatus) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE activation_requests SET status = ?
		WHERE id = ? AND status = ?`,
		status, id, domain.RequestPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

func (r *requestsRepo) ListPending(ctx context.Context) ([]domain.ActivationRequest, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+requestColumns+` FROM activation_requests
		WHERE status = ? ORDER BY created_at DESC`,
		domain.RequestPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (r *requestsRepo) ListByOwner(ctx context.Context, ownerPhone string) ([]domain.ActivationRequest, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+requestColumns+` FROM activation_requests
		WHERE owner_phone = ? ORDER BY created_at DESC`,
		ownerPhone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (r *requestsRepo) ListPendingOwners(ctx context.Context) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT DISTINCT owner_phone FROM activation_requests WHERE status = ?`,
		domain.RequestPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phones []string
	for rows.Next() {
		var phone string
		if err := rows.Scan(&phone); err != nil {
			return nil, err
		}
		phones = append(phones, phone)
	}
	return phones, rows.Err()
}

func (r *requestsRepo) DeleteByOwner(ctx context.Context, ownerPhone string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM activation_requests WHERE owner_phone = ?`, ownerPhone)
	return err
}

func (r *requestsRepo) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activation_requests WHERE status = ?`,
		domain.RequestPending).Scan(&count)
	return count, err
}

func collectRequests(rows *sql.Rows) ([]domain.ActivationRequest, error) {
	var out []domain.ActivationRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}
