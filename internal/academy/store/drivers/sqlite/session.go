package sqlite

import (
	"context"
)

type sessionRepo struct {
	q dbtx
}

func (r *sessionRepo) Get(ctx context.Context) (string, error) {
	var phone string
	err := r.q.QueryRowContext(ctx, `SELECT phone FROM session WHERE id = 1`).Scan(&phone)
	if err != nil {
		return "", mapNotFound(err)
	}
	return phone, nil
}

func (r *sessionRepo) Put(ctx context.Context, phone string) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO session (id, phone, updated_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET phone = excluded.phone, updated_at = excluded.updated_at`,
		phone, now())
	return err
}

func (r *sessionRepo) Clear(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM session WHERE id = 1`)
	return err
}
