package sqlite

import (
	"context"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/domain"
)

type expensesRepo struct {
	q dbtx
}

func (r *expensesRepo) Create(ctx context.Context, e domain.Expense) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO expenses (id, owner_phone, date, category, note, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.OwnerPhone, e.Date, e.Category, e.Note, e.Amount, e.CreatedAt)
	return mapConflict(err)
}

func (r *expensesRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	return err
}

func (r *expensesRepo) ListByOwner(ctx context.Context, ownerPhone string) ([]domain.Expense, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, owner_phone, date, category, note, amount, created_at
		FROM expenses
		WHERE owner_phone = ? ORDER BY date DESC, created_at DESC`,
		ownerPhone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Expense
	for rows.Next() {
		var e domain.Expense
		err := rows.Scan(&e.ID, &e.OwnerPhone, &e.Date, &e.Category, &e.Note, &e.Amount, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *expensesRepo) DeleteByOwner(ctx context.Context, ownerPhone string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM expenses WHERE owner_phone = ?`, ownerPhone)
	return err
}
