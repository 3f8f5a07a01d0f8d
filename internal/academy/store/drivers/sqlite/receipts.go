package sqlite

import (
	"context"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/domain"
)

type receiptsRepo struct {
	q dbtx
}

func (r *receiptsRepo) Create(ctx context.Context, rec domain.ReceiptLog) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO receipt_logs (
			id, owner_phone, student_id, student_name, amount,
			receipt_no, payment_mode, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.OwnerPhone, rec.StudentID, rec.StudentName, rec.Amount,
		rec.ReceiptNo, rec.PaymentMode, rec.CreatedAt)
	return mapConflict(err)
}

func (r *receiptsRepo) ListByOwner(ctx context.Context, ownerPhone string) ([]domain.ReceiptLog, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, owner_phone, student_id, student_name, amount,
			receipt_no, payment_mode, created_at
		FROM receipt_logs
		WHERE owner_phone = ? ORDER BY created_at DESC`,
		ownerPhone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ReceiptLog
	for rows.Next() {
		var rec domain.ReceiptLog
		err := rows.Scan(
			&rec.ID, &rec.OwnerPhone, &rec.StudentID, &rec.StudentName,
			&rec.Amount, &rec.ReceiptNo, &rec.PaymentMode, &rec.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *receiptsRepo) DeleteByOwner(ctx context.Context, ownerPhone string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM receipt_logs WHERE owner_phone = ?`, ownerPhone)
	return err
}
