package sqlite

import (
	"context"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/domain"
)

type attendanceRepo struct {
	q dbtx
}

func (r *attendanceRepo) Create(ctx context.Context, rec domain.AttendanceRecord) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO attendance_records (
			id, owner_phone, date, class_grade, present_ids, absent_ids,
			submitted_by, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.OwnerPhone, rec.Date, rec.ClassGrade,
		joinIDs(rec.PresentIDs), joinIDs(rec.AbsentIDs),
		rec.SubmittedBy, rec.CreatedAt)
	return mapConflict(err)
}

func (r *attendanceRepo) ListByOwner(ctx context.Context, ownerPhone string) ([]domain.AttendanceRecord, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, owner_phone, date, class_grade, present_ids, absent_ids,
			submitted_by, created_at
		FROM attendance_records
		WHERE owner_phone = ? ORDER BY date DESC, created_at DESC`,
		ownerPhone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AttendanceRecord
	for rows.Next() {
		var (
			rec        domain.AttendanceRecord
			presentRaw string
			absentRaw  string
		)
		err := rows.Scan(
			&rec.ID, &rec.OwnerPhone, &rec.Date, &rec.ClassGrade,
			&presentRaw, &absentRaw, &rec.SubmittedBy, &rec.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		rec.PresentIDs = splitIDs(presentRaw)
		rec.AbsentIDs = splitIDs(absentRaw)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *attendanceRepo) DeleteByOwner(ctx context.Context, ownerPhone string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM attendance_records WHERE owner_phone = ?`, ownerPhone)
	return err
}
