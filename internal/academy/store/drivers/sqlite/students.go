package sqlite

import (
	"context"
	"database/sql"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/domain"
)

type studentsRepo struct {
	q dbtx
}

const studentColumns = `id, owner_phone, name, roll_no, class_grade, medium,
	mobile, address, fees_total, fees_paid, created_at, updated_at`

func scanStudent(row rowScanner) (domain.Student, error) {
	var s domain.Student
	err := row.Scan(
		&s.ID, &s.OwnerPhone, &s.Name, &s.RollNo, &s.ClassGrade, &s.Medium,
		&s.Mobile, &s.Address, &s.FeesTotal, &s.FeesPaid, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return domain.Student{}, err
	}
	return s, nil
}

func (r *studentsRepo) Create(ctx context.Context, s domain.Student) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO students (
			id, owner_phone, name, roll_no, class_grade, medium,
			mobile, address, fees_total, fees_paid, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.OwnerPhone, s.Name, s.RollNo, s.ClassGrade, s.Medium,
		s.Mobile, s.Address, s.FeesTotal, s.FeesPaid, s.CreatedAt, s.UpdatedAt)
	return mapConflict(err)
}

func (r *studentsRepo) GetByID(ctx context.Context, id string) (domain.Student, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = ?`, id)
	s, err := scanStudent(row)
	if err != nil {
		return domain.Student{}, mapNotFound(err)
	}
	return s, nil
}

func (r *studentsRepo) Update(ctx context.Context, s domain.Student) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE students SET
			name = ?, roll_no = ?, class_grade = ?, medium = ?,
			mobile = ?, address = ?, fees_total = ?, fees_paid = ?, updated_at = ?
		WHERE id = ?`,
		s.Name, s.RollNo, s.ClassGrade, s.Medium,
		s.Mobile, s.Address, s.FeesTotal, s.FeesPaid, now(), s.ID)
	return err
}

func (r *studentsRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, id)
	return err
}

func (r *studentsRepo) ListByOwner(ctx context.Context, ownerPhone string) ([]domain.Student, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+studentColumns+` FROM students
		WHERE owner_phone = ? ORDER BY created_at DESC`,
		ownerPhone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *studentsRepo) CountByOwner(ctx context.Context, ownerPhone string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM students WHERE owner_phone = ?`, ownerPhone).Scan(&count)
	return count, err
}

func (r *studentsRepo) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM students`).Scan(&count)
	return count, err
}

func (r *studentsRepo) AddFeesPaid(ctx context.Context, id string, amount int64) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE students SET fees_paid = fees_paid + ?, updated_at = ?
		WHERE id = ?`,
		amount, now(), id)
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

func (r *studentsRepo) DeleteByOwner(ctx context.Context, ownerPhone string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM students WHERE owner_phone = ?`, ownerPhone)
	return err
}
