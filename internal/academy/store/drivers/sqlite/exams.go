package sqlite

import (
	"context"
	"strconv"
	"strings"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/domain"
)

type examsRepo struct {
	q dbtx
}

func (r *examsRepo) Create(ctx context.Context, rec domain.ExamRecord) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO exam_records (
			id, owner_phone, exam_name, class_grade, total_marks, marks,
			submitted_by, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.OwnerPhone, rec.ExamName, rec.ClassGrade, rec.TotalMarks,
		joinMarks(rec.Marks), rec.SubmittedBy, rec.CreatedAt)
	return mapConflict(err)
}

func (r *examsRepo) ListByOwner(ctx context.Context, ownerPhone string) ([]domain.ExamRecord, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, owner_phone, exam_name, class_grade, total_marks, marks,
			submitted_by, created_at
		FROM exam_records
		WHERE owner_phone = ? ORDER BY created_at DESC`,
		ownerPhone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ExamRecord
	for rows.Next() {
		var (
			rec      domain.ExamRecord
			marksRaw string
		)
		err := rows.Scan(
			&rec.ID, &rec.OwnerPhone, &rec.ExamName, &rec.ClassGrade,
			&rec.TotalMarks, &marksRaw, &rec.SubmittedBy, &rec.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		rec.Marks = splitMarks(marksRaw)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *examsRepo) DeleteByOwner(ctx context.Context, ownerPhone string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM exam_records WHERE owner_phone = ?`, ownerPhone)
	return err
}

// joinMarks flattens the marks sheet into "studentID:marks" pairs in one
// column, the same shape the attendance id lists use; splitMarks reverses it.
func joinMarks(marks []domain.StudentMark) string {
	parts := make([]string, 0, len(marks))
	for _, m := range marks {
		parts = append(parts, m.StudentID+":"+strconv.Itoa(m.Marks))
	}
	return strings.Join(parts, " ")
}

func splitMarks(s string) []domain.StudentMark {
	var out []domain.StudentMark
	for _, part := range strings.Fields(s) {
		id, raw, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		out = append(out, domain.StudentMark{StudentID: id, Marks: n})
	}
	return out
}
