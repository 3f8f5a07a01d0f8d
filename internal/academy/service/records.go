package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/domain"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/store"
	"github.com/suhastanajipatil1735-oss/super-management/pkg/idx"
	"github.com/suhastanajipatil1735-oss/super-management/pkg/slogx"
)

var (
	ErrQuotaExceeded    = errors.New("student quota exceeded")
	ErrMissingName      = errors.New("name is required")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrExceedsBalance   = errors.New("amount exceeds outstanding balance")
	ErrWrongPartition   = errors.New("record belongs to a different partition")
	ErrInvalidPayMode   = errors.New("unknown payment mode")
	ErrInvalidMarks     = errors.New("marks outside the exam's total")
	ErrPartitionUnknown = errors.New("no partition for this principal")
)

// RecordsService is the owner-partitioned CRUD surface: students,
// attendance, fee receipts and expenses. Teachers operate on their linked
// owner's partition; every quota check resolves through that owner.
type RecordsService struct {
	Store store.Store
}

// partition resolves the owner account whose partition the actor works in.
func (s *RecordsService) partition(ctx context.Context, actor Principal) (domain.Account, error) {
	if actor.Account == nil {
		return domain.Account{}, ErrPartitionUnknown
	}
	ownerPhone := actor.Account.PartitionOwner()
	if ownerPhone == "" {
		return domain.Account{}, ErrPartitionUnknown
	}
	return s.Store.Accounts().GetByPhone(ctx, ownerPhone)
}

// AddStudent enrolls a student, rejecting (not truncating) anything that
// would push the partition past the owner's quota.
func (s *RecordsService) AddStudent(ctx context.Context, actor Principal, st domain.Student) (domain.Student, error) {
	log := slogx.FromContext(ctx)

	if strings.TrimSpace(st.Name) == "" {
		return domain.Student{}, ErrMissingName
	}

	owner, err := s.partition(ctx, actor)
	if err != nil {
		return domain.Student{}, err
	}

	count, err := s.Store.Students().CountByOwner(ctx, owner.Phone)
	if err != nil {
		return domain.Student{}, err
	}
	if count >= owner.StudentQuota {
		log.Warn("student add rejected, quota reached",
			slog.String("owner", owner.Phone),
			slog.Int("quota", owner.StudentQuota),
		)
		return domain.Student{}, ErrQuotaExceeded
	}

	now := time.Now().UTC()
	st.ID = idx.New().String()
	st.OwnerPhone = owner.Phone
	st.CreatedAt = now
	st.UpdatedAt = now
	if err := s.Store.Students().Create(ctx, st); err != nil {
		return domain.Student{}, err
	}

	log.Debug("student added",
		slog.String("student_id", st.ID),
		slog.String("owner", owner.Phone),
	)
	return st, nil
}

// UpdateStudent rewrites a student's mutable fields inside the actor's
// partition.
func (s *RecordsService) UpdateStudent(ctx context.Context, actor Principal, st domain.Student) (domain.Student, error) {
	owner, err := s.partition(ctx, actor)
	if err != nil {
		return domain.Student{}, err
	}

	existing, err := s.Store.Students().GetByID(ctx, st.ID)
	if err != nil {
		return domain.Student{}, err
	}
	if existing.OwnerPhone != owner.Phone {
		return domain.Student{}, ErrWrongPartition
	}

	st.OwnerPhone = existing.OwnerPhone
	st.FeesPaid = existing.FeesPaid
	st.CreatedAt = existing.CreatedAt
	st.UpdatedAt = time.Now().UTC()
	if err := s.Store.Students().Update(ctx, st); err != nil {
		return domain.Student{}, err
	}
	return st, nil
}

// DeleteStudent removes a student from the actor's partition.
func (s *RecordsService) DeleteStudent(ctx context.Context, actor Principal, id string) error {
	owner, err := s.partition(ctx, actor)
	if err != nil {
		return err
	}

	existing, err := s.Store.Students().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.OwnerPhone != owner.Phone {
		return ErrWrongPartition
	}
	return s.Store.Students().Delete(ctx, id)
}

// ListStudents returns the actor's partition, newest first.
func (s *RecordsService) ListStudents(ctx context.Context, actor Principal) ([]domain.Student, error) {
	owner, err := s.partition(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.Store.Students().ListByOwner(ctx, owner.Phone)
}

// RecordAttendance stores one class-day sheet.
func (s *RecordsService) RecordAttendance(ctx context.Context, actor Principal, rec domain.AttendanceRecord) (domain.AttendanceRecord, error) {
	owner, err := s.partition(ctx, actor)
	if err != nil {
		return domain.AttendanceRecord{}, err
	}

	rec.ID = idx.New().String()
	rec.OwnerPhone = owner.Phone
	rec.SubmittedBy = actor.Phone
	rec.CreatedAt = time.Now().UTC()
	if err := s.Store.Attendance().Create(ctx, rec); err != nil {
		return domain.AttendanceRecord{}, err
	}
	return rec, nil
}

// ListAttendance returns the partition's sheets, newest first.
func (s *RecordsService) ListAttendance(ctx context.Context, actor Principal) ([]domain.AttendanceRecord, error) {
	owner, err := s.partition(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.Store.Attendance().ListByOwner(ctx, owner.Phone)
}

// AddExam stores one exam's marks sheet. The exam needs a name and a
// positive total, and no student's marks may exceed that total.
func (s *RecordsService) AddExam(ctx context.Context, actor Principal, rec domain.ExamRecord) (domain.ExamRecord, error) {
	if strings.TrimSpace(rec.ExamName) == "" {
		return domain.ExamRecord{}, ErrMissingName
	}
	if rec.TotalMarks <= 0 {
		return domain.ExamRecord{}, ErrInvalidMarks
	}
	for _, m := range rec.Marks {
		if m.Marks < 0 || m.Marks > rec.TotalMarks {
			return domain.ExamRecord{}, ErrInvalidMarks
		}
	}

	owner, err := s.partition(ctx, actor)
	if err != nil {
		return domain.ExamRecord{}, err
	}

	rec.ID = idx.New().String()
	rec.OwnerPhone = owner.Phone
	rec.SubmittedBy = actor.Phone
	rec.CreatedAt = time.Now().UTC()
	if err := s.Store.Exams().Create(ctx, rec); err != nil {
		return domain.ExamRecord{}, err
	}
	return rec, nil
}

// ListExams returns the partition's exam sheets, newest first.
func (s *RecordsService) ListExams(ctx context.Context, actor Principal) ([]domain.ExamRecord, error) {
	owner, err := s.partition(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.Store.Exams().ListByOwner(ctx, owner.Phone)
}

// AddReceipt records a fee payment. The receipt and the student's paid
// total commit together, and the amount may never exceed the outstanding
// balance.
func (s *RecordsService) AddReceipt(ctx context.Context, actor Principal, studentID string, amount int64, mode string) (domain.ReceiptLog, error) {
	log := slogx.FromContext(ctx)

	if amount <= 0 {
		return domain.ReceiptLog{}, ErrInvalidAmount
	}
	if mode != domain.PaymentCash && mode != domain.PaymentOnline {
		return domain.ReceiptLog{}, ErrInvalidPayMode
	}

	owner, err := s.partition(ctx, actor)
	if err != nil {
		return domain.ReceiptLog{}, err
	}

	var receipt domain.ReceiptLog
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		student, err := tx.Students().GetByID(ctx, studentID)
		if err != nil {
			return err
		}
		if student.OwnerPhone != owner.Phone {
			return ErrWrongPartition
		}
		if amount > student.Balance() {
			return ErrExceedsBalance
		}

		receipt = domain.ReceiptLog{
			ID:          idx.New().String(),
			OwnerPhone:  owner.Phone,
			StudentID:   student.ID,
			StudentName: student.Name,
			Amount:      amount,
			ReceiptNo:   receiptNo(),
			PaymentMode: mode,
			CreatedAt:   time.Now().UTC(),
		}
		if err := tx.Receipts().Create(ctx, receipt); err != nil {
			return err
		}
		return tx.Students().AddFeesPaid(ctx, student.ID, amount)
	})
	if err != nil {
		return domain.ReceiptLog{}, err
	}

	log.Info("receipt recorded",
		slog.String("receipt_id", receipt.ID),
		slog.String("student_id", studentID),
		slog.Int64("amount", amount),
	)
	return receipt, nil
}

// ListReceipts returns the partition's receipt log, newest first.
func (s *RecordsService) ListReceipts(ctx context.Context, actor Principal) ([]domain.ReceiptLog, error) {
	owner, err := s.partition(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.Store.Receipts().ListByOwner(ctx, owner.Phone)
}

// AddExpense records one outgoing entry in the partition's expense book.
func (s *RecordsService) AddExpense(ctx context.Context, actor Principal, e domain.Expense) (domain.Expense, error) {
	if e.Amount <= 0 {
		return domain.Expense{}, ErrInvalidAmount
	}

	owner, err := s.partition(ctx, actor)
	if err != nil {
		return domain.Expense{}, err
	}

	e.ID = idx.New().String()
	e.OwnerPhone = owner.Phone
	e.CreatedAt = time.Now().UTC()
	if err := s.Store.Expenses().Create(ctx, e); err != nil {
		return domain.Expense{}, err
	}
	return e, nil
}

// DeleteExpense removes an expense entry from the actor's partition.
func (s *RecordsService) DeleteExpense(ctx context.Context, actor Principal, id string) error {
	owner, err := s.partition(ctx, actor)
	if err != nil {
		return err
	}

	entries, err := s.Store.Expenses().ListByOwner(ctx, owner.Phone)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.ID == id {
			return s.Store.Expenses().Delete(ctx, id)
		}
	}
	return store.ErrNotFound
}

// ListExpenses returns the partition's expense book, newest first.
func (s *RecordsService) ListExpenses(ctx context.Context, actor Principal) ([]domain.Expense, error) {
	owner, err := s.partition(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.Store.Expenses().ListByOwner(ctx, owner.Phone)
}

// receiptNo derives a short human-readable receipt number.
func receiptNo() string {
	return "R-" + time.Now().UTC().Format("20060102-150405")
}
