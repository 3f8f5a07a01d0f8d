package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/domain"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/store"
)

func newRecordsFixture(t *testing.T) (*RecordsService, Principal) {
	t.Helper()

	svc := &RecordsService{Store: newTestStore(t)}

	ctx := context.Background()
	login := &LoginService{Store: svc.Store, AdminName: "headoffice", AdminPhone: "9000000000"}
	owner, err := login.Login(ctx, "Wisdom Academy", "9000000001")
	require.NoError(t, err)

	return svc, owner
}

func TestAddStudentEnforcesQuota(t *testing.T) {
	t.Parallel()

	svc, owner := newRecordsFixture(t)
	ctx := context.Background()

	for i := 0; i < domain.FreeStudentQuota; i++ {
		_, err := svc.AddStudent(ctx, owner, domain.Student{
			Name:       fmt.Sprintf("Student %d", i+1),
			ClassGrade: "5th",
			FeesTotal:  12000,
		})
		require.NoError(t, err)
	}

	// The seventh student is rejected, not truncated.
	_, err := svc.AddStudent(ctx, owner, domain.Student{Name: "One Too Many"})
	require.ErrorIs(t, err, ErrQuotaExceeded)

	count, err := svc.Store.Students().CountByOwner(ctx, "9000000001")
	require.NoError(t, err)
	require.Equal(t, domain.FreeStudentQuota, count)
}

func TestAddStudentRequiresName(t *testing.T) {
	t.Parallel()

	svc, owner := newRecordsFixture(t)

	_, err := svc.AddStudent(context.Background(), owner, domain.Student{Name: "  "})
	require.ErrorIs(t, err, ErrMissingName)
}

func TestTeacherWorksInLinkedOwnerPartition(t *testing.T) {
	t.Parallel()

	svc, owner := newRecordsFixture(t)
	ctx := context.Background()

	links := &LinkService{Store: svc.Store}
	require.NoError(t, links.SetAccessCode(ctx, "9000000001", "1234"))
	teacherAcct, err := links.RedeemCode(ctx, "9000000002", "Asha", "1234")
	require.NoError(t, err)
	teacher := Principal{Role: teacherAcct.Role, Phone: teacherAcct.Phone, Name: teacherAcct.Name, Account: &teacherAcct}

	st, err := svc.AddStudent(ctx, teacher, domain.Student{Name: "Ravi", FeesTotal: 5000})
	require.NoError(t, err)
	require.Equal(t, "9000000001", st.OwnerPhone)

	// The owner sees the teacher's write.
	list, err := svc.ListStudents(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// Attendance submitted by the teacher lands in the owner's partition
	// with the teacher recorded as submitter.
	rec, err := svc.RecordAttendance(ctx, teacher, domain.AttendanceRecord{
		Date:       "2026-08-30",
		ClassGrade: "5th",
		PresentIDs: []string{st.ID},
	})
	require.NoError(t, err)
	require.Equal(t, "9000000001", rec.OwnerPhone)
	require.Equal(t, "9000000002", rec.SubmittedBy)
}

func TestUpdateStudentGuardsPartition(t *testing.T) {
	t.Parallel()

	svc, owner := newRecordsFixture(t)
	ctx := context.Background()

	login := &LoginService{Store: svc.Store, AdminName: "headoffice", AdminPhone: "9000000000"}
	other, err := login.Login(ctx, "Sunrise Academy", "9000000005")
	require.NoError(t, err)

	st, err := svc.AddStudent(ctx, owner, domain.Student{Name: "Ravi", FeesTotal: 5000})
	require.NoError(t, err)

	st.Name = "Ravi K"
	_, err = svc.UpdateStudent(ctx, other, st)
	require.ErrorIs(t, err, ErrWrongPartition)

	updated, err := svc.UpdateStudent(ctx, owner, st)
	require.NoError(t, err)
	require.Equal(t, "Ravi K", updated.Name)

	require.ErrorIs(t, svc.DeleteStudent(ctx, other, st.ID), ErrWrongPartition)
	require.NoError(t, svc.DeleteStudent(ctx, owner, st.ID))
}

func TestAddReceiptChecksBalance(t *testing.T) {
	t.Parallel()

	svc, owner := newRecordsFixture(t)
	ctx := context.Background()

	st, err := svc.AddStudent(ctx, owner, domain.Student{Name: "Ravi", FeesTotal: 5000})
	require.NoError(t, err)

	_, err = svc.AddReceipt(ctx, owner, st.ID, 0, domain.PaymentCash)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.AddReceipt(ctx, owner, st.ID, 3000, "barter")
	require.ErrorIs(t, err, ErrInvalidPayMode)

	_, err = svc.AddReceipt(ctx, owner, st.ID, 6000, domain.PaymentCash)
	require.ErrorIs(t, err, ErrExceedsBalance)

	receipt, err := svc.AddReceipt(ctx, owner, st.ID, 3000, domain.PaymentCash)
	require.NoError(t, err)
	require.Equal(t, "Ravi", receipt.StudentName)
	require.NotEmpty(t, receipt.ReceiptNo)

	// The student's paid total moved with the receipt.
	got, err := svc.Store.Students().GetByID(ctx, st.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3000), got.FeesPaid)
	require.Equal(t, int64(2000), got.Balance())

	// The remaining balance caps the next receipt.
	_, err = svc.AddReceipt(ctx, owner, st.ID, 2500, domain.PaymentOnline)
	require.ErrorIs(t, err, ErrExceedsBalance)

	_, err = svc.AddReceipt(ctx, owner, st.ID, 2000, domain.PaymentOnline)
	require.NoError(t, err)

	receipts, err := svc.ListReceipts(ctx, owner)
	require.NoError(t, err)
	require.Len(t, receipts, 2)
}

func TestExpenses(t *testing.T) {
	t.Parallel()

	svc, owner := newRecordsFixture(t)
	ctx := context.Background()

	_, err := svc.AddExpense(ctx, owner, domain.Expense{Category: "rent", Amount: 0})
	require.ErrorIs(t, err, ErrInvalidAmount)

	e, err := svc.AddExpense(ctx, owner, domain.Expense{
		Date:     "2026-08-30",
		Category: "rent",
		Note:     "August rent",
		Amount:   15000,
	})
	require.NoError(t, err)

	list, err := svc.ListExpenses(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.ErrorIs(t, svc.DeleteExpense(ctx, owner, "no-such-id"), store.ErrNotFound)
	require.NoError(t, svc.DeleteExpense(ctx, owner, e.ID))

	list, err = svc.ListExpenses(ctx, owner)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestAddExamValidatesMarks(t *testing.T) {
	t.Parallel()

	svc, owner := newRecordsFixture(t)
	ctx := context.Background()

	st, err := svc.AddStudent(ctx, owner, domain.Student{Name: "Asha", ClassGrade: "5th"})
	require.NoError(t, err)

	_, err = svc.AddExam(ctx, owner, domain.ExamRecord{ExamName: "  ", TotalMarks: 50})
	require.ErrorIs(t, err, ErrMissingName)

	_, err = svc.AddExam(ctx, owner, domain.ExamRecord{ExamName: "Unit Test 1", TotalMarks: 0})
	require.ErrorIs(t, err, ErrInvalidMarks)

	// Marks above the total are rejected.
	_, err = svc.AddExam(ctx, owner, domain.ExamRecord{
		ExamName:   "Unit Test 1",
		TotalMarks: 50,
		Marks:      []domain.StudentMark{{StudentID: st.ID, Marks: 60}},
	})
	require.ErrorIs(t, err, ErrInvalidMarks)

	rec, err := svc.AddExam(ctx, owner, domain.ExamRecord{
		ExamName:   "Unit Test 1",
		ClassGrade: "5th",
		TotalMarks: 50,
		Marks:      []domain.StudentMark{{StudentID: st.ID, Marks: 42}},
	})
	require.NoError(t, err)
	require.Equal(t, "9000000001", rec.OwnerPhone)
	require.Equal(t, owner.Phone, rec.SubmittedBy)

	sheets, err := svc.ListExams(ctx, owner)
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	require.Equal(t, []domain.StudentMark{{StudentID: st.ID, Marks: 42}}, sheets[0].Marks)
}
