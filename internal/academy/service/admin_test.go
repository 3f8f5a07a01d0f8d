package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/domain"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/store"
)

func newAdminFixture(t *testing.T) *AdminService {
	t.Helper()
	return &AdminService{Store: newTestStore(t)}
}

func seedTenant(t *testing.T, svc *AdminService, phone, name string) Principal {
	t.Helper()

	login := &LoginService{Store: svc.Store, AdminName: "headoffice", AdminPhone: "9000000000"}
	p, err := login.Login(context.Background(), name, phone)
	require.NoError(t, err)
	return p
}

func TestStats(t *testing.T) {
	t.Parallel()

	svc := newAdminFixture(t)
	ctx := context.Background()

	owner := seedTenant(t, svc, "9000000001", "Wisdom Academy")
	seedTenant(t, svc, "9000000005", "Sunrise Academy")

	links := &LinkService{Store: svc.Store}
	require.NoError(t, links.SetAccessCode(ctx, "9000000001", "1234"))
	_, err := links.RedeemCode(ctx, "9000000002", "Asha", "1234")
	require.NoError(t, err)

	records := &RecordsService{Store: svc.Store}
	_, err = records.AddStudent(ctx, owner, domain.Student{Name: "Ravi"})
	require.NoError(t, err)

	ent := &EntitlementService{Store: svc.Store, ActivationCode: "UNLOCK2024"}
	_, err = ent.RequestActivation(ctx, "9000000005", domain.LifetimeMonths)
	require.NoError(t, err)
	_, err = ent.RedeemActivationCode(ctx, "9000000001", "UNLOCK2024")
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Owners)
	require.Equal(t, 1, stats.Teachers)
	require.Equal(t, 1, stats.Students)
	require.Equal(t, 1, stats.ActiveSubscriptions)
	require.Equal(t, 1, stats.PendingRequests)
}

func TestDeleteTenantRequiresConfirmation(t *testing.T) {
	t.Parallel()

	svc := newAdminFixture(t)
	seedTenant(t, svc, "9000000001", "Wisdom Academy")

	err := svc.DeleteTenant(context.Background(), "9000000001", false)
	require.ErrorIs(t, err, ErrConfirmationRequired)

	_, err = svc.Store.Accounts().GetByPhone(context.Background(), "9000000001")
	require.NoError(t, err)
}

func TestDeleteTenantCascades(t *testing.T) {
	t.Parallel()

	svc := newAdminFixture(t)
	ctx := context.Background()

	owner := seedTenant(t, svc, "9000000001", "Wisdom Academy")

	// Populate every partitioned collection.
	links := &LinkService{Store: svc.Store}
	require.NoError(t, links.SetAccessCode(ctx, "9000000001", "1234"))
	_, err := links.RedeemCode(ctx, "9000000002", "Asha", "1234")
	require.NoError(t, err)

	records := &RecordsService{Store: svc.Store}
	st, err := records.AddStudent(ctx, owner, domain.Student{Name: "Ravi", FeesTotal: 5000})
	require.NoError(t, err)
	_, err = records.RecordAttendance(ctx, owner, domain.AttendanceRecord{Date: "2026-08-30", PresentIDs: []string{st.ID}})
	require.NoError(t, err)
	_, err = records.AddExam(ctx, owner, domain.ExamRecord{
		ExamName:   "Unit Test 1",
		TotalMarks: 50,
		Marks:      []domain.StudentMark{{StudentID: st.ID, Marks: 40}},
	})
	require.NoError(t, err)
	_, err = records.AddReceipt(ctx, owner, st.ID, 1000, domain.PaymentCash)
	require.NoError(t, err)
	_, err = records.AddExpense(ctx, owner, domain.Expense{Category: "rent", Amount: 100})
	require.NoError(t, err)

	ent := &EntitlementService{Store: svc.Store}
	_, err = ent.RequestActivation(ctx, "9000000001", domain.LifetimeMonths)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTenant(ctx, "9000000001", true))

	// No record referencing the owner survives, in any collection.
	_, err = svc.Store.Accounts().GetByPhone(ctx, "9000000001")
	require.ErrorIs(t, err, store.ErrNotFound)

	students, err := svc.Store.Students().ListByOwner(ctx, "9000000001")
	require.NoError(t, err)
	require.Empty(t, students)

	attendance, err := svc.Store.Attendance().ListByOwner(ctx, "9000000001")
	require.NoError(t, err)
	require.Empty(t, attendance)

	exams, err := svc.Store.Exams().ListByOwner(ctx, "9000000001")
	require.NoError(t, err)
	require.Empty(t, exams)

	receipts, err := svc.Store.Receipts().ListByOwner(ctx, "9000000001")
	require.NoError(t, err)
	require.Empty(t, receipts)

	expenses, err := svc.Store.Expenses().ListByOwner(ctx, "9000000001")
	require.NoError(t, err)
	require.Empty(t, expenses)

	requests, err := svc.Store.Requests().ListByOwner(ctx, "9000000001")
	require.NoError(t, err)
	require.Empty(t, requests)

	teachers, err := svc.Store.Accounts().ListTeachersOf(ctx, "9000000001")
	require.NoError(t, err)
	require.Empty(t, teachers)

	// The session that pointed at the deleted tenant is cleared.
	_, err = svc.Store.Session().Get(ctx)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteTenantRejectsTeachers(t *testing.T) {
	t.Parallel()

	svc := newAdminFixture(t)
	ctx := context.Background()

	seedTenant(t, svc, "9000000001", "Wisdom Academy")
	links := &LinkService{Store: svc.Store}
	require.NoError(t, links.SetAccessCode(ctx, "9000000001", "1234"))
	_, err := links.RedeemCode(ctx, "9000000002", "Asha", "1234")
	require.NoError(t, err)

	err = svc.DeleteTenant(ctx, "9000000002", true)
	require.ErrorIs(t, err, domain.ErrNotOwner)
}
