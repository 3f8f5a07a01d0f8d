package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/domain"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/service"
	"github.com/suhastanajipatil1735-oss/super-management/pkg/httpx"
)

// RecordsHandler serves the owner-partitioned collections. Teachers hit the
// same endpoints and land in their linked owner's partition.
type RecordsHandler struct {
	LoginService   *service.LoginService
	RecordsService *service.RecordsService
}

func (h *RecordsHandler) writeRecordsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrQuotaExceeded):
		httpx.WriteError(w, http.StatusForbidden, "quota_exceeded", "Student quota reached, upgrade to add more")
	case errors.Is(err, service.ErrMissingName):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "name is required")
	case errors.Is(err, service.ErrInvalidAmount):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "amount must be positive")
	case errors.Is(err, service.ErrExceedsBalance):
		httpx.WriteError(w, http.StatusBadRequest, "exceeds_balance", "Amount exceeds the outstanding balance")
	case errors.Is(err, service.ErrInvalidPayMode):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "payment mode must be cash or online")
	case errors.Is(err, service.ErrInvalidMarks):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "marks must be between 0 and the exam total")
	case errors.Is(err, service.ErrWrongPartition):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "Record not found")
	case errors.Is(err, service.ErrPartitionUnknown):
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "No data partition for this principal")
	default:
		writeStoreError(w, err)
	}
}

// StudentBody carries the mutable student fields.
type StudentBody struct {
	Name       string `json:"name"`
	RollNo     string `json:"roll_no"`
	ClassGrade string `json:"class_grade"`
	Medium     string `json:"medium"`
	Mobile     string `json:"mobile"`
	Address    string `json:"address"`
	FeesTotal  int64  `json:"fees_total"`
}

func (b StudentBody) toDomain() domain.Student {
	return domain.Student{
		Name:       b.Name,
		RollNo:     b.RollNo,
		ClassGrade: b.ClassGrade,
		Medium:     b.Medium,
		Mobile:     b.Mobile,
		Address:    b.Address,
		FeesTotal:  b.FeesTotal,
	}
}

func (h *RecordsHandler) HandleListStudents(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r, h.LoginService)
	if !ok {
		return
	}

	students, err := h.RecordsService.ListStudents(r.Context(), p)
	if err != nil {
		h.writeRecordsError(w, err)
		return
	}

	out := make([]StudentResponse, 0, len(students))
	for _, s := range students {
		out = append(out, toStudentResponse(s))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *RecordsHandler) HandleAddStudent(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r, h.LoginService)
	if !ok {
		return
	}

	var body StudentBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	st, err := h.RecordsService.AddStudent(r.Context(), p, body.toDomain())
	if err != nil {
		h.writeRecordsError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toStudentResponse(st))
}

func (h *RecordsHandler) HandleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r, h.LoginService)
	if !ok {
		return
	}

	var body StudentBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	st := body.toDomain()
	st.ID = r.PathValue("id")
	updated, err := h.RecordsService.UpdateStudent(r.Context(), p, st)
	if err != nil {
		h.writeRecordsError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toStudentResponse(updated))
}

func (h *RecordsHandler) HandleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r, h.LoginService)
	if !ok {
		return
	}

	if err := h.RecordsService.DeleteStudent(r.Context(), p, r.PathValue("id")); err != nil {
		h.writeRecordsError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AttendanceBody carries one class-day sheet.
type AttendanceBody struct {
	Date       string   `json:"date"`
	ClassGrade string   `json:"class_grade"`
	PresentIDs []string `json:"present_ids"`
	AbsentIDs  []string `json:"absent_ids"`
}

func (h *RecordsHandler) HandleRecordAttendance(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r, h.LoginService)
	if !ok {
		return
	}

	var body AttendanceBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if body.Date == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "date is required")
		return
	}

	rec, err := h.RecordsService.RecordAttendance(r.Context(), p, domain.AttendanceRecord{
		Date:       body.Date,
		ClassGrade: body.ClassGrade,
		PresentIDs: body.PresentIDs,
		AbsentIDs:  body.AbsentIDs,
	})
	if err != nil {
		h.writeRecordsError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, rec)
}

func (h *RecordsHandler) HandleListAttendance(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r, h.LoginService)
	if !ok {
		return
	}

	records, err := h.RecordsService.ListAttendance(r.Context(), p)
	if err != nil {
		h.writeRecordsError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, records)
}

// ExamBody carries one exam's marks sheet.
type ExamBody struct {
	ExamName   string         `json:"exam_name"`
	ClassGrade string         `json:"class_grade"`
	TotalMarks int            `json:"total_marks"`
	Marks      map[string]int `json:"marks"`
}

func (h *RecordsHandler) HandleAddExam(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r, h.LoginService)
	if !ok {
		return
	}

	var body ExamBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	marks := make([]domain.StudentMark, 0, len(body.Marks))
	for id, m := range body.Marks {
		marks = append(marks, domain.StudentMark{StudentID: id, Marks: m})
	}

	rec, err := h.RecordsService.AddExam(r.Context(), p, domain.ExamRecord{
		ExamName:   body.ExamName,
		ClassGrade: body.ClassGrade,
		TotalMarks: body.TotalMarks,
		Marks:      marks,
	})
	if err != nil {
		h.writeRecordsError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, rec)
}

func (h *RecordsHandler) HandleListExams(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r, h.LoginService)
	if !ok {
		return
	}

	records, err := h.RecordsService.ListExams(r.Context(), p)
	if err != nil {
		h.writeRecordsError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, records)
}

// ReceiptBody records a fee payment against a student.
type ReceiptBody struct {
	StudentID   string `json:"student_id"`
	Amount      int64  `json:"amount"`
	PaymentMode string `json:"payment_mode"`
}

func (h *RecordsHandler) HandleAddReceipt(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r, h.LoginService)
	if !ok {
		return
	}

	var body ReceiptBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	receipt, err := h.RecordsService.AddReceipt(r.Context(), p, body.StudentID, body.Amount, body.PaymentMode)
	if err != nil {
		h.writeRecordsError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, receipt)
}

func (h *RecordsHandler) HandleListReceipts(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r, h.LoginService)
	if !ok {
		return
	}

	receipts, err := h.RecordsService.ListReceipts(r.Context(), p)
	if err != nil {
		h.writeRecordsError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, receipts)
}

// ExpenseBody carries one expense-book entry.
type ExpenseBody struct {
	Date     string `json:"date"`
	Category string `json:"category"`
	Note     string `json:"note"`
	Amount   int64  `json:"amount"`
}

func (h *RecordsHandler) HandleAddExpense(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r, h.LoginService)
	if !ok {
		return
	}

	var body ExpenseBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	e, err := h.RecordsService.AddExpense(r.Context(), p, domain.Expense{
		Date:     body.Date,
		Category: body.Category,
		Note:     body.Note,
		Amount:   body.Amount,
	})
	if err != nil {
		h.writeRecordsError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, e)
}

func (h *RecordsHandler) HandleListExpenses(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r, h.LoginService)
	if !ok {
		return
	}

	expenses, err := h.RecordsService.ListExpenses(r.Context(), p)
	if err != nil {
		h.writeRecordsError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, expenses)
}

func (h *RecordsHandler) HandleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r, h.LoginService)
	if !ok {
		return
	}

	if err := h.RecordsService.DeleteExpense(r.Context(), p, r.PathValue("id")); err != nil {
		h.writeRecordsError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
