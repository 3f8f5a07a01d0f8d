package domain

import "time"

// Student is one enrolled student inside an owner's partition.
type Student struct {
	ID         string
	OwnerPhone string
	Name       string
	RollNo     string
	ClassGrade string
	Medium     string
	Mobile     string
	Address    string
	FeesTotal  int64
	FeesPaid   int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Balance is the outstanding fee amount for the student.
func (s Student) Balance() int64 { return s.FeesTotal - s.FeesPaid }

// AttendanceRecord is one class-day attendance sheet.
type AttendanceRecord struct {
	ID          string
	OwnerPhone  string
	Date        string // YYYY-MM-DD
	ClassGrade  string
	PresentIDs  []string
	AbsentIDs   []string
	SubmittedBy string
	CreatedAt   time.Time
}

// StudentMark is one student's score inside an exam record.
type StudentMark struct {
	StudentID string
	Marks     int
}

// ExamRecord is one exam's marks sheet for a class. Marks never exceed
// TotalMarks.
type ExamRecord struct {
	ID          string
	OwnerPhone  string
	ExamName    string
	ClassGrade  string
	TotalMarks  int
	Marks       []StudentMark
	SubmittedBy string
	CreatedAt   time.Time
}

// Payment modes accepted on receipts.
const (
	PaymentCash   = "cash"
	PaymentOnline = "online"
)

// ReceiptLog is one fee payment entry against a student.
type ReceiptLog struct {
	ID          string
	OwnerPhone  string
	StudentID   string
	StudentName string
	Amount      int64
	ReceiptNo   string
	PaymentMode string
	CreatedAt   time.Time
}

// Expense is one outgoing entry in an owner's expense book.
type Expense struct {
	ID         string
	OwnerPhone string
	Date       string // YYYY-MM-DD
	Category   string
	Note       string
	Amount     int64
	CreatedAt  time.Time
}
