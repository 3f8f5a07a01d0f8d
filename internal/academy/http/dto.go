package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/domain"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/service"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/store"
	"github.com/suhastanajipatil1735-oss/super-management/pkg/httpx"
)

// AccountResponse is the wire form of an account record.
type AccountResponse struct {
	Phone        string     `json:"phone"`
	Name         string     `json:"name"`
	Email        string     `json:"email,omitempty"`
	Address      string     `json:"address,omitempty"`
	Role         string     `json:"role"`
	Plan         string     `json:"plan"`
	Active       bool       `json:"active"`
	Term         string     `json:"term"`
	TermEnd      *time.Time `json:"term_end,omitempty"`
	StudentQuota int        `json:"student_quota"`
	AccessCode   string     `json:"access_code,omitempty"`
	LinkedOwner  string     `json:"linked_owner,omitempty"`
}

func toAccountResponse(a domain.Account) AccountResponse {
	return AccountResponse{
		Phone:        a.Phone,
		Name:         a.Name,
		Email:        a.Email,
		Address:      a.Address,
		Role:         string(a.Role),
		Plan:         string(a.Plan),
		Active:       a.Subscription.Active,
		Term:         string(a.Subscription.Term.Kind),
		TermEnd:      a.Subscription.Term.End,
		StudentQuota: a.StudentQuota,
		AccessCode:   a.AccessCode,
		LinkedOwner:  a.LinkedOwner,
	}
}

// PrincipalResponse is the wire form of a resolved principal.
type PrincipalResponse struct {
	Role    string           `json:"role"`
	Phone   string           `json:"phone"`
	Name    string           `json:"name"`
	Account *AccountResponse `json:"account,omitempty"`

	// Syncing mirrors whether a reconciliation is outstanding for this
	// identity, so clients can render the affordance.
	Syncing bool `json:"syncing"`
}

func toPrincipalResponse(p service.Principal, syncing bool) PrincipalResponse {
	out := PrincipalResponse{
		Role:    string(p.Role),
		Phone:   p.Phone,
		Name:    p.Name,
		Syncing: syncing,
	}
	if p.Account != nil {
		acct := toAccountResponse(*p.Account)
		out.Account = &acct
	}
	return out
}

// RequestResponse is the wire form of an activation request.
type RequestResponse struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Name      string    `json:"name"`
	Months    int       `json:"months"`
	Lifetime  bool      `json:"lifetime"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toRequestResponse(r domain.ActivationRequest) RequestResponse {
	return RequestResponse{
		ID:        r.ID,
		Owner:     r.OwnerPhone,
		Name:      r.Name,
		Months:    r.MonthsRequested,
		Lifetime:  r.IsLifetime(),
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
	}
}

// StudentResponse is the wire form of a student record.
type StudentResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	RollNo     string `json:"roll_no,omitempty"`
	ClassGrade string `json:"class_grade,omitempty"`
	Medium     string `json:"medium,omitempty"`
	Mobile     string `json:"mobile,omitempty"`
	Address    string `json:"address,omitempty"`
	FeesTotal  int64  `json:"fees_total"`
	FeesPaid   int64  `json:"fees_paid"`
	Balance    int64  `json:"balance"`
}

func toStudentResponse(s domain.Student) StudentResponse {
	return StudentResponse{
		ID:         s.ID,
		Name:       s.Name,
		RollNo:     s.RollNo,
		ClassGrade: s.ClassGrade,
		Medium:     s.Medium,
		Mobile:     s.Mobile,
		Address:    s.Address,
		FeesTotal:  s.FeesTotal,
		FeesPaid:   s.FeesPaid,
		Balance:    s.Balance(),
	}
}

// requirePrincipal restores the session principal or writes 401.
func requirePrincipal(w http.ResponseWriter, r *http.Request, login *service.LoginService) (service.Principal, bool) {
	p, err := login.Restore(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoSession) {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "No active session")
			return service.Principal{}, false
		}
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to restore session")
		return service.Principal{}, false
	}
	return p, true
}

// requireAdmin restores the principal and insists it is the administrator.
func requireAdmin(w http.ResponseWriter, r *http.Request, login *service.LoginService) (service.Principal, bool) {
	p, ok := requirePrincipal(w, r, login)
	if !ok {
		return service.Principal{}, false
	}
	if !p.IsAdmin() {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "Administrator access required")
		return service.Principal{}, false
	}
	return p, true
}

// writeStoreError maps store errors onto the JSON error envelope.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "Record not found")
	case errors.Is(err, store.ErrAlreadyExists):
		httpx.WriteError(w, http.StatusConflict, "conflict", "Record already exists")
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Unexpected error")
	}
}
