package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/domain"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/remote"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/service"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/store"
	"github.com/suhastanajipatil1735-oss/super-management/pkg/httpx"
	"github.com/suhastanajipatil1735-oss/super-management/pkg/notify"
	"github.com/suhastanajipatil1735-oss/super-management/pkg/slogx"
)

// PlanResponse is the owner's entitlement view.
type PlanResponse struct {
	Account    AccountResponse  `json:"account"`
	State      string           `json:"state"`
	Pending    *RequestResponse `json:"pending,omitempty"`
	StudentUse int              `json:"student_use"`
	Syncing    bool             `json:"syncing"`
}

// PlanHandler serves the entitlement surface for the logged-in owner.
type PlanHandler struct {
	LoginService       *service.LoginService
	EntitlementService *service.EntitlementService
	Reconciler         *service.Reconciler
	AdminPhone         string
}

func (h *PlanHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r, h.LoginService)
	if !ok {
		return
	}

	plan, err := h.EntitlementService.PlanOf(r.Context(), p.Phone)
	if err != nil {
		if errors.Is(err, domain.ErrNotOwner) {
			httpx.WriteError(w, http.StatusForbidden, "forbidden", "Only owners have a plan")
			return
		}
		writeStoreError(w, err)
		return
	}

	// Viewing the plan kicks a detached refresh so a remote-side accept or
	// pause lands without a relogin. The response reflects the state as of
	// now and the client polls the syncing flag.
	if h.Reconciler != nil {
		h.Reconciler.Trigger(r.Context(), p.Phone)
	}

	out := PlanResponse{
		Account:    toAccountResponse(plan.Account),
		State:      string(plan.State),
		StudentUse: plan.StudentUse,
		Syncing:    h.Reconciler != nil && h.Reconciler.InFlight(p.Phone),
	}
	if plan.Pending != nil {
		pending := toRequestResponse(*plan.Pending)
		out.Pending = &pending
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// ActivationRequestBody asks for a subscription; months 0 means lifetime.
type ActivationRequestBody struct {
	Months int `json:"months"`
}

// ActivationRequestResponse returns the request plus the prefilled
// messaging link pointing at the administrator. Opening it is fire-and-
// forget; the request exists regardless.
type ActivationRequestResponse struct {
	Request    RequestResponse `json:"request"`
	NotifyLink string          `json:"notify_link,omitempty"`
}

func (h *PlanHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r, h.LoginService)
	if !ok {
		return
	}

	var body ActivationRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if body.Months < 0 {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "months must not be negative")
		return
	}

	req, err := h.EntitlementService.RequestActivation(r.Context(), p.Phone, body.Months)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotOwner):
			httpx.WriteError(w, http.StatusForbidden, "forbidden", "Only owners can request activation")
		case errors.Is(err, domain.ErrAlreadySubscribed):
			httpx.WriteError(w, http.StatusConflict, "conflict", "Subscription is already active")
		default:
			writeStoreError(w, err)
		}
		return
	}

	out := ActivationRequestResponse{Request: toRequestResponse(req)}
	if h.AdminPhone != "" {
		msg := fmt.Sprintf("Subscription request from %s (%s)", req.Name, req.OwnerPhone)
		out.NotifyLink = notify.WhatsAppLink(h.AdminPhone, msg)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// ActivateBody carries the manual activation code.
type ActivateBody struct {
	Code string `json:"code"`
}

func (h *PlanHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r, h.LoginService)
	if !ok {
		return
	}

	var body ActivateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	acct, err := h.EntitlementService.RedeemActivationCode(r.Context(), p.Phone, body.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrActivationCodeMismatch):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_code", "Activation code does not match")
		case errors.Is(err, domain.ErrAlreadySubscribed):
			httpx.WriteError(w, http.StatusConflict, "conflict", "Subscription is already active")
		case errors.Is(err, domain.ErrNotOwner):
			httpx.WriteError(w, http.StatusForbidden, "forbidden", "Only owners can activate")
		default:
			writeStoreError(w, err)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toAccountResponse(acct))
}

// SyncResponse reports one synchronous reconciliation pass.
type SyncResponse struct {
	Synced  bool   `json:"synced"`
	Changed bool   `json:"changed"`
	State   string `json:"state"`
}

// HandleSync runs reconciliation inline and reports what happened. The
// detached variant runs on login; this one backs an explicit refresh.
func (h *PlanHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r, h.LoginService)
	if !ok {
		return
	}

	if h.Reconciler == nil {
		httpx.WriteError(w, http.StatusServiceUnavailable, "sync_unavailable", "Reconciliation is not configured")
		return
	}

	out, err := h.Reconciler.Reconcile(r.Context(), p.Phone)
	if err != nil {
		if errors.Is(err, domain.ErrNotOwner) {
			httpx.WriteError(w, http.StatusForbidden, "forbidden", "Only owners reconcile")
			return
		}
		writeStoreError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, SyncResponse{
		Synced:  out.Synced,
		Changed: out.Changed,
		State:   string(out.State),
	})
}

// ProfileBody carries the mutable profile fields.
type ProfileBody struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// ProfileHandler updates the logged-in account's profile fields. Role, plan
// and quota are not reachable from here.
type ProfileHandler struct {
	LoginService *service.LoginService
	Store        store.Store
	Authority    remote.Authority
}

func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r, h.LoginService)
	if !ok {
		return
	}
	if p.IsAdmin() {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "The administrator has no profile")
		return
	}

	var body ProfileBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if body.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}

	if err := h.Store.Accounts().UpdateProfile(r.Context(), p.Phone, body.Name, body.Email, body.Address); err != nil {
		writeStoreError(w, err)
		return
	}

	acct, err := h.Store.Accounts().GetByPhone(r.Context(), p.Phone)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	// Owners mirror the new display name upstream, best-effort.
	if h.Authority != nil && acct.IsOwner() {
		if err := h.Authority.UpsertProfile(r.Context(), remote.Profile{Phone: acct.Phone, Name: acct.Name}); err != nil {
			slogx.FromContext(r.Context()).Warn("could not mirror profile to authority", slog.Any("error", err))
		}
	}

	httpx.WriteJSON(w, http.StatusOK, toAccountResponse(acct))
}
