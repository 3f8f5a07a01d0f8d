package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/domain"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/service"
	"github.com/suhastanajipatil1735-oss/super-management/pkg/httpx"
	"github.com/suhastanajipatil1735-oss/super-management/pkg/notify"
)

// AdminHandler serves the administrator surface. Every endpoint insists the
// session belongs to the administrator pair.
type AdminHandler struct {
	LoginService       *service.LoginService
	AdminService       *service.AdminService
	EntitlementService *service.EntitlementService
	Reconciler         *service.Reconciler
}

// StatsResponse is the dashboard summary.
type StatsResponse struct {
	Owners              int `json:"owners"`
	Teachers            int `json:"teachers"`
	Students            int `json:"students"`
	ActiveSubscriptions int `json:"active_subscriptions"`
	PendingRequests     int `json:"pending_requests"`
}

func (h *AdminHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.LoginService); !ok {
		return
	}

	stats, err := h.AdminService.Stats(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, StatsResponse{
		Owners:              stats.Owners,
		Teachers:            stats.Teachers,
		Students:            stats.Students,
		ActiveSubscriptions: stats.ActiveSubscriptions,
		PendingRequests:     stats.PendingRequests,
	})
}

func (h *AdminHandler) HandleListOwners(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.LoginService); !ok {
		return
	}

	owners, err := h.AdminService.ListOwners(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	out := make([]AccountResponse, 0, len(owners))
	for _, a := range owners {
		out = append(out, toAccountResponse(a))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) HandleListRequests(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.LoginService); !ok {
		return
	}

	requests, err := h.AdminService.PendingRequests(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	out := make([]RequestResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, toRequestResponse(req))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// AdminSyncResponse reports an inline sweep over pending owners.
type AdminSyncResponse struct {
	Owners  int `json:"owners"`
	Changed int `json:"changed"`
}

// HandleSync reconciles every pending owner right now, so the dashboard
// reflects approvals flipped on the remote side without waiting for the
// periodic sweep.
func (h *AdminHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.LoginService); !ok {
		return
	}

	if h.Reconciler == nil {
		httpx.WriteError(w, http.StatusServiceUnavailable, "sync_unavailable", "Reconciliation is not configured")
		return
	}

	visited, changed, err := h.Reconciler.SweepPending(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, AdminSyncResponse{Owners: visited, Changed: changed})
}

// AcceptResponse returns the resolved request plus the prefilled messaging
// link for telling the owner.
type AcceptResponse struct {
	Request    RequestResponse `json:"request"`
	NotifyLink string          `json:"notify_link"`
}

func (h *AdminHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.LoginService); !ok {
		return
	}

	req, err := h.EntitlementService.Accept(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeRequestError(w, err)
		return
	}

	msg := fmt.Sprintf("Congratulations %s! Your subscription is now active.", req.Name)
	httpx.WriteJSON(w, http.StatusOK, AcceptResponse{
		Request:    toRequestResponse(req),
		NotifyLink: notify.WhatsAppLink(req.OwnerPhone, msg),
	})
}

func (h *AdminHandler) HandleDecline(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.LoginService); !ok {
		return
	}

	if err := h.EntitlementService.Decline(r.Context(), r.PathValue("id")); err != nil {
		h.writeRequestError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) writeRequestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "Activation request not found")
	case errors.Is(err, service.ErrRequestNotPending):
		httpx.WriteError(w, http.StatusConflict, "conflict", "Activation request already resolved")
	case errors.Is(err, domain.ErrAlreadySubscribed):
		httpx.WriteError(w, http.StatusConflict, "conflict", "Subscription is already active")
	default:
		writeStoreError(w, err)
	}
}

func (h *AdminHandler) HandlePause(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.LoginService); !ok {
		return
	}

	paused := r.URL.Query().Get("resume") == ""
	acct, err := h.EntitlementService.TogglePause(r.Context(), r.PathValue("phone"), paused)
	if err != nil {
		if errors.Is(err, domain.ErrNotSubscribed) {
			httpx.WriteError(w, http.StatusConflict, "conflict", "Account is not subscribed")
			return
		}
		writeStoreError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAccountResponse(acct))
}

func (h *AdminHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.LoginService); !ok {
		return
	}

	acct, err := h.EntitlementService.Cancel(r.Context(), r.PathValue("phone"))
	if err != nil {
		if errors.Is(err, domain.ErrNotSubscribed) {
			httpx.WriteError(w, http.StatusConflict, "conflict", "Account is not subscribed")
			return
		}
		writeStoreError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAccountResponse(acct))
}

func (h *AdminHandler) HandleDeleteTenant(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.LoginService); !ok {
		return
	}

	confirm := r.URL.Query().Get("confirm") == "true"
	err := h.AdminService.DeleteTenant(r.Context(), r.PathValue("phone"), confirm)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConfirmationRequired):
			httpx.WriteError(w, http.StatusBadRequest, "confirmation_required", "Pass confirm=true to delete irreversibly")
		case errors.Is(err, domain.ErrNotOwner):
			httpx.WriteError(w, http.StatusConflict, "conflict", "Only owner accounts can be cascaded")
		default:
			writeStoreError(w, err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
