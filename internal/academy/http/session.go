package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/service"
	"github.com/suhastanajipatil1735-oss/super-management/pkg/httpx"
)

// LoginRequest is the credential pair. There is no password; possession of
// the phone number is the whole credential.
type LoginRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type LoginHandler struct {
	LoginService *service.LoginService
	Reconciler   *service.Reconciler
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	p, err := h.LoginService.Login(r.Context(), req.Name, req.Phone)
	if err != nil {
		if errors.Is(err, service.ErrMissingCredentials) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "name and phone are required")
			return
		}
		writeStoreError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPrincipalResponse(p, h.syncing(p)))
}

func (h *LoginHandler) syncing(p service.Principal) bool {
	return h.Reconciler != nil && h.Reconciler.InFlight(p.Phone)
}

// SessionHandler resolves the persisted session into a principal, the page
// reload path.
type SessionHandler struct {
	LoginService *service.LoginService
	Reconciler   *service.Reconciler
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r, h.LoginService)
	if !ok {
		return
	}

	syncing := h.Reconciler != nil && h.Reconciler.InFlight(p.Phone)
	httpx.WriteJSON(w, http.StatusOK, toPrincipalResponse(p, syncing))
}

type LogoutHandler struct {
	LoginService *service.LoginService
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.LoginService.Logout(r.Context()); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
