package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/domain"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/service"
	"github.com/suhastanajipatil1735-oss/super-management/pkg/httpx"
	"github.com/suhastanajipatil1735-oss/super-management/pkg/linkx"
)

// LinkHandler serves the role-linking protocol.
type LinkHandler struct {
	LoginService *service.LoginService
	LinkService  *service.LinkService
}

// SetCodeBody carries the owner's chosen access code.
type SetCodeBody struct {
	Code string `json:"code"`
}

func (h *LinkHandler) HandleSetCode(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r, h.LoginService)
	if !ok {
		return
	}

	var body SetCodeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	err := h.LinkService.SetAccessCode(r.Context(), p.Phone, body.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCodeEmpty):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "code must not be empty")
		case errors.Is(err, service.ErrCodeTaken):
			httpx.WriteError(w, http.StatusConflict, "code_taken", "Access code already in use by another owner")
		case errors.Is(err, domain.ErrNotOwner):
			httpx.WriteError(w, http.StatusForbidden, "forbidden", "Only owners set access codes")
		default:
			writeStoreError(w, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// JoinURLResponse carries the shareable deep link.
type JoinURLResponse struct {
	URL string `json:"url"`
}

func (h *LinkHandler) HandleJoinURL(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r, h.LoginService)
	if !ok {
		return
	}

	link, err := h.LinkService.JoinLink(r.Context(), p.Phone)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoAccessCode):
			httpx.WriteError(w, http.StatusConflict, "no_access_code", "Set an access code before sharing a join link")
		case errors.Is(err, domain.ErrNotOwner):
			httpx.WriteError(w, http.StatusForbidden, "forbidden", "Only owners mint join links")
		default:
			writeStoreError(w, err)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, JoinURLResponse{URL: link})
}

// RedeemBody attaches the caller as a teacher using an owner's code.
type RedeemBody struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

func (h *LinkHandler) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	var body RedeemBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if body.Phone == "" || body.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "name and phone are required")
		return
	}

	teacher, err := h.LinkService.RedeemCode(r.Context(), body.Phone, body.Name, body.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCodeNotFound):
			httpx.WriteError(w, http.StatusNotFound, "code_not_found", "Access code does not match any owner")
		case errors.Is(err, service.ErrCannotLinkSelf):
			httpx.WriteError(w, http.StatusConflict, "conflict", "An owner cannot link to itself")
		default:
			writeStoreError(w, err)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toAccountResponse(teacher))
}

// PrepopulateBody carries a pasted join link.
type PrepopulateBody struct {
	URL string `json:"url"`
}

// HandlePrepopulate seeds the owner embedded in a join link so the teacher's
// subsequent redemption resolves locally.
func (h *LinkHandler) HandlePrepopulate(w http.ResponseWriter, r *http.Request) {
	var body PrepopulateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	inv, err := linkx.DecodeURL(body.URL)
	if err != nil {
		if errors.Is(err, linkx.ErrNotJoinLink) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "URL is not a join link")
			return
		}
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed join link")
		return
	}

	if err := h.LinkService.Prepopulate(r.Context(), inv); err != nil {
		if errors.Is(err, service.ErrCodeTaken) {
			httpx.WriteError(w, http.StatusConflict, "code_taken", "The link's access code clashes with another owner")
			return
		}
		writeStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
