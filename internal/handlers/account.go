package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell-blog/apiserver/internal/auth"
	"github.com/inkwell-blog/apiserver/internal/services"
	"github.com/inkwell-blog/apiserver/internal/store"
)

// AccountHandler provides HTTP handlers for accounts.
type AccountHandler struct {
	accounts *services.AccountService
}

func NewAccountHandler(accounts *services.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// AccountRouter registers account routes on the given router.
func AccountRouter(r chi.Router, handler *AccountHandler, guard func(http.Handler) http.Handler) {
	r.Get("/{accountID}", handler.Get)
	r.With(guard).Put("/{accountID}", handler.Update)
	r.With(guard).Delete("/{accountID}", handler.Delete)
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "accountID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.accounts.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch account")
		return
	}

	writeJSON(w, http.StatusOK, account)
}

type AccountUpdateRequest struct {
	Handle   string  `json:"handle"`
	Email    string  `json:"email"`
	Bio      *string `json:"bio"`
	Password string  `json:"password"`
}

// Update modifies the authenticated account's own record. A supplied
// plaintext password is re-hashed before it is persisted.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	var req AccountUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	account, err := h.accounts.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch account")
		return
	}

	if handle := strings.TrimSpace(req.Handle); handle != "" {
		account.Handle = handle
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		account.Email = email
	}
	if req.Bio != nil {
		account.Bio = strings.TrimSpace(*req.Bio)
	}
	if req.Password != "" {
		hashed, err := auth.HashPassword(req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrPasswordInvalid) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to update account")
			return
		}
		account.PasswordHash = hashed
	}

	updated, err := h.accounts.Update(r.Context(), account)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			writeError(w, http.StatusConflict, "handle or email already taken")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "account not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update account")
		}
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// Delete removes the authenticated account's own record and cascades to
// its posts, comments, and photos.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	err := h.accounts.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	writeCascadeOutcome(w, err, "account has been deleted")
}

// requireOwner parses the accountID route param and rejects the request
// unless it names the authenticated account.
func (h *AccountHandler) requireOwner(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := parseIDParam(r, "accountID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}

	callerID, err := accountIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "you are not authenticated")
		return 0, false
	}
	if callerID != id {
		writeError(w, http.StatusForbidden, "you can only modify your own account")
		return 0, false
	}
	return id, true
}
