package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell-blog/apiserver/internal/auth"
	"github.com/inkwell-blog/apiserver/internal/services"
)

type contextKey string

const contextClaimsKey contextKey = "session"

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a simple confirmation payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// CascadePartialResponse reports a delete whose dependent cleanup did not
// fully complete. Incomplete names the collections still holding orphans.
type CascadePartialResponse struct {
	Error      string   `json:"error"`
	Incomplete []string `json:"incomplete"`
}

func claimsFromContext(ctx context.Context) (auth.Claims, error) {
	claims, ok := ctx.Value(contextClaimsKey).(auth.Claims)
	if !ok {
		return auth.Claims{}, errors.New("missing session")
	}
	return claims, nil
}

func accountIDFromContext(ctx context.Context) (int, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return 0, err
	}
	return claims.AccountID()
}

func parseIDParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeCascadeOutcome translates a delete outcome: nil becomes the given
// confirmation, a partial cascade becomes a distinct failure payload so
// operators can spot orphaned records, anything else is a server error.
func writeCascadeOutcome(w http.ResponseWriter, err error, confirmation string) {
	if err == nil {
		writeJSON(w, http.StatusOK, MessageResponse{Message: confirmation})
		return
	}
	var partial *services.PartialCascadeError
	if errors.As(err, &partial) {
		writeJSON(w, http.StatusInternalServerError, CascadePartialResponse{
			Error:      partial.Error(),
			Incomplete: partial.Failed,
		})
		return
	}
	writeError(w, http.StatusInternalServerError, "failed to delete")
}
