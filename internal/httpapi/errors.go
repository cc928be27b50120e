package httpapi

import (
	"errors"
	"net/http"

	"github.com/kanriworks/ledger/internal/errs"
)

// errorResponse is the standard error payload for the API. Validation
// failures additionally carry the full ordered error list.
type errorResponse struct {
	Error   string                `json:"error"`
	Code    string                `json:"code,omitempty"`
	Details errs.ValidationErrors `json:"details,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) { writeErr(w, http.StatusBadRequest, msg, "") }
func notFound(w http.ResponseWriter)               { writeErr(w, http.StatusNotFound, "not_found", "not_found") }

// writeDomainError maps service errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var ves errs.ValidationErrors
	if errors.As(err, &ves) {
		toJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   "validation failed",
			Code:    "validation_error",
			Details: ves,
		})
		return
	}
	var te *errs.TransitionError
	switch {
	case errors.Is(err, errs.ErrNotFound):
		notFound(w)
	case errors.As(err, &te):
		writeErr(w, http.StatusConflict, te.Error(), "invalid_transition")
	case errors.Is(err, errs.ErrAlreadyPosted):
		writeErr(w, http.StatusConflict, "journal is already posted", "already_posted")
	case errors.Is(err, errs.ErrCannotDeletePosted):
		writeErr(w, http.StatusConflict, "posted journals cannot be deleted", "cannot_delete_posted")
	case errors.Is(err, errs.ErrConflict):
		writeErr(w, http.StatusConflict, err.Error(), "conflict")
	default:
		writeErr(w, http.StatusInternalServerError, "internal error", "")
	}
}
