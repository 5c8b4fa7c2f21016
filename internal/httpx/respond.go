package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mkandawire/explotrack-backend/internal/apperr"
)

// JSON writes body as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

type errorBody struct {
	Error    string      `json:"error"`
	Kind     apperr.Kind `json:"kind,omitempty"`
	Details  []string    `json:"details,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
}

// Error maps a domain error to an HTTP status and writes it out.
func Error(w http.ResponseWriter, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		JSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}
	JSON(w, statusFor(e.Kind), errorBody{Error: e.Message, Kind: e.Kind, Details: e.Details, Warnings: e.Warnings})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindInvalidQuantity, apperr.KindMissingReason, apperr.KindMissingDispatchInfo:
		return http.StatusBadRequest
	case apperr.KindInvalidState, apperr.KindInsufficientStock, apperr.KindBatchUnavailable, apperr.KindValidationFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
