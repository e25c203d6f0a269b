package api

import (
	"encoding/json"
	"net/http"

	"github.com/heralds-project/heralds/pkg/errors"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errors.Code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: string(code), Message: message}})
}

// writeFailure maps a pipeline error to a response. Coded input errors are
// the client's; anything else is ours.
func (h *Handler) writeFailure(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidScenario, errors.ErrCodeInvalidGeometry, errors.ErrCodeInvalidPath,
		errors.ErrCodeDegenerateGeometry:
		writeError(w, http.StatusUnprocessableEntity, code, errors.UserMessage(err))
	default:
		h.logger.Error("plan failed", "err", err)
		writeError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "internal error")
	}
}
