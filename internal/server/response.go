package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/muninboard/pkg/errors"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

func sendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func sendError(w http.ResponseWriter, r *http.Request, status int, code errors.Code, message string) {
	sendJSON(w, status, ErrorResponse{Error: ErrorDetail{
		Code:      string(code),
		Message:   message,
		RequestID: requestIDFrom(r.Context()),
	}})
}

// sendFailure maps err to a status code: invalid input is a 400, a failing
// directory a 502 and anything else a 500.
func sendFailure(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	switch {
	case errors.IsInvalid(err):
		sendError(w, r, http.StatusBadRequest, code, errors.UserMessage(err))
	case errors.Is(err, errors.ErrCodeDirectoryUnavailable):
		sendError(w, r, http.StatusBadGateway, errors.ErrCodeDirectoryUnavailable, "node directory unavailable")
	default:
		sendError(w, r, http.StatusInternalServerError, errors.ErrCodeInternal, "internal server error")
	}
}
