package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

const maxBodyBytes = 1 << 20

// Problem is the uniform error body.
type Problem struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusOf maps an error code to its HTTP status.
func StatusOf(code string) int {
	switch code {
	case common.CodeAccessDenied, common.CodePermissionDenied:
		return http.StatusForbidden
	case common.CodeEntityNotFound:
		return http.StatusNotFound
	case common.CodeUnauthenticated, common.CodePasswordIsCurrent, common.CodePasswordIsPrevious,
		common.CodeMissingToken, common.CodeInvalidToken, common.CodeExpiredToken:
		return http.StatusUnauthorized
	case common.CodeCryptoError, common.CodeBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func problemOf(err error) Problem {
	code := common.CodeOf(err)
	status := StatusOf(code)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = common.ErrorInternal.Error()
	}
	return Problem{Status: status, Code: code, Message: msg}
}

func writeProblem(w http.ResponseWriter, err error) {
	p := problemOf(err)
	writeJSON(w, p.Status, p)
}

// writeError logs server-side failures before answering.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	p := problemOf(err)
	if p.Status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "request_id", RequestIDFrom(r.Context()), "error", err)
	}
	writeJSON(w, p.Status, p)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: body too large", common.ErrBadRequest)
		}
		return fmt.Errorf("%w: %v", common.ErrBadRequest, err)
	}
	return nil
}
