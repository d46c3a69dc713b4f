package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cimillas/ticket-ledger/internal/domain"
	"github.com/sirupsen/logrus"
)

const (
	codeMethodNotAllowed          = "method_not_allowed"
	codeNotFound                  = "not_found"
	codeInvalidRequestBody        = "invalid_request_body"
	codeValidationFailed          = "validation_failed"
	codeInvalidID                 = "invalid_id"
	codeInvalidRoyaltySpec        = "invalid_royalty_spec"
	codeInvalidAmount             = "invalid_amount"
	codeUnauthorized              = "unauthorized"
	codeEventNotFound             = "event_not_found"
	codeTicketNotFound            = "ticket_not_found"
	codeDuplicateRecord           = "duplicate_record"
	codeEventNotActive            = "event_not_active"
	codeEventExpired              = "event_expired"
	codeTicketNotAvailable        = "ticket_not_available"
	codeRoyaltyAlreadyDistributed = "royalty_already_distributed"
	codeInsufficientFunds         = "insufficient_funds"
	codeMathOverflow              = "math_overflow"
	codeInvalidRoyaltySplit       = "invalid_royalty_split"
	codeForbidden                 = "forbidden"
	codeInternalError             = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

var errorStatuses = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidID, http.StatusBadRequest, codeInvalidID},
	{domain.ErrInvalidRoyaltySpec, http.StatusBadRequest, codeInvalidRoyaltySpec},
	{domain.ErrInvalidAmount, http.StatusBadRequest, codeInvalidAmount},
	{domain.ErrUnauthorized, http.StatusForbidden, codeUnauthorized},
	{domain.ErrEventNotFound, http.StatusNotFound, codeEventNotFound},
	{domain.ErrTicketNotFound, http.StatusNotFound, codeTicketNotFound},
	{domain.ErrDuplicateRecord, http.StatusConflict, codeDuplicateRecord},
	{domain.ErrEventNotActive, http.StatusConflict, codeEventNotActive},
	{domain.ErrEventExpired, http.StatusConflict, codeEventExpired},
	{domain.ErrTicketNotAvailable, http.StatusConflict, codeTicketNotAvailable},
	{domain.ErrRoyaltyAlreadyDistributed, http.StatusConflict, codeRoyaltyAlreadyDistributed},
	{domain.ErrInsufficientFunds, http.StatusConflict, codeInsufficientFunds},
	{domain.ErrMathOverflow, http.StatusUnprocessableEntity, codeMathOverflow},
	{domain.ErrInvalidRoyaltySplit, http.StatusUnprocessableEntity, codeInvalidRoyaltySplit},
}

// writeServiceError maps a service error to its status and code. Unknown
// errors are logged and reported as internal errors without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *logrus.Logger, err error) {
	for _, m := range errorStatuses {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.code, m.err.Error())
			return
		}
	}
	logger.WithContext(r.Context()).WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Error("request failed")
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
