package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mpetrovs/spendvault/internal/common"
)

// Machine-readable error codes the client maps back onto its own taxonomy.
const (
	codeUnauthorized     = "unauthorized"
	codeSessionExpired   = "session_expired"
	codeValidation       = "validation"
	codeNotFound         = "not_found"
	codeEmailExists      = "email_exists"
	codeCodeInvalid      = "code_invalid"
	codeCodeExpired      = "code_expired"
	codeCodeAlreadyUsed  = "code_already_used"
	codeCodeWrongPurpose = "code_wrong_purpose"
	codeInternal         = "internal"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError maps sentinel errors to HTTP statuses and wire codes. Anything
// unrecognized becomes an opaque 500 so internals never leak to clients.
func writeError(c echo.Context, err error) error {
	status, code := http.StatusInternalServerError, codeInternal
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		status, code = http.StatusUnauthorized, codeUnauthorized
	case errors.Is(err, common.ErrSessionExpired):
		status, code = http.StatusUnauthorized, codeSessionExpired
	case errors.Is(err, common.ErrValidation):
		status, code = http.StatusBadRequest, codeValidation
	case errors.Is(err, common.ErrNotFound):
		status, code = http.StatusNotFound, codeNotFound
	case errors.Is(err, common.ErrEmailExists):
		status, code = http.StatusConflict, codeEmailExists
	case errors.Is(err, common.ErrCodeInvalid):
		status, code = http.StatusBadRequest, codeCodeInvalid
	case errors.Is(err, common.ErrCodeExpired):
		status, code = http.StatusBadRequest, codeCodeExpired
	case errors.Is(err, common.ErrCodeAlreadyUsed):
		status, code = http.StatusBadRequest, codeCodeAlreadyUsed
	case errors.Is(err, common.ErrCodeWrongPurpose):
		status, code = http.StatusBadRequest, codeCodeWrongPurpose
	}

	msg := code
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	return c.JSON(status, errorResponse{Error: msg, Code: code})
}
