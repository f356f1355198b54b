package errs

import (
	"net/http"
)

// Codes for billing rule violations. Generic failures use the upper-cased
// status text instead (see statusCode).
const (
	CodePaidExceedsTotal = "PAID_AMOUNT_EXCEEDS_TOTAL"
	CodeBillNotPaid      = "BILL_NOT_PAID"
	CodeAmountOutOfRange = "AMOUNT_OUT_OF_RANGE"
)

// statusCode is the default Code for a status, e.g. 404 -> "NOT_FOUND".
func statusCode(status int) string {
	return MakeUpperCaseWithUnderscores(http.StatusText(status))
}

// NewUnauthorizedError creates a 401. RequireAuth returns it for missing or
// invalid session tokens.
func NewUnauthorizedError(message string, override bool) *HTTPError {
	return &HTTPError{
		Code:     statusCode(http.StatusUnauthorized),
		Message:  message,
		Status:   http.StatusUnauthorized,
		Override: override,
	}
}

// NewForbiddenError creates a 403 for requests that are understood but not
// allowed in the bill's current state. code defaults to FORBIDDEN when nil.
func NewForbiddenError(message string, override bool, code *string) *HTTPError {
	formattedCode := statusCode(http.StatusForbidden)
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusForbidden,
		Override: override,
	}
}

// NewBadRequestError creates a 400.
//
//   - code defaults to BAD_REQUEST when nil.
//   - errors carries per-field validation failures and may be nil.
//   - action is an optional client follow-up.
func NewBadRequestError(message string, override bool, code *string, errors []FieldError, action *Action) *HTTPError {
	formattedCode := statusCode(http.StatusBadRequest)
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusBadRequest,
		Override: override,
		Errors:   errors,
		Action:   action,
	}
}

// NewNotFoundError creates a 404. code defaults to NOT_FOUND when nil.
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	formattedCode := statusCode(http.StatusNotFound)
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusNotFound,
		Override: override,
	}
}

// NewInternalServerError creates a 500 with the generic status text. The real
// cause is only logged.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:     statusCode(http.StatusInternalServerError),
		Message:  http.StatusText(http.StatusInternalServerError),
		Status:   http.StatusInternalServerError,
		Override: false,
	}
}

// ValidationError wraps an error that has no field breakdown, such as a
// malformed JSON body, into a 400.
func ValidationError(err error) *HTTPError {
	return NewBadRequestError("Validation failed: "+err.Error(), false, nil, nil, nil)
}
