package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeUpperCaseWithUnderscores(t *testing.T) {
	assert.Equal(t, "BAD_REQUEST", MakeUpperCaseWithUnderscores("Bad Request"))
	assert.Equal(t, "NOT_FOUND", MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotFound)))
}

func TestNewBadRequestError_CustomCode(t *testing.T) {
	code := CodePaidExceedsTotal
	err := NewBadRequestError("Paid amount cannot exceed total amount", true, &code, nil, nil)

	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, CodePaidExceedsTotal, err.Code)
	assert.Equal(t, "Paid amount cannot exceed total amount", err.Error())
}

func TestNewForbiddenError_DefaultCode(t *testing.T) {
	err := NewForbiddenError("Can only delete fully paid bills", true, nil)

	assert.Equal(t, http.StatusForbidden, err.Status)
	assert.Equal(t, "FORBIDDEN", err.Code)
}

func TestHTTPError_IsAndAs(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", NewNotFoundError("Bill not found", true, nil))

	assert.True(t, errors.Is(wrapped, &HTTPError{}))

	var httpErr *HTTPError
	if assert.True(t, errors.As(wrapped, &httpErr)) {
		assert.Equal(t, http.StatusNotFound, httpErr.Status)
	}
}

func TestValidationError(t *testing.T) {
	err := ValidationError(errors.New("bad date"))

	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "BAD_REQUEST", err.Code)
	assert.Equal(t, "Validation failed: bad date", err.Message)
	assert.False(t, err.Override)
}

func TestNewRedirectAction(t *testing.T) {
	action := NewRedirectAction("Open bill", "/bills/42")

	assert.Equal(t, ActionTypeRedirect, action.Type)
	assert.Equal(t, "/bills/42", action.Value)
}
