package sqlerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Nishank-123/biller/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func asHTTPError(t *testing.T, err error) *errs.HTTPError {
	t.Helper()
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected *errs.HTTPError, got %T", err)
	return httpErr
}

func TestHandleError_NoRowsWithTable(t *testing.T) {
	err := HandleError(fmt.Errorf("table:bills:%w", pgx.ErrNoRows))

	httpErr := asHTTPError(t, err)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "Bill not found", httpErr.Message)
}

func TestHandleError_NoRowsPlain(t *testing.T) {
	httpErr := asHTTPError(t, HandleError(pgx.ErrNoRows))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "Resource not found", httpErr.Message)
}

func TestHandleError_UniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Severity:       "ERROR",
		Code:           "23505",
		TableName:      "bills",
		ConstraintName: "bills_bill_number_key",
	}

	httpErr := asHTTPError(t, HandleError(fmt.Errorf("insert bill: %w", pgErr)))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "BILL_ALREADY_EXISTS", httpErr.Code)
	assert.Equal(t, "A bill with this Bill Number already exists", httpErr.Message)
}

func TestHandleError_PaidAmountCheck(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23514",
		TableName:      "bills",
		ConstraintName: "bills_paid_amount_check",
	}

	httpErr := asHTTPError(t, HandleError(pgErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "BILL_INVALID", httpErr.Code)
	assert.Equal(t, "Paid amount cannot exceed total amount", httpErr.Message)
}

func TestHandleError_NotNull(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23502", TableName: "bill_items", ColumnName: "description"}

	httpErr := asHTTPError(t, HandleError(pgErr))
	assert.Equal(t, "BILL_ITEM_REQUIRED", httpErr.Code)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "description", httpErr.Errors[0].Field)
}

func TestHandleError_PassesHTTPErrorThrough(t *testing.T) {
	in := errs.NewForbiddenError("Can only delete fully paid bills", true, nil)
	assert.Same(t, in, HandleError(in))
}

func TestHandleError_Unknown(t *testing.T) {
	httpErr := asHTTPError(t, HandleError(errors.New("connection reset")))
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
	assert.Equal(t, "Internal Server Error", httpErr.Message)
}

func TestMapCode(t *testing.T) {
	assert.Equal(t, UniqueViolation, MapCode("23505"))
	assert.Equal(t, CheckViolation, MapCode("23514"))
	assert.Equal(t, Other, MapCode("XX000"))
}

func TestErrCode(t *testing.T) {
	converted := ConvertPgError(&pgconn.PgError{Code: "23503", Severity: "ERROR"})
	assert.Equal(t, ForeignKeyViolation, ErrCode(fmt.Errorf("wrap: %w", converted)))
	assert.Equal(t, Other, ErrCode(errors.New("plain")))
}
