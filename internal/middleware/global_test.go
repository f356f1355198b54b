package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Nishank-123/biller/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTTPError(t *testing.T) {
	notPaid := errs.CodeBillNotPaid

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "http error passes through",
			err:        errs.NewForbiddenError("Can only delete fully paid bills", true, &notPaid),
			wantStatus: http.StatusForbidden,
			wantCode:   errs.CodeBillNotPaid,
		},
		{
			name:       "unknown route",
			err:        echo.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "wrong method",
			err:        echo.ErrMethodNotAllowed,
			wantStatus: http.StatusMethodNotAllowed,
			wantCode:   "METHOD_NOT_ALLOWED",
		},
		{
			name:       "echo error keeps its message",
			err:        echo.NewHTTPError(http.StatusRequestEntityTooLarge, "body too large"),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   "REQUEST_ENTITY_TOO_LARGE",
		},
		{
			name:       "missing bill row",
			err:        fmt.Errorf("table:bills:%w", pgx.ErrNoRows),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "plain error hides details",
			err:        errors.New("connection reset by peer"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toHTTPError(tt.err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}
}

func TestToHTTPError_EchoMessage(t *testing.T) {
	got := toHTTPError(echo.NewHTTPError(http.StatusBadRequest, "bad json"))
	assert.Equal(t, "bad json", got.Message)
}

func TestValidRequestID(t *testing.T) {
	assert.True(t, validRequestID("abc-123"))
	assert.False(t, validRequestID(""))
	assert.False(t, validRequestID("has space"))
	assert.False(t, validRequestID("new\nline"))
}

func TestGlobalErrorHandler_WritesJSON(t *testing.T) {
	e := echo.New()
	g := &GlobalMiddlewares{}

	req := httptest.NewRequest(http.MethodGet, "/bills/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	g.GlobalErrorHandler(errs.NewNotFoundError("Bill not found", true, nil), c)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t,
		`{"code":"NOT_FOUND","message":"Bill not found","status":404,"override":true,"errors":null,"action":null}`,
		rec.Body.String())
}
