package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Nishank-123/biller/internal/config"
	"github.com/Nishank-123/biller/internal/errs"
	"github.com/Nishank-123/biller/internal/handler"
	"github.com/Nishank-123/biller/internal/server"
	"github.com/Nishank-123/biller/internal/service"
	"github.com/Nishank-123/biller/internal/service/servicetest"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	e     *echo.Echo
	store *servicetest.MemoryStore
	docs  *servicetest.MemoryDocs
}

func newTestApp(t *testing.T, opts ...func(*config.Config)) *testApp {
	t.Helper()

	cfg := &config.Config{
		Primary: config.Primary{Env: "test"},
		Server: config.ServerConfig{
			Port:               "0",
			CORSAllowedOrigins: []string{"*"},
		},
		Storage: config.StorageConfig{PDFDir: t.TempDir()},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	logger := zerolog.Nop()
	s := &server.Server{Config: cfg, Logger: &logger}

	store := servicetest.NewMemoryStore()
	docs := servicetest.NewMemoryDocs()
	services := &service.Services{
		Auth: service.NewAuthService(s),
		Bill: service.NewBillService(s, store, docs),
	}

	return &testApp{
		e:     NewRouter(s, handler.NewHandlers(s, services)),
		store: store,
		docs:  docs,
	}
}

func (a *testApp) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

const generateBody = `{
	"customerName": "John Doe/ACME",
	"phoneNumber": "9876543210",
	"date": "2024-03-05",
	"items": [{"description": "MS angle", "quantity": 2, "rate": 50, "amount": 100}],
	"subtotal": 100,
	"total": 100
}`

func (a *testApp) generate(t *testing.T, body string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/generate_bill", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[map[string]any](t, rec)
	assert.Equal(t, true, res["success"])
	assert.Equal(t, "Bill generated successfully", res["message"])
	id, _ := res["bill_id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestGenerateAndList(t *testing.T) {
	app := newTestApp(t)
	id := app.generate(t, generateBody)

	rec := app.do(t, http.MethodGet, "/bills", "")
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[struct {
		Bills []struct {
			BillNumber    string  `json:"bill_number"`
			PaymentStatus string  `json:"payment_status"`
			PendingAmount float64 `json:"pending_amount"`
			Date          string  `json:"date"`
			Items         []any   `json:"items"`
		} `json:"bills"`
		SelectedStatus string `json:"selected_status"`
	}](t, rec)

	require.Len(t, res.Bills, 1)
	assert.Equal(t, id, res.Bills[0].BillNumber)
	assert.Equal(t, "pending", res.Bills[0].PaymentStatus)
	assert.Equal(t, 100.0, res.Bills[0].PendingAmount)
	assert.Equal(t, "2024-03-05", res.Bills[0].Date)
	assert.Len(t, res.Bills[0].Items, 1)
	assert.Equal(t, "all", res.SelectedStatus)
}

func TestListBills_StatusFilter(t *testing.T) {
	app := newTestApp(t)
	app.generate(t, generateBody)

	rec := app.do(t, http.MethodGet, "/bills?status=PAID", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[map[string]any](t, rec)
	assert.Empty(t, res["bills"])
	assert.Equal(t, "paid", res["selected_status"])

	rec = app.do(t, http.MethodGet, "/bills?status=overdue", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateBill_Validation(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/generate_bill", `{"customerName": "x"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errs.HTTPError](t, rec)
	assert.NotEmpty(t, body.Errors)

	rec = app.do(t, http.MethodPost, "/generate_bill", `{"customerName":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	over := strings.Replace(generateBody, `"total": 100`, `"total": 100, "paidAmount": 150`, 1)
	rec = app.do(t, http.MethodPost, "/generate_bill", over)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errs.CodePaidExceedsTotal, decode[errs.HTTPError](t, rec).Code)
}

func TestGenerateBill_RequiredAmounts(t *testing.T) {
	app := newTestApp(t)

	cases := map[string]string{
		"total":       strings.Replace(generateBody, `"total": 100`, `"paidAmount": 0`, 1),
		"subtotal":    strings.Replace(generateBody, `"subtotal": 100,`, "", 1),
		"rate":        strings.Replace(generateBody, `, "rate": 50`, "", 1),
		"description": strings.Replace(generateBody, `"description": "MS angle", `, "", 1),
	}
	for field, body := range cases {
		t.Run(field, func(t *testing.T) {
			rec := app.do(t, http.MethodPost, "/generate_bill", body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), field)
		})
	}
	assert.Zero(t, app.store.Len())
}

func TestGenerateBill_HugeAmountsRejected(t *testing.T) {
	app := newTestApp(t)

	huge := strings.Replace(generateBody, `"quantity": 2, "rate": 50`, `"quantity": 1e200, "rate": 1e200`, 1)
	rec := app.do(t, http.MethodPost, "/generate_bill", huge)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodPost, "/generate_bill",
		strings.Replace(generateBody, `"total": 100`, `"total": 1e15`, 1))
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	assert.Zero(t, app.store.Len())
	rec = app.do(t, http.MethodGet, "/bills", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGenerateBill_RoundsToCents(t *testing.T) {
	app := newTestApp(t)

	body := strings.Replace(generateBody, `"quantity": 2, "rate": 50, "amount": 100`, `"quantity": 3, "rate": 2.675`, 1)
	body = strings.Replace(body, `"subtotal": 100,`, `"subtotal": 8.025,`, 1)
	body = strings.Replace(body, `"total": 100`, `"total": 8.025, "paidAmount": 8.025`, 1)
	id := app.generate(t, body)

	rec := app.do(t, http.MethodGet, "/bills/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":8.03`)
	assert.Contains(t, rec.Body.String(), `"amount":8.03`)
	assert.Contains(t, rec.Body.String(), `"payment_status":"paid"`)
}

func TestPathBillNumberIgnoresBody(t *testing.T) {
	app := newTestApp(t)
	id := app.generate(t, generateBody)

	body := `{"paid_amount": 40, "BillNumber": "` + id + `", "bill_number": "` + id + `"}`
	rec := app.do(t, http.MethodPost, "/update_payment/nonexistent", body)
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/bills/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"paid_amount":0`)

	rec = app.do(t, http.MethodPost, "/update_payment/"+id, `{"paid_amount": 100}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = app.do(t, http.MethodDelete, "/delete_bill/nonexistent", `{"BillNumber": "`+id+`"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1, app.store.Len())
}

func TestUpdatePaymentAndDelete(t *testing.T) {
	app := newTestApp(t)
	id := app.generate(t, generateBody)

	rec := app.do(t, http.MethodPost, "/update_payment/"+id, `{"paid_amount": 150}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Paid amount cannot exceed total amount", decode[errs.HTTPError](t, rec).Message)

	rec = app.do(t, http.MethodDelete, "/delete_bill/"+id, "")
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Can only delete fully paid bills", decode[errs.HTTPError](t, rec).Message)

	rec = app.do(t, http.MethodPost, "/update_payment/"+id, `{"paid_amount": 40}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"new_status":"partial","pending_amount":60}`, rec.Body.String())

	rec = app.do(t, http.MethodPost, "/update_payment/"+id, `{"paid_amount": 100}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"new_status":"paid","pending_amount":0}`, rec.Body.String())

	rec = app.do(t, http.MethodDelete, "/delete_bill/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Zero(t, app.store.Len())
	assert.False(t, app.docs.Has(id))

	rec = app.do(t, http.MethodDelete, "/delete_bill/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdatePayment_MissingAmount(t *testing.T) {
	app := newTestApp(t)
	id := app.generate(t, generateBody)

	rec := app.do(t, http.MethodPost, "/update_payment/"+id, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, "/update_payment/"+id, `{"paid_amount": -5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, "/update_payment/unknown", `{"paid_amount": 5}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMergeBills(t *testing.T) {
	app := newTestApp(t)
	a := app.generate(t, generateBody)
	b := app.generate(t, strings.Replace(generateBody, `"total": 100`, `"total": 100, "paidAmount": 100`, 1))

	rec := app.do(t, http.MethodPost, "/merge_bills", `{"bill_ids": ["`+a+`", "`+b+`"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[map[string]any](t, rec)
	merged, _ := res["merged_bill_id"].(string)
	require.NotEmpty(t, merged)

	rec = app.do(t, http.MethodGet, "/bills/"+merged, "")
	require.Equal(t, http.StatusOK, rec.Code)
	bill := decode[map[string]any](t, rec)
	assert.Equal(t, 200.0, bill["total"])
	assert.Equal(t, 100.0, bill["paid_amount"])
	assert.Equal(t, "partial", bill["payment_status"])
	assert.Len(t, bill["items"], 2)

	rec = app.do(t, http.MethodPost, "/merge_bills", `{"bill_ids": ["nope"]}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No bills found", decode[errs.HTTPError](t, rec).Message)

	rec = app.do(t, http.MethodPost, "/merge_bills", `{"bill_ids": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadPDF(t *testing.T) {
	app := newTestApp(t)
	id := app.generate(t, generateBody)

	rec := app.do(t, http.MethodGet, "/download_pdf/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "attachment")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "fabrication_bill_John_DoeACME_20240305.pdf")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))

	rec = app.do(t, http.MethodGet, "/download_pdf/unknown", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Bill not found", decode[errs.HTTPError](t, rec).Message)

	require.NoError(t, app.docs.Remove(id))
	rec = app.do(t, http.MethodGet, "/download_pdf/"+id, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PDF not found", decode[errs.HTTPError](t, rec).Message)
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", decode[errs.HTTPError](t, rec).Message)
}

func TestAuthOnlyGuardsMutatingRoutes(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.Auth.SecretKey = "sk_test_biller"
	})

	rec := app.do(t, http.MethodGet, "/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", decode[errs.HTTPError](t, rec).Message)

	rec = app.do(t, http.MethodPost, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodGet, "/bills", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodPost, "/generate_bill", generateBody)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, app.store.Len())
}

func TestStatus(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[map[string]any](t, rec)
	assert.Equal(t, "healthy", res["status"])
	assert.Contains(t, res["checks"], "storage")
}

func TestRequestIDEchoed(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/bills", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	app.e.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestRequestIDReplacedWhenInvalid(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/bills", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 200))
	rec := httptest.NewRecorder()
	app.e.ServeHTTP(rec, req)

	got := rec.Header().Get("X-Request-ID")
	assert.NotEmpty(t, got)
	assert.Len(t, got, 36)
}

func TestIndexPage(t *testing.T) {
	old := handler.IndexPage
	handler.IndexPage = "../../static/index.html"
	t.Cleanup(func() { handler.IndexPage = old })

	app := newTestApp(t)
	rec := app.do(t, http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Fabrication Billing")
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
}

func TestIndexPage_Missing(t *testing.T) {
	old := handler.IndexPage
	handler.IndexPage = "does/not/exist.html"
	t.Cleanup(func() { handler.IndexPage = old })

	app := newTestApp(t)
	rec := app.do(t, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
