package router

import (
	"net/http"

	"github.com/Nishank-123/biller/internal/handler"
	"github.com/Nishank-123/biller/internal/middleware"
	"github.com/Nishank-123/biller/internal/model"
	"github.com/labstack/echo/v4"
)

// registerBillRoutes mounts the billing endpoints. Routes that change data
// carry RequireAuth individually, so unmatched paths still reach the 404
// handler. RequireAuth is a pass-through when auth is not configured.
func registerBillRoutes(r *echo.Echo, h *handler.Handlers, auth *middleware.AuthMiddleware) {
	bills := h.Bill

	r.GET("/", h.Pages.Index)

	r.GET("/bills", handler.Handle(
		bills.Handler,
		bills.ListBills,
		http.StatusOK,
		&model.ListBillsRequest{},
	))

	r.GET("/bills/:bill_id", handler.Handle(
		bills.Handler,
		bills.GetBill,
		http.StatusOK,
		&model.BillNumberRequest{},
	))

	r.GET("/download_pdf/:bill_id", handler.HandleFile(
		bills.Handler,
		bills.DownloadPDF,
		http.StatusOK,
		&model.BillNumberRequest{},
	))

	r.POST("/generate_bill", handler.Handle(
		bills.Handler,
		bills.GenerateBill,
		http.StatusOK,
		&model.GenerateBillRequest{},
	), auth.RequireAuth)

	r.POST("/merge_bills", handler.Handle(
		bills.Handler,
		bills.MergeBills,
		http.StatusOK,
		&model.MergeBillsRequest{},
	), auth.RequireAuth)

	r.POST("/update_payment/:bill_id", handler.Handle(
		bills.Handler,
		bills.UpdatePayment,
		http.StatusOK,
		&model.UpdatePaymentRequest{},
	), auth.RequireAuth)

	r.DELETE("/delete_bill/:bill_id", handler.Handle(
		bills.Handler,
		bills.DeleteBill,
		http.StatusOK,
		&model.BillNumberRequest{},
	), auth.RequireAuth)
}
