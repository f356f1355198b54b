package handler

import (
	"github.com/Nishank-123/biller/internal/model"
	"github.com/Nishank-123/biller/internal/server"
	"github.com/Nishank-123/biller/internal/service"
	"github.com/labstack/echo/v4"
)

type BillHandler struct {
	Handler
	billService *service.BillService
}

func NewBillHandler(s *server.Server, billService *service.BillService) *BillHandler {
	return &BillHandler{
		Handler:     NewHandler(s),
		billService: billService,
	}
}

func (h *BillHandler) ListBills(c echo.Context, req *model.ListBillsRequest) (*model.ListBillsResponse, error) {
	bills, err := h.billService.List(c.Request().Context(), req.Status)
	if err != nil {
		return nil, err
	}

	return &model.ListBillsResponse{
		Bills:          bills,
		SelectedStatus: req.Status,
	}, nil
}

func (h *BillHandler) GetBill(c echo.Context, req *model.BillNumberRequest) (*model.Bill, error) {
	return h.billService.Get(c.Request().Context(), req.BillNumber)
}

func (h *BillHandler) GenerateBill(c echo.Context, req *model.GenerateBillRequest) (*model.GenerateBillResponse, error) {
	bill, err := h.billService.Generate(c.Request().Context(), req)
	if err != nil {
		return nil, err
	}

	return &model.GenerateBillResponse{
		Success: true,
		Message: "Bill generated successfully",
		BillID:  bill.BillNumber,
	}, nil
}

func (h *BillHandler) DownloadPDF(c echo.Context, req *model.BillNumberRequest) (*model.Document, error) {
	return h.billService.Document(c.Request().Context(), req.BillNumber)
}

func (h *BillHandler) MergeBills(c echo.Context, req *model.MergeBillsRequest) (*model.MergeBillsResponse, error) {
	merged, err := h.billService.Merge(c.Request().Context(), req.BillIDs)
	if err != nil {
		return nil, err
	}

	return &model.MergeBillsResponse{
		Success:      true,
		MergedBillID: merged.BillNumber,
	}, nil
}

func (h *BillHandler) UpdatePayment(c echo.Context, req *model.UpdatePaymentRequest) (*model.UpdatePaymentResponse, error) {
	bill, err := h.billService.UpdatePayment(c.Request().Context(), req.BillNumber, *req.PaidAmount)
	if err != nil {
		return nil, err
	}

	return &model.UpdatePaymentResponse{
		Success:       true,
		NewStatus:     bill.PaymentStatus,
		PendingAmount: bill.PendingAmount(),
	}, nil
}

func (h *BillHandler) DeleteBill(c echo.Context, req *model.BillNumberRequest) (*model.DeleteBillResponse, error) {
	if err := h.billService.Delete(c.Request().Context(), req.BillNumber); err != nil {
		return nil, err
	}
	return &model.DeleteBillResponse{Success: true}, nil
}
