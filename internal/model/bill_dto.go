package model

import (
	"strings"

	"github.com/Nishank-123/biller/internal/validation"
	"github.com/shopspring/decimal"
)

// ------------------------------------------------------------

// BillItemRequest is one line of a new bill. Amounts are pointers so a
// missing key fails "required" instead of reading as zero.
type BillItemRequest struct {
	Description string           `json:"description" validate:"required,max=200"`
	Quantity    *decimal.Decimal `json:"quantity" validate:"required,gt=0,lte=1000000"`
	Rate        *decimal.Decimal `json:"rate" validate:"required,gte=0,lte=1000000000"`
	// Amount is ignored; it is recomputed from quantity and rate.
	Amount *decimal.Decimal `json:"amount"`
}

// GenerateBillRequest is the body of POST /generate_bill.
type GenerateBillRequest struct {
	CustomerName  string            `json:"customerName" validate:"required,max=100"`
	PhoneNumber   string            `json:"phoneNumber" validate:"required,max=20"`
	Date          string            `json:"date" validate:"required,datetime=2006-01-02"`
	Items         []BillItemRequest `json:"items" validate:"required,min=1,dive"`
	Subtotal      *decimal.Decimal  `json:"subtotal" validate:"required,gte=0,lte=9999999999.99"`
	Total         *decimal.Decimal  `json:"total" validate:"required,gte=0,lte=9999999999.99"`
	PaidAmount    *decimal.Decimal  `json:"paidAmount" validate:"omitempty,gte=0,lte=9999999999.99"`
	PaymentStatus *string           `json:"paymentStatus" validate:"omitempty,oneof=pending partial paid"`
}

// Validate checks shape only; amount rules that depend on the stored bill
// are enforced by the service.
func (r *GenerateBillRequest) Validate() error {
	return validation.Struct(r)
}

// ------------------------------------------------------------

// ListBillsRequest filters the bill list. An empty status means StatusAll.
type ListBillsRequest struct {
	Status string `query:"status" json:"-" validate:"oneof=all pending partial paid"`
}

func (r *ListBillsRequest) Validate() error {
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	if r.Status == "" {
		r.Status = StatusAll
	}
	return validation.Struct(r)
}

// ------------------------------------------------------------

// BillNumberRequest addresses a single bill by its bill number. The number
// only ever comes from the path; json:"-" keeps a body from overriding it.
type BillNumberRequest struct {
	BillNumber string `param:"bill_id" json:"-" validate:"required,max=20"`
}

func (r *BillNumberRequest) Validate() error {
	return validation.Struct(r)
}

// ------------------------------------------------------------

type MergeBillsRequest struct {
	BillIDs []string `json:"bill_ids" validate:"required,min=1,dive,required"`
}

func (r *MergeBillsRequest) Validate() error {
	return validation.Struct(r)
}

// ------------------------------------------------------------

// UpdatePaymentRequest sets the cumulative amount paid on the bill named in
// the path.
type UpdatePaymentRequest struct {
	BillNumber string           `param:"bill_id" json:"-" validate:"required,max=20"`
	PaidAmount *decimal.Decimal `json:"paid_amount" validate:"required,gte=0,lte=9999999999.99"`
}

func (r *UpdatePaymentRequest) Validate() error {
	return validation.Struct(r)
}

// ------------------------------------------------------------

type ListBillsResponse struct {
	Bills          []Bill `json:"bills"`
	SelectedStatus string `json:"selected_status"`
}

type GenerateBillResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	BillID  string `json:"bill_id"`
}

type MergeBillsResponse struct {
	Success      bool   `json:"success"`
	MergedBillID string `json:"merged_bill_id"`
}

type UpdatePaymentResponse struct {
	Success       bool            `json:"success"`
	NewStatus     PaymentStatus   `json:"new_status"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
}

type DeleteBillResponse struct {
	Success bool `json:"success"`
}
