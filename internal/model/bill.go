package model

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// DateLayout is the wire and storage format of Bill.Date.
const DateLayout = "2006-01-02"

// Scales of the NUMERIC columns amounts and quantities are stored in.
const (
	MoneyScale    = 2
	QuantityScale = 3
)

// MaxAmount is the largest value a NUMERIC(12,2) money column holds.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// ErrBillNotPaid is returned when deleting a bill that is not fully paid.
var ErrBillNotPaid = errors.New("bill is not fully paid")

type PaymentStatus string

// StatusAll is the list filter that matches every payment status.
const StatusAll = "all"

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid:
		return true
	}
	return false
}

// DerivePaymentStatus is the only source of a bill's payment status.
func DerivePaymentStatus(paid, total decimal.Decimal) PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return PaymentStatusPaid
	case paid.IsPositive():
		return PaymentStatusPartial
	default:
		return PaymentStatusPending
	}
}

// Money rounds v to cents, half away from zero.
func Money(v decimal.Decimal) decimal.Decimal {
	return v.Round(MoneyScale)
}

// ItemAmount is the line total of quantity units at rate.
func ItemAmount(quantity, rate decimal.Decimal) decimal.Decimal {
	return Money(quantity.Mul(rate))
}

// InMoneyRange reports whether v fits a money column.
func InMoneyRange(v decimal.Decimal) bool {
	return !v.IsNegative() && v.LessThanOrEqual(MaxAmount)
}

type Bill struct {
	ID            int64           `json:"id" db:"id"`
	BillNumber    string          `json:"bill_number" db:"bill_number"`
	CustomerName  string          `json:"customer_name" db:"customer_name"`
	PhoneNumber   string          `json:"phone_number" db:"phone_number"`
	Date          time.Time       `json:"-" db:"date"`
	Subtotal      decimal.Decimal `json:"subtotal" db:"subtotal"`
	Total         decimal.Decimal `json:"total" db:"total"`
	PaidAmount    decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	PaymentStatus PaymentStatus   `json:"payment_status" db:"payment_status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`

	Items []BillItem `json:"items" db:"-"`
}

// PendingAmount is what is still owed on the bill.
func (b *Bill) PendingAmount() decimal.Decimal {
	return b.Total.Sub(b.PaidAmount)
}

// ApplyPayment sets the paid amount and re-derives the status.
func (b *Bill) ApplyPayment(paid decimal.Decimal) {
	b.PaidAmount = paid
	b.PaymentStatus = DerivePaymentStatus(paid, b.Total)
}

func (b Bill) MarshalJSON() ([]byte, error) {
	type alias Bill
	items := b.Items
	if items == nil {
		items = []BillItem{}
	}
	return json.Marshal(struct {
		alias
		Date          string          `json:"date"`
		PendingAmount decimal.Decimal `json:"pending_amount"`
		Items         []BillItem      `json:"items"`
	}{
		alias:         alias(b),
		Date:          b.Date.Format(DateLayout),
		PendingAmount: b.PendingAmount(),
		Items:         items,
	})
}

type BillItem struct {
	ID          int64           `json:"id" db:"id"`
	BillID      int64           `json:"bill_id" db:"bill_id"`
	Position    int             `json:"-" db:"position"`
	Description string          `json:"description" db:"description"`
	Quantity    decimal.Decimal `json:"quantity" db:"quantity"`
	Rate        decimal.Decimal `json:"rate" db:"rate"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
}

// Document is a rendered bill ready to be sent as a download.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}
