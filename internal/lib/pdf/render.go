package pdf

import (
	"fmt"
	"io"

	"github.com/Nishank-123/biller/internal/model"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

var columns = []struct {
	title string
	width float64
	align string
}{
	{"#", 10, "C"},
	{"Description", 90, "L"},
	{"Qty", 25, "R"},
	{"Rate", 30, "R"},
	{"Amount", 35, "R"},
}

// Write renders b as a single A4 table: header, line items, totals.
func Write(w io.Writer, b *model.Bill) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Fabrication Bill "+b.BillNumber, true)
	doc.SetCreator("biller", true)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, "Fabrication Bill", "", 1, "C", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "", 11)
	meta := [][2]string{
		{"Bill No", b.BillNumber},
		{"Date", b.Date.Format(model.DateLayout)},
		{"Customer", b.CustomerName},
		{"Phone", b.PhoneNumber},
	}
	for _, m := range meta {
		doc.CellFormat(30, 7, m[0]+":", "", 0, "L", false, 0, "")
		doc.CellFormat(0, 7, tr(m[1]), "", 1, "L", false, 0, "")
	}
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 11)
	doc.SetFillColor(230, 230, 230)
	for _, c := range columns {
		doc.CellFormat(c.width, 8, c.title, "1", 0, c.align, true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 10)
	for i, item := range b.Items {
		cells := []string{
			fmt.Sprintf("%d", i+1),
			tr(item.Description),
			formatNumber(item.Quantity),
			formatMoney(item.Rate),
			formatMoney(item.Amount),
		}
		for j, c := range columns {
			doc.CellFormat(c.width, 7, cells[j], "1", 0, c.align, false, 0, "")
		}
		doc.Ln(-1)
	}
	doc.Ln(4)

	labelWidth := columns[0].width + columns[1].width + columns[2].width + columns[3].width
	totals := [][2]string{
		{"Subtotal", formatMoney(b.Subtotal)},
		{"Total", formatMoney(b.Total)},
		{"Paid", formatMoney(b.PaidAmount)},
		{"Pending", formatMoney(b.PendingAmount())},
	}
	for _, t := range totals {
		doc.SetFont("Helvetica", "B", 10)
		doc.CellFormat(labelWidth, 7, t[0], "", 0, "R", false, 0, "")
		doc.SetFont("Helvetica", "", 10)
		doc.CellFormat(columns[4].width, 7, t[1], "", 1, "R", false, 0, "")
	}

	doc.Ln(2)
	doc.SetFont("Helvetica", "I", 10)
	doc.CellFormat(0, 7, "Status: "+string(b.PaymentStatus), "", 1, "R", false, 0, "")

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("rendering pdf for bill %s: %w", b.BillNumber, err)
	}
	return nil
}

func formatMoney(v decimal.Decimal) string {
	return v.StringFixed(model.MoneyScale)
}

func formatNumber(v decimal.Decimal) string {
	return v.String()
}
