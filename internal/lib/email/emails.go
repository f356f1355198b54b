package email

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SendBillPaidEmail tells the shop owner that a bill has been settled in full.
func (c *Client) SendBillPaidEmail(to, billNumber, customerName string, total decimal.Decimal) error {
	data := map[string]string{
		"BillNumber":   billNumber,
		"CustomerName": customerName,
		"Total":        total.StringFixed(2),
		"PaidOn":       time.Now().Format("2006-01-02"),
	}

	return c.SendEmail(
		to,
		fmt.Sprintf("Bill %s paid in full", billNumber),
		TemplateBillPaid,
		data,
	)
}
