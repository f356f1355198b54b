package email

// Template names an HTML file under TemplateDir.
type Template string

const (
	// TemplateBillPaid corresponds to templates/emails/bill_paid.html
	TemplateBillPaid Template = "bill_paid"
)
