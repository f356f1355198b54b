package email

// PreviewData holds sample values for each template, keyed by template name.
// It is used to render templates locally without a real bill.
var PreviewData = map[Template]map[string]string{
	TemplateBillPaid: {
		"BillNumber":   "20240305101500",
		"CustomerName": "Ravi Fabricators",
		"Total":        "12500.00",
		"PaidOn":       "2024-03-05",
	},
}
