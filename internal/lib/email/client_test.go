package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_BillPaid(t *testing.T) {
	old := TemplateDir
	TemplateDir = "../../../templates/emails"
	t.Cleanup(func() { TemplateDir = old })

	body, err := Render(TemplateBillPaid, PreviewData[TemplateBillPaid])
	require.NoError(t, err)

	assert.Contains(t, body, PreviewData[TemplateBillPaid]["BillNumber"])
	assert.Contains(t, body, PreviewData[TemplateBillPaid]["CustomerName"])
}

func TestRender_MissingTemplate(t *testing.T) {
	_, err := Render(Template("does_not_exist"), nil)
	assert.Error(t, err)
}
