package exporter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"licmgr/internal/shared/testutil"
	"licmgr/pkg/contracts/domain"
)

func TestFormatEmpty(t *testing.T) {
	out := NewReportFormatter(LabelsFor("en")).Format(nil)

	rule := strings.Repeat("=", 60)
	assert.Equal(t, rule+"\n     Customer List\n"+rule+"\n\n", out)
	assert.NotContains(t, out, strings.Repeat("-", 40))
}

func TestFormatRecords(t *testing.T) {
	records := testutil.SampleCustomers()[:2]
	out := NewReportFormatter(LabelsFor("en")).Format(records)

	want := strings.Repeat("=", 60) + "\n" +
		"     Customer List\n" +
		strings.Repeat("=", 60) + "\n\n" +
		"Row: 1\n" +
		"Name: Ali Rezaei\n" +
		"Phone: 09120000001\n" +
		"Hardware ID: 1A2B3C4D5E6F7890\n" +
		"Access Code: 8527-26A7-5AC5\n" +
		"Created: 1403/01/01 12:00:00\n" +
		strings.Repeat("-", 40) + "\n" +
		"Row: 2\n" +
		"Name: سارا محمدی\n" +
		"Phone: 09350000002\n" +
		"Hardware ID: DEADBEEFCAFEBABE\n" +
		"Access Code: 0B75-057B-D85F\n" +
		"Created: 1403/02/15 09:30:00\n" +
		strings.Repeat("-", 40) + "\n"

	assert.Equal(t, want, out)
}

func TestFormatPersianLabels(t *testing.T) {
	out := NewReportFormatter(LabelsFor("fa")).Format([]domain.CustomerRecord{testutil.SampleCustomers()[0]})

	lines := strings.Split(out, "\n")
	assert.Equal(t, "     لیست مشتریان انطباق302", lines[1])
	assert.Equal(t, "ردیف: 1", lines[4])
	assert.Equal(t, "شناسه: 1A2B3C4D5E6F7890", lines[7])
	assert.Equal(t, "رمز: 8527-26A7-5AC5", lines[8])
	assert.Equal(t, "تاریخ ایجاد: 1403/01/01 12:00:00", lines[9])
}

func TestLabelsFallback(t *testing.T) {
	assert.Equal(t, LabelsFor("en"), LabelsFor("de"))
	assert.Equal(t, LabelsFor("fa"), LabelsFor(" FA "))
	assert.Len(t, LabelsFor("en").Columns(), 6)
}
