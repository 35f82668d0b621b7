package exporter

import (
	"strconv"
	"strings"

	"licmgr/pkg/contracts/domain"
)

const (
	headerRuleWidth = 60
	recordRuleWidth = 40
)

// Labels are the captions used in reports
type Labels struct {
	Title      string
	Row        string
	Name       string
	Phone      string
	HardwareID string
	AccessCode string
	Created    string
}

var labelSets = map[string]Labels{
	"en": {
		Title:      "Customer List",
		Row:        "Row",
		Name:       "Name",
		Phone:      "Phone",
		HardwareID: "Hardware ID",
		AccessCode: "Access Code",
		Created:    "Created",
	},
	"fa": {
		Title:      "لیست مشتریان انطباق302",
		Row:        "ردیف",
		Name:       "نام",
		Phone:      "تلفن",
		HardwareID: "شناسه",
		AccessCode: "رمز",
		Created:    "تاریخ ایجاد",
	},
}

// LabelsFor returns the labels for a language code, falling back to English
func LabelsFor(lang string) Labels {
	if l, ok := labelSets[strings.ToLower(strings.TrimSpace(lang))]; ok {
		return l
	}
	return labelSets["en"]
}

// Columns returns the spreadsheet header row
func (l Labels) Columns() []string {
	return []string{l.Row, l.Name, l.Phone, l.HardwareID, l.AccessCode, l.Created}
}

// ReportFormatter renders records as the plain text report
type ReportFormatter struct {
	labels Labels
}

// NewReportFormatter creates a formatter using labels
func NewReportFormatter(labels Labels) *ReportFormatter {
	return &ReportFormatter{labels: labels}
}

// Format renders records. An empty slice yields only the title block.
func (f *ReportFormatter) Format(records []domain.CustomerRecord) string {
	var sb strings.Builder

	headerRule := strings.Repeat("=", headerRuleWidth)
	sb.WriteString(headerRule + "\n")
	sb.WriteString("     " + f.labels.Title + "\n")
	sb.WriteString(headerRule + "\n\n")

	recordRule := strings.Repeat("-", recordRuleWidth)
	for i, rec := range records {
		writeField(&sb, f.labels.Row, strconv.Itoa(i+1))
		writeField(&sb, f.labels.Name, rec.Name)
		writeField(&sb, f.labels.Phone, rec.Phone)
		writeField(&sb, f.labels.HardwareID, rec.HardwareID)
		writeField(&sb, f.labels.AccessCode, rec.AccessCode)
		writeField(&sb, f.labels.Created, rec.CreatedDate)
		sb.WriteString(recordRule + "\n")
	}

	return sb.String()
}

func writeField(sb *strings.Builder, label, value string) {
	sb.WriteString(label)
	sb.WriteString(": ")
	sb.WriteString(value)
	sb.WriteByte('\n')
}

// rows converts records to spreadsheet rows, numbered from 1
func rows(records []domain.CustomerRecord) [][]string {
	out := make([][]string, 0, len(records))
	for i, rec := range records {
		out = append(out, []string{
			strconv.Itoa(i + 1),
			rec.Name,
			rec.Phone,
			rec.HardwareID,
			rec.AccessCode,
			rec.CreatedDate,
		})
	}
	return out
}
