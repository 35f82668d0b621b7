// Package domain contains the core domain models for the license manager.
// These types serve as the Single Source of Truth (SSOT) for all layers of the application.
package domain

import (
	"fmt"
	"strings"
)

// CustomerRecord binds a customer to the access code issued for their hardware id.
// The JSON keys are the on-disk format of customers.json and must not change.
type CustomerRecord struct {
	Name        string `json:"name" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	HardwareID  string `json:"hardware_id" validate:"required,hardwareid"`
	AccessCode  string `json:"access_code" validate:"required,accesscode"`
	CreatedDate string `json:"created_date" validate:"required"`
}

// IssueRequest is the operator input for a new license
type IssueRequest struct {
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	HardwareID string `json:"hardware_id" validate:"required,hardwareid"`
}

// Normalized returns a copy with surrounding whitespace removed and the hardware id uppercased.
func (r IssueRequest) Normalized() IssueRequest {
	return IssueRequest{
		Name:       strings.TrimSpace(r.Name),
		Phone:      strings.TrimSpace(r.Phone),
		HardwareID: strings.ToUpper(strings.TrimSpace(r.HardwareID)),
	}
}

// ExportFormat represents the output format of a customer report
type ExportFormat string

const (
	ExportFormatText ExportFormat = "txt"
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// ParseExportFormat converts user input into an ExportFormat
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case ExportFormatText, "text":
		return ExportFormatText, nil
	case ExportFormatCSV:
		return ExportFormatCSV, nil
	case ExportFormatXLSX, "excel":
		return ExportFormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want txt, csv or xlsx)", s)
	}
}

// Extension returns the file extension used for the format, without the dot
func (f ExportFormat) Extension() string {
	return string(f)
}
