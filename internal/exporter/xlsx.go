package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"licmgr/pkg/contracts/domain"
)

// SheetName is the worksheet holding the customer list
const SheetName = "Customers"

// XLSXWriter renders the customer list as an Excel workbook
type XLSXWriter struct {
	labels Labels
}

// NewXLSXWriter creates a workbook writer using labels for the header row
func NewXLSXWriter(labels Labels) *XLSXWriter {
	return &XLSXWriter{labels: labels}
}

// Render returns the workbook bytes: one sheet, a bold header row with an
// auto filter, then one row per record.
func (w *XLSXWriter) Render(records []domain.CustomerRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	header := w.labels.Columns()
	if err := setRow(f, 1, header); err != nil {
		return nil, err
	}
	for i, row := range rows(records) {
		if err := setRow(f, i+2, row); err != nil {
			return nil, err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", bold); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetColWidth(SheetName, "B", lastCol, 22); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.AutoFilter(SheetName, "A1:"+lastCol+"1", nil); err != nil {
		return nil, fmt.Errorf("failed to add auto filter: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
