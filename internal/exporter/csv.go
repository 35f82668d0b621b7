package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"licmgr/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV encodes options to w
func WriteCSV(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// CSVWriter renders the customer list as CSV
type CSVWriter struct {
	labels Labels
}

// NewCSVWriter creates a CSV writer using labels for the header row
func NewCSVWriter(labels Labels) *CSVWriter {
	return &CSVWriter{labels: labels}
}

// Render returns the CSV document, BOM prefixed so spreadsheet tools detect UTF-8
func (w *CSVWriter) Render(records []domain.CustomerRecord) ([]byte, error) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, WriteOptions{
		Headers:   w.labels.Columns(),
		Records:   rows(records),
		BOMPrefix: true,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
