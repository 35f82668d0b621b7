// Package exporter renders the customer list into reports.
//
// ReportFormatter produces the plain text report: a ruled title block followed
// by one fixed-field block per record, numbered from 1. It is a pure function
// of its input. CSVWriter and XLSXWriter produce the same rows as
// spreadsheets, and Exporter writes any of the three to disk.
//
// Labels come in English ("en") and Persian ("fa").
//
// Example usage:
//
//	report := exporter.NewReportFormatter(exporter.LabelsFor("fa")).Format(records)
//
//	exp := exporter.New(fileManager, exporter.LabelsFor("en"), logger)
//	path, err := exp.Export(ctx, domain.ExportFormatCSV, records, exportsDir, time.Now())
package exporter
