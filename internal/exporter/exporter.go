package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"licmgr/internal/files"
	"licmgr/pkg/contracts/domain"
)

// ExportFileName returns customers_export_YYYYMMDD_HHMMSS.<ext> for now
func ExportFileName(format domain.ExportFormat, now time.Time) string {
	return fmt.Sprintf("%s%s.%s", files.ExportPrefix, now.Format("20060102_150405"), format.Extension())
}

// Exporter renders reports and writes them to disk
type Exporter struct {
	files  *files.Manager
	labels Labels
	logger *slog.Logger
}

// New creates an exporter writing through fm
func New(fm *files.Manager, labels Labels, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		files:  fm,
		labels: labels,
		logger: logger.With(slog.String("component", "exporter")),
	}
}

// Render encodes records in format
func (e *Exporter) Render(format domain.ExportFormat, records []domain.CustomerRecord) ([]byte, error) {
	switch format {
	case domain.ExportFormatText:
		return []byte(NewReportFormatter(e.labels).Format(records)), nil
	case domain.ExportFormatCSV:
		return NewCSVWriter(e.labels).Render(records)
	case domain.ExportFormatXLSX:
		return NewXLSXWriter(e.labels).Render(records)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// Export writes records to a timestamped file in dir and returns its path
func (e *Exporter) Export(ctx context.Context, format domain.ExportFormat, records []domain.CustomerRecord, dir string, now time.Time) (string, error) {
	path := filepath.Join(dir, ExportFileName(format, now))
	if err := e.WriteTo(ctx, format, records, path); err != nil {
		return "", err
	}
	return path, nil
}

// WriteTo writes records to path
func (e *Exporter) WriteTo(ctx context.Context, format domain.ExportFormat, records []domain.CustomerRecord, path string) error {
	data, err := e.Render(format, records)
	if err != nil {
		e.logger.ErrorContext(ctx, "Failed to render export",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
		return err
	}

	if err := e.files.WriteAtomic(path, data, 0o644); err != nil {
		e.logger.ErrorContext(ctx, "Failed to write export",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return err
	}

	e.logger.InfoContext(ctx, "Customers exported",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.Int("record_count", len(records)))
	return nil
}
