package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "licmgr/internal/errors"
	"licmgr/pkg/contracts/domain"
)

// FileValidator checks file system targets before the license manager writes to them
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateOutputDirectory ensures dir exists or can be created and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.Storage(apperrors.CodeStorageWrite,
			fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	probe, err := os.CreateTemp(dir, ".write_test*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.Storage(apperrors.CodeStorageWrite,
			fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	probe.Close()
	os.Remove(probe.Name())

	return nil
}

// ValidateExportTarget checks that path can receive an export in format: it
// must not be a directory, its extension must match the format and its
// directory must be writable.
func (v *FileValidator) ValidateExportTarget(path string, format domain.ExportFormat) error {
	if strings.TrimSpace(path) == "" {
		return apperrors.Validation(apperrors.CodeEmptyField, "export path is required",
			apperrors.FieldError{Field: "out", Message: "is required"})
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		v.logger.Error("Export target is a directory",
			slog.String("path", path))
		return apperrors.Validation(apperrors.CodeValidationFailed,
			fmt.Sprintf("%s is a directory, not a file", path))
	}

	want := "." + format.Extension()
	if ext := strings.ToLower(filepath.Ext(path)); ext != want {
		v.logger.Warn("Export extension does not match format",
			slog.String("path", path),
			slog.String("extension", ext),
			slog.String("format", string(format)))
		return apperrors.Validation(apperrors.CodeValidationFailed,
			fmt.Sprintf("export file %s must end in %s", filepath.Base(path), want))
	}

	return v.ValidateOutputDirectory(filepath.Dir(path))
}
