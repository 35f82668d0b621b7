package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "licmgr/internal/errors"
	"licmgr/internal/shared/testutil"
	"licmgr/pkg/contracts/domain"
)

func TestValidateExportTarget(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewFileValidator(logger)
	dir := t.TempDir()

	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	tests := []struct {
		name   string
		path   string
		format domain.ExportFormat
		kind   error
	}{
		{"text in new directory", filepath.Join(dir, "exports", "out.txt"), domain.ExportFormatText, nil},
		{"csv", filepath.Join(dir, "out.csv"), domain.ExportFormatCSV, nil},
		{"xlsx uppercase extension", filepath.Join(dir, "OUT.XLSX"), domain.ExportFormatXLSX, nil},
		{"empty path", "  ", domain.ExportFormatText, apperrors.ErrValidation},
		{"extension mismatch", filepath.Join(dir, "out.txt"), domain.ExportFormatCSV, apperrors.ErrValidation},
		{"directory target", dir, domain.ExportFormatText, apperrors.ErrValidation},
		{"unwritable parent", filepath.Join(blocker, "out.txt"), domain.ExportFormatText, apperrors.ErrStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateExportTarget(tt.path, tt.format)
			if tt.kind == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".write_test")
	}
}
