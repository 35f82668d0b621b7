package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"licmgr/internal/files"
	"licmgr/internal/shared/testutil"
	"licmgr/pkg/contracts/domain"
)

func TestExportFileName(t *testing.T) {
	now := time.Date(2024, 3, 20, 9, 5, 7, 0, time.UTC)

	assert.Equal(t, "customers_export_20240320_090507.txt", ExportFileName(domain.ExportFormatText, now))
	assert.Equal(t, "customers_export_20240320_090507.xlsx", ExportFileName(domain.ExportFormatXLSX, now))
}

func TestCSVRender(t *testing.T) {
	data, err := NewCSVWriter(LabelsFor("en")).Render(testutil.SampleCustomers())
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(data, utf8BOM))
	rows, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Row", "Name", "Phone", "Hardware ID", "Access Code", "Created"}, rows[0])
	assert.Equal(t, []string{"3", "Acme Lab", "+98 21 5555 0003", "FFFFFFFFFFFFFFFF", "62A7-B73A-1C47", "1403/03/10 17:45:12"}, rows[3])
}

func TestXLSXRender(t *testing.T) {
	data, err := NewXLSXWriter(LabelsFor("fa")).Render(testutil.SampleCustomers())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "ردیف", rows[0][0])
	assert.Equal(t, []string{"2", "سارا محمدی", "09350000002", "DEADBEEFCAFEBABE", "0B75-057B-D85F", "1403/02/15 09:30:00"}, rows[2])
}

func TestExporterWritesEachFormat(t *testing.T) {
	dir := t.TempDir()
	logger, handler := testutil.NewTestLogger(t)
	exp := New(files.NewManager(dir, logger), LabelsFor("en"), logger)
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	for _, format := range []domain.ExportFormat{domain.ExportFormatText, domain.ExportFormatCSV, domain.ExportFormatXLSX} {
		t.Run(string(format), func(t *testing.T) {
			path, err := exp.Export(ctx, format, testutil.SampleCustomers(), "exports", now)
			require.NoError(t, err)

			assert.Equal(t, filepath.Join("exports", ExportFileName(format, now)), path)
			info, err := os.Stat(filepath.Join(dir, path))
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}

	assert.True(t, handler.ContainsMessage("Customers exported"))
}

func TestExporterRejectsUnknownFormat(t *testing.T) {
	exp := New(files.NewManager(t.TempDir(), nil), LabelsFor("en"), nil)

	_, err := exp.Render(domain.ExportFormat("pdf"), nil)
	assert.Error(t, err)
}
