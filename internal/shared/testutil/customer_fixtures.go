package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"licmgr/pkg/contracts/domain"
)

// Known derivations under the production salt
var KnownCodes = map[string]string{
	"1A2B3C4D5E6F7890": "8527-26A7-5AC5",
	"0000000000000000": "0F11-2DCD-C4A0",
	"FFFFFFFFFFFFFFFF": "62A7-B73A-1C47",
	"DEADBEEFCAFEBABE": "0B75-057B-D85F",
}

// SampleCustomers returns three valid records with codes matching KnownCodes
func SampleCustomers() []domain.CustomerRecord {
	return []domain.CustomerRecord{
		{
			Name:        "Ali Rezaei",
			Phone:       "09120000001",
			HardwareID:  "1A2B3C4D5E6F7890",
			AccessCode:  "8527-26A7-5AC5",
			CreatedDate: "1403/01/01 12:00:00",
		},
		{
			Name:        "سارا محمدی",
			Phone:       "09350000002",
			HardwareID:  "DEADBEEFCAFEBABE",
			AccessCode:  "0B75-057B-D85F",
			CreatedDate: "1403/02/15 09:30:00",
		},
		{
			Name:        "Acme Lab",
			Phone:       "+98 21 5555 0003",
			HardwareID:  "FFFFFFFFFFFFFFFF",
			AccessCode:  "62A7-B73A-1C47",
			CreatedDate: "1403/03/10 17:45:12",
		},
	}
}

// WriteCustomersFile writes records to path in the on-disk customers.json layout
func WriteCustomersFile(t *testing.T, path string, records []domain.CustomerRecord) {
	t.Helper()

	if records == nil {
		records = []domain.CustomerRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// WriteRaw writes arbitrary content to path, creating parent directories
func WriteRaw(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
