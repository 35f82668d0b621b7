package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"licmgr/pkg/contracts/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "licmgr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.validate())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "file", cfg.Logging.Output)
	assert.Equal(t, "license_data", cfg.Paths.DataDir)
	assert.Equal(t, "customers.json", cfg.Paths.CustomersFile)
	assert.Equal(t, "admin_pass.hash", cfg.Paths.CredentialFile)
	assert.Equal(t, "SIEVE_ANALYSIS_APP_SECURE_SALT_2024", cfg.License.Salt)
	assert.Equal(t, "BACKUP_SALT", cfg.License.BackupSalt)
	assert.Equal(t, "sha256", cfg.Credentials.Scheme)
	assert.Equal(t, "admin123", cfg.Credentials.DefaultPassword)
	assert.Equal(t, "jalali", cfg.Records.Calendar)
	assert.Equal(t, domain.ExportFormatText, cfg.DefaultExportFormat())
	assert.False(t, cfg.Telemetry.MetricsEnabled)
	assert.False(t, cfg.Telemetry.TracingEnabled)
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: DEBUG
  output: both
paths:
  base_dir: /srv/licmgr
credentials:
  scheme: scrypt
records:
  calendar: gregorian
  timezone: UTC
export:
  language: fa
  format: CSV
session:
  login_interval: 5s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "/srv/licmgr", cfg.Paths.BaseDir)
	assert.Equal(t, "scrypt", cfg.Credentials.Scheme)
	assert.Equal(t, "gregorian", cfg.Records.Calendar)
	assert.Equal(t, "fa", cfg.Export.Language)
	assert.Equal(t, domain.ExportFormatCSV, cfg.DefaultExportFormat())
	assert.Equal(t, 5*time.Second, cfg.Session.LoginInterval)

	// untouched keys keep their defaults
	assert.Equal(t, "customers.json", cfg.Paths.CustomersFile)
	assert.Equal(t, 3, cfg.Session.LoginBurst)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: warn\nlicense:\n  salt: FILE_SALT\n")
	t.Setenv("LICMGR_LOGGING_LEVEL", "error")
	t.Setenv("LICMGR_LICENSE_SALT", "ENV_SALT")
	t.Setenv("LICMGR_TELEMETRY_METRICS_ENABLED", "true")
	t.Setenv("LICMGR_SESSION_LOGIN_BURST", "5")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, "ENV_SALT", cfg.License.Salt)
	assert.Equal(t, "BACKUP_SALT", cfg.License.BackupSalt)
	assert.True(t, cfg.Telemetry.MetricsEnabled)
	assert.Equal(t, 5, cfg.Session.LoginBurst)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config from file")
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "logging:\n  verbosity: 3\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"logging level", "logging:\n  level: chatty\n", "invalid logging level"},
		{"logging output", "logging:\n  output: syslog\n", "invalid logging output"},
		{"empty salt", "license:\n  salt: \"\"\n", "license salts"},
		{"credential scheme", "credentials:\n  scheme: md5\n", "invalid credential scheme"},
		{"scrypt N", "credentials:\n  scrypt_n: 1000\n", "power of two"},
		{"calendar", "records:\n  calendar: lunar\n", "invalid calendar"},
		{"timezone", "records:\n  timezone: Mars/Olympus\n", "invalid records timezone"},
		{"language", "export:\n  language: de\n", "invalid export language"},
		{"format", "export:\n  format: pdf\n", "pdf"},
		{"login burst", "session:\n  login_burst: 0\n", "login burst"},
		{"sample ratio", "telemetry:\n  sample_ratio: 1.5\n", "sample ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
