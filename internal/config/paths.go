package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Paths contains every file location the license manager touches. It is the
// single source of truth for file paths; all entries are absolute.
type Paths struct {
	BaseDir        string
	DataDir        string
	LogsDir        string
	ExportsDir     string
	CustomersFile  string
	CredentialFile string
	MetricsFile    string
	TracesFile     string
}

// ExecutableDir returns the directory of the running binary with symlinks resolved
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}
	return filepath.Dir(exe), nil
}

// ResolvePaths turns the configured locations into absolute paths. The
// directory layout is:
//
//	<base>/
//	  admin_pass.hash
//	  license_data/
//	    customers.json
//	    customers_export_YYYYMMDD_HHMMSS.txt
//	  logs/
//	    license_manager_YYYYMMDD.log
func (c *Config) ResolvePaths() (*Paths, error) {
	base := c.Paths.BaseDir
	if base == "" {
		exeDir, err := ExecutableDir()
		if err != nil {
			return nil, err
		}
		base = exeDir
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	under := func(dir, p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(dir, p)
	}

	dataDir := under(base, c.Paths.DataDir)
	exportsDir := dataDir
	if c.Paths.ExportsDir != "" {
		exportsDir = under(base, c.Paths.ExportsDir)
	}

	return &Paths{
		BaseDir:        base,
		DataDir:        dataDir,
		LogsDir:        under(base, c.Paths.LogsDir),
		ExportsDir:     exportsDir,
		CustomersFile:  under(dataDir, c.Paths.CustomersFile),
		CredentialFile: under(base, c.Paths.CredentialFile),
		MetricsFile:    under(base, c.Telemetry.MetricsFile),
		TracesFile:     under(base, c.Telemetry.TracesFile),
	}, nil
}

// EnsureDirectories creates the data, logs and exports directories
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.LogsDir, p.ExportsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// LogPath returns the daily log file for t
func (p *Paths) LogPath(t time.Time) string {
	return filepath.Join(p.LogsDir, "license_manager_"+t.Format("20060102")+".log")
}

// LogPathResolution logs every resolved location at debug level
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("logs", p.LogsDir),
			slog.String("exports", p.ExportsDir),
		),
		slog.Group("files",
			slog.String("customers", p.CustomersFile),
			slog.String("credential", p.CredentialFile),
			slog.String("metrics", p.MetricsFile),
			slog.String("traces", p.TracesFile),
		))
}
