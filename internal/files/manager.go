package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Manager provides file management operations rooted at a base directory
type Manager struct {
	baseDir string
	logger  *slog.Logger
}

// NewManager creates a new file manager. Relative paths resolve against baseDir.
func NewManager(baseDir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		baseDir: baseDir,
		logger:  logger.With(slog.String("component", "files")),
	}
}

// Exists reports whether a file or directory exists at path
func (m *Manager) Exists(path string) bool {
	_, err := os.Stat(m.Resolve(path))
	return err == nil
}

// ReadFile reads the entire content of a file
func (m *Manager) ReadFile(path string) ([]byte, error) {
	fullPath := m.Resolve(path)

	m.logger.Debug("Reading file",
		slog.String("path", fullPath))

	return os.ReadFile(fullPath)
}

// WriteAtomic replaces the file at path with data. The parent directory is
// created when missing.
func (m *Manager) WriteAtomic(path string, data []byte, perm os.FileMode) error {
	fullPath := m.Resolve(path)
	dir := filepath.Dir(fullPath)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(fullPath), err)
	}
	committed = true

	m.logger.Debug("File written",
		slog.String("path", fullPath),
		slog.Int("size_bytes", len(data)))

	return nil
}

// Quarantine renames the file at path to <path>.corrupt-<timestamp> and
// returns the new location.
func (m *Manager) Quarantine(path string, now time.Time) (string, error) {
	fullPath := m.Resolve(path)
	target := fmt.Sprintf("%s.corrupt-%s", fullPath, now.Format("20060102_150405"))

	if err := os.Rename(fullPath, target); err != nil {
		return "", fmt.Errorf("failed to quarantine %s: %w", filepath.Base(fullPath), err)
	}

	m.logger.Warn("File quarantined",
		slog.String("path", fullPath),
		slog.String("quarantined_as", target))

	return target, nil
}

// EnsureDirectory creates a directory and its parents if they do not exist
func (m *Manager) EnsureDirectory(path string) error {
	fullPath := m.Resolve(path)

	if err := os.MkdirAll(fullPath, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fullPath, err)
	}
	return nil
}

// Resolve returns path unchanged when absolute, else joined to the base directory
func (m *Manager) Resolve(path string) string {
	if filepath.IsAbs(path) || m.baseDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(m.baseDir, path)
}
