package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"licmgr/internal/shared/testutil"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	logger, _ := testutil.NewTestLogger(t)
	return NewManager(dir, logger), dir
}

func TestWriteAtomic(t *testing.T) {
	t.Run("creates parent directories", func(t *testing.T) {
		m, dir := newTestManager(t)

		require.NoError(t, m.WriteAtomic("license_data/customers.json", []byte("[]"), 0o644))

		data, err := os.ReadFile(filepath.Join(dir, "license_data", "customers.json"))
		require.NoError(t, err)
		assert.Equal(t, "[]", string(data))
	})

	t.Run("replaces existing content", func(t *testing.T) {
		m, dir := newTestManager(t)
		target := filepath.Join(dir, "admin_pass.hash")
		require.NoError(t, os.WriteFile(target, []byte("old"), 0o600))

		require.NoError(t, m.WriteAtomic(target, []byte("new"), 0o600))

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("leaves no temporary files", func(t *testing.T) {
		m, dir := newTestManager(t)

		require.NoError(t, m.WriteAtomic("out.txt", []byte("a"), 0o644))
		require.NoError(t, m.WriteAtomic("out.txt", []byte("b"), 0o644))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "out.txt", entries[0].Name())
	})

	t.Run("fails when parent is a file", func(t *testing.T) {
		m, dir := newTestManager(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "blocker"), nil, 0o644))

		err := m.WriteAtomic("blocker/customers.json", []byte("[]"), 0o644)
		assert.Error(t, err)
	})
}

func TestQuarantine(t *testing.T) {
	m, dir := newTestManager(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "customers.json"), []byte("{oops"), 0o644))

	now := time.Date(2024, 3, 20, 12, 30, 0, 0, time.UTC)
	target, err := m.Quarantine("customers.json", now)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "customers.json.corrupt-20240320_123000"), target)
	assert.False(t, m.Exists("customers.json"))
	assert.FileExists(t, target)

	_, err = m.Quarantine("missing.json", now)
	assert.Error(t, err)
}

func TestResolveAndEnsureDirectory(t *testing.T) {
	m, dir := newTestManager(t)

	assert.Equal(t, filepath.Join(dir, "logs"), m.Resolve("logs"))
	abs := filepath.Join(t.TempDir(), "elsewhere")
	assert.Equal(t, abs, m.Resolve(abs))

	require.NoError(t, m.EnsureDirectory("license_data/exports"))
	assert.DirExists(t, filepath.Join(dir, "license_data", "exports"))
	require.NoError(t, m.EnsureDirectory("license_data/exports"))
}
