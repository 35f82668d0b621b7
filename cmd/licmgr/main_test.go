package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"licmgr/internal/services"
)

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, baseDir, stdin string, args ...string) cliResult {
	t.Helper()

	var stdout, stderr bytes.Buffer
	argv := append([]string{"licmgr", "--base-dir", baseDir}, args...)
	code := run(context.Background(), argv, strings.NewReader(stdin), &stdout, &stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestInitCreatesStores(t *testing.T) {
	base := t.TempDir()

	res := runCLI(t, base, "", "init")
	require.Equal(t, 0, res.code, res.stderr)

	assert.Contains(t, res.stdout, "Customers file:")
	assert.Contains(t, res.stdout, "Customers loaded:  0")
	assert.Contains(t, res.stderr, `default "admin123"`)
	assert.FileExists(t, filepath.Join(base, "admin_pass.hash"))

	// a second run finds the credential already present
	res = runCLI(t, base, "", "init")
	require.Equal(t, 0, res.code, res.stderr)
	assert.NotContains(t, res.stderr, "default")
}

func TestIssueListExport(t *testing.T) {
	base := t.TempDir()

	res := runCLI(t, base, "", "--password", "admin123",
		"issue", "--name", "Ali Rezaei", "--phone", "09121234567", "--hwid", "1a2b3c4d5e6f7890")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "License issued")
	assert.Contains(t, res.stdout, "Hardware ID: 1A2B3C4D5E6F7890")
	assert.Contains(t, res.stdout, "Access Code: 8527-26A7-5AC5")

	res = runCLI(t, base, "", "--password", "admin123",
		"issue", "--name", "Sara", "--phone", "0935", "--hwid", "1A2B3C4D5E6F7890")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Note: 1 earlier license(s)")

	res = runCLI(t, base, "", "--password", "admin123", "list")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Ali Rezaei")
	assert.Contains(t, res.stdout, "8527-26A7-5AC5")
	assert.Contains(t, res.stdout, "Total: 2")

	out := filepath.Join(base, "report.csv")
	res = runCLI(t, base, "", "--password", "admin123", "export", "--format", "csv", "--out", out)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Exported 2 record(s) to "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\xEF\xBB\xBF")), "csv starts with a BOM")
	assert.Contains(t, string(data), "8527-26A7-5AC5")

	res = runCLI(t, base, "", "--password", "admin123", "export")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, ".txt")

	res = runCLI(t, base, "", "--password", "admin123", "exports")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "customers_export_")
}

func TestCodeCommand(t *testing.T) {
	base := t.TempDir()

	tests := []struct {
		hwid string
		code string
	}{
		{"0000000000000000", "0F11-2DCD-C4A0"},
		{"FFFFFFFFFFFFFFFF", "62A7-B73A-1C47"},
		{"deadbeefcafebabe", "0B75-057B-D85F"},
	}

	for _, tt := range tests {
		t.Run(tt.hwid, func(t *testing.T) {
			res := runCLI(t, base, "", "--password", "admin123", "code", tt.hwid)
			require.Equal(t, 0, res.code, res.stderr)
			assert.Equal(t, tt.code+"\n", res.stdout)
		})
	}

	// preview never records anything
	res := runCLI(t, base, "", "--password", "admin123", "list")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "No customers recorded")
}

func TestExitCodes(t *testing.T) {
	base := t.TempDir()
	require.Equal(t, 0, runCLI(t, base, "", "init").code)

	tests := []struct {
		name   string
		stdin  string
		args   []string
		code   int
		stderr string
	}{
		{
			name:   "wrong password",
			args:   []string{"--password", "nope", "list"},
			code:   3,
			stderr: "Access denied",
		},
		{
			name:   "password from prompt",
			stdin:  "admin123\n",
			args:   []string{"list"},
			code:   0,
		},
		{
			name:   "invalid hardware id",
			args:   []string{"--password", "admin123", "issue", "--name", "A", "--phone", "1", "--hwid", "XYZ"},
			code:   2,
			stderr: "Invalid input",
		},
		{
			name:   "verify mismatch",
			args:   []string{"--password", "admin123", "verify", "--hwid", "0000000000000000", "--code", "0000-0000-0000"},
			code:   1,
			stderr: "does NOT match",
		},
		{
			name:   "remove out of range",
			args:   []string{"--password", "admin123", "remove", "--yes", "7"},
			code:   2,
			stderr: "no customer record",
		},
		{
			name:   "remove bad number",
			args:   []string{"--password", "admin123", "remove", "first"},
			code:   2,
			stderr: "positive integer",
		},
		{
			name:   "unknown export format",
			args:   []string{"--password", "admin123", "export", "--format", "pdf"},
			code:   2,
			stderr: "unsupported export format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, base, tt.stdin, tt.args...)
			assert.Equal(t, tt.code, res.code, res.stderr)
			if tt.stderr != "" {
				assert.Contains(t, res.stderr, tt.stderr)
			}
		})
	}
}

func TestVerifyValid(t *testing.T) {
	base := t.TempDir()

	res := runCLI(t, base, "", "--password", "admin123",
		"verify", "--hwid", "1A2B3C4D5E6F7890", "--code", "8527-26a7-5ac5")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Access code is valid")
}

func TestRemoveAsksForConfirmation(t *testing.T) {
	base := t.TempDir()
	res := runCLI(t, base, "", "--password", "admin123",
		"issue", "--name", "Ali", "--phone", "0912", "--hwid", "0000000000000000")
	require.Equal(t, 0, res.code, res.stderr)

	res = runCLI(t, base, "n\n", "--password", "admin123", "remove", "1")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Nothing deleted")

	res = runCLI(t, base, "y\n", "--password", "admin123", "remove", "1")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Removed Ali (0000000000000000)")

	res = runCLI(t, base, "", "--password", "admin123", "list")
	assert.Contains(t, res.stdout, "No customers recorded")
}

func TestPasswd(t *testing.T) {
	base := t.TempDir()
	require.Equal(t, 0, runCLI(t, base, "", "init").code)

	res := runCLI(t, base, "NewPass1\nOther\n", "--password", "admin123", "passwd")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "do not match")

	res = runCLI(t, base, "NewPass1\nNewPass1\n", "--password", "admin123", "passwd")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Password changed")

	assert.Equal(t, 3, runCLI(t, base, "", "--password", "admin123", "list").code)
	assert.Equal(t, 0, runCLI(t, base, "", "--password", "NewPass1", "list").code)

	hash, err := os.ReadFile(filepath.Join(base, "admin_pass.hash"))
	require.NoError(t, err)
	assert.Equal(t, "263cf5dae073a22c741b8debffbfe831e9cbf1d10b6c3f9060aab80d56d6e793", strings.TrimSpace(string(hash)))
}

func TestStatusJSON(t *testing.T) {
	base := t.TempDir()

	res := runCLI(t, base, "", "status", "--json")
	require.Equal(t, 0, res.code, res.stderr)

	var status services.HealthStatus
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &status))
	assert.Equal(t, services.StatusDegraded, status.Status)
	assert.Equal(t, services.StatusMissing, status.Services["credentials"].Status)

	require.Equal(t, 0, runCLI(t, base, "", "init").code)
	res = runCLI(t, base, "", "status")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Status: ok")
	assert.Contains(t, res.stdout, "scheme sha256")
}

func TestShellSession(t *testing.T) {
	base := t.TempDir()

	input := strings.Join([]string{
		"wrong",
		"admin123",
		"issue",
		"Ali",
		"0912",
		"deadbeefcafebabe",
		"list",
		"bogus",
		"verify DEADBEEFCAFEBABE 0B75-057B-D85F",
		"exit",
	}, "\n") + "\n"

	res := runCLI(t, base, input, "shell")
	require.Equal(t, 0, res.code, res.stderr)

	assert.Contains(t, res.stdout, "Invalid password")
	assert.Contains(t, res.stdout, "Logged in")
	assert.Contains(t, res.stdout, "Access Code: 0B75-057B-D85F")
	assert.Contains(t, res.stdout, "Total: 1")
	assert.Contains(t, res.stdout, `unknown command "bogus"`)
	assert.Contains(t, res.stdout, "Access code is valid")
}

func TestShellEndsOnEOFDuringLogin(t *testing.T) {
	res := runCLI(t, t.TempDir(), "wrong\n", "shell")
	assert.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Invalid password")
}

func TestHelpDoesNotCreateDirectories(t *testing.T) {
	base := filepath.Join(t.TempDir(), "fresh")

	res := runCLI(t, base, "", "--help")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "issue")
	assert.NoDirExists(t, base)
}
