package license

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "licmgr/internal/errors"
	"licmgr/internal/shared/testutil"
)

func newTestDeriver(t *testing.T, opts ...DeriverOption) *Deriver {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	d, err := NewDeriver(DefaultSalt, append([]DeriverOption{WithLogger(logger)}, opts...)...)
	require.NoError(t, err)
	return d
}

func TestDeriveKnownVectors(t *testing.T) {
	d := newTestDeriver(t)

	for hwid, want := range testutil.KnownCodes {
		t.Run(hwid, func(t *testing.T) {
			code, err := d.Derive(hwid)
			require.NoError(t, err)
			assert.Equal(t, want, code)
		})
	}
}

func TestDeriveCustomSalt(t *testing.T) {
	d, err := NewDeriver("TEST_SALT")
	require.NoError(t, err)

	code, err := d.Derive("1A2B3C4D5E6F7890")
	require.NoError(t, err)
	assert.Equal(t, "E21B-08C2-DD61", code)

	prod := newTestDeriver(t)
	prodCode, err := prod.Derive("1A2B3C4D5E6F7890")
	require.NoError(t, err)
	assert.NotEqual(t, prodCode, code)
}

func TestDeriveNormalizesInput(t *testing.T) {
	d := newTestDeriver(t)

	upper, err := d.Derive("1A2B3C4D5E6F7890")
	require.NoError(t, err)
	lower, err := d.Derive("  1a2b3c4d5e6f7890\n")
	require.NoError(t, err)

	assert.Equal(t, upper, lower)
}

func TestDeriveRejectsInvalidHardwareID(t *testing.T) {
	d := newTestDeriver(t)

	tests := []struct {
		name string
		hwid string
	}{
		{"empty", ""},
		{"too short", "1A2B3C4D5E6F789"},
		{"too long", "1A2B3C4D5E6F78900"},
		{"non hex", "1A2B3C4D5E6F789G"},
		{"inner space", "1A2B3C4D 5E6F789"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := d.Derive(tt.hwid)
			assert.Empty(t, code)
			assert.ErrorIs(t, err, apperrors.ErrInvalidHardwareID)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestDeriveIsDeterministic(t *testing.T) {
	d := newTestDeriver(t)
	other := newTestDeriver(t)

	for i := 0; i < 50; i++ {
		hwid := fmt.Sprintf("%016X", uint64(i)*0x9E3779B97F4A7C15)
		a, err := d.Derive(hwid)
		require.NoError(t, err)
		b, err := other.Derive(hwid)
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.True(t, ValidateAccessCode(a), "code %q for %s", a, hwid)
		assert.Len(t, a, 14)
	}
}

func TestDeriveDistinctCodes(t *testing.T) {
	d := newTestDeriver(t)

	seen := make(map[string]string, 5000)
	for i := 0; i < 5000; i++ {
		hwid := fmt.Sprintf("%016X", uint64(i)*0x9E3779B97F4A7C15+uint64(i))
		code, err := d.Derive(hwid)
		require.NoError(t, err)
		if prev, ok := seen[code]; ok {
			t.Fatalf("collision: %s and %s both map to %s", prev, hwid, code)
		}
		seen[code] = hwid
	}
}

// shortHasher returns a truncated SHA256 so the primary chain yields too few characters
type shortHasher struct {
	DigestHasher
	sha256 string
	sha384 string
}

func (h shortHasher) SHA256([]byte) string { return h.sha256 }

func (h shortHasher) SHA384(data []byte) string {
	if h.sha384 != "" {
		return h.sha384
	}
	return h.DigestHasher.SHA384(data)
}

func TestDeriveFallsBackOnShortDigest(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	d, err := NewDeriver(DefaultSalt,
		WithLogger(logger),
		WithHasher(shortHasher{sha256: "abcd"}),
	)
	require.NoError(t, err)

	code, err := d.Derive("1A2B3C4D5E6F7890")
	require.NoError(t, err)

	assert.Equal(t, "3F36-228C-ED22", code)
	testutil.AssertLogContains(t, handler, slog.LevelWarn, "backup derivation")
}

func TestDeriveFallbackUsesBackupSalt(t *testing.T) {
	d, err := NewDeriver(DefaultSalt,
		WithHasher(shortHasher{sha256: "abcd"}),
		WithBackupSalt("OTHER_BACKUP"),
	)
	require.NoError(t, err)

	code, err := d.Derive("1A2B3C4D5E6F7890")
	require.NoError(t, err)
	assert.NotEqual(t, "3F36-228C-ED22", code)
	assert.True(t, ValidateAccessCode(code))
}

func TestDeriveFailsWhenNoUsableCode(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	d, err := NewDeriver(DefaultSalt,
		WithLogger(logger),
		WithHasher(shortHasher{sha256: "ab", sha384: "cd"}),
	)
	require.NoError(t, err)

	code, err := d.Derive("1A2B3C4D5E6F7890")
	assert.Empty(t, code)
	assert.ErrorIs(t, err, apperrors.ErrDerivation)
	assert.Equal(t, apperrors.CodeDerivationFailed, apperrors.CodeOf(err))
	testutil.AssertLogContains(t, handler, slog.LevelError, "malformed access code")
}

func TestDeriveFallbackTruncatesDigest(t *testing.T) {
	d, err := NewDeriver(DefaultSalt,
		WithHasher(shortHasher{sha256: "abcd", sha384: "0123456789abcdef0123"}),
	)
	require.NoError(t, err)

	code, err := d.Derive("1A2B3C4D5E6F7890")
	require.NoError(t, err)
	assert.Equal(t, "0123-4567-89AB", code)
}

func TestNewDeriverRequiresSalts(t *testing.T) {
	_, err := NewDeriver("")
	assert.Error(t, err)

	_, err = NewDeriver(DefaultSalt, WithBackupSalt(""))
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	d := newTestDeriver(t)

	tests := []struct {
		name  string
		hwid  string
		code  string
		valid bool
	}{
		{"exact", "1A2B3C4D5E6F7890", "8527-26A7-5AC5", true},
		{"lowercase code", "1A2B3C4D5E6F7890", "8527-26a7-5ac5", true},
		{"lowercase hwid", "deadbeefcafebabe", "0B75-057B-D85F", true},
		{"wrong code", "1A2B3C4D5E6F7890", "0B75-057B-D85F", false},
		{"truncated code", "1A2B3C4D5E6F7890", "8527-26A7", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := d.Verify(tt.hwid, tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, ok)
		})
	}

	_, err := d.Verify("bogus", "8527-26A7-5AC5")
	assert.ErrorIs(t, err, apperrors.ErrInvalidHardwareID)
}
