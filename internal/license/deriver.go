package license

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	apperrors "licmgr/internal/errors"
)

const (
	// DefaultSalt is the secret mixed into every derivation. Changing it
	// invalidates every access code issued so far.
	DefaultSalt = "SIEVE_ANALYSIS_APP_SECURE_SALT_2024"

	// DefaultBackupSalt seeds the fallback digest used when the primary chain
	// yields a code that is too short.
	DefaultBackupSalt = "BACKUP_SALT"

	segmentSize   = 4
	codeTarget    = 12 // accumulator length (separators included) at which segmenting stops
	fallbackChars = 12
	minCodeLength = 8
	maxCodeLength = 15
)

// Deriver maps hardware identifiers to access codes
type Deriver struct {
	salt       string
	backupSalt string
	hasher     Hasher
	logger     *slog.Logger
	metrics    *Metrics
}

// DeriverOption configures a Deriver
type DeriverOption func(*Deriver)

// WithHasher replaces the digest implementation
func WithHasher(h Hasher) DeriverOption {
	return func(d *Deriver) {
		d.hasher = h
	}
}

// WithBackupSalt replaces the fallback salt
func WithBackupSalt(salt string) DeriverOption {
	return func(d *Deriver) {
		d.backupSalt = salt
	}
}

// WithLogger sets the logger used for derivation events
func WithLogger(logger *slog.Logger) DeriverOption {
	return func(d *Deriver) {
		d.logger = logger
	}
}

// WithMetrics records derivations on the given instruments
func WithMetrics(m *Metrics) DeriverOption {
	return func(d *Deriver) {
		d.metrics = m
	}
}

// NewDeriver creates a Deriver bound to salt
func NewDeriver(salt string, opts ...DeriverOption) (*Deriver, error) {
	if salt == "" {
		return nil, errors.New("license: derivation salt must not be empty")
	}

	d := &Deriver{
		salt:       salt,
		backupSalt: DefaultBackupSalt,
		hasher:     DigestHasher{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.backupSalt == "" {
		return nil, errors.New("license: backup salt must not be empty")
	}
	d.logger = d.logger.With(slog.String("component", "deriver"))

	return d, nil
}

// Derive returns the access code for hardwareID. The id is normalized first,
// so lowercase input yields the same code as its uppercase form.
func (d *Deriver) Derive(hardwareID string) (string, error) {
	id := NormalizeHardwareID(hardwareID)
	if !ValidateHardwareID(id) {
		d.logger.Warn("Rejected hardware id",
			slog.Int("length", len(id)),
		)
		return "", apperrors.ErrInvalidHardwareID
	}

	code := d.compute(id)
	if !ValidateAccessCode(code) {
		d.metrics.recordDerivationFailure(context.Background())
		d.logger.Error("Derivation produced malformed access code",
			slog.String("hardware_id", id),
			slog.Int("code_length", len(code)),
		)
		return "", apperrors.Derivation("access code derivation failed",
			fmt.Errorf("digest chain produced %d-character code", len(code)))
	}

	d.metrics.recordDerived(context.Background())
	d.logger.Debug("Access code derived",
		slog.String("hardware_id", id),
		slog.String("access_code", MaskAccessCode(code)),
	)
	return code, nil
}

// Verify reports whether code is the access code for hardwareID.
// Comparison is case-insensitive on code and constant-time.
func (d *Deriver) Verify(hardwareID, code string) (bool, error) {
	expected, err := d.Derive(hardwareID)
	if err != nil {
		return false, err
	}
	candidate := strings.ToUpper(strings.TrimSpace(code))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(candidate)) == 1, nil
}

func (d *Deriver) compute(id string) string {
	h1 := d.hasher.SHA512([]byte(id + d.salt))
	h2 := d.hasher.MD5([]byte(h1))
	h3 := d.hasher.SHA256([]byte(h2 + id))

	var acc strings.Builder
	for i := 0; i < len(h3); i += segmentSize {
		if acc.Len() >= codeTarget {
			break
		}
		end := min(i+segmentSize, len(h3))
		acc.WriteString(strings.ToUpper(h3[i:end]))
		acc.WriteByte('-')
	}
	code := strings.TrimRight(acc.String(), "-")

	if len(code) < minCodeLength {
		d.logger.Warn("Primary digest too short, using backup derivation",
			slog.Int("code_length", len(code)),
		)
		code = d.fallback(id)
	}

	if len(code) > maxCodeLength {
		code = code[:maxCodeLength]
	}
	return code
}

func (d *Deriver) fallback(id string) string {
	alt := d.hasher.SHA384([]byte(id + d.backupSalt))
	if len(alt) > fallbackChars {
		alt = alt[:fallbackChars]
	}
	return joinGroups(strings.ToUpper(alt), segmentSize)
}

// joinGroups splits s into size-character groups joined by '-'
func joinGroups(s string, size int) string {
	groups := make([]string, 0, (len(s)+size-1)/size)
	for i := 0; i < len(s); i += size {
		groups = append(groups, s[i:min(i+size, len(s))])
	}
	return strings.Join(groups, "-")
}
