package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// Password schemes
const (
	SchemeSHA256 = "sha256"
	SchemeScrypt = "scrypt"
)

// PasswordHasher turns a password into its stored line and checks candidates
// against a stored line.
type PasswordHasher interface {
	Scheme() string
	Hash(password string) (string, error)
	Matches(stored, password string) (bool, error)
	// Recognizes reports whether stored was produced by this scheme
	Recognizes(stored string) bool
}

// SHA256Hasher stores the unsalted lowercase hex SHA-256 of the password
type SHA256Hasher struct{}

func (SHA256Hasher) Scheme() string { return SchemeSHA256 }

func (SHA256Hasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

func (h SHA256Hasher) Matches(stored, password string) (bool, error) {
	candidate, _ := h.Hash(password)
	return SecureCompare(strings.ToLower(stored), candidate), nil
}

func (SHA256Hasher) Recognizes(stored string) bool {
	if len(stored) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(stored)
	return err == nil
}

// ScryptParams are the cost parameters of the scrypt scheme
type ScryptParams struct {
	N       int
	R       int
	P       int
	KeyLen  int
	SaltLen int
}

// DefaultScryptParams returns the OWASP recommended scrypt cost
func DefaultScryptParams() ScryptParams {
	return ScryptParams{N: 32768, R: 8, P: 1, KeyLen: 32, SaltLen: 16}
}

// ScryptHasher stores scrypt$N$r$p$<salt-hex>$<key-hex>
type ScryptHasher struct {
	Params ScryptParams
}

// NewScryptHasher creates a scrypt hasher, filling zero parameters with defaults
func NewScryptHasher(params ScryptParams) *ScryptHasher {
	def := DefaultScryptParams()
	if params.N == 0 {
		params.N = def.N
	}
	if params.R == 0 {
		params.R = def.R
	}
	if params.P == 0 {
		params.P = def.P
	}
	if params.KeyLen == 0 {
		params.KeyLen = def.KeyLen
	}
	if params.SaltLen == 0 {
		params.SaltLen = def.SaltLen
	}
	return &ScryptHasher{Params: params}
}

func (h *ScryptHasher) Scheme() string { return SchemeScrypt }

func (h *ScryptHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.Params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := scrypt.Key([]byte(password), salt, h.Params.N, h.Params.R, h.Params.P, h.Params.KeyLen)
	if err != nil {
		return "", fmt.Errorf("scrypt: %w", err)
	}

	return fmt.Sprintf("%s$%d$%d$%d$%s$%s", SchemeScrypt,
		h.Params.N, h.Params.R, h.Params.P,
		hex.EncodeToString(salt), hex.EncodeToString(key)), nil
}

func (h *ScryptHasher) Matches(stored, password string) (bool, error) {
	n, r, p, salt, key, err := parseScrypt(stored)
	if err != nil {
		return false, err
	}

	candidate, err := scrypt.Key([]byte(password), salt, n, r, p, len(key))
	if err != nil {
		return false, fmt.Errorf("scrypt: %w", err)
	}
	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

func (h *ScryptHasher) Recognizes(stored string) bool {
	_, _, _, _, _, err := parseScrypt(stored)
	return err == nil
}

func parseScrypt(stored string) (n, r, p int, salt, key []byte, err error) {
	parts := strings.Split(stored, "$")
	if len(parts) != 6 || parts[0] != SchemeScrypt {
		return 0, 0, 0, nil, nil, fmt.Errorf("not a scrypt credential")
	}

	costs := make([]int, 3)
	for i, s := range parts[1:4] {
		v, convErr := strconv.Atoi(s)
		if convErr != nil || v <= 0 {
			return 0, 0, 0, nil, nil, fmt.Errorf("invalid scrypt parameter %q", s)
		}
		costs[i] = v
	}

	if salt, err = hex.DecodeString(parts[4]); err != nil || len(salt) == 0 {
		return 0, 0, 0, nil, nil, fmt.Errorf("invalid scrypt salt")
	}
	if key, err = hex.DecodeString(parts[5]); err != nil || len(key) == 0 {
		return 0, 0, 0, nil, nil, fmt.Errorf("invalid scrypt key")
	}
	return costs[0], costs[1], costs[2], salt, key, nil
}

// HasherFor returns the hasher for a scheme name
func HasherFor(scheme string, params ScryptParams) (PasswordHasher, error) {
	switch strings.ToLower(scheme) {
	case "", SchemeSHA256:
		return SHA256Hasher{}, nil
	case SchemeScrypt:
		return NewScryptHasher(params), nil
	default:
		return nil, fmt.Errorf("unsupported password scheme %q", scheme)
	}
}

// SecureCompare compares two strings in constant time
func SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
