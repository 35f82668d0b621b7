package security

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	apperrors "licmgr/internal/errors"
	"licmgr/internal/files"
)

// DefaultAdminPassword is the password installed on first run
const DefaultAdminPassword = "admin123"

const credentialFileMode = 0o600

// CredentialStore owns the single administrator credential artifact: one text
// line holding the password digest in the configured scheme.
type CredentialStore struct {
	path            string
	hasher          PasswordHasher
	known           []PasswordHasher
	defaultPassword string
	files           *files.Manager
	logger          *slog.Logger
	mu              sync.Mutex
}

// CredentialOption configures a CredentialStore
type CredentialOption func(*CredentialStore)

// WithPasswordHasher sets the scheme used for new credentials. A legacy sha256
// artifact is upgraded to it after a successful Verify; nothing is downgraded.
func WithPasswordHasher(h PasswordHasher) CredentialOption {
	return func(s *CredentialStore) {
		s.hasher = h
	}
}

// WithDefaultPassword overrides the first-run password
func WithDefaultPassword(password string) CredentialOption {
	return func(s *CredentialStore) {
		s.defaultPassword = password
	}
}

// WithCredentialLogger sets the audit logger
func WithCredentialLogger(logger *slog.Logger) CredentialOption {
	return func(s *CredentialStore) {
		s.logger = logger
	}
}

// WithFileManager sets the file manager used for reads and atomic writes
func WithFileManager(m *files.Manager) CredentialOption {
	return func(s *CredentialStore) {
		s.files = m
	}
}

// NewCredentialStore creates a store backed by the file at path
func NewCredentialStore(path string, opts ...CredentialOption) *CredentialStore {
	s := &CredentialStore{
		path:            path,
		hasher:          SHA256Hasher{},
		defaultPassword: DefaultAdminPassword,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.files == nil {
		s.files = files.NewManager("", s.logger)
	}
	s.known = []PasswordHasher{s.hasher}
	if s.hasher.Scheme() != SchemeSHA256 {
		s.known = append(s.known, SHA256Hasher{})
	}
	if s.hasher.Scheme() != SchemeScrypt {
		s.known = append(s.known, NewScryptHasher(ScryptParams{}))
	}
	s.logger = s.logger.With(slog.String("component", "credentials"))
	return s
}

// InitializeIfAbsent installs the default password when no credential exists.
// It reports whether a credential was created.
func (s *CredentialStore) InitializeIfAbsent(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.files.Exists(s.path) {
		return false, nil
	}

	if err := s.write(s.defaultPassword); err != nil {
		return false, err
	}

	s.logger.WarnContext(ctx, "Default administrator password installed, change it before issuing licenses",
		slog.String("path", s.path),
		slog.String("scheme", s.hasher.Scheme()))
	return true, nil
}

// Verify reports whether password matches the stored credential. A missing or
// unreadable artifact is a storage error, never a match.
func (s *CredentialStore) Verify(ctx context.Context, password string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.read()
	if err != nil {
		return false, err
	}

	hasher := s.schemeOf(stored)
	if hasher == nil {
		s.logger.ErrorContext(ctx, "Credential artifact has unknown format",
			slog.String("path", s.path))
		return false, apperrors.Storage(apperrors.CodeStoreCorrupt, "credential artifact has unknown format", nil)
	}

	ok, err := hasher.Matches(stored, password)
	if err != nil {
		return false, apperrors.Storage(apperrors.CodeStoreCorrupt, "credential artifact is malformed", err)
	}

	s.logger.InfoContext(ctx, "Credential verification",
		slog.String("event_type", "verify"),
		slog.Bool("success", ok),
		slog.String("scheme", hasher.Scheme()))

	if ok && hasher.Scheme() == SchemeSHA256 && s.hasher.Scheme() != SchemeSHA256 {
		if err := s.write(password); err != nil {
			s.logger.WarnContext(ctx, "Credential migration failed, keeping existing artifact",
				slog.String("from", hasher.Scheme()),
				slog.String("to", s.hasher.Scheme()),
				slog.String("error", err.Error()))
		} else {
			s.logger.InfoContext(ctx, "Credential migrated",
				slog.String("from", hasher.Scheme()),
				slog.String("to", s.hasher.Scheme()))
		}
	}

	return ok, nil
}

// Change replaces the stored credential. The current password must verify and
// the new one must be non-empty.
func (s *CredentialStore) Change(ctx context.Context, current, newPassword string) error {
	ok, err := s.Verify(ctx, current)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.WarnContext(ctx, "Password change rejected",
			slog.String("event_type", "change"),
			slog.String("reason", "invalid current password"))
		return apperrors.ErrInvalidPassword
	}
	if newPassword == "" {
		return apperrors.ErrEmptyPassword
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(newPassword); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Administrator password changed",
		slog.String("event_type", "change"),
		slog.String("scheme", s.hasher.Scheme()))
	return nil
}

// Scheme returns the scheme of the stored artifact, or "" when it is missing or unknown
func (s *CredentialStore) Scheme() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.read()
	if err != nil {
		return ""
	}
	if h := s.schemeOf(stored); h != nil {
		return h.Scheme()
	}
	return ""
}

func (s *CredentialStore) schemeOf(stored string) PasswordHasher {
	for _, h := range s.known {
		if h.Recognizes(stored) {
			return h
		}
	}
	return nil
}

func (s *CredentialStore) read() (string, error) {
	data, err := s.files.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", apperrors.Storage(apperrors.CodeCredentialMissing, "administrator credential not initialized", err)
	}
	if err != nil {
		return "", apperrors.Storage(apperrors.CodeStorageRead, "failed to read administrator credential", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *CredentialStore) write(password string) error {
	line, err := s.hasher.Hash(password)
	if err != nil {
		return apperrors.Storage(apperrors.CodeStorageWrite, "failed to hash administrator password", err)
	}
	if err := s.files.WriteAtomic(s.path, []byte(line+"\n"), credentialFileMode); err != nil {
		return apperrors.Storage(apperrors.CodeStorageWrite, "failed to write administrator credential", err)
	}
	return nil
}
