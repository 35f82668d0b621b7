// Package customers persists the issued license records.
//
// The collection lives in a single JSON file, an array of records in append
// order. Every mutation rewrites the whole file through an atomic replace and
// only then updates the in-memory copy, so memory never holds a record that
// failed to reach disk.
package customers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"slices"
	"sync"
	"time"

	apperrors "licmgr/internal/errors"
	"licmgr/internal/files"
	"licmgr/pkg/contracts/domain"
)

const storeFileMode = 0o644

// Validator checks a record before it is stored
type Validator interface {
	Struct(s any) error
}

// Repository is the customer record store
type Repository struct {
	path      string
	files     *files.Manager
	validator Validator
	logger    *slog.Logger

	mu      sync.RWMutex
	records []domain.CustomerRecord
}

// Option configures a Repository
type Option func(*Repository)

// WithFileManager sets the file manager used for reads and atomic writes
func WithFileManager(m *files.Manager) Option {
	return func(r *Repository) {
		r.files = m
	}
}

// WithValidator rejects invalid records on Add
func WithValidator(v Validator) Option {
	return func(r *Repository) {
		r.validator = v
	}
}

// WithLogger sets the repository logger
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

// NewRepository creates an empty repository backed by the file at path. Call
// Load to read existing records.
func NewRepository(path string, opts ...Option) *Repository {
	r := &Repository{
		path:    path,
		logger:  slog.Default(),
		records: []domain.CustomerRecord{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.files == nil {
		r.files = files.NewManager("", r.logger)
	}
	r.logger = r.logger.With(slog.String("component", "customers"))
	return r
}

// Load replaces the in-memory collection with the persisted one. A missing
// file yields an empty collection. Unreadable or malformed data is a storage
// error and leaves the in-memory collection empty.
func (r *Repository) Load(ctx context.Context) ([]domain.CustomerRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = []domain.CustomerRecord{}

	data, err := r.files.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.InfoContext(ctx, "No customer store yet, starting empty",
			slog.String("path", r.path))
		return r.snapshot(), nil
	}
	if err != nil {
		return nil, apperrors.Storage(apperrors.CodeStorageRead, "failed to read customer store", err)
	}

	var records []domain.CustomerRecord
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, apperrors.Storage(apperrors.CodeStoreCorrupt, "customer store is not valid JSON", err)
		}
	}
	if records != nil {
		r.records = records
	}

	r.logger.InfoContext(ctx, "Customer store loaded",
		slog.String("path", r.path),
		slog.Int("record_count", len(r.records)))

	return r.snapshot(), nil
}

// Add appends record and persists the collection. On failure the in-memory
// collection is unchanged.
func (r *Repository) Add(ctx context.Context, record domain.CustomerRecord) error {
	if r.validator != nil {
		if err := r.validator.Struct(record); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]domain.CustomerRecord, len(r.records), len(r.records)+1)
	copy(next, r.records)
	next = append(next, record)

	if err := r.persist(next); err != nil {
		r.logger.ErrorContext(ctx, "Failed to persist new customer",
			slog.String("hardware_id", record.HardwareID),
			slog.String("error", err.Error()))
		return err
	}
	r.records = next

	r.logger.InfoContext(ctx, "Customer added",
		slog.String("hardware_id", record.HardwareID),
		slog.Int("record_count", len(r.records)))
	return nil
}

// Remove deletes the first record equal to record and persists the
// collection. It reports whether a record was removed; an absent record is
// not an error.
func (r *Repository) Remove(ctx context.Context, record domain.CustomerRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := slices.Index(r.records, record)
	if idx < 0 {
		r.logger.DebugContext(ctx, "Customer to remove not found",
			slog.String("hardware_id", record.HardwareID))
		return false, nil
	}

	next := slices.Delete(slices.Clone(r.records), idx, idx+1)
	if err := r.persist(next); err != nil {
		r.logger.ErrorContext(ctx, "Failed to persist customer removal",
			slog.String("hardware_id", record.HardwareID),
			slog.String("error", err.Error()))
		return false, err
	}
	r.records = next

	r.logger.InfoContext(ctx, "Customer removed",
		slog.String("hardware_id", record.HardwareID),
		slog.Int("record_count", len(r.records)))
	return true, nil
}

// List returns the records in insertion order. The slice is a copy.
func (r *Repository) List() []domain.CustomerRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot()
}

// Len returns the number of records
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// FindByHardwareID returns the records issued for hardwareID, oldest first
func (r *Repository) FindByHardwareID(hardwareID string) []domain.CustomerRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found []domain.CustomerRecord
	for _, rec := range r.records {
		if rec.HardwareID == hardwareID {
			found = append(found, rec)
		}
	}
	return found
}

// Quarantine moves an unreadable store aside so the next Add starts a fresh
// file instead of overwriting it. It returns the quarantined path.
func (r *Repository) Quarantine(ctx context.Context, now time.Time) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, err := r.files.Quarantine(r.path, now)
	if err != nil {
		return "", apperrors.Storage(apperrors.CodeStorageWrite, "failed to quarantine customer store", err)
	}

	r.logger.WarnContext(ctx, "Customer store quarantined",
		slog.String("path", r.path),
		slog.String("quarantined_as", target))
	return target, nil
}

func (r *Repository) persist(records []domain.CustomerRecord) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return apperrors.Storage(apperrors.CodeStorageWrite, "failed to encode customer store", err)
	}

	if err := r.files.WriteAtomic(r.path, bytes.TrimRight(buf.Bytes(), "\n"), storeFileMode); err != nil {
		return apperrors.Storage(apperrors.CodeStorageWrite, "failed to write customer store", err)
	}
	return nil
}

func (r *Repository) snapshot() []domain.CustomerRecord {
	return slices.Clone(r.records)
}
