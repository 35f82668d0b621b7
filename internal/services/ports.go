package services

import (
	"context"
	"time"

	"licmgr/internal/files"
	"licmgr/pkg/contracts/domain"
)

// CodeDeriver maps hardware ids to access codes
type CodeDeriver interface {
	Derive(hardwareID string) (string, error)
	Verify(hardwareID, code string) (bool, error)
}

// CustomerStore persists issued records
type CustomerStore interface {
	Load(ctx context.Context) ([]domain.CustomerRecord, error)
	Add(ctx context.Context, record domain.CustomerRecord) error
	Remove(ctx context.Context, record domain.CustomerRecord) (bool, error)
	List() []domain.CustomerRecord
	FindByHardwareID(hardwareID string) []domain.CustomerRecord
	Quarantine(ctx context.Context, now time.Time) (string, error)
}

// CredentialStore guards administrator access
type CredentialStore interface {
	InitializeIfAbsent(ctx context.Context) (bool, error)
	Verify(ctx context.Context, password string) (bool, error)
	Change(ctx context.Context, current, newPassword string) error
	Scheme() string
}

// ReportExporter writes customer reports
type ReportExporter interface {
	Export(ctx context.Context, format domain.ExportFormat, records []domain.CustomerRecord, dir string, now time.Time) (string, error)
	WriteTo(ctx context.Context, format domain.ExportFormat, records []domain.CustomerRecord, path string) error
}

// ExportTargetValidator rejects unusable export destinations
type ExportTargetValidator interface {
	ValidateExportTarget(path string, format domain.ExportFormat) error
}

// ExportFinder lists previously written reports
type ExportFinder interface {
	FindExports() ([]files.FileInfo, error)
}

// StructValidator validates tagged request structs
type StructValidator interface {
	Struct(s any) error
}

// DateStamper renders creation dates
type DateStamper interface {
	Stamp(t time.Time) string
}

// HardwareIDSource reports the hardware id of the local machine
type HardwareIDSource interface {
	HardwareID() (string, error)
}
