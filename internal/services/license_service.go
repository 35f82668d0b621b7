package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	apperrors "licmgr/internal/errors"
	"licmgr/internal/files"
	"licmgr/internal/license"
	"licmgr/pkg/contracts/domain"
)

// Dependencies wires a LicenseService. Deriver, Customers, Credentials,
// Exporter and Stamper are required.
type Dependencies struct {
	Deriver       CodeDeriver
	Customers     CustomerStore
	Credentials   CredentialStore
	Exporter      ReportExporter
	Exports       ExportFinder
	Validator     StructValidator
	FileValidator ExportTargetValidator
	Stamper       DateStamper
	Machine       HardwareIDSource
	Metrics       *license.Metrics
	Logger        *slog.Logger

	ExportDir     string
	DefaultFormat domain.ExportFormat
	Clock         func() time.Time
}

// LicenseService is the operator-facing facade over derivation, record
// storage, credentials and exports. Front ends call only this type.
type LicenseService struct {
	deriver       CodeDeriver
	customers     CustomerStore
	credentials   CredentialStore
	exporter      ReportExporter
	exports       ExportFinder
	validator     StructValidator
	fileValidator ExportTargetValidator
	stamper       DateStamper
	machine       HardwareIDSource
	metrics       *license.Metrics
	logger        *slog.Logger

	exportDir     string
	defaultFormat domain.ExportFormat
	now           func() time.Time
}

// StartupReport summarizes what Start found on disk
type StartupReport struct {
	DefaultPasswordInstalled bool
	RecordsLoaded            int
	LoadError                error
	QuarantinedStore         string
}

// IssueResult is the outcome of IssueLicense
type IssueResult struct {
	Record domain.CustomerRecord
	// PreviousIssues counts records already stored for the same hardware id
	PreviousIssues int
}

// ExportRequest selects the report format and destination. An empty Output
// writes a timestamped file in the exports directory.
type ExportRequest struct {
	Format domain.ExportFormat
	Output string
}

// NewLicenseService creates a LicenseService
func NewLicenseService(deps Dependencies) (*LicenseService, error) {
	switch {
	case deps.Deriver == nil:
		return nil, errors.New("services: deriver is required")
	case deps.Customers == nil:
		return nil, errors.New("services: customer store is required")
	case deps.Credentials == nil:
		return nil, errors.New("services: credential store is required")
	case deps.Exporter == nil:
		return nil, errors.New("services: exporter is required")
	case deps.Stamper == nil:
		return nil, errors.New("services: date stamper is required")
	}

	s := &LicenseService{
		deriver:       deps.Deriver,
		customers:     deps.Customers,
		credentials:   deps.Credentials,
		exporter:      deps.Exporter,
		exports:       deps.Exports,
		validator:     deps.Validator,
		fileValidator: deps.FileValidator,
		stamper:       deps.Stamper,
		machine:       deps.Machine,
		metrics:       deps.Metrics,
		logger:        deps.Logger,
		exportDir:     deps.ExportDir,
		defaultFormat: deps.DefaultFormat,
		now:           deps.Clock,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With(slog.String("service", "license"))
	if s.now == nil {
		s.now = time.Now
	}
	if s.defaultFormat == "" {
		s.defaultFormat = domain.ExportFormatText
	}
	return s, nil
}

// Start prepares the stores: it installs the default credential when none
// exists and loads the customer records. An unreadable store does not stop
// the session; a corrupt one is quarantined first so later writes cannot
// destroy it.
func (s *LicenseService) Start(ctx context.Context) (*StartupReport, error) {
	report := &StartupReport{}

	installed, err := s.credentials.InitializeIfAbsent(ctx)
	if err != nil {
		return nil, err
	}
	report.DefaultPasswordInstalled = installed

	records, err := s.customers.Load(ctx)
	if err == nil {
		report.RecordsLoaded = len(records)
		s.logger.InfoContext(ctx, "Customer records loaded", slog.Int("record_count", len(records)))
		return report, nil
	}

	report.LoadError = err
	s.logger.ErrorContext(ctx, "Failed to load customer records, continuing with an empty list",
		slog.String("error", err.Error()),
		slog.String("code", apperrors.CodeOf(err)))

	if apperrors.CodeOf(err) == apperrors.CodeStoreCorrupt {
		target, qerr := s.customers.Quarantine(ctx, s.now())
		if qerr != nil {
			return nil, qerr
		}
		report.QuarantinedStore = target
	}
	return report, nil
}

// Login checks the administrator password
func (s *LicenseService) Login(ctx context.Context, password string) error {
	ok, err := s.credentials.Verify(ctx, password)
	if err != nil {
		s.logger.ErrorContext(ctx, "Credential check failed", slog.String("error", err.Error()))
		return err
	}
	if !ok {
		s.metrics.RecordLoginFailure(ctx, "invalid_password")
		s.logger.WarnContext(ctx, "Login rejected")
		return apperrors.ErrInvalidPassword
	}

	s.logger.InfoContext(ctx, "Administrator logged in")
	return nil
}

// ChangePassword replaces the administrator password. Inputs are checked
// before the store is touched: both passwords must be non-empty and the new
// one must match its confirmation.
func (s *LicenseService) ChangePassword(ctx context.Context, current, newPassword, confirm string) error {
	return license.Trace(ctx, "change_password", func(ctx context.Context) error {
		if current == "" || newPassword == "" {
			return apperrors.ErrEmptyPassword
		}
		if newPassword != confirm {
			return apperrors.ErrPasswordMismatch
		}

		if err := s.credentials.Change(ctx, current, newPassword); err != nil {
			if errors.Is(err, apperrors.ErrAuthentication) {
				s.metrics.RecordLoginFailure(ctx, "password_change")
			}
			s.logger.WarnContext(ctx, "Password change failed", slog.String("error", err.Error()))
			return err
		}

		s.logger.InfoContext(ctx, "Administrator password changed",
			slog.String("scheme", s.credentials.Scheme()))
		return nil
	})
}

// IssueLicense validates the request, derives the access code and stores the
// new record. Issuing again for a known hardware id is allowed and reported
// through PreviousIssues.
func (s *LicenseService) IssueLicense(ctx context.Context, req domain.IssueRequest) (*IssueResult, error) {
	req = req.Normalized()

	var result *IssueResult
	err := license.Trace(ctx, "issue", func(ctx context.Context) error {
		if s.validator != nil {
			if err := s.validator.Struct(req); err != nil {
				return err
			}
		}

		code, err := s.deriver.Derive(req.HardwareID)
		if err != nil {
			return err
		}

		previous := len(s.customers.FindByHardwareID(req.HardwareID))
		if previous > 0 {
			s.logger.WarnContext(ctx, "Hardware id already has issued licenses",
				slog.String("hardware_id", req.HardwareID),
				slog.Int("previous_issues", previous))
		}

		record := domain.CustomerRecord{
			Name:        req.Name,
			Phone:       req.Phone,
			HardwareID:  req.HardwareID,
			AccessCode:  code,
			CreatedDate: s.stamper.Stamp(s.now()),
		}
		if err := s.customers.Add(ctx, record); err != nil {
			return err
		}
		s.metrics.RecordAdded(ctx)

		s.logger.InfoContext(ctx, "License issued",
			slog.String("hardware_id", record.HardwareID),
			slog.String("access_code", license.MaskAccessCode(record.AccessCode)))

		result = &IssueResult{Record: record, PreviousIssues: previous}
		return nil
	}, attribute.String("hardware_id", req.HardwareID))
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PreviewCode derives the access code for hardwareID without storing anything
func (s *LicenseService) PreviewCode(ctx context.Context, hardwareID string) (string, error) {
	var code string
	err := license.Trace(ctx, "preview", func(ctx context.Context) error {
		var err error
		code, err = s.deriver.Derive(hardwareID)
		return err
	})
	return code, err
}

// VerifyCode reports whether code belongs to hardwareID
func (s *LicenseService) VerifyCode(ctx context.Context, hardwareID, code string) (bool, error) {
	var ok bool
	err := license.Trace(ctx, "verify", func(ctx context.Context) error {
		var err error
		ok, err = s.deriver.Verify(hardwareID, code)
		return err
	})
	if err == nil {
		s.logger.DebugContext(ctx, "Access code checked", slog.Bool("valid", ok))
	}
	return ok, err
}

// Customers returns the stored records in insertion order
func (s *LicenseService) Customers() []domain.CustomerRecord {
	return s.customers.List()
}

// RemoveCustomer deletes the record at position index, counting from 1 as
// in the Customers listing, and returns it
func (s *LicenseService) RemoveCustomer(ctx context.Context, index int) (domain.CustomerRecord, error) {
	var removed domain.CustomerRecord
	err := license.Trace(ctx, "remove", func(ctx context.Context) error {
		records := s.customers.List()
		if index < 1 || index > len(records) {
			return apperrors.ErrRecordNotFound
		}

		target := records[index-1]
		ok, err := s.customers.Remove(ctx, target)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrRecordNotFound
		}
		s.metrics.RecordRemoved(ctx)

		s.logger.InfoContext(ctx, "Customer record removed",
			slog.Int("index", index),
			slog.String("hardware_id", target.HardwareID))
		removed = target
		return nil
	}, attribute.Int("index", index))
	return removed, err
}

// Export writes the customer report and returns the written path
func (s *LicenseService) Export(ctx context.Context, req ExportRequest) (string, error) {
	format := req.Format
	if format == "" {
		format = s.defaultFormat
	}

	var path string
	err := license.Trace(ctx, "export", func(ctx context.Context) error {
		records := s.customers.List()

		if req.Output != "" {
			if s.fileValidator != nil {
				if err := s.fileValidator.ValidateExportTarget(req.Output, format); err != nil {
					return err
				}
			}
			if err := s.exporter.WriteTo(ctx, format, records, req.Output); err != nil {
				return exportError(err)
			}
			path = req.Output
		} else {
			written, err := s.exporter.Export(ctx, format, records, s.exportDir, s.now())
			if err != nil {
				return exportError(err)
			}
			path = written
		}

		s.metrics.RecordExport(ctx, string(format))
		return nil
	}, attribute.String("format", string(format)))
	return path, err
}

// ListExports returns earlier reports, oldest first
func (s *LicenseService) ListExports() ([]files.FileInfo, error) {
	if s.exports == nil {
		return nil, nil
	}
	found, err := s.exports.FindExports()
	if err != nil {
		return nil, apperrors.Storage(apperrors.CodeStorageRead, "failed to list exports", err)
	}
	return found, nil
}

// MachineHardwareID returns this machine's hardware id
func (s *LicenseService) MachineHardwareID() (string, error) {
	if s.machine == nil {
		return "", errors.New("services: hardware id source not configured")
	}
	return s.machine.HardwareID()
}

func exportError(err error) error {
	if apperrors.KindOf(err) != nil {
		return err
	}
	return apperrors.Storage(apperrors.CodeStorageWrite, "failed to write export", fmt.Errorf("export: %w", err))
}
