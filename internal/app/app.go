package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"licmgr/internal/calendar"
	"licmgr/internal/config"
	"licmgr/internal/customers"
	apperrors "licmgr/internal/errors"
	"licmgr/internal/exporter"
	"licmgr/internal/files"
	"licmgr/internal/infrastructure"
	"licmgr/internal/license"
	"licmgr/internal/security"
	"licmgr/internal/services"
	"licmgr/internal/validation"
	"licmgr/pkg/contracts"
)

const AppName = contracts.AppName

// Options adjust how the application is assembled
type Options struct {
	// ConfigFile is an explicit YAML file; empty searches the default locations
	ConfigFile string
	// BaseDir overrides paths.base_dir
	BaseDir string
	// Console receives log output when logging.output is console or both
	Console io.Writer
	// Clock replaces time.Now for record dates and export names
	Clock func() time.Time
}

// Application is the composition root: it owns every long-lived component
// of one process run and releases them in Close.
type Application struct {
	Config    *config.Config
	Paths     *config.Paths
	Logger    *slog.Logger
	Telemetry *infrastructure.Telemetry

	License *services.LicenseService
	Health  *services.HealthService
	Session *services.Session
	Errors  *apperrors.Handler
	Machine *security.FingerprintManager

	logCloser io.Closer
}

// New loads configuration and wires the application
func New(opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.BaseDir != "" {
		cfg.Paths.BaseDir = opts.BaseDir
	}

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	logger, closer, err := infrastructure.NewLogger(cfg.Logging, paths.LogPath(clock()), console)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &Application{
		Config:    cfg,
		Paths:     paths,
		Logger:    logger,
		logCloser: closer,
	}

	infrastructure.WithComponent(logger, "app").Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("base_dir", paths.BaseDir))
	paths.LogPathResolution(logger)

	if err := a.initializeServices(clock); err != nil {
		_ = a.Close(context.Background())
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return a, nil
}

func (a *Application) initializeServices(clock func() time.Time) error {
	cfg, paths, logger := a.Config, a.Paths, a.Logger

	infrastructure.ServiceVersion = contracts.Version
	tel, err := infrastructure.InitTelemetry(cfg.Telemetry, paths, logger)
	if err != nil {
		return err
	}
	a.Telemetry = tel

	metrics, err := license.NewMetrics(tel.Meter())
	if err != nil {
		return fmt.Errorf("failed to create license metrics: %w", err)
	}

	deriver, err := license.NewDeriver(cfg.License.Salt,
		license.WithBackupSalt(cfg.License.BackupSalt),
		license.WithLogger(logger),
		license.WithMetrics(metrics))
	if err != nil {
		return err
	}

	hasher, err := security.HasherFor(cfg.Credentials.Scheme, security.ScryptParams{
		N: cfg.Credentials.ScryptN,
		R: cfg.Credentials.ScryptR,
		P: cfg.Credentials.ScryptP,
	})
	if err != nil {
		return err
	}

	fm := files.NewManager(paths.BaseDir, logger)
	credentials := security.NewCredentialStore(paths.CredentialFile,
		security.WithPasswordHasher(hasher),
		security.WithDefaultPassword(cfg.Credentials.DefaultPassword),
		security.WithCredentialLogger(logger),
		security.WithFileManager(fm))

	recordValidator := validation.NewRecordValidator()
	repo := customers.NewRepository(paths.CustomersFile,
		customers.WithFileManager(fm),
		customers.WithValidator(recordValidator),
		customers.WithLogger(logger))

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	stamper, err := calendar.New(cfg.Records.Calendar, loc)
	if err != nil {
		return err
	}

	discovery := files.NewDiscovery(paths.ExportsDir)
	a.Machine = security.NewFingerprintManager(nil, logger)

	a.License, err = services.NewLicenseService(services.Dependencies{
		Deriver:       deriver,
		Customers:     repo,
		Credentials:   credentials,
		Exporter:      exporter.New(fm, exporter.LabelsFor(cfg.Export.Language), logger),
		Exports:       discovery,
		Validator:     recordValidator,
		FileValidator: validation.NewFileValidator(logger),
		Stamper:       stamper,
		Machine:       a.Machine,
		Metrics:       metrics,
		Logger:        logger,
		ExportDir:     paths.ExportsDir,
		DefaultFormat: cfg.DefaultExportFormat(),
		Clock:         clock,
	})
	if err != nil {
		return err
	}

	a.Health = services.NewHealthService(contracts.Version, services.StorePaths{
		CustomersFile:  paths.CustomersFile,
		CredentialFile: paths.CredentialFile,
		ExportsDir:     paths.ExportsDir,
	}, repo, credentials, discovery, logger)

	a.Session = services.NewSession(a.License, cfg.Session.LoginInterval, cfg.Session.LoginBurst, logger)
	a.Errors = apperrors.NewHandler(logger, cfg.Logging.Level == "debug")
	return nil
}

// Close flushes telemetry and releases the log file
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	if a.Telemetry != nil {
		if err := a.Telemetry.Shutdown(ctx); err != nil {
			infrastructure.WithError(a.Logger, err).Warn("Telemetry shutdown incomplete")
			errs = append(errs, err)
		}
		a.Telemetry = nil
	}
	if a.logCloser != nil {
		a.Logger.Debug("Application stopped")
		if err := a.logCloser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close log file: %w", err))
		}
		a.logCloser = nil
	}
	return errors.Join(errs...)
}
