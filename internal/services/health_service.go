package services

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"time"
)

// Health states
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusMissing  = "missing"
	StatusError    = "error"
)

// StorePaths lists the files a HealthService inspects
type StorePaths struct {
	CustomersFile  string
	CredentialFile string
	ExportsDir     string
}

// HealthService reports the state of the local stores for the status command
type HealthService struct {
	version     string
	paths       StorePaths
	customers   CustomerStore
	credentials CredentialStore
	exports     ExportFinder
	logger      *slog.Logger
}

// HealthStatus represents the overall health report
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]string        `json:"runtime"`
	Services  map[string]ServiceHealth `json:"services"`
}

// ServiceHealth represents one inspected store
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Path    string `json:"path,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version string, paths StorePaths, customers CustomerStore, credentials CredentialStore, exports ExportFinder, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:     version,
		paths:       paths,
		customers:   customers,
		credentials: credentials,
		exports:     exports,
		logger:      logger.With(slog.String("service", "health")),
	}
}

// Check inspects the credential file, the customer store and the exports
// directory. The overall status is the worst individual status.
func (hs *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]string{
			"go_version": runtime.Version(),
			"os":         runtime.GOOS,
			"arch":       runtime.GOARCH,
		},
		Services: map[string]ServiceHealth{
			"credentials": hs.checkCredentials(),
			"customers":   hs.checkCustomers(ctx),
			"exports":     hs.checkExports(),
		},
	}

	for _, sh := range status.Services {
		if rank(sh.Status) > rank(status.Status) {
			status.Status = sh.Status
		}
	}
	if status.Status == StatusMissing {
		status.Status = StatusDegraded
	}

	hs.logger.DebugContext(ctx, "Health check completed", slog.String("status", status.Status))
	return status
}

func (hs *HealthService) checkCredentials() ServiceHealth {
	sh := ServiceHealth{Path: hs.paths.CredentialFile}
	if _, err := os.Stat(hs.paths.CredentialFile); err != nil {
		sh.Status = StatusMissing
		sh.Message = "no administrator password set; run init"
		return sh
	}

	scheme := hs.credentials.Scheme()
	if scheme == "" {
		sh.Status = StatusError
		sh.Message = "credential file is in an unknown format"
		return sh
	}
	sh.Status = StatusOK
	sh.Message = "scheme " + scheme
	return sh
}

func (hs *HealthService) checkCustomers(ctx context.Context) ServiceHealth {
	sh := ServiceHealth{Path: hs.paths.CustomersFile}
	if _, err := os.Stat(hs.paths.CustomersFile); os.IsNotExist(err) {
		sh.Status = StatusOK
		sh.Message = "no records yet"
		return sh
	}

	records, err := hs.customers.Load(ctx)
	if err != nil {
		sh.Status = StatusError
		sh.Message = err.Error()
		return sh
	}
	sh.Status = StatusOK
	sh.Message = pluralize(len(records), "record")
	return sh
}

func (hs *HealthService) checkExports() ServiceHealth {
	sh := ServiceHealth{Path: hs.paths.ExportsDir}
	if hs.exports == nil {
		sh.Status = StatusOK
		return sh
	}
	found, err := hs.exports.FindExports()
	if err != nil {
		sh.Status = StatusError
		sh.Message = err.Error()
		return sh
	}
	sh.Status = StatusOK
	sh.Message = pluralize(len(found), "report")
	return sh
}

func rank(status string) int {
	switch status {
	case StatusError:
		return 3
	case StatusDegraded:
		return 2
	case StatusMissing:
		return 1
	default:
		return 0
	}
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
