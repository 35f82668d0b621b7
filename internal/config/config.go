package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"licmgr/pkg/contracts/domain"
)

// EnvPrefix namespaces every environment override, e.g. LICMGR_LOGGING_LEVEL
const EnvPrefix = "LICMGR"

// Config represents the complete application configuration
type Config struct {
	Logging     LoggingConfig     `yaml:"logging" envconfig:"LOGGING"`
	Paths       PathsConfig       `yaml:"paths" envconfig:"PATHS"`
	License     LicenseConfig     `yaml:"license" envconfig:"LICENSE"`
	Credentials CredentialsConfig `yaml:"credentials" envconfig:"CREDENTIALS"`
	Records     RecordsConfig     `yaml:"records" envconfig:"RECORDS"`
	Export      ExportConfig      `yaml:"export" envconfig:"EXPORT"`
	Session     SessionConfig     `yaml:"session" envconfig:"SESSION"`
	Telemetry   TelemetryConfig   `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Output string `yaml:"output" envconfig:"OUTPUT"` // file, console (stderr) or both
}

// PathsConfig contains file system locations. Relative entries resolve
// against BaseDir, which defaults to the executable directory.
type PathsConfig struct {
	BaseDir        string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir        string `yaml:"data_dir" envconfig:"DATA_DIR"`
	LogsDir        string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
	ExportsDir     string `yaml:"exports_dir" envconfig:"EXPORTS_DIR"`
	CustomersFile  string `yaml:"customers_file" envconfig:"CUSTOMERS_FILE"`
	CredentialFile string `yaml:"credential_file" envconfig:"CREDENTIAL_FILE"`
}

// LicenseConfig holds the derivation secrets. Changing either invalidates
// every access code issued under the old value.
type LicenseConfig struct {
	Salt       string `yaml:"salt" envconfig:"SALT"`
	BackupSalt string `yaml:"backup_salt" envconfig:"BACKUP_SALT"`
}

// CredentialsConfig configures the administrator password store
type CredentialsConfig struct {
	Scheme          string `yaml:"scheme" envconfig:"SCHEME"` // sha256 or scrypt
	DefaultPassword string `yaml:"default_password" envconfig:"DEFAULT_PASSWORD"`
	ScryptN         int    `yaml:"scrypt_n" envconfig:"SCRYPT_N"`
	ScryptR         int    `yaml:"scrypt_r" envconfig:"SCRYPT_R"`
	ScryptP         int    `yaml:"scrypt_p" envconfig:"SCRYPT_P"`
}

// RecordsConfig controls how creation dates are stamped
type RecordsConfig struct {
	Calendar string `yaml:"calendar" envconfig:"CALENDAR"` // jalali or gregorian
	Timezone string `yaml:"timezone" envconfig:"TIMEZONE"`
}

// ExportConfig sets export defaults
type ExportConfig struct {
	Language string `yaml:"language" envconfig:"LANGUAGE"` // en or fa
	Format   string `yaml:"format" envconfig:"FORMAT"`
}

// SessionConfig throttles failed logins in the interactive shell
type SessionConfig struct {
	LoginInterval time.Duration `yaml:"login_interval" envconfig:"LOGIN_INTERVAL"`
	LoginBurst    int           `yaml:"login_burst" envconfig:"LOGIN_BURST"`
}

// TelemetryConfig controls metrics and trace output
type TelemetryConfig struct {
	MetricsEnabled bool    `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	MetricsFile    string  `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	TracingEnabled bool    `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED"`
	TracesFile     string  `yaml:"traces_file" envconfig:"TRACES_FILE"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Output: "file",
		},
		Paths: PathsConfig{
			DataDir:        "license_data",
			LogsDir:        "logs",
			CustomersFile:  "customers.json",
			CredentialFile: "admin_pass.hash",
		},
		License: LicenseConfig{
			Salt:       "SIEVE_ANALYSIS_APP_SECURE_SALT_2024",
			BackupSalt: "BACKUP_SALT",
		},
		Credentials: CredentialsConfig{
			Scheme:          "sha256",
			DefaultPassword: "admin123",
			ScryptN:         32768,
			ScryptR:         8,
			ScryptP:         1,
		},
		Records: RecordsConfig{
			Calendar: "jalali",
			Timezone: "Local",
		},
		Export: ExportConfig{
			Language: "en",
			Format:   "txt",
		},
		Session: SessionConfig{
			LoginInterval: 2 * time.Second,
			LoginBurst:    3,
		},
		Telemetry: TelemetryConfig{
			MetricsFile: "logs/licmgr.prom",
			TracesFile:  "logs/traces.jsonl",
			SampleRatio: 1.0,
		},
	}
}

// Load builds the configuration from defaults, then the YAML file, then
// LICMGR_* environment variables. An empty configFile searches the usual
// locations and continues without a file when none exists.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	explicit := configFile != ""
	if !explicit {
		configFile = findConfigFile()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file at filePath onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

// findConfigFile returns the first existing config file location
func findConfigFile() string {
	locations := []string{
		"licmgr.yaml",
		"configs/licmgr.yaml",
	}
	if exeDir, err := ExecutableDir(); err == nil {
		locations = append(locations, filepath.Join(exeDir, "licmgr.yaml"))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// validate normalizes values and rejects unusable ones
func (c *Config) validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level %q", c.Logging.Level)
	}

	c.Logging.Output = strings.ToLower(c.Logging.Output)
	switch c.Logging.Output {
	case "file", "console", "both":
	default:
		return fmt.Errorf("invalid logging output %q (want file, console or both)", c.Logging.Output)
	}

	if c.License.Salt == "" || c.License.BackupSalt == "" {
		return fmt.Errorf("license salts must not be empty")
	}

	c.Credentials.Scheme = strings.ToLower(c.Credentials.Scheme)
	switch c.Credentials.Scheme {
	case "sha256", "scrypt":
	default:
		return fmt.Errorf("invalid credential scheme %q (want sha256 or scrypt)", c.Credentials.Scheme)
	}
	if c.Credentials.DefaultPassword == "" {
		return fmt.Errorf("default password must not be empty")
	}
	if n := c.Credentials.ScryptN; n <= 1 || n&(n-1) != 0 {
		return fmt.Errorf("scrypt N must be a power of two greater than 1, got %d", n)
	}
	if c.Credentials.ScryptR <= 0 || c.Credentials.ScryptP <= 0 {
		return fmt.Errorf("scrypt r and p must be positive")
	}

	c.Records.Calendar = strings.ToLower(c.Records.Calendar)
	switch c.Records.Calendar {
	case "jalali", "gregorian":
	default:
		return fmt.Errorf("invalid calendar %q (want jalali or gregorian)", c.Records.Calendar)
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	c.Export.Language = strings.ToLower(c.Export.Language)
	if c.Export.Language != "en" && c.Export.Language != "fa" {
		return fmt.Errorf("invalid export language %q (want en or fa)", c.Export.Language)
	}
	format, err := domain.ParseExportFormat(c.Export.Format)
	if err != nil {
		return err
	}
	c.Export.Format = string(format)

	if c.Session.LoginInterval <= 0 {
		return fmt.Errorf("session login interval must be positive")
	}
	if c.Session.LoginBurst < 1 {
		return fmt.Errorf("session login burst must be at least 1")
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry sample ratio must be between 0 and 1, got %v", c.Telemetry.SampleRatio)
	}

	return nil
}

// Location returns the timezone used for creation dates
func (c *Config) Location() (*time.Location, error) {
	switch c.Records.Timezone {
	case "", "Local", "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Records.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid records timezone %q: %w", c.Records.Timezone, err)
	}
	return loc, nil
}

// DefaultExportFormat returns the configured export format
func (c *Config) DefaultExportFormat() domain.ExportFormat {
	return domain.ExportFormat(c.Export.Format)
}
