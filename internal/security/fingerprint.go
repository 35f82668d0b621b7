package security

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

// DeviceFingerprint describes the host factors behind a hardware id
type DeviceFingerprint struct {
	HardwareID  string    `json:"hardware_id"`
	Hostname    string    `json:"hostname"`
	MACAddress  string    `json:"mac_address"`
	CPUID       string    `json:"cpu_id"`
	OS          string    `json:"os"`
	Platform    string    `json:"platform"`
	GeneratedAt time.Time `json:"generated_at"`
}

// HostProbe reads host identification factors
type HostProbe interface {
	MACAddress() (string, error)
	Hostname() (string, error)
	CPUID() (string, error)
}

// FingerprintManager derives this machine's 16 character hardware id, the
// value customers send in to request an access code.
type FingerprintManager struct {
	probe         HostProbe
	logger        *slog.Logger
	cache         *DeviceFingerprint
	cacheMutex    sync.RWMutex
	cacheExpiry   time.Time
	cacheDuration time.Duration
}

// NewFingerprintManager creates a fingerprint manager. A nil probe reads the real host.
func NewFingerprintManager(probe HostProbe, logger *slog.Logger) *FingerprintManager {
	if probe == nil {
		probe = systemProbe{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FingerprintManager{
		probe:         probe,
		logger:        logger.With(slog.String("component", "fingerprint")),
		cacheDuration: time.Hour,
	}
}

// GenerateFingerprint combines host factors into a hardware id. Unavailable
// factors are replaced with fixed placeholders so the result stays stable.
func (fm *FingerprintManager) GenerateFingerprint() (*DeviceFingerprint, error) {
	fm.cacheMutex.RLock()
	if fm.cache != nil && time.Now().Before(fm.cacheExpiry) {
		cached := *fm.cache
		fm.cacheMutex.RUnlock()
		return &cached, nil
	}
	fm.cacheMutex.RUnlock()

	start := time.Now()

	macAddr, err := fm.probe.MACAddress()
	if err != nil {
		macAddr = "unknown-mac"
		fm.logger.Warn("Failed to get MAC address, using fallback", slog.String("error", err.Error()))
	}
	hostname, err := fm.probe.Hostname()
	if err != nil {
		hostname = "unknown-host"
		fm.logger.Warn("Failed to get hostname, using fallback", slog.String("error", err.Error()))
	}
	cpuID, err := fm.probe.CPUID()
	if err != nil {
		cpuID = "unknown-cpu"
		fm.logger.Warn("Failed to get CPU ID, using fallback", slog.String("error", err.Error()))
	}

	factors := strings.Join([]string{macAddr, hostname, cpuID, runtime.GOOS, runtime.GOARCH}, "|")
	sum := sha256.Sum256([]byte(factors))

	fp := &DeviceFingerprint{
		HardwareID:  strings.ToUpper(hex.EncodeToString(sum[:8])),
		Hostname:    hostname,
		MACAddress:  macAddr,
		CPUID:       cpuID,
		OS:          runtime.GOOS,
		Platform:    runtime.GOARCH,
		GeneratedAt: time.Now(),
	}

	fm.cacheMutex.Lock()
	fm.cache = fp
	fm.cacheExpiry = time.Now().Add(fm.cacheDuration)
	fm.cacheMutex.Unlock()

	fm.logger.Debug("Hardware id generated",
		slog.String("hardware_id", fp.HardwareID),
		slog.String("hostname", hostname),
		slog.Duration("generation_time", time.Since(start)))

	out := *fp
	return &out, nil
}

// HardwareID returns only the 16 character id
func (fm *FingerprintManager) HardwareID() (string, error) {
	fp, err := fm.GenerateFingerprint()
	if err != nil {
		return "", err
	}
	return fp.HardwareID, nil
}

// ClearCache forces the next call to re-read the host
func (fm *FingerprintManager) ClearCache() {
	fm.cacheMutex.Lock()
	defer fm.cacheMutex.Unlock()

	fm.cache = nil
	fm.cacheExpiry = time.Time{}
}

type systemProbe struct{}

// MACAddress returns the first non-loopback interface address, falling back to any interface
func (systemProbe) MACAddress() (string, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("failed to get network interfaces: %w", err)
	}

	pick := func(skipInactive bool) string {
		for _, iface := range interfaces {
			if skipInactive && (iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0) {
				continue
			}
			if mac := iface.HardwareAddr.String(); mac != "" && mac != "00:00:00:00:00:00" {
				return mac
			}
		}
		return ""
	}

	if mac := pick(true); mac != "" {
		return mac, nil
	}
	if mac := pick(false); mac != "" {
		return mac, nil
	}
	return "", fmt.Errorf("no valid MAC address found")
}

func (systemProbe) Hostname() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("failed to get hostname: %w", err)
	}
	hostname = strings.ToLower(strings.TrimSpace(hostname))
	if hostname == "" {
		return "", fmt.Errorf("hostname is empty")
	}
	return hostname, nil
}

func (systemProbe) CPUID() (string, error) {
	var raw string
	switch runtime.GOOS {
	case "windows":
		raw = os.Getenv("PROCESSOR_IDENTIFIER")
		if raw == "" {
			raw = "windows-" + runtime.GOARCH + "-" + os.Getenv("PROCESSOR_ARCHITECTURE")
		}
	case "linux":
		raw = "linux-" + runtime.GOARCH
		if data, err := os.ReadFile("/proc/cpuinfo"); err == nil {
			for _, line := range strings.Split(string(data), "\n") {
				if strings.HasPrefix(line, "model name") || strings.HasPrefix(line, "cpu family") {
					raw = line
					break
				}
			}
		}
	default:
		raw = runtime.GOOS + "-" + runtime.GOARCH
	}

	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:8]), nil
}
