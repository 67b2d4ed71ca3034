// Package settings manages persistent operator defaults for the cfgnet CLI.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

// EnvPath overrides the settings file location.
const EnvPath = "CFGNET_SETTINGS"

// Settings holds persistent operator preferences. Zero values mean unset.
type Settings struct {
	// User is the SSH user for pool entries without "user@".
	User string
	// Concurrency is the worker count.
	Concurrency int
	// Timeout bounds connect plus authentication per host.
	Timeout time.Duration
	// DNS4 replaces the built-in IPv4 DNS defaults.
	DNS4 string
	// DNS6 replaces the built-in IPv6 DNS defaults.
	DNS6 string
	// QueueSize is the capacity of the pipeline channels.
	QueueSize int
	// AuditLog is the journal path; "-" disables journalling.
	AuditLog string
}

// Key names in the settings file.
const (
	KeyUser        = "user"
	KeyConcurrency = "concurrency"
	KeyTimeout     = "timeout"
	KeyDNS4        = "dns4"
	KeyDNS6        = "dns6"
	KeyQueueSize   = "queue_size"
	KeyAuditLog    = "audit_log"
)

// Keys lists the recognised keys in display order.
var Keys = []string{KeyUser, KeyConcurrency, KeyTimeout, KeyDNS4, KeyDNS6, KeyQueueSize, KeyAuditLog}

// DefaultSettingsPath returns $CFGNET_SETTINGS, else ~/.cfgnet/settings.ini.
func DefaultSettingsPath() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "cfgnet_settings.ini"
	}
	return filepath.Join(home, ".cfgnet", "settings.ini")
}

// DefaultAuditLogPath is audit.log next to the settings file.
func DefaultAuditLogPath() string {
	return filepath.Join(filepath.Dir(DefaultSettingsPath()), "audit.log")
}

// AuditLogPath resolves the journal path: the setting if present, else the
// default. It returns "" when journalling is disabled.
func (s *Settings) AuditLogPath() string {
	switch s.AuditLog {
	case "-":
		return ""
	case "":
		return DefaultAuditLogPath()
	default:
		return s.AuditLog
	}
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path. A missing file yields
// empty settings.
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	cfg, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, path)
	if err != nil {
		return nil, fmt.Errorf("settings %s: %w", path, err)
	}
	section := cfg.Section("")
	for _, k := range Keys {
		if !section.HasKey(k) {
			continue
		}
		if err := s.Set(k, section.Key(k).String()); err != nil {
			return nil, fmt.Errorf("settings %s: %w", path, err)
		}
	}
	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes the set keys to path.
func (s *Settings) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	cfg := ini.Empty()
	section := cfg.Section("")
	for _, k := range Keys {
		v, _ := s.Get(k)
		if v == "" {
			continue
		}
		if _, err := section.NewKey(k, v); err != nil {
			return fmt.Errorf("settings key %s: %w", k, err)
		}
	}
	return cfg.SaveTo(path)
}

// Set parses value into key. An empty value unsets the key.
func (s *Settings) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch strings.ToLower(key) {
	case KeyUser:
		s.User = value
	case KeyDNS4:
		s.DNS4 = value
	case KeyDNS6:
		s.DNS6 = value
	case KeyAuditLog:
		s.AuditLog = value
	case KeyConcurrency:
		n, err := parsePositive(key, value)
		if err != nil {
			return err
		}
		s.Concurrency = n
	case KeyQueueSize:
		n, err := parsePositive(key, value)
		if err != nil {
			return err
		}
		s.QueueSize = n
	case KeyTimeout:
		if value == "" {
			s.Timeout = 0
			return nil
		}
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("%s: invalid duration %q", key, value)
		}
		s.Timeout = d
	default:
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys, ", "))
	}
	return nil
}

// Get returns the value of key as it would be written, or "" when unset.
func (s *Settings) Get(key string) (string, error) {
	switch strings.ToLower(key) {
	case KeyUser:
		return s.User, nil
	case KeyDNS4:
		return s.DNS4, nil
	case KeyDNS6:
		return s.DNS6, nil
	case KeyAuditLog:
		return s.AuditLog, nil
	case KeyConcurrency:
		return itoaSet(s.Concurrency), nil
	case KeyQueueSize:
		return itoaSet(s.QueueSize), nil
	case KeyTimeout:
		if s.Timeout == 0 {
			return "", nil
		}
		return s.Timeout.String(), nil
	default:
		return "", fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys, ", "))
	}
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}

func parsePositive(key, value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s: must be a positive integer, got %q", key, value)
	}
	return n, nil
}

func itoaSet(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
