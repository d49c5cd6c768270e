package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// NOTE: This file provides the configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions.

// Defaults applied by DefaultConfig and Normalize.
const (
	DefaultListen        = "127.0.0.1:8080"
	DefaultCatalog       = "./data/course_records.txt"
	DefaultCacheDir      = "./var/catalog-cache"
	DefaultExportPath    = "./data/schedule.txt"
	DefaultScheduleTitle = "My Schedule"
	DefaultTimezone      = "Local"
	DefaultTermWeeks     = 16
	DefaultLogLevel      = "info"

	// TermStartLayout is the date layout of TermStart.
	TermStartLayout = "2006-01-02"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Catalog is the course catalog source: a file path or an http(s) URL.
	Catalog string `yaml:"catalog" json:"catalog"`

	// CatalogCacheDir stores conditional-GET metadata and bodies for remote
	// catalogs.
	CatalogCacheDir string `yaml:"catalog_cache_dir" json:"catalog_cache_dir"`

	// ExportPath is where the schedule record file is written.
	ExportPath string `yaml:"export_path" json:"export_path"`

	// ExportCron is a cron-style schedule (e.g. "*/15 * * * *") for
	// periodic export. Empty disables periodic export.
	ExportCron string `yaml:"export_cron" json:"export_cron"`

	// ScheduleTitle is the initial schedule title.
	ScheduleTitle string `yaml:"schedule_title" json:"schedule_title"`

	// Timezone is the IANA zone used when anchoring the weekly schedule to
	// dates for ICS export and occurrence listing. "Local" uses time.Local.
	Timezone string `yaml:"timezone" json:"timezone"`

	// TermStart (YYYY-MM-DD) is the first date of the term used for ICS
	// export. Empty means the Monday of the current week.
	TermStart string `yaml:"term_start" json:"term_start"`

	// TermWeeks is the number of weeks exported recurrences run for.
	TermWeeks int `yaml:"term_weeks" json:"term_weeks"`

	// LogLevel is one of "debug", "info", "error".
	LogLevel string `yaml:"log_level" json:"log_level"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:          DefaultListen,
		Catalog:         DefaultCatalog,
		CatalogCacheDir: DefaultCacheDir,
		ExportPath:      DefaultExportPath,
		ExportCron:      "",
		ScheduleTitle:   DefaultScheduleTitle,
		Timezone:        DefaultTimezone,
		TermWeeks:       DefaultTermWeeks,
		LogLevel:        DefaultLogLevel,
		BasicAuth:       nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Catalog == "" {
		c.Catalog = DefaultCatalog
	}
	if c.CatalogCacheDir == "" {
		c.CatalogCacheDir = DefaultCacheDir
	}
	if c.ExportPath == "" {
		c.ExportPath = DefaultExportPath
	}
	if c.ScheduleTitle == "" {
		c.ScheduleTitle = DefaultScheduleTitle
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.TermWeeks <= 0 {
		c.TermWeeks = DefaultTermWeeks
	}
	switch c.LogLevel {
	case "debug", "info", "error":
		// ok
	default:
		c.LogLevel = DefaultLogLevel
	}
	// An unparsable term start is dropped rather than failing every export.
	if c.TermStart != "" {
		if _, err := time.Parse(TermStartLayout, c.TermStart); err != nil {
			c.TermStart = ""
		}
	}
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == DefaultTimezone {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// TermStartDate returns TermStart at midnight in loc. When unset it returns
// the Monday of the week containing now.
func (c *Config) TermStartDate(now time.Time, loc *time.Location) time.Time {
	if c.TermStart != "" {
		if t, err := time.ParseInLocation(TermStartLayout, c.TermStart, loc); err == nil {
			return t
		}
	}
	now = now.In(loc)
	offset := (int(now.Weekday()) + 6) % 7 // days since Monday
	return time.Date(now.Year(), now.Month(), now.Day()-offset, 0, 0, 0, 0, loc)
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".schedcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
