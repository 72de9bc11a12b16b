package startup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"image-tagger/internal/logging"
	"image-tagger/internal/mediatypes"
	"image-tagger/internal/persist"
	"image-tagger/internal/watcher"
)

// ConfigEnv names the environment variable pointing at an optional YAML file.
const ConfigEnv = "TAGGER_CONFIG"

// Config holds all application configuration
type Config struct {
	Dir             string        `yaml:"dir"`
	ImageExtensions string        `yaml:"image_extensions"`
	SaveThrottle    time.Duration `yaml:"save_throttle"`
	Port            string        `yaml:"port"`
	MetricsPort     string        `yaml:"metrics_port"`
	MetricsEnabled  bool          `yaml:"metrics_enabled"`
	CatalogPath     string        `yaml:"catalog_path"`
	Watch           bool          `yaml:"watch"`
	WatchDebounce   time.Duration `yaml:"watch_debounce"`
	LoadWorkers     int           `yaml:"load_workers"`
	ProbeDimensions bool          `yaml:"probe_dimensions"`
	LogLevel        string        `yaml:"log_level"`
	LogHealthChecks bool          `yaml:"log_health_checks"`

	// Source is the YAML file the configuration was read from, if any.
	Source string `yaml:"-"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Dir:             ".",
		ImageExtensions: mediatypes.DefaultExtension,
		SaveThrottle:    persist.DefaultThrottle,
		Port:            "8080",
		MetricsPort:     "9090",
		MetricsEnabled:  true,
		WatchDebounce:   watcher.DefaultDebounce,
		LogLevel:        "info",
		LogHealthChecks: true,
	}
}

// Extensions returns the parsed image extension set.
func (c *Config) Extensions() mediatypes.ExtensionSet {
	return mediatypes.ParseExtensions(c.ImageExtensions)
}

// LoadConfig builds the configuration from defaults, then the YAML file at
// path (or $TAGGER_CONFIG when path is empty), then environment variables.
// A missing file named only by $TAGGER_CONFIG is an error, as is an explicit
// path that cannot be read.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	c.Source = path
	return nil
}

func (c *Config) applyEnv() {
	c.Dir = getEnv("TAGGER_DIR", c.Dir)
	c.ImageExtensions = getEnv("IMAGE_EXTENSIONS", c.ImageExtensions)
	c.SaveThrottle = getEnvDuration("SAVE_THROTTLE", c.SaveThrottle)
	c.Port = getEnv("PORT", c.Port)
	c.MetricsPort = getEnv("METRICS_PORT", c.MetricsPort)
	c.MetricsEnabled = getEnvBool("METRICS_ENABLED", c.MetricsEnabled)
	c.CatalogPath = getEnv("CATALOG_PATH", c.CatalogPath)
	c.Watch = getEnvBool("WATCH", c.Watch)
	c.WatchDebounce = getEnvDuration("WATCH_DEBOUNCE", c.WatchDebounce)
	c.LoadWorkers = getEnvInt("LOAD_WORKERS", c.LoadWorkers)
	c.ProbeDimensions = getEnvBool("PROBE_DIMENSIONS", c.ProbeDimensions)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogHealthChecks = getEnvBool("LOG_HEALTH_CHECKS", c.LogHealthChecks)
}

// Validate resolves the image directory and prepares the catalog directory.
func (c *Config) Validate() error {
	dir, err := filepath.Abs(c.Dir)
	if err != nil {
		return fmt.Errorf("failed to resolve image directory path: %w", err)
	}
	c.Dir = dir

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("image directory %s does not exist: %w", dir, err)
		}
		return fmt.Errorf("failed to stat image directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("image directory %s is not a directory", dir)
	}

	if c.CatalogPath != "" {
		catalogPath, err := filepath.Abs(c.CatalogPath)
		if err != nil {
			return fmt.Errorf("failed to resolve catalog path: %w", err)
		}
		c.CatalogPath = catalogPath

		catalogDir := filepath.Dir(catalogPath)
		if err := ensureDirectory(catalogDir, "catalog"); err != nil {
			return fmt.Errorf("catalog directory error: %w", err)
		}
		if err := testWriteAccess(catalogDir); err != nil {
			return fmt.Errorf("catalog directory is not writable: %w", err)
		}
	}

	return nil
}

// LogConfig prints the effective configuration.
func (c *Config) LogConfig() {
	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	if c.Source != "" {
		logging.Info("  Config file:         %s", c.Source)
	}
	logging.Info("  TAGGER_DIR:          %s", c.Dir)
	logging.Info("  IMAGE_EXTENSIONS:    %s", c.Extensions())
	logging.Info("  SAVE_THROTTLE:       %s", throttleString(c.SaveThrottle))
	logging.Info("  PORT:                %s", c.Port)
	logging.Info("  METRICS_PORT:        %s", c.MetricsPort)
	logging.Info("  METRICS_ENABLED:     %v", c.MetricsEnabled)
	logging.Info("  CATALOG_PATH:        %s", valueOrNone(c.CatalogPath))
	logging.Info("  WATCH:               %v", c.Watch)
	logging.Info("  WATCH_DEBOUNCE:      %v", c.WatchDebounce)
	logging.Info("  LOAD_WORKERS:        %s", workersString(c.LoadWorkers))
	logging.Info("  PROBE_DIMENSIONS:    %v", c.ProbeDimensions)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())
	logging.Info("  LOG_HEALTH_CHECKS:   %v", c.LogHealthChecks)
	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Catalog:     %s", enabledString(c.CatalogPath != ""))
	logging.Info("    Watcher:     %s", enabledString(c.Watch))
	logging.Info("    Metrics:     %s", enabledString(c.MetricsEnabled))
}

func valueOrNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func throttleString(d time.Duration) string {
	if d < 0 {
		return "disabled"
	}
	return d.String()
}

func workersString(n int) string {
	if n <= 0 {
		return "auto"
	}
	return strconv.Itoa(n)
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("Invalid duration for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
