package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. DEVCLEAN_SCAN_MAX_DEPTH.
const EnvPrefix = "DEVCLEAN"

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// ScanConfig configures scan and clean.
type ScanConfig struct {
	Roots       []string `mapstructure:"roots"`
	MaxDepth    int      `mapstructure:"max_depth"`
	StaleMonths int      `mapstructure:"stale_months"`
	Format      string   `mapstructure:"format"`
	Exclude     []string `mapstructure:"exclude"`
}

// DuplicatesConfig configures the duplicate search.
type DuplicatesConfig struct {
	MaxDepth     int    `mapstructure:"max_depth"`
	MinSize      string `mapstructure:"min_size"`
	Keep         string `mapstructure:"keep"`
	DisplayLimit int    `mapstructure:"display_limit"`
	HashCache    bool   `mapstructure:"hash_cache"`
	CachePath    string `mapstructure:"cache_path"`
}

// OrganizeConfig configures organize.
type OrganizeConfig struct {
	Target   string        `mapstructure:"target"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// CleanConfig configures deletion.
type CleanConfig struct {
	// Pace is a delay between deletions, for watching progress.
	Pace time.Duration `mapstructure:"pace"`
}

// CacheConfig configures package-manager cache clearing.
type CacheConfig struct {
	Managers []string      `mapstructure:"managers"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Config represents the application configuration.
type Config struct {
	Scan       ScanConfig       `mapstructure:"scan"`
	Duplicates DuplicatesConfig `mapstructure:"duplicates"`
	Organize   OrganizeConfig   `mapstructure:"organize"`
	Clean      CleanConfig      `mapstructure:"clean"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Stats      struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"stats"`
	Manifest struct {
		Enabled       bool   `mapstructure:"enabled"`
		Path          string `mapstructure:"path"`
		RetentionDays int    `mapstructure:"retention_days"`
	} `mapstructure:"manifest"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Setup points v at the config file and environment and installs defaults.
// An empty file searches ConfigDir for config.yaml.
func Setup(v *viper.Viper, file string) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := ConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
}

// SetDefaults installs every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("scan.roots", []string{})
	v.SetDefault("scan.max_depth", DefaultMaxDepth)
	v.SetDefault("scan.stale_months", DefaultStaleMonths)
	v.SetDefault("scan.format", DefaultFormat)
	v.SetDefault("scan.exclude", []string{})

	v.SetDefault("duplicates.max_depth", DefaultDuplicateDepth)
	v.SetDefault("duplicates.min_size", DefaultDuplicateMinSize)
	v.SetDefault("duplicates.keep", DefaultKeep)
	v.SetDefault("duplicates.display_limit", DefaultDisplayLimit)
	v.SetDefault("duplicates.hash_cache", false)
	v.SetDefault("duplicates.cache_path", "")

	v.SetDefault("organize.target", DefaultOrganizeTarget)
	v.SetDefault("organize.debounce", DefaultOrganizeDebounce)

	v.SetDefault("clean.pace", time.Duration(0))

	v.SetDefault("cache.managers", DefaultManagers)
	v.SetDefault("cache.timeout", DefaultCacheTimeout)

	v.SetDefault("stats.path", "")

	v.SetDefault("manifest.enabled", true)
	v.SetDefault("manifest.path", "")
	v.SetDefault("manifest.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.rotation.max_size", "5MB")
	v.SetDefault("logging.rotation.max_age", 14)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.daily", false)
	v.SetDefault("logging.components", map[string]string{})
}

// Read loads the config file into v. A missing file is not an error.
func Read(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Decode unmarshals v into a Config and resolves paths: ~ is expanded and
// empty state paths get their XDG defaults.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	paths := []*string{
		&cfg.Organize.Target,
		&cfg.Stats.Path,
		&cfg.Manifest.Path,
		&cfg.Logging.Path,
		&cfg.Duplicates.CachePath,
	}
	for _, p := range paths {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return nil, err
		}
		*p = expanded
	}
	for i, r := range cfg.Scan.Roots {
		expanded, err := ExpandPath(r)
		if err != nil {
			return nil, err
		}
		cfg.Scan.Roots[i] = expanded
	}

	if cfg.Stats.Path == "" {
		cfg.Stats.Path = filepath.Join(DataDir(), "stats.json")
	}
	if cfg.Manifest.Path == "" {
		cfg.Manifest.Path = filepath.Join(DataDir(), "manifests")
	}
	if cfg.Logging.Path == "" {
		cfg.Logging.Path = DefaultLogPath()
	}
	if cfg.Duplicates.CachePath == "" {
		cfg.Duplicates.CachePath = filepath.Join(CacheDir(), "digests")
	}
	return &cfg, nil
}

// Load reads configuration from the default locations and the environment.
func Load() (*Config, error) {
	v := viper.New()
	Setup(v, "")
	if err := Read(v); err != nil {
		return nil, err
	}
	return Decode(v)
}

// ConfigDir returns $XDG_CONFIG_HOME/devclean, or ~/.config/devclean when
// XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "devclean"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "devclean"), nil
}

// ConfigFile returns the default config file path.
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DataDir returns $XDG_DATA_HOME/devclean for stats and manifests.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "devclean")
}

// StateDir returns $XDG_STATE_HOME/devclean for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "devclean")
}

// CacheDir returns $XDG_CACHE_HOME/devclean for the digest memo.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, "devclean")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), "devclean.log")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}

// WriteDefault writes a commented default config file to path unless one
// already exists. It reports whether a file was written.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	content := fmt.Sprintf(`# devclean configuration

scan:
  # Directories to scan when none are given. Empty means the usual
  # development folders under your home directory.
  roots: []
  # Levels below each root to descend.
  max_depth: %d
  # node_modules whose project folder is older than this are stale.
  stale_months: %d
  # Output format: pretty, plain, json, yaml, paths, null
  format: %s
  # Glob patterns of paths to hide from reports.
  exclude: []

duplicates:
  max_depth: %d
  # Files at or below this size are ignored.
  min_size: %s
  # Which copy survives: first (found first) or oldest (earliest mtime).
  keep: %s
  # Sets shown in pretty/plain output.
  display_limit: %d
  # Remember digests of unchanged files between runs.
  hash_cache: false

organize:
  target: %s
  debounce: %s

clean:
  # Delay between deletions, e.g. 50ms. 0 deletes as fast as possible.
  pace: 0s

cache:
  managers: [npm, yarn, pnpm]
  timeout: %s

manifest:
  enabled: true
  retention_days: %d

logging:
  # debug, info, warn, error
  level: info
  # Empty means $XDG_STATE_HOME/devclean/devclean.log
  path: ""
  rotation:
    max_size: 5MB
    max_age: 14
    max_backups: 3
    daily: false
  components: {}
`, DefaultMaxDepth, DefaultStaleMonths, DefaultFormat,
		DefaultDuplicateDepth, DefaultDuplicateMinSize, DefaultKeep, DefaultDisplayLimit,
		DefaultOrganizeTarget, DefaultOrganizeDebounce, DefaultCacheTimeout, DefaultRetentionDays)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("failed to write default config: %w", err)
	}
	return true, nil
}
