// Package config loads proddash settings from ~/.proddash/config.yaml,
// PRODDASH_* environment variables and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultBaseURL         = "http://localhost:3000/api"
	DefaultTimeout         = 15 * time.Second
	DefaultPageSize        = 10
	DefaultMinLatency      = 1500 * time.Millisecond
	DefaultLocale          = "pt-BR"
	DefaultDays            = 7
	DefaultCacheTTLSeconds = 300
	DefaultCacheMaxSizeMB  = 50
	DefaultRefreshInterval = 5 * time.Minute
	DefaultRefreshBuffer   = 10 * time.Minute

	configDirName  = ".proddash"
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "PRODDASH"
	// EnvConfigDir overrides the configuration directory.
	EnvConfigDir = "PRODDASH_HOME"
)

// Config is the full proddash configuration.
type Config struct {
	API       APIConfig       `yaml:"api"       mapstructure:"api"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Cache     CacheConfig     `yaml:"cache"     mapstructure:"cache"`
	Logging   LoggingConfig   `yaml:"logging"   mapstructure:"logging"`
	Auth      AuthConfig      `yaml:"auth"      mapstructure:"auth"`
}

// APIConfig points at the production backend.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout"  mapstructure:"timeout"`
}

// DashboardConfig controls table and loading behavior.
type DashboardConfig struct {
	PageSize    int           `yaml:"page_size"    mapstructure:"page_size"`
	MinLatency  time.Duration `yaml:"min_latency"  mapstructure:"min_latency"`
	Locale      string        `yaml:"locale"       mapstructure:"locale"`
	DefaultDays int           `yaml:"default_days" mapstructure:"default_days"`
}

// CacheConfig controls the on-disk API response cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"     mapstructure:"enabled"`
	TTLSeconds int    `yaml:"ttl_seconds" mapstructure:"ttl_seconds"`
	Directory  string `yaml:"directory"   mapstructure:"directory"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
}

// LoggingConfig controls log level, format and destination.
type LoggingConfig struct {
	Level  string `yaml:"level"  mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	File   string `yaml:"file"   mapstructure:"file"`
}

// AuthConfig controls the stored session and token refresh.
type AuthConfig struct {
	SessionFile     string        `yaml:"session_file"     mapstructure:"session_file"`
	RefreshInterval time.Duration `yaml:"refresh_interval" mapstructure:"refresh_interval"`
	RefreshBuffer   time.Duration `yaml:"refresh_buffer"   mapstructure:"refresh_buffer"`
}

//nolint:gochecknoglobals // Process-wide configuration, set once per CLI invocation.
var (
	globalConfig *Config
	globalMu     sync.RWMutex
)

// Dir returns the configuration directory (PRODDASH_HOME or ~/.proddash).
func Dir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return configDirName
	}
	return filepath.Join(home, configDirName)
}

// Path returns the path of the main config file.
func Path() string {
	return filepath.Join(Dir(), configFileName+"."+configFileType)
}

// New returns a Config populated with defaults.
func New() *Config {
	dir := Dir()
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultTimeout,
		},
		Dashboard: DashboardConfig{
			PageSize:    DefaultPageSize,
			MinLatency:  DefaultMinLatency,
			Locale:      DefaultLocale,
			DefaultDays: DefaultDays,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: DefaultCacheTTLSeconds,
			Directory:  filepath.Join(dir, "cache"),
			MaxSizeMB:  DefaultCacheMaxSizeMB,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Auth: AuthConfig{
			SessionFile:     filepath.Join(dir, "session.json"),
			RefreshInterval: DefaultRefreshInterval,
			RefreshBuffer:   DefaultRefreshBuffer,
		},
	}
}

// Load reads configuration from path (or the default location when empty),
// applying PRODDASH_* environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	defaults := New()

	v := viper.New()
	setDefaults(v, defaults)
	v.SetConfigType(configFileType)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.AddConfigPath(Dir())
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(path != "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("dashboard.page_size", d.Dashboard.PageSize)
	v.SetDefault("dashboard.min_latency", d.Dashboard.MinLatency)
	v.SetDefault("dashboard.locale", d.Dashboard.Locale)
	v.SetDefault("dashboard.default_days", d.Dashboard.DefaultDays)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.ttl_seconds", d.Cache.TTLSeconds)
	v.SetDefault("cache.directory", d.Cache.Directory)
	v.SetDefault("cache.max_size_mb", d.Cache.MaxSizeMB)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("auth.session_file", d.Auth.SessionFile)
	v.SetDefault("auth.refresh_interval", d.Auth.RefreshInterval)
	v.SetDefault("auth.refresh_buffer", d.Auth.RefreshBuffer)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url cannot be empty")
	}
	if c.Dashboard.PageSize <= 0 {
		return fmt.Errorf("dashboard.page_size must be > 0, got %d", c.Dashboard.PageSize)
	}
	if c.Dashboard.MinLatency < 0 {
		return fmt.Errorf("dashboard.min_latency must be >= 0, got %s", c.Dashboard.MinLatency)
	}
	if c.Dashboard.DefaultDays <= 0 {
		return fmt.Errorf("dashboard.default_days must be > 0, got %d", c.Dashboard.DefaultDays)
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttl_seconds must be >= 0, got %d", c.Cache.TTLSeconds)
	}
	return nil
}

// Save writes cfg as YAML to path, creating the parent directory.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SetGlobalConfig replaces the process-wide configuration.
func SetGlobalConfig(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = cfg
}

// GetGlobalConfig returns the process-wide configuration, loading defaults
// on first use.
func GetGlobalConfig() *Config {
	globalMu.RLock()
	cfg := globalConfig
	globalMu.RUnlock()
	if cfg != nil {
		return cfg
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalConfig == nil {
		globalConfig = New()
	}
	return globalConfig
}
