package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/billie-coop/metanet/internal/settings"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
)

// Duration is a time.Duration written as "90s" or "720h" in JSON and
// environment variables.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	return d.UnmarshalText([]byte(s))
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// CacheConfig selects and configures the metadata cache.
type CacheConfig struct {
	Backend       string   `json:"backend" env:"BACKEND"`
	SQLitePath    string   `json:"sqlite_path,omitempty" env:"SQLITE_PATH"`
	RedisAddr     string   `json:"redis_addr,omitempty" env:"REDIS_ADDR"`
	RedisPassword string   `json:"redis_password,omitempty" env:"REDIS_PASSWORD"`
	RedisDB       int      `json:"redis_db,omitempty" env:"REDIS_DB"`
	MaxStale      Duration `json:"max_stale" env:"MAX_STALE"`
	FreshFor      Duration `json:"fresh_for" env:"FRESH_FOR"`
}

// Config is the client configuration.
type Config struct {
	// UI preferences
	Theme    string `json:"theme" env:"METANET_THEME"`
	LogLevel string `json:"log_level" env:"METANET_LOG_LEVEL"`

	Cache CacheConfig `json:"cache" envPrefix:"METANET_CACHE_"`

	// Metadata resolution
	HTTPTimeout   Duration `json:"http_timeout" env:"METANET_HTTP_TIMEOUT"`
	ResolverRate  float64  `json:"resolver_rate" env:"METANET_RESOLVER_RATE"`
	ResolverBurst int      `json:"resolver_burst" env:"METANET_RESOLVER_BURST"`

	// Settings defaults for accounts that have not saved any
	DefaultCurrency string                   `json:"default_currency" env:"METANET_DEFAULT_CURRENCY"`
	USDPerBSV       float64                  `json:"usd_per_bsv" env:"METANET_USD_PER_BSV"`
	TrustedEntities []settings.TrustedEntity `json:"trusted_entities"`

	// LocalCode fixes the one-time code of the local host. Empty means random.
	LocalCode string `json:"local_code,omitempty" env:"METANET_LOCAL_CODE"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Theme:    settings.ThemeDark,
		LogLevel: "info",
		Cache: CacheConfig{
			Backend:  CacheSQLite,
			MaxStale: Duration(30 * 24 * time.Hour),
		},
		HTTPTimeout:     Duration(10 * time.Second),
		ResolverRate:    4,
		ResolverBurst:   4,
		DefaultCurrency: settings.CurrencySATS,
		USDPerBSV:       50,
		TrustedEntities: []settings.TrustedEntity{
			{
				Name:      "Babbage Trust Services",
				Note:      "Resolves identities and registry records for most apps.",
				PublicKey: "03daf815fe38f83da0ad83b5bedc520aa488aef5cbc93a93c67a7fe60406cbffe8",
				Trust:     4,
			},
			{
				Name:      "SocialCert",
				Note:      "Certifies social media handles, phone numbers and emails.",
				PublicKey: "02cf6cdf466951d8dfc9e7c9367511d0007ed6fba35ed42d425cc412fd6cfd4a17",
				Trust:     3,
			},
		},
	}
}

// DefaultSettings is the settings document for a fresh account.
func (c *Config) DefaultSettings() settings.Settings {
	mode := settings.ThemeDark
	if c.Theme == settings.ThemeLight {
		mode = settings.ThemeLight
	}
	return settings.Settings{
		Currency:        c.DefaultCurrency,
		Theme:           settings.Theme{Mode: mode},
		TrustedEntities: append([]settings.TrustedEntity(nil), c.TrustedEntities...),
	}
}

// Manager handles configuration loading and saving.
type Manager struct {
	dir        string
	configPath string
	config     *Config
}

// DefaultDir is ~/.metanet, or ./.metanet when the home directory is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".metanet"
	}
	return filepath.Join(home, ".metanet")
}

// NewManager creates a manager for the config in dir.
func NewManager(dir string) *Manager {
	return &Manager{
		dir:        dir,
		configPath: filepath.Join(dir, "config.json"),
		config:     DefaultConfig(),
	}
}

// Dir is the data directory holding config, logs, vault and cache.
func (m *Manager) Dir() string {
	return m.dir
}

// Path of config.json.
func (m *Manager) Path() string {
	return m.configPath
}

// LogPath is where the log file lives.
func (m *Manager) LogPath() string {
	return filepath.Join(m.dir, "metanet.log")
}

// SQLitePath is the cache database path, defaulting to cache.db in Dir.
func (m *Manager) SQLitePath() string {
	if m.config.Cache.SQLitePath != "" {
		return m.config.Cache.SQLitePath
	}
	return filepath.Join(m.dir, "cache.db")
}

// Load reads config.json, writing defaults when it does not exist, then
// applies METANET_* environment overrides.
func (m *Manager) Load() error {
	if err := os.MkdirAll(m.dir, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", m.dir, err)
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(m.configPath)
	switch {
	case os.IsNotExist(err):
		m.config = cfg
		if err := m.Save(); err != nil {
			return err
		}
	case err != nil:
		return fmt.Errorf("read config file: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config JSON: %w", err)
		}
		m.expandEnvVars(cfg)
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Validate rejects values the client cannot run with.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheMemory, CacheSQLite, CacheRedis:
	default:
		return fmt.Errorf("unknown cache backend %q (want memory, sqlite or redis)", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache backend redis needs redis_addr")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.ResolverRate <= 0 {
		return fmt.Errorf("resolver_rate must be positive")
	}
	return nil
}

// Save writes the current configuration to disk.
func (m *Manager) Save() error {
	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(m.configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	return m.config
}

// Set updates a configuration value and saves.
func (m *Manager) Set(key, value string) error {
	next := *m.config
	c := &next
	switch key {
	case "theme":
		c.Theme = value
	case "log_level":
		c.LogLevel = value
	case "cache.backend":
		c.Cache.Backend = value
	case "cache.sqlite_path":
		c.Cache.SQLitePath = value
	case "cache.redis_addr":
		c.Cache.RedisAddr = value
	case "cache.max_stale":
		if err := c.Cache.MaxStale.UnmarshalText([]byte(value)); err != nil {
			return fmt.Errorf("cache.max_stale: %w", err)
		}
	case "http_timeout":
		if err := c.HTTPTimeout.UnmarshalText([]byte(value)); err != nil {
			return fmt.Errorf("http_timeout: %w", err)
		}
	case "resolver_rate":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("resolver_rate: %w", err)
		}
		c.ResolverRate = f
	case "default_currency":
		c.DefaultCurrency = strings.ToUpper(value)
	case "usd_per_bsv":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("usd_per_bsv: %w", err)
		}
		c.USDPerBSV = f
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	m.config = c
	return m.Save()
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// expandEnvVars expands $VAR and ${VAR} references in string values.
func (m *Manager) expandEnvVars(c *Config) {
	c.Theme = expandString(c.Theme)
	c.Cache.SQLitePath = expandString(c.Cache.SQLitePath)
	c.Cache.RedisAddr = expandString(c.Cache.RedisAddr)
	c.Cache.RedisPassword = expandString(c.Cache.RedisPassword)
}

// expandString leaves references to unset variables as written.
func expandString(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(match string) string {
		var name string
		if strings.HasPrefix(match, "${") {
			name = match[2 : len(match)-1]
		} else {
			name = match[1:]
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return match
	})
}
