package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const appName = "marquee"

// Config holds all application configuration
type Config struct {
	Backend  BackendConfig  `mapstructure:"backend"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Player   PlayerConfig   `mapstructure:"player"`
	Data     DataConfig     `mapstructure:"data"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// BackendConfig holds account backend configuration
type BackendConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CatalogConfig holds metadata catalog configuration
type CatalogConfig struct {
	URL          string `mapstructure:"url"`
	APIKey       string `mapstructure:"api_key"`
	Language     string `mapstructure:"language"`
	ImageBaseURL string `mapstructure:"image_base_url"`
	HTTPCache    bool   `mapstructure:"http_cache"` // Honor Cache-Control on catalog GETs
}

// CacheConfig holds session cache lifetimes
type CacheConfig struct {
	ProfilesTTL time.Duration `mapstructure:"profiles_ttl"`
	ListTTL     time.Duration `mapstructure:"list_ttl"`
}

// ResolverConfig holds media resolution settings
type ResolverConfig struct {
	Concurrency int `mapstructure:"concurrency"` // Items resolved in parallel for a row
}

// PlayerConfig holds trailer player configuration
type PlayerConfig struct {
	Command string   `mapstructure:"command"` // Empty opens trailers in the browser
	Args    []string `mapstructure:"args"`
}

// DataConfig holds durable storage configuration
type DataConfig struct {
	Dir string `mapstructure:"dir"` // Empty keeps credentials and cache in memory
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:     "http://localhost:8000/api",
			Timeout: 30 * time.Second,
		},
		Catalog: CatalogConfig{
			URL:          "https://api.themoviedb.org/3",
			Language:     "en-US",
			ImageBaseURL: "https://image.tmdb.org/t/p",
			HTTPCache:    true,
		},
		Cache: CacheConfig{
			ProfilesTTL: 5 * time.Minute,
			ListTTL:     5 * time.Minute,
		},
		Resolver: ResolverConfig{
			Concurrency: 4,
		},
		Player: PlayerConfig{
			Args: []string{},
		},
		Data: DataConfig{
			Dir: defaultDataPath(),
		},
		Logging: LoggingConfig{
			File:       filepath.Join(defaultDataPath(), appName+".log"),
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName)
	}
}

// DefaultConfigPath returns the default config directory for the current OS
func DefaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// newViper returns a viper instance reading from fs with every known key
// registered, so MARQUEE_* environment variables reach Unmarshal
func newViper(fs afero.Fs, configDir string) *viper.Viper {
	v := viper.New()
	v.SetFs(fs)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Environment variable overrides: MARQUEE_CATALOG_API_KEY -> catalog.api_key
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setValues(v.SetDefault, DefaultConfig())
	return v
}

// setValues writes every config key through set, with snake_case key names
func setValues(set func(key string, value any), cfg *Config) {
	set("backend.url", cfg.Backend.URL)
	set("backend.timeout", cfg.Backend.Timeout.String())

	set("catalog.url", cfg.Catalog.URL)
	set("catalog.api_key", cfg.Catalog.APIKey)
	set("catalog.language", cfg.Catalog.Language)
	set("catalog.image_base_url", cfg.Catalog.ImageBaseURL)
	set("catalog.http_cache", cfg.Catalog.HTTPCache)

	set("cache.profiles_ttl", cfg.Cache.ProfilesTTL.String())
	set("cache.list_ttl", cfg.Cache.ListTTL.String())

	set("resolver.concurrency", cfg.Resolver.Concurrency)

	set("player.command", cfg.Player.Command)
	set("player.args", cfg.Player.Args)

	set("data.dir", cfg.Data.Dir)

	set("logging.file", cfg.Logging.File)
	set("logging.level", cfg.Logging.Level)
	set("logging.max_size_mb", cfg.Logging.MaxSizeMB)
	set("logging.max_backups", cfg.Logging.MaxBackups)
}

// LoadConfig loads configuration from config.yaml in configDir (or the
// working directory) and the environment. A missing file is not an error.
func LoadConfig(fs afero.Fs, configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigPath()
	}
	v := newViper(fs, configDir)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes cfg to config.yaml in configDir
func SaveConfig(fs afero.Fs, configDir string, cfg *Config) error {
	if configDir == "" {
		configDir = DefaultConfigPath()
	}

	// Ensure config directory exists
	if err := fs.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetFs(fs)
	setValues(v.Set, cfg)

	configFile := filepath.Join(configDir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if both endpoints and the catalog key are set
func (c *Config) IsConfigured() bool {
	return c.Backend.URL != "" && c.Catalog.URL != "" && c.Catalog.APIKey != ""
}
