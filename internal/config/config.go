package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// DatasetConfig locates the sales table
type DatasetConfig struct {
	Path   string `mapstructure:"path"`
	Format string `mapstructure:"format"` // auto, csv or sqlite
	Table  string `mapstructure:"table"`  // sqlite only
}

// DashboardConfig holds panel defaults
type DashboardConfig struct {
	DefaultGenreCount int      `mapstructure:"default_genre_count"`
	TopPublishers     int      `mapstructure:"top_publishers"`
	FlowPublishers    int      `mapstructure:"flow_publishers"`
	TopPlatforms      int      `mapstructure:"top_platforms"`
	TopGames          int      `mapstructure:"top_games"`
	HierarchyOrder    []string `mapstructure:"hierarchy_order"`
	SampleCap         int      `mapstructure:"sample_cap"`
	SampleSeed        int64    `mapstructure:"sample_seed"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr              string        `mapstructure:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	MetricsEnabled    bool          `mapstructure:"metrics_enabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
// An empty path loads defaults plus environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Enable environment variable override
	v.SetEnvPrefix("VGDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Dataset defaults
	v.SetDefault("dataset.path", "vgsales.csv")
	v.SetDefault("dataset.format", "auto")
	v.SetDefault("dataset.table", "vgsales")

	// Dashboard defaults
	v.SetDefault("dashboard.default_genre_count", 5)
	v.SetDefault("dashboard.top_publishers", 10)
	v.SetDefault("dashboard.flow_publishers", 5)
	v.SetDefault("dashboard.top_platforms", 12)
	v.SetDefault("dashboard.top_games", 20)
	v.SetDefault("dashboard.hierarchy_order", []string{"genre", "platform", "year"})
	v.SetDefault("dashboard.sample_cap", 2000)
	v.SetDefault("dashboard.sample_seed", 42)

	// Server defaults
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_header_timeout", "5s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.metrics_enabled", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Dataset config
	if c.Dataset.Path == "" {
		return fmt.Errorf("dataset.path is required")
	}
	validFormats := map[string]bool{"auto": true, "csv": true, "sqlite": true}
	if !validFormats[c.Dataset.Format] {
		return fmt.Errorf("dataset.format must be one of: auto, csv, sqlite")
	}

	// Validate Dashboard config
	if c.Dashboard.DefaultGenreCount < 0 {
		return fmt.Errorf("dashboard.default_genre_count must not be negative")
	}
	if c.Dashboard.TopPublishers < 1 {
		return fmt.Errorf("dashboard.top_publishers must be at least 1")
	}
	if c.Dashboard.FlowPublishers < 1 {
		return fmt.Errorf("dashboard.flow_publishers must be at least 1")
	}
	if c.Dashboard.TopPlatforms < 1 {
		return fmt.Errorf("dashboard.top_platforms must be at least 1")
	}
	if c.Dashboard.TopGames < 1 {
		return fmt.Errorf("dashboard.top_games must be at least 1")
	}
	if c.Dashboard.SampleCap < 1 {
		return fmt.Errorf("dashboard.sample_cap must be at least 1")
	}
	for _, d := range c.Dashboard.HierarchyOrder {
		if !validHierarchyDims[d] {
			return fmt.Errorf("dashboard.hierarchy_order: unknown dimension %q", d)
		}
	}

	// Validate Server config
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		return fmt.Errorf("server.read_header_timeout must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

var validHierarchyDims = map[string]bool{
	"name": true, "platform": true, "year": true, "genre": true, "publisher": true,
}
