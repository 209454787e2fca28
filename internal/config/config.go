// Package config loads and validates the application configuration and
// the static fuel-type reference table.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration. It is
// read-only at runtime; mutable run state (cached access token,
// transaction counter) lives in the state store instead.
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Trends    TrendsConfig    `mapstructure:"trends"`
	Paths     PathsConfig     `mapstructure:"paths"`
	Discord   DiscordConfig   `mapstructure:"discord"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Ntfy      NtfyConfig      `mapstructure:"ntfy"`
	Influx    InfluxConfig    `mapstructure:"influx"`
	Heartbeat HeartbeatConfig `mapstructure:"heartbeat"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// APIConfig holds the fuel price source API configuration.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Key     string        `mapstructure:"key"`
	Secret  string        `mapstructure:"secret"`
	State   string        `mapstructure:"state"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TrendsConfig holds aggregation and windowing behavior.
type TrendsConfig struct {
	FuelTypes   []string `mapstructure:"fuel_types"`
	WindowDays  int      `mapstructure:"window_days"`
	Timezone    string   `mapstructure:"timezone"`
	TriggerTime string   `mapstructure:"trigger_time"`
	RunAtStart  bool     `mapstructure:"run_at_start"`
}

// PathsConfig holds on-disk locations.
type PathsConfig struct {
	PricesDir  string `mapstructure:"prices_dir"`
	ArchiveDir string `mapstructure:"archive_dir"`
	StateDB    string `mapstructure:"state_db"`
	CodesFile  string `mapstructure:"codes_file"`
}

// DiscordConfig holds the Discord webhook sink configuration.
type DiscordConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url"`
}

// TelegramConfig holds the Telegram sink configuration.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// NtfyConfig holds the ntfy push notification sink configuration.
type NtfyConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	URI              string `mapstructure:"uri"`
	AttachmentDomain string `mapstructure:"attachment_domain"`
	Token            string `mapstructure:"token"`
}

// InfluxConfig holds the metrics database sink configuration.
type InfluxConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	URI          string        `mapstructure:"uri"`
	Token        string        `mapstructure:"token"`
	Organization string        `mapstructure:"organization"`
	Bucket       string        `mapstructure:"bucket"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// HeartbeatConfig holds the liveness ping sink configuration.
type HeartbeatConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URI     string `mapstructure:"uri"`
}

// ArchiveConfig holds the chart archive HTTP server configuration.
type ArchiveConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	setDefaults(v)

	v.SetEnvPrefix("FUELTRENDS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://api.onegov.nsw.gov.au")
	v.SetDefault("api.state", "NSW")
	v.SetDefault("api.timeout", "30s")

	v.SetDefault("trends.fuel_types", []string{"E10", "P95"})
	v.SetDefault("trends.window_days", 30)
	v.SetDefault("trends.timezone", "Australia/Sydney")
	v.SetDefault("trends.trigger_time", "08:58")
	v.SetDefault("trends.run_at_start", false)

	v.SetDefault("paths.prices_dir", "prices")
	v.SetDefault("paths.archive_dir", "archive")
	v.SetDefault("paths.state_db", "./data/fueltrends.db")
	v.SetDefault("paths.codes_file", "configs/codes.json")

	v.SetDefault("influx.timeout", "30s")

	v.SetDefault("archive.listen_addr", ":31238")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.Key == "" {
		return fmt.Errorf("api.key is required")
	}
	if c.API.Secret == "" {
		return fmt.Errorf("api.secret is required")
	}
	if c.API.Timeout < time.Second {
		return fmt.Errorf("api.timeout must be at least 1 second")
	}

	if len(c.Trends.FuelTypes) == 0 {
		return fmt.Errorf("trends.fuel_types must contain at least one fuel type")
	}
	if c.Trends.WindowDays < 2 {
		return fmt.Errorf("trends.window_days must be at least 2")
	}
	if _, err := time.LoadLocation(c.Trends.Timezone); err != nil {
		return fmt.Errorf("trends.timezone is invalid: %w", err)
	}
	if _, err := time.Parse("15:04", c.Trends.TriggerTime); err != nil {
		return fmt.Errorf("trends.trigger_time must be HH:MM: %w", err)
	}

	if c.Paths.PricesDir == "" {
		return fmt.Errorf("paths.prices_dir is required")
	}
	if c.Paths.ArchiveDir == "" {
		return fmt.Errorf("paths.archive_dir is required")
	}
	if c.Paths.StateDB == "" {
		return fmt.Errorf("paths.state_db is required")
	}

	if c.Discord.Enabled && c.Discord.WebhookURL == "" {
		return fmt.Errorf("discord.webhook_url is required when discord is enabled")
	}
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}
	if c.Ntfy.Enabled {
		if c.Ntfy.URI == "" {
			return fmt.Errorf("ntfy.uri is required when ntfy is enabled")
		}
		if c.Ntfy.AttachmentDomain == "" {
			return fmt.Errorf("ntfy.attachment_domain is required when ntfy is enabled")
		}
	}
	if c.Influx.Enabled {
		if c.Influx.URI == "" {
			return fmt.Errorf("influx.uri is required when influx is enabled")
		}
		if c.Influx.Token == "" {
			return fmt.Errorf("influx.token is required when influx is enabled")
		}
		if c.Influx.Organization == "" {
			return fmt.Errorf("influx.organization is required when influx is enabled")
		}
		if c.Influx.Bucket == "" {
			return fmt.Errorf("influx.bucket is required when influx is enabled")
		}
		if c.Influx.Timeout < time.Second {
			return fmt.Errorf("influx.timeout must be at least 1 second")
		}
	}
	if c.Heartbeat.Enabled && c.Heartbeat.URI == "" {
		return fmt.Errorf("heartbeat.uri is required when heartbeat is enabled")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// Location returns the configured local timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Trends.Timezone)
}

// LoadCodes reads the fuel-type reference table mapping short codes
// (e.g. "E10") to human-readable names.
func LoadCodes(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read codes file: %w", err)
	}
	var codes map[string]string
	if err := json.Unmarshal(data, &codes); err != nil {
		return nil, fmt.Errorf("failed to parse codes file: %w", err)
	}
	return codes, nil
}
