// Package config loads and validates the scanner configuration.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Feed      FeedConfig      `mapstructure:"feed"`
	Scanner   ScannerConfig   `mapstructure:"scanner"`
	WhatsApp  WhatsAppConfig  `mapstructure:"whatsapp"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// FeedConfig holds the GFDL websocket feed configuration.
type FeedConfig struct {
	WSSURL         string        `mapstructure:"wss_url"`
	Exchange       string        `mapstructure:"exchange"`
	APIKey         string        `mapstructure:"api_key"`
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	AuthRetryDelay time.Duration `mapstructure:"auth_retry_delay"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
}

// BucketBound maps a minimum lot count to a qualitative size label.
// Bounds are evaluated highest-first; a lot count below every bound is
// classified IGNORE.
type BucketBound struct {
	MinLots int64  `mapstructure:"min_lots"`
	Label   string `mapstructure:"label"`
}

// ScannerConfig holds the alert-engine thresholds and instrument universe.
type ScannerConfig struct {
	Symbols        []string         `mapstructure:"symbols"`
	LotSizes       map[string]int64 `mapstructure:"lot_sizes"`
	DefaultLotSize int64            `mapstructure:"default_lot_size"`
	OIRoCThreshold float64          `mapstructure:"oi_roc_threshold"`
	MinLots        int64            `mapstructure:"min_lots"`
	ATMBand        float64          `mapstructure:"atm_band"`
	Buckets        []BucketBound    `mapstructure:"buckets"`
}

// Underlyings returns the configured underlying names in deterministic order.
// The lot-size table doubles as the known-underlyings universe.
func (s ScannerConfig) Underlyings() []string {
	names := make([]string, 0, len(s.LotSizes))
	for name := range s.LotSizes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WhatsAppConfig holds the UltraMSG delivery configuration.
type WhatsAppConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	APIBaseURL string        `mapstructure:"api_base_url"`
	InstanceID string        `mapstructure:"instance_id"`
	Token      string        `mapstructure:"token"`
	GroupID    string        `mapstructure:"group_id"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// TelegramConfig holds Telegram notification configuration.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	Enabled  bool   `mapstructure:"enabled"`
}

// StorageConfig holds the alert-journal configuration.
type StorageConfig struct {
	DBPath    string `mapstructure:"db_path"`
	MaxAlerts int    `mapstructure:"max_alerts"`
}

// DashboardConfig holds the HTTP dashboard configuration.
type DashboardConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
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

	// Credentials come from the environment in deployment:
	// OI_SCANNER_FEED_API_KEY, OI_SCANNER_TELEGRAM_BOT_TOKEN, ...
	v.SetEnvPrefix("OI_SCANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows from the file or
	// defaults; credentials shipped only through the environment must be
	// bound explicitly or Unmarshal never sees them.
	for _, key := range []string{
		"feed.api_key",
		"telegram.bot_token",
		"telegram.chat_id",
		"whatsapp.instance_id",
		"whatsapp.token",
		"whatsapp.group_id",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

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
	// Feed defaults
	v.SetDefault("feed.wss_url", "wss://nimblewebstream.lisuns.com:4576/")
	v.SetDefault("feed.exchange", "NFO")
	v.SetDefault("feed.ping_interval", "20s")
	v.SetDefault("feed.auth_retry_delay", "30s")
	v.SetDefault("feed.reconnect_delay", "10s")

	// Scanner defaults
	v.SetDefault("scanner.default_lot_size", 75)
	v.SetDefault("scanner.oi_roc_threshold", 2.0)
	v.SetDefault("scanner.min_lots", 50)
	v.SetDefault("scanner.atm_band", 0.005)
	v.SetDefault("scanner.buckets", []map[string]any{
		{"min_lots": 200, "label": "EXTREME HIGH"},
		{"min_lots": 150, "label": "EXTRA HIGH"},
		{"min_lots": 100, "label": "HIGH"},
		{"min_lots": 75, "label": "MEDIUM"},
		{"min_lots": 1, "label": "LOW"},
	})

	// WhatsApp defaults
	v.SetDefault("whatsapp.api_base_url", "https://api.ultramsg.com")
	v.SetDefault("whatsapp.timeout", "10s")

	// Storage defaults
	v.SetDefault("storage.db_path", "./data/scanner.db")
	v.SetDefault("storage.max_alerts", 1000)

	// Dashboard defaults
	v.SetDefault("dashboard.enabled", true)
	v.SetDefault("dashboard.listen_addr", ":8080")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid.
func (c *Config) Validate() error {
	// Validate Feed config
	if c.Feed.WSSURL == "" {
		return fmt.Errorf("feed.wss_url is required")
	}
	if c.Feed.Exchange == "" {
		return fmt.Errorf("feed.exchange is required")
	}
	if c.Feed.APIKey == "" {
		return fmt.Errorf("feed.api_key is required (set OI_SCANNER_FEED_API_KEY)")
	}
	if c.Feed.PingInterval < time.Second {
		return fmt.Errorf("feed.ping_interval must be at least 1 second")
	}
	if c.Feed.ReconnectDelay < time.Second {
		return fmt.Errorf("feed.reconnect_delay must be at least 1 second")
	}

	// Validate Scanner config
	if len(c.Scanner.Symbols) == 0 {
		return fmt.Errorf("scanner.symbols must contain at least one symbol")
	}
	if c.Scanner.DefaultLotSize < 0 {
		return fmt.Errorf("scanner.default_lot_size must not be negative")
	}
	for name, size := range c.Scanner.LotSizes {
		if size < 0 {
			return fmt.Errorf("scanner.lot_sizes.%s must not be negative", name)
		}
	}
	if c.Scanner.OIRoCThreshold < 0 {
		return fmt.Errorf("scanner.oi_roc_threshold must not be negative")
	}
	if c.Scanner.MinLots < 0 {
		return fmt.Errorf("scanner.min_lots must not be negative")
	}
	if c.Scanner.ATMBand <= 0 || c.Scanner.ATMBand >= 1 {
		return fmt.Errorf("scanner.atm_band must be between 0 and 1 exclusive")
	}
	if len(c.Scanner.Buckets) == 0 {
		return fmt.Errorf("scanner.buckets must contain at least one bound")
	}
	for i, b := range c.Scanner.Buckets {
		if b.Label == "" {
			return fmt.Errorf("scanner.buckets[%d].label must not be empty", i)
		}
		if b.MinLots < 1 {
			return fmt.Errorf("scanner.buckets[%d].min_lots must be at least 1", i)
		}
		if i > 0 && b.MinLots >= c.Scanner.Buckets[i-1].MinLots {
			return fmt.Errorf("scanner.buckets must be in strictly descending min_lots order")
		}
	}

	// Validate WhatsApp config
	if c.WhatsApp.Enabled {
		if c.WhatsApp.InstanceID == "" {
			return fmt.Errorf("whatsapp.instance_id is required when whatsapp is enabled")
		}
		if c.WhatsApp.Token == "" {
			return fmt.Errorf("whatsapp.token is required when whatsapp is enabled")
		}
		if c.WhatsApp.GroupID == "" {
			return fmt.Errorf("whatsapp.group_id is required when whatsapp is enabled")
		}
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	// Validate Storage config
	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}
	if c.Storage.MaxAlerts < 1 {
		return fmt.Errorf("storage.max_alerts must be at least 1")
	}

	// Validate Dashboard config
	if c.Dashboard.Enabled && c.Dashboard.ListenAddr == "" {
		return fmt.Errorf("dashboard.listen_addr is required when dashboard is enabled")
	}

	// Validate Logging config
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
