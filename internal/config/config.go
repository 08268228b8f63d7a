// Package config provides YAML-based configuration loading for Tickora.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/zulandar/tickora/internal/models"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file used when --config is not given.
const DefaultPath = "tickora.yaml"

// cronParser accepts the 5-field expressions the history scheduler runs.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Config is the top-level Tickora configuration, loaded from tickora.yaml.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Board   BoardConfig   `yaml:"board"`
	History HistoryConfig `yaml:"history"`
	Notify  NotifyConfig  `yaml:"notify"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig selects and addresses the database. For sqlite, DSN is the
// file path; for mysql, DSN overrides the host/port/database/user fields.
type StorageConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// BoardConfig holds the default board layout.
type BoardConfig struct {
	Columns   []string       `yaml:"columns"`
	WIPLimits map[string]int `yaml:"wip_limits"`
}

// HistoryConfig holds cron schedules for metrics snapshots and digests.
type HistoryConfig struct {
	SnapshotSchedule string `yaml:"snapshot_schedule"`
	DigestSchedule   string `yaml:"digest_schedule"`
}

// NotifyConfig holds chat platform credentials. A platform is enabled when
// its bot token is set.
type NotifyConfig struct {
	Slack   ChannelConfig `yaml:"slack"`
	Discord ChannelConfig `yaml:"discord"`
}

// ChannelConfig addresses one chat channel.
type ChannelConfig struct {
	BotToken string `yaml:"bot_token"`
	Channel  string `yaml:"channel"`
}

// Enabled reports whether a bot token is configured.
func (c ChannelConfig) Enabled() bool { return c.BotToken != "" }

// LogConfig selects the logger preset: dev or prod.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads a YAML config file from path and returns a validated Config.
// A .env file next to the config is loaded first so ${VAR} references can
// resolve secrets kept out of the YAML.
func Load(path string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load %s: %w", envPath, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Parse(nil)
	}
	return cfg, err
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.expandEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// expandEnv resolves ${VAR} references in secret-bearing fields.
func (c *Config) expandEnv() {
	for _, p := range []*string{
		&c.Storage.DSN,
		&c.Storage.Password,
		&c.Notify.Slack.BotToken,
		&c.Notify.Discord.BotToken,
	} {
		*p = os.ExpandEnv(*p)
	}
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.DSN == "" {
			c.Storage.DSN = "tickora.db"
		}
	case "mysql":
		if c.Storage.Host == "" {
			c.Storage.Host = "127.0.0.1"
		}
		if c.Storage.Port == 0 {
			c.Storage.Port = 3306
		}
		if c.Storage.Database == "" {
			c.Storage.Database = "tickora"
		}
		if c.Storage.User == "" {
			c.Storage.User = "root"
		}
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if len(c.Board.Columns) == 0 {
		c.Board.Columns = []string{string(models.StatusToDo), string(models.StatusInProgress), string(models.StatusDone)}
	}
	if c.History.SnapshotSchedule == "" {
		c.History.SnapshotSchedule = "0 18 * * *"
	}
	if c.History.DigestSchedule == "" {
		c.History.DigestSchedule = "0 9 * * 1-5"
	}
	if c.Log.Level == "" {
		c.Log.Level = "dev"
	}
}

// validate checks that all fields are present and consistent, reporting
// every problem at once.
func (c *Config) validate() error {
	var err error
	if c.Storage.Driver != "sqlite" && c.Storage.Driver != "mysql" {
		err = multierr.Append(err, fmt.Errorf("storage.driver must be sqlite or mysql, got %q", c.Storage.Driver))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if _, cerr := c.BoardColumns(); cerr != nil {
		err = multierr.Append(err, cerr)
	}
	if _, werr := c.WIPLimits(); werr != nil {
		err = multierr.Append(err, werr)
	}
	for name, spec := range map[string]string{
		"history.snapshot_schedule": c.History.SnapshotSchedule,
		"history.digest_schedule":   c.History.DigestSchedule,
	} {
		if spec == "" {
			continue
		}
		if _, perr := cronParser.Parse(spec); perr != nil {
			err = multierr.Append(err, fmt.Errorf("%s %q: %w", name, spec, perr))
		}
	}
	for name, ch := range map[string]ChannelConfig{"slack": c.Notify.Slack, "discord": c.Notify.Discord} {
		if ch.Enabled() && ch.Channel == "" {
			err = multierr.Append(err, fmt.Errorf("notify.%s.channel is required when bot_token is set", name))
		}
	}
	if c.Log.Level != "dev" && c.Log.Level != "prod" {
		err = multierr.Append(err, fmt.Errorf("log.level must be dev or prod, got %q", c.Log.Level))
	}
	if err != nil {
		return fmt.Errorf("config: validation failed: %w", err)
	}
	return nil
}

// BoardColumns parses the configured column statuses in order.
func (c *Config) BoardColumns() ([]models.Status, error) {
	cols := make([]models.Status, 0, len(c.Board.Columns))
	seen := make(map[models.Status]bool)
	for i, raw := range c.Board.Columns {
		st, err := models.ParseStatus(raw)
		if err != nil {
			return nil, fmt.Errorf("board.columns[%d]: %w", i, err)
		}
		if seen[st] {
			return nil, fmt.Errorf("board.columns[%d]: duplicate column %q", i, st)
		}
		seen[st] = true
		cols = append(cols, st)
	}
	return cols, nil
}

// WIPLimits parses the configured per-status WIP limits.
func (c *Config) WIPLimits() (map[models.Status]int, error) {
	limits := make(map[models.Status]int, len(c.Board.WIPLimits))
	for raw, n := range c.Board.WIPLimits {
		st, err := models.ParseStatus(raw)
		if err != nil {
			return nil, fmt.Errorf("board.wip_limits: %w", err)
		}
		if n < 0 {
			return nil, fmt.Errorf("board.wip_limits.%s must not be negative", raw)
		}
		limits[st] = n
	}
	return limits, nil
}
