package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when a field is left empty.
const (
	DefaultSheetsBaseURL = "https://sheets.googleapis.com/v4"
	DefaultRefreshSkew   = 60 * time.Second
	DefaultPlansDir      = "plans"
	DefaultStateDir      = "~/.liftsync"
	DefaultTSHostname    = "liftsync"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Sheets    SheetsConfig    `yaml:"sheets"`
	Token     TokenConfig     `yaml:"token"`
	Plans     PlansConfig     `yaml:"plans"`
	State     StateConfig     `yaml:"state"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type SheetsConfig struct {
	SpreadsheetID    string `yaml:"spreadsheet_id"`
	BaseURL          string `yaml:"base_url"`
	ArchiveOnPublish bool   `yaml:"archive_on_publish"`
}

type TokenConfig struct {
	Path        string   `yaml:"path"`
	RefreshSkew Duration `yaml:"refresh_skew"`
}

type PlansConfig struct {
	Dir string `yaml:"dir"`
}

type StateConfig struct {
	Dir string `yaml:"dir"`
}

// Duration is a time.Duration written as a Go duration string ("90s") or
// a bare number of seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	v, err := parseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(v)
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return v, nil
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides
// and defaults. Env vars use the prefix LIFTSYNC_ and underscore-separated paths:
//
//	LIFTSYNC_SERVER_HOST, LIFTSYNC_SERVER_PORT,
//	LIFTSYNC_DB_HOST, LIFTSYNC_DB_PORT, LIFTSYNC_DB_NAME,
//	LIFTSYNC_DB_USER, LIFTSYNC_DB_PASSWORD, LIFTSYNC_DB_SSLMODE,
//	LIFTSYNC_AUTH_API_KEY, LIFTSYNC_TS_ENABLED, LIFTSYNC_TS_HOSTNAME,
//	LIFTSYNC_SHEETS_ID, LIFTSYNC_SHEETS_BASE_URL,
//	LIFTSYNC_TOKEN_PATH, LIFTSYNC_TOKEN_REFRESH_SKEW,
//	LIFTSYNC_PLANS_DIR, LIFTSYNC_STATE_DIR
//
// Only the sheet and token settings are validated here; binaries that serve
// HTTP call ValidateServer as well.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	if err := cfg.applyDefaults(); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIFTSYNC_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LIFTSYNC_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LIFTSYNC_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("LIFTSYNC_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("LIFTSYNC_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("LIFTSYNC_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("LIFTSYNC_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("LIFTSYNC_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("LIFTSYNC_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("LIFTSYNC_TS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	if v := os.Getenv("LIFTSYNC_TS_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("LIFTSYNC_SHEETS_ID"); v != "" {
		cfg.Sheets.SpreadsheetID = v
	}
	if v := os.Getenv("LIFTSYNC_SHEETS_BASE_URL"); v != "" {
		cfg.Sheets.BaseURL = v
	}
	if v := os.Getenv("LIFTSYNC_TOKEN_PATH"); v != "" {
		cfg.Token.Path = v
	}
	if v := os.Getenv("LIFTSYNC_TOKEN_REFRESH_SKEW"); v != "" {
		if d, err := parseDuration(v); err == nil {
			cfg.Token.RefreshSkew = Duration(d)
		}
	}
	if v := os.Getenv("LIFTSYNC_PLANS_DIR"); v != "" {
		cfg.Plans.Dir = v
	}
	if v := os.Getenv("LIFTSYNC_STATE_DIR"); v != "" {
		cfg.State.Dir = v
	}
}

func (c *Config) applyDefaults() error {
	if c.Sheets.BaseURL == "" {
		c.Sheets.BaseURL = DefaultSheetsBaseURL
	}
	if c.Token.RefreshSkew == 0 {
		c.Token.RefreshSkew = Duration(DefaultRefreshSkew)
	}
	if c.Plans.Dir == "" {
		c.Plans.Dir = DefaultPlansDir
	}
	if c.State.Dir == "" {
		c.State.Dir = DefaultStateDir
	}
	if c.Tailscale.Hostname == "" {
		c.Tailscale.Hostname = DefaultTSHostname
	}

	var err error
	for _, p := range []*string{&c.Token.Path, &c.Plans.Dir, &c.State.Dir, &c.Tailscale.StateDir} {
		if *p, err = expandHome(*p); err != nil {
			return err
		}
	}
	return nil
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

func (c *Config) validate() error {
	if c.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("sheets.spreadsheet_id is required")
	}
	if c.Token.Path == "" {
		return fmt.Errorf("token.path is required")
	}
	if c.Token.RefreshSkew < 0 {
		return fmt.Errorf("token.refresh_skew must not be negative")
	}
	return nil
}

// ValidateServer checks the settings the HTTP server needs.
func (c *Config) ValidateServer() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	return nil
}
