// Package config handles the XDG configuration directory, its file paths and
// the optional config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "taskboard"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// ConfigFile is the optional settings filename.
	ConfigFile = "config.yaml"

	// DatabaseFile is the default SQLite database filename.
	DatabaseFile = "taskboard.db"

	// BackendEnv overrides the configured backend.
	BackendEnv = "TASKBOARD_BACKEND"
)

// Backend names.
const (
	BackendSQLite      = "sqlite"
	BackendMySQL       = "mysql"
	BackendREST        = "rest"
	BackendGoogleTasks = "googletasks"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `yaml:"-"`

	// Debug enables debug logging.
	Debug bool `yaml:"-"`

	// Quiet suppresses informational output.
	Quiet bool `yaml:"-"`

	Backend     string            `yaml:"backend"`
	REST        RESTConfig        `yaml:"rest"`
	Database    DatabaseConfig    `yaml:"database"`
	GoogleTasks GoogleTasksConfig `yaml:"googletasks"`
	Board       BoardConfig       `yaml:"board"`
	Log         LogConfig         `yaml:"log"`
}

// RESTConfig configures the HTTP backend.
type RESTConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// DatabaseConfig configures the SQL backends.
type DatabaseConfig struct {
	Path string `yaml:"path"` // sqlite file
	DSN  string `yaml:"dsn"`  // mysql data source name
}

// GoogleTasksConfig names the Google task lists used for the board.
type GoogleTasksConfig struct {
	BoardList   string `yaml:"board_list"`
	HistoryList string `yaml:"history_list"`
}

// BoardConfig holds board behavior settings.
type BoardConfig struct {
	Policy string `yaml:"policy"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns a Config with defaults for dir.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:     dir,
		Backend: BackendSQLite,
		REST: RESTConfig{
			BaseURL: "http://127.0.0.1:5050",
			Timeout: 5 * time.Second,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(dir, DatabaseFile),
		},
		GoogleTasks: GoogleTasksConfig{
			BoardList:   "Task Board",
			HistoryList: "Task Board History",
		},
		Log: LogConfig{
			Level: "error",
		},
	}
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/taskboard or $HOME/.config/taskboard.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := DefaultConfig(dir)
	return &cfg, nil
}

// Load is New plus config.yaml (if present) and the TASKBOARD_BACKEND
// override. The result is validated.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}
	dir := cfg.Dir

	data, err := os.ReadFile(cfg.ConfigPath())
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg.Dir = dir

	if backend := os.Getenv(BackendEnv); backend != "" {
		cfg.Backend = backend
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig(c.Dir)
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = defaults.Backend
	}
	if c.REST.BaseURL == "" {
		c.REST.BaseURL = defaults.REST.BaseURL
	}
	if c.REST.Timeout == 0 {
		c.REST.Timeout = defaults.REST.Timeout
	}
	if c.Database.Path == "" {
		c.Database.Path = defaults.Database.Path
	}
	if c.GoogleTasks.BoardList == "" {
		c.GoogleTasks.BoardList = defaults.GoogleTasks.BoardList
	}
	if c.GoogleTasks.HistoryList == "" {
		c.GoogleTasks.HistoryList = defaults.GoogleTasks.HistoryList
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("config directory cannot be empty")
	}

	switch c.Backend {
	case BackendSQLite, BackendREST, BackendGoogleTasks:
	case BackendMySQL:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the mysql backend")
		}
	default:
		return fmt.Errorf("unknown backend %q (want sqlite, mysql, rest or googletasks)", c.Backend)
	}

	if c.REST.Timeout < 0 {
		return fmt.Errorf("rest.timeout cannot be negative")
	}

	switch strings.ToLower(c.Board.Policy) {
	case "", "remote", "local":
	default:
		return fmt.Errorf("board.policy must be remote or local, got %q", c.Board.Policy)
	}

	if strings.EqualFold(c.GoogleTasks.BoardList, c.GoogleTasks.HistoryList) {
		return fmt.Errorf("googletasks.board_list and googletasks.history_list must differ")
	}

	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// ConfigPath returns the path to config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
