package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the app configuration.
//
// Precedence, lowest first: defaults, the YAML file, a .env file in the
// working directory, ROBLES_* environment variables, command-line flags
// (applied by the caller).
type Config struct {
	Server  string        `yaml:"server"`
	Timeout time.Duration `yaml:"timeout"`
	Mock    bool          `yaml:"mock"`

	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`

	SessionFile string `yaml:"session_file"`

	UI struct {
		PageSize       int `yaml:"page_size"`
		ReportPageSize int `yaml:"report_page_size"`
	} `yaml:"ui"`
}

// EnvFile is the dotenv file Load reads when it exists.
var EnvFile = ".env"

// Dir is the per-user directory for the config, log and session files.
func Dir() string {
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, "robles")
	}
	return ".robles"
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string { return filepath.Join(Dir(), "config.yaml") }

func Default() Config {
	var c Config
	c.Server = "http://localhost:3001"
	c.Timeout = 10 * time.Second
	c.Log.Level = "info"
	c.Log.File = filepath.Join(Dir(), "robles.log")
	c.SessionFile = filepath.Join(Dir(), "session.yaml")
	c.UI.PageSize = 5
	c.UI.ReportPageSize = 25
	return c
}

// Load loads configuration from the given path. An explicit path must exist;
// with an empty path the default location is used when present. The result is
// not validated; callers apply their flags first and then call Validate.
func Load(path string) (Config, error) {
	c := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", EnvFile, err)
	}
	if err := c.ApplyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	return c, nil
}

// ApplyEnv overrides fields from ROBLES_SERVER, ROBLES_TIMEOUT and
// ROBLES_LOG_LEVEL.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv("ROBLES_SERVER")); v != "" {
		c.Server = v
	}
	if v := strings.TrimSpace(getenv("ROBLES_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ROBLES_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := strings.TrimSpace(getenv("ROBLES_LOG_LEVEL")); v != "" {
		c.Log.Level = v
	}
	return nil
}

func (c Config) Validate() error {
	if !c.Mock {
		u, err := url.Parse(c.Server)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("server %q must be an http(s) URL", c.Server)
		}
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.UI.PageSize < 1 || c.UI.ReportPageSize < 1 {
		return errors.New("page sizes must be at least 1")
	}
	return nil
}
