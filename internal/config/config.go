package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRoot    = "."
	DefaultBackend = "sqlite"
	DefaultSettle  = 500 * time.Millisecond
)

// Backends lists the accepted values of Config.Backend
var Backends = []string{"sqlite", "memory", "postgres", "consul", "s3"}

// Config holds all tagit configuration
type Config struct {
	// Root is the workspace directory; relative file arguments resolve against it
	Root    string `yaml:"root"`
	Backend string `yaml:"backend"`

	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
	Consul   ConsulConfig   `yaml:"consul"`
	S3       S3Config       `yaml:"s3"`

	// Ignore holds glob patterns for paths the watcher and listings skip
	Ignore []string `yaml:"ignore"`

	Log   LogConfig   `yaml:"log"`
	Watch WatchConfig `yaml:"watch"`
}

type SQLiteConfig struct {
	// Path of the database file. Empty means one file per root under $XDG_DATA_HOME/tagit.
	Path string `yaml:"path"`
	// Driver is "sqlite" (pure Go, default) or "sqlite3" (cgo)
	Driver string `yaml:"driver"`
}

type PostgresConfig struct {
	URL string `yaml:"url"`
}

type ConsulConfig struct {
	Address    string `yaml:"address"`
	Token      string `yaml:"token"`
	Datacenter string `yaml:"datacenter"`
	Prefix     string `yaml:"prefix"`
}

type S3Config struct {
	Endpoint     string `yaml:"endpoint"`
	Bucket       string `yaml:"bucket"`
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key"`
	Prefix       string `yaml:"prefix"`
	UseSSL       bool   `yaml:"use_ssl"`
	CreateBucket bool   `yaml:"create_bucket"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // empty logs to stderr
	JSON  bool   `yaml:"json"`

	MaxSizeMB  int `yaml:"max_size_mb"`
	MaxBackups int `yaml:"max_backups"`
}

type WatchConfig struct {
	// Settle is how long a rename waits for its matching create
	Settle time.Duration `yaml:"settle"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Root:    DefaultRoot,
		Backend: DefaultBackend,
		Ignore:  []string{".git", ".git/**", "**/.git", "**/.git/**"},
		Log: LogConfig{
			Level:      "warn",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Watch: WatchConfig{Settle: DefaultSettle},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/tagit/config.yaml
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "tagit", "config.yaml")
}

// Load builds the configuration from defaults, a .env file in the working
// directory, the YAML file at path and finally TAGIT_* environment variables.
// An empty path reads DefaultPath if it exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	// .env is optional; system environment wins over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// Defaults only
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	root, err := ExpandPath(cfg.Root)
	if err != nil {
		return nil, err
	}
	cfg.Root = root

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString(&c.Root, "TAGIT_ROOT")
	setString(&c.Backend, "TAGIT_BACKEND")
	setString(&c.SQLite.Path, "TAGIT_DB")
	setString(&c.SQLite.Driver, "TAGIT_SQLITE_DRIVER")
	setString(&c.Postgres.URL, "TAGIT_POSTGRES_URL")
	setString(&c.Consul.Address, "TAGIT_CONSUL_ADDR")
	setString(&c.Consul.Token, "TAGIT_CONSUL_TOKEN")
	setString(&c.S3.Endpoint, "TAGIT_S3_ENDPOINT")
	setString(&c.S3.Bucket, "TAGIT_S3_BUCKET")
	setString(&c.S3.AccessKey, "TAGIT_S3_ACCESS_KEY")
	setString(&c.S3.SecretKey, "TAGIT_S3_SECRET_KEY")
	setString(&c.Log.Level, "TAGIT_LOG_LEVEL")
	setString(&c.Log.File, "TAGIT_LOG_FILE")

	if v := os.Getenv("TAGIT_IGNORE"); v != "" {
		c.Ignore = nil
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				c.Ignore = append(c.Ignore, p)
			}
		}
	}
	if v := os.Getenv("TAGIT_WATCH_SETTLE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Watch.Settle = d
		}
	}
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	known := false
	for _, b := range Backends {
		if c.Backend == b {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown backend %q (want one of %s)", c.Backend, strings.Join(Backends, ", "))
	}

	switch c.Backend {
	case "sqlite":
		if d := c.SQLite.Driver; d != "" && d != "sqlite" && d != "sqlite3" {
			return fmt.Errorf("unknown sqlite driver %q (want sqlite or sqlite3)", d)
		}
	case "postgres":
		if c.Postgres.URL == "" {
			return errors.New("postgres backend needs postgres.url or TAGIT_POSTGRES_URL")
		}
	case "s3":
		if c.S3.Endpoint == "" || c.S3.Bucket == "" {
			return errors.New("s3 backend needs s3.endpoint and s3.bucket")
		}
	}

	if c.Watch.Settle <= 0 {
		c.Watch.Settle = DefaultSettle
	}
	return nil
}

// ExpandPath expands a leading ~ and makes path absolute
func ExpandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}
	return filepath.Abs(path)
}
