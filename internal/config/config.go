// Package config loads event-ingest settings.
//
// Values are layered, later layers winning: built-in defaults, an optional
// YAML file, then environment variables. Command-line flags are applied on
// top by the caller. A .env file in the working directory is loaded into the
// environment first when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/event-ingest/internal/fetch"
	"github.com/pfrederiksen/event-ingest/internal/notifier"
	"github.com/pfrederiksen/event-ingest/internal/router"
	"github.com/pfrederiksen/event-ingest/internal/storage"
)

// Environment variables
const (
	EnvDataDir       = "EVENT_INGEST_DATA_DIR"
	EnvStore         = "EVENT_INGEST_STORE"
	EnvTimeout       = "EVENT_INGEST_TIMEOUT"
	EnvConcurrency   = "EVENT_INGEST_CONCURRENCY"
	EnvRate          = "EVENT_INGEST_RATE"
	EnvLogLevel      = "EVENT_INGEST_LOG_LEVEL"
	EnvEncryptionKey = "EVENT_INGEST_ENCRYPTION_KEY"
	EnvListenAddress = "EVENT_INGEST_ADDR"
	EnvMaxBatch      = "EVENT_INGEST_MAX_BATCH"

	EnvTwitterAPIKey       = "TWITTER_API_KEY"
	EnvTwitterAPISecret    = "TWITTER_API_SECRET"
	EnvTwitterAccessToken  = "TWITTER_ACCESS_TOKEN"
	EnvTwitterAccessSecret = "TWITTER_ACCESS_SECRET"
)

// DefaultMaxBatch is the default limit on URLs in one batch parse request
const DefaultMaxBatch = 100

type Server struct {
	ListenAddress string        `yaml:"listen_address"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	// MaxBatch is the most URLs accepted in one batch parse request
	MaxBatch int `yaml:"max_batch"`
}

type Fetch struct {
	Timeout time.Duration `yaml:"timeout"`
	// HostRate is the request rate per host in requests per second; zero
	// disables limiting
	HostRate float64 `yaml:"host_rate"`
}

type Config struct {
	// Store is a data directory or "sqlite:<path>"
	Store           string `yaml:"store"`
	Concurrency     int    `yaml:"concurrency"`
	LogLevel        string `yaml:"log_level"`
	EncryptionKey   string `yaml:"encryption_key"`
	MetricsTextfile string `yaml:"metrics_textfile"`

	Fetch   Fetch                       `yaml:"fetch"`
	Server  Server                      `yaml:"server"`
	Twitter notifier.TwitterCredentials `yaml:"twitter"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		Store:       storage.DefaultDataDir,
		Concurrency: router.DefaultConcurrency,
		LogLevel:    "INFO",
		Fetch: Fetch{
			Timeout: fetch.DefaultTimeout,
		},
		Server: Server{
			ListenAddress: ":8080",
			ReadTimeout:   15 * time.Second,
			WriteTimeout:  60 * time.Second,
			IdleTimeout:   60 * time.Second,
			MaxBatch:      DefaultMaxBatch,
		},
	}
}

// LoadDotEnv loads .env files into the environment without overriding
// variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load builds the configuration from defaults, the YAML file at path (when
// path is not empty) and the environment
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDataDir); v != "" {
		c.Store = v
	}
	if v := os.Getenv(EnvStore); v != "" {
		c.Store = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvEncryptionKey); v != "" {
		c.EncryptionKey = v
	}
	if v := os.Getenv(EnvListenAddress); v != "" {
		c.Server.ListenAddress = v
	}

	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Fetch.Timeout = d
	}
	if v := os.Getenv(EnvConcurrency); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvConcurrency, err)
		}
		c.Concurrency = n
	}
	if v := os.Getenv(EnvMaxBatch); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxBatch, err)
		}
		c.Server.MaxBatch = n
	}
	if v := os.Getenv(EnvRate); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRate, err)
		}
		c.Fetch.HostRate = r
	}

	for env, field := range map[string]*string{
		EnvTwitterAPIKey:       &c.Twitter.APIKey,
		EnvTwitterAPISecret:    &c.Twitter.APISecret,
		EnvTwitterAccessToken:  &c.Twitter.AccessToken,
		EnvTwitterAccessSecret: &c.Twitter.AccessSecret,
	} {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}
	return nil
}

// Validate reports settings that cannot work
func (c *Config) Validate() error {
	var errs []error
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch timeout must be positive, got %s", c.Fetch.Timeout))
	}
	if c.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("concurrency must be positive, got %d", c.Concurrency))
	}
	if c.Fetch.HostRate < 0 {
		errs = append(errs, fmt.Errorf("host rate must not be negative, got %g", c.Fetch.HostRate))
	}
	if c.Server.MaxBatch <= 0 {
		errs = append(errs, fmt.Errorf("max batch must be positive, got %d", c.Server.MaxBatch))
	}
	if c.Store == "" {
		errs = append(errs, errors.New("store must be set"))
	}
	return errors.Join(errs...)
}
