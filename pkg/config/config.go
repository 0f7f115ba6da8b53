package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Snapshot struct {
		// Source is a local file path or an http(s) URL delivering the
		// startup configuration snapshot. Fetch failure is non-fatal.
		Source  string        `yaml:"source"`
		Timeout time.Duration `yaml:"timeout" default:"10s"`
	} `yaml:"snapshot"`
	Storage struct {
		Type  string `yaml:"type" default:"memory"` // memory | redis | postgres
		Redis struct {
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"signaldesk"`
		} `yaml:"redis"`
		Postgres struct {
			DSN string `yaml:"dsn"`
		} `yaml:"postgres"`
	} `yaml:"storage"`
	Archive struct {
		Type  string `yaml:"type" default:"none"` // none | kafka | clickhouse
		Kafka struct {
			Brokers      []string      `yaml:"brokers"`
			Topic        string        `yaml:"topic" default:"signals.delivered"`
			RequiredAcks int           `yaml:"required_acks" default:"-1"`
			Compression  string        `yaml:"compression" default:"gzip"`
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			Async        bool          `yaml:"async" default:"true"`
		} `yaml:"kafka"`
		ClickHouse struct {
			Host        string        `yaml:"host"`
			Port        int           `yaml:"port" default:"9000"`
			Database    string        `yaml:"database" default:"signaldesk"`
			User        string        `yaml:"user" default:"default"`
			Password    string        `yaml:"password"`
			DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
			ReadTimeout time.Duration `yaml:"read_timeout" default:"10s"`
		} `yaml:"clickhouse"`
	} `yaml:"archive"`
	Session struct {
		DefaultLanguage  string        `yaml:"default_language" default:"en"`
		DelayMin         time.Duration `yaml:"delay_min" default:"1200ms"`
		DelayMax         time.Duration `yaml:"delay_max" default:"2400ms"`
		ForexExpirations []int         `yaml:"forex_expirations"` // seconds
		OTCExpirations   []int         `yaml:"otc_expirations"`   // seconds
	} `yaml:"session"`
}

// Load reads and parses a YAML configuration file. Defaults are applied
// before the file so an explicit false in YAML is not mistaken for an unset
// field and flipped back.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyExpirationDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SNAPSHOT_SOURCE"); v != "" {
		c.Snapshot.Source = v
	}
	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		c.Storage.Type = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Storage.Redis.Host = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Storage.Postgres.DSN = v
	}
	if v := os.Getenv("ARCHIVE_TYPE"); v != "" {
		c.Archive.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Archive.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Archive.Kafka.Topic = v
	}

	return c, nil
}

// Default returns the built-in configuration without reading a file.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	c.applyExpirationDefaults()
	return &c
}

func (c *Config) applyExpirationDefaults() {
	// Offered expiration menus per market; shortest is pre-selected by the
	// selector. defaults tags cannot express int slices cleanly, so these
	// live here.
	if len(c.Session.ForexExpirations) == 0 {
		c.Session.ForexExpirations = []int{60, 120, 180, 300}
	}
	if len(c.Session.OTCExpirations) == 0 {
		c.Session.OTCExpirations = []int{5, 15, 30, 60}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "memory", "redis", "postgres":
	default:
		return fmt.Errorf("storage.type must be 'memory', 'redis' or 'postgres', got '%s'", c.Storage.Type)
	}
	if c.Storage.Type == "postgres" && c.Storage.Postgres.DSN == "" {
		return fmt.Errorf("storage.postgres.dsn is required")
	}

	switch c.Archive.Type {
	case "none", "kafka", "clickhouse":
	default:
		return fmt.Errorf("archive.type must be 'none', 'kafka' or 'clickhouse', got '%s'", c.Archive.Type)
	}
	if c.Archive.Type == "kafka" && len(c.Archive.Kafka.Brokers) == 0 {
		return fmt.Errorf("archive.kafka.brokers cannot be empty")
	}
	if c.Archive.Type == "clickhouse" && c.Archive.ClickHouse.Host == "" {
		return fmt.Errorf("archive.clickhouse.host is required")
	}

	if c.Session.DelayMin <= 0 || c.Session.DelayMax < c.Session.DelayMin {
		return fmt.Errorf("session delay range is invalid: min=%s max=%s", c.Session.DelayMin, c.Session.DelayMax)
	}
	return nil
}
