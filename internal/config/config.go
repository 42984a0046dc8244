package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoggingConfig holds the logging configuration.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warning, error (default: info)
	Level string `yaml:"level"`
}

// GobConfig holds the configuration for the gob snapshot writer.
type GobConfig struct {
	RootPath string `yaml:"root_path"`
}

// ClickHouseConfig holds the connection details for the ClickHouse writer.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// NATSConfig holds the connection details for the NATS writer.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// WriterDef defines one optional report sink. The CSV reports are always written
// and need no entry here.
type WriterDef struct {
	Type       string           `yaml:"type"`
	Enabled    bool             `yaml:"enabled"`
	Gob        GobConfig        `yaml:"gob"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	NATS       NATSConfig       `yaml:"nats"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	// Textfile is the path of the .prom file written after each run. Empty disables it.
	Textfile string `yaml:"textfile"`
}

// SMTPConfig holds the SMTP server settings for e-mail notifications.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"` // Comma separated list of recipients
}

// NotificationConfig controls the run summary e-mail.
type NotificationConfig struct {
	Enabled bool       `yaml:"enabled"`
	Subject string     `yaml:"subject"`
	Top     int        `yaml:"top"` // Number of tag rows included in the summary
	SMTP    SMTPConfig `yaml:"smtp"`
}

// APIConfig holds the settings of the read-only report API.
type APIConfig struct {
	ListenAddr   string `yaml:"listen_addr"`
	SnapshotRoot string `yaml:"snapshot_root"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Logging      LoggingConfig      `yaml:"logging"`
	Writers      []WriterDef        `yaml:"writers"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Notification NotificationConfig `yaml:"notification"`
	API          APIConfig          `yaml:"api"`
}

const (
	defaultLogLevel     = "info"
	defaultSubject      = "FlowTagger run summary"
	defaultTop          = 10
	defaultSMTPPort     = 25
	defaultListenAddr   = ":8080"
	defaultSnapshotRoot = "./snapshots"
	defaultClickHouse   = 9000
	defaultNATSSubject  = "flowtagger.reports"
)

var validLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warning": true, "warn": true, "error": true,
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads the configuration from a YAML file and returns a Config struct.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filePath, err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Notification.Subject == "" {
		c.Notification.Subject = defaultSubject
	}
	if c.Notification.Top <= 0 {
		c.Notification.Top = defaultTop
	}
	if c.Notification.SMTP.Port == 0 {
		c.Notification.SMTP.Port = defaultSMTPPort
	}
	if c.API.ListenAddr == "" {
		c.API.ListenAddr = defaultListenAddr
	}
	if c.API.SnapshotRoot == "" {
		c.API.SnapshotRoot = defaultSnapshotRoot
	}
	for i := range c.Writers {
		w := &c.Writers[i]
		w.Type = strings.ToLower(strings.TrimSpace(w.Type))
		switch w.Type {
		case "gob":
			if w.Gob.RootPath == "" {
				w.Gob.RootPath = c.API.SnapshotRoot
			}
		case "clickhouse":
			if w.ClickHouse.Port == 0 {
				w.ClickHouse.Port = defaultClickHouse
			}
		case "nats":
			if w.NATS.Subject == "" {
				w.NATS.Subject = defaultNATSSubject
			}
		}
	}
}

// Validate reports configuration errors that would make a run fail late.
func (c *Config) Validate() error {
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	if c.Notification.SMTP.Port < 0 {
		return fmt.Errorf("smtp port must not be negative, got %d", c.Notification.SMTP.Port)
	}
	if c.Notification.Enabled && c.Notification.SMTP.Host == "" {
		return fmt.Errorf("notification is enabled but smtp.host is empty")
	}
	for i, w := range c.Writers {
		if w.Type == "" {
			return fmt.Errorf("writers[%d]: type is required", i)
		}
	}
	return nil
}

// SnapshotRoot returns the root path of the first enabled gob writer, falling back
// to the API snapshot root.
func (c *Config) SnapshotRoot() string {
	for _, w := range c.Writers {
		if w.Enabled && w.Type == "gob" {
			return w.Gob.RootPath
		}
	}
	return c.API.SnapshotRoot
}
