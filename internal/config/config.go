// Package config loads service configuration from the environment, with an
// optional YAML file as a base layer. Environment variables always win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration is the immutable view of all service settings, loaded once
// at startup and passed into the pipeline explicitly.
type Configuration struct {
	Service       ServiceConfig       `yaml:"service"`
	Oracle        OracleConfig        `yaml:"oracle"`
	Summarizer    SummarizerConfig    `yaml:"summarizer"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type ServiceConfig struct {
	Principal   string `yaml:"principal"`
	HTTPPort    string `yaml:"http_port"`
	MetricsPort string `yaml:"metrics_port"`
}

type OracleConfig struct {
	Provider       string        `yaml:"provider"` // mock | gemini
	GeminiAPIKeys  []string      `yaml:"gemini_api_keys"`
	GeminiModel    string        `yaml:"gemini_model"`
	MaxConcurrency int           `yaml:"max_concurrency"`
	MaxRetries     int           `yaml:"max_retries"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type SummarizerConfig struct {
	WindowSeconds int `yaml:"window_seconds"`
}

type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type ObservabilityConfig struct {
	LogLevel string `yaml:"log_level"`
	Env      string `yaml:"env"`
}

// Load builds the Configuration from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (*Configuration, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Configuration {
	return &Configuration{
		Service: ServiceConfig{
			Principal:   "svc-meeting-summary",
			HTTPPort:    "8000",
			MetricsPort: "9090",
		},
		Oracle: OracleConfig{
			Provider:       "mock",
			GeminiModel:    "gemini-2.5-flash",
			MaxConcurrency: 4,
			MaxRetries:     2,
			RequestTimeout: time.Minute,
		},
		Summarizer: SummarizerConfig{
			WindowSeconds: 300,
		},
		Kafka: KafkaConfig{
			Enabled: false,
			Topic:   "meeting.summaries",
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
		},
	}
}

func applyEnv(cfg *Configuration) {
	setString(&cfg.Service.Principal, "SERVICE_PRINCIPAL")
	setString(&cfg.Service.HTTPPort, "HTTP_PORT")
	setString(&cfg.Service.MetricsPort, "METRICS_PORT")

	setString(&cfg.Oracle.Provider, "ORACLE_PROVIDER")
	setStrings(&cfg.Oracle.GeminiAPIKeys, "GEMINI_API_KEYS")
	setString(&cfg.Oracle.GeminiModel, "GEMINI_MODEL")
	setInt(&cfg.Oracle.MaxConcurrency, "ORACLE_MAX_CONCURRENCY")
	setInt(&cfg.Oracle.MaxRetries, "ORACLE_RETRY_MAX")
	setDuration(&cfg.Oracle.RequestTimeout, "REQUEST_TIMEOUT")

	setInt(&cfg.Summarizer.WindowSeconds, "SUMMARY_WINDOW_SECONDS")

	setBool(&cfg.Kafka.Enabled, "KAFKA_ENABLED")
	setStrings(&cfg.Kafka.Brokers, "KAFKA_BROKERS")
	setString(&cfg.Kafka.Topic, "KAFKA_TOPIC_SUMMARIES")

	setString(&cfg.Observability.LogLevel, "LOG_LEVEL")
	setString(&cfg.Observability.Env, "ENV")
}

func (c *Configuration) validate() error {
	if c.Summarizer.WindowSeconds <= 0 {
		return fmt.Errorf("SUMMARY_WINDOW_SECONDS must be positive, got %d", c.Summarizer.WindowSeconds)
	}
	switch c.Oracle.Provider {
	case "mock":
	case "gemini":
		if len(c.Oracle.GeminiAPIKeys) == 0 {
			return fmt.Errorf("GEMINI_API_KEYS is required when ORACLE_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("unknown ORACLE_PROVIDER %q (expected mock or gemini)", c.Oracle.Provider)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setStrings(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		var out []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		*dst = out
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
