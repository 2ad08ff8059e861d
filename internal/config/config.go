// FilePath: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the hub service
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Keycloak   KeycloakConfig
	Redis      RedisConfig
	AgentAuth  AgentAuthConfig
	Dispatch   DispatchConfig
	Monitoring MonitoringConfig
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	TimescaleDB PostgresConfig `mapstructure:"timescaledb"`
	AppDB       PostgresConfig `mapstructure:"postgres_app"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type KeycloakConfig struct {
	URL          string `mapstructure:"url"`
	Realm        string `mapstructure:"realm"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AgentAuthConfig covers the shared secret used to mint and verify the
// bearer tokens the agent presents on its telemetry callbacks.
type AgentAuthConfig struct {
	SharedSecret string        `mapstructure:"shared_secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
}

// DispatchConfig drives the task dispatcher tick.
type DispatchConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	AgentURL       string        `mapstructure:"agent_url"`
	Interval       time.Duration `mapstructure:"interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type MonitoringConfig struct {
	LogLevel           string `mapstructure:"log_level"`
	PrometheusEndpoint string `mapstructure:"prometheus_endpoint"`
	LokiEndpoint       string `mapstructure:"loki_endpoint"`
}

// Load initializes configuration from environment variables and config file
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PLANTHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	setDefaults(v)

	// Load config file if exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/planthub")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.postgres_app.host", "localhost")
	v.SetDefault("database.postgres_app.port", 5432)
	v.SetDefault("database.postgres_app.sslmode", "disable")
	v.SetDefault("database.timescaledb.host", "localhost")
	v.SetDefault("database.timescaledb.port", 5433)
	v.SetDefault("database.timescaledb.sslmode", "disable")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("agentauth.token_ttl", 24*time.Hour)

	v.SetDefault("dispatch.enabled", true)
	v.SetDefault("dispatch.interval", 10*time.Second)
	v.SetDefault("dispatch.request_timeout", 5*time.Second)

	v.SetDefault("monitoring.log_level", "info")
}

func validate(cfg *Config) error {
	if cfg.AgentAuth.SharedSecret == "" {
		return fmt.Errorf("agentauth.shared_secret must be set")
	}
	if cfg.Dispatch.Enabled && cfg.Dispatch.AgentURL == "" {
		return fmt.Errorf("dispatch.agent_url must be set when dispatch is enabled")
	}
	if cfg.Dispatch.Interval <= 0 {
		return fmt.Errorf("dispatch.interval must be positive")
	}
	return nil
}
