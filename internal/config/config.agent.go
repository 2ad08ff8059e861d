// FilePath: internal/config/config.agent.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AgentConfig holds all configuration for the edge agent binary.
type AgentConfig struct {
	Server AgentServerConfig
	Hub    HubConfig
	Plug   PlugConfig
	Probe  ProbeConfig
}

type AgentServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// HubConfig points the agent back at the origin server for telemetry
// callbacks.
type HubConfig struct {
	URL            string        `mapstructure:"url"`
	SharedSecret   string        `mapstructure:"shared_secret"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// PlugConfig bounds the smart-plug TCP conversations.
type PlugConfig struct {
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	IOTimeout   time.Duration `mapstructure:"io_timeout"`
}

// ProbeConfig drives the DS18B20 1-wire reads.
type ProbeConfig struct {
	W1Dir        string        `mapstructure:"w1_dir"`
	Unit         string        `mapstructure:"unit"`
	ReadAttempts int           `mapstructure:"read_attempts"`
	ReadDelay    time.Duration `mapstructure:"read_delay"`
}

// LoadAgent initializes agent configuration from environment variables
// and config file
func LoadAgent() (*AgentConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("PLANTHUB_AGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8081)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("hub.request_timeout", 5*time.Second)

	v.SetDefault("plug.dial_timeout", 3*time.Second)
	v.SetDefault("plug.io_timeout", 5*time.Second)

	v.SetDefault("probe.w1_dir", "/sys/bus/w1/devices")
	v.SetDefault("probe.unit", "F")
	v.SetDefault("probe.read_attempts", 10)
	v.SetDefault("probe.read_delay", 200*time.Millisecond)

	v.SetConfigName("agent")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/planthub")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading agent config file: %w", err)
		}
	}

	var cfg AgentConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling agent config: %w", err)
	}

	if cfg.Hub.URL == "" {
		return nil, fmt.Errorf("hub.url must be set")
	}
	if cfg.Hub.SharedSecret == "" {
		return nil, fmt.Errorf("hub.shared_secret must be set")
	}
	return &cfg, nil
}
