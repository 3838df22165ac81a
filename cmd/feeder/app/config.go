package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultListenAddr = "127.0.0.1:5000"
	defaultInterval   = 100 * time.Millisecond
)

// Config is the feeder configuration.
type Config struct {
	LogLevel   string `yaml:"logLevel"`
	ListenAddr string `yaml:"listenAddr"`
	Interval   string `yaml:"interval"`

	interval time.Duration
}

// LoadConfig reads and validates a YAML config file. A missing path yields
// the defaults, so the feeder can run with no config at all.
func LoadConfig(path string) (*Config, error) {
	config := Config{
		ListenAddr: defaultListenAddr,
		interval:   defaultInterval,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if config.ListenAddr == "" {
		config.ListenAddr = defaultListenAddr
	}
	if config.Interval != "" {
		interval, err := time.ParseDuration(config.Interval)
		if err != nil {
			return nil, fmt.Errorf("parsing interval: %w", err)
		}
		if interval <= 0 {
			return nil, fmt.Errorf("interval must be positive: %s", interval)
		}
		config.interval = interval
	}

	return &config, nil
}

// EmitInterval returns the delay between frames sent to each client.
func (c *Config) EmitInterval() time.Duration {
	return c.interval
}
