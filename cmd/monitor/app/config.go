package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flightdeck/rocket-telemetry/internal/monitor"
	"github.com/flightdeck/rocket-telemetry/internal/pipeline"
	"github.com/flightdeck/rocket-telemetry/internal/source"
	"github.com/flightdeck/rocket-telemetry/internal/telemetry"
)

const (
	SourceSimulator SourceType = "simulator"
	SourceSerial    SourceType = "serial"
	SourceTCP       SourceType = "tcp"

	defaultListenAddr = "127.0.0.1:8080"
)

type SourceType string

var validSourceTypes = map[SourceType]struct{}{
	SourceSimulator: {},
	SourceSerial:    {},
	SourceTCP:       {},
}

// Duration wraps time.Duration with YAML support ("50ms", "1s").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	duration, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parsing duration: %w", err)
	}
	if duration <= 0 {
		return fmt.Errorf("duration must be positive: %s", duration)
	}

	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config is the monitor configuration.
type Config struct {
	Settings Settings      `yaml:"settings"`
	Source   SourceConfig  `yaml:"source"`
	Charts   []ChartConfig `yaml:"charts"`
}

// Settings holds global knobs.
type Settings struct {
	LogLevel       string   `yaml:"logLevel"`
	ListenAddr     string   `yaml:"listenAddr"`
	HistorySize    int      `yaml:"historySize"`
	PollInterval   Duration `yaml:"pollInterval"`
	RenderInterval Duration `yaml:"renderInterval"`
}

// SourceConfig selects and parameterizes the telemetry feed.
type SourceConfig struct {
	Type   SourceType   `yaml:"type"`
	Serial SerialConfig `yaml:"serial"`
	TCP    TCPConfig    `yaml:"tcp"`
}

// SerialConfig holds serial feed parameters.
type SerialConfig struct {
	Device   string `yaml:"device"`
	BaudRate uint   `yaml:"baudRate"`
}

// TCPConfig holds TCP feed parameters.
type TCPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ChartConfig is one dashboard chart.
type ChartConfig struct {
	Name   string `yaml:"name"`
	Metric string `yaml:"metric"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// LoadConfig reads, validates and applies defaults to a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Settings.ListenAddr == "" {
		c.Settings.ListenAddr = defaultListenAddr
	}
	if c.Settings.HistorySize == 0 {
		c.Settings.HistorySize = pipeline.DefaultHistorySize
	}
	if c.Settings.PollInterval == 0 {
		c.Settings.PollInterval = Duration(pipeline.DefaultPollInterval)
	}
	if c.Settings.RenderInterval == 0 {
		c.Settings.RenderInterval = Duration(monitor.DefaultRenderInterval)
	}
	if c.Source.Type == "" {
		c.Source.Type = SourceSimulator
	}

	// The stock dashboard plots altitude and velocity.
	if len(c.Charts) == 0 {
		c.Charts = []ChartConfig{
			{Name: "graph1", Metric: string(telemetry.MetricAltitude)},
			{Name: "graph2", Metric: string(telemetry.MetricVelocity)},
		}
	}
	for i := range c.Charts {
		if c.Charts[i].Width == 0 {
			c.Charts[i].Width = monitor.DefaultChartWidth
		}
		if c.Charts[i].Height == 0 {
			c.Charts[i].Height = monitor.DefaultChartHeight
		}
	}
}

// Validate checks the configuration for contradictions before anything is
// connected or listening.
func (c *Config) Validate() error {
	if _, ok := validSourceTypes[c.Source.Type]; !ok {
		return fmt.Errorf("unknown source type: %q", c.Source.Type)
	}

	switch c.Source.Type {
	case SourceSerial:
		if c.Source.Serial.Device == "" {
			return fmt.Errorf("serial source requires a device path")
		}
		if !source.ValidBaudRate(c.Source.Serial.BaudRate) {
			return fmt.Errorf("unsupported baud rate: %d", c.Source.Serial.BaudRate)
		}

	case SourceTCP:
		if c.Source.TCP.Host == "" {
			return fmt.Errorf("tcp source requires a host")
		}
		if c.Source.TCP.Port < 1 || c.Source.TCP.Port > 65535 {
			return fmt.Errorf("invalid tcp port: %d", c.Source.TCP.Port)
		}
	}

	if c.Settings.HistorySize < 2 {
		return fmt.Errorf("history size must be at least 2: %d", c.Settings.HistorySize)
	}

	names := make(map[string]struct{}, len(c.Charts))
	for _, chart := range c.Charts {
		if chart.Name == "" {
			return fmt.Errorf("chart without a name")
		}
		if _, ok := names[chart.Name]; ok {
			return fmt.Errorf("duplicate chart name: %q", chart.Name)
		}
		names[chart.Name] = struct{}{}

		if _, err := telemetry.ParseMetric(chart.Metric); err != nil {
			return fmt.Errorf("chart %q: %w", chart.Name, err)
		}
		if chart.Width < 10 || chart.Height < 10 {
			return fmt.Errorf("chart %q: viewport too small: %dx%d", chart.Name, chart.Width, chart.Height)
		}
	}

	return nil
}
