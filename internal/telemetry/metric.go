package telemetry

import "fmt"

const (
	MetricAltitude     Metric = "altitude"
	MetricVelocity     Metric = "velocity"
	MetricAcceleration Metric = "acceleration"
	MetricTemperature  Metric = "temperature"
	MetricPressure     Metric = "pressure"
)

// Metric names a plottable measurement carried by a Sample.
type Metric string

var metricCaptions = map[Metric]string{
	MetricAltitude:     "Altitude (m)",
	MetricVelocity:     "Velocity (m/s)",
	MetricAcceleration: "Acceleration (m/s²)",
	MetricTemperature:  "Temperature (°C)",
	MetricPressure:     "Pressure (kPa)",
}

// Metrics returns all plottable metrics in display order.
func Metrics() []Metric {
	return []Metric{
		MetricAltitude,
		MetricVelocity,
		MetricAcceleration,
		MetricTemperature,
		MetricPressure,
	}
}

// ParseMetric validates a metric name coming from configuration.
func ParseMetric(s string) (Metric, error) {
	m := Metric(s)
	if _, ok := metricCaptions[m]; !ok {
		return "", fmt.Errorf("unknown metric: %q", s)
	}
	return m, nil
}

// Caption returns the axis caption for the metric, with units.
func (m Metric) Caption() string {
	if c, ok := metricCaptions[m]; ok {
		return c
	}
	return string(m)
}

func (m Metric) String() string {
	return string(m)
}
