package telemetry

// Phase labels the stage of flight a sample was taken in.
type Phase string

const (
	PhasePreLaunch     Phase = "Pre-Launch"
	PhasePoweredAscent Phase = "Powered Ascent"
	PhaseCoasting      Phase = "Coasting"
	PhaseApogee        Phase = "Apogee"
	PhaseDescent       Phase = "Descent"
	PhaseLanded        Phase = "Landed"
)

// Sample is one timestamped set of flight measurements. Metric fields are
// pointers so that frames from external feeds may carry any subset of them;
// a nil field means the feed did not report that metric for this tick.
type Sample struct {
	Timestamp    string   `json:"timestamp,omitempty"`    // wall clock, e.g. "15:04:05.000"
	FlightTime   *float64 `json:"flight_time,omitempty"`  // seconds since launch clock start
	Phase        *Phase   `json:"phase,omitempty"`        // current flight phase, if known
	Altitude     *float64 `json:"altitude,omitempty"`     // meters
	Velocity     *float64 `json:"velocity,omitempty"`     // m/s
	Acceleration *float64 `json:"acceleration,omitempty"` // m/s²
	Temperature  *float64 `json:"temperature,omitempty"`  // °C
	Pressure     *float64 `json:"pressure,omitempty"`     // kPa
}

// Float returns a pointer to v, for building samples in place.
func Float(v float64) *float64 {
	return &v
}

// Value returns the measurement for the given metric and whether the sample
// carries it.
func (s *Sample) Value(m Metric) (float64, bool) {
	var v *float64
	switch m {
	case MetricAltitude:
		v = s.Altitude
	case MetricVelocity:
		v = s.Velocity
	case MetricAcceleration:
		v = s.Acceleration
	case MetricTemperature:
		v = s.Temperature
	case MetricPressure:
		v = s.Pressure
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}
