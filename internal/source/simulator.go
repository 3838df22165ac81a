package source

import (
	"math"
	"math/rand"
	"time"

	"github.com/flightdeck/rocket-telemetry/internal/telemetry"
)

const (
	simStep = 0.1 // seconds of flight time per Read

	gravity      = 9.8  // m/s², powered ascent acceleration
	coastDecel   = 3.0  // m/s², deceleration while coasting
	descentRate  = 5.0  // m/s, parachute descent
	descentAccel = -1.0 // m/s², nominal buffeting during descent

	ignitionTime = 2.0  // phase thresholds in seconds of flight time
	burnoutTime  = 15.0
	apogeeTime   = 25.0
	descentTime  = 27.0
	landingTime  = 50.0

	seaLevelTemp     = 20.0    // °C
	lapseRate        = 0.0065  // °C per meter
	seaLevelPressure = 101.325 // kPa
	scaleHeight      = 8500.0  // meters
)

// Derived ascent end state: the motor burns from ignition to burnout.
var (
	burnDuration   = burnoutTime - ignitionTime
	burnoutSpeed   = gravity * burnDuration
	burnoutAlt     = 0.5 * gravity * burnDuration * burnDuration
	coastDuration  = apogeeTime - burnoutTime
	apogeeAltitude = burnoutAlt + burnoutSpeed*coastDuration - 0.5*coastDecel*coastDuration*coastDuration
)

// Simulator synthesizes a complete flight from a closed-form piecewise
// profile, advancing an internal clock by a fixed step on every Read.
// Connect always succeeds and resets the clock, so connecting mid-flight
// starts a fresh flight.
type Simulator struct {
	connected bool
	clock     float64
	rnd       *rand.Rand
}

// WithRand sets the noise generator, letting tests pin the sequence.
func WithRand(rnd *rand.Rand) func(*Simulator) {
	return func(s *Simulator) {
		s.rnd = rnd
	}
}

// NewSimulator creates a simulator source.
func NewSimulator(options ...func(*Simulator)) *Simulator {
	s := Simulator{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	for _, option := range options {
		option(&s)
	}

	return &s
}

func (s *Simulator) Connect() (string, error) {
	s.clock = 0
	s.connected = true
	return "simulator started", nil
}

func (s *Simulator) Disconnect() {
	s.connected = false
}

func (s *Simulator) Connected() bool {
	return s.connected
}

func (s *Simulator) Read() (*telemetry.Sample, error) {
	if !s.connected {
		return nil, nil
	}

	s.clock += simStep

	phase, altitude, velocity, acceleration := flightPoint(s.clock)
	switch phase {
	case telemetry.PhasePoweredAscent:
		acceleration += s.uniform(-0.5, 0.5)
	case telemetry.PhaseCoasting:
		acceleration += s.uniform(-0.2, 0.2)
	case telemetry.PhaseDescent:
		acceleration += s.uniform(-0.1, 0.1)
	}

	altitude = math.Max(0, altitude+s.uniform(-2, 2))
	temperature := seaLevelTemp - altitude*lapseRate + s.uniform(-1, 1)
	pressure := seaLevelPressure*math.Exp(-altitude/scaleHeight) + s.uniform(-0.1, 0.1)

	return &telemetry.Sample{
		Timestamp:    time.Now().Format("15:04:05.000"),
		FlightTime:   telemetry.Float(round2(s.clock)),
		Phase:        &phase,
		Altitude:     telemetry.Float(round2(altitude)),
		Velocity:     telemetry.Float(round2(velocity)),
		Acceleration: telemetry.Float(round2(acceleration)),
		Temperature:  telemetry.Float(round2(temperature)),
		Pressure:     telemetry.Float(round2(pressure)),
	}, nil
}

// flightPoint returns the noiseless kinematic state at flight time t.
func flightPoint(t float64) (phase telemetry.Phase, altitude, velocity, acceleration float64) {
	switch {
	case t < ignitionTime:
		return telemetry.PhasePreLaunch, 0, 0, 0

	case t < burnoutTime:
		dt := t - ignitionTime
		return telemetry.PhasePoweredAscent, 0.5 * gravity * dt * dt, gravity * dt, gravity

	case t < apogeeTime:
		dt := t - burnoutTime
		altitude = burnoutAlt + burnoutSpeed*dt - 0.5*coastDecel*dt*dt
		return telemetry.PhaseCoasting, altitude, burnoutSpeed - coastDecel*dt, -coastDecel

	case t < descentTime:
		return telemetry.PhaseApogee, apogeeAltitude, 0, 0

	case t < landingTime:
		return telemetry.PhaseDescent, apogeeAltitude - descentRate*(t-descentTime), -descentRate, descentAccel

	default:
		return telemetry.PhaseLanded, 0, 0, 0
	}
}

func (s *Simulator) uniform(lo, hi float64) float64 {
	return lo + s.rnd.Float64()*(hi-lo)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
