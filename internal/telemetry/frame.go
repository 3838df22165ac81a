package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEmptyFrame is returned when a frame decodes cleanly but carries none of
// the recognized telemetry keys.
var ErrEmptyFrame = errors.New("frame carries no recognized telemetry fields")

// ParseFrame decodes one newline-terminated UTF-8 frame as produced by serial
// and TCP feeds. Frames are JSON objects with any subset of the recognized
// keys; unknown keys are ignored. A frame with no recognized keys at all is
// rejected so that line noise does not produce empty samples.
func ParseFrame(data []byte) (*Sample, error) {
	var s Sample
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding frame: %w", err)
	}
	if s.empty() {
		return nil, ErrEmptyFrame
	}
	return &s, nil
}

func (s *Sample) empty() bool {
	return s.Timestamp == "" &&
		s.FlightTime == nil &&
		s.Phase == nil &&
		s.Altitude == nil &&
		s.Velocity == nil &&
		s.Acceleration == nil &&
		s.Temperature == nil &&
		s.Pressure == nil
}
