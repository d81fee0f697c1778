package twin

// Field defaults substituted by Normalize when a raw field is absent.
// The remote contract fixes the raw field names (I1..I3, V1..V3, T1, T2,
// frequency, pf, vibration); they must be preserved exactly.
const (
	DefaultFrequency = 50.0
)

// RawRecord is one telemetry record as it arrives from the data source.
// Every numeric field is optional; nil means the sensor did not report it.
type RawRecord struct {
	I1        *float64 `json:"I1,omitempty"`
	I2        *float64 `json:"I2,omitempty"`
	I3        *float64 `json:"I3,omitempty"`
	V1        *float64 `json:"V1,omitempty"`
	V2        *float64 `json:"V2,omitempty"`
	V3        *float64 `json:"V3,omitempty"`
	T1        *float64 `json:"T1,omitempty"`
	T2        *float64 `json:"T2,omitempty"`
	Frequency *float64 `json:"frequency,omitempty"`
	PF        *float64 `json:"pf,omitempty"`
	Vibration *float64 `json:"vibration,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
}

// Phases holds one value per phase of a three-phase quantity.
type Phases struct {
	PhaseA float64 `json:"phaseA"`
	PhaseB float64 `json:"phaseB"`
	PhaseC float64 `json:"phaseC"`
}

// Temperatures holds the two winding/bearing temperature probes.
type Temperatures struct {
	T1 float64 `json:"t1"`
	T2 float64 `json:"t2"`
}

// Reading is the canonical, fully-defaulted display form of one motor
// snapshot. Readings are values: a new Reading is built on every update and
// never mutated in place.
type Reading struct {
	Current     Phases       `json:"current"`
	Voltage     Phases       `json:"voltage"`
	Frequency   float64      `json:"frequency"`
	Temperature Temperatures `json:"temperature"`
	PowerFactor float64      `json:"powerFactor"`
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Normalize converts one raw record into a Reading. Total: every output
// field is defined for any input; absent currents, voltages, temperatures
// and power factor map to 0, absent frequency to DefaultFrequency.
func Normalize(raw RawRecord) Reading {
	freq := DefaultFrequency
	if raw.Frequency != nil {
		freq = *raw.Frequency
	}
	return Reading{
		Current:     Phases{PhaseA: orZero(raw.I1), PhaseB: orZero(raw.I2), PhaseC: orZero(raw.I3)},
		Voltage:     Phases{PhaseA: orZero(raw.V1), PhaseB: orZero(raw.V2), PhaseC: orZero(raw.V3)},
		Frequency:   freq,
		Temperature: Temperatures{T1: orZero(raw.T1), T2: orZero(raw.T2)},
		PowerFactor: orZero(raw.PF),
	}
}

// VibrationOf extracts the scalar vibration value of a raw record, 0 when
// absent. Vibration feeds the display series rather than the Reading.
func VibrationOf(raw RawRecord) float64 {
	return orZero(raw.Vibration)
}
