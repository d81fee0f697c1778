package twin

import "math"

// SmoothingMode selects how displayed values chase their target.
type SmoothingMode string

const (
	// SmoothExponential moves a fixed fraction of the remaining distance
	// per tick: next = prev + (target-prev)*alpha. Error decays
	// geometrically; the target is approached but never reached exactly.
	SmoothExponential SmoothingMode = "exponential"

	// SmoothCapped bounds the per-tick change by MaxDelta regardless of how
	// far the target is: next = prev + sign(target-prev)*min(|target-prev|,
	// maxDelta). Converges in |target-prev|/maxDelta ticks.
	SmoothCapped SmoothingMode = "capped"
)

// Smoothing is one smoothing policy. The two modes are mutually exclusive
// product choices, not a hybrid: Alpha applies only to SmoothExponential,
// MaxDelta only to SmoothCapped.
type Smoothing struct {
	Mode     SmoothingMode `yaml:"mode"`
	Alpha    float64       `yaml:"alpha,omitempty"`
	MaxDelta float64       `yaml:"max_delta,omitempty"`
}

// Round2 rounds to 2 decimal places. Every displayed value passes through
// it so the UI and serialized comparisons never see float noise.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Step produces the next displayed value between prev and target under the
// configured policy, rounded to 2 decimals. Total for all inputs.
func (s Smoothing) Step(prev, target float64) float64 {
	switch s.Mode {
	case SmoothCapped:
		delta := target - prev
		if math.Abs(delta) > s.MaxDelta {
			delta = math.Copysign(s.MaxDelta, delta)
		}
		return Round2(prev + delta)
	default:
		return Round2(prev + (target-prev)*s.Alpha)
	}
}

// StepReading applies Step independently to every numeric field of a
// Reading, returning a new Reading.
func (s Smoothing) StepReading(prev, target Reading) Reading {
	return Reading{
		Current: Phases{
			PhaseA: s.Step(prev.Current.PhaseA, target.Current.PhaseA),
			PhaseB: s.Step(prev.Current.PhaseB, target.Current.PhaseB),
			PhaseC: s.Step(prev.Current.PhaseC, target.Current.PhaseC),
		},
		Voltage: Phases{
			PhaseA: s.Step(prev.Voltage.PhaseA, target.Voltage.PhaseA),
			PhaseB: s.Step(prev.Voltage.PhaseB, target.Voltage.PhaseB),
			PhaseC: s.Step(prev.Voltage.PhaseC, target.Voltage.PhaseC),
		},
		Frequency: s.Step(prev.Frequency, target.Frequency),
		Temperature: Temperatures{
			T1: s.Step(prev.Temperature.T1, target.Temperature.T1),
			T2: s.Step(prev.Temperature.T2, target.Temperature.T2),
		},
		PowerFactor: s.Step(prev.PowerFactor, target.PowerFactor),
	}
}
