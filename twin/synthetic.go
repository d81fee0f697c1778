package twin

import "math"

// Synthetic baselines mirror the ranges of the real motor feed (I ~72 A,
// V ~400 V, T1 ~55 C, T2 ~50 C, f ~50 Hz, pf ~0.9, vibration ~2.1 mm/s) so
// the fallback display is indistinguishable in scale from live data.
const (
	synthCurrentBase = 72.0
	synthVoltageBase = 400.0
	synthT1Base      = 55.0
	synthT2Base      = 50.0
	synthPFBase      = 0.9
	synthVibBase     = 2.0
)

// Synthetic generates a pseudo-periodic fallback signal when no real data
// exists. Output is a pure function of the step counter plus the injected
// jitter: each field oscillates at a small distinct frequency around its
// baseline, and everything is rounded to 2 decimals.
type Synthetic struct {
	step   int
	jitter Jitter
}

// NewSynthetic creates a generator with the given jitter source.
func NewSynthetic(jitter Jitter) *Synthetic {
	return &Synthetic{jitter: jitter}
}

func wave(step int, freq, amplitude float64) float64 {
	return amplitude * math.Sin(2*math.Pi*freq*float64(step))
}

// At computes the synthetic Reading and vibration scalar for one step.
func (g *Synthetic) At(step int) (Reading, float64) {
	j := g.jitter
	reading := Reading{
		Current: Phases{
			PhaseA: Round2(synthCurrentBase + wave(step, 0.021, 1.5) + j(0.25)),
			PhaseB: Round2(synthCurrentBase + 0.5 + wave(step, 0.026, 1.4) + j(0.25)),
			PhaseC: Round2(synthCurrentBase - 0.5 + wave(step, 0.031, 1.6) + j(0.25)),
		},
		Voltage: Phases{
			PhaseA: Round2(synthVoltageBase + wave(step, 0.013, 2.0) + j(0.3)),
			PhaseB: Round2(synthVoltageBase + 1 + wave(step, 0.017, 1.8) + j(0.3)),
			PhaseC: Round2(synthVoltageBase - 1 + wave(step, 0.019, 2.2) + j(0.3)),
		},
		Frequency: Round2(DefaultFrequency + wave(step, 0.011, 0.1) + j(0.01)),
		Temperature: Temperatures{
			T1: Round2(synthT1Base + wave(step, 0.009, 1.5) + j(0.2)),
			T2: Round2(synthT2Base + wave(step, 0.008, 1.2) + j(0.2)),
		},
		PowerFactor: Round2(synthPFBase + wave(step, 0.007, 0.02) + j(0.005)),
	}

	// Vibration keeps the live feed's slow+mid sine mix so the chart shows
	// a gentle beat pattern rather than a flat tone.
	t := float64(step) / 40.0
	slow := math.Sin(2 * math.Pi * 0.06 * t)
	mid := math.Sin(2 * math.Pi * 0.32 * t)
	vibration := Round2(synthVibBase + 0.35*slow + 0.2*mid + j(0.04))

	return reading, vibration
}

// Next returns the value at the current step and advances the counter.
func (g *Synthetic) Next() (Reading, float64) {
	reading, vibration := g.At(g.step)
	g.step++
	return reading, vibration
}
