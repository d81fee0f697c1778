package twin

import (
	"math"
	"math/rand"
	"time"
)

// TimestampLayout is the wall-clock format used in telemetry records.
const TimestampLayout = "2006-01-02 15:04:05"

func ptr(v float64) *float64 {
	return &v
}

// Walker emits the live telemetry feed as a clamped random walk: each field
// takes a small bounded step per tick and soft-bounces off its range edges,
// so consecutive records differ only gradually. Vibration follows a
// slow+mid sine backbone walked with tiny noise.
type Walker struct {
	rng  *rand.Rand
	step int

	i1, i2, i3 float64
	v1, v2, v3 float64
	freq, pf   float64
	t1, t2     float64
	vib        float64
}

// NewWalker creates a walker at the nominal operating point of the motor.
func NewWalker(rng *rand.Rand) *Walker {
	return &Walker{
		rng: rng,
		i1:  72.0, i2: 72.5, i3: 71.5,
		v1: 400.0, v2: 401.0, v3: 399.0,
		freq: 50.0, pf: 0.9,
		t1: 55.0, t2: 50.0,
		vib: 2.1,
	}
}

// walk takes one bounded step within [low, high], soft-bouncing at the
// edges instead of clamping hard.
func (w *Walker) walk(v, low, high, maxDelta float64) float64 {
	v += w.rng.Float64()*2*maxDelta - maxDelta
	if v < low {
		v = low + (low-v)*0.3
	}
	if v > high {
		v = high - (v-high)*0.3
	}
	return Round2(v)
}

// Next generates the next feed record, stamped with now.
func (w *Walker) Next(now time.Time) RawRecord {
	w.i1 = w.walk(w.i1, 60, 90, 0.25)
	w.i2 = w.walk(w.i2, 60, 90, 0.25)
	w.i3 = w.walk(w.i3, 60, 90, 0.25)

	w.v1 = w.walk(w.v1, 395, 410, 0.3)
	w.v2 = w.walk(w.v2, 395, 410, 0.3)
	w.v3 = w.walk(w.v3, 395, 410, 0.3)

	w.freq = w.walk(w.freq, 49.8, 50.2, 0.005)

	pf := w.pf + (w.rng.Float64()*2-1)*0.002
	w.pf = math.Round(math.Max(0.83, math.Min(0.96, pf))*1000) / 1000

	w.t1 = w.walk(w.t1, 45, 75, 0.2)
	w.t2 = w.walk(w.t2, 40, 65, 0.2)

	// Sine backbone keeps the vibration chart gently periodic; the walk on
	// top adds realism without drowning the waveform.
	t := float64(w.step) / 40.0
	slow := math.Sin(2 * math.Pi * 0.06 * t)
	mid := math.Sin(2 * math.Pi * 0.32 * t)
	w.vib = w.walk(2.0+0.35*slow+0.2*mid, 1.2, 3.0, 0.04)
	w.step++

	return RawRecord{
		I1: ptr(w.i1), I2: ptr(w.i2), I3: ptr(w.i3),
		V1: ptr(w.v1), V2: ptr(w.v2), V3: ptr(w.v3),
		Frequency: ptr(w.freq),
		PF:        ptr(w.pf),
		T1:        ptr(w.t1), T2: ptr(w.t2),
		Vibration: ptr(w.vib),
		Timestamp: now.Format(TimestampLayout),
	}
}
