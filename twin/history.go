package twin

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// SimulateHistory generates n realistic samples for a 3-phase induction
// motor session, keyed entry_001..entry_NNN and timestamped 10 s apart
// ending near start. The series includes a warm-up ramp over the first 100
// samples, a slow load oscillation, mild phase unbalance, and simulated
// degradation over the last 30% of the run (rising vibration with
// occasional bearing spikes, drooping power factor).
//
// Deterministic given the same n and rng seed.
func SimulateHistory(n int, rng *rand.Rand, start time.Time) map[string]RawRecord {
	logs := make(map[string]RawRecord, n)
	first := start.Add(-time.Duration(n) * 10 * time.Second)

	const (
		baseCurrent = 70.0
		baseVoltage = 400.0
	)

	for i := 1; i <= n; i++ {
		tNorm := float64(i) / float64(n)
		warmup := math.Min(1, float64(i)/100)
		loadWave := 0.8 + 0.4*math.Sin(2*math.Pi*tNorm*3)
		degradation := 1 + 0.3*math.Max(0, tNorm-0.7)

		i1 := baseCurrent * loadWave * gauss(rng, 1, 0.03) * degradation
		i2 := baseCurrent * 1.03 * loadWave * gauss(rng, 1, 0.03) * degradation
		i3 := baseCurrent * 0.97 * loadWave * gauss(rng, 1, 0.03) * degradation

		ripple := 0.01 * math.Sin(2*math.Pi*tNorm*5)
		v1 := baseVoltage*(1+ripple) + gauss(rng, 0, 2)
		v2 := baseVoltage*(1-ripple/2) + gauss(rng, 0, 2)
		v3 := baseVoltage*(1+ripple/3) + gauss(rng, 0, 2)

		freq := 50 + gauss(rng, 0, 0.05)

		pf := 0.94 - 0.04*(1-loadWave) - 0.05*(degradation-1) + gauss(rng, 0, 0.01)
		pf = math.Max(0.75, math.Min(0.98, pf))

		t1 := 35 + 45*warmup + 8*(degradation-1) + gauss(rng, 0, 1)
		t2 := t1 - 4 + gauss(rng, 0, 1)

		vib := 1.5 + 0.8*loadWave + 4*(degradation-1) + gauss(rng, 0, 0.2)
		if float64(i) > float64(n)*0.7 && rng.Float64() < 0.05 {
			vib += 1 + rng.Float64()*1.5
		}

		ts := first.Add(time.Duration(i) * 10 * time.Second).Format(TimestampLayout)
		logs[HistoryKey(i)] = RawRecord{
			I1: ptr(Round2(i1)), I2: ptr(Round2(i2)), I3: ptr(Round2(i3)),
			V1: ptr(Round2(v1)), V2: ptr(Round2(v2)), V3: ptr(Round2(v3)),
			Frequency: ptr(Round2(freq)),
			PF:        ptr(Round2(pf)),
			T1:        ptr(Round2(t1)), T2: ptr(Round2(t2)),
			Vibration: ptr(Round2(vib)),
			Timestamp: ts,
		}
	}
	return logs
}

// HistoryKey names the i-th history entry (1-based), zero-padded so keys
// also read in order in the database console.
func HistoryKey(i int) string {
	return fmt.Sprintf("entry_%03d", i)
}

func gauss(rng *rand.Rand, mean, stddev float64) float64 {
	return mean + rng.NormFloat64()*stddev
}
