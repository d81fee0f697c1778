package twin

import "math/rand"

// Jitter produces a bounded random perturbation in [-amplitude, amplitude].
// The synthetic generator's jitter is intentionally non-deterministic in
// production; it is an injection seam so tests can pin the sine backbone
// with ZeroJitter.
type Jitter func(amplitude float64) float64

// RandomJitter returns a seeded uniform jitter source. Not thread-safe;
// call it from the loop goroutine only.
func RandomJitter(seed int64) Jitter {
	r := rand.New(rand.NewSource(seed))
	return func(amplitude float64) float64 {
		return (r.Float64()*2 - 1) * amplitude
	}
}

// ZeroJitter disables jitter, leaving the deterministic waveform.
func ZeroJitter(float64) float64 {
	return 0
}
