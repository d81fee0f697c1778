package twin

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SeedStrategy selects how the display series is pre-populated when a new
// replay buffer is seeded, so the chart does not start flat.
type SeedStrategy string

const (
	// SeedTailRaw copies the last SeedTail vibration values as-is.
	SeedTailRaw SeedStrategy = "tail-raw"
	// SeedTailSmoothed runs the last SeedTail vibration values through the
	// shaper cumulatively before appending them.
	SeedTailSmoothed SeedStrategy = "tail-smoothed"
	// SeedFullCap copies up to a full window of raw vibration values.
	SeedFullCap SeedStrategy = "full-cap"
)

// Duration wraps time.Duration so intervals read naturally in YAML ("5s",
// "1500ms") while staying typed in code.
type Duration time.Duration

// UnmarshalYAML parses Go duration strings.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"5s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the standard-library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config collapses the dashboard's pipeline variants into one parameter
// set. All top-level fields must be listed to satisfy KnownFields(true)
// strict parsing.
type Config struct {
	// Capacity bounds the display series window (observed variants used
	// 50, 150 and 500).
	Capacity int `yaml:"capacity"`
	// Smoothing is the single smoothing policy applied to both the
	// displayed Reading and the vibration series.
	Smoothing Smoothing `yaml:"smoothing"`
	// AdvanceInterval is the slow cadence moving the replay cursor.
	AdvanceInterval Duration `yaml:"advance_interval"`
	// SmoothInterval is the fast cadence animating toward the target.
	// Must not exceed AdvanceInterval.
	SmoothInterval Duration `yaml:"smooth_interval"`
	// SeedStrategy selects series pre-population on buffer arrival.
	SeedStrategy SeedStrategy `yaml:"seed_strategy"`
	// SeedTail is the tail length used by the tail-* strategies.
	SeedTail int `yaml:"seed_tail"`
	// GraceDelay is the debounce before the synthetic fallback may start,
	// so synthetic data never flashes ahead of the first real response.
	GraceDelay Duration `yaml:"grace_delay"`
	// SyntheticInterval is the synthetic generator tick.
	SyntheticInterval Duration `yaml:"synthetic_interval"`
	// LiveKey is the batch key pinned to the end of the ordered sequence.
	LiveKey string `yaml:"live_key"`
}

// DefaultConfig returns the production parameter set.
func DefaultConfig() Config {
	return Config{
		Capacity:          150,
		Smoothing:         Smoothing{Mode: SmoothExponential, Alpha: 0.15},
		AdvanceInterval:   Duration(5 * time.Second),
		SmoothInterval:    Duration(1500 * time.Millisecond),
		SeedStrategy:      SeedTailSmoothed,
		SeedTail:          50,
		GraceDelay:        Duration(1800 * time.Millisecond),
		SyntheticInterval: Duration(1500 * time.Millisecond),
		LiveKey:           "live_reading",
	}
}

// Validate reports the first configuration error, if any.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", c.Capacity)
	}
	switch c.Smoothing.Mode {
	case SmoothExponential:
		if c.Smoothing.Alpha <= 0 || c.Smoothing.Alpha > 1 {
			return fmt.Errorf("exponential smoothing needs alpha in (0,1], got %v", c.Smoothing.Alpha)
		}
	case SmoothCapped:
		if c.Smoothing.MaxDelta <= 0 {
			return fmt.Errorf("capped smoothing needs max_delta > 0, got %v", c.Smoothing.MaxDelta)
		}
	default:
		return fmt.Errorf("unknown smoothing mode %q", c.Smoothing.Mode)
	}
	if c.AdvanceInterval <= 0 || c.SmoothInterval <= 0 {
		return fmt.Errorf("advance_interval and smooth_interval must be positive")
	}
	if c.SmoothInterval > c.AdvanceInterval {
		return fmt.Errorf("smooth_interval %v must not exceed advance_interval %v",
			c.SmoothInterval.Std(), c.AdvanceInterval.Std())
	}
	switch c.SeedStrategy {
	case SeedTailRaw, SeedTailSmoothed:
		if c.SeedTail <= 0 {
			return fmt.Errorf("seed_tail must be positive for strategy %q", c.SeedStrategy)
		}
	case SeedFullCap:
	default:
		return fmt.Errorf("unknown seed_strategy %q", c.SeedStrategy)
	}
	if c.GraceDelay < 0 || c.SyntheticInterval <= 0 {
		return fmt.Errorf("grace_delay must be >= 0 and synthetic_interval positive")
	}
	if c.LiveKey == "" {
		return fmt.Errorf("live_key must not be empty")
	}
	return nil
}

// LoadConfig parses a pipeline config file. Parsing is strict: unknown
// fields (typos) cause errors rather than silently falling back to
// defaults. Fields omitted from the file keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
