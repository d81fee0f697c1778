package twin

import (
	"github.com/sirupsen/logrus"
)

// DriverState is the replay driver's lifecycle state.
type DriverState int

const (
	// DriverIdle means no buffer has arrived yet.
	DriverIdle DriverState = iota
	// DriverSeeded means a buffer was received and the initial target,
	// displayed reading and series have been populated.
	DriverSeeded
	// DriverCycling means the advance and smooth tasks are running.
	DriverCycling
)

// targetState is the most recently selected reading the display animates
// toward. Written only by the advance tick (or a live push), read only by
// the smooth tick; both run on the loop goroutine, last writer wins.
type targetState struct {
	reading   Reading
	vibration float64
}

// Driver cycles a finite historical buffer to simulate a continuous live
// feed. A slow periodic task advances the replay cursor and publishes a new
// target; a fast task shaper-steps the displayed reading and the series
// tail toward that target. Both tasks are started and cancelled strictly
// together so no tick can reference a stale buffer.
type Driver struct {
	loop   *Loop
	cfg    Config
	series *Series

	state      DriverState
	buffer     []Entry
	cursor     int
	target     *targetState
	display    Reading
	hasDisplay bool

	advanceTask *Task
	smoothTask  *Task

	// onUpdate fires after every displayed-value mutation.
	onUpdate func()
}

// NewDriver creates an idle driver. onUpdate may be nil.
func NewDriver(loop *Loop, cfg Config, series *Series, onUpdate func()) *Driver {
	if onUpdate == nil {
		onUpdate = func() {}
	}
	return &Driver{loop: loop, cfg: cfg, series: series, onUpdate: onUpdate}
}

// State returns the lifecycle state. Loop goroutine only.
func (d *Driver) State() DriverState {
	return d.state
}

// Displayed returns the currently displayed reading, false before the first
// seed. Loop goroutine only.
func (d *Driver) Displayed() (Reading, bool) {
	return d.display, d.hasDisplay
}

// Seed replaces the buffer wholesale and restarts both periodic tasks in
// the same loop turn. Empty input is a no-op: the prior buffer, if any,
// keeps cycling. Loop goroutine only.
func (d *Driver) Seed(entries []Entry) {
	if len(entries) == 0 {
		return
	}
	d.stopTasks()

	d.buffer = entries
	d.cursor = 0

	// The most recent record becomes the initial target and the initial
	// displayed reading; the cursor replays history from the start.
	latest := entries[len(entries)-1]
	d.target = &targetState{reading: Normalize(latest.Record), vibration: Round2(VibrationOf(latest.Record))}
	d.display = d.target.reading
	d.hasDisplay = true
	d.seedSeries()
	d.state = DriverSeeded

	d.advanceTask = d.loop.Every(d.cfg.AdvanceInterval.Std(), d.advanceTick)
	d.smoothTask = d.loop.Every(d.cfg.SmoothInterval.Std(), d.smoothTick)
	d.state = DriverCycling

	logrus.Infof("replay: seeded %d entries, advancing every %v, smoothing every %v",
		len(entries), d.cfg.AdvanceInterval.Std(), d.cfg.SmoothInterval.Std())
	d.onUpdate()
}

// Stop cancels both periodic tasks together. Loop goroutine only.
func (d *Driver) Stop() {
	d.stopTasks()
	if d.state == DriverCycling {
		d.state = DriverSeeded
	}
}

// stopTasks cancels the advance and smooth tasks as one unit. Cancelling
// one without the other would leave a tick referencing an old buffer.
func (d *Driver) stopTasks() {
	if d.advanceTask != nil {
		d.advanceTask.Stop()
		d.advanceTask = nil
	}
	if d.smoothTask != nil {
		d.smoothTask.Stop()
		d.smoothTask = nil
	}
}

// SetTarget overrides the target directly, bypassing the cursor. Used by
// the live push path; last writer wins against the advance tick.
func (d *Driver) SetTarget(reading Reading, vibration float64) {
	d.target = &targetState{reading: reading, vibration: Round2(vibration)}
}

// advanceTick moves the cursor to the next buffered record, wrapping to the
// start after the last one, and selects it as the new target.
func (d *Driver) advanceTick() {
	if len(d.buffer) == 0 {
		return
	}
	d.cursor = (d.cursor + 1) % len(d.buffer)
	entry := d.buffer[d.cursor]
	d.target = &targetState{reading: Normalize(entry.Record), vibration: Round2(VibrationOf(entry.Record))}
	logrus.Debugf("replay: advanced to %s (index %d/%d)", entry.Key, d.cursor, len(d.buffer))
}

// smoothTick animates the displayed reading and the series tail one shaper
// step toward the target. With a single-record buffer the display equals
// the target already and is redisplayed unchanged.
func (d *Driver) smoothTick() {
	if d.target == nil {
		return
	}
	d.display = d.cfg.Smoothing.StepReading(d.display, d.target.reading)
	prev, ok := d.series.Last()
	if !ok {
		prev = d.target.vibration
	}
	d.series.Append(d.cfg.Smoothing.Step(prev, d.target.vibration))
	d.onUpdate()
}

// seedSeries pre-populates the display series from the buffer tail so the
// chart does not start flat.
func (d *Driver) seedSeries() {
	d.series.Reset()

	n := d.cfg.SeedTail
	if d.cfg.SeedStrategy == SeedFullCap {
		n = d.cfg.Capacity
	}
	if n > len(d.buffer) {
		n = len(d.buffer)
	}
	tail := d.buffer[len(d.buffer)-n:]

	switch d.cfg.SeedStrategy {
	case SeedTailSmoothed:
		var prev float64
		for i, e := range tail {
			v := Round2(VibrationOf(e.Record))
			if i == 0 {
				prev = v
			} else {
				prev = d.cfg.Smoothing.Step(prev, v)
			}
			d.series.Append(prev)
		}
	default: // tail-raw, full-cap
		for _, e := range tail {
			d.series.Append(Round2(VibrationOf(e.Record)))
		}
	}
}
