package twin

import (
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// replayMinEntries is the activation threshold between replay and the
// synthetic fallback. Animation is only worth cycling with two distinct
// records, so batches of 0 or 1 entries leave the synthetic generator in
// charge. Pinned by TestPipeline_SyntheticActivation.
const replayMinEntries = 2

// Display sources, reported in the snapshot so consumers can tell real
// replay data from the synthetic fallback.
const (
	SourceReplay    = "replay"
	SourceSynthetic = "synthetic"
)

// Summary is the predictive-maintenance pass-through payload. It is kept
// opaque; only its shape (a map with an array-valued "components" field) is
// validated on ingest.
type Summary map[string]any

// Snapshot is the immutable view surface consumed by the render layer. A
// new Snapshot is published after every displayed-value mutation; readers
// never observe partial updates.
type Snapshot struct {
	Reading     *Reading  `json:"reading,omitempty"`
	Vibration   float64   `json:"vibration"`
	Series      []Point   `json:"series"`
	Summary     Summary   `json:"summary,omitempty"`
	Loading     bool      `json:"loading"`
	LastError   string    `json:"lastError,omitempty"`
	LastUpdated time.Time `json:"lastUpdated"`
	Source      string    `json:"source,omitempty"`
}

// Pipeline routes subscription callbacks to the replay driver, arbitrates
// between replay and the synthetic fallback, and publishes view snapshots.
// All state is owned by the loop goroutine; the Handle* methods are safe
// from any goroutine because they post onto the loop.
type Pipeline struct {
	loop   *Loop
	cfg    Config
	series *Series
	driver *Driver
	synth  *Synthetic

	synthTask    *Task
	graceTask    *Task
	graceElapsed bool
	lastEntries  int

	reading   *Reading
	vibration float64
	loading   bool
	lastErr   string
	summary   Summary
	source    string
	updatedAt time.Time

	now  func() time.Time
	snap atomic.Pointer[Snapshot]
}

// NewPipeline wires a pipeline onto the given loop. The config must have
// passed Validate.
func NewPipeline(loop *Loop, cfg Config, jitter Jitter) *Pipeline {
	p := &Pipeline{
		loop:    loop,
		cfg:     cfg,
		series:  NewSeries(cfg.Capacity),
		synth:   NewSynthetic(jitter),
		loading: true,
		now:     time.Now,
	}
	p.driver = NewDriver(loop, cfg, p.series, p.afterDriverUpdate)
	return p
}

// Start schedules the synthetic grace debounce and publishes the initial
// loading snapshot. Safe from any goroutine.
func (p *Pipeline) Start() {
	p.loop.Post(func() {
		p.graceTask = p.loop.After(p.cfg.GraceDelay.Std(), p.graceFired)
		p.publish()
	})
}

// Snapshot returns the most recently published view state. Safe from any
// goroutine; never nil.
func (p *Pipeline) Snapshot() *Snapshot {
	if s := p.snap.Load(); s != nil {
		return s
	}
	return &Snapshot{Loading: true}
}

// HandleLogsBatch ingests a historical log batch. Nil or empty batches keep
// the prior buffer; batches of at least replayMinEntries reseed the replay
// driver and tear down the synthetic fallback in the same loop turn.
func (p *Pipeline) HandleLogsBatch(batch map[string]RawRecord) {
	p.loop.Post(func() { p.handleLogs(batch) })
}

// HandleLiveReading ingests a direct "current reading" push, independent of
// the batch/replay mechanism. Nil is discarded silently.
func (p *Pipeline) HandleLiveReading(raw *RawRecord) {
	if raw == nil {
		return
	}
	rec := *raw
	p.loop.Post(func() { p.handleLive(rec) })
}

// HandlePredictiveSummary ingests the predictive-maintenance summary.
// Anything that is not a map with an array-valued "components" field is
// discarded silently.
func (p *Pipeline) HandlePredictiveSummary(v any) {
	p.loop.Post(func() { p.handlePredictive(v) })
}

// HandleSubscriptionError surfaces a connectivity error for this session.
// The core does not retry; reconnection belongs to the data-source client.
func (p *Pipeline) HandleSubscriptionError(msg string) {
	p.loop.Post(func() { p.handleError(msg) })
}

func (p *Pipeline) handleError(msg string) {
	logrus.Warnf("subscription error: %s", msg)
	p.loading = false
	p.lastErr = msg
	p.publish()
}

func (p *Pipeline) handleLogs(batch map[string]RawRecord) {
	p.loading = false
	if len(batch) == 0 {
		p.publish()
		return
	}
	entries := OrderEntries(batch, p.cfg.LiveKey)
	p.lastEntries = len(entries)

	if len(entries) >= replayMinEntries {
		p.cancelGrace()
		p.stopSynthetic()
		p.source = SourceReplay
		p.driver.Seed(entries)
		return
	}

	logrus.Debugf("logs batch of %d entries below replay threshold", len(entries))
	if p.graceElapsed && p.synthTask == nil && p.driver.State() != DriverCycling {
		p.startSynthetic()
	}
	p.publish()
}

func (p *Pipeline) handleLive(raw RawRecord) {
	reading := Normalize(raw)
	if p.driver.State() == DriverCycling {
		// Animate toward the live values; last writer wins against the
		// advance tick.
		p.driver.SetTarget(reading, VibrationOf(raw))
		return
	}
	p.reading = &reading
	p.vibration = Round2(VibrationOf(raw))
	p.touch()
	p.publish()
}

func (p *Pipeline) handlePredictive(v any) {
	m, ok := v.(map[string]any)
	if !ok {
		logrus.Debug("discarding predictive summary: not a mapping")
		return
	}
	if _, ok := m["components"].([]any); !ok {
		logrus.Debug("discarding predictive summary: components is not an array")
		return
	}
	p.summary = Summary(m)
	p.publish()
}

func (p *Pipeline) graceFired() {
	p.graceTask = nil
	p.graceElapsed = true
	if p.lastEntries < replayMinEntries && p.driver.State() != DriverCycling {
		p.startSynthetic()
	}
}

func (p *Pipeline) cancelGrace() {
	if p.graceTask != nil {
		p.graceTask.Stop()
		p.graceTask = nil
	}
	p.graceElapsed = true
}

func (p *Pipeline) startSynthetic() {
	if p.synthTask != nil {
		return
	}
	logrus.Infof("no real data after %v; starting synthetic signal", p.cfg.GraceDelay.Std())
	p.source = SourceSynthetic
	p.synthTask = p.loop.Every(p.cfg.SyntheticInterval.Std(), p.syntheticTick)
}

func (p *Pipeline) stopSynthetic() {
	if p.synthTask != nil {
		p.synthTask.Stop()
		p.synthTask = nil
	}
}

func (p *Pipeline) syntheticTick() {
	reading, vibration := p.synth.Next()
	p.reading = &reading
	p.vibration = vibration
	p.series.Append(vibration)
	p.touch()
	p.publish()
}

// afterDriverUpdate pulls the driver's displayed values into the view state
// after every replay-driven mutation.
func (p *Pipeline) afterDriverUpdate() {
	if r, ok := p.driver.Displayed(); ok {
		p.reading = &r
	}
	if v, ok := p.series.Last(); ok {
		p.vibration = v
	}
	p.touch()
	p.publish()
}

func (p *Pipeline) touch() {
	p.updatedAt = p.now()
}

func (p *Pipeline) publish() {
	p.snap.Store(&Snapshot{
		Reading:     p.reading,
		Vibration:   p.vibration,
		Series:      p.series.Points(),
		Summary:     p.summary,
		Loading:     p.loading,
		LastError:   p.lastErr,
		LastUpdated: p.updatedAt,
		Source:      p.source,
	})
}
