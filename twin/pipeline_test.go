package twin

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Deterministic tests call the pipeline's loop-side handlers directly; the
// single integration test at the bottom exercises the public posting API
// against a running loop.

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	cfg := testConfig()
	p := NewPipeline(NewLoop(), cfg, ZeroJitter)
	stamp := time.Unix(1700000000, 0)
	p.now = func() time.Time {
		stamp = stamp.Add(time.Second)
		return stamp
	}
	return p
}

func vibBatch(n int) map[string]RawRecord {
	batch := make(map[string]RawRecord, n)
	for i := 1; i <= n; i++ {
		v := float64(i)
		batch[fmt.Sprintf("entry_%d", i)] = RawRecord{Vibration: &v, I1: ptr(v * 10)}
	}
	return batch
}

func TestPipeline_LoadingUntilFirstResponse(t *testing.T) {
	p := newTestPipeline(t)
	assert.True(t, p.Snapshot().Loading)

	p.handleLogs(nil)
	snap := p.Snapshot()
	assert.False(t, snap.Loading, "any logs response, even empty, clears loading")
	assert.Nil(t, snap.Reading)
	assert.Equal(t, DriverIdle, p.driver.State(), "empty batch keeps the driver idle")
}

func TestPipeline_BatchSeedsReplay(t *testing.T) {
	p := newTestPipeline(t)
	p.handleLogs(vibBatch(3))

	assert.Equal(t, DriverCycling, p.driver.State())
	snap := p.Snapshot()
	require.NotNil(t, snap.Reading)
	assert.Equal(t, SourceReplay, snap.Source)
	assert.NotEmpty(t, snap.Series)
	assert.False(t, snap.Loading)
}

func TestPipeline_SubscriptionErrorSurfaces(t *testing.T) {
	p := newTestPipeline(t)
	p.handleError("connection refused")
	snap := p.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, "connection refused", snap.LastError)
}

func TestPipeline_SyntheticActivation(t *testing.T) {
	for _, entries := range []int{0, 1} {
		t.Run(fmt.Sprintf("%d entries", entries), func(t *testing.T) {
			p := newTestPipeline(t)
			if entries > 0 {
				p.handleLogs(vibBatch(entries))
			}
			require.Nil(t, p.synthTask, "synthetic must not start before the grace delay")

			p.graceFired()
			require.NotNil(t, p.synthTask, "0 or 1 entries after grace activate the synthetic fallback")

			p.syntheticTick()
			snap := p.Snapshot()
			assert.Equal(t, SourceSynthetic, snap.Source)
			require.NotNil(t, snap.Reading)
			assert.Equal(t, Round2(snap.Vibration), snap.Vibration)
			assert.Len(t, snap.Series, 1)
		})
	}
}

func TestPipeline_ReplayBeforeGraceSuppressesSynthetic(t *testing.T) {
	p := newTestPipeline(t)
	p.graceTask = p.loop.After(time.Hour, p.graceFired)
	grace := p.graceTask

	p.handleLogs(vibBatch(2))
	assert.Nil(t, p.graceTask, "real data cancels the pending grace debounce")
	assert.True(t, grace.Stopped())
	assert.Nil(t, p.synthTask)
	assert.Equal(t, DriverCycling, p.driver.State())
}

func TestPipeline_RealDataTearsDownSynthetic(t *testing.T) {
	p := newTestPipeline(t)
	p.graceFired()
	synth := p.synthTask
	require.NotNil(t, synth)
	p.syntheticTick()
	seriesLen := p.series.Len()

	p.handleLogs(vibBatch(3))
	assert.True(t, synth.Stopped(), "synthetic timer is torn down in the same step")
	assert.Nil(t, p.synthTask)
	assert.Equal(t, DriverCycling, p.driver.State())
	assert.Equal(t, SourceReplay, p.Snapshot().Source)
	// The series now belongs to the replay seed; its length reflects the
	// new buffer, not leftover synthetic points.
	assert.NotEqual(t, seriesLen, 0)
	assert.Equal(t, 3, p.series.Len())
}

func TestPipeline_LateTinyBatchAfterGraceStartsSynthetic(t *testing.T) {
	p := newTestPipeline(t)
	p.graceFired() // nothing arrived yet; synthetic starts
	p.stopSynthetic()

	p.handleLogs(vibBatch(1))
	assert.NotNil(t, p.synthTask, "a sub-threshold batch after grace restarts the fallback")
}

func TestPipeline_PredictiveSummaryShapeValidation(t *testing.T) {
	p := newTestPipeline(t)

	p.handlePredictive("not a mapping")
	assert.Nil(t, p.Snapshot().Summary)

	p.handlePredictive(map[string]any{"components": "bearing"})
	assert.Nil(t, p.Snapshot().Summary, "components must be array-shaped")

	valid := map[string]any{
		"components": []any{map[string]any{"name": "bearing", "health": 0.93}},
		"horizon":    "30d",
	}
	p.handlePredictive(valid)
	snap := p.Snapshot()
	require.NotNil(t, snap.Summary)
	assert.Equal(t, Summary(valid), snap.Summary)
}

func TestPipeline_LiveReadingWhileIdleDisplaysDirectly(t *testing.T) {
	p := newTestPipeline(t)
	p.handleLive(RawRecord{I1: ptr(75.0), Vibration: ptr(2.4)})

	snap := p.Snapshot()
	require.NotNil(t, snap.Reading)
	assert.Equal(t, 75.0, snap.Reading.Current.PhaseA)
	assert.Equal(t, 2.4, snap.Vibration)
	assert.False(t, snap.LastUpdated.IsZero())
}

func TestPipeline_LiveReadingOverridesReplayTarget(t *testing.T) {
	p := newTestPipeline(t)
	p.handleLogs(vibBatch(2))
	require.Equal(t, DriverCycling, p.driver.State())

	p.handleLive(RawRecord{I1: ptr(99.0), Vibration: ptr(3.3)})
	require.NotNil(t, p.driver.target)
	assert.Equal(t, 99.0, p.driver.target.reading.Current.PhaseA,
		"the live push becomes the new animation target")
	assert.Equal(t, 3.3, p.driver.target.vibration)
}

func TestPipeline_LastUpdatedRefreshesPerMutation(t *testing.T) {
	p := newTestPipeline(t)
	p.graceFired()

	p.syntheticTick()
	first := p.Snapshot().LastUpdated
	p.syntheticTick()
	second := p.Snapshot().LastUpdated
	assert.True(t, second.After(first), "every displayed-value mutation refreshes the timestamp")
}

func TestPipeline_SeriesNeverExceedsCapUnderSynthetic(t *testing.T) {
	p := newTestPipeline(t)
	p.graceFired()
	for i := 0; i < 3*p.cfg.Capacity; i++ {
		p.syntheticTick()
		require.LessOrEqual(t, p.series.Len(), p.cfg.Capacity)
	}
	assertContiguousIndices(t, p.Snapshot().Series)
}

func TestPipeline_SnapshotIsIsolatedFromLaterMutations(t *testing.T) {
	p := newTestPipeline(t)
	p.handleLogs(vibBatch(3))
	snap := p.Snapshot()
	before := make([]Point, len(snap.Series))
	copy(before, snap.Series)

	p.driver.smoothTick()
	assert.Equal(t, before, snap.Series, "published snapshots are immutable")
}

func TestPipeline_Integration_PostedBatchReachesView(t *testing.T) {
	cfg := testConfig()
	cfg.GraceDelay = Duration(50 * time.Millisecond)
	cfg.AdvanceInterval = Duration(40 * time.Millisecond)
	cfg.SmoothInterval = Duration(10 * time.Millisecond)
	cfg.SyntheticInterval = Duration(10 * time.Millisecond)

	loop := NewLoop()
	p := NewPipeline(loop, cfg, ZeroJitter)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	p.Start()
	p.HandleLogsBatch(vibBatch(3))

	require.Eventually(t, func() bool {
		snap := p.Snapshot()
		return snap.Source == SourceReplay && snap.Reading != nil && len(snap.Series) > 0
	}, 2*time.Second, 10*time.Millisecond, "batch must flow through the loop to the view")

	// Smoothing keeps appending after the seed.
	seeded := len(p.Snapshot().Series)
	require.Eventually(t, func() bool {
		return len(p.Snapshot().Series) > seeded
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPipeline_Integration_SyntheticWhenNoData(t *testing.T) {
	cfg := testConfig()
	cfg.GraceDelay = Duration(20 * time.Millisecond)
	cfg.SyntheticInterval = Duration(10 * time.Millisecond)

	loop := NewLoop()
	p := NewPipeline(loop, cfg, ZeroJitter)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	p.Start()
	require.Eventually(t, func() bool {
		snap := p.Snapshot()
		return snap.Source == SourceSynthetic && snap.Reading != nil
	}, 2*time.Second, 5*time.Millisecond, "synthetic must take over after the grace delay")
}
