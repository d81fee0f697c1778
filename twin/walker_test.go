package twin

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalker_DeterministicWithSeed(t *testing.T) {
	now := time.Unix(1700000000, 0)
	a := NewWalker(rand.New(rand.NewSource(11)))
	b := NewWalker(rand.New(rand.NewSource(11)))
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Next(now), b.Next(now))
	}
}

func TestWalker_FieldsStayInRange(t *testing.T) {
	w := NewWalker(rand.New(rand.NewSource(3)))
	now := time.Unix(1700000000, 0)
	for i := 0; i < 500; i++ {
		rec := w.Next(now)
		for _, c := range []*float64{rec.I1, rec.I2, rec.I3} {
			require.NotNil(t, c)
			require.GreaterOrEqual(t, *c, 60.0)
			require.LessOrEqual(t, *c, 90.0)
		}
		for _, v := range []*float64{rec.V1, rec.V2, rec.V3} {
			require.GreaterOrEqual(t, *v, 395.0)
			require.LessOrEqual(t, *v, 410.0)
		}
		require.GreaterOrEqual(t, *rec.Frequency, 49.8)
		require.LessOrEqual(t, *rec.Frequency, 50.2)
		require.GreaterOrEqual(t, *rec.PF, 0.83)
		require.LessOrEqual(t, *rec.PF, 0.96)
		require.GreaterOrEqual(t, *rec.T1, 45.0)
		require.LessOrEqual(t, *rec.T1, 75.0)
		require.GreaterOrEqual(t, *rec.T2, 40.0)
		require.LessOrEqual(t, *rec.T2, 65.0)
		require.GreaterOrEqual(t, *rec.Vibration, 1.2)
		require.LessOrEqual(t, *rec.Vibration, 3.0)
	}
}

func TestWalker_ValuesAreRounded(t *testing.T) {
	w := NewWalker(rand.New(rand.NewSource(5)))
	rec := w.Next(time.Unix(1700000000, 0))
	for _, v := range []*float64{rec.I1, rec.V1, rec.T1, rec.Frequency, rec.Vibration} {
		assert.Equal(t, Round2(*v), *v)
	}
	// Power factor keeps 3 decimals, matching the feed contract.
	assert.Equal(t, math.Round(*rec.PF*1000)/1000, *rec.PF)
}

func TestWalker_StepsAreGradual(t *testing.T) {
	w := NewWalker(rand.New(rand.NewSource(9)))
	now := time.Unix(1700000000, 0)
	prev := w.Next(now)
	for i := 0; i < 200; i++ {
		rec := w.Next(now)
		assert.LessOrEqual(t, math.Abs(*rec.I1-*prev.I1), 0.5,
			"consecutive currents must change gradually")
		prev = rec
	}
}

func TestWalker_TimestampFormat(t *testing.T) {
	now := time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC)
	w := NewWalker(rand.New(rand.NewSource(1)))
	rec := w.Next(now)
	assert.Equal(t, "2026-08-23 10:30:00", rec.Timestamp)
	_, err := time.Parse(TimestampLayout, rec.Timestamp)
	assert.NoError(t, err)
}
