package stamp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimings_Empty(t *testing.T) {
	assert.Equal(t, TimingSummary{}, NewTimings().Summary())
}

func TestTimings_Summary(t *testing.T) {
	tm := NewTimings()
	for i := 1; i <= 100; i++ {
		tm.Record(time.Duration(i) * time.Millisecond)
	}

	s := tm.Summary()
	assert.Equal(t, int64(100), s.Count)
	assert.InDelta(t, float64(time.Millisecond), float64(s.Min), float64(10*time.Microsecond))
	assert.InDelta(t, float64(100*time.Millisecond), float64(s.Max), float64(time.Millisecond))
	assert.InDelta(t, float64(50*time.Millisecond), float64(s.P50), float64(time.Millisecond))
	assert.InDelta(t, float64(90*time.Millisecond), float64(s.P90), float64(time.Millisecond))
	assert.InDelta(t, float64(99*time.Millisecond), float64(s.P99), float64(time.Millisecond))
	assert.InDelta(t, float64(50500*time.Microsecond), float64(s.Mean), float64(time.Millisecond))
}

func TestTimings_Clamps(t *testing.T) {
	tm := NewTimings()
	tm.Record(0)
	tm.Record(time.Hour)

	s := tm.Summary()
	assert.Equal(t, int64(2), s.Count)
	assert.Equal(t, time.Microsecond, s.Min)
	assert.InDelta(t, float64(10*time.Minute), float64(s.Max), float64(time.Second))
}
