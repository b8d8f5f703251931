package stamp

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Per-file durations are recorded in microseconds, up to ten minutes.
const maxRecordable = int64(10 * time.Minute / time.Microsecond)

// Timings collects per-file processing durations.
type Timings struct {
	hist *hdrhistogram.Histogram
}

// NewTimings returns an empty Timings.
func NewTimings() *Timings {
	return &Timings{hist: hdrhistogram.New(1, maxRecordable, 3)}
}

// Record adds one duration. Values outside the recordable range are clamped.
func (t *Timings) Record(d time.Duration) {
	v := d.Microseconds()
	if v < 1 {
		v = 1
	}
	if v > maxRecordable {
		v = maxRecordable
	}
	_ = t.hist.RecordValue(v)
}

// TimingSummary is a snapshot of the recorded durations.
type TimingSummary struct {
	Count int64
	Min   time.Duration
	Max   time.Duration
	Mean  time.Duration
	P50   time.Duration
	P90   time.Duration
	P99   time.Duration
}

// Summary returns the current percentiles. All fields are zero when nothing
// was recorded.
func (t *Timings) Summary() TimingSummary {
	count := t.hist.TotalCount()
	if count == 0 {
		return TimingSummary{}
	}
	us := func(v int64) time.Duration { return time.Duration(v) * time.Microsecond }
	return TimingSummary{
		Count: count,
		Min:   us(t.hist.Min()),
		Max:   us(t.hist.Max()),
		Mean:  time.Duration(t.hist.Mean() * float64(time.Microsecond)),
		P50:   us(t.hist.ValueAtQuantile(50)),
		P90:   us(t.hist.ValueAtQuantile(90)),
		P99:   us(t.hist.ValueAtQuantile(99)),
	}
}
