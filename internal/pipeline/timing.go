package pipeline

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/openmot/trackbench/internal/timeutil"
)

// TimingAggregator accumulates per-frame detect+track latency for one
// scope (a sequence or a whole batch). Frame decode and artifact I/O are
// measured outside the recorded window, so the totals isolate pure
// inference-plus-association latency.
type TimingAggregator struct {
	clock       timeutil.Clock
	total       time.Duration
	frames      int
	latenciesMs []float64
}

// NewTimingAggregator creates an aggregator using the given clock.
func NewTimingAggregator(clock timeutil.Clock) *TimingAggregator {
	return &TimingAggregator{clock: clock}
}

// Clock returns the aggregator's clock, for callers timing sections
// themselves.
func (a *TimingAggregator) Clock() timeutil.Clock { return a.clock }

// Record adds one frame's processing duration.
func (a *TimingAggregator) Record(d time.Duration) {
	a.total += d
	a.frames++
	a.latenciesMs = append(a.latenciesMs, float64(d)/float64(time.Millisecond))
}

// FrameCount returns the number of recorded frames.
func (a *TimingAggregator) FrameCount() int { return a.frames }

// Total returns the cumulative recorded duration.
func (a *TimingAggregator) Total() time.Duration { return a.total }

// LatenciesMs returns a copy of the per-frame latency samples in
// milliseconds, in recording order.
func (a *TimingAggregator) LatenciesMs() []float64 {
	out := make([]float64, len(a.latenciesMs))
	copy(out, a.latenciesMs)
	return out
}

// Throughput derives frames per second from a frame count and cumulative
// duration. A zero or negative duration yields zero rather than a division
// error, which covers empty sequences and sequences whose total latency
// rounds below the clock resolution.
func Throughput(frames int, total time.Duration) float64 {
	ms := total.Seconds() * 1000
	if ms <= 0 {
		return 0
	}
	return float64(frames) * 1000 / ms
}

// LatencyPercentile returns the p-quantile (0 < p < 1) of the latency
// samples in milliseconds. An empty sample set yields zero.
func LatencyPercentile(latenciesMs []float64, p float64) float64 {
	if len(latenciesMs) == 0 {
		return 0
	}
	sorted := make([]float64, len(latenciesMs))
	copy(sorted, latenciesMs)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}
