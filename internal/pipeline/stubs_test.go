package pipeline

import (
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/openmot/trackbench/internal/mot"
	"github.com/openmot/trackbench/internal/timeutil"
)

// stubDetector returns canned detections and advances the mock clock by a
// fixed latency per frame, so recorded durations are deterministic.
type stubDetector struct {
	clock      *timeutil.MockClock
	latency    time.Duration
	detections map[int][]mot.Detection
	failAt     int // frame index that fails; -1 disables
}

func newStubDetector(clock *timeutil.MockClock, latency time.Duration) *stubDetector {
	return &stubDetector{
		clock:      clock,
		latency:    latency,
		detections: make(map[int][]mot.Detection),
		failAt:     -1,
	}
}

func (d *stubDetector) Name() string { return "stub" }

func (d *stubDetector) Detect(frame mot.Frame) ([]mot.Detection, error) {
	if d.clock != nil {
		d.clock.Advance(d.latency)
	}
	if frame.Index == d.failAt {
		return nil, fmt.Errorf("inference failed on frame %d", frame.Index)
	}
	return d.detections[frame.Index], nil
}

// scriptedTracker replays a fixed sequence of outputs, one per Update
// call, ignoring its input.
type scriptedTracker struct {
	outputs [][]mot.Tracking
	calls   int
	err     error
}

func (t *scriptedTracker) Update(_ []mot.Detection) ([]mot.Tracking, error) {
	if t.err != nil {
		return nil, t.err
	}
	call := t.calls
	t.calls++
	if call >= len(t.outputs) {
		return nil, nil
	}
	return t.outputs[call], nil
}

// passthroughTracker assigns consecutive IDs to every detection, so each
// frame's output mirrors its input.
type passthroughTracker struct {
	nextID int
}

func (t *passthroughTracker) Update(detections []mot.Detection) ([]mot.Tracking, error) {
	out := make([]mot.Tracking, 0, len(detections))
	for _, d := range detections {
		t.nextID++
		out = append(out, mot.Tracking{Label: d.Label, ID: t.nextID, Box: d.Box})
	}
	return out, nil
}

// stubLoadImage skips image decoding; the stub detector never looks at
// pixels.
func stubLoadImage(string) (gocv.Mat, error) {
	return gocv.Mat{}, nil
}
