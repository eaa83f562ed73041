// Package pipeline orchestrates the per-frame detect-and-track loop, the
// trajectory output, and timing aggregation across sequences and batches.
package pipeline

import (
	"fmt"

	"github.com/openmot/trackbench/internal/mot"
)

// SequenceTracker is the single integration point between detection and
// tracking: for each frame it runs the detector, feeds the proposals into
// the tracker, and tags the resulting trackings with the frame index. It
// never interprets or modifies detector or tracker output beyond that.
type SequenceTracker struct {
	detector mot.Detector
	tracker  mot.Tracker
}

// NewSequenceTracker composes a detector with a tracker for one sequence.
// The tracker must be freshly constructed: its identity pool lives for
// exactly one sequence.
func NewSequenceTracker(detector mot.Detector, tracker mot.Tracker) *SequenceTracker {
	return &SequenceTracker{detector: detector, tracker: tracker}
}

// Process runs detect-then-track on one frame. Failures propagate
// synchronously; there is no retry and no frame skipping.
func (s *SequenceTracker) Process(frame mot.Frame) ([]mot.Tracking, error) {
	detections, err := s.detector.Detect(frame)
	if err != nil {
		return nil, fmt.Errorf("detect frame %d: %w", frame.Index, err)
	}

	trackings, err := s.tracker.Update(detections)
	if err != nil {
		return nil, fmt.Errorf("track frame %d: %w", frame.Index, err)
	}

	for i := range trackings {
		trackings[i].FrameIndex = frame.Index
	}
	return trackings, nil
}
