// Package mot defines the domain types shared across the detect-and-track
// pipeline: bounding boxes, detections, identity-persistent trackings, and
// the Detector/Tracker collaborator contracts.
package mot

import (
	"gocv.io/x/gocv"
)

// BoundingBox is an axis-aligned box in image pixel coordinates,
// addressed by its top-left corner.
type BoundingBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Area returns the box area in square pixels.
func (b BoundingBox) Area() float64 {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	return b.Width * b.Height
}

// IOU returns the intersection-over-union of two boxes in [0, 1].
func IOU(a, b BoundingBox) float64 {
	x1 := maxf(a.X, b.X)
	y1 := maxf(a.Y, b.Y)
	x2 := minf(a.X+a.Width, b.X+b.Width)
	y2 := minf(a.Y+a.Height, b.Y+b.Height)

	if x2 <= x1 || y2 <= y1 {
		return 0
	}
	inter := (x2 - x1) * (y2 - y1)
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Detection is a single object proposal for one frame, unlinked to any
// temporal identity. It is consumed immediately by the tracker.
type Detection struct {
	Label string
	Score float64
	Box   BoundingBox
}

// Tracking is a detection enriched with a persistent identity. Exactly one
// record is emitted per (FrameIndex, ID) pair within a sequence.
type Tracking struct {
	FrameIndex int
	Label      string
	ID         int
	Box        BoundingBox
}

// Frame is one decoded image of a sequence at a specific temporal index.
// The Image matrix is owned by the caller and released after processing;
// frames are never retained across pipeline iterations.
type Frame struct {
	Index int
	Path  string
	Image gocv.Mat
}

// Detector produces raw object proposals for a single frame.
type Detector interface {
	// Detect runs inference on one frame. The detector must not retain
	// the frame's image after returning, and must be safe for concurrent
	// calls: one detector instance is shared across sequence workers.
	Detect(frame Frame) ([]Detection, error)

	// Name identifies the detector configuration; it names the output
	// directory for trajectories produced with this detector.
	Name() string
}

// Tracker assigns persistent identities to detections. A Tracker is
// stateful across calls within one sequence and must be constructed fresh
// per sequence so identities never leak across unrelated recordings.
// Returned trackings carry a zero FrameIndex; the pipeline attaches it.
type Tracker interface {
	Update(detections []Detection) ([]Tracking, error)
}

// TrackerFactory constructs a fresh Tracker for one sequence.
type TrackerFactory func() Tracker
