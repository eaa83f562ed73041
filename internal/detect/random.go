package detect

import (
	"sync"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/openmot/trackbench/internal/mot"
)

// RandomDetectorConfig controls the proposal distributions of the random
// detector. Frame pixel data is never inspected; proposals are drawn from
// the configured image bounds so runs are reproducible from the seed alone.
type RandomDetectorConfig struct {
	Label        string  // Label attached to every proposal
	ImageWidth   float64 // Horizontal extent for box placement
	ImageHeight  float64 // Vertical extent for box placement
	MeanPerFrame float64 // Mean proposal count per frame (Poisson)
	SizeMean     float64 // Mean box side length (Normal)
	SizeSigma    float64 // Box side length spread
	Seed         uint64
}

// DefaultRandomDetectorConfig returns configuration for a 1080p sequence.
func DefaultRandomDetectorConfig() RandomDetectorConfig {
	return RandomDetectorConfig{
		Label:        "object",
		ImageWidth:   1920,
		ImageHeight:  1080,
		MeanPerFrame: 3,
		SizeMean:     80,
		SizeSigma:    20,
		Seed:         1,
	}
}

// RandomDetector emits random box proposals. It stands in for a real
// inference backend when exercising the pipeline end to end without model
// weights.
type RandomDetector struct {
	label string
	mu    sync.Mutex // the distributions share one rand source
	count distuv.Poisson
	posX  distuv.Uniform
	posY  distuv.Uniform
	size  distuv.Normal
}

// NewRandomDetector creates a seeded random detector.
func NewRandomDetector(cfg RandomDetectorConfig) *RandomDetector {
	src := rand.NewSource(cfg.Seed)
	return &RandomDetector{
		label: cfg.Label,
		count: distuv.Poisson{Lambda: cfg.MeanPerFrame, Src: src},
		posX:  distuv.Uniform{Min: 0, Max: cfg.ImageWidth, Src: src},
		posY:  distuv.Uniform{Min: 0, Max: cfg.ImageHeight, Src: src},
		size:  distuv.Normal{Mu: cfg.SizeMean, Sigma: cfg.SizeSigma, Src: src},
	}
}

// Name identifies the detector configuration.
func (d *RandomDetector) Name() string { return "random" }

// Detect returns random proposals for the frame. The frame image is
// ignored.
func (d *RandomDetector) Detect(_ mot.Frame) ([]mot.Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := int(d.count.Rand())

	detections := make([]mot.Detection, 0, n)
	for i := 0; i < n; i++ {
		w := d.size.Rand()
		h := d.size.Rand()
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		detections = append(detections, mot.Detection{
			Label: d.label,
			Score: 1,
			Box: mot.BoundingBox{
				X:      d.posX.Rand(),
				Y:      d.posY.Rand(),
				Width:  w,
				Height: h,
			},
		})
	}
	return detections, nil
}
