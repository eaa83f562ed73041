// Package detect provides Detector implementations for the harness: a DNN
// detector backed by OpenCV and a seeded random detector for smoke runs.
package detect

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/openmot/trackbench/internal/config"
	"github.com/openmot/trackbench/internal/mot"
)

// DetectionThreshold is the default confidence cutoff for DNN proposals.
const DetectionThreshold = 0.5

// dnnInputSize is the square input resolution the network expects.
const dnnInputSize = 300

// DNNDetector runs a single-shot detection network over frames via the
// OpenCV DNN module.
type DNNDetector struct {
	name      string
	mu        sync.Mutex
	net       gocv.Net
	mean      gocv.Scalar
	threshold float64
	labels    map[int]string
}

// NewDNNDetector loads the network described by the model configuration.
func NewDNNDetector(mc config.ModelConfig) (*DNNDetector, error) {
	if _, err := os.Stat(mc.ModelFile); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}
	if _, err := os.Stat(mc.WeightsFile); err != nil {
		return nil, fmt.Errorf("weights file: %w", err)
	}

	net := gocv.ReadNet(mc.ModelFile, mc.WeightsFile)
	if net.Empty() {
		return nil, fmt.Errorf("load network from %s: empty net", mc.ModelFile)
	}
	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		return nil, fmt.Errorf("set backend: %w", err)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		return nil, fmt.Errorf("set target: %w", err)
	}

	return &DNNDetector{
		name:      mc.Name,
		net:       net,
		mean:      gocv.NewScalar(mc.MeanValues[0], mc.MeanValues[1], mc.MeanValues[2], 0),
		threshold: DetectionThreshold,
		labels:    cocoLabels,
	}, nil
}

// Name returns the model configuration name.
func (d *DNNDetector) Name() string { return d.name }

// Detect runs inference on one frame and returns proposals above the
// confidence threshold, with boxes scaled back to image pixels.
func (d *DNNDetector) Detect(frame mot.Frame) ([]mot.Detection, error) {
	if frame.Image.Empty() {
		return nil, fmt.Errorf("detect frame %d: empty image", frame.Index)
	}

	// One Net handles one inference at a time; concurrent sequence
	// workers take turns here.
	d.mu.Lock()
	defer d.mu.Unlock()

	blob := gocv.BlobFromImage(frame.Image, 1.0/127.5,
		image.Pt(dnnInputSize, dnnInputSize), d.mean, true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	cols := float64(frame.Image.Cols())
	rows := float64(frame.Image.Rows())

	var detections []mot.Detection

	// Each output row is [batch, classID, confidence, x1, y1, x2, y2]
	// with coordinates normalised to [0, 1].
	reshaped := output.Reshape(1, output.Total()/7)
	defer reshaped.Close()
	for i := 0; i < reshaped.Rows(); i++ {
		confidence := float64(reshaped.GetFloatAt(i, 2))
		if confidence <= d.threshold {
			continue
		}

		classID := int(reshaped.GetFloatAt(i, 1))
		x1 := float64(reshaped.GetFloatAt(i, 3)) * cols
		y1 := float64(reshaped.GetFloatAt(i, 4)) * rows
		x2 := float64(reshaped.GetFloatAt(i, 5)) * cols
		y2 := float64(reshaped.GetFloatAt(i, 6)) * rows

		detections = append(detections, mot.Detection{
			Label: d.classLabel(classID),
			Score: confidence,
			Box: mot.BoundingBox{
				X:      x1,
				Y:      y1,
				Width:  x2 - x1,
				Height: y2 - y1,
			},
		})
	}

	return detections, nil
}

// Close releases the underlying network.
func (d *DNNDetector) Close() error {
	return d.net.Close()
}

func (d *DNNDetector) classLabel(classID int) string {
	if label, ok := d.labels[classID]; ok {
		return label
	}
	return fmt.Sprintf("class_%d", classID)
}

// cocoLabels maps the COCO class IDs emitted by common SSD models to
// human-readable labels. Unlisted IDs fall back to a numeric label.
var cocoLabels = map[int]string{
	1:  "person",
	2:  "bicycle",
	3:  "car",
	4:  "motorcycle",
	6:  "bus",
	8:  "truck",
	16: "bird",
	17: "cat",
	18: "dog",
}
