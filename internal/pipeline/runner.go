package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"gocv.io/x/gocv"

	"github.com/openmot/trackbench/internal/frames"
	"github.com/openmot/trackbench/internal/fsutil"
	"github.com/openmot/trackbench/internal/mot"
	"github.com/openmot/trackbench/internal/timeutil"
)

// ImagesDirName is the per-sequence directory holding frame files.
const ImagesDirName = "images"

// SequenceResult is the outcome of processing one sequence. A failed
// sequence carries Err; it never aborts the rest of the batch.
type SequenceResult struct {
	Sequence    string
	FrameCount  int
	Duration    time.Duration
	LatenciesMs []float64
	Skipped     bool
	Err         error
}

// Throughput returns the sequence's frames per second.
func (r SequenceResult) Throughput() float64 {
	return Throughput(r.FrameCount, r.Duration)
}

// SequenceRunner processes one sequence end to end: frame enumeration,
// per-frame detect and track, trajectory output, and timing.
type SequenceRunner struct {
	FS         fsutil.FileSystem
	Clock      timeutil.Clock
	Detector   mot.Detector
	NewTracker mot.TrackerFactory

	DataDir    string
	ResultsDir string
	ConfigName string

	// LoadImage decodes one frame file. Defaults to frames.LoadImage.
	LoadImage func(path string) (gocv.Mat, error)
}

// Run processes the named sequence. The tracker is constructed fresh, so
// identities never leak across sequences. An existing output artifact
// skips the sequence with zero duration and zero frames.
func (r *SequenceRunner) Run(ctx context.Context, sequence string) SequenceResult {
	result := SequenceResult{Sequence: sequence}

	imagesDir := filepath.Join(r.DataDir, sequence, ImagesDirName)
	source := frames.NewSource(r.FS)
	paths, err := source.List(imagesDir)
	if err != nil {
		result.Err = err
		return result
	}

	writer, err := OpenTrajectory(r.FS, r.ResultsDir, sequence, r.ConfigName)
	if errors.Is(err, ErrExists) {
		result.Skipped = true
		return result
	}
	if err != nil {
		result.Err = err
		return result
	}

	agg := NewTimingAggregator(r.Clock)
	runErr := r.processFrames(ctx, paths, writer, agg)

	// The artifact is closed on abort paths too, so a mid-sequence
	// failure never leaves a handle open.
	closeErr := writer.Close()

	result.FrameCount = agg.FrameCount()
	result.Duration = agg.Total()
	result.LatenciesMs = agg.LatenciesMs()
	if runErr != nil {
		result.Err = runErr
	} else if closeErr != nil {
		result.Err = closeErr
	}
	return result
}

func (r *SequenceRunner) processFrames(ctx context.Context, paths []string, writer *TrajectoryWriter, agg *TimingAggregator) error {
	tracker := NewSequenceTracker(r.Detector, r.NewTracker())
	load := r.LoadImage
	if load == nil {
		load = frames.LoadImage
	}

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		img, err := load(path)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}

		frame := mot.Frame{Index: i, Path: path, Image: img}

		start := agg.Clock().Now()
		trackings, err := tracker.Process(frame)
		elapsed := agg.Clock().Since(start)
		img.Close()
		if err != nil {
			return err
		}
		agg.Record(elapsed)

		if err := writer.Append(trackings); err != nil {
			return err
		}
	}
	return nil
}
