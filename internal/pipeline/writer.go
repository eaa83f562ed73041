package pipeline

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strconv"

	"github.com/openmot/trackbench/internal/fsutil"
	"github.com/openmot/trackbench/internal/mot"
)

// ErrExists reports that a sequence's trajectory artifact is already
// present. It is not a failure: the sequence is treated as already
// computed and skipped.
var ErrExists = errors.New("trajectory artifact already exists")

// TrajectoryFileName is the fixed artifact name within a sequence's
// output directory.
const TrajectoryFileName = "track.txt"

// TrajectoryPath derives the artifact path for a sequence processed with
// a given detector configuration.
func TrajectoryPath(resultsDir, sequence, configName string) string {
	return filepath.Join(resultsDir, sequence, configName, TrajectoryFileName)
}

// TrajectoryWriter serializes per-frame trackings into the line-oriented
// MOT trajectory format. The column layout is a compatibility contract:
//
//	frameIndex,label,ID,x1,y1,width,height,1,-1,-1,-1
//
// The four constant trailing fields are confidence/3D placeholders
// expected by downstream evaluation tooling.
type TrajectoryWriter struct {
	path   string
	file   io.WriteCloser
	buf    *bufio.Writer
	closed bool
}

// OpenTrajectory creates the artifact for one sequence. Parent directories
// are created as needed. Creation is exclusive: if the artifact already
// exists, OpenTrajectory returns ErrExists and writes nothing, so two runs
// targeting the same output path cannot race each other into a partial
// overwrite.
func OpenTrajectory(fsys fsutil.FileSystem, resultsDir, sequence, configName string) (*TrajectoryWriter, error) {
	path := TrajectoryPath(resultsDir, sequence, configName)

	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create output directory for %s: %w", path, err)
	}

	file, err := fsys.CreateExclusive(path)
	if errors.Is(err, fs.ErrExist) {
		return nil, ErrExists
	}
	if err != nil {
		return nil, fmt.Errorf("open trajectory %s: %w", path, err)
	}

	return &TrajectoryWriter{
		path: path,
		file: file,
		buf:  bufio.NewWriter(file),
	}, nil
}

// Path returns the artifact path.
func (w *TrajectoryWriter) Path() string { return w.path }

// Append writes one row per tracking. Rows for the same frame are written
// together, so they are contiguous in the artifact.
func (w *TrajectoryWriter) Append(trackings []mot.Tracking) error {
	for _, tr := range trackings {
		_, err := fmt.Fprintf(w.buf, "%d,%s,%d,%s,%s,%s,%s,1,-1,-1,-1\n",
			tr.FrameIndex, tr.Label, tr.ID,
			coord(tr.Box.X), coord(tr.Box.Y),
			coord(tr.Box.Width), coord(tr.Box.Height))
		if err != nil {
			return fmt.Errorf("append to %s: %w", w.path, err)
		}
	}
	return nil
}

// Close flushes and releases the artifact. It is safe to call on abort
// paths and is idempotent, so a deferred Close never leaves the handle in
// an ambiguous open state.
func (w *TrajectoryWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	flushErr := w.buf.Flush()
	closeErr := w.file.Close()
	if flushErr != nil {
		return fmt.Errorf("flush %s: %w", w.path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", w.path, closeErr)
	}
	return nil
}

// coord formats a pixel coordinate with no trailing zeros, matching the
// compact representation consumed by MOT evaluation scripts.
func coord(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
