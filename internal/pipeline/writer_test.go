package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmot/trackbench/internal/fsutil"
	"github.com/openmot/trackbench/internal/mot"
)

func TestTrajectoryPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/data/results/seq01/ssd300/track.txt",
		TrajectoryPath("/data/results", "seq01", "ssd300"))
}

func TestTrajectoryWriter_RowFormat(t *testing.T) {
	t.Parallel()

	mfs := fsutil.NewMemoryFileSystem()
	w, err := OpenTrajectory(mfs, "/results", "seq01", "ssd300")
	require.NoError(t, err)

	require.NoError(t, w.Append([]mot.Tracking{
		{FrameIndex: 0, Label: "car", ID: 1, Box: mot.BoundingBox{X: 10, Y: 20, Width: 30, Height: 40}},
	}))
	require.NoError(t, w.Append(nil)) // frame with no trackings adds no rows
	require.NoError(t, w.Append([]mot.Tracking{
		{FrameIndex: 2, Label: "car", ID: 1, Box: mot.BoundingBox{X: 12, Y: 20, Width: 30, Height: 40}},
	}))
	require.NoError(t, w.Close())

	data, err := mfs.ReadFile("/results/seq01/ssd300/track.txt")
	require.NoError(t, err)
	assert.Equal(t,
		"0,car,1,10,20,30,40,1,-1,-1,-1\n"+
			"2,car,1,12,20,30,40,1,-1,-1,-1\n",
		string(data))
}

func TestTrajectoryWriter_FractionalCoordinates(t *testing.T) {
	t.Parallel()

	mfs := fsutil.NewMemoryFileSystem()
	w, err := OpenTrajectory(mfs, "/results", "seq01", "ssd300")
	require.NoError(t, err)

	require.NoError(t, w.Append([]mot.Tracking{
		{FrameIndex: 5, Label: "person", ID: 3, Box: mot.BoundingBox{X: 10.5, Y: 0.25, Width: 31.75, Height: 42.5}},
	}))
	require.NoError(t, w.Close())

	data, err := mfs.ReadFile("/results/seq01/ssd300/track.txt")
	require.NoError(t, err)
	assert.Equal(t, "5,person,3,10.5,0.25,31.75,42.5,1,-1,-1,-1\n", string(data))
}

func TestOpenTrajectory_CreatesParentDirectories(t *testing.T) {
	t.Parallel()

	mfs := fsutil.NewMemoryFileSystem()
	w, err := OpenTrajectory(mfs, "/deep/results", "seq01", "cfg")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.True(t, mfs.Exists("/deep/results/seq01/cfg"))
	assert.True(t, mfs.Exists("/deep/results/seq01/cfg/track.txt"))
}

func TestOpenTrajectory_ExistingArtifactReturnsErrExists(t *testing.T) {
	t.Parallel()

	mfs := fsutil.NewMemoryFileSystem()
	original := []byte("0,car,1,10,20,30,40,1,-1,-1,-1\n")
	require.NoError(t, mfs.WriteFile("/results/seq01/cfg/track.txt", original, 0644))

	_, err := OpenTrajectory(mfs, "/results", "seq01", "cfg")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExists))

	// The existing artifact is untouched.
	data, err := mfs.ReadFile("/results/seq01/cfg/track.txt")
	require.NoError(t, err)
	assert.Equal(t, original, data)
}

func TestTrajectoryWriter_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	mfs := fsutil.NewMemoryFileSystem()
	w, err := OpenTrajectory(mfs, "/results", "seq01", "cfg")
	require.NoError(t, err)

	require.NoError(t, w.Append([]mot.Tracking{
		{FrameIndex: 0, Label: "car", ID: 1, Box: mot.BoundingBox{X: 1, Y: 2, Width: 3, Height: 4}},
	}))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	data, err := mfs.ReadFile("/results/seq01/cfg/track.txt")
	require.NoError(t, err)
	assert.Equal(t, "0,car,1,1,2,3,4,1,-1,-1,-1\n", string(data))
}
