package detect

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmot/trackbench/internal/mot"
)

func TestRandomDetector_DeterministicForSeed(t *testing.T) {
	t.Parallel()

	cfg := DefaultRandomDetectorConfig()
	cfg.Seed = 42

	a := NewRandomDetector(cfg)
	b := NewRandomDetector(cfg)

	for i := 0; i < 5; i++ {
		da, err := a.Detect(mot.Frame{Index: i})
		require.NoError(t, err)
		db, err := b.Detect(mot.Frame{Index: i})
		require.NoError(t, err)

		if diff := cmp.Diff(da, db); diff != "" {
			t.Fatalf("frame %d proposals differ (-a +b):\n%s", i, diff)
		}
	}
}

func TestRandomDetector_BoxesWithinImageBounds(t *testing.T) {
	t.Parallel()

	cfg := DefaultRandomDetectorConfig()
	cfg.Seed = 7
	d := NewRandomDetector(cfg)

	for i := 0; i < 50; i++ {
		detections, err := d.Detect(mot.Frame{Index: i})
		require.NoError(t, err)

		for _, det := range detections {
			assert.Equal(t, cfg.Label, det.Label)
			assert.GreaterOrEqual(t, det.Box.X, 0.0)
			assert.Less(t, det.Box.X, cfg.ImageWidth)
			assert.GreaterOrEqual(t, det.Box.Y, 0.0)
			assert.Less(t, det.Box.Y, cfg.ImageHeight)
			assert.GreaterOrEqual(t, det.Box.Width, 1.0)
			assert.GreaterOrEqual(t, det.Box.Height, 1.0)
		}
	}
}

func TestRandomDetector_Name(t *testing.T) {
	t.Parallel()

	d := NewRandomDetector(DefaultRandomDetectorConfig())
	assert.Equal(t, "random", d.Name())
}
