// Package frames enumerates and loads the image frames of a sequence.
package frames

import (
	"fmt"
	"path/filepath"

	"gocv.io/x/gocv"

	"github.com/openmot/trackbench/internal/fsutil"
)

// Source enumerates the frames of a sequence in lexicographic path order.
// Frame files must be named so that lexicographic order equals temporal
// order; the source never reorders by embedded timestamps or numeric
// parsing.
type Source struct {
	FS fsutil.FileSystem
}

// NewSource creates a Source backed by the given filesystem.
func NewSource(fsys fsutil.FileSystem) *Source {
	return &Source{FS: fsys}
}

// List returns the full paths of the regular files under imagesDir, sorted
// lexicographically by filename. Listing is pure, so enumeration can be
// restarted by calling List again. A missing directory is an error
// satisfying errors.Is(err, fs.ErrNotExist).
func (s *Source) List(imagesDir string) ([]string, error) {
	entries, err := s.FS.ReadDir(imagesDir)
	if err != nil {
		return nil, fmt.Errorf("list frames in %s: %w", imagesDir, err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(imagesDir, e.Name()))
	}
	return paths, nil
}

// LoadImage decodes the image file at path into a BGR matrix. The caller
// owns the returned matrix and must close it.
func LoadImage(path string) (gocv.Mat, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		return mat, fmt.Errorf("decode image %s: empty matrix", path)
	}
	return mat, nil
}
