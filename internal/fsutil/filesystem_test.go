package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_Exists(t *testing.T) {
	osfs := OSFileSystem{}

	if !osfs.Exists("filesystem.go") {
		t.Error("expected filesystem.go to exist")
	}

	if osfs.Exists("nonexistent_file_xyz.go") {
		t.Error("expected nonexistent file to not exist")
	}
}

func TestOSFileSystem_CreateExclusive(t *testing.T) {
	osfs := OSFileSystem{}
	path := filepath.Join(t.TempDir(), "track.txt")

	w, err := osfs.CreateExclusive(path)
	if err != nil {
		t.Fatalf("CreateExclusive failed: %v", err)
	}
	if _, err := w.Write([]byte("row\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	_, err = osfs.CreateExclusive(path)
	if !errors.Is(err, fs.ErrExist) {
		t.Errorf("expected fs.ErrExist on second create, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "row\n" {
		t.Errorf("expected 'row\\n', got %q", data)
	}
}

func TestOSFileSystem_ReadDirSorted(t *testing.T) {
	osfs := OSFileSystem{}
	dir := t.TempDir()

	for _, name := range []string{"000002.jpg", "000001.jpg", "000003.jpg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte{0}, 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	entries, err := osfs.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	want := []string{"000001.jpg", "000002.jpg", "000003.jpg"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, e := range entries {
		if e.Name() != want[i] {
			t.Errorf("entry %d = %q, want %q", i, e.Name(), want[i])
		}
	}
}

func TestMemoryFileSystem_WriteAndRead(t *testing.T) {
	mfs := NewMemoryFileSystem()

	testData := []byte("hello, world")
	err := mfs.WriteFile("/test.txt", testData, 0644)
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := mfs.ReadFile("/test.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if string(data) != string(testData) {
		t.Errorf("expected %q, got %q", testData, data)
	}
}

func TestMemoryFileSystem_CreateExclusive(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w, err := mfs.CreateExclusive("/out/track.txt")
	if err != nil {
		t.Fatalf("CreateExclusive failed: %v", err)
	}
	if _, err := w.Write([]byte("0,car,1,10,20,30,40,1,-1,-1,-1\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	_, err = mfs.CreateExclusive("/out/track.txt")
	if !errors.Is(err, fs.ErrExist) {
		t.Errorf("expected fs.ErrExist on second create, got %v", err)
	}

	data, err := mfs.ReadFile("/out/track.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "0,car,1,10,20,30,40,1,-1,-1,-1\n" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestMemoryFileSystem_ReadDir(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if err := mfs.WriteFile("/seq/images/b.jpg", []byte{1}, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := mfs.WriteFile("/seq/images/a.jpg", []byte{1}, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := mfs.MkdirAll("/seq/images/sub", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	entries, err := mfs.ReadDir("/seq/images")
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	want := []string{"a.jpg", "b.jpg", "sub"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, names[i], want[i])
		}
	}
	if !entries[2].IsDir() {
		t.Error("expected sub to be a directory")
	}

	_, err = mfs.ReadDir("/missing")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestMemoryFileSystem_MkdirAllAndExists(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if err := mfs.MkdirAll("/results/seq01/ssd", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	for _, dir := range []string{"/results", "/results/seq01", "/results/seq01/ssd"} {
		if !mfs.Exists(dir) {
			t.Errorf("expected %s to exist", dir)
		}
		info, err := mfs.Stat(dir)
		if err != nil {
			t.Fatalf("Stat(%s) failed: %v", dir, err)
		}
		if !info.IsDir() {
			t.Errorf("expected %s to be a directory", dir)
		}
	}
}
