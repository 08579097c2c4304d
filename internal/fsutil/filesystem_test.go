package fsutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
)

func TestOSFileSystem(t *testing.T) {
	var fsys FileSystem = OSFileSystem{}
	dir := filepath.Join(t.TempDir(), "a", "b")

	if err := fsys.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	name := filepath.Join(dir, "f.txt")
	if err := fsys.WriteFile(name, []byte("hello"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := fsys.ReadFile(name)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("ReadFile = %q, want hello", got)
	}
}

func TestMemoryFileSystem_WriteRead(t *testing.T) {
	m := NewMemoryFileSystem()

	if err := m.WriteFile("plots/a.png", []byte("x"), 0644); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("write without parent: err = %v, want ErrNotExist", err)
	}

	if err := m.MkdirAll("plots/sub", 0755); err != nil {
		t.Fatal(err)
	}
	data := []byte("png")
	if err := m.WriteFile("plots/a.png", data, 0644); err != nil {
		t.Fatal(err)
	}
	if err := m.WriteFile("plots/sub/../b.png", []byte("b"), 0644); err != nil {
		t.Fatal(err)
	}
	data[0] = 'X'

	got, err := m.ReadFile("plots/a.png")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "png" {
		t.Errorf("ReadFile = %q, want stored copy png", got)
	}

	want := []string{filepath.Join("plots", "a.png"), filepath.Join("plots", "b.png")}
	files := m.Files()
	if len(files) != len(want) || files[0] != want[0] || files[1] != want[1] {
		t.Errorf("Files() = %v, want %v", files, want)
	}
}

func TestMemoryFileSystem_Errors(t *testing.T) {
	m := NewMemoryFileSystem()

	if _, err := m.ReadFile("missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile missing: err = %v", err)
	}

	if err := m.WriteFile("file", nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := m.MkdirAll("file/sub", 0755); !errors.Is(err, fs.ErrExist) {
		t.Errorf("MkdirAll through a file: err = %v, want ErrExist", err)
	}
}
