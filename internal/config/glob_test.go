package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestExpandGlobs(t *testing.T) {
	dir := t.TempDir()

	fileA := filepath.Join(dir, "a.md")
	fileB := filepath.Join(dir, "b.md")
	fileC := filepath.Join(dir, "c.txt")

	for _, path := range []string{fileA, fileB, fileC} {
		if err := os.WriteFile(path, []byte("test"), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "d.md"), 0o755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}

	files, err := ExpandGlobs([]string{filepath.Join(dir, "*.md")})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d: %v", len(files), files)
	}

	files, err = ExpandGlobs([]string{fileA, filepath.Join(dir, "*.md")})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
}

func TestExpandGlobsStdin(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	files, err := ExpandGlobs([]string{file, StdinPath})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	if len(files) != 2 || files[0] != StdinPath || files[1] != file {
		t.Fatalf("unexpected files: %v", files)
	}
}

func TestExpandGlobsErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := ExpandGlobs(nil); !errors.Is(err, ErrNoInputs) {
		t.Errorf("ExpandGlobs(nil) error = %v, want ErrNoInputs", err)
	}
	if _, err := ExpandGlobs([]string{filepath.Join(dir, "*.missing")}); err == nil {
		t.Error("expected error for unmatched glob")
	}
	if _, err := ExpandGlobs([]string{dir}); err == nil {
		t.Error("expected error for a directory argument")
	}
	if _, err := ExpandGlobs([]string{filepath.Join(dir, "nope.txt")}); err == nil {
		t.Error("expected error for a missing file")
	}
}
