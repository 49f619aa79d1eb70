package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func newWatchTestCmd(ctx context.Context, out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{Use: "watch"}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetContext(ctx)
	cmd.Flags().StringP("out", "o", "", "write each result to this file instead of stdout")
	cmd.Flags().Duration("debounce", 20*time.Millisecond, "quiet period")
	addPreservationFlags(cmd.Flags())
	return cmd
}

// waitForFile polls path until its content equals want.
func waitForFile(t *testing.T, path, want string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if data, err := os.ReadFile(path); err == nil && string(data) == want {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	data, _ := os.ReadFile(path)
	t.Fatalf("%s = %q, want %q", path, data, want)
}

func TestWatchWritesOut(t *testing.T) {
	resetViper(t, "text")
	dir := t.TempDir()
	in := writeTempFile(t, dir, "in.txt", "Hello World")
	outPath := filepath.Join(dir, "out.txt")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd := newWatchTestCmd(ctx, &bytes.Buffer{})
	setFlag(t, cmd, "out", outPath)

	errCh := make(chan error, 1)
	go func() { errCh <- runWatch(cmd, []string{"snake-case", in}) }()

	waitForFile(t, outPath, "hello_world")
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(in, []byte("Second Draft"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	waitForFile(t, outPath, "second_draft")

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("runWatch() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("runWatch() did not return after cancel")
	}

	info, err := os.Stat(outPath)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Errorf("out mode = %v, want 0644", info.Mode().Perm())
	}
}

func TestWatchStdout(t *testing.T) {
	resetViper(t, "text")
	dir := t.TempDir()
	in := writeTempFile(t, dir, "in.txt", "abc")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	var out bytes.Buffer
	cmd := newWatchTestCmd(ctx, &out)

	if err := runWatch(cmd, []string{"upper-case", in}); err != nil {
		t.Fatalf("runWatch() error = %v", err)
	}
	if out.String() != "ABC\n" {
		t.Errorf("output = %q, want %q", out.String(), "ABC\n")
	}
}

func TestWatchRejectsSameOut(t *testing.T) {
	resetViper(t, "text")
	dir := t.TempDir()
	in := writeTempFile(t, dir, "in.txt", "abc")

	cmd := newWatchTestCmd(context.Background(), &bytes.Buffer{})
	setFlag(t, cmd, "out", filepath.Join(dir, ".", "in.txt"))

	err := runWatch(cmd, []string{"upper-case", in})
	if err == nil || !strings.Contains(err.Error(), "--out must differ") {
		t.Fatalf("runWatch() error = %v, want --out rejection", err)
	}
}

func TestWatchMissingFile(t *testing.T) {
	resetViper(t, "text")
	cmd := newWatchTestCmd(context.Background(), &bytes.Buffer{})

	err := runWatch(cmd, []string{"upper-case", filepath.Join(t.TempDir(), "nope.txt")})
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("runWatch() error = %v, want missing file error", err)
	}
}

func TestWatchUnknownKey(t *testing.T) {
	resetViper(t, "text")
	in := writeTempFile(t, t.TempDir(), "in.txt", "abc")
	cmd := newWatchTestCmd(context.Background(), &bytes.Buffer{})

	if err := runWatch(cmd, []string{"no-such-key", in}); err == nil {
		t.Fatal("runWatch() error = nil, want unknown key error")
	}
}

func TestSamePath(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.txt", "x")
	b := writeTempFile(t, dir, "b.txt", "x")
	link := filepath.Join(dir, "link.txt")
	if err := os.Symlink(a, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	tests := []struct {
		a, b string
		want bool
	}{
		{a, a, true},
		{a, filepath.Join(dir, "sub", "..", "a.txt"), true},
		{a, link, true},
		{a, b, false},
		{a, filepath.Join(dir, "missing.txt"), false},
	}
	for _, tt := range tests {
		got, err := samePath(tt.a, tt.b)
		if err != nil {
			t.Fatalf("samePath(%q, %q) error = %v", tt.a, tt.b, err)
		}
		if got != tt.want {
			t.Errorf("samePath(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	for _, content := range []string{"first", "second"} {
		if err := writeFileAtomic(path, content); err != nil {
			t.Fatalf("writeFileAtomic() error = %v", err)
		}
		waitForFile(t, path, content)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}
