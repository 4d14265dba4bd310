package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// testEnv isolates a command run from the user's history and config file.
type testEnv struct {
	dir    string
	dbDir  string
	config string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	env := &testEnv{
		dir:    dir,
		dbDir:  filepath.Join(dir, "db"),
		config: filepath.Join(dir, "meshpix.yaml"),
	}
	if err := os.WriteFile(env.config, nil, 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return env
}

// run executes the root command with args and returns its stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return e.runWithInput(t, "", args...)
}

func (e *testEnv) runWithInput(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(bytes.NewBufferString(stdin))
	cmd.SetArgs(append([]string{"--config", e.config, "--db-dir", e.dbDir}, args...))

	err := cmd.Execute()
	return out.String(), err
}

// writeStripes writes a w x h PNG whose even columns are white and odd
// columns black. At its own size it packs into 0x55 bytes.
func writeStripes(t *testing.T, dir, name string, w, h int) string {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode PNG: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("failed to write PNG: %v", err)
	}
	return path
}

// readPNG decodes the PNG at path.
func readPNG(t *testing.T, path string) image.Image {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("failed to decode %s: %v", path, err)
	}
	return img
}
