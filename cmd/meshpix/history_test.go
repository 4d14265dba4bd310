package main

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/meshpix/internal/database"
)

func TestHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("encoded frames can be listed, shown, decoded and deleted", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		img := writeStripes(t, env.dir, "stripes.png", 8, 2)
		if _, err := env.run(t, "encode", "-W", "8", "-H", "2", "--text=false", "--png=false", "--packed=false", img); err != nil {
			t.Fatalf("encode error = %v", err)
		}

		out, err := env.run(t, "history")
		if err != nil {
			t.Fatalf("history error = %v", err)
		}
		lines := strings.Split(strings.TrimSpace(out), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected header and one frame, got %q", out)
		}
		if !strings.Contains(lines[1], "stripes.png") || !strings.Contains(lines[1], "8x2@128") {
			t.Errorf("unexpected history row: %q", lines[1])
		}
		id := strings.Fields(lines[1])[0]

		out, err = env.run(t, "history", "show", id)
		if err != nil {
			t.Fatalf("history show error = %v", err)
		}
		if !strings.Contains(out, "Payload: VVU=") || !strings.Contains(out, "#.#.#.#.") {
			t.Errorf("unexpected show output: %q", out)
		}

		// The stored size is used, not the -W/-H defaults.
		output := filepath.Join(env.dir, "again.png")
		if _, err := env.run(t, "decode", "--history", id, "-o", output); err != nil {
			t.Fatalf("decode --history error = %v", err)
		}
		if b := readPNG(t, output).Bounds(); b.Dx() != 8 || b.Dy() != 2 {
			t.Errorf("image is %dx%d, want 8x2", b.Dx(), b.Dy())
		}

		out, err = env.run(t, "history", "sources")
		if err != nil {
			t.Fatalf("history sources error = %v", err)
		}
		if strings.TrimSpace(out) != img {
			t.Errorf("sources = %q, want %q", out, img)
		}

		if _, err := env.run(t, "history", "delete", id); err != nil {
			t.Fatalf("history delete error = %v", err)
		}
		if _, err := env.run(t, "history", "show", id); !errors.Is(err, database.ErrFrameNotFound) {
			t.Errorf("show after delete error = %v, want %v", err, database.ErrFrameNotFound)
		}
	})

	t.Run("no-history skips saving", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		img := writeStripes(t, env.dir, "stripes.png", 8, 2)
		if _, err := env.run(t, "encode", "--no-history", "-W", "8", "-H", "2", "--text=false", "--png=false", "--packed=false", img); err != nil {
			t.Fatalf("encode error = %v", err)
		}

		if _, err := env.run(t, "history"); err == nil || !strings.Contains(err.Error(), "no history yet") {
			t.Errorf("expected missing history error, got %v", err)
		}
	})

	t.Run("shortID and abbreviate", func(t *testing.T) {
		t.Parallel()

		if got := shortID("0123456789abcdef"); got != "01234567" {
			t.Errorf("shortID() = %q", got)
		}
		if got := shortID("abc"); got != "abc" {
			t.Errorf("shortID() = %q", got)
		}
		if got := abbreviate("VVVVVVVVVVVV", 8); got != "VVVVV..." {
			t.Errorf("abbreviate() = %q", got)
		}
	})
}
