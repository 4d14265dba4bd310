package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/nao1215/meshpix/internal/config"
)

// parseCmd finds the subcommand for args on a fresh root and parses its flags
// without running it.
func parseCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()

	root := NewRootCmd()
	cmd, rest, err := root.Find(args)
	if err != nil {
		t.Fatalf("Find(%v) error = %v", args, err)
	}
	if err := cmd.ParseFlags(rest); err != nil {
		t.Fatalf("ParseFlags(%v) error = %v", rest, err)
	}
	return cmd
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "meshpix.yaml")
	yaml := `defaults:
  threshold: 100
profiles:
  wide:
    width: 64
    height: 32
    mode: dotgrid
    invert: true
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Run("flag defaults", func(t *testing.T) {
		t.Parallel()

		cmd := parseCmd(t, "encode", "--config", cfgPath, "x.png")
		cfg, err := buildConfig(cmd, []string{"x.png"})
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}

		if cfg.Width != config.DefaultWidth || cfg.Height != config.DefaultHeight {
			t.Errorf("size = %dx%d, want defaults", cfg.Width, cfg.Height)
		}
		if cfg.Threshold != 100 {
			t.Errorf("Threshold = %d, want 100 from the file defaults", cfg.Threshold)
		}
		if !cfg.WriteText || !cfg.WritePNG || !cfg.WritePacked {
			t.Error("encode writes all artifacts by default")
		}
		if !cfg.SaveToDB {
			t.Error("history is on by default")
		}
		if diff := cmp.Diff([]string{"x.png"}, cfg.Inputs); diff != "" {
			t.Errorf("Inputs mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("profile applies where flags were not given", func(t *testing.T) {
		t.Parallel()

		cmd := parseCmd(t, "encode", "--config", cfgPath, "--profile", "wide", "-H", "16", "--no-history")
		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}

		if cfg.Width != 64 {
			t.Errorf("Width = %d, want 64 from the profile", cfg.Width)
		}
		if cfg.Height != 16 {
			t.Errorf("Height = %d, want 16 from the flag", cfg.Height)
		}
		if !cfg.Invert || cfg.Mode != "dotgrid" {
			t.Errorf("Invert = %v, Mode = %q, want profile values", cfg.Invert, cfg.Mode)
		}
		if cfg.SaveToDB {
			t.Error("--no-history should disable history")
		}
	})

	t.Run("decode text flag is not read as an artifact switch", func(t *testing.T) {
		t.Parallel()

		cmd := parseCmd(t, "decode", "--config", cfgPath, "--text", "dump.txt")
		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}
		if cfg.WriteText {
			t.Error("WriteText should stay false for decode")
		}
	})

	t.Run("batch defaults", func(t *testing.T) {
		t.Parallel()

		cmd := parseCmd(t, "batch", "--config", cfgPath, "--db-dir", dir, "imgs")
		cfg, err := buildConfig(cmd, []string{"imgs"})
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}
		if cfg.BatchSize != config.DefaultBatchSize || cfg.CSVFile != config.DefaultCSVFile {
			t.Errorf("BatchSize = %d, CSVFile = %q, want defaults", cfg.BatchSize, cfg.CSVFile)
		}
		if cfg.WriteText || cfg.WritePNG || cfg.WritePacked {
			t.Error("batch writes no artifacts by default")
		}
		if cfg.DBDir != dir {
			t.Errorf("DBDir = %q, want %q", cfg.DBDir, dir)
		}
		if diff := cmp.Diff(config.DefaultExtensions(), cfg.Extensions); diff != "" {
			t.Errorf("Extensions mismatch (-want +got):\n%s", diff)
		}
	})
}
