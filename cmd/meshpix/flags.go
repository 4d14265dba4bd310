package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/meshpix/internal/config"
)

// addFrameFlags adds the flags describing the frame geometry and threshold.
// Sender and receiver must agree on these.
func addFrameFlags(cmd *cobra.Command) {
	cmd.Flags().IntP(config.FlagWidth, "W", config.DefaultWidth,
		"Frame width in cells")
	cmd.Flags().IntP(config.FlagHeight, "H", config.DefaultHeight,
		"Frame height in cells")
}

// addEncodeFlags adds the flags that control how an image becomes a frame.
func addEncodeFlags(cmd *cobra.Command) {
	addFrameFlags(cmd)
	cmd.Flags().IntP(config.FlagThreshold, "t", config.DefaultThreshold,
		"Luminance (0-255) at or above which a cell is set")
	cmd.Flags().Bool(config.FlagAutoOrient, false,
		"Rotate the image according to its EXIF orientation")
	cmd.Flags().Float64(config.FlagContrast, 0,
		"Contrast adjustment in percent (-100 to 100)")
	cmd.Flags().Float64(config.FlagBlur, 0,
		"Gaussian blur sigma applied before resizing")
	cmd.Flags().Bool(config.FlagInvert, false,
		"Invert the image before thresholding")
	cmd.Flags().Bool("no-history", false,
		"Do not save encoded frames to the history database")
}

// addPreviewFlags adds the flags that control the decoded preview.
func addPreviewFlags(cmd *cobra.Command) {
	cmd.Flags().IntP(config.FlagGap, "g", config.DefaultGap,
		"Preview gap; each cell is scaled by gap+1")
	cmd.Flags().StringP(config.FlagMode, "m", config.DefaultMode,
		"Preview mode (block or dotgrid)")
}

// addArtifactFlags adds the per-frame artifact flags with the given default.
func addArtifactFlags(cmd *cobra.Command, enabled bool) {
	cmd.Flags().StringP("output-dir", "o", "",
		"Directory for artifacts (default: next to each image)")
	cmd.Flags().Bool("text", enabled, "Write the <name>_1bit.txt text dump")
	cmd.Flags().Bool("png", enabled, "Write the <name>_1bit.png raster")
	cmd.Flags().Bool("packed", enabled, "Write the <name>_1bit_packed.bin packed frame")
}

// addReportFlags adds the report format flags.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().Bool("markdown", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("report", "r", "",
		"Write report to specified file path (creates directories if needed)")
}

// buildConfig creates a Config from the flags defined on cmd, then applies
// the selected profile from the configuration file to every setting the
// user did not pass explicitly.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Inputs = args
	cfg.Verbose = getVerboseFlag(cmd)

	flags := cmd.Flags()
	var err error

	// Commands define different subsets of these flags, and decode reuses
	// "text" as a path, so a flag is only read when it has the expected type.
	defined := func(name, typ string) bool {
		f := flags.Lookup(name)
		return err == nil && f != nil && f.Value.Type() == typ
	}

	readInt := func(name string, dst *int) {
		if defined(name, "int") {
			*dst, err = flags.GetInt(name)
		}
	}
	readBool := func(name string, dst *bool) {
		if defined(name, "bool") {
			*dst, err = flags.GetBool(name)
		}
	}
	readFloat := func(name string, dst *float64) {
		if defined(name, "float64") {
			*dst, err = flags.GetFloat64(name)
		}
	}
	readString := func(name string, dst *string) {
		if defined(name, "string") {
			*dst, err = flags.GetString(name)
		}
	}

	readInt(config.FlagWidth, &cfg.Width)
	readInt(config.FlagHeight, &cfg.Height)
	readInt(config.FlagThreshold, &cfg.Threshold)
	readInt(config.FlagGap, &cfg.Gap)
	readString(config.FlagMode, &cfg.Mode)
	readBool(config.FlagAutoOrient, &cfg.AutoOrient)
	readFloat(config.FlagContrast, &cfg.Contrast)
	readFloat(config.FlagBlur, &cfg.Blur)
	readBool(config.FlagInvert, &cfg.Invert)

	readInt("batch", &cfg.BatchSize)
	readString("csv", &cfg.CSVFile)
	readString("output-dir", &cfg.OutputDir)
	readBool("text", &cfg.WriteText)
	readBool("png", &cfg.WritePNG)
	readBool("packed", &cfg.WritePacked)

	readBool("json", &cfg.JSONReport)
	readBool("markdown", &cfg.MarkdownReport)
	readString("report", &cfg.ReportFile)

	var noHistory bool
	readBool("no-history", &noHistory)
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noHistory

	if defined("ext", "stringSlice") {
		exts, err := flags.GetStringSlice("ext")
		if err != nil {
			return nil, err
		}
		if len(exts) > 0 {
			cfg.Extensions = exts
		}
	}

	if dbDir := persistentString(cmd, "db-dir"); dbDir != "" {
		cfg.DBDir = dbDir
	}

	if err := loadProfile(cmd, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadProfile loads the configuration file and applies the selected profile.
// If the user named a config file that does not exist, that is an error; if
// no file is found otherwise, the flag values are used as they are.
func loadProfile(cmd *cobra.Command, cfg *config.Config) error {
	cfg.ConfigFilePath = persistentString(cmd, "config")
	cfg.Profile = persistentString(cmd, "profile")

	var err error

	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	switch {
	case configPath != "":
		cfg.Profiles, err = config.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case explicitConfigPath:
		return fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		cfg.Profiles = &config.File{Profiles: make(map[string]config.Profile)}
	}

	profile, err := cfg.Profiles.Profile(cfg.Profile)
	if err != nil {
		return err
	}
	cfg.ApplyProfile(profile, cmd.Flags().Changed)

	return nil
}

// persistentString reads a string flag that may be defined on the root.
func persistentString(cmd *cobra.Command, name string) string {
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup(name)
	}
	if flag == nil {
		return ""
	}
	return flag.Value.String()
}
