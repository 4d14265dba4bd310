package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/meshpix/internal/config"
	mlog "github.com/nao1215/meshpix/internal/log"
)

// NewRootCmd creates the root command for meshpix.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meshpix",
		Short: "Send images over text-only mesh radio channels",
		Long: `meshpix converts an image into a 1-bit frame packed eight cells per byte,
and prints it as a short base64 payload that fits in a single channel message.
A received payload is decoded back into a PNG and an upscaled preview.

The frame size is not stored in the payload: sender and receiver must use
the same --width and --height (default 32x18, 72 bytes, 96 characters).
Profiles in a .meshpix configuration file keep those settings in one place.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return checkLogFormat(persistentString(cmd, "log-format"))
		},
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: "+config.DefaultConfigFile+" in current or home directory)")
	cmd.PersistentFlags().StringP("profile", "P", "",
		"Profile from the configuration file to apply")
	cmd.PersistentFlags().String("db-dir", "",
		"Directory of the history database (default: "+config.XDGDataDir()+")")
	cmd.PersistentFlags().String("log-format", logFormatText, "Log format on stderr: text or json")

	cmd.AddCommand(NewEncodeCmd())
	cmd.AddCommand(NewDecodeCmd())
	cmd.AddCommand(NewBatchCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// Log formats accepted by --log-format.
const (
	logFormatText = "text"
	logFormatJSON = "json"
)

var errInvalidLogFormat = errors.New("invalid log format: must be text or json")

func checkLogFormat(format string) error {
	switch format {
	case "", logFormatText, logFormatJSON:
		return nil
	default:
		return fmt.Errorf("%w: %q", errInvalidLogFormat, format)
	}
}

// setupLogger creates the structured logger for a command and makes it the
// default. Payloads are summarised so frames do not end up in logs.
func setupLogger(cmd *cobra.Command) *slog.Logger {
	newLogger := mlog.NewLogger
	if persistentString(cmd, "log-format") == logFormatJSON {
		newLogger = mlog.NewJSONLogger
	}
	logger := newLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))
	slog.SetDefault(logger)
	return logger
}
