package main

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nao1215/meshpix/internal/database"
	"github.com/nao1215/meshpix/internal/model"
)

// defaultHistoryLimit is the number of frames listed by default.
const defaultHistoryLimit = 20

// shortIDLen is the ID prefix length shown in listings.
const shortIDLen = 8

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List and inspect previously encoded frames",
		Long: `History shows the frames saved by encode and batch.

Each frame keeps its size and threshold, so it can be decoded again with
"meshpix decode --history <id>" without knowing the settings it was
encoded with. A unique prefix of an ID is enough.

Examples:
  # List the 20 most recent frames
  meshpix history

  # List all frames encoded from one file
  meshpix history list --source photos/cat.png --limit 0

  # Show one frame with its preview
  meshpix history show 1f2e3d4c`,
		Args: cobra.NoArgs,
		RunE: runHistoryListCmd,
	}
	addHistoryListFlags(cmd)

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved frames, newest first",
		Args:  cobra.NoArgs,
		RunE:  runHistoryListCmd,
	}
	addHistoryListFlags(list)

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one saved frame with its preview",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShowCmd,
	}
	addReportFlags(show)

	sources := &cobra.Command{
		Use:   "sources",
		Short: "List the input files that have saved frames",
		Args:  cobra.NoArgs,
		RunE:  runHistorySourcesCmd,
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved frame",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryDeleteCmd,
	}

	cmd.AddCommand(list, show, sources, del)
	return cmd
}

func addHistoryListFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", "", "Only list frames encoded from this file")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of frames (0 for all)")
}

// openHistoryForRead opens the existing history database.
func openHistoryForRead(cmd *cobra.Command) (*database.FrameDB, error) {
	cfg, err := buildConfig(cmd, nil)
	if err != nil {
		return nil, err
	}
	setupLogger(cmd)

	db, err := database.Open(cfg.DBDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return nil, fmt.Errorf("no history yet (encode an image first): %w", err)
	}
	return db, nil
}

func runHistoryListCmd(cmd *cobra.Command, _ []string) error {
	source, err := cmd.Flags().GetString("source")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	db, err := openHistoryForRead(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	frames, err := db.ListFrames(cmd.Context(), source, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(frames) == 0 {
		fmt.Fprintln(out, "No frames saved.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSOURCE\tSIZE\tBYTES\tPAYLOAD")
	for _, f := range frames {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%dx%d@%d\t%d\t%s\n",
			shortID(f.ID),
			f.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			filepath.Base(f.Source),
			f.Width, f.Height, f.Threshold,
			len(f.Packed),
			abbreviate(f.Payload, 24),
		)
	}
	return tw.Flush()
}

func runHistoryShowCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, nil)
	if err != nil {
		return err
	}
	cfg.Verbose = true

	db, err := openHistoryForRead(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	frame, err := db.GetFrame(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	return outputReport(cmd.OutOrStdout(), cfg, model.NewReport([]*model.Frame{frame}))
}

func runHistorySourcesCmd(cmd *cobra.Command, _ []string) error {
	db, err := openHistoryForRead(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	sources, err := db.ListSources(cmd.Context())
	if err != nil {
		return err
	}
	for _, s := range sources {
		fmt.Fprintln(cmd.OutOrStdout(), s)
	}
	return nil
}

func runHistoryDeleteCmd(cmd *cobra.Command, args []string) error {
	db, err := openHistoryForRead(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	// Resolve a prefix first so that only an unambiguous frame is deleted.
	frame, err := db.GetFrame(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := db.DeleteFrame(cmd.Context(), frame.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s)\n", frame.ID, frame.Source)
	return nil
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
