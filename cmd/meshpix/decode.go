package main

import (
	"bufio"
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/meshpix/internal/bitmap"
	"github.com/nao1215/meshpix/internal/codec"
	"github.com/nao1215/meshpix/internal/config"
	"github.com/nao1215/meshpix/internal/database"
	"github.com/nao1215/meshpix/internal/pipeline"
	"github.com/nao1215/meshpix/internal/transport"
)

// DefaultDecodeOutput is the image written for a payload given on the command line.
const DefaultDecodeOutput = "decoded.png"

// previewSuffix is inserted before the extension of the preview image.
const previewSuffix = "_interleaved"

var (
	// errNoDecodeInput is returned when decode is given nothing to decode.
	errNoDecodeInput = errors.New("no input: give a payload, --file, --text, --history or --message")

	// errMultipleDecodeInputs is returned when decode is given more than one input.
	errMultipleDecodeInputs = errors.New("give only one of payload, --file, --text, --history or --message")
)

// NewDecodeCmd creates the decode command.
func NewDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [payload]",
		Short: "Decode a payload back into an image",
		Long: `Decode rebuilds a frame and writes it as a PNG, plus an enlarged preview
named <name>_interleaved.png next to it.

The frame can come from:
  payload            a base64 payload as printed by "meshpix encode" ("-" reads stdin)
  --message LINE     a received channel line of the form "sender: payload"
  --file PATH        a <name>_1bit_packed.bin file
  --text PATH        a <name>_1bit.txt text dump
  --history ID       a frame from the history database (a unique ID prefix is enough)

Payloads and packed files do not carry their size: decode them with the
same --width and --height used to encode. Text dumps and history frames
carry their own size.

Examples:
  # Decode a payload into decoded.png and decoded_interleaved.png
  meshpix decode 'VVVVVQ...'

  # Decode a received line into <sender>_<n>_<time>.png
  meshpix decode --message 'node7: VVVVVQ...' --output-dir inbox

  # Round trip through a pipe and show the frame in the terminal
  meshpix encode cat.png --text=false --png=false --packed=false | meshpix decode --show -

  # Decode with a dot grid preview
  meshpix decode --mode dotgrid --gap 2 -o cat.png 'VVVVVQ...'`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDecodeCmd,
	}

	addFrameFlags(cmd)
	addPreviewFlags(cmd)

	cmd.Flags().StringP("file", "f", "", "Decode a packed frame file")
	cmd.Flags().StringP("text", "T", "", "Decode a text dump")
	cmd.Flags().String("history", "", "Decode a frame from the history database by ID")
	cmd.Flags().StringP("message", "M", "", `Decode a received "sender: payload" line`)

	cmd.Flags().StringP("output", "o", "", "Output PNG path (default depends on the input)")
	cmd.Flags().String("output-dir", "", "Directory for received message images (default: current directory)")
	cmd.Flags().Bool("no-preview", false, "Do not write the enlarged preview image")
	cmd.Flags().BoolP("show", "s", false, "Print the frame to stdout as text")

	return cmd
}

// decodeRequest is a parsed decode invocation.
type decodeRequest struct {
	payload   string
	file      string
	text      string
	history   string
	message   string
	output    string
	outputDir string
	noPreview bool
	show      bool
}

func readDecodeRequest(cmd *cobra.Command, args []string) (*decodeRequest, error) {
	req := &decodeRequest{}
	if len(args) == 1 {
		req.payload = args[0]
	}

	flags := cmd.Flags()
	var err error
	for name, dst := range map[string]*string{
		"file":       &req.file,
		"text":       &req.text,
		"history":    &req.history,
		"message":    &req.message,
		"output":     &req.output,
		"output-dir": &req.outputDir,
	} {
		if *dst, err = flags.GetString(name); err != nil {
			return nil, err
		}
	}
	if req.noPreview, err = flags.GetBool("no-preview"); err != nil {
		return nil, err
	}
	if req.show, err = flags.GetBool("show"); err != nil {
		return nil, err
	}

	n := 0
	for _, s := range []string{req.payload, req.file, req.text, req.history, req.message} {
		if s != "" {
			n++
		}
	}
	switch {
	case n == 0:
		return nil, errNoDecodeInput
	case n > 1:
		return nil, errMultipleDecodeInputs
	}
	return req, nil
}

// runDecodeCmd executes the decode command.
func runDecodeCmd(cmd *cobra.Command, args []string) error {
	req, err := readDecodeRequest(cmd, args)
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd, nil)
	if err != nil {
		return err
	}
	if err := cfg.ValidateFrame(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)

	decoded, output, err := decodeInput(cmd, cfg, req)
	if err != nil {
		return err
	}
	logger.Debug("frame decoded",
		"width", decoded.Bits.Width,
		"height", decoded.Bits.Height,
		"ones", decoded.Bits.Ones(),
		"output", output,
	)

	out := cmd.OutOrStdout()
	if err := writePNG(output, decoded.Bits); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s\n", output)

	if !req.noPreview {
		path := previewPath(output)
		if err := writePNG(path, decoded.Preview); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", path)
	}

	if req.show {
		fmt.Fprint(out, decoded.Bits.Render('#', '.'))
	}
	return nil
}

// decodeInput decodes whichever input req names and picks the output path.
func decodeInput(cmd *cobra.Command, cfg *config.Config, req *decodeRequest) (*codec.Decoded, string, error) {
	preview := cfg.Preview()
	outputOr := func(def string) string {
		if req.output != "" {
			return req.output
		}
		return def
	}

	switch {
	case req.payload != "":
		payload := req.payload
		if payload == "-" {
			line, err := readLine(cmd.InOrStdin())
			if err != nil {
				return nil, "", err
			}
			payload = line
		}
		units, err := transport.Unarmor(payload)
		if err != nil {
			return nil, "", err
		}
		decoded, err := codec.DecodeUnits(units, cfg.Width, cfg.Height, preview)
		return decoded, outputOr(DefaultDecodeOutput), err

	case req.message != "":
		msg := transport.ParseMessage(req.message)
		units, err := msg.Units()
		if err != nil {
			return nil, "", fmt.Errorf("message from %s: %w", msg.Sender, err)
		}
		decoded, err := codec.DecodeUnits(units, cfg.Width, cfg.Height, preview)
		if err != nil {
			return nil, "", fmt.Errorf("message from %s: %w", msg.Sender, err)
		}
		dir := req.outputDir
		if dir == "" {
			dir = "."
		}
		n := nextReceivedIndex(dir, msg.Sender)
		return decoded, outputOr(filepath.Join(dir, transport.ReceivedFileName(msg.Sender, n, time.Now()))), nil

	case req.file != "":
		packed, err := os.ReadFile(req.file)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", req.file, err)
		}
		decoded, err := codec.DecodeBytes(packed, cfg.Width, cfg.Height, preview)
		return decoded, outputOr(decodedName(req.file)), err

	case req.text != "":
		f, err := os.Open(req.text)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", req.text, err)
		}
		defer f.Close()
		bits, err := bitmap.ParseText(f)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", req.text, err)
		}
		view, err := bitmap.Visualize(bits, preview.Gap, preview.Mode)
		if err != nil {
			return nil, "", err
		}
		return &codec.Decoded{Bits: bits, Preview: view}, outputOr(decodedName(req.text)), nil

	default:
		db, err := database.Open(cfg.DBDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			return nil, "", err
		}
		defer db.Close()

		frame, err := db.GetFrame(cmd.Context(), req.history)
		if err != nil {
			return nil, "", err
		}
		decoded, err := codec.DecodeBytes(frame.Packed, frame.Width, frame.Height, preview)
		return decoded, outputOr(decodedName(frame.Source)), err
	}
}

// readLine reads the first non-empty line of r.
func readLine(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line, nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return "", errNoDecodeInput
}

// decodedName returns "<name>_decoded.png" in the current directory for an input path.
func decodedName(path string) string {
	return pipeline.BaseName(path) + "_decoded.png"
}

// previewPath returns the preview file name for a decoded image:
// "out.png" becomes "out_interleaved.png".
func previewPath(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return path + previewSuffix + ".png"
	}
	return strings.TrimSuffix(path, ext) + previewSuffix + ext
}

// nextReceivedIndex returns the number to use for the next frame received
// from sender into dir: one more than the frames from that sender already there.
func nextReceivedIndex(dir, sender string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 1
	}
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(transport.SafeSender(sender)) + `_\d+_\d{8}_\d{6}\.png$`)
	n := 0
	for _, e := range entries {
		if !e.IsDir() && pattern.MatchString(e.Name()) {
			n++
		}
	}
	return n + 1
}

// writePNG writes a grid as a black and white PNG.
func writePNG(path string, b *bitmap.Binary) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, b); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
