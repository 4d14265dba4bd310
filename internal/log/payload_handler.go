package log

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// payloadKeys contains attribute keys whose values are always summarised.
var payloadKeys = map[string]bool{
	"payload": true,
	"packed":  true,
	"units":   true,
	"bits":    true,
	"b64":     true,
	"tx_b64":  true,
	"armor":   true,
	"frame":   true,
	"data":    true,
}

// base64Blob matches standard base64 text long enough to be a frame.
// 32 characters is 24 bytes, already more than a 12x12 frame.
var base64Blob = regexp.MustCompile(`^[A-Za-z0-9+/]{32,}={0,2}$`)

// PayloadHandler wraps an slog.Handler and summarises payload attributes
// before passing records on.
type PayloadHandler struct {
	handler slog.Handler
}

// NewPayloadHandler creates a new PayloadHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewPayloadHandler(handler slog.Handler) *PayloadHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &PayloadHandler{handler: handler}
}

// Enabled reports whether the underlying handler handles records at level.
func (h *PayloadHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle summarises the record's payload attributes and passes it on.
func (h *PayloadHandler) Handle(ctx context.Context, r slog.Record) error {
	redacted := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		redacted.AddAttrs(redactAttr(a))
		return true
	})
	return h.handler.Handle(ctx, redacted)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *PayloadHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = redactAttr(a)
	}
	return &PayloadHandler{handler: h.handler.WithAttrs(redacted)}
}

// WithGroup returns a new handler with the given group name.
func (h *PayloadHandler) WithGroup(name string) slog.Handler {
	return &PayloadHandler{handler: h.handler.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		redacted := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			redacted[i] = redactAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redacted...)}
	}

	if isPayloadKey(a.Key) {
		if data, ok := payloadBytes(a.Value); ok {
			return slog.String(a.Key, Summary(data))
		}
	}

	if a.Value.Kind() == slog.KindString && base64Blob.MatchString(a.Value.String()) {
		return slog.String(a.Key, Summary([]byte(a.Value.String())))
	}

	return a
}

func isPayloadKey(key string) bool {
	key = strings.ToLower(key)
	return payloadKeys[key] || strings.Contains(key, "payload") || strings.HasSuffix(key, "_b64")
}

// payloadBytes returns the bytes behind a value that can carry a frame.
// Numbers and booleans are left alone.
func payloadBytes(v slog.Value) ([]byte, bool) {
	switch v.Kind() {
	case slog.KindString:
		return []byte(v.String()), true
	case slog.KindAny:
		switch x := v.Any().(type) {
		case []byte:
			return x, true
		case []rune:
			return []byte(string(x)), true
		case fmt.Stringer:
			return []byte(x.String()), true
		}
	}
	return nil, false
}

// Summary returns the log form of a payload: its length and the first four
// bytes of its SHA3-256 digest.
func Summary(data []byte) string {
	sum := sha3.Sum256(data)
	return fmt.Sprintf("<redacted %d bytes sha3:%s>", len(data), hex.EncodeToString(sum[:4]))
}

// NewLogger creates a text slog.Logger that summarises payloads.
// verbose selects Debug level; otherwise only warnings and errors are logged.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewPayloadHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewJSONLogger is NewLogger with JSON output.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewPayloadHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
