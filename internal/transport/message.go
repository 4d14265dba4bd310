package transport

import (
	"fmt"
	"strings"
	"time"
)

// UnknownSender is used when a received line carries no sender.
const UnknownSender = "unknown"

// Message is one line received from a channel.
type Message struct {
	// Sender is the trimmed text before the first colon, or UnknownSender.
	Sender string
	// Payload is the trimmed armored frame.
	Payload string
}

// ParseMessage splits a received line of the form "sender: payload" on its
// first colon. Lines without a colon are treated as a bare payload.
func ParseMessage(line string) Message {
	sender, payload, found := strings.Cut(line, ":")
	if !found {
		return Message{Sender: UnknownSender, Payload: strings.TrimSpace(line)}
	}
	return Message{
		Sender:  strings.TrimSpace(sender),
		Payload: strings.TrimSpace(payload),
	}
}

// Units decodes the message payload.
func (m Message) Units() (Units, error) {
	return Unarmor(m.Payload)
}

// SafeSender keeps only letters, digits, '-' and '_' of sender so it can be
// used in a file name. An empty result becomes UnknownSender.
func SafeSender(sender string) string {
	var b strings.Builder
	for _, r := range sender {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return UnknownSender
	}
	return b.String()
}

// ReceivedFileName returns the file name for the n-th frame received from
// sender at t, e.g. "node7_3_20250102_150405.png".
func ReceivedFileName(sender string, n int, t time.Time) string {
	return fmt.Sprintf("%s_%d_%s.png", SafeSender(sender), n, t.Format("20060102_150405"))
}
