package model

import "time"

// Report is the result of one run: every frame that was attempted, in input order.
type Report struct {
	// GeneratedAt is when the report was created.
	GeneratedAt time.Time `json:"generated_at"`

	// Frames holds the frames in input order.
	Frames []*Frame `json:"frames"`

	// Summary counts the frames.
	Summary Summary `json:"summary"`
}

// Summary counts the outcome of a run.
type Summary struct {
	// Total is the number of frames attempted.
	Total int `json:"total"`

	// Encoded is the number of frames packed successfully.
	Encoded int `json:"encoded"`

	// Failed is the number of frames that failed.
	Failed int `json:"failed"`

	// PackedBytes is the total size of all packed frames.
	PackedBytes int `json:"packed_bytes"`

	// PayloadChars is the total length of all base64 payloads.
	PayloadChars int `json:"payload_chars"`
}

// NewReport creates a report over frames and computes its summary.
func NewReport(frames []*Frame) *Report {
	r := &Report{
		GeneratedAt: time.Now(),
		Frames:      frames,
	}
	r.Summary = summarize(frames)
	return r
}

func summarize(frames []*Frame) Summary {
	var s Summary
	for _, f := range frames {
		if f == nil {
			continue
		}
		s.Total++
		if f.Failed() {
			s.Failed++
			continue
		}
		s.Encoded++
		s.PackedBytes += len(f.Packed)
		s.PayloadChars += len(f.Payload)
	}
	return s
}

// Encoded returns the frames that were packed successfully.
func (r *Report) Encoded() []*Frame {
	out := make([]*Frame, 0, len(r.Frames))
	for _, f := range r.Frames {
		if f != nil && !f.Failed() {
			out = append(out, f)
		}
	}
	return out
}

// HasFailures reports whether any frame failed.
func (r *Report) HasFailures() bool {
	return r.Summary.Failed > 0
}
