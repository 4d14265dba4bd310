package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/meshpix/internal/transport"
)

func TestNewFrame(t *testing.T) {
	t.Parallel()

	a := NewFrame("cat.jpg")
	b := NewFrame("cat.jpg")

	if a.Source != "cat.jpg" {
		t.Errorf("expected source cat.jpg, got %q", a.Source)
	}
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty IDs, got %q and %q", a.ID, b.ID)
	}
	if a.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if a.Failed() {
		t.Error("new frame should not be failed")
	}
}

func TestFrameSetPacked(t *testing.T) {
	t.Parallel()

	f := NewFrame("cat.jpg")
	f.SetPacked([]byte{165, 0, 255})

	if f.Payload != "pQD/" {
		t.Errorf("expected payload pQD/, got %q", f.Payload)
	}
	if len(f.Digest) != 64 {
		t.Errorf("expected 64 hex digits, got %q", f.Digest)
	}
	if diff := cmp.Diff(transport.Units{165, 0, 255}, f.Units()); diff != "" {
		t.Errorf("units mismatch (-want +got):\n%s", diff)
	}
	if Digest([]byte{165, 0, 255}) != f.Digest || Digest([]byte{165}) == f.Digest {
		t.Error("digest should depend only on the packed bytes")
	}
}

func TestFrameSetError(t *testing.T) {
	t.Parallel()

	f := NewFrame("broken.png")
	f.SetError(errors.New("cannot load image"))
	if !f.Failed() || f.ErrorMessage != "cannot load image" {
		t.Errorf("unexpected error state: %v %q", f.Error, f.ErrorMessage)
	}
}

func TestFrameJSON(t *testing.T) {
	t.Parallel()

	f := NewFrame("cat.jpg")
	f.Width, f.Height, f.Threshold = 8, 1, 128
	f.SourceData = []byte("raw image bytes")
	f.SetPacked([]byte{1})
	f.AddArtifact("out/cat_1bit.png")

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{`"source":"cat.jpg"`, `"payload":"AQ=="`, `"width":8`, `"artifacts":["out/cat_1bit.png"]`} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %s in %s", want, s)
		}
	}
	if strings.Contains(s, "raw image bytes") || strings.Contains(s, "cmF3") {
		t.Errorf("source data should not be serialized: %s", s)
	}
}

func TestNewReport(t *testing.T) {
	t.Parallel()

	ok1 := NewFrame("a.png")
	ok1.SetPacked(make([]byte, 72))
	ok2 := NewFrame("b.png")
	ok2.SetPacked(make([]byte, 3))
	bad := NewFrame("c.png")
	bad.SetError(errors.New("boom"))

	r := NewReport([]*Frame{ok1, bad, ok2, nil})

	want := Summary{Total: 3, Encoded: 2, Failed: 1, PackedBytes: 75, PayloadChars: 96 + 4}
	if diff := cmp.Diff(want, r.Summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	if !r.HasFailures() {
		t.Error("expected HasFailures to be true")
	}
	encoded := r.Encoded()
	if len(encoded) != 2 || encoded[0] != ok1 || encoded[1] != ok2 {
		t.Errorf("unexpected encoded frames: %v", encoded)
	}
}
