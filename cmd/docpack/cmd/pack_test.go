package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rawbytedev/docpack"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	opts = defaultOptions()
	packBaseID = 1
	in := `{"name":"ada","n":1}` + "\n" + `{"name":"grace","n":2}` + "\n"
	out := filepath.Join(t.TempDir(), "docs.pack")

	if err := runPack(strings.NewReader(in), out); err != nil {
		t.Fatalf("pack: %v", err)
	}
	buf, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read pack: %v", err)
	}

	it, err := docpack.IterArchived(buf)
	if err != nil {
		t.Fatalf("iter: %v", err)
	}
	if it.Len() != 2 {
		t.Fatalf("unexpected frame count: %d", it.Len())
	}

	var sb bytes.Buffer
	if err := runUnpack(buf, &sb); err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if sb.String() != in {
		t.Fatalf("round trip mismatch:\nin  %q\nout %q", in, sb.String())
	}
}

func TestPackAssignsSequentialIDs(t *testing.T) {
	opts = defaultOptions()
	packBaseID = 100
	out := filepath.Join(t.TempDir(), "docs.pack")

	if err := runPack(strings.NewReader(`{"a":1}{"a":2}{"a":3}`), out); err != nil {
		t.Fatalf("pack: %v", err)
	}
	buf, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read pack: %v", err)
	}

	it, err := docpack.IterArchived(buf)
	if err != nil {
		t.Fatalf("iter: %v", err)
	}
	want := uint64(100)
	for it.Next() {
		view, err := it.Document()
		if err != nil {
			t.Fatalf("frame: %v", err)
		}
		if view.ID() != want {
			t.Fatalf("unexpected id: got %d, want %d", view.ID(), want)
		}
		want++
	}
}

func TestPackCompressedUnpacksTransparently(t *testing.T) {
	opts = defaultOptions()
	opts.Compress = true
	packBaseID = 1
	out := filepath.Join(t.TempDir(), "docs.pack")

	in := `{"body":"` + strings.Repeat("compressible ", 200) + `"}` + "\n"
	if err := runPack(strings.NewReader(in), out); err != nil {
		t.Fatalf("pack: %v", err)
	}
	buf, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read pack: %v", err)
	}
	if !bytes.HasPrefix(buf, zstdMagic) {
		t.Fatalf("expected zstd output, got prefix % x", buf[:4])
	}
	if len(buf) >= len(in) {
		t.Fatalf("compression did not shrink: %d >= %d", len(buf), len(in))
	}

	var sb bytes.Buffer
	if err := runUnpack(buf, &sb); err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if sb.String() != in {
		t.Fatalf("round trip mismatch")
	}
}

func TestInspectReportsFrames(t *testing.T) {
	opts = defaultOptions()
	packBaseID = 1
	out := filepath.Join(t.TempDir(), "docs.pack")
	if err := runPack(strings.NewReader(`{"a":1}{"b":2}`), out); err != nil {
		t.Fatalf("pack: %v", err)
	}
	buf, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read pack: %v", err)
	}

	var sb bytes.Buffer
	if err := runInspect(buf, &sb); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	report := sb.String()
	if !strings.Contains(report, "2 frames") {
		t.Fatalf("missing frame count:\n%s", report)
	}
	if !strings.Contains(report, "frame 0") || !strings.Contains(report, "frame 1") {
		t.Fatalf("missing frame lines:\n%s", report)
	}
	if !strings.Contains(report, "id=1 fields=1") {
		t.Fatalf("missing document summary:\n%s", report)
	}
	if strings.Contains(report, "BAD") {
		t.Fatalf("unexpected corruption report:\n%s", report)
	}
}

func TestInspectFlagsCorruptFrame(t *testing.T) {
	opts = defaultOptions()
	packBaseID = 1
	out := filepath.Join(t.TempDir(), "docs.pack")
	if err := runPack(strings.NewReader(`{"a":1}{"b":2}`), out); err != nil {
		t.Fatalf("pack: %v", err)
	}
	buf, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read pack: %v", err)
	}
	buf[0] ^= 0xFF

	var sb bytes.Buffer
	if err := runInspect(buf, &sb); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	report := sb.String()
	if !strings.Contains(report, "BAD") {
		t.Fatalf("expected corruption report:\n%s", report)
	}
	if !strings.Contains(report, "id=2") {
		t.Fatalf("intact frame should still be summarized:\n%s", report)
	}
}
