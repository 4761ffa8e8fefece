package engine

import (
	"bytes"
	"testing"
)

func TestScanNameSpansFindsMinimalRegion(t *testing.T) {
	nb := newNameBuilder()
	rootOff := nb.add("root")
	helloOff := nb.add("hello")

	buf := append(bytes16(), nb.buf.Bytes()...)
	buf = append(buf, bytes16()...)

	spans := ScanNameSpans(buf)
	if len(spans) != 1 {
		t.Fatalf("got %d name spans, want 1", len(spans))
	}
	span := spans[0]
	if len(span.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(span.Entries))
	}
	if e, ok := span.Entries[int(rootOff)]; !ok || e.Name != "root" {
		t.Errorf("entry at %d = %+v, want name %q", rootOff, e, "root")
	}
	if e, ok := span.Entries[int(helloOff)]; !ok || e.Name != "hello" {
		t.Errorf("entry at %d = %+v, want name %q", helloOff, e, "hello")
	}
}

func TestScanNameSpansRejectsGarbage(t *testing.T) {
	buf := bytes.Repeat([]byte{0x00, 0x41}, 64) // repeated "00 41" pairs: every one a candidate, no valid hash
	spans := ScanNameSpans(buf)
	if len(spans) != 0 {
		t.Errorf("got %d spans from garbage input, want 0", len(spans))
	}
}

func bytes16() []byte { return bytes.Repeat([]byte{0xCC}, 16) }
