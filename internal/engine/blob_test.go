package engine

import "testing"

func TestLocateBlobByDeltaTwoFiles(t *testing.T) {
	blobs := &blobBuilder{}
	offA := blobs.add([]byte("hi"))
	offB := blobs.add([]byte("there!"))

	tr := &Tree{
		Entries: []TreeEntry{
			{ID: 0, IsDir: true, ChildCnt: 2, FirstChld: 1},
			{ID: 1, DataOff: offA},
			{ID: 2, DataOff: offB},
		},
	}

	pad := make([]byte, 8)
	var buf []byte
	buf = append(buf, pad...)
	buf = append(buf, blobs.buf.Bytes()...)
	buf = append(buf, pad...)

	result := LocateBlob(buf, tr, nil)
	if result.Partial {
		t.Fatal("delta-based blob recovery unexpectedly reported partial")
	}
	if result.Span.Offset != len(pad) {
		t.Errorf("blob base = %d, want %d", result.Span.Offset, len(pad))
	}
}

func TestLocateBlobPartialWhenOnlyDirectories(t *testing.T) {
	tr := &Tree{Entries: []TreeEntry{{ID: 0, IsDir: true, ChildCnt: 0}}}
	result := LocateBlob([]byte{0, 0, 0, 0}, tr, nil)
	if !result.Partial {
		t.Error("expected a directory-only tree (no file entries) to report Partial")
	}
}

func TestLocateBlobPartialWhenSingleFileAndNoMap(t *testing.T) {
	tr := &Tree{
		Entries: []TreeEntry{
			{ID: 0, IsDir: true, ChildCnt: 1, FirstChld: 1},
			{ID: 1, DataOff: 0},
		},
	}
	result := LocateBlob(make([]byte, 16), tr, nil)
	if !result.Partial {
		t.Error("expected a single-file tree with no executable map to report Partial")
	}
}
