// Completion: 100% - Platform support complete
package engine

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExtractTree walks a validated tree in depth-first pre-order (a
// directory is created before any of its children are written, spec.md
// §5) and materializes files under outRoot. A partially-recovered tree
// (blob contents unavailable) still emits the directory hierarchy; its
// files are skipped and a NotFoundErr is returned once the walk is done.
func ExtractTree(buf []byte, t *Tree, blob BlobResult, outRoot string) error {
	if err := os.MkdirAll(outRoot, 0o755); err != nil {
		return &IoErr{Op: "mkdir", Path: outRoot, Err: err}
	}
	if err := extractEntry(buf, t, blob, 0, outRoot); err != nil {
		return err
	}
	if blob.Partial && countFiles(t) > 0 {
		return &NotFoundErr{What: "blob region unavailable, file contents not extracted"}
	}
	return nil
}

func extractEntry(buf []byte, t *Tree, blob BlobResult, id int, dir string) error {
	if id < 0 || id >= len(t.Entries) {
		return &NotFoundErr{What: fmt.Sprintf("tree entry %d", id)}
	}
	e := t.Entries[id]

	if e.IsDir {
		for c := 0; c < int(e.ChildCnt); c++ {
			childID := int(e.FirstChld) + c
			child := t.Entries[childID]
			name, err := sanitizeName(nameOf(t, child.NameOff))
			if err != nil {
				return err
			}
			childPath := filepath.Join(dir, name)

			if child.IsDir {
				if err := os.MkdirAll(childPath, 0o755); err != nil {
					return &IoErr{Op: "mkdir", Path: childPath, Err: err}
				}
			}
			if err := extractEntry(buf, t, blob, childID, childPath); err != nil {
				return err
			}
		}
		return nil
	}

	if blob.Partial {
		return nil // contents unavailable; ExtractTree reports it after the walk
	}
	return writeFile(buf, blob.Span, e, dir)
}

func nameOf(t *Tree, relOff uint32) string {
	if ne, ok := t.NameSpan.Entries[int(relOff)]; ok {
		return ne.Name
	}
	return ""
}

// sanitizeName forbids path traversal, absolute components, and embedded
// NULs in a single path segment decoded from the name region.
func sanitizeName(name string) (string, error) {
	if name == "" {
		return "", &NotFoundErr{What: "empty name entry"}
	}
	if strings.ContainsRune(name, 0) {
		return "", &NotFoundErr{What: "name contains a NUL byte"}
	}
	if name == "." || name == ".." || strings.ContainsAny(name, "/\\") {
		return "", &NotFoundErr{What: fmt.Sprintf("unsafe path component %q", name)}
	}
	return name, nil
}

func writeFile(buf []byte, blobSpan Span, e TreeEntry, dir string) error {
	r := NewReader(buf)
	hdrOff := blobSpan.Offset + int(e.DataOff)
	size, err := r.U32(hdrOff)
	if err != nil {
		return &BoundsErr{Offset: hdrOff, Need: 4, Len: r.Len()}
	}
	payload, err := r.Slice(hdrOff+4, int(size))
	if err != nil {
		return &BoundsErr{Offset: hdrOff + 4, Need: int(size), Len: r.Len()}
	}

	var out []byte
	if e.Flags&flagCompress != 0 {
		out, err = inflateQtPayload(payload)
		if err != nil {
			return err
		}
	} else {
		out = payload
	}

	if err := os.WriteFile(dir, out, 0o644); err != nil {
		return &IoErr{Op: "write", Path: dir, Err: err}
	}
	return nil
}

// inflateQtPayload decompresses a zlib-flagged blob payload. The first 4
// bytes are a big-endian u32 declaring the uncompressed length, which
// must match the inflated output (spec.md §4.7).
func inflateQtPayload(payload []byte) ([]byte, error) {
	if len(payload) < 4 {
		return nil, &CodecErr{Msg: "compressed payload shorter than length header"}
	}
	want := uint32(payload[0])<<24 | uint32(payload[1])<<16 | uint32(payload[2])<<8 | uint32(payload[3])

	zr, err := zlib.NewReader(bytes.NewReader(payload[4:]))
	if err != nil {
		return nil, &CodecErr{Msg: "zlib header", Err: err}
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, &CodecErr{Msg: "inflate", Err: err}
	}
	if uint32(len(out)) != want {
		return nil, &CodecErr{Msg: fmt.Sprintf("inflated length %d != declared %d", len(out), want)}
	}
	return out, nil
}
