// Completion: 100% - Platform support complete
package engine

import "sort"

// BlobResult carries the recovered blob span, or indicates the tree was
// only partially recovered (names and structure, but no file contents).
type BlobResult struct {
	Span    Span
	Partial bool
}

// LocateBlob derives the blob-region bounds for a validated tree, trying
// the delta-based path first (spec.md §4.6) and falling back to call-site
// analysis for single-file trees when an executable map is available.
func LocateBlob(buf []byte, t *Tree, m *ExecutableMap) BlobResult {
	dataOffs := collectDataOffsets(t)
	if len(dataOffs) == 0 {
		return BlobResult{Partial: true}
	}

	if len(dataOffs) >= 2 {
		if span, ok := locateBlobByDelta(buf, dataOffs); ok {
			return BlobResult{Span: span}
		}
	}

	if m != nil {
		if span, ok := locateBlobBySingleFile(buf, t, m, dataOffs[0]); ok {
			return BlobResult{Span: span}
		}
	}

	return BlobResult{Partial: true}
}

func collectDataOffsets(t *Tree) []uint32 {
	seen := make(map[uint32]bool)
	var offs []uint32
	for _, e := range t.Entries {
		if e.IsDir {
			continue
		}
		if !seen[e.DataOff] {
			seen[e.DataOff] = true
			offs = append(offs, e.DataOff)
		}
	}
	sort.Slice(offs, func(i, j int) bool { return offs[i] < offs[j] })
	return offs
}

// locateBlobByDelta searches for a base B such that reading the
// big-endian u32 payload_size at B+d_i equals d_(i+1) - d_i - 4 for every
// consecutive pair of sorted unique data offsets (spec.md §4.6).
func locateBlobByDelta(buf []byte, sortedOffs []uint32) (Span, bool) {
	r := NewReader(buf)
	last := sortedOffs[len(sortedOffs)-1]

	maxBase := len(buf) - int(last) - 4
	for base := 0; base <= maxBase; base++ {
		ok := true
		for i := 0; i < len(sortedOffs)-1; i++ {
			want := sortedOffs[i+1] - sortedOffs[i] - 4
			got, err := r.U32(base + int(sortedOffs[i]))
			if err != nil || got != want {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		lastSize, err := r.U32(base + int(last))
		if err != nil {
			continue
		}
		end := base + int(last) + 4 + int(lastSize)
		if end > len(buf) {
			continue
		}
		return Span{Offset: base, Length: end - base}, true
	}
	return Span{}, false
}

// locateBlobBySingleFile recovers the blob base for a single-file tree by
// scanning executable code for instructions referencing the known tree
// and name virtual addresses, then identifying the sibling instruction
// that references the blob-data argument (spec.md §4.6 step 2-4).
func locateBlobBySingleFile(buf []byte, t *Tree, m *ExecutableMap, dataOff uint32) (Span, bool) {
	treeVA, ok := m.FToV(uint64(t.Span.Offset))
	if !ok {
		return Span{}, false
	}
	nameVA, ok := m.FToV(uint64(t.NameSpan.Offset))
	if !ok {
		return Span{}, false
	}

	blobVA, ok := FindBlobArgument(buf, m, treeVA, nameVA)
	if !ok {
		return Span{}, false
	}
	blobFOff, ok := m.VToF(blobVA)
	if !ok {
		return Span{}, false
	}

	r := NewReader(buf)
	size, err := r.U32(int(blobFOff) + int(dataOff))
	if err != nil {
		return Span{}, false
	}
	end := int(blobFOff) + int(dataOff) + 4 + int(size)
	if end > len(buf) {
		return Span{}, false
	}
	return Span{Offset: int(blobFOff), Length: end - int(blobFOff)}, true
}
