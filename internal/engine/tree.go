// Completion: 100% - Platform support complete
package engine

const (
	treeEntrySize   = 22
	treeMaxDepth    = 64
	treeSearchAlign = 4
	// treeSearchWindow bounds how far from a name span the locator looks
	// for a tree base, in both directions (region order differs by
	// platform: Linux puts tree before names, Windows often the reverse).
	treeSearchWindow = 8 << 20
	// maxWalkEntries caps per-candidate work so a pathological input
	// cannot make discovery quadratic in practice (spec.md §5).
	maxWalkEntries = 1 << 20
)

const (
	flagDirectory = 1 << 1
	flagCompress  = 1 << 0
)

// TreeEntry is one decoded 22-byte tree entry, file or directory.
type TreeEntry struct {
	ID        int
	IsDir     bool
	NameOff   uint32
	Flags     uint16
	ChildCnt  uint32
	FirstChld uint32
	DataOff   uint32
}

// Tree is a validated, fully-walked rcc directory tree.
type Tree struct {
	Span     Span
	NameSpan NameSpan
	Entries  []TreeEntry // indexed by ID
}

// Span is a (file_offset, length) region, as spec.md §3 names it.
type Span struct {
	Offset int
	Length int
}

func (s Span) End() int { return s.Offset + s.Length }

func decodeTreeEntry(r *Reader, base int, id int) (TreeEntry, error) {
	off := base + id*treeEntrySize
	nameOff, err := r.U32(off)
	if err != nil {
		return TreeEntry{}, err
	}
	flags, err := r.U16(off + 4)
	if err != nil {
		return TreeEntry{}, err
	}

	e := TreeEntry{ID: id, NameOff: nameOff, Flags: flags}
	if flags&flagDirectory != 0 {
		e.IsDir = true
		childCnt, err := r.U32(off + 6)
		if err != nil {
			return TreeEntry{}, err
		}
		firstChild, err := r.U32(off + 10)
		if err != nil {
			return TreeEntry{}, err
		}
		e.ChildCnt = childCnt
		e.FirstChld = firstChild
	} else {
		dataOff, err := r.U32(off + 10)
		if err != nil {
			return TreeEntry{}, err
		}
		e.DataOff = dataOff
	}
	return e, nil
}

// LocateTrees searches the buffer for tree regions matching a name span,
// one name span at a time. Multiple trees may be found for a single
// executable (spec.md §4.5); the caller is given every (tree, nameSpan)
// pairing that validates.
func LocateTrees(buf []byte, spans []NameSpan, maxWalk int) []*Tree {
	r := NewReader(buf)
	var trees []*Tree
	if maxWalk <= 0 {
		maxWalk = maxWalkEntries
	}

	for _, ns := range spans {
		best := findBestTreeBase(r, ns, maxWalk)
		if best != nil {
			trees = append(trees, best)
		}
	}
	return trees
}

// findBestTreeBase enumerates 4-byte-aligned candidate tree bases within
// treeSearchWindow of the name span and returns the first one whose walk
// validates, applying the tie-break from spec.md §4.5 (densest packing,
// then lowest base) when more than one candidate validates.
func findBestTreeBase(r *Reader, ns NameSpan, maxWalk int) *Tree {
	lo := ns.Offset - treeSearchWindow
	if lo < 0 {
		lo = 0
	}
	hi := ns.Offset + ns.Length + treeSearchWindow
	if hi > r.Len() {
		hi = r.Len()
	}

	var bestTree *Tree
	var bestDensity int

	for base := lo - (lo % treeSearchAlign); base < hi; base += treeSearchAlign {
		entries, ok := walkTree(r, base, ns, maxWalk)
		if !ok {
			continue
		}

		minID, maxID := entries[0].ID, entries[0].ID
		for _, e := range entries {
			if e.ID < minID {
				minID = e.ID
			}
			if e.ID > maxID {
				maxID = e.ID
			}
		}
		density := maxID - minID

		span := Span{Offset: base, Length: len(entries) * treeEntrySize}
		tree := &Tree{Span: span, NameSpan: ns, Entries: entries}

		if bestTree == nil || density < bestDensity {
			bestTree = tree
			bestDensity = density
		}
	}

	return bestTree
}

// walkTree performs the recursive depth-first walk from entry 0, starting
// at the candidate base, and checks every invariant from spec.md §3:
// forward-only non-overlapping child ranges, name-offset validity, name
// coverage, and a bounded visited-ID set that is dense and contiguous.
func walkTree(r *Reader, base int, ns NameSpan, maxWalk int) ([]TreeEntry, bool) {
	visited := make(map[int]TreeEntry)
	referenced := make(map[int]bool)

	var walk func(id, depth int) bool
	walk = func(id, depth int) bool {
		if depth > treeMaxDepth {
			return false
		}
		if len(visited) >= maxWalk {
			return false
		}
		if _, ok := visited[id]; ok {
			return false // forward-only IDs: revisits are impossible unless malformed
		}

		e, err := decodeTreeEntry(r, base, id)
		if err != nil {
			return false
		}
		if e.IsDir {
			if e.Flags&^uint16(flagDirectory) != 0 {
				return false // no known directory flag bits beyond "is a directory"
			}
		} else if e.Flags&^uint16(flagCompress) != 0 {
			return false // only the compression bit is a known file flag
		}
		if int(e.NameOff) >= ns.Length {
			return false
		}
		if _, ok := ns.Entries[int(e.NameOff)]; !ok {
			return false
		}
		referenced[int(e.NameOff)] = true
		visited[id] = e

		if e.IsDir {
			if e.ChildCnt == 0 {
				return true
			}
			first := int(e.FirstChld)
			if first <= id {
				return false // forward-only: a child can never precede its parent
			}
			for c := 0; c < int(e.ChildCnt); c++ {
				if !walk(first+c, depth+1) {
					return false
				}
			}
		}
		return true
	}

	if !walk(0, 0) {
		return nil, false
	}

	n := len(visited)
	ids := make([]TreeEntry, 0, n)
	for id := 0; id < n; id++ {
		e, ok := visited[id]
		if !ok {
			return nil, false // visited set must be exactly {0..N-1}
		}
		ids = append(ids, e)
	}

	// Name coverage: every referenced name_off must resolve (checked
	// above). Unreferenced decoded names are tolerated wherever they sit
	// in the span, as long as they are at most half of all decoded names;
	// more than that is treated as a gross orphan mismatch.
	unreferenced := 0
	for off := range ns.Entries {
		if !referenced[off] {
			unreferenced++
		}
	}
	if len(ns.Entries) > 0 && unreferenced > len(ns.Entries)/2 {
		return nil, false
	}

	return ids, true
}
