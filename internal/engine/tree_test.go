package engine

import "testing"

func TestLocateTreesFindsTwoFileTree(t *testing.T) {
	buf, _ := rccFixture(true, false)
	spans := ScanNameSpans(buf)
	if len(spans) != 1 {
		t.Fatalf("got %d name spans, want 1", len(spans))
	}

	trees := LocateTrees(buf, spans, 0)
	if len(trees) != 1 {
		t.Fatalf("got %d trees, want 1", len(trees))
	}

	tr := trees[0]
	if len(tr.Entries) != 3 {
		t.Fatalf("got %d entries, want 3 (root dir + two files)", len(tr.Entries))
	}
	root := tr.Entries[0]
	if !root.IsDir || root.ChildCnt != 2 || root.FirstChld != 1 {
		t.Errorf("root entry = %+v, want dir with 2 children starting at 1", root)
	}
	for _, id := range []int{1, 2} {
		if tr.Entries[id].IsDir {
			t.Errorf("entry %d = %+v, want a file", id, tr.Entries[id])
		}
	}
}

func TestLocateTreesRejectsNonForwardChild(t *testing.T) {
	nb := newNameBuilder()
	rootOff := nb.add("root")
	nameBytes := nb.buf.Bytes()

	// A directory whose first_child points at itself: never valid.
	badDir := encodeTreeDir(treeDirEntry{nameOff: rootOff, childCount: 1, firstChild: 0})

	var buf []byte
	buf = append(buf, nameBytes...)
	for len(buf)%treeSearchAlign != 0 {
		buf = append(buf, 0xCC) // place the directory on a base the locator tries
	}
	buf = append(buf, badDir...)

	spans := ScanNameSpans(buf)
	if len(spans) != 1 {
		t.Fatalf("got %d name spans, want 1", len(spans))
	}
	trees := LocateTrees(buf, spans, 0)
	if len(trees) != 0 {
		t.Errorf("got %d trees from a self-referencing directory, want 0", len(trees))
	}
}

func TestLocateTreesHonorsMaxWalkOverride(t *testing.T) {
	nb := newNameBuilder()
	rootOff := nb.add("root")
	aOff := nb.add("a")
	bOff := nb.add("b")
	nameBytes := nb.buf.Bytes()

	dir := encodeTreeDir(treeDirEntry{nameOff: rootOff, childCount: 2, firstChild: 1})
	fileA := encodeTreeFile(treeFileEntry{nameOff: aOff, dataOff: 0})
	fileB := encodeTreeFile(treeFileEntry{nameOff: bOff, dataOff: 16})

	var buf []byte
	buf = append(buf, nameBytes...)
	for len(buf)%treeSearchAlign != 0 {
		buf = append(buf, 0xCC) // place the tree on a base the locator tries
	}
	buf = append(buf, dir...)
	buf = append(buf, fileA...)
	buf = append(buf, fileB...)

	spans := ScanNameSpans(buf)
	if len(spans) != 1 {
		t.Fatalf("got %d name spans, want 1", len(spans))
	}

	if trees := LocateTrees(buf, spans, 0); len(trees) != 1 {
		t.Fatalf("got %d trees with the default walk cap, want 1", len(trees))
	}

	// A 2-entry cap can never admit all 3 entries (root + two files).
	if trees := LocateTrees(buf, spans, 2); len(trees) != 0 {
		t.Errorf("got %d trees with a 2-entry walk cap on a 3-entry tree, want 0", len(trees))
	}
}
