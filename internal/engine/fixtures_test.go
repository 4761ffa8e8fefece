package engine

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"unicode/utf16"
)

// fixtures_test.go synthesizes minimal name/tree/blob regions for the
// round-trip properties spec.md §8 asks for, in both Windows order
// (name, tree, blob) and Linux order (tree, name, blob).

func beU16(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

func beU32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func beU64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// nameBuilder accumulates name entries and tracks each name's offset
// relative to the start of the region.
type nameBuilder struct {
	buf     bytes.Buffer
	offsets map[string]uint32
}

func newNameBuilder() *nameBuilder {
	return &nameBuilder{offsets: make(map[string]uint32)}
}

func (nb *nameBuilder) add(name string) uint32 {
	off := uint32(nb.buf.Len())
	nb.offsets[name] = off

	units := utf16.Encode([]rune(name))
	nb.buf.Write(beU16(uint16(len(units))))
	nb.buf.Write(beU32(QtNameHash([]rune(name))))
	for _, u := range units {
		nb.buf.Write(beU16(u))
	}
	return off
}

type treeDirEntry struct {
	nameOff    uint32
	childCount uint32
	firstChild uint32
}

type treeFileEntry struct {
	nameOff    uint32
	compressed bool
	dataOff    uint32
}

func encodeTreeDir(e treeDirEntry) []byte {
	var b bytes.Buffer
	b.Write(beU32(e.nameOff))
	b.Write(beU16(flagDirectory))
	b.Write(beU32(e.childCount))
	b.Write(beU32(e.firstChild))
	b.Write(beU64(0)) // last_mod
	return b.Bytes()
}

func encodeTreeFile(e treeFileEntry) []byte {
	var flags uint16
	if e.compressed {
		flags = flagCompress
	}
	var b bytes.Buffer
	b.Write(beU32(e.nameOff))
	b.Write(beU16(flags))
	b.Write(beU16(0)) // locale_country
	b.Write(beU16(0)) // locale_lang
	b.Write(beU32(e.dataOff))
	b.Write(beU64(0)) // last_mod
	return b.Bytes()
}

// blobBuilder accumulates [size, payload] records and tracks each
// record's data offset relative to the start of the blob region.
type blobBuilder struct {
	buf bytes.Buffer
}

func (bb *blobBuilder) add(payload []byte) uint32 {
	off := uint32(bb.buf.Len())
	bb.buf.Write(beU32(uint32(len(payload))))
	bb.buf.Write(payload)
	return off
}

func zlibCompress(data []byte) []byte {
	var out bytes.Buffer
	w := zlib.NewWriter(&out)
	w.Write(data)
	w.Close()
	return out.Bytes()
}

// rccFixture lays out a two-file resource tree:
//
//	/ (root, dir)
//	  hello (file)
//	  extra (file)
//
// Two distinct data offsets let LocateBlob recover the blob region by the
// delta method alone, with no executable map required. windowsOrder
// selects Windows order (name, tree, blob) when true, Linux order (tree,
// name, blob) when false; either must round-trip identically. The tree
// region always starts on a treeSearchAlign boundary, since LocateTrees
// only tries aligned tree bases.
func rccFixture(windowsOrder bool, compressed bool) (buf []byte, wantContent []byte) {
	names := newNameBuilder()
	rootOff := names.add("root")
	helloOff := names.add("hello")
	extraOff := names.add("extra")
	nameBytes := names.buf.Bytes()

	content := []byte("world")
	wantContent = content
	payload := content
	if compressed {
		payload = append(beU32(uint32(len(content))), zlibCompress(content)...)
	}

	extraContent := []byte("zz")
	extraPayload := extraContent
	if compressed {
		extraPayload = append(beU32(uint32(len(extraContent))), zlibCompress(extraContent)...)
	}

	blobs := &blobBuilder{}
	dataOff := blobs.add(payload)
	extraDataOff := blobs.add(extraPayload)
	blobBytes := blobs.buf.Bytes()

	dirEntry := encodeTreeDir(treeDirEntry{nameOff: rootOff, childCount: 2, firstChild: 1})
	fileEntry := encodeTreeFile(treeFileEntry{nameOff: helloOff, compressed: compressed, dataOff: dataOff})
	extraEntry := encodeTreeFile(treeFileEntry{nameOff: extraOff, compressed: compressed, dataOff: extraDataOff})
	treeBytes := append(append(append([]byte{}, dirEntry...), fileEntry...), extraEntry...)

	pad := bytes.Repeat([]byte{0xCC}, 16)

	var out bytes.Buffer
	out.Write(pad)
	if windowsOrder {
		out.Write(nameBytes)
		out.Write(pad)
		for out.Len()%treeSearchAlign != 0 {
			out.WriteByte(0xCC)
		}
		out.Write(treeBytes)
	} else {
		out.Write(treeBytes)
		out.Write(pad)
		out.Write(nameBytes)
	}
	out.Write(pad)
	out.Write(blobBytes)
	out.Write(pad)

	return out.Bytes(), wantContent
}
