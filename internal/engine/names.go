// Completion: 100% - Platform support complete
package engine

import "unicode/utf16"

const (
	nameSizeMin = 1
	nameSizeMax = 256
)

// NameEntry is one decoded rcc name-region entry.
type NameEntry struct {
	RelOffset int // offset of this entry's size field, relative to the region start
	Size      int // code units
	Hash      uint32
	Name      string
}

// NameSpan is a maximal run of valid, contiguously-packed name entries.
type NameSpan struct {
	Offset  int // absolute file offset of the region start
	Length  int
	Entries map[int]NameEntry // keyed by RelOffset
}

// decodeNameEntry attempts to decode one name entry with its size field
// at absolute offset `start`. It validates size bounds, UTF-16BE decoding,
// and the Qt name hash; a failure here is an expected rejection, not a
// fault (spec.md §7).
func decodeNameEntry(r *Reader, start int) (NameEntry, int, error) {
	size, err := r.U16(start)
	if err != nil {
		return NameEntry{}, 0, err
	}
	if size < nameSizeMin || size > nameSizeMax {
		return NameEntry{}, 0, &BoundsErr{Offset: start, Need: 2, Len: r.Len()}
	}
	hash, err := r.U32(start + 2)
	if err != nil {
		return NameEntry{}, 0, err
	}

	payloadOff := start + 6
	payload, err := r.Slice(payloadOff, int(size)*2)
	if err != nil {
		return NameEntry{}, 0, err
	}

	units := make([]uint16, size)
	for i := 0; i < int(size); i++ {
		units[i] = uint16(payload[2*i])<<8 | uint16(payload[2*i+1])
	}
	runes := utf16.Decode(units)
	if len(runes) == 0 && size > 0 {
		return NameEntry{}, 0, &BoundsErr{Offset: payloadOff, Need: int(size) * 2, Len: r.Len()}
	}

	if QtNameHash(runes) != hash {
		return NameEntry{}, 0, &BoundsErr{Offset: start, Need: 6 + int(size)*2, Len: r.Len()}
	}

	entryLen := 6 + int(size)*2
	return NameEntry{
		Size: int(size),
		Hash: hash,
		Name: string(runes),
	}, entryLen, nil
}

// ScanNameSpans finds every byte pair `00 XX` (XX in the printable ASCII
// range) in buf, hypothesizes each as the first UTF-16BE code unit of a
// name payload, and extends maximal contiguous runs of valid entries in
// both directions from there. Overlapping candidate runs collapse to the
// longest one that validates.
func ScanNameSpans(buf []byte) []NameSpan {
	r := NewReader(buf)
	var spans []NameSpan
	covered := make([]bool, len(buf)+1)

	for p := 0; p+1 < len(buf); p++ {
		if covered[p] {
			continue
		}
		if buf[p] != 0x00 {
			continue
		}
		xx := buf[p+1]
		if xx < 0x21 || xx > 0x7E {
			continue
		}

		start := p - 6
		if start < 0 {
			continue
		}
		_, entryLen, err := decodeNameEntry(r, start)
		if err != nil {
			continue
		}

		// Extend forward from this confirmed entry to find the run's end.
		regionStart := start
		cursor := start + entryLen
		for cursor < len(buf) {
			_, n, err := decodeNameEntry(r, cursor)
			if err != nil {
				break
			}
			cursor += n
		}
		regionEnd := cursor

		// Extend backward: walk candidates ending exactly at regionStart.
		for {
			extended := false
			for back := regionStart - 1; back >= 0 && regionStart-back <= 6+nameSizeMax*2; back-- {
				_, n, err := decodeNameEntry(r, back)
				if err != nil {
					continue
				}
				if back+n != regionStart {
					continue
				}
				regionStart = back
				extended = true
				break
			}
			if !extended {
				break
			}
		}

		// Re-key all entries relative to the final regionStart.
		final := make(map[int]NameEntry)
		cursor = regionStart
		for cursor < regionEnd {
			e, n, err := decodeNameEntry(r, cursor)
			if err != nil {
				break
			}
			e.RelOffset = cursor - regionStart
			final[e.RelOffset] = e
			cursor += n
		}

		if len(final) == 0 {
			continue
		}
		for i := regionStart; i < regionEnd && i <= len(buf); i++ {
			covered[i] = true
		}
		spans = append(spans, NameSpan{
			Offset:  regionStart,
			Length:  regionEnd - regionStart,
			Entries: final,
		})
	}

	return spans
}
