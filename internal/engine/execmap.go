// Completion: 100% - Platform support complete
package engine

import (
	"bytes"
	"fmt"
)

// Segment is one entry of the virtual-address map: a contiguous run of
// file bytes mapped at a virtual base address. Segments never overlap.
type Segment struct {
	VAddrBase uint64
	VSize     uint64
	FOffset   uint64
	FSize     uint64
	Exec      bool // true for segments containing executable code
}

// ExecutableMap translates between virtual addresses and file offsets for
// a parsed PE or ELF container. It is the opaque "executable-parser
// service" C3 is specified as: callers never look at section tables
// directly, only at VToF/FToV/Kind/Arch.
type ExecutableMap struct {
	kind     Container
	arch     Arch
	segments []Segment
}

func (m *ExecutableMap) Kind() Container     { return m.kind }
func (m *ExecutableMap) Arch() Arch          { return m.arch }
func (m *ExecutableMap) Segments() []Segment { return m.segments }

// VToF translates a virtual address to a file offset.
func (m *ExecutableMap) VToF(vaddr uint64) (uint64, bool) {
	for _, s := range m.segments {
		lim := s.VSize
		if s.FSize < lim {
			lim = s.FSize
		}
		if vaddr >= s.VAddrBase && vaddr < s.VAddrBase+lim {
			return s.FOffset + (vaddr - s.VAddrBase), true
		}
	}
	return 0, false
}

// FToV translates a file offset to a virtual address.
func (m *ExecutableMap) FToV(foff uint64) (uint64, bool) {
	for _, s := range m.segments {
		lim := s.VSize
		if s.FSize < lim {
			lim = s.FSize
		}
		if foff >= s.FOffset && foff < s.FOffset+lim {
			return s.VAddrBase + (foff - s.FOffset), true
		}
	}
	return 0, false
}

// CodeSegments returns only the segments flagged executable, the search
// space for C6's call-site scan.
func (m *ExecutableMap) CodeSegments() []Segment {
	var out []Segment
	for _, s := range m.segments {
		if s.Exec {
			out = append(out, s)
		}
	}
	return out
}

// ParseExecutableMap sniffs the container format and builds its address
// map. An unrecognized container is reported as FormatErr, not fatal: the
// caller is expected to fall back to delta-based blob sizing only.
func ParseExecutableMap(buf []byte) (*ExecutableMap, error) {
	switch {
	case bytes.HasPrefix(buf, []byte("MZ")):
		return parsePE(buf)
	case bytes.HasPrefix(buf, []byte("\x7fELF")):
		return parseELF(buf)
	default:
		return nil, &FormatErr{Msg: "unrecognized executable container"}
	}
}

// FormatErr reports an unrecognized or unsupported executable container.
// It is non-fatal: discovery continues with the code-scan path disabled.
type FormatErr struct {
	Msg string
}

func (e *FormatErr) Error() string { return fmt.Sprintf("format: %s", e.Msg) }
