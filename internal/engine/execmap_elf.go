// Completion: 100% - Platform support complete
package engine

import (
	"bytes"
	"debug/elf"
)

// parseELF builds the address map from the LOAD program headers of an
// ELF file, using the standard library's debug/elf as the executable
// parser: the same role other_examples' golang-exp/vulncheck binscan
// package gives debug/elf, treating it as an opaque container reader
// rather than hand-rolling program-header parsing.
func parseELF(buf []byte) (*ExecutableMap, error) {
	f, err := elf.NewFile(bytes.NewReader(buf))
	if err != nil {
		return nil, &FormatErr{Msg: "malformed ELF: " + err.Error()}
	}
	defer f.Close()

	kind := ContainerELF64
	if f.Class == elf.ELFCLASS32 {
		kind = ContainerELF32
	}

	var arch Arch
	switch f.Machine {
	case elf.EM_X86_64:
		arch = ArchX86_64
	case elf.EM_386:
		arch = ArchX86
	default:
		arch = ArchOther
	}

	m := &ExecutableMap{kind: kind, arch: arch}
	for _, p := range f.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		exec := p.Flags&elf.PF_X != 0
		m.segments = append(m.segments, Segment{
			VAddrBase: p.Vaddr,
			VSize:     p.Memsz,
			FOffset:   p.Off,
			FSize:     p.Filesz,
			Exec:      exec,
		})
	}

	if len(m.segments) == 0 {
		return nil, &FormatErr{Msg: "no LOAD segments in ELF image"}
	}
	return m, nil
}
