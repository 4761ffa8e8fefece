// Completion: 100% - Platform support complete
package engine

import (
	"encoding/binary"
	"fmt"
)

// PE structures read directly off the byte buffer, big picture lifted
// from the DOS header / COFF header / optional header / section table
// layout: no os.File seeking, the whole image is already in memory.

type peCOFFHeader struct {
	Machine              uint16
	NumberOfSections     uint16
	TimeDateStamp        uint32
	PointerToSymbolTable uint32
	NumberOfSymbols      uint32
	SizeOfOptionalHeader uint16
	Characteristics      uint16
}

type peSectionHeader struct {
	Name                 [8]byte
	VirtualSize          uint32
	VirtualAddress       uint32
	SizeOfRawData        uint32
	PointerToRawData     uint32
	PointerToRelocations uint32
	PointerToLinenumbers uint32
	NumberOfRelocations  uint16
	NumberOfLinenumbers  uint16
	Characteristics      uint32
}

const (
	peMachineI386  = 0x014c
	peMachineAMD64 = 0x8664

	peOptMagicPE32     = 0x010b
	peOptMagicPE32Plus = 0x020b

	peSectionExecute = 0x20000000 // IMAGE_SCN_MEM_EXECUTE
)

// parsePE builds the address map for a PE/PE32+ image: DOS stub -> NT
// headers -> section table, using VirtualAddress/PointerToRawData pairs
// exactly as rcc's host linker laid them out.
func parsePE(buf []byte) (*ExecutableMap, error) {
	r := NewReader(buf)

	if len(buf) < 0x40 {
		return nil, &FormatErr{Msg: "file too small for DOS header"}
	}
	peOffset, err := r.U32le(0x3c)
	if err != nil {
		return nil, &FormatErr{Msg: "truncated DOS header"}
	}

	sigOff := int(peOffset)
	sig, err := r.U32le(sigOff)
	if err != nil || sig != 0x00004550 { // "PE\0\0"
		return nil, &FormatErr{Msg: "missing PE signature"}
	}

	coffOff := sigOff + 4
	coffBytes, err := r.Slice(coffOff, 20)
	if err != nil {
		return nil, &FormatErr{Msg: "truncated COFF header"}
	}
	var coff peCOFFHeader
	coff.Machine = leU16(coffBytes[0:2])
	coff.NumberOfSections = leU16(coffBytes[2:4])
	coff.TimeDateStamp = leU32(coffBytes[4:8])
	coff.PointerToSymbolTable = leU32(coffBytes[8:12])
	coff.NumberOfSymbols = leU32(coffBytes[12:16])
	coff.SizeOfOptionalHeader = leU16(coffBytes[16:18])
	coff.Characteristics = leU16(coffBytes[18:20])

	var arch Arch
	switch coff.Machine {
	case peMachineAMD64:
		arch = ArchX86_64
	case peMachineI386:
		arch = ArchX86
	default:
		arch = ArchOther
	}

	optOff := coffOff + 20
	imageBase, err := peImageBase(r, optOff, int(coff.SizeOfOptionalHeader))
	if err != nil {
		return nil, err
	}

	sectionsOff := optOff + int(coff.SizeOfOptionalHeader)

	m := &ExecutableMap{kind: ContainerPE, arch: arch}
	for i := 0; i < int(coff.NumberOfSections); i++ {
		off := sectionsOff + i*40
		b, err := r.Slice(off, 40)
		if err != nil {
			return nil, &FormatErr{Msg: fmt.Sprintf("truncated section header %d", i)}
		}
		var sh peSectionHeader
		copy(sh.Name[:], b[0:8])
		sh.VirtualSize = leU32(b[8:12])
		sh.VirtualAddress = leU32(b[12:16])
		sh.SizeOfRawData = leU32(b[16:20])
		sh.PointerToRawData = leU32(b[20:24])
		sh.Characteristics = leU32(b[36:40])

		vsize := sh.VirtualSize
		if vsize == 0 {
			vsize = sh.SizeOfRawData
		}
		m.segments = append(m.segments, Segment{
			VAddrBase: imageBase + uint64(sh.VirtualAddress),
			VSize:     uint64(vsize),
			FOffset:   uint64(sh.PointerToRawData),
			FSize:     uint64(sh.SizeOfRawData),
			Exec:      sh.Characteristics&peSectionExecute != 0,
		})
	}

	if len(m.segments) == 0 {
		return nil, &FormatErr{Msg: "no sections in PE image"}
	}
	return m, nil
}

func leU16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }
func leU32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }

// U32le: the PE header fields are little-endian on disk, unlike the rcc
// regions this tool is ultimately hunting for; keep the distinction
// explicit rather than reuse the big-endian Reader methods.
func (r *Reader) U32le(off int) (uint32, error) {
	b, err := r.Slice(off, 4)
	if err != nil {
		return 0, err
	}
	return leU32(b), nil
}

// peImageBase reads ImageBase out of the PE32/PE32+ optional header.
// Section VirtualAddress fields are RVAs; code in the image references
// absolute virtual addresses (ImageBase+RVA), so callers must add this in
// before comparing against anything read out of the instruction stream.
func peImageBase(r *Reader, optOff, optSize int) (uint64, error) {
	if optSize < 2 {
		return 0, &FormatErr{Msg: "missing PE optional header"}
	}
	magicBytes, err := r.Slice(optOff, 2)
	if err != nil {
		return 0, &FormatErr{Msg: "truncated optional header magic"}
	}

	switch leU16(magicBytes) {
	case peOptMagicPE32:
		b, err := r.Slice(optOff+28, 4)
		if err != nil {
			return 0, &FormatErr{Msg: "truncated PE32 ImageBase"}
		}
		return uint64(leU32(b)), nil
	case peOptMagicPE32Plus:
		b, err := r.Slice(optOff+24, 8)
		if err != nil {
			return 0, &FormatErr{Msg: "truncated PE32+ ImageBase"}
		}
		return binary.LittleEndian.Uint64(b), nil
	default:
		return 0, &FormatErr{Msg: "unrecognized PE optional header magic"}
	}
}
