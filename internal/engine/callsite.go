// Completion: 100% - Instruction implementation complete
package engine

import "encoding/binary"

// This file recognizes exactly two instruction forms, deliberately not a
// disassembler (spec.md §9 "Instruction matching"): the x86 `PUSH imm32`
// encoding (0x68 + LE imm32) and the x86-64 `LEA reg, [RIP+disp32]`
// encoding (REX.W + 0x8D + ModRM(00 reg 101) + LE disp32). Both are
// pattern-matched the same way the teacher's code generator *emits* them
// in leaX86SymbolToReg (lea.go) and pushX86Reg (push.go) — read in
// reverse, against the register-encoding numbers from reg.go's
// x86_64Registers table.

const (
	opPushImm32 = 0x68
	opLEA       = 0x8D
	rexWBase    = 0x48 // REX.W, no R/X/B extension bits
	rexRBit     = 0x04
)

type pushSite struct {
	pos   int // file offset of the 0x68 opcode
	value uint32
}

type leaSite struct {
	pos     int // file offset of the REX prefix (or opcode if arch is 32-bit, unused here)
	destReg uint8
	target  uint64
}

// scanWindow bounds the "same basic block" heuristic: a blob argument
// instruction must sit within this many bytes of the tree/name reference
// it accompanies (spec.md §4.6 step 3).
const scanWindow = 128

// FindBlobArgument scans the executable's code segments for references
// to treeVA and nameVA and returns the virtual address of the sibling
// blob argument, per spec.md §4.6's single-file fallback.
func FindBlobArgument(buf []byte, m *ExecutableMap, treeVA, nameVA uint64) (uint64, bool) {
	switch m.Arch() {
	case ArchX86:
		return findBlobArgumentX86(buf, m, treeVA, nameVA)
	case ArchX86_64:
		return findBlobArgumentX64(buf, m, treeVA, nameVA)
	default:
		return 0, false
	}
}

func findBlobArgumentX86(buf []byte, m *ExecutableMap, treeVA, nameVA uint64) (uint64, bool) {
	for _, seg := range m.CodeSegments() {
		sites := scanPushImm32(buf, int(seg.FOffset), int(seg.FOffset+seg.FSize))
		treePos, namePos := -1, -1
		for _, s := range sites {
			if uint64(s.value) == treeVA {
				treePos = s.pos
			}
			if uint64(s.value) == nameVA {
				namePos = s.pos
			}
		}
		if treePos < 0 || namePos < 0 {
			continue
		}
		anchor := treePos
		if namePos < anchor {
			anchor = namePos
		}

		// Arguments are pushed right-to-left; the blob push is the PUSH
		// immediately preceding (in address order) the earliest of the
		// tree/name pushes found.
		var best *pushSite
		for i := range sites {
			s := &sites[i]
			if s.pos >= anchor || anchor-s.pos > scanWindow {
				continue
			}
			if s.pos == treePos || s.pos == namePos {
				continue
			}
			if best == nil || s.pos > best.pos {
				best = s
			}
		}
		if best != nil {
			return uint64(best.value), true
		}
	}
	return 0, false
}

func scanPushImm32(buf []byte, start, end int) []pushSite {
	if start < 0 {
		start = 0
	}
	if end > len(buf) {
		end = len(buf)
	}
	var sites []pushSite
	for p := start; p+4 < end; p++ {
		if buf[p] != opPushImm32 {
			continue
		}
		sites = append(sites, pushSite{
			pos:   p,
			value: binary.LittleEndian.Uint32(buf[p+1 : p+5]),
		})
	}
	return sites
}

func findBlobArgumentX64(buf []byte, m *ExecutableMap, treeVA, nameVA uint64) (uint64, bool) {
	conv := ConventionFor(m.Kind())
	regs := conv.ArgRegisters()
	if conv == ConventionUnknown {
		return 0, false
	}
	treeReg, nameReg, blobReg := regs[1], regs[2], regs[3]

	for _, seg := range m.CodeSegments() {
		sites := scanLeaRipRelative(buf, int(seg.FOffset), int(seg.FOffset+seg.FSize), seg.VAddrBase, seg.FOffset)

		var treePos, namePos = -1, -1
		for _, s := range sites {
			if s.target == treeVA && s.destReg == treeReg {
				treePos = s.pos
			}
			if s.target == nameVA && s.destReg == nameReg {
				namePos = s.pos
			}
		}
		if treePos < 0 || namePos < 0 {
			continue
		}
		anchor := treePos
		if namePos < anchor {
			anchor = namePos
		}

		var best *leaSite
		for i := range sites {
			s := &sites[i]
			if s.destReg != blobReg {
				continue
			}
			dist := anchor - s.pos
			if dist < 0 {
				dist = -dist
			}
			if dist > scanWindow {
				continue
			}
			if best == nil {
				best = s
			}
		}
		if best != nil {
			return best.target, true
		}
	}
	return 0, false
}

// scanLeaRipRelative finds every REX.W 0x8D ModRM(00,reg,101) disp32
// sequence in [start,end) and computes the RIP-relative target address.
// vaBase and foffBase (the segment's virtual base and file offset) convert
// a matched instruction's own file position to the virtual address used
// for the RIP-relative computation.
func scanLeaRipRelative(buf []byte, start, end int, vaBase, foffBase uint64) []leaSite {
	if start < 0 {
		start = 0
	}
	if end > len(buf) {
		end = len(buf)
	}
	var sites []leaSite
	for p := start; p+7 <= end; p++ {
		rex := buf[p]
		if rex&^rexRBit != rexWBase {
			continue // require REX.W with only R among the extension bits
		}
		if buf[p+1] != opLEA {
			continue
		}
		modrm := buf[p+2]
		if modrm&0xC7 != 0x05 { // mod=00, rm=101 (RIP-relative), any reg
			continue
		}
		disp32 := int32(binary.LittleEndian.Uint32(buf[p+3 : p+7]))

		destReg := (modrm >> 3) & 0x7
		if rex&rexRBit != 0 {
			destReg += 8
		}

		nextInsnVA := vaBase + uint64(p+7) - foffBase
		target := uint64(int64(nextInsnVA) + int64(disp32))

		sites = append(sites, leaSite{pos: p, destReg: destReg, target: target})
	}
	return sites
}
