// Completion: 100% - Utility module complete
package engine

// Arch identifies the instruction set of the scanned code sections.
// Only the two forms relevant to single-file blob recovery are modeled;
// anything else falls back to the delta-based path only.
type Arch int

const (
	ArchOther Arch = iota
	ArchX86
	ArchX86_64
)

func (a Arch) String() string {
	switch a {
	case ArchX86:
		return "x86"
	case ArchX86_64:
		return "x86_64"
	default:
		return "other"
	}
}

// Container identifies the executable container format.
type Container int

const (
	ContainerUnknown Container = iota
	ContainerPE
	ContainerELF32
	ContainerELF64
)

func (k Container) String() string {
	switch k {
	case ContainerPE:
		return "PE"
	case ContainerELF32:
		return "ELF32"
	case ContainerELF64:
		return "ELF64"
	default:
		return "unknown"
	}
}

// Convention names a calling-convention register sequence for the first
// four integer arguments, used to identify which destination register a
// LEA call-site targets. Windows and System V disagree on the order;
// picking the right one requires the Container hint from the executable map,
// since the instruction stream alone is ambiguous (spec Open Questions).
type Convention int

const (
	ConventionUnknown Convention = iota
	ConventionMicrosoftX64
	ConventionSystemV
)

// ArgRegisters returns the integer-argument register encodings in
// left-to-right (arg0, arg1, arg2, arg3) order for the convention, using
// the same encoding numbers the teacher's code generator assigns in its
// x86_64Registers table (rcx=1, rdx=2, rbx=3, rsp=4, rbp=5, rsi=6, rdi=7,
// r8=8, r9=9).
func (c Convention) ArgRegisters() [4]uint8 {
	switch c {
	case ConventionMicrosoftX64:
		return [4]uint8{1, 2, 8, 9} // rcx, rdx, r8, r9
	case ConventionSystemV:
		return [4]uint8{7, 6, 2, 1} // rdi, rsi, rdx, rcx
	default:
		return [4]uint8{}
	}
}

func (c Convention) String() string {
	switch c {
	case ConventionMicrosoftX64:
		return "msx64"
	case ConventionSystemV:
		return "sysv"
	default:
		return "unknown"
	}
}

// ConventionFor picks the calling convention implied by the container kind.
func ConventionFor(k Container) Convention {
	switch k {
	case ContainerPE:
		return ConventionMicrosoftX64
	case ContainerELF32, ContainerELF64:
		return ConventionSystemV
	default:
		return ConventionUnknown
	}
}
