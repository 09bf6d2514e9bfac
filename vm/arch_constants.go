package vm

// ============================================================================
// RV32I Architecture Constants
// ============================================================================
// These values are defined by the RISC-V unprivileged specification and
// should not be modified.

const (
	// InstructionSize is the width, in bytes, of every RV32I instruction.
	// The base ISA has no 16-bit (compressed) or variable-length forms.
	InstructionSize = 4

	// GeneralRegisterCount is the number of architectural integer registers,
	// x0 through x31. x0 is hard-wired to zero; see Registers.
	GeneralRegisterCount = 32

	// XLen32 and XLen64 name the two architectural widths this package's
	// bit helpers are parametric over. This simulator fixes XLEN=32 for
	// RV32I, but the width-parametric helpers and the RV64-shaped shift/
	// load branches are kept so a later RV64I extension is mechanical.
	XLen32 = 32
	XLen64 = 64

	// SignBitPos32 is the position of the sign bit in a 32-bit word.
	SignBitPos32 = 31
)
