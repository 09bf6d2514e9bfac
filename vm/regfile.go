package vm

// ============================================================================
// Register file (C4)
// ============================================================================

// Registers is the architectural integer register file: 32 XLEN-bit values
// indexed 0..31. Index 0 (x0) is hard-wired to zero — reads always return 0
// and writes are silently discarded, via an if-guard in both Read and Write
// (the two policies are observationally equivalent; the guard is preferred
// because it also makes the x0 read path not touch storage at all).
type Registers struct {
	x [GeneralRegisterCount]uint32
}

// NewRegisters returns a register file with all 32 registers zeroed.
func NewRegisters() *Registers {
	return &Registers{}
}

// Read returns the value of register idx. idx must be in [0, 31].
func (r *Registers) Read(idx uint32) uint32 {
	if idx == 0 {
		return 0
	}
	return r.x[idx]
}

// Write sets register idx to val. A write to x0 is a no-op.
func (r *Registers) Write(idx uint32, val uint32) {
	if idx == 0 {
		return
	}
	r.x[idx] = val
}

// Reset zeroes every register.
func (r *Registers) Reset() {
	for i := range r.x {
		r.x[i] = 0
	}
}

// Snapshot copies the full 32-register state out, for tracing/debugging.
func (r *Registers) Snapshot() [GeneralRegisterCount]uint32 {
	return r.x
}
