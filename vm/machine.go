package vm

import (
	"fmt"
)

// ============================================================================
// Processor state (C6)
// ============================================================================

// RunState is the cooperative run/halt/error state of a Machine. Halting is
// a cooperative flag, not an error; Error means the last Step surfaced a
// Trap and no further Step should be attempted without a Reset.
type RunState int

const (
	StateRunning RunState = iota
	StateHalted
	StateBreakpoint
	StateError
)

func (s RunState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	case StateBreakpoint:
		return "breakpoint"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// DefaultMaxCycles bounds Run() in the absence of an explicit CycleLimit, so
// a runaway program (e.g. an unintended infinite loop in a test fixture)
// cannot hang the caller forever.
const DefaultMaxCycles = 10_000_000

// Machine is the complete architectural state: pc, the register file, the
// memory port, xlen, and the running/halted flag — plus the ambient
// bookkeeping (instret, diagnostics hooks, I/O plumbing)
// a full interpreter needs around that core.
type Machine struct {
	PC      uint32
	Regs    *Registers
	Mem     Port
	XLEN    uint
	State   RunState
	Instret uint64

	// CycleLimit, when nonzero, makes Step return an error once Instret
	// reaches it — a cooperative guard, not an architectural trap.
	CycleLimit uint64

	// EntryPoint and StackTop are remembered across Reset so
	// ResetRegisters can restore a fresh run of the same image.
	EntryPoint uint32
	StackTop   uint32

	LastTrap error

	// Diagnostics (D4); all nil until explicitly enabled, and guarded by
	// nil-checks on every hot path so a plain Machine pays nothing for
	// them.
	Trace         *ExecutionTrace
	RegisterTrace *RegisterTrace
	MemoryTrace   *MemoryTrace
	Coverage      *CodeCoverage
	Stats         *PerformanceStatistics
}

// New constructs a Machine over mem, with the program counter set to entry
// and XLEN fixed for the lifetime of the instance. All registers start at
// zero and the machine starts in StateRunning.
func New(mem Port, entry uint32, xlen uint) *Machine {
	return &Machine{
		PC:         entry,
		Regs:       NewRegisters(),
		Mem:        mem,
		XLEN:       xlen,
		State:      StateRunning,
		EntryPoint: entry,
		CycleLimit: DefaultMaxCycles,
	}
}

// RegRead returns the value of register idx, widened to 64 bits (the
// embedder-facing API works in u64 regardless of XLEN; for XLEN=32 the
// high 32 bits are always zero).
func (m *Machine) RegRead(idx uint32) uint64 {
	return uint64(m.Regs.Read(idx))
}

// RegWrite sets register idx from a u64 value, truncated to XLEN bits.
func (m *Machine) RegWrite(idx uint32, v uint64) {
	m.Regs.Write(idx, Trim32(v))
}

// PCGet returns the current program counter.
func (m *Machine) PCGet() uint32 {
	return m.PC
}

// PCSet overwrites the program counter, bypassing alignment checks — used
// by embedders (loaders, debuggers) setting up or rewinding a run, not by
// instruction handlers.
func (m *Machine) PCSet(v uint32) {
	m.PC = v
}

// Halt cooperatively stops the run loop: Run() returns after the
// in-flight Step completes, without raising a Trap.
func (m *Machine) Halt() {
	if m.State == StateRunning {
		m.State = StateHalted
	}
}

// Running reports whether Run() would continue stepping.
func (m *Machine) Running() bool {
	return m.State == StateRunning
}

// InitializeStack sets the stack pointer (x2) and remembers the value so a
// later ResetRegisters can restore it.
func (m *Machine) InitializeStack(top uint32) {
	m.StackTop = top
	m.Regs.Write(RegSP, top)
}

// Reset zeroes registers and memory and rewinds the run state, discarding
// the loaded program.
func (m *Machine) Reset() {
	m.Regs.Reset()
	if mm, ok := m.Mem.(*Memory); ok {
		mm.Reset()
	}
	m.PC = m.EntryPoint
	m.Instret = 0
	m.State = StateRunning
	m.LastTrap = nil
}

// ResetRegisters rewinds CPU state (registers, PC, stack pointer, instret)
// without touching memory — restarting execution of an already-loaded
// program, the way a debugger's "restart" command does.
func (m *Machine) ResetRegisters() {
	m.Regs.Reset()
	m.PC = m.EntryPoint
	if m.StackTop != 0 {
		m.Regs.Write(RegSP, m.StackTop)
	}
	m.Instret = 0
	m.State = StateRunning
	m.LastTrap = nil
}

// fetch reads the 4-byte little-endian word at pc.
func (m *Machine) fetch() (Word, *Trap) {
	if pc := m.PC; pc%InstructionSize != 0 {
		return 0, misalignedTarget(pc, pc)
	}
	if mm, ok := m.Mem.(*Memory); ok {
		if err := mm.CheckExecutePermission(m.PC); err != nil {
			return 0, &Trap{Kind: LoadAccessFault, PC: m.PC, Addr: m.PC, Err: err}
		}
	}
	raw, err := m.Mem.Read(m.PC, InstructionSize)
	if err != nil {
		return 0, &Trap{Kind: LoadAccessFault, PC: m.PC, Addr: m.PC, Err: err}
	}
	return Word(raw), nil
}

// Step fetches, decodes, and executes exactly one instruction. On success
// Instret is incremented and PC has advanced (by 4, or to a jump/branch
// target). On a Trap, PC is left unchanged and no architectural state from
// the failing instruction is committed — the loop performs no retries and
// no logging.
func (m *Machine) Step() error {
	if m.State == StateError {
		return fmt.Errorf("machine is in error state: %w", m.LastTrap)
	}
	if m.CycleLimit > 0 && m.Instret >= m.CycleLimit {
		m.State = StateError
		m.LastTrap = fmt.Errorf("cycle limit exceeded (%d instructions)", m.CycleLimit)
		return m.LastTrap
	}

	word, trap := m.fetch()
	if trap != nil {
		m.State = StateError
		m.LastTrap = fmt.Errorf("fetch failed at pc=%#08x: %w", m.PC, trap)
		return m.LastTrap
	}

	op, trap := Decode(word)
	if trap != nil {
		trap.PC = m.PC
		m.State = StateError
		m.LastTrap = fmt.Errorf("decode failed at pc=%#08x: %w", m.PC, trap)
		return m.LastTrap
	}

	var before [GeneralRegisterCount]uint32
	tracingRegs := m.RegisterTrace != nil && m.RegisterTrace.Enabled
	if tracingRegs {
		before = m.Regs.Snapshot()
	}

	pcBefore := m.PC
	if trap := m.execute(op, word); trap != nil {
		m.LastTrap = fmt.Errorf("execute failed at pc=%#08x (%s): %w", pcBefore, op, trap)
		if m.State != StateHalted && m.State != StateBreakpoint {
			m.State = StateError
		}
		return m.LastTrap
	}

	m.Instret++

	if m.Trace != nil {
		m.Trace.Record(m.Instret, pcBefore, word, op)
	}
	if m.Coverage != nil {
		m.Coverage.Record(pcBefore)
	}
	if m.Stats != nil {
		m.Stats.Record(op)
	}
	if tracingRegs {
		after := m.Regs.Snapshot()
		for i := range after {
			if after[i] != before[i] {
				m.RegisterTrace.Record(m.Instret, pcBefore, uint32(i), before[i], after[i])
			}
		}
	}

	return nil
}

// Run steps the machine until State stops being StateRunning (via Halt, a
// breakpoint set by an embedding debugger, or a Trap aborting with an
// error).
func (m *Machine) Run() error {
	for m.State == StateRunning {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}
