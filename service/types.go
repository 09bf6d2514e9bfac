package service

import "github.com/rv32iss/emulator/vm"

// RegisterState represents a snapshot of the register file
type RegisterState struct {
	Registers [32]uint32
	PC        uint32
	Instret   uint64
}

// BreakpointInfo represents a breakpoint for UI display
type BreakpointInfo struct {
	Address   uint32 `json:"address"`
	Enabled   bool   `json:"enabled"`
	Condition string `json:"condition"` // Expression that must evaluate to true
}

// WatchpointInfo represents a watchpoint for UI display
type WatchpointInfo struct {
	ID      int    `json:"id"`
	Address uint32 `json:"address"`
	Type    string `json:"type"` // "read", "write", "readwrite"
	Enabled bool   `json:"enabled"`
}

// MemoryRegion represents a contiguous memory region
type MemoryRegion struct {
	Address uint32
	Data    []byte
	Size    uint32
}

// ExecutionState represents the current state of execution
type ExecutionState string

const (
	StateRunning    ExecutionState = "running"
	StateHalted     ExecutionState = "halted"
	StateBreakpoint ExecutionState = "breakpoint"
	StateError      ExecutionState = "error"
)

// VMStateToExecution converts vm.RunState to service.ExecutionState
func VMStateToExecution(state vm.RunState) ExecutionState {
	switch state {
	case vm.StateRunning:
		return StateRunning
	case vm.StateHalted:
		return StateHalted
	case vm.StateBreakpoint:
		return StateBreakpoint
	case vm.StateError:
		return StateError
	default:
		return StateHalted
	}
}

// DisassemblyLine represents a single disassembled instruction
type DisassemblyLine struct {
	Address uint32 `json:"address"`
	Opcode  uint32 `json:"opcode"`
	Symbol  string `json:"symbol"` // Symbol at this address, if any
}

// StackEntry represents a single stack location
type StackEntry struct {
	Address uint32 `json:"address"`
	Value   uint32 `json:"value"`
	Symbol  string `json:"symbol"` // If value points to a symbol
}

// MemorySegmentSnapshot is one named segment's address range and a copy of
// its backing bytes, captured at a point in time.
type MemorySegmentSnapshot struct {
	Name  string
	Start uint32
	Data  []byte
}

// MachineSnapshot is a point-in-time capture of everything architectural:
// the register file, PC, retired-instruction count, and every memory
// segment's contents. It holds no reference into the live machine, so the
// machine may keep running after a snapshot is taken.
type MachineSnapshot struct {
	Registers [32]uint32
	PC        uint32
	Instret   uint64
	Segments  []MemorySegmentSnapshot
}
