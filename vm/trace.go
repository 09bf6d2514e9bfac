package vm

import (
	"fmt"
	"io"
)

// ============================================================================
// Execution diagnostics (D4) — instruction trace
// ============================================================================

// TraceEntry is a single retired instruction recorded by ExecutionTrace.
type TraceEntry struct {
	Sequence uint64
	PC       uint32
	Opcode   uint32
	Op       Op
}

// ExecutionTrace is a bounded ring buffer of retired instructions, recorded
// by Machine.Step when attached. Disabled by default (Machine.Trace is nil)
// so a plain run pays nothing for it.
type ExecutionTrace struct {
	Writer     io.Writer
	MaxEntries int

	entries []TraceEntry
}

// NewExecutionTrace creates a trace that writes a one-line rendering of
// every recorded entry to w as it happens, in addition to keeping the last
// maxEntries in memory for later inspection.
func NewExecutionTrace(w io.Writer, maxEntries int) *ExecutionTrace {
	if maxEntries <= 0 {
		maxEntries = 100_000
	}
	return &ExecutionTrace{Writer: w, MaxEntries: maxEntries}
}

// Record appends one retired instruction to the trace.
func (t *ExecutionTrace) Record(seq uint64, pc uint32, word Word, op Op) {
	entry := TraceEntry{Sequence: seq, PC: pc, Opcode: uint32(word), Op: op}
	t.entries = append(t.entries, entry)
	if len(t.entries) > t.MaxEntries {
		t.entries = t.entries[len(t.entries)-t.MaxEntries:]
	}
	if t.Writer != nil {
		fmt.Fprintf(t.Writer, "%8d  pc=%#08x  op=%-8s opcode=%#08x\n", seq, pc, op, word)
	}
}

// Entries returns the recorded entries, oldest first.
func (t *ExecutionTrace) Entries() []TraceEntry {
	return t.entries
}

// ============================================================================
// Memory access trace
// ============================================================================

// MemoryAccessEntry is a single load or store recorded by MemoryTrace.
type MemoryAccessEntry struct {
	Sequence uint64
	PC       uint32
	Addr     uint32
	Size     int
	Value    uint64
	IsWrite  bool
}

// MemoryTrace records every load and store the execute handlers perform
// through the memory port.
type MemoryTrace struct {
	MaxEntries int
	entries    []MemoryAccessEntry
}

// NewMemoryTrace creates a memory trace bounded to maxEntries (0 means the
// default of 100,000).
func NewMemoryTrace(maxEntries int) *MemoryTrace {
	if maxEntries <= 0 {
		maxEntries = 100_000
	}
	return &MemoryTrace{MaxEntries: maxEntries}
}

func (t *MemoryTrace) record(e MemoryAccessEntry) {
	t.entries = append(t.entries, e)
	if len(t.entries) > t.MaxEntries {
		t.entries = t.entries[len(t.entries)-t.MaxEntries:]
	}
}

// RecordRead records a completed load.
func (t *MemoryTrace) RecordRead(seq uint64, pc, addr uint32, size int, value uint64) {
	t.record(MemoryAccessEntry{Sequence: seq, PC: pc, Addr: addr, Size: size, Value: value})
}

// RecordWrite records a completed store.
func (t *MemoryTrace) RecordWrite(seq uint64, pc, addr uint32, size int, value uint64) {
	t.record(MemoryAccessEntry{Sequence: seq, PC: pc, Addr: addr, Size: size, Value: value, IsWrite: true})
}

// Entries returns the recorded entries, oldest first.
func (t *MemoryTrace) Entries() []MemoryAccessEntry {
	return t.entries
}
