package vm

import "fmt"

// ============================================================================
// Memory port (C5)
// ============================================================================
//
// Port is the abstract byte-addressable space the interpreter consumes: a
// synchronous read(addr, size)/write(addr, size, value) pair with
// little-endian assembly, size in {1, 2, 4} for RV32I. This is the interface
// the step loop and every load/store handler program against; program
// loading, MMIO plumbing, and allocation policy are external collaborators
// that only need to satisfy this interface.
type Port interface {
	// Read assembles size bytes at addr, little-endian, into the low
	// size*8 bits of the return value.
	Read(addr uint32, size int) (uint64, error)
	// Write stores the low size*8 bits of value at addr, little-endian.
	Write(addr uint32, size int, value uint64) error
}

// Memory permission bits for a segment.
type Permission byte

const (
	PermNone    Permission = 0
	PermRead    Permission = 1 << 0
	PermWrite   Permission = 1 << 1
	PermExecute Permission = 1 << 2
)

// Segment is a named, contiguous, permissioned region of byte-addressable
// memory.
type Segment struct {
	Name        string
	Start       uint32
	Size        uint32
	Data        []byte
	Permissions Permission
}

// Memory is the default, in-process Port implementation: a small set of
// named segments (code/data/heap/stack, plus whatever the loader adds),
// each independently permissioned. Real silicon has none of this — it is a
// modeling convenience standing in for an MMU/bus.
type Memory struct {
	Segments []*Segment

	AccessCount uint64
	ReadCount   uint64
	WriteCount  uint64
}

// Default RV32I memory layout. Arbitrary but generous; a loader is free to
// add or replace segments (e.g. to cover a low .org 0 image).
const (
	CodeSegmentStart  = 0x00010000
	CodeSegmentSize   = 0x00010000
	DataSegmentStart  = 0x00020000
	DataSegmentSize   = 0x00010000
	HeapSegmentStart  = 0x00030000
	HeapSegmentSize   = 0x00010000
	StackSegmentStart = 0x00040000
	StackSegmentSize  = 0x00010000
)

// NewMemory creates the default four-segment layout: code (RX), data (RW),
// heap (RW), stack (RW).
func NewMemory() *Memory {
	m := &Memory{}
	m.AddSegment("code", CodeSegmentStart, CodeSegmentSize, PermRead|PermExecute)
	m.AddSegment("data", DataSegmentStart, DataSegmentSize, PermRead|PermWrite)
	m.AddSegment("heap", HeapSegmentStart, HeapSegmentSize, PermRead|PermWrite)
	m.AddSegment("stack", StackSegmentStart, StackSegmentSize, PermRead|PermWrite)
	return m
}

// AddSegment registers a new named memory region.
func (m *Memory) AddSegment(name string, start, size uint32, perm Permission) *Segment {
	seg := &Segment{Name: name, Start: start, Size: size, Data: make([]byte, size), Permissions: perm}
	m.Segments = append(m.Segments, seg)
	return seg
}

// Reset zeroes every segment's backing bytes and the access counters.
func (m *Memory) Reset() {
	for _, seg := range m.Segments {
		for i := range seg.Data {
			seg.Data[i] = 0
		}
	}
	m.AccessCount, m.ReadCount, m.WriteCount = 0, 0, 0
}

func (m *Memory) findSegment(addr uint32, size int) (*Segment, uint32, error) {
	end := addr + uint32(size)
	for _, seg := range m.Segments {
		if addr >= seg.Start && end <= seg.Start+seg.Size {
			return seg, addr - seg.Start, nil
		}
	}
	return nil, 0, fmt.Errorf("address %#08x (size %d) is not mapped", addr, size)
}

// CheckExecutePermission reports whether addr may be fetched from.
func (m *Memory) CheckExecutePermission(addr uint32) error {
	seg, _, err := m.findSegment(addr, InstructionSize)
	if err != nil {
		return err
	}
	if seg.Permissions&PermExecute == 0 {
		return fmt.Errorf("segment %q at %#08x is not executable", seg.Name, addr)
	}
	return nil
}

// Read implements Port: it assembles size bytes at addr, little-endian.
func (m *Memory) Read(addr uint32, size int) (uint64, error) {
	if size != 1 && size != 2 && size != 4 {
		return 0, fmt.Errorf("unsupported read size %d", size)
	}
	seg, off, err := m.findSegment(addr, size)
	if err != nil {
		return 0, err
	}
	if seg.Permissions&PermRead == 0 {
		return 0, fmt.Errorf("segment %q at %#08x denies read", seg.Name, addr)
	}

	var v uint64
	for i := 0; i < size; i++ {
		v |= uint64(seg.Data[int(off)+i]) << (8 * i)
	}
	m.AccessCount++
	m.ReadCount++
	return v, nil
}

// Write implements Port: it stores the low size*8 bits of value at addr,
// little-endian.
func (m *Memory) Write(addr uint32, size int, value uint64) error {
	if size != 1 && size != 2 && size != 4 {
		return fmt.Errorf("unsupported write size %d", size)
	}
	seg, off, err := m.findSegment(addr, size)
	if err != nil {
		return err
	}
	if seg.Permissions&PermWrite == 0 {
		return fmt.Errorf("segment %q at %#08x denies write", seg.Name, addr)
	}

	for i := 0; i < size; i++ {
		seg.Data[int(off)+i] = byte(value >> (8 * i))
	}
	m.AccessCount++
	m.WriteCount++
	return nil
}

// LoadBytes copies data verbatim into memory starting at addr, bypassing
// the Port permission checks (used by the loader to install a program
// image before execution begins).
func (m *Memory) LoadBytes(addr uint32, data []byte) error {
	seg, off, err := m.findSegment(addr, len(data))
	if err != nil {
		return fmt.Errorf("failed to load %d bytes at %#08x: %w", len(data), addr, err)
	}
	copy(seg.Data[off:], data)
	return nil
}
