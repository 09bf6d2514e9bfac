package vm

// Stores: address is rs1 + s_imm. The stored value is rs2 trimmed to the
// instruction's width (8/16/32 bits for sb/sh/sw).
func (m *Machine) execStore(op Op, w Word) *Trap {
	base := uint64(m.Regs.Read(w.Rs1()))
	addr := Trim32(base + w.SImm())
	value := uint64(m.Regs.Read(w.Rs2()))

	var size int
	switch op {
	case OpSB:
		size = 1
	case OpSH:
		size = 2
	case OpSW:
		size = 4
	}

	if err := m.Mem.Write(addr, size, value); err != nil {
		return storeFault(m.PC, addr, err)
	}

	if m.MemoryTrace != nil {
		m.MemoryTrace.RecordWrite(m.Instret, m.PC, addr, size, Trim(value, uint(size*8)))
	}

	m.advance()
	return nil
}
