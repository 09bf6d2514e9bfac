package vm

// Unconditional jumps: jal, jalr.

func (m *Machine) execJAL(w Word) *Trap {
	rd := w.Rd()
	link := SextXLEN(uint64(m.PC)+InstructionSize, m.XLEN)
	target := m.PC + Trim32(w.UJImm())

	if target%InstructionSize != 0 {
		return misalignedTarget(m.PC, target)
	}

	m.Regs.Write(rd, Trim32(link))
	m.PC = target
	return nil
}

func (m *Machine) execJALR(w Word) *Trap {
	rd := w.Rd()
	rs1 := m.Regs.Read(w.Rs1())
	link := SextXLEN(uint64(m.PC)+InstructionSize, m.XLEN)

	target := Trim32(uint64(rs1)+w.IImm()) &^ 1

	if target%InstructionSize != 0 {
		return misalignedTarget(m.PC, target)
	}

	m.Regs.Write(rd, Trim32(link))
	m.PC = target
	return nil
}
