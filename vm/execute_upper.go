package vm

// Upper-immediate instructions: lui, auipc.

func (m *Machine) execLUI(w Word) *Trap {
	rd := w.Rd()
	m.Regs.Write(rd, Trim32(w.UImm()))
	m.advance()
	return nil
}

func (m *Machine) execAUIPC(w Word) *Trap {
	rd := w.Rd()
	result := SextXLEN(w.UImm()+uint64(m.PC), m.XLEN)
	m.Regs.Write(rd, Trim32(result))
	m.advance()
	return nil
}
