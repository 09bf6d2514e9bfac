package vm

// Register ALU: add, sub, sll, slt, sltu, xor, srl, sra, or, and.
func (m *Machine) execALUReg(op Op, w Word) *Trap {
	rs1 := uint64(m.Regs.Read(w.Rs1()))
	rs2 := uint64(m.Regs.Read(w.Rs2()))

	var result uint64
	switch op {
	case OpADD:
		result = SextXLEN(rs1+rs2, m.XLEN)
	case OpSUB:
		result = SextXLEN(rs1-rs2, m.XLEN)
	case OpSLL:
		shamt := rs2 & uint64(m.XLEN-1)
		result = rs1 << shamt
	case OpSLT:
		if Signed(rs1, m.XLEN) < Signed(rs2, m.XLEN) {
			result = 1
		}
	case OpSLTU:
		if Trim(rs1, m.XLEN) < Trim(rs2, m.XLEN) {
			result = 1
		}
	case OpXOR:
		result = rs1 ^ rs2
	case OpSRL:
		shamt := rs2 & uint64(m.XLEN-1)
		result = Trim(rs1, m.XLEN) >> shamt
	case OpSRA:
		shamt := rs2 & uint64(m.XLEN-1)
		result = uint64(Signed(rs1, m.XLEN) >> shamt)
	case OpOR:
		result = rs1 | rs2
	case OpAND:
		result = rs1 & rs2
	}

	m.Regs.Write(w.Rd(), Trim32(result))
	m.advance()
	return nil
}
