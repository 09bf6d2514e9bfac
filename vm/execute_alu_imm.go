package vm

// Immediate ALU: addi, slti, sltiu, xori, ori, andi.
func (m *Machine) execALUImm(op Op, w Word) *Trap {
	rs1 := uint64(m.Regs.Read(w.Rs1()))
	imm := w.IImm()

	var result uint64
	switch op {
	case OpADDI:
		result = SextXLEN(rs1+imm, m.XLEN)
	case OpSLTI:
		if Signed(rs1, m.XLEN) < Signed(imm, m.XLEN) {
			result = 1
		}
	case OpSLTIU:
		if Trim(rs1, m.XLEN) < Trim(imm, m.XLEN) {
			result = 1
		}
	case OpXORI:
		result = rs1 ^ imm
	case OpORI:
		result = rs1 | imm
	case OpANDI:
		result = rs1 & imm
	}

	m.Regs.Write(w.Rd(), Trim32(result))
	m.advance()
	return nil
}

// Immediate shifts: slli, srli, srai. shamt is bits[24:20] on RV32. If bit 5
// of the shamt field is set, the encoding is illegal on RV32 (the shift
// amount would exceed 31, the largest shift of a 32-bit register).
func (m *Machine) execShiftImm(op Op, w Word) *Trap {
	if m.XLEN == XLen32 && w.Shamt5High() {
		return illegalInstruction(w)
	}

	rs1 := m.Regs.Read(w.Rs1())
	shamt := w.Shamt(m.XLEN)

	var result uint32
	switch op {
	case OpSLLI:
		result = rs1 << shamt
	case OpSRLI:
		result = rs1 >> shamt
	case OpSRAI:
		result = uint32(Signed(uint64(rs1), m.XLEN) >> shamt)
	}

	m.Regs.Write(w.Rd(), result)
	m.advance()
	return nil
}
