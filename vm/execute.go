package vm

// ============================================================================
// Execute handlers (C7)
// ============================================================================
//
// Every handler implicitly advances PC by 4 unless it explicitly assigns PC
// (jumps and taken branches). All destination-register writes go through
// Registers.Write, so a write to x0 is silently dropped there rather than
// special-cased in every handler. All arithmetic is modulo 2^XLEN; results
// landing in rd are passed through SextXLEN so the sign is preserved when
// the value is later widened (a no-op for XLEN=32 beyond truncation).
//
// execute is the single dispatch point: a dense switch over Op, a tagged
// enumeration decoded once per fetch rather than a table of function
// pointers, since it lets the compiler reorder the cold illegal-instruction
// arms away from the hot ALU ones.
func (m *Machine) execute(op Op, w Word) *Trap {
	switch op {
	case OpLUI:
		return m.execLUI(w)
	case OpAUIPC:
		return m.execAUIPC(w)

	case OpJAL:
		return m.execJAL(w)
	case OpJALR:
		return m.execJALR(w)

	case OpBEQ, OpBNE, OpBLT, OpBGE, OpBLTU, OpBGEU:
		return m.execBranch(op, w)

	case OpLB, OpLH, OpLW, OpLBU, OpLHU:
		return m.execLoad(op, w)

	case OpSB, OpSH, OpSW:
		return m.execStore(op, w)

	case OpADDI, OpSLTI, OpSLTIU, OpXORI, OpORI, OpANDI:
		return m.execALUImm(op, w)

	case OpSLLI, OpSRLI, OpSRAI:
		return m.execShiftImm(op, w)

	case OpADD, OpSUB, OpSLL, OpSLT, OpSLTU, OpXOR, OpSRL, OpSRA, OpOR, OpAND:
		return m.execALUReg(op, w)

	case OpFENCE, OpFENCEI:
		m.PC += InstructionSize
		return nil

	default:
		return illegalInstruction(w)
	}
}

// advance moves PC to the next sequential instruction; handlers that do not
// alter control flow call this as their final step.
func (m *Machine) advance() {
	m.PC += InstructionSize
}
