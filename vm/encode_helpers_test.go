package vm

// Minimal encoders used only by this package's own tests to synthesize
// instruction words without depending on the separate encoder package (which
// in turn depends on this one). The real, public encoder lives in
// package encoder; it has no test files of its own.

func encodeRType(opcode, funct3, rd, rs1, rs2, funct7 uint32) uint32 {
	return opcode | (rd << 7) | (funct3 << 12) | (rs1 << 15) | (rs2 << 20) | (funct7 << 25)
}

func encodeIType(opcode, rd, funct3, rs1, imm uint32) uint32 {
	return opcode | (rd << 7) | (funct3 << 12) | (rs1 << 15) | ((imm & 0xFFF) << 20)
}

func encodeSType(opcode, funct3, rs1, rs2, imm uint32) uint32 {
	lo := imm & 0x1F
	hi := (imm >> 5) & 0x7F
	return opcode | (lo << 7) | (funct3 << 12) | (rs1 << 15) | (rs2 << 20) | (hi << 25)
}

func encodeUType(opcode, rd, imm uint32) uint32 {
	return opcode | (rd << 7) | (imm & 0xFFFFF000)
}

func encodeJType(rd uint32, imm uint32) uint32 {
	bit20 := (imm >> 20) & 0x1
	bits10_1 := (imm >> 1) & 0x3FF
	bit11 := (imm >> 11) & 0x1
	bits19_12 := (imm >> 12) & 0xFF
	packed := (bit20 << 31) | (bits19_12 << 12) | (bit11 << 20) | (bits10_1 << 21)
	return baseJAL | (rd << 7) | packed
}
