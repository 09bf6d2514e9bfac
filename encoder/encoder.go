// Package encoder builds RV32I instruction words from their operand fields.
// It is the inverse of vm.Decode plus the vm.Word field accessors: where the
// vm package pulls fields out of a fetched word, this package packs them in.
//
// There is no textual syntax here — no mnemonics-as-strings, no labels, no
// symbol table. Callers that want "addi x1, x0, 5" build it by calling
// ADDI(1, 0, 5); resolving a branch or jump target to a byte offset is the
// caller's job: one function per instruction format, then one constructor
// per mnemonic, with everything downstream of a parsed AST dropped since
// nothing in this system consumes assembly text.
package encoder

// EncodeR packs the R-type fields (register-register ALU ops) into a word.
func EncodeR(opcode, funct3, rd, rs1, rs2, funct7 uint32) uint32 {
	return (opcode & 0x7F) |
		(rd&0x1F)<<7 |
		(funct3&0x7)<<12 |
		(rs1&0x1F)<<15 |
		(rs2&0x1F)<<20 |
		(funct7&0x7F)<<25
}

// EncodeI packs the I-type fields (loads, OP-IMM, JALR) into a word. imm is
// taken as the low 12 bits of a signed offset.
func EncodeI(opcode, funct3, rd, rs1 uint32, imm int32) uint32 {
	return (opcode & 0x7F) |
		(rd&0x1F)<<7 |
		(funct3&0x7)<<12 |
		(rs1&0x1F)<<15 |
		(uint32(imm)&0xFFF)<<20
}

// EncodeS packs the S-type fields (stores) into a word.
func EncodeS(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm)
	lo := u & 0x1F
	hi := (u >> 5) & 0x7F
	return (opcode & 0x7F) |
		lo<<7 |
		(funct3&0x7)<<12 |
		(rs1&0x1F)<<15 |
		(rs2&0x1F)<<20 |
		hi<<25
}

// EncodeB packs the SB-type fields (conditional branches) into a word. imm
// is the byte offset from the branch to its target and must be even.
func EncodeB(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm)
	bit12 := (u >> 12) & 0x1
	bits10_5 := (u >> 5) & 0x3F
	bits4_1 := (u >> 1) & 0xF
	bit11 := (u >> 11) & 0x1
	return (opcode & 0x7F) |
		bit11<<7 |
		bits4_1<<8 |
		(funct3&0x7)<<12 |
		(rs1&0x1F)<<15 |
		(rs2&0x1F)<<20 |
		bits10_5<<25 |
		bit12<<31
}

// EncodeU packs the U-type fields (LUI, AUIPC) into a word. imm is the
// already-shifted 20-bit upper immediate (bits [31:12]).
func EncodeU(opcode, rd uint32, imm uint32) uint32 {
	return (opcode & 0x7F) | (rd&0x1F)<<7 | (imm & 0xFFFFF000)
}

// EncodeJ packs the UJ-type fields (JAL) into a word. imm is the byte offset
// from the jump to its target and must be even.
func EncodeJ(opcode, rd uint32, imm int32) uint32 {
	u := uint32(imm)
	bit20 := (u >> 20) & 0x1
	bits10_1 := (u >> 1) & 0x3FF
	bit11 := (u >> 11) & 0x1
	bits19_12 := (u >> 12) & 0xFF
	return (opcode & 0x7F) |
		(rd&0x1F)<<7 |
		bits19_12<<12 |
		bit11<<20 |
		bits10_1<<21 |
		bit20<<31
}
