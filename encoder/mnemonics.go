package encoder

import "github.com/rv32iss/emulator/vm"

// One constructor per RV32I mnemonic, each a thin call into the matching
// Encode* with the funct3/funct7 RV32I fixes hard-coded. Registers are
// 0..31; immediates are signed byte offsets or already-shifted upper bits,
// matching the corresponding vm.Word accessor's convention.

func LUI(rd uint32, imm uint32) uint32   { return EncodeU(vm.BaseLUI, rd, imm) }
func AUIPC(rd uint32, imm uint32) uint32 { return EncodeU(vm.BaseAUIPC, rd, imm) }

func JAL(rd uint32, offset int32) uint32 { return EncodeJ(vm.BaseJAL, rd, offset) }
func JALR(rd, rs1 uint32, offset int32) uint32 {
	return EncodeI(vm.BaseJALR, 0x0, rd, rs1, offset)
}

func BEQ(rs1, rs2 uint32, offset int32) uint32  { return EncodeB(vm.BaseBranch, 0x0, rs1, rs2, offset) }
func BNE(rs1, rs2 uint32, offset int32) uint32  { return EncodeB(vm.BaseBranch, 0x1, rs1, rs2, offset) }
func BLT(rs1, rs2 uint32, offset int32) uint32  { return EncodeB(vm.BaseBranch, 0x4, rs1, rs2, offset) }
func BGE(rs1, rs2 uint32, offset int32) uint32  { return EncodeB(vm.BaseBranch, 0x5, rs1, rs2, offset) }
func BLTU(rs1, rs2 uint32, offset int32) uint32 { return EncodeB(vm.BaseBranch, 0x6, rs1, rs2, offset) }
func BGEU(rs1, rs2 uint32, offset int32) uint32 { return EncodeB(vm.BaseBranch, 0x7, rs1, rs2, offset) }

func LB(rd, rs1 uint32, offset int32) uint32  { return EncodeI(vm.BaseLoad, 0x0, rd, rs1, offset) }
func LH(rd, rs1 uint32, offset int32) uint32  { return EncodeI(vm.BaseLoad, 0x1, rd, rs1, offset) }
func LW(rd, rs1 uint32, offset int32) uint32  { return EncodeI(vm.BaseLoad, 0x2, rd, rs1, offset) }
func LBU(rd, rs1 uint32, offset int32) uint32 { return EncodeI(vm.BaseLoad, 0x4, rd, rs1, offset) }
func LHU(rd, rs1 uint32, offset int32) uint32 { return EncodeI(vm.BaseLoad, 0x5, rd, rs1, offset) }

func SB(rs1, rs2 uint32, offset int32) uint32 { return EncodeS(vm.BaseStore, 0x0, rs1, rs2, offset) }
func SH(rs1, rs2 uint32, offset int32) uint32 { return EncodeS(vm.BaseStore, 0x1, rs1, rs2, offset) }
func SW(rs1, rs2 uint32, offset int32) uint32 { return EncodeS(vm.BaseStore, 0x2, rs1, rs2, offset) }

func ADDI(rd, rs1 uint32, imm int32) uint32  { return EncodeI(vm.BaseOpImm, 0x0, rd, rs1, imm) }
func SLTI(rd, rs1 uint32, imm int32) uint32  { return EncodeI(vm.BaseOpImm, 0x2, rd, rs1, imm) }
func SLTIU(rd, rs1 uint32, imm int32) uint32 { return EncodeI(vm.BaseOpImm, 0x3, rd, rs1, imm) }
func XORI(rd, rs1 uint32, imm int32) uint32  { return EncodeI(vm.BaseOpImm, 0x4, rd, rs1, imm) }
func ORI(rd, rs1 uint32, imm int32) uint32   { return EncodeI(vm.BaseOpImm, 0x6, rd, rs1, imm) }
func ANDI(rd, rs1 uint32, imm int32) uint32  { return EncodeI(vm.BaseOpImm, 0x7, rd, rs1, imm) }

func SLLI(rd, rs1, shamt uint32) uint32 {
	return EncodeR(vm.BaseOpImm, 0x1, rd, rs1, shamt, 0x00)
}
func SRLI(rd, rs1, shamt uint32) uint32 {
	return EncodeR(vm.BaseOpImm, 0x5, rd, rs1, shamt, 0x00)
}
func SRAI(rd, rs1, shamt uint32) uint32 {
	return EncodeR(vm.BaseOpImm, 0x5, rd, rs1, shamt, 0x20)
}

func ADD(rd, rs1, rs2 uint32) uint32  { return EncodeR(vm.BaseOp, 0x0, rd, rs1, rs2, 0x00) }
func SUB(rd, rs1, rs2 uint32) uint32  { return EncodeR(vm.BaseOp, 0x0, rd, rs1, rs2, 0x20) }
func SLL(rd, rs1, rs2 uint32) uint32  { return EncodeR(vm.BaseOp, 0x1, rd, rs1, rs2, 0x00) }
func SLT(rd, rs1, rs2 uint32) uint32  { return EncodeR(vm.BaseOp, 0x2, rd, rs1, rs2, 0x00) }
func SLTU(rd, rs1, rs2 uint32) uint32 { return EncodeR(vm.BaseOp, 0x3, rd, rs1, rs2, 0x00) }
func XOR(rd, rs1, rs2 uint32) uint32  { return EncodeR(vm.BaseOp, 0x4, rd, rs1, rs2, 0x00) }
func SRL(rd, rs1, rs2 uint32) uint32  { return EncodeR(vm.BaseOp, 0x5, rd, rs1, rs2, 0x00) }
func SRA(rd, rs1, rs2 uint32) uint32  { return EncodeR(vm.BaseOp, 0x5, rd, rs1, rs2, 0x20) }
func OR(rd, rs1, rs2 uint32) uint32   { return EncodeR(vm.BaseOp, 0x6, rd, rs1, rs2, 0x00) }
func AND(rd, rs1, rs2 uint32) uint32  { return EncodeR(vm.BaseOp, 0x7, rd, rs1, rs2, 0x00) }

func FENCE() uint32  { return vm.BaseMiscMem }
func FENCEI() uint32 { return vm.BaseMiscMem | (0x1 << 12) }
