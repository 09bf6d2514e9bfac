package vm

// ============================================================================
// RV32I register ABI names
// ============================================================================
// These are calling-convention aliases, not distinct storage — RegSP and
// register index 2 name the same Registers slot.

const (
	RegZero = 0
	RegRA   = 1
	RegSP   = 2
	RegGP   = 3
	RegTP   = 4
	RegT0   = 5
	RegT1   = 6
	RegT2   = 7
	RegS0   = 8
	RegFP   = 8
	RegS1   = 9
	RegA0   = 10
	RegA1   = 11
	RegA2   = 12
	RegA3   = 13
	RegA4   = 14
	RegA5   = 15
	RegA6   = 16
	RegA7   = 17
	RegS2   = 18
	RegS3   = 19
	RegS4   = 20
	RegS5   = 21
	RegS6   = 22
	RegS7   = 23
	RegS8   = 24
	RegS9   = 25
	RegS10  = 26
	RegS11  = 27
	RegT3   = 28
	RegT4   = 29
	RegT5   = 30
	RegT6   = 31
)

var regABINames = [GeneralRegisterCount]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// RegABIName returns the calling-convention name for register idx (e.g.
// "sp" for x2), or "" if idx is out of range.
func RegABIName(idx uint32) string {
	if int(idx) >= len(regABINames) {
		return ""
	}
	return regABINames[idx]
}

var abiNameToReg map[string]uint32

func init() {
	abiNameToReg = make(map[string]uint32, len(regABINames))
	for idx, name := range regABINames {
		abiNameToReg[name] = uint32(idx)
	}
	abiNameToReg["fp"] = RegFP
}

// RegABINumber is the inverse of RegABIName: it looks up a register index
// by its calling-convention name (e.g. "sp" -> 2), including the "fp" alias
// for x8 that regABINames itself renders as "s0".
func RegABINumber(name string) (uint32, bool) {
	idx, ok := abiNameToReg[name]
	return idx, ok
}
