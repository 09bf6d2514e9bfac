package vm

import "testing"

// newTestMachine returns a Machine over a single large RWX segment spanning
// 0..0x100000, so scenarios that use addresses like 0x1000 and 0 can be
// exercised without worrying about the default segment layout.
func newTestMachine(pc uint32) *Machine {
	mem := &Memory{}
	mem.AddSegment("test", 0, 0x100000, PermRead|PermWrite|PermExecute)
	return New(mem, pc, XLen32)
}

func (m *Machine) mustStoreWord(t *testing.T, addr uint32, w Word) {
	t.Helper()
	if err := m.Mem.Write(addr, 4, uint64(w)); err != nil {
		t.Fatalf("store word at %#08x: %v", addr, err)
	}
}

func TestScenario1_LUI(t *testing.T) {
	m := newTestMachine(0x1000)
	m.mustStoreWord(t, 0x1000, 0xABCDE0B7) // lui x1, 0xABCDE
	if err := m.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := m.RegRead(1); got != 0xABCDE000 {
		t.Errorf("x1 = %#x, want 0xABCDE000", got)
	}
	if m.PC != 0x1004 {
		t.Errorf("pc = %#x, want 0x1004", m.PC)
	}
}

func TestScenario2_ADDINegative(t *testing.T) {
	m := newTestMachine(0x1000)
	m.mustStoreWord(t, 0x1000, 0xFFF00113) // addi x2, x0, -1
	if err := m.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := m.RegRead(2); got != 0xFFFFFFFF {
		t.Errorf("x2 = %#x, want 0xFFFFFFFF", got)
	}
	if m.PC != 0x1004 {
		t.Errorf("pc = %#x, want 0x1004", m.PC)
	}
}

func TestScenario3_AddiAdd(t *testing.T) {
	m := newTestMachine(0x1000)
	// addi x1, x0, 5
	m.mustStoreWord(t, 0x1000, Word(encodeIType(baseOpImm, 1, 0x0, 0, 5)))
	// addi x2, x0, -3
	m.mustStoreWord(t, 0x1004, Word(encodeIType(baseOpImm, 2, 0x0, 0, 0xFFD)))
	// add x3, x1, x2
	m.mustStoreWord(t, 0x1008, Word(encodeRType(baseOp, 0x0, 3, 1, 2, 0x00)))

	for i := 0; i < 3; i++ {
		if err := m.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if got := int32(m.RegRead(3)); got != 2 {
		t.Errorf("x3 = %d, want 2", got)
	}
}

func TestScenario4_BEQTaken(t *testing.T) {
	m := newTestMachine(0x1000)
	m.mustStoreWord(t, 0x1000, 0x00000463) // beq x0, x0, 8
	if err := m.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if m.PC != 0x1008 {
		t.Errorf("pc = %#x, want 0x1008", m.PC)
	}
}

func TestScenario5_JALBackward(t *testing.T) {
	m := newTestMachine(0x1004)
	m.mustStoreWord(t, 0x1004, Word(encodeJType(1, 0xFFFFFFFC)))
	if err := m.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if m.PC != 0x1000 {
		t.Errorf("pc = %#x, want 0x1000", m.PC)
	}
	if got := m.RegRead(1); got != 0x1008 {
		t.Errorf("x1 = %#x, want 0x1008", got)
	}
}

func TestScenario6_StoreLoadSignExtend(t *testing.T) {
	m := newTestMachine(0x2000)
	m.RegWrite(1, 0xDEADBEEF)

	// sw x1, 0(x0)
	m.mustStoreWord(t, 0x2000, Word(encodeSType(baseStore, 0x2, 0, 1, 0)))
	// lw x2, 0(x0)
	m.mustStoreWord(t, 0x2004, Word(encodeIType(baseLoad, 2, 0x2, 0, 0)))
	// lb x3, 0(x0)
	m.mustStoreWord(t, 0x2008, Word(encodeIType(baseLoad, 3, 0x0, 0, 0)))

	for i := 0; i < 3; i++ {
		if err := m.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if got := m.RegRead(2); got != 0xDEADBEEF {
		t.Errorf("x2 = %#x, want 0xDEADBEEF", got)
	}
	if got := m.RegRead(3); got != 0xFFFFFFEF {
		t.Errorf("x3 = %#x, want 0xFFFFFFEF", got)
	}
}

func TestX0AlwaysZero(t *testing.T) {
	m := newTestMachine(0x1000)
	m.RegWrite(0, 0xFFFFFFFF)
	if got := m.RegRead(0); got != 0 {
		t.Errorf("x0 = %#x after write, want 0", got)
	}
}

func TestAddiZeroIsNop(t *testing.T) {
	m := newTestMachine(0x1000)
	m.RegWrite(1, 0x12345678)
	// addi x1, x1, 0
	m.mustStoreWord(t, 0x1000, Word(encodeIType(baseOpImm, 1, 0x0, 1, 0)))
	if err := m.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := m.RegRead(1); got != 0x12345678 {
		t.Errorf("x1 = %#x, want unchanged 0x12345678", got)
	}
}

func TestAUIPCZeroIsPC(t *testing.T) {
	m := newTestMachine(0x3000)
	// auipc x1, 0
	m.mustStoreWord(t, 0x3000, Word(encodeUType(baseAUIPC, 1, 0)))
	if err := m.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := m.RegRead(1); got != 0x3000 {
		t.Errorf("x1 = %#x, want 0x3000", got)
	}
}

func TestJALZeroIsInfiniteLoop(t *testing.T) {
	m := newTestMachine(0x4000)
	// jal x0, 0
	m.mustStoreWord(t, 0x4000, Word(encodeJType(0, 0)))
	before := m.PC
	if err := m.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if m.PC != before {
		t.Errorf("pc = %#x, want unchanged %#x", m.PC, before)
	}
}

func TestMisalignedJumpTraps(t *testing.T) {
	m := newTestMachine(0x1000)
	// jal x1, 2 (odd half-word offset -> misaligned target)
	m.mustStoreWord(t, 0x1000, Word(encodeJType(1, 2)))
	err := m.Step()
	if err == nil {
		t.Fatal("expected a trap for a misaligned jump target")
	}
	if m.PC != 0x1000 {
		t.Errorf("pc advanced on a trapped instruction: pc = %#x, want unchanged 0x1000", m.PC)
	}
}

func TestIllegalShamtTraps(t *testing.T) {
	m := newTestMachine(0x1000)
	// slli x1, x1, with shamt bit 5 set (bit 25 of the word)
	word := encodeIType(baseOpImm, 1, 0x1, 1, 0) | (1 << 25)
	m.mustStoreWord(t, 0x1000, Word(word))
	if err := m.Step(); err == nil {
		t.Fatal("expected illegal-instruction trap for shamt[5]=1 on RV32")
	}
}

func TestRunStopsAtCycleLimit(t *testing.T) {
	m := newTestMachine(0x5000)
	// An infinite self-loop (jal x0, 0); CycleLimit stops Run with an error
	// once that many instructions have executed.
	m.mustStoreWord(t, 0x5000, Word(encodeJType(0, 0)))
	m.CycleLimit = 5
	err := m.Run()
	if err == nil {
		t.Fatal("expected cycle-limit error from Run on an infinite loop")
	}
}
