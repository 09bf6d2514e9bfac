package service

import (
	"testing"

	"github.com/rv32iss/emulator/loader"
	"github.com/rv32iss/emulator/vm"
)

func newTestService(t *testing.T) *DebuggerService {
	t.Helper()
	mem := vm.NewMemory()
	machine := vm.New(mem, vm.CodeSegmentStart, vm.XLen32)
	return NewDebuggerService(machine)
}

// addi x1, x0, 1 ; addi x1, x1, 1 ; addi x1, x1, 1
func countToThreeImage() []byte {
	return []byte{
		0x93, 0x00, 0x10, 0x00,
		0x93, 0x80, 0x10, 0x00,
		0x93, 0x80, 0x10, 0x00,
	}
}

func TestDebuggerService_LoadAndStep(t *testing.T) {
	s := newTestService(t)
	img, err := loader.LoadFlat(countToThreeImage(), vm.CodeSegmentStart)
	if err != nil {
		t.Fatalf("LoadFlat: %v", err)
	}
	if err := s.LoadImage(img, map[string]uint32{"_start": img.Entry}); err != nil {
		t.Fatalf("LoadImage: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := s.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}

	regs := s.GetRegisterState()
	if regs.Registers[1] != 3 {
		t.Errorf("x1 = %d, want 3", regs.Registers[1])
	}
	if regs.Instret != 3 {
		t.Errorf("Instret = %d, want 3", regs.Instret)
	}
	if got := s.GetSymbols()["_start"]; got != img.Entry {
		t.Errorf("symbol _start = %#x, want %#x", got, img.Entry)
	}
}

func TestDebuggerService_SnapshotRestore(t *testing.T) {
	s := newTestService(t)
	img, err := loader.LoadFlat(countToThreeImage(), vm.CodeSegmentStart)
	if err != nil {
		t.Fatalf("LoadFlat: %v", err)
	}
	if err := s.LoadImage(img, nil); err != nil {
		t.Fatalf("LoadImage: %v", err)
	}

	if err := s.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Registers[1] != 1 {
		t.Fatalf("snapshot x1 = %d, want 1", snap.Registers[1])
	}

	if err := s.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if err := s.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if regs := s.GetRegisterState(); regs.Registers[1] != 3 {
		t.Fatalf("x1 after three steps = %d, want 3", regs.Registers[1])
	}

	if err := s.Restore(snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	regs := s.GetRegisterState()
	if regs.Registers[1] != 1 {
		t.Errorf("x1 after restore = %d, want 1", regs.Registers[1])
	}
	if regs.PC != snap.PC {
		t.Errorf("PC after restore = %#x, want %#x", regs.PC, snap.PC)
	}
	if regs.Instret != snap.Instret {
		t.Errorf("Instret after restore = %d, want %d", regs.Instret, snap.Instret)
	}
}

func TestDebuggerService_BreakpointLifecycle(t *testing.T) {
	s := newTestService(t)
	img, err := loader.LoadFlat(countToThreeImage(), vm.CodeSegmentStart)
	if err != nil {
		t.Fatalf("LoadFlat: %v", err)
	}
	if err := s.LoadImage(img, nil); err != nil {
		t.Fatalf("LoadImage: %v", err)
	}

	target := img.Entry + 4
	if err := s.AddBreakpoint(target); err != nil {
		t.Fatalf("AddBreakpoint: %v", err)
	}
	bps := s.GetBreakpoints()
	if len(bps) != 1 || bps[0].Address != target {
		t.Fatalf("GetBreakpoints = %+v, want one breakpoint at %#x", bps, target)
	}

	if err := s.RemoveBreakpoint(target); err != nil {
		t.Fatalf("RemoveBreakpoint: %v", err)
	}
	if bps := s.GetBreakpoints(); len(bps) != 0 {
		t.Errorf("GetBreakpoints after remove = %+v, want none", bps)
	}
}
