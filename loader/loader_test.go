package loader_test

import (
	"testing"

	"github.com/rv32iss/emulator/encoder"
	"github.com/rv32iss/emulator/loader"
	"github.com/rv32iss/emulator/vm"
)

func wordsToBytes(words []uint32) []byte {
	out := make([]byte, 0, len(words)*4)
	for _, w := range words {
		out = append(out, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}
	return out
}

func TestLoadFlatInstallsAtBase(t *testing.T) {
	words := []uint32{
		encoder.ADDI(1, 0, 5),
		encoder.ADDI(2, 0, 7),
		encoder.ADD(3, 1, 2),
	}
	img, err := loader.LoadFlat(wordsToBytes(words), vm.CodeSegmentStart)
	if err != nil {
		t.Fatalf("LoadFlat: %v", err)
	}
	if img.Entry != vm.CodeSegmentStart {
		t.Fatalf("Entry = %#x, want %#x", img.Entry, vm.CodeSegmentStart)
	}

	mem := vm.NewMemory()
	if err := img.InstallInto(mem); err != nil {
		t.Fatalf("InstallInto: %v", err)
	}

	m := vm.New(mem, img.Entry, vm.XLen32)
	for i := 0; i < 3; i++ {
		if err := m.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if got := m.RegRead(3); got != 12 {
		t.Errorf("x3 = %d, want 12", got)
	}
}

func TestLoadFlatRejectsEmpty(t *testing.T) {
	if _, err := loader.LoadFlat(nil, 0); err == nil {
		t.Fatal("expected an error for an empty image")
	}
}

func TestLoadFlatBelowCodeSegmentGetsLowMemory(t *testing.T) {
	words := []uint32{encoder.ADDI(1, 0, 1)}
	img, err := loader.LoadFlat(wordsToBytes(words), 0)
	if err != nil {
		t.Fatalf("LoadFlat: %v", err)
	}
	mem := vm.NewMemory()
	if err := img.InstallInto(mem); err != nil {
		t.Fatalf("InstallInto: %v", err)
	}
	if err := mem.CheckExecutePermission(0); err != nil {
		t.Fatalf("expected address 0 to be executable after low-memory install: %v", err)
	}
}

func TestDefaultStackTopMatchesStackSegment(t *testing.T) {
	mem := vm.NewMemory()
	top := loader.DefaultStackTop(mem)
	if top != vm.StackSegmentStart+vm.StackSegmentSize {
		t.Errorf("DefaultStackTop() = %#x, want %#x", top, vm.StackSegmentStart+vm.StackSegmentSize)
	}
}
