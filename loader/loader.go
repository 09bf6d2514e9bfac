// Package loader turns a program image — a flat binary blob or a 32-bit ELF
// — into an Image ready to install into a vm.Memory. There is no textual
// assembler in this system, so a loader consumes bytes that were already
// assembled (by the encoder package, by an external RV32I toolchain, or
// read off disk) rather than walking a parsed assembly AST.
package loader

import (
	"debug/elf"
	"fmt"
	"io"

	"github.com/rv32iss/emulator/vm"
)

// Segment is one contiguous, independently-permissioned chunk of a loaded
// program image, destined for its own vm.Memory segment.
type Segment struct {
	Name        string
	Addr        uint32
	Data        []byte
	Permissions vm.Permission
}

// Image is a fully-resolved program ready to be installed into a Memory:
// one or more segments plus the address execution should begin at.
type Image struct {
	Segments []Segment
	Entry    uint32
}

// LoadFlat treats data as a single raw instruction/data blob placed at base,
// readable, writable and executable (the loader has no way to tell code
// from data in a flat image, so it grants the union of both and lets the
// interpreter's own access control — if any segment further down narrows
// it — take over after install). The entry point is base itself.
func LoadFlat(data []byte, base uint32) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("loader: flat image is empty")
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Image{
		Segments: []Segment{{
			Name:        "flat",
			Addr:        base,
			Data:        buf,
			Permissions: vm.PermRead | vm.PermWrite | vm.PermExecute,
		}},
		Entry: base,
	}, nil
}

// LoadELF32 parses a little-endian 32-bit ELF via the standard library's
// debug/elf and returns an Image with one Segment per PT_LOAD program
// header, copied to its physical address, plus the ELF entry point.
func LoadELF32(r io.ReaderAt) (*Image, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("loader: parse ELF: %w", err)
	}
	defer f.Close()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("loader: not a 32-bit ELF (class %s)", f.Class)
	}
	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("loader: ELF machine %s is not RISC-V", f.Machine)
	}

	img := &Image{Entry: uint32(f.Entry)}
	for i, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		data := make([]byte, prog.Memsz)
		n, err := prog.ReadAt(data[:prog.Filesz], 0)
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("loader: read PT_LOAD segment %d: %w", i, err)
		}
		if uint64(n) != prog.Filesz {
			return nil, fmt.Errorf("loader: short read on PT_LOAD segment %d: got %d want %d", i, n, prog.Filesz)
		}
		img.Segments = append(img.Segments, Segment{
			Name:        fmt.Sprintf("load%d", i),
			Addr:        uint32(prog.Paddr),
			Data:        data,
			Permissions: elfPermissions(prog.Flags),
		})
	}
	if len(img.Segments) == 0 {
		return nil, fmt.Errorf("loader: ELF has no PT_LOAD segments")
	}
	return img, nil
}

func elfPermissions(flags elf.ProgFlag) vm.Permission {
	var p vm.Permission
	if flags&elf.PF_R != 0 {
		p |= vm.PermRead
	}
	if flags&elf.PF_W != 0 {
		p |= vm.PermWrite
	}
	if flags&elf.PF_X != 0 {
		p |= vm.PermExecute
	}
	return p
}

// InstallInto copies img into mem, one vm.Memory segment per Image segment.
// If the entry point falls below vm.CodeSegmentStart (e.g. an ELF or flat
// image linked at a low address), a dedicated low-memory segment is added
// first to cover it, for programs built around ".org 0".
func (img *Image) InstallInto(mem *vm.Memory) error {
	if img.Entry < vm.CodeSegmentStart {
		mem.AddSegment("low-memory", 0, vm.CodeSegmentStart, vm.PermRead|vm.PermWrite|vm.PermExecute)
	}
	for _, seg := range img.Segments {
		if !img.fitsExistingSegment(mem, seg) {
			mem.AddSegment(seg.Name, seg.Addr, segmentSpan(seg), seg.Permissions)
		}
		if err := mem.LoadBytes(seg.Addr, seg.Data); err != nil {
			return fmt.Errorf("loader: install segment %q: %w", seg.Name, err)
		}
	}
	return nil
}

// fitsExistingSegment reports whether mem already has a mapped region
// covering seg in full, so InstallInto doesn't add a redundant overlapping
// segment for an image placed inside the default layout.
func (img *Image) fitsExistingSegment(mem *vm.Memory, seg Segment) bool {
	end := seg.Addr + uint32(len(seg.Data))
	for _, existing := range mem.Segments {
		if seg.Addr >= existing.Start && end <= existing.Start+existing.Size {
			return true
		}
	}
	return false
}

func segmentSpan(seg Segment) uint32 {
	n := uint32(len(seg.Data))
	if n == 0 {
		return 4
	}
	return n
}

// DefaultStackTop returns the stack-top address a driver should pass to
// Machine.InitializeStack when the memory layout is the default one built
// by vm.NewMemory: the highest address of the stack segment.
func DefaultStackTop(mem *vm.Memory) uint32 {
	for _, seg := range mem.Segments {
		if seg.Name == "stack" {
			return seg.Start + seg.Size
		}
	}
	if len(mem.Segments) == 0 {
		return 0
	}
	last := mem.Segments[len(mem.Segments)-1]
	return last.Start + last.Size
}
