package service

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rv32iss/emulator/debugger"
	"github.com/rv32iss/emulator/loader"
	"github.com/rv32iss/emulator/vm"
)

const (
	maxDisassemblyCount = 1000
	maxStackCount       = 1000
	maxStackOffset      = 100000
	stepsBeforeYield     = 1000
)

var serviceLog *log.Logger

func init() {
	if os.Getenv("RV32ISS_DEBUG") != "" {
		logPath := filepath.Join(os.TempDir(), "rv32iss-service-debug.log")
		f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600) // #nosec G304 -- fixed filename in temp dir
		if err != nil {
			serviceLog = log.New(os.Stderr, "SERVICE: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
		} else {
			serviceLog = log.New(f, "SERVICE: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
		}
	} else {
		serviceLog = log.New(io.Discard, "", 0)
	}
}

// DebuggerService provides a thread-safe facade over one machine and its
// debugger, shared by the TUI and the HTTP/WebSocket API.
//
// Lock ordering: the service's own mutex (s.mu) guards all field access.
// Debugger methods with their own internal locking (breakpoint/watchpoint
// managers) are always called with s.mu already held, never the reverse.
type DebuggerService struct {
	mu           sync.RWMutex
	vm           *vm.Machine
	debugger     *debugger.Debugger
	symbols      map[string]uint32
	sourceMap    map[uint32]string // address -> disassembly/source line
	outputWriter *EventEmittingWriter
}

// NewDebuggerService creates a new debugger service wrapping machine.
func NewDebuggerService(machine *vm.Machine) *DebuggerService {
	return &DebuggerService{
		vm:        machine,
		debugger:  debugger.NewDebugger(machine),
		symbols:   make(map[string]uint32),
		sourceMap: make(map[uint32]string),
	}
}

// GetVM returns the underlying machine (for testing).
func (s *DebuggerService) GetVM() *vm.Machine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vm
}

// SetOutputCallback attaches a callback invoked with every byte range the
// API layer's WebSocket broadcaster should forward to connected clients.
func (s *DebuggerService) SetOutputCallback(onOutput func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outputWriter == nil {
		s.outputWriter = NewEventEmittingWriter(&bytes.Buffer{}, onOutput)
	} else {
		s.outputWriter.SetOnOutput(onOutput)
	}
}

// LoadImage installs img into the machine's memory, sets PC to img.Entry,
// and initializes the stack pointer at the top of the default stack
// segment.
func (s *DebuggerService) LoadImage(img *loader.Image, symbols map[string]uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mem, ok := s.vm.Mem.(*vm.Memory)
	if !ok {
		return fmt.Errorf("service: machine memory is not a *vm.Memory")
	}

	if err := img.InstallInto(mem); err != nil {
		return err
	}

	s.vm.PC = img.Entry
	s.vm.EntryPoint = img.Entry
	s.vm.InitializeStack(loader.DefaultStackTop(mem))

	s.symbols = make(map[string]uint32, len(symbols))
	for name, addr := range symbols {
		s.symbols[name] = addr
	}
	s.sourceMap = make(map[uint32]string)

	s.debugger.LoadSymbols(s.symbols)
	s.debugger.LoadSourceMap(s.sourceMap)

	s.vm.State = vm.StateRunning
	s.debugger.Running = false

	return nil
}

// GetRegisterState returns a snapshot of the register file (thread-safe).
func (s *DebuggerService) GetRegisterState() RegisterState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var regs [32]uint32
	for i := uint32(0); i < vm.GeneralRegisterCount; i++ {
		regs[i] = uint32(s.vm.RegRead(i))
	}

	return RegisterState{
		Registers: regs,
		PC:        s.vm.PC,
		Instret:   s.vm.Instret,
	}
}

// Step executes a single instruction.
func (s *DebuggerService) Step() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vm.Step()
}

// Continue marks the machine for free-running execution; the caller (TUI
// or API handler) drives RunUntilHalt in its own goroutine.
func (s *DebuggerService) Continue() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.debugger.Running = true
	s.debugger.StepMode = debugger.StepNone
	s.vm.State = vm.StateRunning

	return nil
}

// Pause stops a free-running machine.
func (s *DebuggerService) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debugger.Running = false
	if s.vm.State == vm.StateRunning {
		s.vm.State = vm.StateHalted
	}
}

// Reset performs a complete reset: registers, memory, loaded program
// metadata, breakpoints and watchpoints are all cleared.
func (s *DebuggerService) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vm.Reset()

	s.symbols = make(map[string]uint32)
	s.sourceMap = make(map[uint32]string)

	s.debugger.Breakpoints.Clear()
	s.debugger.Watchpoints.Clear()
	s.debugger.Running = false
	s.vm.State = vm.StateHalted

	return nil
}

// ResetToEntryPoint rewinds registers and PC to the loaded image's entry
// point without touching memory contents, the way a debugger's "restart"
// command does.
func (s *DebuggerService) ResetToEntryPoint() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vm.ResetRegisters()
	s.debugger.Running = false

	return nil
}

// Snapshot captures the machine's entire architectural state — the
// register file, PC, retired-instruction count, and every memory
// segment's bytes — independent of anything still running against the
// live machine.
func (s *DebuggerService) Snapshot() (*MachineSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mem, ok := s.vm.Mem.(*vm.Memory)
	if !ok {
		return nil, fmt.Errorf("service: machine memory is not a *vm.Memory")
	}

	snap := &MachineSnapshot{
		PC:      s.vm.PC,
		Instret: s.vm.Instret,
	}
	for i := uint32(0); i < 32; i++ {
		snap.Registers[i] = uint32(s.vm.RegRead(i))
	}
	for _, seg := range mem.Segments {
		data := make([]byte, len(seg.Data))
		copy(data, seg.Data)
		snap.Segments = append(snap.Segments, MemorySegmentSnapshot{
			Name: seg.Name, Start: seg.Start, Data: data,
		})
	}
	return snap, nil
}

// Restore installs a previously captured snapshot back into the machine:
// registers, PC, retired-instruction count, and every segment named in the
// snapshot. Segments not present in the current memory layout are skipped.
func (s *DebuggerService) Restore(snap *MachineSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mem, ok := s.vm.Mem.(*vm.Memory)
	if !ok {
		return fmt.Errorf("service: machine memory is not a *vm.Memory")
	}

	byName := make(map[string]*vm.Segment, len(mem.Segments))
	for _, seg := range mem.Segments {
		byName[seg.Name] = seg
	}
	for _, saved := range snap.Segments {
		seg, ok := byName[saved.Name]
		if !ok || len(seg.Data) != len(saved.Data) {
			continue
		}
		copy(seg.Data, saved.Data)
	}

	for i := uint32(1); i < 32; i++ {
		s.vm.RegWrite(i, uint64(snap.Registers[i]))
	}
	s.vm.PC = snap.PC
	s.vm.Instret = snap.Instret
	s.vm.State = vm.StateRunning
	s.debugger.Running = false

	return nil
}

// GetExecutionState returns the current execution state.
func (s *DebuggerService) GetExecutionState() ExecutionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return VMStateToExecution(s.vm.State)
}

// AddBreakpoint adds a breakpoint at address.
func (s *DebuggerService) AddBreakpoint(address uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if address%vm.InstructionSize != 0 {
		return fmt.Errorf("invalid breakpoint address: 0x%X is not instruction-aligned", address)
	}

	s.debugger.Breakpoints.AddBreakpoint(address, false, "")
	return nil
}

// RemoveBreakpoint removes the breakpoint at address.
func (s *DebuggerService) RemoveBreakpoint(address uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debugger.Breakpoints.DeleteBreakpointAt(address)
}

// GetBreakpoints returns all breakpoints.
func (s *DebuggerService) GetBreakpoints() []BreakpointInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bps := s.debugger.Breakpoints.GetAllBreakpoints()
	result := make([]BreakpointInfo, len(bps))
	for i, bp := range bps {
		result[i] = BreakpointInfo{
			Address:   bp.Address,
			Enabled:   bp.Enabled,
			Condition: bp.Condition,
		}
	}
	return result
}

// ClearAllBreakpoints removes all breakpoints.
func (s *DebuggerService) ClearAllBreakpoints() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debugger.Breakpoints.Clear()
}

// GetMemory returns size bytes of memory starting at address. Unreadable
// bytes (beyond a mapped segment's permissions) are returned as zero so a
// memory view can render partial results at segment boundaries.
func (s *DebuggerService) GetMemory(address uint32, size uint32) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := make([]byte, size)
	for i := uint32(0); i < size; i++ {
		raw, err := s.vm.Mem.Read(address+i, 1)
		if err != nil {
			data[i] = 0
			continue
		}
		data[i] = byte(raw)
	}
	return data, nil
}

// GetSourceMap returns a copy of the address-to-source map. LoadImage and
// Reset replace it with an empty map.
func (s *DebuggerService) GetSourceMap() map[uint32]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[uint32]string, len(s.sourceMap))
	for addr, line := range s.sourceMap {
		result[addr] = line
	}
	return result
}

// GetSymbols returns all known symbols.
func (s *DebuggerService) GetSymbols() map[string]uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbols := make(map[string]uint32, len(s.symbols))
	for k, v := range s.symbols {
		symbols[k] = v
	}
	return symbols
}

// GetSymbolForAddress resolves an address to a symbol name, or "" if none.
func (s *DebuggerService) GetSymbolForAddress(addr uint32) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getSymbolForAddressUnsafe(addr)
}

func (s *DebuggerService) getSymbolForAddressUnsafe(addr uint32) string {
	for name, symbolAddr := range s.symbols {
		if symbolAddr == addr {
			return name
		}
	}
	return ""
}

// RunUntilHalt runs the machine until it stops being in StateRunning (via a
// breakpoint, Pause, Halt, or a Trap). If Running is already false when
// called (a race with Pause before this goroutine started), it returns
// immediately.
func (s *DebuggerService) RunUntilHalt() error {
	serviceLog.Println("RunUntilHalt() called")
	s.mu.Lock()
	if !s.debugger.Running {
		s.mu.Unlock()
		return nil
	}
	s.vm.State = vm.StateRunning
	s.mu.Unlock()

	stepCount := 0

	for {
		s.mu.Lock()
		if !s.debugger.Running || s.vm.State != vm.StateRunning {
			s.mu.Unlock()
			break
		}

		if shouldBreak, reason := s.debugger.ShouldBreak(); shouldBreak {
			serviceLog.Printf("stopped: %s", reason)
			s.debugger.Running = false
			s.vm.State = vm.StateBreakpoint
			s.mu.Unlock()
			break
		}

		err := s.vm.Step()
		halted := s.vm.State != vm.StateRunning
		s.mu.Unlock()

		if err != nil {
			s.mu.Lock()
			s.debugger.Running = false
			s.mu.Unlock()
			return err
		}
		if halted {
			s.mu.Lock()
			s.debugger.Running = false
			s.mu.Unlock()
			break
		}

		stepCount++
		if stepCount >= stepsBeforeYield {
			stepCount = 0
			time.Sleep(time.Millisecond)
		}
	}

	serviceLog.Println("RunUntilHalt() completed")
	return nil
}

// IsRunning reports whether execution is in progress.
func (s *DebuggerService) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.debugger.Running
}

// SetRunning sets the running flag synchronously, before an async caller
// launches the goroutine that will call RunUntilHalt.
func (s *DebuggerService) SetRunning(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debugger.Running = running
	if running {
		s.vm.State = vm.StateRunning
	} else if s.vm.State == vm.StateRunning {
		s.vm.State = vm.StateHalted
	}
}

// GetOutput returns captured program output and clears the buffer.
func (s *DebuggerService) GetOutput() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outputWriter == nil {
		return ""
	}
	return s.outputWriter.GetBufferAndClear()
}

// GetDisassembly returns count decoded instructions starting at startAddr.
// startAddr must be instruction-aligned; count must be in (0, maxDisassemblyCount].
// A memory read failure truncates the result rather than failing it.
func (s *DebuggerService) GetDisassembly(startAddr uint32, count int) []DisassemblyLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if count <= 0 || count > maxDisassemblyCount {
		return []DisassemblyLine{}
	}
	if startAddr%vm.InstructionSize != 0 {
		return []DisassemblyLine{}
	}

	lines := make([]DisassemblyLine, 0, count)
	addr := startAddr
	if addr < vm.CodeSegmentStart {
		addr = vm.CodeSegmentStart
	}

	for i := 0; i < count; i++ {
		raw, err := s.vm.Mem.Read(addr, 4)
		if err != nil {
			break
		}
		word := vm.Word(raw)
		op, _ := vm.Decode(word)

		lines = append(lines, DisassemblyLine{
			Address: addr,
			Opcode:  uint32(word),
			Symbol:  s.getSymbolForAddressUnsafe(addr),
		})
		_ = op // mnemonic is op.String(); kept decoded above for future use

		addr += vm.InstructionSize
	}

	return lines
}

// GetStack returns count stack entries starting offset words from sp.
// offset is bounded to [-maxStackOffset, maxStackOffset] to rule out
// address-arithmetic wraparound.
func (s *DebuggerService) GetStack(offset int, count int) []StackEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if count <= 0 || count > maxStackCount {
		return []StackEntry{}
	}
	if offset < -maxStackOffset || offset > maxStackOffset {
		return []StackEntry{}
	}

	sp := int64(uint32(s.vm.RegRead(vm.RegSP)))
	start := sp + int64(offset)*4
	if start < 0 || start > 0xFFFFFFFF {
		return []StackEntry{}
	}

	entries := make([]StackEntry, 0, count)
	for i := 0; i < count; i++ {
		next := start + int64(i)*4
		if next < 0 || next > 0xFFFFFFFF {
			break
		}
		addr := uint32(next)

		raw, err := s.vm.Mem.Read(addr, 4)
		if err != nil {
			break
		}
		value := uint32(raw)

		entries = append(entries, StackEntry{
			Address: addr,
			Value:   value,
			Symbol:  s.getSymbolForAddressUnsafe(value),
		})
	}

	return entries
}

// StepOver executes one instruction, stepping over calls rather than into them.
func (s *DebuggerService) StepOver() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.debugger.SetStepOver()

	for s.debugger.Running {
		if s.debugger.StepMode != debugger.StepSingle {
			if shouldBreak, _ := s.debugger.ShouldBreak(); shouldBreak {
				s.debugger.Running = false
				break
			}
		}

		if err := s.vm.Step(); err != nil {
			s.debugger.Running = false
			return err
		}

		if s.debugger.StepMode == debugger.StepSingle {
			if shouldBreak, _ := s.debugger.ShouldBreak(); shouldBreak {
				s.debugger.Running = false
				break
			}
		}
	}

	return nil
}

// StepOut puts the debugger in StepOut mode, which runs until a breakpoint,
// a watchpoint or a halt; the return from the current function is not detected.
func (s *DebuggerService) StepOut() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debugger.SetStepOut()
	return nil
}

// AddWatchpoint adds a memory watchpoint at address.
func (s *DebuggerService) AddWatchpoint(address uint32, watchType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var wpType debugger.WatchType
	switch watchType {
	case "read":
		wpType = debugger.WatchRead
	case "write":
		wpType = debugger.WatchWrite
	case "readwrite":
		wpType = debugger.WatchReadWrite
	default:
		return fmt.Errorf("invalid watchpoint type: %s", watchType)
	}

	expression := fmt.Sprintf("[0x%08X]", address)
	s.debugger.Watchpoints.AddWatchpoint(wpType, expression, address, false, 0)

	return nil
}

// RemoveWatchpoint removes a watchpoint by ID.
func (s *DebuggerService) RemoveWatchpoint(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debugger.Watchpoints.DeleteWatchpoint(id)
}

// GetWatchpoints returns all watchpoints.
func (s *DebuggerService) GetWatchpoints() []WatchpointInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wps := s.debugger.Watchpoints.GetAllWatchpoints()
	result := make([]WatchpointInfo, len(wps))
	for i, wp := range wps {
		var wpType string
		switch wp.Type {
		case debugger.WatchRead:
			wpType = "read"
		case debugger.WatchWrite:
			wpType = "write"
		case debugger.WatchReadWrite:
			wpType = "readwrite"
		}

		result[i] = WatchpointInfo{
			ID:      wp.ID,
			Address: wp.Address,
			Type:    wpType,
			Enabled: wp.Enabled,
		}
	}
	return result
}

// ExecuteCommand runs a debugger command line and returns its output.
func (s *DebuggerService) ExecuteCommand(command string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.debugger.ExecuteCommand(command)
	output := s.debugger.GetOutput()

	return output, err
}

// EvaluateExpression evaluates a debugger expression against current state.
func (s *DebuggerService) EvaluateExpression(expr string) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debugger.Evaluator.EvaluateExpression(expr, s.vm, s.symbols)
}

// EnableExecutionTrace starts recording retired instructions.
func (s *DebuggerService) EnableExecutionTrace() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vm.Trace == nil {
		s.vm.Trace = vm.NewExecutionTrace(nil, 0)
	}
	return nil
}

// DisableExecutionTrace stops recording retired instructions.
func (s *DebuggerService) DisableExecutionTrace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vm.Trace = nil
}

// GetExecutionTraceData returns recorded trace entries.
func (s *DebuggerService) GetExecutionTraceData() ([]vm.TraceEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.vm.Trace == nil {
		return []vm.TraceEntry{}, nil
	}
	return s.vm.Trace.Entries(), nil
}

// EnableStatistics starts tallying per-opcode execution counts.
func (s *DebuggerService) EnableStatistics() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vm.Stats == nil {
		s.vm.Stats = vm.NewPerformanceStatistics()
	}
	return nil
}

// DisableStatistics stops tallying execution counts.
func (s *DebuggerService) DisableStatistics() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vm.Stats = nil
}

// GetStatistics returns the current performance statistics.
func (s *DebuggerService) GetStatistics() (*vm.PerformanceStatistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.vm.Stats == nil {
		return nil, fmt.Errorf("statistics not enabled")
	}
	return s.vm.Stats, nil
}
