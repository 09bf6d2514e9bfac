package api

import (
	"time"

	"github.com/rv32iss/emulator/service"
)

// SessionCreateRequest represents a request to create a new session. The
// memory layout is fixed (vm.NewMemory's four segments), so there is
// nothing to configure beyond identifying the request.
type SessionCreateRequest struct{}

// SessionCreateResponse represents the response from creating a session
type SessionCreateResponse struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionStatusResponse represents the current status of a session
type SessionStatusResponse struct {
	SessionID string `json:"sessionId"`
	State     string `json:"state"`
	PC        uint32 `json:"pc"`
	Instret   uint64 `json:"instret"`
}

// LoadProgramRequest represents a request to install a program image. Image
// is the raw bytes of a flat binary or a 32-bit ELF; Format selects how
// they're interpreted ("flat", "elf", or "" to sniff the ELF magic number).
type LoadProgramRequest struct {
	Image  []byte `json:"image"`
	Format string `json:"format,omitempty"`
}

// LoadProgramResponse represents the response from loading a program
type LoadProgramResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error,omitempty"`
	Entry   uint32            `json:"entry,omitempty"`
	Symbols map[string]uint32 `json:"symbols,omitempty"`
}

// RegistersResponse represents the current register file state
type RegistersResponse struct {
	Registers [32]uint32 `json:"registers"`
	PC        uint32     `json:"pc"`
	Instret   uint64     `json:"instret"`
}

// MemoryRequest represents a request for memory data
type MemoryRequest struct {
	Address uint32 `json:"address"`
	Length  uint32 `json:"length"`
}

// MemoryResponse represents memory data
type MemoryResponse struct {
	Address uint32 `json:"address"`
	Data    []byte `json:"data"`
	Length  uint32 `json:"length"`
}

// DisassemblyRequest represents a request for disassembly
type DisassemblyRequest struct {
	Address uint32 `json:"address"`
	Count   uint32 `json:"count"`
}

// DisassemblyResponse represents a run of decoded instructions
type DisassemblyResponse struct {
	Instructions []InstructionInfo `json:"instructions"`
}

// InstructionInfo represents a single decoded instruction
type InstructionInfo struct {
	Address uint32 `json:"address"`
	Opcode  uint32 `json:"opcode"`
	Symbol  string `json:"symbol,omitempty"`
}

// BreakpointRequest represents a request to add/remove a breakpoint
type BreakpointRequest struct {
	Address uint32 `json:"address"`
}

// BreakpointsResponse represents a list of breakpoints
type BreakpointsResponse struct {
	Breakpoints []service.BreakpointInfo `json:"breakpoints"`
}

// WatchpointRequest represents a request to add a watchpoint
type WatchpointRequest struct {
	Address uint32 `json:"address"`
	Type    string `json:"type,omitempty"` // "read", "write", "readwrite"
}

// WatchpointResponse represents a single created watchpoint
type WatchpointResponse struct {
	ID      int    `json:"id"`
	Address uint32 `json:"address"`
	Type    string `json:"type"`
}

// WatchpointsResponse represents a list of watchpoints
type WatchpointsResponse struct {
	Watchpoints []service.WatchpointInfo `json:"watchpoints"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// SuccessResponse represents a simple success response
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Event represents a WebSocket event envelope
type Event struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// StateEvent represents a state change event
type StateEvent struct {
	State     string     `json:"state"`
	PC        uint32     `json:"pc"`
	Registers [32]uint32 `json:"registers"`
	Instret   uint64     `json:"instret"`
}

// OutputEvent represents console output
type OutputEvent struct {
	Stream  string `json:"stream"` // "stdout" or "stderr"
	Content string `json:"content"`
}

// ExecutionEvent represents execution events like breakpoints
type ExecutionEvent struct {
	Event   string `json:"event"` // "breakpoint_hit", "error", "halted"
	Address uint32 `json:"address,omitempty"`
	Symbol  string `json:"symbol,omitempty"`
	Message string `json:"message,omitempty"`
}

// TraceEntryInfo mirrors vm.TraceEntry for JSON transport
type TraceEntryInfo struct {
	Sequence uint64 `json:"sequence"`
	PC       uint32 `json:"pc"`
	Opcode   uint32 `json:"opcode"`
	Op       string `json:"op"`
}

// TraceDataResponse represents a batch of execution trace entries
type TraceDataResponse struct {
	Entries []TraceEntryInfo `json:"entries"`
	Count   int              `json:"count"`
}

// StatisticsResponse mirrors vm.PerformanceStatistics for JSON transport
type StatisticsResponse struct {
	TotalExecuted uint64           `json:"totalExecuted"`
	LoadCount     uint64           `json:"loadCount"`
	StoreCount    uint64           `json:"storeCount"`
	BranchCount   uint64           `json:"branchCount"`
	JumpCount     uint64           `json:"jumpCount"`
	OpCounts      map[string]uint64 `json:"opCounts"`
}

// ConfigResponse mirrors config.Config for the API surface
type ConfigResponse struct {
	Execution  ExecutionConfig  `json:"execution"`
	Debugger   DebuggerConfig   `json:"debugger"`
	Display    DisplayConfig    `json:"display"`
	Trace      TraceConfig      `json:"trace"`
	Statistics StatisticsConfig `json:"statistics"`
}

// ExecutionConfig mirrors config.Config.Execution
type ExecutionConfig struct {
	MaxCycles      uint64 `json:"maxCycles"`
	StackSize      uint   `json:"stackSize"`
	DefaultEntry   string `json:"defaultEntry"`
	EnableTrace    bool   `json:"enableTrace"`
	EnableMemTrace bool   `json:"enableMemTrace"`
	EnableStats    bool   `json:"enableStats"`
}

// DebuggerConfig mirrors config.Config.Debugger
type DebuggerConfig struct {
	HistorySize    int  `json:"historySize"`
	AutoSaveBreaks bool `json:"autoSaveBreaks"`
	ShowSource     bool `json:"showSource"`
	ShowRegisters  bool `json:"showRegisters"`
}

// DisplayConfig mirrors config.Config.Display
type DisplayConfig struct {
	ColorOutput   bool   `json:"colorOutput"`
	BytesPerLine  int    `json:"bytesPerLine"`
	DisasmContext int    `json:"disasmContext"`
	SourceContext int    `json:"sourceContext"`
	NumberFormat  string `json:"numberFormat"`
}

// TraceConfig mirrors config.Config.Trace
type TraceConfig struct {
	OutputFile    string `json:"outputFile"`
	FilterRegs    string `json:"filterRegs"`
	IncludeTiming bool   `json:"includeTiming"`
	MaxEntries    int    `json:"maxEntries"`
}

// StatisticsConfig mirrors config.Config.Statistics
type StatisticsConfig struct {
	OutputFile     string `json:"outputFile"`
	Format         string `json:"format"`
	CollectHotPath bool   `json:"collectHotPath"`
	TrackCalls     bool   `json:"trackCalls"`
}

// ExampleInfo describes one image file available under the examples directory
type ExampleInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// ExamplesResponse lists available example images
type ExamplesResponse struct {
	Examples []ExampleInfo `json:"examples"`
	Count    int           `json:"count"`
}

// ExampleContentResponse returns the raw bytes of an example image, base64
// encoded by the standard JSON encoder since Content is a []byte.
type ExampleContentResponse struct {
	Name    string `json:"name"`
	Content []byte `json:"content"`
	Size    int64  `json:"size"`
}

// ToRegisterResponse converts service.RegisterState to its API response
func ToRegisterResponse(regs *service.RegisterState) *RegistersResponse {
	return &RegistersResponse{
		Registers: regs.Registers,
		PC:        regs.PC,
		Instret:   regs.Instret,
	}
}

// ToInstructionInfo converts service.DisassemblyLine to its API response
func ToInstructionInfo(line *service.DisassemblyLine) InstructionInfo {
	return InstructionInfo{
		Address: line.Address,
		Opcode:  line.Opcode,
		Symbol:  line.Symbol,
	}
}
