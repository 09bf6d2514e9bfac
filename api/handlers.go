package api

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rv32iss/emulator/loader"
	"github.com/rv32iss/emulator/service"
	"github.com/rv32iss/emulator/vm"
)

// handleCreateSession handles POST /api/v1/session
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionCreateRequest
	_ = readJSON(r, &req) // no required fields; an empty or absent body is fine

	session, err := s.sessions.CreateSession(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to create session: %v", err))
		return
	}

	response := SessionCreateResponse{
		SessionID: session.ID,
		CreatedAt: session.CreatedAt,
	}

	writeJSON(w, http.StatusCreated, response)
}

// handleListSessions handles GET /api/v1/session
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids := s.sessions.ListSessions()

	response := map[string]interface{}{
		"sessions": ids,
		"count":    len(ids),
	}

	writeJSON(w, http.StatusOK, response)
}

// handleGetSessionStatus handles GET /api/v1/session/{id}
func (s *Server) handleGetSessionStatus(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	regs := session.Service.GetRegisterState()
	state := session.Service.GetExecutionState()

	response := SessionStatusResponse{
		SessionID: sessionID,
		State:     string(state),
		PC:        regs.PC,
		Instret:   regs.Instret,
	}

	writeJSON(w, http.StatusOK, response)
}

// handleDestroySession handles DELETE /api/v1/session/{id}
func (s *Server) handleDestroySession(w http.ResponseWriter, r *http.Request, sessionID string) {
	err := s.sessions.DestroySession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Session destroyed",
	})
}

// handleLoadProgram handles POST /api/v1/session/{id}/load
func (s *Server) handleLoadProgram(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req LoadProgramRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	img, err := decodeImage(req.Image, req.Format)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, LoadProgramResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	if err := session.Service.LoadImage(img, map[string]uint32{}); err != nil {
		writeJSON(w, http.StatusBadRequest, LoadProgramResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	response := LoadProgramResponse{
		Success: true,
		Entry:   img.Entry,
		Symbols: session.Service.GetSymbols(),
	}

	writeJSON(w, http.StatusOK, response)
}

// decodeImage builds a loader.Image from raw bytes, selecting ELF32 or flat
// parsing by explicit format or by sniffing the ELF magic number.
func decodeImage(data []byte, format string) (*loader.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image is empty")
	}

	looksLikeELF := len(data) >= 4 && data[0] == 0x7f && data[1] == 'E' && data[2] == 'L' && data[3] == 'F'

	switch format {
	case "elf":
		return loader.LoadELF32(bytes.NewReader(data))
	case "flat":
		return loader.LoadFlat(data, vm.CodeSegmentStart)
	case "":
		if looksLikeELF {
			return loader.LoadELF32(bytes.NewReader(data))
		}
		return loader.LoadFlat(data, vm.CodeSegmentStart)
	default:
		return nil, fmt.Errorf("unknown image format %q (want \"flat\" or \"elf\")", format)
	}
}

// handleRun handles POST /api/v1/session/{id}/run
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	// Set running state synchronously before launching the goroutine so the
	// caller can immediately observe the state change.
	session.Service.SetRunning(true)

	go func() {
		_ = session.Service.RunUntilHalt()
	}()

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Program started",
	})
}

// handleStop handles POST /api/v1/session/{id}/stop
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	session.Service.Pause()

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Program stopped",
	})
}

// handleStep handles POST /api/v1/session/{id}/step
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if stepErr := session.Service.Step(); stepErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Step failed: %v", stepErr))
		return
	}

	regs := session.Service.GetRegisterState()
	state := session.Service.GetExecutionState()

	s.broadcastStateChange(sessionID, &regs, state)

	writeJSON(w, http.StatusOK, ToRegisterResponse(&regs))
}

// handleStepOver handles POST /api/v1/session/{id}/step-over
func (s *Server) handleStepOver(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if stepErr := session.Service.StepOver(); stepErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Step over failed: %v", stepErr))
		return
	}

	regs := session.Service.GetRegisterState()
	state := session.Service.GetExecutionState()
	s.broadcastStateChange(sessionID, &regs, state)

	writeJSON(w, http.StatusOK, ToRegisterResponse(&regs))
}

// handleStepOut handles POST /api/v1/session/{id}/step-out
func (s *Server) handleStepOut(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if stepErr := session.Service.StepOut(); stepErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Step out failed: %v", stepErr))
		return
	}

	regs := session.Service.GetRegisterState()
	state := session.Service.GetExecutionState()
	s.broadcastStateChange(sessionID, &regs, state)

	writeJSON(w, http.StatusOK, ToRegisterResponse(&regs))
}

// handleReset handles POST /api/v1/session/{id}/reset
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if err := session.Service.Reset(); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Reset failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "machine reset",
	})
}

// handleGetRegisters handles GET /api/v1/session/{id}/registers
func (s *Server) handleGetRegisters(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	regs := session.Service.GetRegisterState()
	writeJSON(w, http.StatusOK, ToRegisterResponse(&regs))
}

// handleGetMemory handles GET /api/v1/session/{id}/memory
func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	query := r.URL.Query()
	address, err := parseHexOrDec(query.Get("address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid address parameter")
		return
	}

	length, err := strconv.ParseUint(query.Get("length"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid length parameter")
		return
	}

	const maxMemoryRead = 1024 * 1024
	if length > maxMemoryRead {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Length too large (max %d bytes)", maxMemoryRead))
		return
	}

	data, err := session.Service.GetMemory(uint32(address), uint32(length)) // #nosec G115 -- parseHexOrDec validates input fits in uint32
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to read memory: %v", err))
		return
	}

	response := MemoryResponse{
		Address: uint32(address), // #nosec G115 -- parseHexOrDec validates input fits in uint32
		Data:    data,
		Length:  uint32(length),
	}

	writeJSON(w, http.StatusOK, response)
}

// handleGetDisassembly handles GET /api/v1/session/{id}/disassembly
func (s *Server) handleGetDisassembly(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	query := r.URL.Query()
	address, err := parseHexOrDec(query.Get("address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid address parameter")
		return
	}

	count, err := strconv.ParseUint(query.Get("count"), 10, 32)
	if err != nil || count == 0 {
		count = 10
	}

	const maxDisassembly = 1000
	if count > maxDisassembly {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Count too large (max %d)", maxDisassembly))
		return
	}

	lines := session.Service.GetDisassembly(uint32(address), int(count)) // #nosec G115 -- parseHexOrDec validates input fits in uint32

	instructions := make([]InstructionInfo, len(lines))
	for i, line := range lines {
		instructions[i] = ToInstructionInfo(&line)
	}

	writeJSON(w, http.StatusOK, DisassemblyResponse{Instructions: instructions})
}

// handleGetConsoleOutput handles GET /api/v1/session/{id}/console
func (s *Server) handleGetConsoleOutput(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"output": session.Service.GetOutput()})
}

// handleGetSourceMap handles GET /api/v1/session/{id}/sourcemap
func (s *Server) handleGetSourceMap(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, session.Service.GetSourceMap())
}

// handleEvaluateExpression handles GET /api/v1/session/{id}/evaluate?expr=...
func (s *Server) handleEvaluateExpression(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	expr := r.URL.Query().Get("expr")
	value, err := session.Service.EvaluateExpression(expr)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to evaluate expression: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]uint32{"value": value})
}

// handleBreakpoint handles POST/DELETE /api/v1/session/{id}/breakpoint
func (s *Server) handleBreakpoint(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req BreakpointRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := session.Service.AddBreakpoint(req.Address); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to add breakpoint: %v", err))
			return
		}

		writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Breakpoint added"})

	case http.MethodDelete:
		var req BreakpointRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := session.Service.RemoveBreakpoint(req.Address); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to remove breakpoint: %v", err))
			return
		}

		writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Breakpoint removed"})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleListBreakpoints handles GET /api/v1/session/{id}/breakpoints
func (s *Server) handleListBreakpoints(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, BreakpointsResponse{Breakpoints: session.Service.GetBreakpoints()})
}

// parseHexOrDec parses a string as either hexadecimal (0x prefix) or decimal
func parseHexOrDec(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty string")
	}

	if len(s) > 2 && s[:2] == "0x" {
		return strconv.ParseUint(s[2:], 16, 32)
	}

	return strconv.ParseUint(s, 10, 32)
}

// handleWatchpoint handles POST /api/v1/session/{id}/watchpoint
func (s *Server) handleWatchpoint(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req WatchpointRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		watchType := req.Type
		if watchType == "" {
			watchType = "readwrite"
		}
		if watchType != "read" && watchType != "write" && watchType != "readwrite" {
			writeError(w, http.StatusBadRequest, "Invalid watchpoint type (must be 'read', 'write', or 'readwrite')")
			return
		}

		if err := session.Service.AddWatchpoint(req.Address, watchType); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to add watchpoint: %v", err))
			return
		}

		watchpoints := session.Service.GetWatchpoints()
		var newWatchpoint *service.WatchpointInfo
		for i := range watchpoints {
			if watchpoints[i].Address == req.Address {
				newWatchpoint = &watchpoints[i]
				break
			}
		}

		if newWatchpoint == nil {
			writeError(w, http.StatusInternalServerError, "Failed to retrieve created watchpoint")
			return
		}

		writeJSON(w, http.StatusOK, WatchpointResponse{
			ID:      newWatchpoint.ID,
			Address: newWatchpoint.Address,
			Type:    newWatchpoint.Type,
		})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleDeleteWatchpoint handles DELETE /api/v1/session/{id}/watchpoint/{watchpointID}
func (s *Server) handleDeleteWatchpoint(w http.ResponseWriter, r *http.Request, sessionID string, watchpointID int) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if err := session.Service.RemoveWatchpoint(watchpointID); err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Failed to remove watchpoint: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Watchpoint removed"})
}

// handleListWatchpoints handles GET /api/v1/session/{id}/watchpoints
func (s *Server) handleListWatchpoints(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, WatchpointsResponse{Watchpoints: session.Service.GetWatchpoints()})
}

// handleTraceControl handles POST /api/v1/session/{id}/trace/{enable|disable}
func (s *Server) handleTraceControl(w http.ResponseWriter, r *http.Request, sessionID string, action string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	switch action {
	case "enable":
		if err := session.Service.EnableExecutionTrace(); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to enable trace: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Execution trace enabled"})
	case "disable":
		session.Service.DisableExecutionTrace()
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Execution trace disabled"})
	default:
		writeError(w, http.StatusBadRequest, "Invalid action (must be 'enable' or 'disable')")
	}
}

// handleTraceData handles GET /api/v1/session/{id}/trace/data
func (s *Server) handleTraceData(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	entries, err := session.Service.GetExecutionTraceData()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to get trace data: %v", err))
		return
	}

	apiEntries := make([]TraceEntryInfo, len(entries))
	for i, entry := range entries {
		apiEntries[i] = TraceEntryInfo{
			Sequence: entry.Sequence,
			PC:       entry.PC,
			Opcode:   entry.Opcode,
			Op:       entry.Op.String(),
		}
	}

	writeJSON(w, http.StatusOK, TraceDataResponse{Entries: apiEntries, Count: len(apiEntries)})
}

// handleStatsControl handles POST /api/v1/session/{id}/stats/{enable|disable}
func (s *Server) handleStatsControl(w http.ResponseWriter, r *http.Request, sessionID string, action string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	switch action {
	case "enable":
		if err := session.Service.EnableStatistics(); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to enable statistics: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Statistics collection enabled"})
	case "disable":
		session.Service.DisableStatistics()
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Statistics collection disabled"})
	default:
		writeError(w, http.StatusBadRequest, "Invalid action (must be 'enable' or 'disable')")
	}
}

// handleStats handles GET /api/v1/session/{id}/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	stats, err := session.Service.GetStatistics()
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to get statistics: %v", err))
		return
	}

	opCounts := make(map[string]uint64, len(stats.OpCounts))
	for op, count := range stats.OpCounts {
		opCounts[op.String()] = count
	}

	writeJSON(w, http.StatusOK, StatisticsResponse{
		TotalExecuted: stats.TotalExecuted,
		LoadCount:     stats.LoadCount,
		StoreCount:    stats.StoreCount,
		BranchCount:   stats.BranchCount,
		JumpCount:     stats.JumpCount,
		OpCounts:      opCounts,
	})
}

// handleGetConfig handles GET /api/v1/config
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, s.getDefaultConfig())
}

// handleUpdateConfig handles PUT /api/v1/config
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var cfg ConfigResponse
	if err := readJSON(r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Session configuration is process-wide (the config package's TOML file
	// on disk); this endpoint acknowledges the request without persisting it.
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Configuration updated"})
}

// handleListExamples handles GET /api/v1/examples
func (s *Server) handleListExamples(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	examplesDir := "examples"
	entries, err := os.ReadDir(examplesDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to read examples directory: %v", err))
		return
	}

	examples := make([]ExampleInfo, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		examples = append(examples, ExampleInfo{Name: entry.Name(), Size: info.Size()})
	}

	writeJSON(w, http.StatusOK, ExamplesResponse{Examples: examples, Count: len(examples)})
}

// handleGetExample handles GET /api/v1/examples/{name}
func (s *Server) handleGetExample(w http.ResponseWriter, r *http.Request, exampleName string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if strings.Contains(exampleName, "..") || strings.Contains(exampleName, "/") {
		writeError(w, http.StatusBadRequest, "Invalid example name")
		return
	}

	examplePath := filepath.Join("examples", exampleName)
	content, err := os.ReadFile(examplePath) // #nosec G304 -- path is validated above
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Example not found: %s", exampleName))
		return
	}

	info, err := os.Stat(examplePath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get file info")
		return
	}

	writeJSON(w, http.StatusOK, ExampleContentResponse{
		Name:    exampleName,
		Content: content,
		Size:    info.Size(),
	})
}

// getDefaultConfig returns default configuration as an API response
func (s *Server) getDefaultConfig() ConfigResponse {
	return ConfigResponse{
		Execution: ExecutionConfig{
			MaxCycles:      1000000,
			StackSize:      65536,
			DefaultEntry:   "0x10000",
			EnableTrace:    false,
			EnableMemTrace: false,
			EnableStats:    false,
		},
		Debugger: DebuggerConfig{
			HistorySize:    1000,
			AutoSaveBreaks: true,
			ShowSource:     true,
			ShowRegisters:  true,
		},
		Display: DisplayConfig{
			ColorOutput:   true,
			BytesPerLine:  16,
			DisasmContext: 5,
			SourceContext: 5,
			NumberFormat:  "hex",
		},
		Trace: TraceConfig{
			OutputFile:    "trace.log",
			FilterRegs:    "",
			IncludeTiming: true,
			MaxEntries:    100000,
		},
		Statistics: StatisticsConfig{
			OutputFile:     "stats.json",
			Format:         "json",
			CollectHotPath: true,
			TrackCalls:     true,
		},
	}
}

// broadcastStateChange broadcasts machine state changes to WebSocket clients
func (s *Server) broadcastStateChange(sessionID string, regs *service.RegisterState, state service.ExecutionState) {
	if s.broadcaster == nil {
		return
	}

	data := map[string]interface{}{
		"status":    string(state),
		"pc":        regs.PC,
		"instret":   regs.Instret,
		"registers": regs.Registers,
	}

	s.broadcaster.BroadcastState(sessionID, data)
}
