package vm

// ============================================================================
// Performance statistics (D4)
// ============================================================================

// PerformanceStatistics tallies an instruction mix across a run: per-opcode
// counts plus the broader load/store/branch categories a profiler typically
// wants without walking the full opcode breakdown.
type PerformanceStatistics struct {
	OpCounts      map[Op]uint64
	LoadCount     uint64
	StoreCount    uint64
	BranchCount   uint64
	JumpCount     uint64
	TotalExecuted uint64
}

// NewPerformanceStatistics creates an empty statistics tracker.
func NewPerformanceStatistics() *PerformanceStatistics {
	return &PerformanceStatistics{OpCounts: make(map[Op]uint64)}
}

// Record tallies one retired instruction.
func (s *PerformanceStatistics) Record(op Op) {
	s.OpCounts[op]++
	s.TotalExecuted++

	switch op {
	case OpLB, OpLH, OpLW, OpLBU, OpLHU:
		s.LoadCount++
	case OpSB, OpSH, OpSW:
		s.StoreCount++
	case OpBEQ, OpBNE, OpBLT, OpBGE, OpBLTU, OpBGEU:
		s.BranchCount++
	case OpJAL, OpJALR:
		s.JumpCount++
	}
}
