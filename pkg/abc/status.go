package abc

// Status holds the run counters. They accumulate across Fit calls.
type Status struct {
	Iterations  int `json:"iterations"`
	ScoutEvents int `json:"scoutEvents"`
	NaNEvents   int `json:"nanEvents"`
}

// AgentLog stores one snapshot of all food-source positions per iteration,
// taken before the employed phase runs.
type AgentLog struct {
	snapshots [][][]float64
}

func (l *AgentLog) append(snapshot [][]float64) {
	l.snapshots = append(l.snapshots, snapshot)
}

// Snapshots returns the recorded snapshots and clears the log when reset is set.
func (l *AgentLog) Snapshots(reset bool) [][][]float64 {
	out := l.snapshots
	if reset {
		l.snapshots = nil
	}
	if out == nil {
		return [][][]float64{}
	}
	return out
}
