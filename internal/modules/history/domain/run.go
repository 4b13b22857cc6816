package domain

import (
	"fmt"
	"time"
)

// Run is one recorded tool execution.
type Run struct {
	ID          string
	ToolID      string
	Success     bool
	DurationMS  int64
	Output      string
	ErrorOutput string
	CompletedAt time.Time
}

func (r Run) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("run id is required")
	}
	if r.ToolID == "" {
		return fmt.Errorf("run tool id is required")
	}
	if r.DurationMS < 0 {
		return fmt.Errorf("run duration must not be negative")
	}
	return nil
}

// ToolStats is the per-tool aggregate shown in the usage view.
type ToolStats struct {
	ToolID        string
	Runs          int
	Failures      int
	AvgDurationMS int64
	LastRunAt     time.Time
}

func (s ToolStats) SuccessRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Runs-s.Failures) / float64(s.Runs)
}
