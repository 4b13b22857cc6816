package dto

import "time"

type RecordInput struct {
	ToolID      string
	Success     bool
	DurationMS  int64
	Output      string
	ErrorOutput string
	CompletedAt time.Time
}

type RunOutput struct {
	ID          string
	ToolID      string
	Success     bool
	DurationMS  int64
	Output      string
	ErrorOutput string
	CompletedAt time.Time
}

type ToolStatsOutput struct {
	ToolID        string
	Runs          int
	Failures      int
	SuccessRate   float64
	AvgDurationMS int64
	LastRunAt     time.Time
}
