package dto

import "time"

type ExecuteInput struct {
	ScriptPath string
	Parameters map[string]string
	OnOutput   func(line string)
	OnError    func(line string)
	OnProgress func(percent int)
}

type ExecuteOutput struct {
	Success       bool
	ExitCode      int
	ExitCodeKnown bool
	Output        string
	ErrorOutput   string
	Duration      time.Duration
	CompletedAt   time.Time
}
