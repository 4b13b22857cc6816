package dto

import (
	preflightdto "toolhub/internal/modules/preflight/dto"
	runnerdto "toolhub/internal/modules/runner/dto"
)

type ToolOutput struct {
	ID                 string
	Title              string
	Description        string
	ScriptPath         string
	RequiresElevation  bool
	RequiresConnection bool
	Dependencies       []string
}

type RunInput struct {
	ToolID     string
	Parameters map[string]string
	// Force runs the tool even when pre-flight checks fail.
	Force      bool
	OnOutput   func(line string)
	OnError    func(line string)
	OnProgress func(percent int)
}

type RunOutput struct {
	Report    preflightdto.ReportOutput
	Execution runnerdto.ExecuteOutput
}
