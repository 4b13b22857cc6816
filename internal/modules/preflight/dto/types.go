package dto

type RequirementsInput struct {
	ScriptKey          string
	RequiresElevation  bool
	RequiresConnection bool
	Dependencies       []string
}

type CheckOutput struct {
	Name        string
	Passed      bool
	Message     string
	Remediation string
}

type ReportOutput struct {
	Checks []CheckOutput
	Passed bool
}
