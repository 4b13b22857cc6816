package domain

import "fmt"

// Remediation tags a failing check with the single action that fixes it
// without re-running the whole battery.
type Remediation string

const (
	RemediationNone         Remediation = "none"
	RemediationElevate      Remediation = "elevate-privileges"
	RemediationFetchDep     Remediation = "fetch-dependency"
	RemediationConnectivity Remediation = "retry-connectivity"
)

func (r Remediation) Validate() error {
	switch r {
	case RemediationNone, RemediationElevate, RemediationFetchDep, RemediationConnectivity:
		return nil
	default:
		return fmt.Errorf("unknown remediation: %s", r)
	}
}

// CheckResult is one outcome of the pre-flight battery. Results are
// computed fresh on every run and never persisted.
type CheckResult struct {
	Name        string
	Passed      bool
	Message     string
	Remediation Remediation
}

func (c CheckResult) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("check name is required")
	}
	if !c.Passed && c.Message == "" {
		return fmt.Errorf("failing check %s must carry a message", c.Name)
	}
	return c.Remediation.Validate()
}

// Requirements declares what a specific tool needs from the environment
// before it may run.
type Requirements struct {
	ScriptKey          string
	RequiresElevation  bool
	RequiresConnection bool
	Dependencies       []string
}

func (r Requirements) Validate() error {
	if r.ScriptKey == "" {
		return fmt.Errorf("script key is required")
	}
	return nil
}

// Check names, stable across the battery.
const (
	CheckPrivileges   = "privileges"
	CheckConnectivity = "connectivity"
	CheckRuntime      = "interpreter-runtime"
	CheckDependency   = "dependency"
	CheckTargetScript = "target-script"
)
