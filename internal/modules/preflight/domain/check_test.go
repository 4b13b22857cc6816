package domain_test

import (
	"testing"

	"toolhub/internal/modules/preflight/domain"
)

func TestCheckResultValidate(t *testing.T) {
	t.Parallel()
	ok := domain.CheckResult{
		Name:        domain.CheckRuntime,
		Passed:      true,
		Message:     "pwsh 7.4.1 available",
		Remediation: domain.RemediationNone,
	}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid result rejected: %v", err)
	}

	failingNoMessage := domain.CheckResult{
		Name:        domain.CheckPrivileges,
		Passed:      false,
		Remediation: domain.RemediationElevate,
	}
	if err := failingNoMessage.Validate(); err == nil {
		t.Fatalf("failing result without a message must be invalid")
	}

	badTag := ok
	badTag.Remediation = "reinstall-os"
	if err := badTag.Validate(); err == nil {
		t.Fatalf("unknown remediation must be invalid")
	}
}

func TestRequirementsValidate(t *testing.T) {
	t.Parallel()
	if err := (domain.Requirements{}).Validate(); err == nil {
		t.Fatalf("requirements without a script key must be invalid")
	}
	if err := (domain.Requirements{ScriptKey: "scripts/a.ps1"}).Validate(); err != nil {
		t.Fatalf("minimal requirements rejected: %v", err)
	}
}
