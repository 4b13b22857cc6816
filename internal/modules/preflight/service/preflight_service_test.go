package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"toolhub/internal/modules/preflight/domain"
	"toolhub/internal/modules/preflight/service"
	"toolhub/internal/platform/config"
	"toolhub/internal/platform/logging"
)

type fakePrivileges struct {
	elevated bool
	err      error
}

func (f fakePrivileges) Elevated(context.Context) (bool, error) { return f.elevated, f.err }

type fakeDialer struct {
	err   error
	calls int
}

func (f *fakeDialer) Dial(_ context.Context, _ string, _ time.Duration) error {
	f.calls++
	return f.err
}

type fakeRuntime struct {
	versions map[string]string
}

func (f fakeRuntime) Version(_ context.Context, interpreter string) (string, error) {
	v, ok := f.versions[interpreter]
	if !ok {
		return "", errors.New("executable file not found")
	}
	return v, nil
}

type fakeArtifacts struct {
	present map[string]string
	stale   map[string]bool
}

func (f fakeArtifacts) Resolve(_ context.Context, key string) (string, bool) {
	path, ok := f.present[key]
	return path, ok
}

func (f fakeArtifacts) IsStale(_ context.Context, key string) bool {
	return f.stale[key]
}

func newValidator(priv fakePrivileges, dial *fakeDialer, rt fakeRuntime, art fakeArtifacts) *service.PreFlightService {
	return service.NewPreFlightService(priv, dial, rt, art, logging.Discard())
}

func modernOnly() fakeRuntime {
	return fakeRuntime{versions: map[string]string{"pwsh": "7.4.1"}}
}

func resultsByName(results []domain.CheckResult) map[string]domain.CheckResult {
	out := make(map[string]domain.CheckResult, len(results))
	for _, r := range results {
		out[r.Name] = r
	}
	return out
}

func TestMinimalRequirementsRunOnlyTwoChecks(t *testing.T) {
	t.Parallel()
	validator := newValidator(
		fakePrivileges{},
		&fakeDialer{},
		modernOnly(),
		fakeArtifacts{present: map[string]string{"scripts/a.ps1": "/tmp/a.ps1"}},
	)
	results := validator.Validate(context.Background(), domain.Requirements{ScriptKey: "scripts/a.ps1"}, config.Endpoint{})
	if len(results) != 2 {
		t.Fatalf("expected runtime + target checks only, got %d results", len(results))
	}
	byName := resultsByName(results)
	if _, ok := byName[domain.CheckRuntime]; !ok {
		t.Fatalf("runtime check missing")
	}
	if _, ok := byName[domain.CheckTargetScript]; !ok {
		t.Fatalf("target script check missing")
	}
}

func TestMissingDependencyFailsWithFetchTag(t *testing.T) {
	t.Parallel()
	validator := newValidator(
		fakePrivileges{},
		&fakeDialer{},
		modernOnly(),
		fakeArtifacts{present: map[string]string{"scripts/a.ps1": "/tmp/a.ps1", "modules/ok.psm1": "/tmp/ok.psm1"}},
	)
	req := domain.Requirements{
		ScriptKey:    "scripts/a.ps1",
		Dependencies: []string{"modules/ok.psm1", "modules/missing.psm1"},
	}
	results := validator.Validate(context.Background(), req, config.Endpoint{})
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	failing := 0
	for _, r := range results {
		if r.Passed {
			continue
		}
		failing++
		if r.Remediation != domain.RemediationFetchDep {
			t.Fatalf("missing dependency should be tagged fetch-dependency, got %s", r.Remediation)
		}
		if !strings.Contains(r.Message, "modules/missing.psm1") {
			t.Fatalf("failure message should name the missing key: %q", r.Message)
		}
	}
	if failing != 1 {
		t.Fatalf("expected exactly one failing result, got %d", failing)
	}
}

func TestStaleTargetScriptPassesWithAdvisory(t *testing.T) {
	t.Parallel()
	validator := newValidator(
		fakePrivileges{},
		&fakeDialer{},
		modernOnly(),
		fakeArtifacts{
			present: map[string]string{"scripts/a.ps1": "/tmp/a.ps1"},
			stale:   map[string]bool{"scripts/a.ps1": true},
		},
	)
	results := validator.Validate(context.Background(), domain.Requirements{ScriptKey: "scripts/a.ps1"}, config.Endpoint{})
	target := resultsByName(results)[domain.CheckTargetScript]
	if !target.Passed {
		t.Fatalf("stale-but-present script must pass: %+v", target)
	}
	if !strings.Contains(target.Message, "freshness") {
		t.Fatalf("stale pass should carry an advisory message: %q", target.Message)
	}
}

func TestPrivilegeProbeFaultIsActionable(t *testing.T) {
	t.Parallel()
	validator := newValidator(
		fakePrivileges{err: errors.New("token query refused")},
		&fakeDialer{},
		modernOnly(),
		fakeArtifacts{present: map[string]string{"scripts/a.ps1": "/tmp/a.ps1"}},
	)
	req := domain.Requirements{ScriptKey: "scripts/a.ps1", RequiresElevation: true}
	results := validator.Validate(context.Background(), req, config.Endpoint{})
	priv := resultsByName(results)[domain.CheckPrivileges]
	if priv.Passed {
		t.Fatalf("probe fault should fail the check")
	}
	if priv.Remediation != domain.RemediationElevate {
		t.Fatalf("probe fault should still suggest elevation, got %s", priv.Remediation)
	}
	if !strings.Contains(priv.Message, "token query refused") {
		t.Fatalf("fault text should surface in the message: %q", priv.Message)
	}
	// The rest of the battery still ran.
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
}

func TestMissingEndpointIsFailureNotSkip(t *testing.T) {
	t.Parallel()
	dialer := &fakeDialer{}
	validator := newValidator(
		fakePrivileges{},
		dialer,
		modernOnly(),
		fakeArtifacts{present: map[string]string{"scripts/a.ps1": "/tmp/a.ps1"}},
	)
	req := domain.Requirements{ScriptKey: "scripts/a.ps1", RequiresConnection: true}
	results := validator.Validate(context.Background(), req, config.Endpoint{})
	conn := resultsByName(results)[domain.CheckConnectivity]
	if conn.Passed {
		t.Fatalf("absent endpoint must be a failing result")
	}
	if conn.Remediation != domain.RemediationConnectivity {
		t.Fatalf("expected retry-connectivity, got %s", conn.Remediation)
	}
	if dialer.calls != 0 {
		t.Fatalf("no dial should be attempted without an endpoint")
	}
}

func TestConnectivityFailureCarriesAddress(t *testing.T) {
	t.Parallel()
	dialer := &fakeDialer{err: errors.New("connection refused")}
	validator := newValidator(
		fakePrivileges{},
		dialer,
		modernOnly(),
		fakeArtifacts{present: map[string]string{"scripts/a.ps1": "/tmp/a.ps1"}},
	)
	req := domain.Requirements{ScriptKey: "scripts/a.ps1", RequiresConnection: true}
	endpoint := config.Endpoint{Host: "pos-db.local", Port: 1433}
	results := validator.Validate(context.Background(), req, endpoint)
	conn := resultsByName(results)[domain.CheckConnectivity]
	if conn.Passed {
		t.Fatalf("refused dial must fail the check")
	}
	if !strings.Contains(conn.Message, "pos-db.local:1433") {
		t.Fatalf("message should name the endpoint: %q", conn.Message)
	}
}

func TestRuntimeLegacyFallback(t *testing.T) {
	t.Parallel()
	legacy := fakeRuntime{versions: map[string]string{"powershell": "5.1"}}
	validator := newValidator(
		fakePrivileges{},
		&fakeDialer{},
		legacy,
		fakeArtifacts{present: map[string]string{"scripts/a.ps1": "/tmp/a.ps1"}},
	)
	results := validator.Validate(context.Background(), domain.Requirements{ScriptKey: "scripts/a.ps1"}, config.Endpoint{})
	runtime := resultsByName(results)[domain.CheckRuntime]
	if !runtime.Passed {
		t.Fatalf("legacy runtime alone should pass: %+v", runtime)
	}
	if !strings.Contains(runtime.Message, "legacy") {
		t.Fatalf("fallback should be called out: %q", runtime.Message)
	}

	none := fakeRuntime{versions: map[string]string{}}
	validator = newValidator(fakePrivileges{}, &fakeDialer{}, none,
		fakeArtifacts{present: map[string]string{"scripts/a.ps1": "/tmp/a.ps1"}})
	results = validator.Validate(context.Background(), domain.Requirements{ScriptKey: "scripts/a.ps1"}, config.Endpoint{})
	runtime = resultsByName(results)[domain.CheckRuntime]
	if runtime.Passed {
		t.Fatalf("both runtimes unreachable should fail")
	}
}

func TestEveryFailingResultCarriesMessage(t *testing.T) {
	t.Parallel()
	validator := newValidator(
		fakePrivileges{elevated: false},
		&fakeDialer{err: errors.New("refused")},
		fakeRuntime{versions: map[string]string{}},
		fakeArtifacts{},
	)
	req := domain.Requirements{
		ScriptKey:          "scripts/a.ps1",
		RequiresElevation:  true,
		RequiresConnection: true,
		Dependencies:       []string{"modules/x.psm1"},
	}
	results := validator.Validate(context.Background(), req, config.Endpoint{Host: "h", Port: 1})
	if len(results) != 5 {
		t.Fatalf("expected full battery of 5, got %d", len(results))
	}
	for _, r := range results {
		if err := r.Validate(); err != nil {
			t.Fatalf("result %s invalid: %v", r.Name, err)
		}
		if r.Passed {
			t.Fatalf("check %s should have failed", r.Name)
		}
	}
}
