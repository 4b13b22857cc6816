package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"toolhub/internal/modules/preflight/domain"
	preflightout "toolhub/internal/modules/preflight/port/out"
	"toolhub/internal/platform/config"
)

const (
	connectTimeout = 5 * time.Second

	// Modern runtime first, legacy fallback second.
	modernInterpreter = "pwsh"
	legacyInterpreter = "powershell"
)

// PreFlightService proves the environment can satisfy a tool's declared
// requirements. It reports every remediable problem at once: checks are
// independent, always appended, and a single check's internal fault is
// converted into a failing result rather than aborting the battery.
// The report is advisory; blocking policy belongs to the caller.
type PreFlightService struct {
	privileges preflightout.PrivilegeProbe
	dialer     preflightout.Dialer
	runtime    preflightout.RuntimeProbe
	artifacts  preflightout.ArtifactResolver
	log        zerolog.Logger
}

func NewPreFlightService(
	privileges preflightout.PrivilegeProbe,
	dialer preflightout.Dialer,
	runtime preflightout.RuntimeProbe,
	artifacts preflightout.ArtifactResolver,
	log zerolog.Logger,
) *PreFlightService {
	return &PreFlightService{
		privileges: privileges,
		dialer:     dialer,
		runtime:    runtime,
		artifacts:  artifacts,
		log:        log,
	}
}

func (s *PreFlightService) Validate(ctx context.Context, req domain.Requirements, endpoint config.Endpoint) []domain.CheckResult {
	var results []domain.CheckResult

	if req.RequiresElevation {
		results = append(results, s.checkPrivileges(ctx))
	}
	if req.RequiresConnection {
		results = append(results, s.checkConnectivity(ctx, endpoint))
	}
	results = append(results, s.checkRuntime(ctx))
	for _, dep := range req.Dependencies {
		results = append(results, s.checkDependency(ctx, dep))
	}
	results = append(results, s.checkTargetScript(ctx, req.ScriptKey))

	for _, r := range results {
		if !r.Passed {
			s.log.Debug().Str("check", r.Name).Str("message", r.Message).Msg("pre-flight check failed")
		}
	}
	return results
}

// checkPrivileges treats a probe fault the same as "not elevated": both
// are fixed by re-launching elevated, so both carry that remediation.
func (s *PreFlightService) checkPrivileges(ctx context.Context) domain.CheckResult {
	elevated, err := s.privileges.Elevated(ctx)
	if err != nil {
		return domain.CheckResult{
			Name:        domain.CheckPrivileges,
			Passed:      false,
			Message:     fmt.Sprintf("could not determine privilege level: %v", err),
			Remediation: domain.RemediationElevate,
		}
	}
	if !elevated {
		return domain.CheckResult{
			Name:        domain.CheckPrivileges,
			Passed:      false,
			Message:     "this tool requires elevated privileges; re-launch as administrator",
			Remediation: domain.RemediationElevate,
		}
	}
	return domain.CheckResult{
		Name:        domain.CheckPrivileges,
		Passed:      true,
		Message:     "running with elevated privileges",
		Remediation: domain.RemediationNone,
	}
}

// checkConnectivity opens a raw TCP handshake. An unconfigured endpoint
// is itself a failing result, not a skipped check.
func (s *PreFlightService) checkConnectivity(ctx context.Context, endpoint config.Endpoint) domain.CheckResult {
	if !endpoint.Configured() {
		return domain.CheckResult{
			Name:        domain.CheckConnectivity,
			Passed:      false,
			Message:     "no data endpoint configured; set one in settings and retry",
			Remediation: domain.RemediationConnectivity,
		}
	}
	if err := s.dialer.Dial(ctx, endpoint.Address(), connectTimeout); err != nil {
		return domain.CheckResult{
			Name:        domain.CheckConnectivity,
			Passed:      false,
			Message:     fmt.Sprintf("cannot reach %s: %v", endpoint.Address(), err),
			Remediation: domain.RemediationConnectivity,
		}
	}
	return domain.CheckResult{
		Name:        domain.CheckConnectivity,
		Passed:      true,
		Message:     fmt.Sprintf("%s is reachable", endpoint.Address()),
		Remediation: domain.RemediationNone,
	}
}

// checkRuntime fails only when both the modern and the legacy
// interpreter are unreachable.
func (s *PreFlightService) checkRuntime(ctx context.Context) domain.CheckResult {
	version, modernErr := s.runtime.Version(ctx, modernInterpreter)
	if modernErr == nil {
		return domain.CheckResult{
			Name:        domain.CheckRuntime,
			Passed:      true,
			Message:     fmt.Sprintf("%s %s available", modernInterpreter, version),
			Remediation: domain.RemediationNone,
		}
	}
	version, legacyErr := s.runtime.Version(ctx, legacyInterpreter)
	if legacyErr == nil {
		return domain.CheckResult{
			Name:        domain.CheckRuntime,
			Passed:      true,
			Message:     fmt.Sprintf("%s %s available (legacy fallback)", legacyInterpreter, version),
			Remediation: domain.RemediationNone,
		}
	}
	return domain.CheckResult{
		Name:        domain.CheckRuntime,
		Passed:      false,
		Message:     fmt.Sprintf("no interpreter runtime available: %s: %v; %s: %v", modernInterpreter, modernErr, legacyInterpreter, legacyErr),
		Remediation: domain.RemediationNone,
	}
}

// checkDependency is a presence probe only; a stale-but-present
// dependency still satisfies it.
func (s *PreFlightService) checkDependency(ctx context.Context, key string) domain.CheckResult {
	name := fmt.Sprintf("%s:%s", domain.CheckDependency, key)
	if _, ok := s.artifacts.Resolve(ctx, key); !ok {
		return domain.CheckResult{
			Name:        name,
			Passed:      false,
			Message:     fmt.Sprintf("dependency %s is not cached", key),
			Remediation: domain.RemediationFetchDep,
		}
	}
	return domain.CheckResult{
		Name:        name,
		Passed:      true,
		Message:     fmt.Sprintf("dependency %s is present", key),
		Remediation: domain.RemediationNone,
	}
}

// checkTargetScript: staleness never blocks execution; a stale-but-present
// script passes with an advisory message so the caller can offer a refresh.
func (s *PreFlightService) checkTargetScript(ctx context.Context, key string) domain.CheckResult {
	if key == "" {
		return domain.CheckResult{
			Name:        domain.CheckTargetScript,
			Passed:      false,
			Message:     "tool has no script file defined; contact the catalog maintainer",
			Remediation: domain.RemediationNone,
		}
	}
	if _, ok := s.artifacts.Resolve(ctx, key); !ok {
		return domain.CheckResult{
			Name:        domain.CheckTargetScript,
			Passed:      false,
			Message:     fmt.Sprintf("script %s is not cached", key),
			Remediation: domain.RemediationFetchDep,
		}
	}
	if s.artifacts.IsStale(ctx, key) {
		return domain.CheckResult{
			Name:        domain.CheckTargetScript,
			Passed:      true,
			Message:     fmt.Sprintf("script %s is cached but past its freshness window; consider refreshing", key),
			Remediation: domain.RemediationNone,
		}
	}
	return domain.CheckResult{
		Name:        domain.CheckTargetScript,
		Passed:      true,
		Message:     fmt.Sprintf("script %s is cached and fresh", key),
		Remediation: domain.RemediationNone,
	}
}
