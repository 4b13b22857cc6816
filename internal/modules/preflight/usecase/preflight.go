package usecase

import (
	"context"

	"toolhub/internal/modules/preflight/domain"
	"toolhub/internal/modules/preflight/dto"
	preflightin "toolhub/internal/modules/preflight/port/in"
	"toolhub/internal/modules/preflight/service"
	"toolhub/internal/platform/config"
)

type Interactor struct {
	svc *service.PreFlightService
}

func NewInteractor(svc *service.PreFlightService) preflightin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Validate(ctx context.Context, req dto.RequirementsInput, endpoint config.Endpoint) dto.ReportOutput {
	results := i.svc.Validate(ctx, domain.Requirements{
		ScriptKey:          req.ScriptKey,
		RequiresElevation:  req.RequiresElevation,
		RequiresConnection: req.RequiresConnection,
		Dependencies:       req.Dependencies,
	}, endpoint)

	report := dto.ReportOutput{Passed: true}
	for _, r := range results {
		report.Checks = append(report.Checks, dto.CheckOutput{
			Name:        r.Name,
			Passed:      r.Passed,
			Message:     r.Message,
			Remediation: string(r.Remediation),
		})
		if !r.Passed {
			report.Passed = false
		}
	}
	return report
}
