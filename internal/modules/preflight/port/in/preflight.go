package in

import (
	"context"

	"toolhub/internal/modules/preflight/dto"
	"toolhub/internal/platform/config"
)

type Usecase interface {
	Validate(ctx context.Context, req dto.RequirementsInput, endpoint config.Endpoint) dto.ReportOutput
}
