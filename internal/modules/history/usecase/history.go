package usecase

import (
	"context"
	"time"

	"toolhub/internal/modules/history/domain"
	"toolhub/internal/modules/history/dto"
	historyin "toolhub/internal/modules/history/port/in"
	"toolhub/internal/modules/history/service"
)

type Interactor struct {
	svc *service.HistoryService
}

func NewInteractor(svc *service.HistoryService) historyin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Record(ctx context.Context, input dto.RecordInput) (dto.RunOutput, error) {
	run, err := i.svc.Record(ctx, domain.Run{
		ToolID:      input.ToolID,
		Success:     input.Success,
		DurationMS:  input.DurationMS,
		Output:      input.Output,
		ErrorOutput: input.ErrorOutput,
		CompletedAt: input.CompletedAt,
	})
	if err != nil {
		return dto.RunOutput{}, err
	}
	return toRunOutput(run), nil
}

func (i *Interactor) Recent(ctx context.Context, limit int) ([]dto.RunOutput, error) {
	runs, err := i.svc.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RunOutput, 0, len(runs))
	for _, run := range runs {
		out = append(out, toRunOutput(run))
	}
	return out, nil
}

func (i *Interactor) Stats(ctx context.Context) ([]dto.ToolStatsOutput, error) {
	stats, err := i.svc.Stats(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ToolStatsOutput, 0, len(stats))
	for _, s := range stats {
		out = append(out, dto.ToolStatsOutput{
			ToolID:        s.ToolID,
			Runs:          s.Runs,
			Failures:      s.Failures,
			SuccessRate:   s.SuccessRate(),
			AvgDurationMS: s.AvgDurationMS,
			LastRunAt:     s.LastRunAt,
		})
	}
	return out, nil
}

func (i *Interactor) Purge(ctx context.Context, cutoff time.Time) (int, error) {
	return i.svc.Purge(ctx, cutoff)
}

func toRunOutput(run domain.Run) dto.RunOutput {
	return dto.RunOutput{
		ID:          run.ID,
		ToolID:      run.ToolID,
		Success:     run.Success,
		DurationMS:  run.DurationMS,
		Output:      run.Output,
		ErrorOutput: run.ErrorOutput,
		CompletedAt: run.CompletedAt,
	}
}
