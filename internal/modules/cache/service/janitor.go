package service

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Janitor runs the expiration sweep on a cron schedule. Sweeps are
// advisory housekeeping; a failed sweep is logged and retried on the
// next tick, never escalated.
type Janitor struct {
	svc  *CacheService
	cron *cron.Cron
	log  zerolog.Logger
}

func NewJanitor(svc *CacheService, log zerolog.Logger) *Janitor {
	return &Janitor{svc: svc, cron: cron.New(), log: log}
}

// Start schedules the sweep and begins running it. spec accepts the
// cron syntax of robfig/cron, including descriptors like "@hourly".
func (j *Janitor) Start(spec string) error {
	_, err := j.cron.AddFunc(spec, func() {
		removed, err := j.svc.SweepExpired(context.Background())
		if err != nil {
			j.log.Warn().Err(err).Msg("scheduled cache sweep failed")
			return
		}
		j.log.Info().Int("removed", removed).Msg("scheduled cache sweep complete")
	})
	if err != nil {
		return fmt.Errorf("schedule cache sweep: %w", err)
	}
	j.cron.Start()
	return nil
}

// Stop halts scheduling and waits for an in-flight sweep to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}
