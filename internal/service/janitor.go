package service

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Janitor periodically evicts finished and idle sale sessions.
type Janitor struct {
	scheduler *cron.Cron
	sales     *SaleService
	log       *zap.Logger
}

// StartJanitor schedules EvictIdle with a cron expression such as "@every 1m".
func StartJanitor(sales *SaleService, schedule string, log *zap.Logger) (*Janitor, error) {
	j := &Janitor{
		scheduler: cron.New(),
		sales:     sales,
		log:       log,
	}
	if _, err := j.scheduler.AddFunc(schedule, j.run); err != nil {
		return nil, fmt.Errorf("invalid janitor schedule %q: %w", schedule, err)
	}
	j.scheduler.Start()
	log.Info("session janitor started", zap.String("schedule", schedule))
	return j, nil
}

func (j *Janitor) run() {
	j.sales.EvictIdle(j.sales.opts.Now())
}

// Stop waits for a running eviction to finish.
func (j *Janitor) Stop() {
	<-j.scheduler.Stop().Done()
}
