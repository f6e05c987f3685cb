package pipeline

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the pipeline on a cron expression. Overlapping runs
// are rejected by the batch registry rather than queued: a tick that
// fires while a batch is open fails fast on the monotonic check.
type Scheduler struct {
	pipeline *Pipeline
	log      *zap.Logger
	spec     string
	cron     *cron.Cron
}

func NewScheduler(p *Pipeline, spec string, log *zap.Logger) *Scheduler {
	return &Scheduler{
		pipeline: p,
		log:      log.Named("scheduler"),
		spec:     spec,
	}
}

// Start registers the cron entry and begins ticking.
func (s *Scheduler) Start(ctx context.Context) error {
	s.cron = cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	_, err := s.cron.AddFunc(s.spec, func() {
		if err := s.pipeline.RunOnce(ctx); err != nil {
			s.log.Error("scheduler.run.failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("scheduler.started", zap.String("schedule", s.spec))
	return nil
}

// Stop halts the ticker and waits for a running entry to return.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.log.Info("scheduler.stopped")
}
