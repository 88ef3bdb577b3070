package workers

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Worker is a background job run on a cron schedule.
type Worker interface {
	Name() string
	Schedule() string
	Execute()
}

// Scheduler runs workers on their schedules. A run is skipped while the
// previous run of the same worker is still in progress.
type Scheduler struct {
	logger  *zap.Logger
	workers []Worker
}

// NewScheduler creates a scheduler for the given workers.
func NewScheduler(logger *zap.Logger, workers ...Worker) *Scheduler {
	return &Scheduler{logger: logger, workers: workers}
}

// Start registers every worker with a schedule and starts the cron loop.
// The caller stops it with Stop on the returned cron.
func (s *Scheduler) Start() (*cron.Cron, error) {
	cronLogger := zapCronLogger{s.logger.Sugar()}
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger),
		cron.SkipIfStillRunning(cronLogger),
	))

	for _, worker := range s.workers {
		if worker.Schedule() == "" {
			s.logger.Info("worker disabled", zap.String("worker", worker.Name()))
			continue
		}
		if _, err := c.AddJob(worker.Schedule(), cron.FuncJob(worker.Execute)); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", worker.Name(), err)
		}
		s.logger.Info("worker scheduled", zap.String("worker", worker.Name()), zap.String("schedule", worker.Schedule()))
	}

	c.Start()
	return c, nil
}

type zapCronLogger struct {
	sugar *zap.SugaredLogger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
