package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	obsmetrics "github.com/smallbiznis/loadstone/internal/observability/metrics"
	"github.com/smallbiznis/loadstone/pkg/retry"
	"go.uber.org/zap"
)

// Runner executes a task DAG in waves: every task whose dependencies
// have all succeeded runs concurrently in the current wave. Tasks
// downstream of a failure are skipped, never attempted.
type Runner struct {
	log     *zap.Logger
	workers int
	retry   retry.Config
	metrics *obsmetrics.PipelineMetrics
}

func NewRunner(log *zap.Logger, workers int, rcfg retry.Config, m *obsmetrics.PipelineMetrics) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		log:     log,
		workers: workers,
		retry:   rcfg,
		metrics: m,
	}
}

// Run executes every task, retrying each per the retry config, and
// returns one result per task. The error is non-nil when any task
// failed or was skipped.
func (r *Runner) Run(ctx context.Context, tasks []Task) ([]TaskResult, error) {
	byName := make(map[string]Task, len(tasks))
	for _, t := range tasks {
		if t.Name == "" {
			return nil, errors.New("task without a name")
		}
		if _, dup := byName[t.Name]; dup {
			return nil, fmt.Errorf("duplicate task %q", t.Name)
		}
		byName[t.Name] = t
	}
	for _, t := range tasks {
		for _, dep := range t.DependsOn {
			if _, ok := byName[dep]; !ok {
				return nil, fmt.Errorf("task %q depends on unknown task %q", t.Name, dep)
			}
		}
	}

	pool := pond.NewPool(r.workers, pond.WithQueueSize(len(tasks)))
	defer pool.StopAndWait()

	var mu sync.Mutex
	statuses := make(map[string]Status, len(tasks))
	results := make([]TaskResult, 0, len(tasks))
	pending := make(map[string]Task, len(tasks))
	for name, t := range byName {
		pending[name] = t
	}

	for len(pending) > 0 {
		// Propagate skips until no new ones appear.
		for {
			skipped := false
			for name, t := range pending {
				for _, dep := range t.DependsOn {
					st, done := statuses[dep]
					if done && st != StatusSucceeded {
						statuses[name] = StatusSkipped
						results = append(results, TaskResult{Task: name, Status: StatusSkipped})
						r.metrics.IncTaskRun(name, obsmetrics.TaskStatusSkipped)
						r.log.Warn("pipeline.task.skipped",
							zap.String("task", name),
							zap.String("blocked_by", dep),
						)
						delete(pending, name)
						skipped = true
						break
					}
				}
			}
			if !skipped {
				break
			}
		}

		ready := make([]Task, 0, len(pending))
		for _, t := range pending {
			ok := true
			for _, dep := range t.DependsOn {
				if statuses[dep] != StatusSucceeded {
					ok = false
					break
				}
			}
			if ok {
				ready = append(ready, t)
			}
		}
		if len(ready) == 0 {
			if len(pending) == 0 {
				break
			}
			return nil, fmt.Errorf("dependency cycle among %d remaining tasks", len(pending))
		}
		sort.Slice(ready, func(i, j int) bool { return ready[i].Name < ready[j].Name })

		group := pool.NewGroupContext(ctx)
		for _, t := range ready {
			t := t
			delete(pending, t.Name)
			group.Submit(func() {
				started := time.Now()
				attempts, err := retry.WithBackoff(ctx, r.retry, r.log, t.Name, func() error {
					return t.Run(ctx)
				})
				r.metrics.ObserveTaskDuration(t.Name, time.Since(started))
				r.metrics.AddTaskRetries(t.Name, attempts-1)

				res := TaskResult{Task: t.Name, Status: StatusSucceeded, Attempts: attempts}
				if err != nil {
					res.Status = StatusFailed
					res.Err = err
					r.metrics.IncTaskRun(t.Name, obsmetrics.TaskStatusFailed)
					r.log.Error("pipeline.task.failed",
						zap.String("task", t.Name),
						zap.Int("attempts", attempts),
						zap.Error(err),
					)
				} else {
					r.metrics.IncTaskRun(t.Name, obsmetrics.TaskStatusSucceeded)
					r.log.Info("pipeline.task.done",
						zap.String("task", t.Name),
						zap.Int("attempts", attempts),
						zap.Duration("took", time.Since(started)),
					)
				}

				mu.Lock()
				statuses[t.Name] = res.Status
				results = append(results, res)
				mu.Unlock()
			})
		}
		if err := group.Wait(); err != nil && !anyFailed(results) {
			return results, err
		}
	}

	if err := runError(results); err != nil {
		return results, err
	}
	return results, nil
}

func anyFailed(results []TaskResult) bool {
	for _, res := range results {
		if res.Status == StatusFailed {
			return true
		}
	}
	return false
}

func runError(results []TaskResult) error {
	var failed []string
	var errs []error
	for _, res := range results {
		if res.Status == StatusFailed {
			failed = append(failed, res.Task)
			errs = append(errs, fmt.Errorf("%s: %w", res.Task, res.Err))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	sort.Strings(failed)
	return fmt.Errorf("tasks failed [%s]: %w", strings.Join(failed, ", "), errors.Join(errs...))
}
