package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/loadstone/internal/batch"
	"github.com/smallbiznis/loadstone/internal/clock"
	"github.com/smallbiznis/loadstone/internal/config"
	"github.com/smallbiznis/loadstone/internal/entity"
	"github.com/smallbiznis/loadstone/internal/extract"
	"github.com/smallbiznis/loadstone/internal/history"
	obsmetrics "github.com/smallbiznis/loadstone/internal/observability/metrics"
	"github.com/smallbiznis/loadstone/internal/stage"
	"github.com/smallbiznis/loadstone/internal/summary"
	"github.com/smallbiznis/loadstone/internal/warehouse"
	"github.com/smallbiznis/loadstone/pkg/retry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Registry   *batch.Registry
	Extractor  *extract.Extractor
	Loader     *stage.Loader
	Merger     *warehouse.Merger
	Tracker    *history.Tracker
	Aggregator *summary.Aggregator
	Cfg        config.Config
	Holder     *config.PipelineConfigHolder
	Clock      clock.Clock
	Log        *zap.Logger
	Node       *snowflake.Node
}

// Pipeline runs one batch end to end: advance the batch, extract,
// stage, merge, historize, summarize, then mark the batch complete.
// Any failure leaves the batch log entry open in status S.
type Pipeline struct {
	registry   *batch.Registry
	extractor  *extract.Extractor
	loader     *stage.Loader
	merger     *warehouse.Merger
	tracker    *history.Tracker
	aggregator *summary.Aggregator
	cfg        config.Config
	holder     *config.PipelineConfigHolder
	clock      clock.Clock
	log        *zap.Logger
	node       *snowflake.Node
	specs      []entity.Spec
	metrics    *obsmetrics.PipelineMetrics
}

func New(p Params) *Pipeline {
	return &Pipeline{
		registry:   p.Registry,
		extractor:  p.Extractor,
		loader:     p.Loader,
		merger:     p.Merger,
		tracker:    p.Tracker,
		aggregator: p.Aggregator,
		cfg:        p.Cfg,
		holder:     p.Holder,
		clock:      p.Clock,
		log:        p.Log.Named("pipeline"),
		node:       p.Node,
		specs:      entity.All(),
		metrics: obsmetrics.PipelineWithConfig(obsmetrics.Config{
			ServiceName: p.Cfg.AppName,
			Environment: p.Cfg.Environment,
		}),
	}
}

// RunOnce executes a single batch. The batch number is always the
// current control number plus one.
func (p *Pipeline) RunOnce(ctx context.Context) error {
	log := p.log.With(zap.String("run_id", p.node.Generate().String()))
	started := time.Now()

	current, err := p.registry.Current(ctx)
	if err != nil {
		return fmt.Errorf("resolve current batch: %w", err)
	}
	batchNo := current.EtlBatchNo + 1
	batchDate, err := p.cfg.ResolveBatchDate(p.clock.Now())
	if err != nil {
		return err
	}

	if err := p.registry.Start(ctx, batchNo, batchDate); err != nil {
		return err
	}
	log.Info("pipeline.start",
		zap.Int64("etl_batch_no", batchNo),
		zap.Time("etl_batch_date", batchDate),
	)

	pcfg := p.holder.Get()
	runner := NewRunner(log, pcfg.MaxWorkers, retry.Config{
		MaxAttempts:   pcfg.MaxAttempts,
		InitialDelay:  pcfg.InitialBackoff,
		MaxDelay:      pcfg.MaxBackoff,
		Multiplier:    pcfg.Multiplier,
		JitterEnabled: true,
	}, p.metrics)

	results, err := runner.Run(ctx, p.buildTasks(batchNo, batchDate))
	if err != nil {
		p.metrics.IncBatchRun(obsmetrics.BatchStatusFailed)
		log.Error("pipeline.failed",
			zap.Int64("etl_batch_no", batchNo),
			zap.Int("tasks", len(results)),
			zap.Error(err),
		)
		return err
	}

	if err := p.registry.Complete(ctx, batchNo); err != nil {
		p.metrics.IncBatchRun(obsmetrics.BatchStatusFailed)
		return err
	}
	p.metrics.IncBatchRun(obsmetrics.BatchStatusCompleted)
	p.metrics.ObserveBatchDuration(time.Since(started))
	log.Info("pipeline.done",
		zap.Int64("etl_batch_no", batchNo),
		zap.Int("tasks", len(results)),
		zap.Duration("took", time.Since(started)),
	)
	return nil
}

// RunForever runs batches on a fixed interval until the context ends.
// A failed batch is logged and the loop keeps going; the open status S
// log entry is the operator's signal.
func (p *Pipeline) RunForever(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := p.RunOnce(ctx); err != nil {
			p.log.Error("pipeline.run.failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// buildTasks wires the batch DAG. Merge dependencies follow the
// entity parent references, so parents always merge before children
// and independent chains run concurrently.
func (p *Pipeline) buildTasks(batchNo int64, batchDate time.Time) []Task {
	specs := p.specs

	byWarehouseTable := make(map[string]string, len(specs))
	mergeNames := make([]string, 0, len(specs))
	for _, spec := range specs {
		byWarehouseTable[spec.WarehouseTable] = spec.Name
		mergeNames = append(mergeNames, "merge:"+spec.Name)
	}

	var (
		mu        sync.Mutex
		extracted []extract.Result
	)

	tasks := []Task{
		{
			Name: "extract",
			Run: func(ctx context.Context) error {
				results, err := p.extractor.Run(ctx, specs, batchDate)
				mu.Lock()
				extracted = results
				mu.Unlock()
				for _, res := range results {
					p.metrics.AddRowsExtracted(res.Entity, int(res.Rows))
				}
				return err
			},
		},
		{
			Name:      "stage",
			DependsOn: []string{"extract"},
			Run: func(ctx context.Context) error {
				mu.Lock()
				results := extracted
				mu.Unlock()
				if err := p.loader.Run(ctx, specs, results); err != nil {
					return err
				}
				for _, res := range results {
					p.metrics.AddRowsLoaded(res.Entity, int(res.Rows))
				}
				return nil
			},
		},
	}

	for _, spec := range specs {
		spec := spec
		deps := []string{"stage"}
		for _, parent := range spec.Parents {
			if name, ok := byWarehouseTable[parent.ParentTable]; ok && name != spec.Name {
				deps = append(deps, "merge:"+name)
			}
		}
		tasks = append(tasks, Task{
			Name:      "merge:" + spec.Name,
			DependsOn: deps,
			Run: func(ctx context.Context) error {
				return p.merger.MergeEntity(ctx, spec, batchNo, batchDate)
			},
		})
	}

	var historyNames []string
	for _, hs := range history.Specs() {
		hs := hs
		deps := []string{"stage"}
		if name, ok := byWarehouseTable[hs.DimensionTable]; ok {
			deps = []string{"merge:" + name}
		}
		historyNames = append(historyNames, "history:"+hs.Name)
		tasks = append(tasks, Task{
			Name:      "history:" + hs.Name,
			DependsOn: deps,
			Run: func(ctx context.Context) error {
				return p.tracker.Track(ctx, hs, batchNo, batchDate)
			},
		})
	}

	// Summaries read across the merged warehouse and run once the
	// historization of the batch is settled.
	summaryDeps := append(append([]string{}, mergeNames...), historyNames...)
	tasks = append(tasks,
		Task{
			Name:      "summary:daily:customer",
			DependsOn: summaryDeps,
			Run: func(ctx context.Context) error {
				return p.aggregator.DailyCustomer(ctx, batchNo, batchDate)
			},
		},
		Task{
			Name:      "summary:daily:product",
			DependsOn: summaryDeps,
			Run: func(ctx context.Context) error {
				return p.aggregator.DailyProduct(ctx, batchNo, batchDate)
			},
		},
		Task{
			Name:      "summary:monthly:customer",
			DependsOn: []string{"summary:daily:customer"},
			Run: func(ctx context.Context) error {
				return p.aggregator.MonthlyCustomer(ctx, batchNo, batchDate)
			},
		},
		Task{
			Name:      "summary:monthly:product",
			DependsOn: []string{"summary:daily:product"},
			Run: func(ctx context.Context) error {
				return p.aggregator.MonthlyProduct(ctx, batchNo, batchDate)
			},
		},
	)

	return tasks
}
