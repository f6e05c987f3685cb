package extract

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/smallbiznis/loadstone/internal/config"
	"github.com/smallbiznis/loadstone/internal/entity"
	"github.com/smallbiznis/loadstone/internal/store"
	"github.com/smallbiznis/loadstone/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Result describes one entity extract. Path is empty when the
// watermark matched no rows; no file is written in that case.
type Result struct {
	Entity string
	Rows   int64
	Path   string
}

// PartialError reports the entities whose extract failed. Downstream
// loading must not start while this error is present.
type PartialError struct {
	Failed []string
	errs   []error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("extraction incomplete, failed entities: %s", strings.Join(e.Failed, ", "))
}

func (e *PartialError) Unwrap() []error { return e.errs }

type Params struct {
	fx.In

	Conns  *db.Conns
	Store  store.Store
	Log    *zap.Logger
	Cfg    config.Config
	Holder *config.PipelineConfigHolder
}

// Extractor pulls changed source rows into per-entity CSV payloads.
type Extractor struct {
	source  *gorm.DB
	store   store.Store
	log     *zap.Logger
	workers int
}

func NewExtractor(p Params) *Extractor {
	workers := p.Cfg.MaxExtractWorkers
	if holder := p.Holder; holder != nil {
		if w := holder.Get().MaxWorkers; w > 0 {
			workers = w
		}
	}
	if workers < 1 {
		workers = 1
	}
	return &Extractor{
		source:  p.Conns.Source,
		store:   p.Store,
		log:     p.Log.Named("extract"),
		workers: workers,
	}
}

// Run extracts every entity concurrently. Rows qualify when their
// update_timestamp is strictly after midnight of the batch date. All
// entities are attempted even when some fail; a PartialError is
// returned alongside the successful results.
func (e *Extractor) Run(ctx context.Context, specs []entity.Spec, batchDate time.Time) ([]Result, error) {
	pool := pond.NewPool(e.workers, pond.WithQueueSize(len(specs)))
	defer pool.StopAndWait()

	group := pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	var mu sync.Mutex
	results := make([]Result, 0, len(specs))
	failures := map[string]error{}

	for _, spec := range specs {
		spec := spec
		group.Submit(func() {
			if err := groupCtx.Err(); err != nil {
				mu.Lock()
				failures[spec.Name] = err
				mu.Unlock()
				return
			}

			res, err := e.extractOne(groupCtx, spec, batchDate)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[spec.Name] = err
				return
			}
			results = append(results, res)
		})
	}

	// Individual task errors are collected, not propagated, so the
	// group wait only fails on context cancellation.
	if err := group.Wait(); err != nil && len(failures) == 0 {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Entity < results[j].Entity })

	if len(failures) > 0 {
		perr := &PartialError{}
		for name, err := range failures {
			perr.Failed = append(perr.Failed, name)
			perr.errs = append(perr.errs, fmt.Errorf("extract %s: %w", name, err))
		}
		sort.Strings(perr.Failed)
		return results, perr
	}
	return results, nil
}

func (e *Extractor) extractOne(ctx context.Context, spec entity.Spec, batchDate time.Time) (Result, error) {
	cols := spec.SourceColumns()
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE update_timestamp > ?",
		strings.Join(cols, ", "),
		spec.SourceTable,
	)

	rows, err := e.source.WithContext(ctx).Raw(query, batchDate).Rows()
	if err != nil {
		return Result{}, fmt.Errorf("query source: %w", err)
	}
	defer rows.Close()

	path := store.ObjectPath(spec.Name, batchDate)
	count, err := writeCSV(e.store, path, cols, rows)
	if err != nil {
		return Result{}, err
	}

	res := Result{Entity: spec.Name, Rows: count}
	if count > 0 {
		res.Path = path
	}

	e.log.Info("extract.entity.done",
		zap.String("entity", spec.Name),
		zap.Int64("rows", count),
		zap.Bool("payload_written", count > 0),
	)
	return res, nil
}
