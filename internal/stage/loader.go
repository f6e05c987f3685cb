package stage

import (
	"context"
	"fmt"

	"github.com/smallbiznis/loadstone/internal/entity"
	"github.com/smallbiznis/loadstone/internal/extract"
	"github.com/smallbiznis/loadstone/internal/store"
	"github.com/smallbiznis/loadstone/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Conns *db.Conns
	Store store.Store
	Log   *zap.Logger
}

// Loader rebuilds the staging tables from extract payloads. Every
// table is emptied first so a batch never sees a predecessor's rows.
type Loader struct {
	db   *gorm.DB
	bulk BulkLoader
	log  *zap.Logger
}

func NewLoader(p Params) *Loader {
	return &Loader{
		db:   p.Conns.Warehouse,
		bulk: NewBulkLoader(p.Conns.Warehouse, p.Store, p.Log),
		log:  p.Log.Named("stage"),
	}
}

// Run loads staging for every entity. It requires one extract result
// per entity: a missing result means extraction did not finish, and
// loading anything would tear consistency between entities.
func (l *Loader) Run(ctx context.Context, specs []entity.Spec, results []extract.Result) error {
	byEntity := make(map[string]extract.Result, len(results))
	for _, res := range results {
		byEntity[res.Entity] = res
	}

	var missing []string
	for _, spec := range specs {
		if _, ok := byEntity[spec.Name]; !ok {
			missing = append(missing, spec.Name)
		}
	}
	if len(missing) > 0 {
		return &extract.PartialError{Failed: missing}
	}

	for _, spec := range specs {
		res := byEntity[spec.Name]
		if err := l.loadOne(ctx, spec, res); err != nil {
			return fmt.Errorf("stage %s: %w", spec.Name, err)
		}
	}
	return nil
}

func (l *Loader) loadOne(ctx context.Context, spec entity.Spec, res extract.Result) error {
	if err := l.truncate(ctx, spec.StageTable); err != nil {
		return err
	}

	if res.Path == "" {
		l.log.Info("stage.entity.empty", zap.String("entity", spec.Name))
		return nil
	}

	rows, err := l.bulk.Load(ctx, spec.StageTable, res.Path, DefaultCSVOptions())
	if err != nil {
		return err
	}

	l.log.Info("stage.entity.done",
		zap.String("entity", spec.Name),
		zap.Int64("rows", rows),
	)
	return nil
}

func (l *Loader) truncate(ctx context.Context, table string) error {
	if err := l.db.WithContext(ctx).Exec("TRUNCATE " + table).Error; err == nil {
		return nil
	}
	return l.db.WithContext(ctx).Exec("DELETE FROM " + table).Error
}
