package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/smallbiznis/loadstone/internal/entity"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

// Merger folds staged rows into the warehouse tables. Matched rows are
// refreshed in place, new rows are inserted with freshly resolved
// surrogate keys, and both carry the producing batch's stamp.
type Merger struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewMerger(p Params) *Merger {
	return &Merger{
		db:  p.DB,
		log: p.Log.Named("warehouse"),
	}
}

// MergeEntity runs a single entity's merge in one transaction, so a
// failure leaves the table exactly as the previous batch wrote it.
func (m *Merger) MergeEntity(ctx context.Context, spec entity.Spec, batchNo int64, batchDate time.Time) error {
	var updated, inserted int64

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(buildUpdateSQL(spec), batchNo, batchDate)
		if res.Error != nil {
			return fmt.Errorf("update phase: %w", res.Error)
		}
		updated = res.RowsAffected

		res = tx.Exec(buildInsertSQL(spec), batchNo, batchDate)
		if res.Error != nil {
			return fmt.Errorf("insert phase: %w", res.Error)
		}
		inserted = res.RowsAffected

		if spec.Self != nil {
			if err := tx.Exec(buildSelfRefSQL(spec)).Error; err != nil {
				return fmt.Errorf("self reference pass: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("merge %s: %w", spec.Name, err)
	}

	m.log.Info("warehouse.merge.done",
		zap.String("entity", spec.Name),
		zap.Int64("updated", updated),
		zap.Int64("inserted", inserted),
		zap.Int64("etl_batch_no", batchNo),
	)
	return nil
}

// MergeAll merges every entity in dependency order.
func (m *Merger) MergeAll(ctx context.Context, specs []entity.Spec, batchNo int64, batchDate time.Time) error {
	for _, spec := range specs {
		if err := m.MergeEntity(ctx, spec, batchNo, batchDate); err != nil {
			return err
		}
	}
	return nil
}
