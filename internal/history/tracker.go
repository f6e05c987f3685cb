package history

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Spec names one tracked dimension attribute.
type Spec struct {
	Name           string
	DimensionTable string
	HistoryTable   string
	Surrogate      string
	TrackedColumn  string
}

// Specs returns the tracked attributes: customer credit limits and
// product list prices.
func Specs() []Spec {
	return []Spec{
		{
			Name:           "customers",
			DimensionTable: "dw_customers",
			HistoryTable:   "customer_history",
			Surrogate:      "dw_customer_id",
			TrackedColumn:  "credit_limit",
		},
		{
			Name:           "products",
			DimensionTable: "dw_products",
			HistoryTable:   "product_history",
			Surrogate:      "dw_product_id",
			TrackedColumn:  "msrp",
		},
	}
}

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

// Tracker maintains type 2 history. Each batch closes versions whose
// tracked value changed and opens a fresh active version for every key
// without one, in a single transaction.
type Tracker struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewTracker(p Params) *Tracker {
	return &Tracker{
		db:  p.DB,
		log: p.Log.Named("history"),
	}
}

func (t *Tracker) Track(ctx context.Context, spec Spec, batchNo int64, batchDate time.Time) error {
	// A closed version ends the day before the new one starts, so the
	// ranges chain without gaps or overlap.
	effectiveTo := batchDate.AddDate(0, 0, -1)

	var closed, opened int64

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(buildCloseSQL(spec), effectiveTo, batchNo, batchDate)
		if res.Error != nil {
			return fmt.Errorf("close phase: %w", res.Error)
		}
		closed = res.RowsAffected

		res = tx.Exec(buildOpenSQL(spec), batchDate, batchNo, batchDate)
		if res.Error != nil {
			return fmt.Errorf("open phase: %w", res.Error)
		}
		opened = res.RowsAffected
		return nil
	})
	if err != nil {
		return fmt.Errorf("track %s history: %w", spec.Name, err)
	}

	t.log.Info("history.track.done",
		zap.String("entity", spec.Name),
		zap.Int64("closed", closed),
		zap.Int64("opened", opened),
		zap.Int64("etl_batch_no", batchNo),
	)
	return nil
}

// TrackAll runs every tracked attribute.
func (t *Tracker) TrackAll(ctx context.Context, batchNo int64, batchDate time.Time) error {
	for _, spec := range Specs() {
		if err := t.Track(ctx, spec, batchNo, batchDate); err != nil {
			return err
		}
	}
	return nil
}

func buildCloseSQL(spec Spec) string {
	return fmt.Sprintf(
		`UPDATE %s AS h SET
			dw_active_record_ind = 0,
			effective_to_date = ?,
			update_etl_batch_no = ?,
			update_etl_batch_date = ?,
			dw_update_timestamp = CURRENT_TIMESTAMP
		FROM %s AS d
		WHERE h.%s = d.%s
		  AND h.dw_active_record_ind = 1
		  AND d.%s <> h.%s`,
		spec.HistoryTable, spec.DimensionTable,
		spec.Surrogate, spec.Surrogate,
		spec.TrackedColumn, spec.TrackedColumn,
	)
}

func buildOpenSQL(spec Spec) string {
	return fmt.Sprintf(
		`INSERT INTO %s
			(%s, %s, effective_from_date, dw_active_record_ind,
			 create_etl_batch_no, create_etl_batch_date, dw_create_timestamp)
		SELECT d.%s, d.%s, ?, 1, ?, ?, CURRENT_TIMESTAMP
		FROM %s AS d
		LEFT JOIN %s AS h ON h.%s = d.%s AND h.dw_active_record_ind = 1
		WHERE h.%s IS NULL`,
		spec.HistoryTable,
		spec.Surrogate, spec.TrackedColumn,
		spec.Surrogate, spec.TrackedColumn,
		spec.DimensionTable,
		spec.HistoryTable, spec.Surrogate, spec.Surrogate,
		spec.Surrogate,
	)
}
