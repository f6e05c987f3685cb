package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smallbiznis/loadstone/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrBatchUnavailable means batch_control has no row yet. The
	// warehouse must be seeded with an initial batch before the first run.
	ErrBatchUnavailable = errors.New("batch control row unavailable")

	// ErrUnknownBatch means the batch number has no open log entry.
	ErrUnknownBatch = errors.New("unknown batch")

	// ErrBatchNotMonotonic means a start was attempted with a batch
	// number other than current+1.
	ErrBatchNotMonotonic = errors.New("batch number not monotonic")
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

// Registry owns the batch_control singleton and the batch_control_log
// run history.
type Registry struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func NewRegistry(p Params) *Registry {
	return &Registry{
		db:    p.DB,
		log:   p.Log.Named("batch"),
		clock: p.Clock,
	}
}

// Current returns the batch the warehouse last ran under.
func (r *Registry) Current(ctx context.Context) (Control, error) {
	var rows []Control
	if err := r.db.WithContext(ctx).
		Raw(`SELECT etl_batch_no, etl_batch_date FROM batch_control`).
		Scan(&rows).Error; err != nil {
		return Control{}, fmt.Errorf("read batch control: %w", err)
	}
	if len(rows) == 0 {
		return Control{}, ErrBatchUnavailable
	}
	return rows[0], nil
}

// Start opens batch no with the given batch date: it advances the
// control row and appends a started log entry. The number must be
// exactly one past the current batch.
func (r *Registry) Start(ctx context.Context, no int64, date time.Time) error {
	current, err := r.Current(ctx)
	if err != nil {
		return err
	}
	if no != current.EtlBatchNo+1 {
		return fmt.Errorf("%w: have %d, got %d", ErrBatchNotMonotonic, current.EtlBatchNo, no)
	}

	date = midnightUTC(date)
	now := r.clock.Now()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`UPDATE batch_control SET etl_batch_no = ?, etl_batch_date = ?`,
			no, date,
		).Error; err != nil {
			return err
		}
		entry := ControlLog{
			EtlBatchNo:   no,
			EtlBatchDate: date,
			Status:       StatusStarted,
			StartTime:    now,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return fmt.Errorf("start batch %d: %w", no, err)
	}

	r.log.Info("batch.start",
		zap.Int64("etl_batch_no", no),
		zap.Time("etl_batch_date", date),
	)
	return nil
}

// Complete closes the open log entry for batch no. It is called only
// after every downstream stage succeeded; a failed run leaves the entry
// in status S.
func (r *Registry) Complete(ctx context.Context, no int64) error {
	now := r.clock.Now()

	res := r.db.WithContext(ctx).Exec(
		`UPDATE batch_control_log
		 SET etl_batch_status = ?, etl_batch_end_time = ?
		 WHERE etl_batch_no = ? AND etl_batch_status = ?`,
		StatusCompleted, now, no, StatusStarted,
	)
	if res.Error != nil {
		return fmt.Errorf("complete batch %d: %w", no, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: no open entry for batch %d", ErrUnknownBatch, no)
	}

	r.log.Info("batch.complete", zap.Int64("etl_batch_no", no))
	return nil
}

// Seed inserts the initial control row. It is a no-op when the row
// already exists.
func (r *Registry) Seed(ctx context.Context, no int64, date time.Time) error {
	_, err := r.Current(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrBatchUnavailable) {
		return err
	}
	seed := Control{EtlBatchNo: no, EtlBatchDate: midnightUTC(date)}
	if err := r.db.WithContext(ctx).Create(&seed).Error; err != nil {
		return fmt.Errorf("seed batch control: %w", err)
	}
	r.log.Info("batch.seed", zap.Int64("etl_batch_no", no))
	return nil
}

func midnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
