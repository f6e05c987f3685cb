package batch

import "time"

const (
	// StatusStarted marks a batch that opened but has not finished.
	StatusStarted = "S"
	// StatusCompleted marks a batch whose every stage succeeded.
	StatusCompleted = "C"
)

// Control is the singleton row naming the current batch. Every
// warehouse write stamps its etl_batch_no and etl_batch_date.
type Control struct {
	EtlBatchNo   int64     `gorm:"column:etl_batch_no"`
	EtlBatchDate time.Time `gorm:"column:etl_batch_date"`
}

func (Control) TableName() string { return "batch_control" }

// ControlLog is the append-only run history. A run that never reaches
// completion stays in status S, which is how operators find stuck
// batches.
type ControlLog struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement"`
	EtlBatchNo   int64      `gorm:"column:etl_batch_no;index"`
	EtlBatchDate time.Time  `gorm:"column:etl_batch_date"`
	Status       string     `gorm:"column:etl_batch_status;size:1"`
	StartTime    time.Time  `gorm:"column:etl_batch_start_time"`
	EndTime      *time.Time `gorm:"column:etl_batch_end_time"`
}

func (ControlLog) TableName() string { return "batch_control_log" }
