package history

import "time"

// History rows version a single tracked attribute per dimension key.
// Exactly one row per key is active at a time; closed rows keep a
// half-open [from, to] date range that never overlaps a neighbor.

type CustomerHistory struct {
	ID                 int64      `gorm:"column:id;primaryKey;autoIncrement"`
	DWCustomerID       int64      `gorm:"column:dw_customer_id;index"`
	CreditLimit        *float64   `gorm:"column:credit_limit"`
	EffectiveFromDate  time.Time  `gorm:"column:effective_from_date"`
	EffectiveToDate    *time.Time `gorm:"column:effective_to_date"`
	DWActiveRecordInd  int        `gorm:"column:dw_active_record_ind"`
	CreateEtlBatchNo   int64      `gorm:"column:create_etl_batch_no"`
	CreateEtlBatchDate *time.Time `gorm:"column:create_etl_batch_date"`
	UpdateEtlBatchNo   *int64     `gorm:"column:update_etl_batch_no"`
	UpdateEtlBatchDate *time.Time `gorm:"column:update_etl_batch_date"`
	DWCreateTimestamp  *time.Time `gorm:"column:dw_create_timestamp"`
	DWUpdateTimestamp  *time.Time `gorm:"column:dw_update_timestamp"`
}

func (CustomerHistory) TableName() string { return "customer_history" }

type ProductHistory struct {
	ID                 int64      `gorm:"column:id;primaryKey;autoIncrement"`
	DWProductID        int64      `gorm:"column:dw_product_id;index"`
	MSRP               *float64   `gorm:"column:msrp"`
	EffectiveFromDate  time.Time  `gorm:"column:effective_from_date"`
	EffectiveToDate    *time.Time `gorm:"column:effective_to_date"`
	DWActiveRecordInd  int        `gorm:"column:dw_active_record_ind"`
	CreateEtlBatchNo   int64      `gorm:"column:create_etl_batch_no"`
	CreateEtlBatchDate *time.Time `gorm:"column:create_etl_batch_date"`
	UpdateEtlBatchNo   *int64     `gorm:"column:update_etl_batch_no"`
	UpdateEtlBatchDate *time.Time `gorm:"column:update_etl_batch_date"`
	DWCreateTimestamp  *time.Time `gorm:"column:dw_create_timestamp"`
	DWUpdateTimestamp  *time.Time `gorm:"column:dw_update_timestamp"`
}

func (ProductHistory) TableName() string { return "product_history" }

// Models lists every history model for migration helpers and tests.
func Models() []any {
	return []any{&CustomerHistory{}, &ProductHistory{}}
}
