package summary

import "time"

// Daily summaries are written once per (day, key) by the batch that
// observed the activity. Monthly summaries fold daily rows additively,
// so they are updated in place across batches.

type DailyCustomerSummary struct {
	ID                   int64      `gorm:"column:id;primaryKey;autoIncrement"`
	SummaryDate          time.Time  `gorm:"column:summary_date;index"`
	DWCustomerID         int64      `gorm:"column:dw_customer_id;index"`
	OrderCount           int64      `gorm:"column:order_count"`
	OrderAPD             int64      `gorm:"column:order_apd"`
	OrderAmount          float64    `gorm:"column:order_amount"`
	OrderCostAmount      float64    `gorm:"column:order_cost_amount"`
	OrderMRPAmount       float64    `gorm:"column:order_mrp_amount"`
	ProductsOrderedQty   int64      `gorm:"column:products_ordered_qty"`
	ProductsItemsQty     int64      `gorm:"column:products_items_qty"`
	CancelledOrderCount  int64      `gorm:"column:cancelled_order_count"`
	CancelledOrderAmount float64    `gorm:"column:cancelled_order_amount"`
	CancelledOrderAPD    int64      `gorm:"column:cancelled_order_apd"`
	ShippedOrderCount    int64      `gorm:"column:shipped_order_count"`
	ShippedOrderAmount   float64    `gorm:"column:shipped_order_amount"`
	ShippedOrderAPD      int64      `gorm:"column:shipped_order_apd"`
	PaymentAPD           int64      `gorm:"column:payment_apd"`
	PaymentAmount        float64    `gorm:"column:payment_amount"`
	NewCustomerAPD       int64      `gorm:"column:new_customer_apd"`
	NewCustomerPaidAPD   int64      `gorm:"column:new_customer_paid_apd"`
	DWCreateTimestamp    *time.Time `gorm:"column:dw_create_timestamp"`
	EtlBatchNo           int64      `gorm:"column:etl_batch_no"`
	EtlBatchDate         *time.Time `gorm:"column:etl_batch_date"`
}

func (DailyCustomerSummary) TableName() string { return "daily_customer_summary" }

type MonthlyCustomerSummary struct {
	ID                   int64      `gorm:"column:id;primaryKey;autoIncrement"`
	StartOfTheMonthDate  time.Time  `gorm:"column:start_of_the_month_date;uniqueIndex:idx_mcs_key"`
	DWCustomerID         int64      `gorm:"column:dw_customer_id;uniqueIndex:idx_mcs_key"`
	OrderCount           int64      `gorm:"column:order_count"`
	OrderAPD             int64      `gorm:"column:order_apd"`
	OrderAPM             int64      `gorm:"column:order_apm"`
	OrderAmount          float64    `gorm:"column:order_amount"`
	OrderCostAmount      float64    `gorm:"column:order_cost_amount"`
	OrderMRPAmount       float64    `gorm:"column:order_mrp_amount"`
	ProductsOrderedQty   int64      `gorm:"column:products_ordered_qty"`
	ProductsItemsQty     int64      `gorm:"column:products_items_qty"`
	CancelledOrderCount  int64      `gorm:"column:cancelled_order_count"`
	CancelledOrderAmount float64    `gorm:"column:cancelled_order_amount"`
	CancelledOrderAPD    int64      `gorm:"column:cancelled_order_apd"`
	CancelledOrderAPM    int64      `gorm:"column:cancelled_order_apm"`
	ShippedOrderCount    int64      `gorm:"column:shipped_order_count"`
	ShippedOrderAmount   float64    `gorm:"column:shipped_order_amount"`
	ShippedOrderAPD      int64      `gorm:"column:shipped_order_apd"`
	ShippedOrderAPM      int64      `gorm:"column:shipped_order_apm"`
	PaymentAPD           int64      `gorm:"column:payment_apd"`
	PaymentAPM           int64      `gorm:"column:payment_apm"`
	PaymentAmount        float64    `gorm:"column:payment_amount"`
	NewCustomerAPD       int64      `gorm:"column:new_customer_apd"`
	NewCustomerAPM       int64      `gorm:"column:new_customer_apm"`
	NewCustomerPaidAPD   int64      `gorm:"column:new_customer_paid_apd"`
	NewCustomerPaidAPM   int64      `gorm:"column:new_customer_paid_apm"`
	DWCreateTimestamp    *time.Time `gorm:"column:dw_create_timestamp"`
	DWUpdateTimestamp    *time.Time `gorm:"column:dw_update_timestamp"`
	EtlBatchNo           int64      `gorm:"column:etl_batch_no"`
	EtlBatchDate         *time.Time `gorm:"column:etl_batch_date"`
}

func (MonthlyCustomerSummary) TableName() string { return "monthly_customer_summary" }

type DailyProductSummary struct {
	ID                  int64      `gorm:"column:id;primaryKey;autoIncrement"`
	SummaryDate         time.Time  `gorm:"column:summary_date;index"`
	DWProductID         int64      `gorm:"column:dw_product_id;index"`
	CustomerAPD         int64      `gorm:"column:customer_apd"`
	ProductCostAmount   float64    `gorm:"column:product_cost_amount"`
	ProductMRPAmount    float64    `gorm:"column:product_mrp_amount"`
	CancelledProductQty int64      `gorm:"column:cancelled_product_qty"`
	CancelledCostAmount float64    `gorm:"column:cancelled_cost_amount"`
	CancelledMRPAmount  float64    `gorm:"column:cancelled_mrp_amount"`
	CancelledOrderAPD   int64      `gorm:"column:cancelled_order_apd"`
	DWCreateTimestamp   *time.Time `gorm:"column:dw_create_timestamp"`
	EtlBatchNo          int64      `gorm:"column:etl_batch_no"`
	EtlBatchDate        *time.Time `gorm:"column:etl_batch_date"`
}

func (DailyProductSummary) TableName() string { return "daily_product_summary" }

type MonthlyProductSummary struct {
	ID                  int64      `gorm:"column:id;primaryKey;autoIncrement"`
	StartOfTheMonthDate time.Time  `gorm:"column:start_of_the_month_date;uniqueIndex:idx_mps_key"`
	DWProductID         int64      `gorm:"column:dw_product_id;uniqueIndex:idx_mps_key"`
	CustomerAPD         int64      `gorm:"column:customer_apd"`
	CustomerAPM         int64      `gorm:"column:customer_apm"`
	ProductCostAmount   float64    `gorm:"column:product_cost_amount"`
	ProductMRPAmount    float64    `gorm:"column:product_mrp_amount"`
	CancelledProductQty int64      `gorm:"column:cancelled_product_qty"`
	CancelledCostAmount float64    `gorm:"column:cancelled_cost_amount"`
	CancelledMRPAmount  float64    `gorm:"column:cancelled_mrp_amount"`
	CancelledOrderAPD   int64      `gorm:"column:cancelled_order_apd"`
	CancelledOrderAPM   int64      `gorm:"column:cancelled_order_apm"`
	DWCreateTimestamp   *time.Time `gorm:"column:dw_create_timestamp"`
	DWUpdateTimestamp   *time.Time `gorm:"column:dw_update_timestamp"`
	EtlBatchNo          int64      `gorm:"column:etl_batch_no"`
	EtlBatchDate        *time.Time `gorm:"column:etl_batch_date"`
}

func (MonthlyProductSummary) TableName() string { return "monthly_product_summary" }

// Models lists every summary model for migration helpers and tests.
func Models() []any {
	return []any{
		&DailyCustomerSummary{}, &MonthlyCustomerSummary{},
		&DailyProductSummary{}, &MonthlyProductSummary{},
	}
}
