package summary

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/smallbiznis/loadstone/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

// Aggregator builds the daily and monthly summary tables from the
// merged warehouse. Daily rows are written fresh by the batch that
// observed the activity; monthly rows fold daily rows additively.
type Aggregator struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func NewAggregator(p Params) *Aggregator {
	return &Aggregator{
		db:    p.DB,
		log:   p.Log.Named("summary"),
		clock: p.Clock,
	}
}

// Measure groups never overlap: each group fills only its own columns
// and zeroes the rest. The partials group by the raw event timestamp,
// so one group can yield several partials for the same calendar day;
// each partial covers a disjoint set of events, which makes counts and
// amounts exact under addition while the *_apd flags clamp to 1.
// Distinct products per day cannot be added across partials and are
// counted in Go from row-level order lines.

var dailyCustomerGroups = []string{
	// Orders placed.
	`SELECT o.order_date AS summary_date,
		o.dw_customer_id AS dw_customer_id,
		COUNT(DISTINCT o.dw_order_id) AS order_count,
		1 AS order_apd,
		SUM(od.price_each * od.quantity_ordered) AS order_amount,
		SUM(p.buy_price * od.quantity_ordered) AS order_cost_amount,
		SUM(p.msrp * od.quantity_ordered) AS order_mrp_amount,
		SUM(od.quantity_ordered) AS products_items_qty
	FROM dw_orders o
	JOIN dw_order_details od ON od.dw_order_id = o.dw_order_id
	JOIN dw_products p ON p.dw_product_id = od.dw_product_id
	WHERE o.order_date >= ?
	GROUP BY o.order_date, o.dw_customer_id`,

	// Orders cancelled.
	`SELECT o.cancelled_date AS summary_date,
		o.dw_customer_id AS dw_customer_id,
		COUNT(DISTINCT o.dw_order_id) AS cancelled_order_count,
		SUM(od.price_each * od.quantity_ordered) AS cancelled_order_amount,
		1 AS cancelled_order_apd
	FROM dw_orders o
	JOIN dw_order_details od ON od.dw_order_id = o.dw_order_id
	WHERE o.cancelled_date >= ?
	GROUP BY o.cancelled_date, o.dw_customer_id`,

	// Orders shipped.
	`SELECT o.shipped_date AS summary_date,
		o.dw_customer_id AS dw_customer_id,
		COUNT(DISTINCT o.dw_order_id) AS shipped_order_count,
		SUM(od.price_each * od.quantity_ordered) AS shipped_order_amount,
		1 AS shipped_order_apd
	FROM dw_orders o
	JOIN dw_order_details od ON od.dw_order_id = o.dw_order_id
	WHERE o.shipped_date >= ? AND o.status = 'Shipped'
	GROUP BY o.shipped_date, o.dw_customer_id`,

	// Payments received.
	`SELECT p.payment_date AS summary_date,
		p.dw_customer_id AS dw_customer_id,
		1 AS payment_apd,
		SUM(p.amount) AS payment_amount
	FROM dw_payments p
	WHERE p.payment_date >= ?
	GROUP BY p.payment_date, p.dw_customer_id`,

	// Customers first seen. src_create_timestamp carries a time of
	// day, so the day normalization happens in Go with the others.
	`SELECT c.src_create_timestamp AS summary_date,
		c.dw_customer_id AS dw_customer_id,
		1 AS new_customer_apd
	FROM dw_customers c
	WHERE c.src_create_timestamp >= ?`,
}

// orderedProductsQuery feeds the Go-side distinct count behind
// products_ordered_qty, one row per order line.
const orderedProductsQuery = `SELECT o.order_date AS summary_date,
	o.dw_customer_id AS dw_customer_id,
	od.dw_product_id AS dw_product_id
FROM dw_orders o
JOIN dw_order_details od ON od.dw_order_id = o.dw_order_id
WHERE o.order_date >= ?`

type orderedProductRow struct {
	SummaryDate  time.Time
	DWCustomerID int64
	DWProductID  int64
}

var dailyProductGroups = []string{
	// Products ordered.
	`SELECT o.order_date AS summary_date,
		p.dw_product_id AS dw_product_id,
		1 AS customer_apd,
		SUM(od.quantity_ordered * od.price_each) AS product_cost_amount,
		SUM(od.quantity_ordered * p.msrp) AS product_mrp_amount
	FROM dw_products p
	JOIN dw_order_details od ON od.dw_product_id = p.dw_product_id
	JOIN dw_orders o ON o.dw_order_id = od.dw_order_id
	WHERE o.order_date >= ?
	GROUP BY o.order_date, p.dw_product_id`,

	// Products on cancelled orders.
	`SELECT o.cancelled_date AS summary_date,
		p.dw_product_id AS dw_product_id,
		1 AS customer_apd,
		COUNT(DISTINCT o.dw_order_id) AS cancelled_product_qty,
		SUM(od.quantity_ordered * od.price_each) AS cancelled_cost_amount,
		SUM(od.quantity_ordered * p.msrp) AS cancelled_mrp_amount,
		1 AS cancelled_order_apd
	FROM dw_products p
	JOIN dw_order_details od ON od.dw_product_id = p.dw_product_id
	JOIN dw_orders o ON o.dw_order_id = od.dw_order_id
	WHERE o.cancelled_date >= ?
	GROUP BY o.cancelled_date, p.dw_product_id`,
}

// DailyCustomer builds daily_customer_summary rows for activity on or
// after the batch date. Rows are inserted fresh: re-running a batch
// would duplicate them, so the pipeline runs this at most once per batch.
func (a *Aggregator) DailyCustomer(ctx context.Context, batchNo int64, batchDate time.Time) error {
	merged := map[dayKey]*DailyCustomerSummary{}

	for _, query := range dailyCustomerGroups {
		var partials []DailyCustomerSummary
		if err := a.db.WithContext(ctx).Raw(query, batchDate).Scan(&partials).Error; err != nil {
			return fmt.Errorf("daily customer summary: %w", err)
		}
		for i := range partials {
			part := partials[i]
			key := dayKey{Day: dayOf(part.SummaryDate), ID: part.DWCustomerID}
			row, ok := merged[key]
			if !ok {
				row = &DailyCustomerSummary{SummaryDate: key.Day, DWCustomerID: key.ID}
				merged[key] = row
			}
			row.addMerge(part)
		}
	}

	var lines []orderedProductRow
	if err := a.db.WithContext(ctx).Raw(orderedProductsQuery, batchDate).Scan(&lines).Error; err != nil {
		return fmt.Errorf("daily customer summary: %w", err)
	}
	distinct := map[dayKey]map[int64]struct{}{}
	for _, line := range lines {
		key := dayKey{Day: dayOf(line.SummaryDate), ID: line.DWCustomerID}
		if distinct[key] == nil {
			distinct[key] = map[int64]struct{}{}
		}
		distinct[key][line.DWProductID] = struct{}{}
	}
	for key, products := range distinct {
		if row, ok := merged[key]; ok {
			row.ProductsOrderedQty = int64(len(products))
		}
	}

	rows := make([]DailyCustomerSummary, 0, len(merged))
	now := a.clock.Now()
	for _, row := range merged {
		row.DWCreateTimestamp = &now
		row.EtlBatchNo = batchNo
		row.EtlBatchDate = &batchDate
		rows = append(rows, *row)
	}
	sortDailyCustomer(rows)

	if len(rows) > 0 {
		if err := a.db.WithContext(ctx).Create(&rows).Error; err != nil {
			return fmt.Errorf("insert daily customer summary: %w", err)
		}
	}

	a.log.Info("summary.daily_customer.done",
		zap.Int("rows", len(rows)),
		zap.Int64("etl_batch_no", batchNo),
	)
	return nil
}

// DailyProduct builds daily_product_summary the same way.
func (a *Aggregator) DailyProduct(ctx context.Context, batchNo int64, batchDate time.Time) error {
	merged := map[dayKey]*DailyProductSummary{}

	for _, query := range dailyProductGroups {
		var partials []DailyProductSummary
		if err := a.db.WithContext(ctx).Raw(query, batchDate).Scan(&partials).Error; err != nil {
			return fmt.Errorf("daily product summary: %w", err)
		}
		for i := range partials {
			part := partials[i]
			key := dayKey{Day: dayOf(part.SummaryDate), ID: part.DWProductID}
			row, ok := merged[key]
			if !ok {
				row = &DailyProductSummary{SummaryDate: key.Day, DWProductID: key.ID}
				merged[key] = row
			}
			row.addMerge(part)
		}
	}

	rows := make([]DailyProductSummary, 0, len(merged))
	now := a.clock.Now()
	for _, row := range merged {
		row.DWCreateTimestamp = &now
		row.EtlBatchNo = batchNo
		row.EtlBatchDate = &batchDate
		rows = append(rows, *row)
	}
	sortDailyProduct(rows)

	if len(rows) > 0 {
		if err := a.db.WithContext(ctx).Create(&rows).Error; err != nil {
			return fmt.Errorf("insert daily product summary: %w", err)
		}
	}

	a.log.Info("summary.daily_product.done",
		zap.Int("rows", len(rows)),
		zap.Int64("etl_batch_no", batchNo),
	)
	return nil
}

type dayKey struct {
	Day time.Time
	ID  int64
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (d *DailyCustomerSummary) addMerge(src DailyCustomerSummary) {
	d.OrderCount += src.OrderCount
	d.OrderAPD = maxI(d.OrderAPD, src.OrderAPD)
	d.OrderAmount += src.OrderAmount
	d.OrderCostAmount += src.OrderCostAmount
	d.OrderMRPAmount += src.OrderMRPAmount
	d.ProductsItemsQty += src.ProductsItemsQty
	d.CancelledOrderCount += src.CancelledOrderCount
	d.CancelledOrderAmount += src.CancelledOrderAmount
	d.CancelledOrderAPD = maxI(d.CancelledOrderAPD, src.CancelledOrderAPD)
	d.ShippedOrderCount += src.ShippedOrderCount
	d.ShippedOrderAmount += src.ShippedOrderAmount
	d.ShippedOrderAPD = maxI(d.ShippedOrderAPD, src.ShippedOrderAPD)
	d.PaymentAPD = maxI(d.PaymentAPD, src.PaymentAPD)
	d.PaymentAmount += src.PaymentAmount
	d.NewCustomerAPD = maxI(d.NewCustomerAPD, src.NewCustomerAPD)
	d.NewCustomerPaidAPD = maxI(d.NewCustomerPaidAPD, src.NewCustomerPaidAPD)
}

func (d *DailyProductSummary) addMerge(src DailyProductSummary) {
	d.CustomerAPD = maxI(d.CustomerAPD, src.CustomerAPD)
	d.ProductCostAmount += src.ProductCostAmount
	d.ProductMRPAmount += src.ProductMRPAmount
	d.CancelledProductQty += src.CancelledProductQty
	d.CancelledCostAmount += src.CancelledCostAmount
	d.CancelledMRPAmount += src.CancelledMRPAmount
	d.CancelledOrderAPD = maxI(d.CancelledOrderAPD, src.CancelledOrderAPD)
}

func sortDailyCustomer(rows []DailyCustomerSummary) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].SummaryDate.Equal(rows[j].SummaryDate) {
			return rows[i].SummaryDate.Before(rows[j].SummaryDate)
		}
		return rows[i].DWCustomerID < rows[j].DWCustomerID
	})
}

func sortDailyProduct(rows []DailyProductSummary) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].SummaryDate.Equal(rows[j].SummaryDate) {
			return rows[i].SummaryDate.Before(rows[j].SummaryDate)
		}
		return rows[i].DWProductID < rows[j].DWProductID
	})
}

func maxI(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
