package summary

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Monthly folding is additive so a key can be touched by many batches
// in the same month: counters and amounts accumulate, while *_apm
// flags OR together, staying 0 or 1 no matter how many batches land.

// MonthlyCustomer folds this batch's daily customer rows into
// monthly_customer_summary.
func (a *Aggregator) MonthlyCustomer(ctx context.Context, batchNo int64, batchDate time.Time) error {
	var daily []DailyCustomerSummary
	if err := a.db.WithContext(ctx).
		Raw(`SELECT * FROM daily_customer_summary WHERE summary_date >= ?`, batchDate).
		Scan(&daily).Error; err != nil {
		return fmt.Errorf("read daily customer summary: %w", err)
	}

	folded := map[dayKey]*MonthlyCustomerSummary{}
	for _, d := range daily {
		key := dayKey{Day: monthStart(d.SummaryDate), ID: d.DWCustomerID}
		row, ok := folded[key]
		if !ok {
			row = &MonthlyCustomerSummary{StartOfTheMonthDate: key.Day, DWCustomerID: key.ID}
			folded[key] = row
		}
		row.OrderCount += d.OrderCount
		row.OrderAPD += d.OrderAPD
		row.OrderAmount += d.OrderAmount
		row.OrderCostAmount += d.OrderCostAmount
		row.OrderMRPAmount += d.OrderMRPAmount
		row.ProductsOrderedQty += d.ProductsOrderedQty
		row.ProductsItemsQty += d.ProductsItemsQty
		row.CancelledOrderCount += d.CancelledOrderCount
		row.CancelledOrderAmount += d.CancelledOrderAmount
		row.CancelledOrderAPD += d.CancelledOrderAPD
		row.ShippedOrderCount += d.ShippedOrderCount
		row.ShippedOrderAmount += d.ShippedOrderAmount
		row.ShippedOrderAPD += d.ShippedOrderAPD
		row.PaymentAPD += d.PaymentAPD
		row.PaymentAmount += d.PaymentAmount
		row.NewCustomerAPD += d.NewCustomerAPD
		row.NewCustomerPaidAPD += d.NewCustomerPaidAPD
	}

	rows := make([]*MonthlyCustomerSummary, 0, len(folded))
	for _, row := range folded {
		row.OrderAPM = flag(row.OrderAPD)
		row.CancelledOrderAPM = flag(row.CancelledOrderAPD)
		row.ShippedOrderAPM = flag(row.ShippedOrderAPD)
		row.PaymentAPM = flag(row.PaymentAPD)
		row.NewCustomerAPM = flag(row.NewCustomerAPD)
		row.NewCustomerPaidAPM = flag(row.NewCustomerPaidAPD)
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].StartOfTheMonthDate.Equal(rows[j].StartOfTheMonthDate) {
			return rows[i].StartOfTheMonthDate.Before(rows[j].StartOfTheMonthDate)
		}
		return rows[i].DWCustomerID < rows[j].DWCustomerID
	})

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			if err := a.upsertMonthlyCustomer(tx, row, batchNo, batchDate); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("fold monthly customer summary: %w", err)
	}

	a.log.Info("summary.monthly_customer.done",
		zap.Int("rows", len(rows)),
		zap.Int64("etl_batch_no", batchNo),
	)
	return nil
}

func (a *Aggregator) upsertMonthlyCustomer(tx *gorm.DB, row *MonthlyCustomerSummary, batchNo int64, batchDate time.Time) error {
	return tx.Exec(`
		INSERT INTO monthly_customer_summary (
			start_of_the_month_date, dw_customer_id,
			order_count, order_apd, order_apm,
			order_amount, order_cost_amount, order_mrp_amount,
			products_ordered_qty, products_items_qty,
			cancelled_order_count, cancelled_order_amount, cancelled_order_apd, cancelled_order_apm,
			shipped_order_count, shipped_order_amount, shipped_order_apd, shipped_order_apm,
			payment_apd, payment_apm, payment_amount,
			new_customer_apd, new_customer_apm, new_customer_paid_apd, new_customer_paid_apm,
			dw_create_timestamp, etl_batch_no, etl_batch_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, ?, ?)
		ON CONFLICT (start_of_the_month_date, dw_customer_id) DO UPDATE SET
			order_count = monthly_customer_summary.order_count + EXCLUDED.order_count,
			order_apd = monthly_customer_summary.order_apd + EXCLUDED.order_apd,
			order_apm = monthly_customer_summary.order_apm | EXCLUDED.order_apm,
			order_amount = monthly_customer_summary.order_amount + EXCLUDED.order_amount,
			order_cost_amount = monthly_customer_summary.order_cost_amount + EXCLUDED.order_cost_amount,
			order_mrp_amount = monthly_customer_summary.order_mrp_amount + EXCLUDED.order_mrp_amount,
			products_ordered_qty = monthly_customer_summary.products_ordered_qty + EXCLUDED.products_ordered_qty,
			products_items_qty = monthly_customer_summary.products_items_qty + EXCLUDED.products_items_qty,
			cancelled_order_count = monthly_customer_summary.cancelled_order_count + EXCLUDED.cancelled_order_count,
			cancelled_order_amount = monthly_customer_summary.cancelled_order_amount + EXCLUDED.cancelled_order_amount,
			cancelled_order_apd = monthly_customer_summary.cancelled_order_apd + EXCLUDED.cancelled_order_apd,
			cancelled_order_apm = monthly_customer_summary.cancelled_order_apm | EXCLUDED.cancelled_order_apm,
			shipped_order_count = monthly_customer_summary.shipped_order_count + EXCLUDED.shipped_order_count,
			shipped_order_amount = monthly_customer_summary.shipped_order_amount + EXCLUDED.shipped_order_amount,
			shipped_order_apd = monthly_customer_summary.shipped_order_apd + EXCLUDED.shipped_order_apd,
			shipped_order_apm = monthly_customer_summary.shipped_order_apm | EXCLUDED.shipped_order_apm,
			payment_apd = monthly_customer_summary.payment_apd + EXCLUDED.payment_apd,
			payment_apm = monthly_customer_summary.payment_apm | EXCLUDED.payment_apm,
			payment_amount = monthly_customer_summary.payment_amount + EXCLUDED.payment_amount,
			new_customer_apd = monthly_customer_summary.new_customer_apd + EXCLUDED.new_customer_apd,
			new_customer_apm = monthly_customer_summary.new_customer_apm | EXCLUDED.new_customer_apm,
			new_customer_paid_apd = monthly_customer_summary.new_customer_paid_apd + EXCLUDED.new_customer_paid_apd,
			new_customer_paid_apm = monthly_customer_summary.new_customer_paid_apm | EXCLUDED.new_customer_paid_apm,
			dw_update_timestamp = CURRENT_TIMESTAMP,
			etl_batch_no = EXCLUDED.etl_batch_no,
			etl_batch_date = EXCLUDED.etl_batch_date`,
		row.StartOfTheMonthDate, row.DWCustomerID,
		row.OrderCount, row.OrderAPD, row.OrderAPM,
		row.OrderAmount, row.OrderCostAmount, row.OrderMRPAmount,
		row.ProductsOrderedQty, row.ProductsItemsQty,
		row.CancelledOrderCount, row.CancelledOrderAmount, row.CancelledOrderAPD, row.CancelledOrderAPM,
		row.ShippedOrderCount, row.ShippedOrderAmount, row.ShippedOrderAPD, row.ShippedOrderAPM,
		row.PaymentAPD, row.PaymentAPM, row.PaymentAmount,
		row.NewCustomerAPD, row.NewCustomerAPM, row.NewCustomerPaidAPD, row.NewCustomerPaidAPM,
		batchNo, batchDate,
	).Error
}

// MonthlyProduct folds this batch's daily product rows into
// monthly_product_summary.
func (a *Aggregator) MonthlyProduct(ctx context.Context, batchNo int64, batchDate time.Time) error {
	var daily []DailyProductSummary
	if err := a.db.WithContext(ctx).
		Raw(`SELECT * FROM daily_product_summary WHERE summary_date >= ?`, batchDate).
		Scan(&daily).Error; err != nil {
		return fmt.Errorf("read daily product summary: %w", err)
	}

	folded := map[dayKey]*MonthlyProductSummary{}
	for _, d := range daily {
		key := dayKey{Day: monthStart(d.SummaryDate), ID: d.DWProductID}
		row, ok := folded[key]
		if !ok {
			row = &MonthlyProductSummary{StartOfTheMonthDate: key.Day, DWProductID: key.ID}
			folded[key] = row
		}
		row.CustomerAPD += d.CustomerAPD
		row.ProductCostAmount += d.ProductCostAmount
		row.ProductMRPAmount += d.ProductMRPAmount
		row.CancelledProductQty += d.CancelledProductQty
		row.CancelledCostAmount += d.CancelledCostAmount
		row.CancelledMRPAmount += d.CancelledMRPAmount
		row.CancelledOrderAPD += d.CancelledOrderAPD
	}

	rows := make([]*MonthlyProductSummary, 0, len(folded))
	for _, row := range folded {
		row.CustomerAPM = flag(row.CustomerAPD)
		row.CancelledOrderAPM = flag(row.CancelledOrderAPD)
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].StartOfTheMonthDate.Equal(rows[j].StartOfTheMonthDate) {
			return rows[i].StartOfTheMonthDate.Before(rows[j].StartOfTheMonthDate)
		}
		return rows[i].DWProductID < rows[j].DWProductID
	})

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			if err := a.upsertMonthlyProduct(tx, row, batchNo, batchDate); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("fold monthly product summary: %w", err)
	}

	a.log.Info("summary.monthly_product.done",
		zap.Int("rows", len(rows)),
		zap.Int64("etl_batch_no", batchNo),
	)
	return nil
}

func (a *Aggregator) upsertMonthlyProduct(tx *gorm.DB, row *MonthlyProductSummary, batchNo int64, batchDate time.Time) error {
	return tx.Exec(`
		INSERT INTO monthly_product_summary (
			start_of_the_month_date, dw_product_id,
			customer_apd, customer_apm,
			product_cost_amount, product_mrp_amount,
			cancelled_product_qty, cancelled_cost_amount, cancelled_mrp_amount,
			cancelled_order_apd, cancelled_order_apm,
			dw_create_timestamp, etl_batch_no, etl_batch_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, ?, ?)
		ON CONFLICT (start_of_the_month_date, dw_product_id) DO UPDATE SET
			customer_apd = monthly_product_summary.customer_apd + EXCLUDED.customer_apd,
			customer_apm = monthly_product_summary.customer_apm | EXCLUDED.customer_apm,
			product_cost_amount = monthly_product_summary.product_cost_amount + EXCLUDED.product_cost_amount,
			product_mrp_amount = monthly_product_summary.product_mrp_amount + EXCLUDED.product_mrp_amount,
			cancelled_product_qty = monthly_product_summary.cancelled_product_qty + EXCLUDED.cancelled_product_qty,
			cancelled_cost_amount = monthly_product_summary.cancelled_cost_amount + EXCLUDED.cancelled_cost_amount,
			cancelled_mrp_amount = monthly_product_summary.cancelled_mrp_amount + EXCLUDED.cancelled_mrp_amount,
			cancelled_order_apd = monthly_product_summary.cancelled_order_apd + EXCLUDED.cancelled_order_apd,
			cancelled_order_apm = monthly_product_summary.cancelled_order_apm | EXCLUDED.cancelled_order_apm,
			dw_update_timestamp = CURRENT_TIMESTAMP,
			etl_batch_no = EXCLUDED.etl_batch_no,
			etl_batch_date = EXCLUDED.etl_batch_date`,
		row.StartOfTheMonthDate, row.DWProductID,
		row.CustomerAPD, row.CustomerAPM,
		row.ProductCostAmount, row.ProductMRPAmount,
		row.CancelledProductQty, row.CancelledCostAmount, row.CancelledMRPAmount,
		row.CancelledOrderAPD, row.CancelledOrderAPM,
		batchNo, batchDate,
	).Error
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func flag(v int64) int64 {
	if v > 0 {
		return 1
	}
	return 0
}
