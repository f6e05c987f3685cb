package summary

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/loadstone/internal/clock"
	"github.com/smallbiznis/loadstone/internal/warehouse"
	"github.com/smallbiznis/loadstone/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	batchDate = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	nextDate  = time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
)

func newTestAggregator(t *testing.T) (*Aggregator, *gorm.DB) {
	t.Helper()

	gdb, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(warehouse.Models()...))
	require.NoError(t, gdb.AutoMigrate(Models()...))

	fake := clock.NewFakeClock(time.Date(2024, 3, 5, 2, 0, 0, 0, time.UTC))
	return NewAggregator(Params{DB: gdb, Log: zap.NewNop(), Clock: fake}), gdb
}

func strPtr(v string) *string { return &v }

func intPtr(v int64) *int64 { return &v }

func floatPtr(v float64) *float64 { return &v }

func timePtr(v time.Time) *time.Time { return &v }

// seedShippedOrder creates a customer, a product, and one shipped
// order with a single line, all dated on the batch date.
func seedShippedOrder(t *testing.T, gdb *gorm.DB) (custID, prodID int64) {
	t.Helper()

	cust := warehouse.Customer{
		CustomerNumber:     1001,
		CustomerName:       strPtr("Mini Gifts"),
		SrcCreateTimestamp: timePtr(batchDate.Add(9*time.Hour + 30*time.Minute)),
	}
	require.NoError(t, gdb.Create(&cust).Error)

	prod := warehouse.Product{
		ProductCode: "S10_1678",
		BuyPrice:    floatPtr(50),
		MSRP:        floatPtr(100),
	}
	require.NoError(t, gdb.Create(&prod).Error)

	order := warehouse.Order{
		OrderNumber:    10100,
		OrderDate:      timePtr(batchDate),
		ShippedDate:    timePtr(batchDate),
		Status:         strPtr("Shipped"),
		CustomerNumber: cust.CustomerNumber,
		DWCustomerID:   &cust.DWCustomerID,
	}
	require.NoError(t, gdb.Create(&order).Error)

	require.NoError(t, gdb.Create(&warehouse.OrderDetail{
		OrderNumber:     order.OrderNumber,
		ProductCode:     prod.ProductCode,
		QuantityOrdered: intPtr(2),
		PriceEach:       floatPtr(80),
		DWOrderID:       &order.DWOrderID,
		DWProductID:     &prod.DWProductID,
	}).Error)

	require.NoError(t, gdb.Create(&warehouse.Payment{
		CustomerNumber: cust.CustomerNumber,
		CheckNumber:    "HQ336336",
		PaymentDate:    timePtr(batchDate),
		Amount:         floatPtr(160),
		DWCustomerID:   &cust.DWCustomerID,
	}).Error)

	return cust.DWCustomerID, prod.DWProductID
}

func TestDailyCustomerMergesMeasureGroups(t *testing.T) {
	agg, gdb := newTestAggregator(t)
	custID, _ := seedShippedOrder(t, gdb)

	require.NoError(t, agg.DailyCustomer(context.Background(), 1, batchDate))

	var rows []DailyCustomerSummary
	require.NoError(t, gdb.Find(&rows).Error)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.True(t, batchDate.Equal(row.SummaryDate.UTC()))
	assert.Equal(t, custID, row.DWCustomerID)
	assert.Equal(t, int64(1), row.OrderCount)
	assert.Equal(t, int64(1), row.OrderAPD)
	assert.InDelta(t, 160, row.OrderAmount, 0.001)
	assert.InDelta(t, 100, row.OrderCostAmount, 0.001)
	assert.InDelta(t, 200, row.OrderMRPAmount, 0.001)
	assert.Equal(t, int64(1), row.ProductsOrderedQty)
	assert.Equal(t, int64(2), row.ProductsItemsQty)
	assert.Equal(t, int64(1), row.ShippedOrderCount)
	assert.InDelta(t, 160, row.ShippedOrderAmount, 0.001)
	assert.Equal(t, int64(1), row.ShippedOrderAPD)
	assert.Equal(t, int64(1), row.PaymentAPD)
	assert.InDelta(t, 160, row.PaymentAmount, 0.001)
	assert.Equal(t, int64(1), row.NewCustomerAPD)
	assert.Equal(t, int64(0), row.NewCustomerPaidAPD)
	assert.Equal(t, int64(0), row.CancelledOrderCount)
	assert.Equal(t, int64(1), row.EtlBatchNo)
}

func TestDailyCustomerIgnoresActivityBeforeBatchDate(t *testing.T) {
	agg, gdb := newTestAggregator(t)
	seedShippedOrder(t, gdb)

	require.NoError(t, agg.DailyCustomer(context.Background(), 2, nextDate))

	var count int64
	require.NoError(t, gdb.Model(&DailyCustomerSummary{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestDailyCustomerCancelledOrders(t *testing.T) {
	agg, gdb := newTestAggregator(t)

	cust := warehouse.Customer{CustomerNumber: 1002}
	require.NoError(t, gdb.Create(&cust).Error)
	order := warehouse.Order{
		OrderNumber:    10200,
		OrderDate:      timePtr(batchDate.AddDate(0, 0, -10)),
		CancelledDate:  timePtr(batchDate),
		Status:         strPtr("Cancelled"),
		CustomerNumber: cust.CustomerNumber,
		DWCustomerID:   &cust.DWCustomerID,
	}
	require.NoError(t, gdb.Create(&order).Error)
	require.NoError(t, gdb.Create(&warehouse.OrderDetail{
		OrderNumber:     order.OrderNumber,
		ProductCode:     "S10_2016",
		QuantityOrdered: intPtr(3),
		PriceEach:       floatPtr(40),
		DWOrderID:       &order.DWOrderID,
	}).Error)

	require.NoError(t, agg.DailyCustomer(context.Background(), 3, batchDate))

	var rows []DailyCustomerSummary
	require.NoError(t, gdb.Find(&rows).Error)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, int64(1), row.CancelledOrderCount)
	assert.InDelta(t, 120, row.CancelledOrderAmount, 0.001)
	assert.Equal(t, int64(1), row.CancelledOrderAPD)
	// The order itself was placed before the batch date.
	assert.Equal(t, int64(0), row.OrderCount)
}

// seedSameDayOrders creates one customer buying the same product in
// two orders on the batch date, morning and evening.
func seedSameDayOrders(t *testing.T, gdb *gorm.DB) (custID, prodID int64) {
	t.Helper()

	cust := warehouse.Customer{CustomerNumber: 1003, CustomerName: strPtr("Signal Gift Stores")}
	require.NoError(t, gdb.Create(&cust).Error)
	prod := warehouse.Product{ProductCode: "S18_3232", BuyPrice: floatPtr(40), MSRP: floatPtr(90)}
	require.NoError(t, gdb.Create(&prod).Error)

	for i, at := range []time.Time{batchDate.Add(9 * time.Hour), batchDate.Add(17 * time.Hour)} {
		order := warehouse.Order{
			OrderNumber:    int64(10300 + i),
			OrderDate:      timePtr(at),
			Status:         strPtr("In Process"),
			CustomerNumber: cust.CustomerNumber,
			DWCustomerID:   &cust.DWCustomerID,
		}
		require.NoError(t, gdb.Create(&order).Error)
		require.NoError(t, gdb.Create(&warehouse.OrderDetail{
			OrderNumber:     order.OrderNumber,
			ProductCode:     prod.ProductCode,
			QuantityOrdered: intPtr(1),
			PriceEach:       floatPtr(80),
			DWOrderID:       &order.DWOrderID,
			DWProductID:     &prod.DWProductID,
		}).Error)
	}

	return cust.DWCustomerID, prod.DWProductID
}

func TestDailyCustomerSumsSameDayOrders(t *testing.T) {
	agg, gdb := newTestAggregator(t)
	custID, _ := seedSameDayOrders(t, gdb)

	require.NoError(t, agg.DailyCustomer(context.Background(), 1, batchDate))

	var rows []DailyCustomerSummary
	require.NoError(t, gdb.Find(&rows).Error)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.True(t, batchDate.Equal(row.SummaryDate.UTC()))
	assert.Equal(t, custID, row.DWCustomerID)
	assert.Equal(t, int64(2), row.OrderCount)
	assert.Equal(t, int64(1), row.OrderAPD)
	assert.InDelta(t, 160, row.OrderAmount, 0.001)
	assert.InDelta(t, 80, row.OrderCostAmount, 0.001)
	assert.InDelta(t, 180, row.OrderMRPAmount, 0.001)
	// The same product in both orders counts once per day.
	assert.Equal(t, int64(1), row.ProductsOrderedQty)
	assert.Equal(t, int64(2), row.ProductsItemsQty)
}

func TestDailyProductSumsSameDayOrders(t *testing.T) {
	agg, gdb := newTestAggregator(t)
	_, prodID := seedSameDayOrders(t, gdb)

	require.NoError(t, agg.DailyProduct(context.Background(), 1, batchDate))

	var rows []DailyProductSummary
	require.NoError(t, gdb.Find(&rows).Error)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, prodID, row.DWProductID)
	assert.Equal(t, int64(1), row.CustomerAPD)
	assert.InDelta(t, 160, row.ProductCostAmount, 0.001)
	assert.InDelta(t, 180, row.ProductMRPAmount, 0.001)
}

func TestDailyProductMeasures(t *testing.T) {
	agg, gdb := newTestAggregator(t)
	_, prodID := seedShippedOrder(t, gdb)

	require.NoError(t, agg.DailyProduct(context.Background(), 1, batchDate))

	var rows []DailyProductSummary
	require.NoError(t, gdb.Find(&rows).Error)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, prodID, row.DWProductID)
	assert.Equal(t, int64(1), row.CustomerAPD)
	assert.InDelta(t, 160, row.ProductCostAmount, 0.001)
	assert.InDelta(t, 200, row.ProductMRPAmount, 0.001)
	assert.Equal(t, int64(0), row.CancelledProductQty)
}

func seedDailyCustomer(t *testing.T, gdb *gorm.DB, day time.Time, custID, orderCount int64) {
	t.Helper()
	require.NoError(t, gdb.Create(&DailyCustomerSummary{
		SummaryDate:  day,
		DWCustomerID: custID,
		OrderCount:   orderCount,
		OrderAPD:     1,
		OrderAmount:  float64(orderCount) * 100,
	}).Error)
}

func TestMonthlyCustomerFoldsAcrossBatches(t *testing.T) {
	agg, gdb := newTestAggregator(t)
	ctx := context.Background()

	seedDailyCustomer(t, gdb, batchDate, 7, 3)
	require.NoError(t, agg.MonthlyCustomer(ctx, 1, batchDate))

	seedDailyCustomer(t, gdb, nextDate, 7, 1)
	require.NoError(t, agg.MonthlyCustomer(ctx, 2, nextDate))

	var rows []MonthlyCustomerSummary
	require.NoError(t, gdb.Find(&rows).Error)
	require.Len(t, rows, 1)

	row := rows[0]
	monthFirst := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, monthFirst.Equal(row.StartOfTheMonthDate.UTC()))
	assert.Equal(t, int64(7), row.DWCustomerID)
	assert.Equal(t, int64(4), row.OrderCount)
	assert.Equal(t, int64(2), row.OrderAPD)
	assert.Equal(t, int64(1), row.OrderAPM)
	assert.InDelta(t, 400, row.OrderAmount, 0.001)
	assert.Equal(t, int64(0), row.PaymentAPM)
	assert.Equal(t, int64(2), row.EtlBatchNo)
	assert.NotNil(t, row.DWUpdateTimestamp)
}

func TestMonthlyCustomerSplitsMonths(t *testing.T) {
	agg, gdb := newTestAggregator(t)
	ctx := context.Background()

	aprilDay := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	seedDailyCustomer(t, gdb, batchDate, 7, 2)
	seedDailyCustomer(t, gdb, aprilDay, 7, 5)
	require.NoError(t, agg.MonthlyCustomer(ctx, 1, batchDate))

	var rows []MonthlyCustomerSummary
	require.NoError(t, gdb.Order("start_of_the_month_date").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), rows[0].OrderCount)
	assert.Equal(t, int64(5), rows[1].OrderCount)
}

func TestMonthlyCustomerOnlyFoldsFromBatchDate(t *testing.T) {
	agg, gdb := newTestAggregator(t)
	ctx := context.Background()

	seedDailyCustomer(t, gdb, batchDate, 7, 3)
	require.NoError(t, agg.MonthlyCustomer(ctx, 1, batchDate))
	// Rerunning at a later batch date must not re-fold earlier days.
	require.NoError(t, agg.MonthlyCustomer(ctx, 2, nextDate))

	var rows []MonthlyCustomerSummary
	require.NoError(t, gdb.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(3), rows[0].OrderCount)
	assert.Equal(t, int64(1), rows[0].EtlBatchNo)
}

func TestMonthlyProductFoldsAndFlags(t *testing.T) {
	agg, gdb := newTestAggregator(t)
	ctx := context.Background()

	require.NoError(t, gdb.Create(&DailyProductSummary{
		SummaryDate:       batchDate,
		DWProductID:       9,
		CustomerAPD:       1,
		ProductCostAmount: 160,
		ProductMRPAmount:  200,
	}).Error)
	require.NoError(t, agg.MonthlyProduct(ctx, 1, batchDate))

	require.NoError(t, gdb.Create(&DailyProductSummary{
		SummaryDate:         nextDate,
		DWProductID:         9,
		CustomerAPD:         1,
		CancelledProductQty: 1,
		CancelledCostAmount: 40,
		CancelledOrderAPD:   1,
	}).Error)
	require.NoError(t, agg.MonthlyProduct(ctx, 2, nextDate))

	var rows []MonthlyProductSummary
	require.NoError(t, gdb.Find(&rows).Error)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, int64(2), row.CustomerAPD)
	assert.Equal(t, int64(1), row.CustomerAPM)
	assert.InDelta(t, 160, row.ProductCostAmount, 0.001)
	assert.Equal(t, int64(1), row.CancelledProductQty)
	assert.InDelta(t, 40, row.CancelledCostAmount, 0.001)
	assert.Equal(t, int64(1), row.CancelledOrderAPM)
}
