package warehouse

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/loadstone/internal/entity"
	"github.com/smallbiznis/loadstone/internal/stage"
	"github.com/smallbiznis/loadstone/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestMerger(t *testing.T) (*Merger, *gorm.DB) {
	t.Helper()

	gdb, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(stage.Models()...))
	require.NoError(t, gdb.AutoMigrate(Models()...))

	return NewMerger(Params{DB: gdb, Log: zap.NewNop()}), gdb
}

func strPtr(s string) *string { return &s }

func intPtr(v int64) *int64 { return &v }

func floatPtr(v float64) *float64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func mustSpec(t *testing.T, name string) entity.Spec {
	t.Helper()
	spec, ok := entity.ByName(name)
	require.True(t, ok)
	return spec
}

func TestMerger_InsertResolvesParentSurrogate(t *testing.T) {
	m, gdb := newTestMerger(t)
	ctx := context.Background()
	batchDate := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	require.NoError(t, gdb.Create(&stage.Office{OfficeCode: "1", City: strPtr("San Francisco")}).Error)
	require.NoError(t, gdb.Create(&stage.Employee{
		EmployeeNumber: 1002,
		LastName:       strPtr("Murphy"),
		OfficeCode:     strPtr("1"),
	}).Error)

	require.NoError(t, m.MergeEntity(ctx, mustSpec(t, "offices"), 42, batchDate))
	require.NoError(t, m.MergeEntity(ctx, mustSpec(t, "employees"), 42, batchDate))

	var office Office
	require.NoError(t, gdb.Where("office_code = ?", "1").First(&office).Error)
	assert.NotZero(t, office.DWOfficeID)
	assert.Equal(t, int64(42), office.EtlBatchNo)

	var emp Employee
	require.NoError(t, gdb.Where("employee_number = ?", 1002).First(&emp).Error)
	require.NotNil(t, emp.DWOfficeID)
	assert.Equal(t, office.DWOfficeID, *emp.DWOfficeID)
}

func TestMerger_UpdatePreservesSurrogate(t *testing.T) {
	m, gdb := newTestMerger(t)
	ctx := context.Background()

	// Batch 41 loads customer K1 with credit limit 100.
	spec := mustSpec(t, "customers")
	require.NoError(t, gdb.Create(&stage.Customer{
		CustomerNumber: 103,
		CustomerName:   strPtr("Atelier graphique"),
		CreditLimit:    floatPtr(100),
	}).Error)
	require.NoError(t, m.MergeEntity(ctx, spec, 41, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))

	var before Customer
	require.NoError(t, gdb.Where("customer_number = ?", 103).First(&before).Error)
	require.Equal(t, float64(100), *before.CreditLimit)

	// Batch 42 re-extracts K1 with credit limit 150.
	require.NoError(t, gdb.Exec("DELETE FROM stg_customers").Error)
	require.NoError(t, gdb.Create(&stage.Customer{
		CustomerNumber: 103,
		CustomerName:   strPtr("Atelier graphique"),
		CreditLimit:    floatPtr(150),
	}).Error)
	batchDate := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	require.NoError(t, m.MergeEntity(ctx, spec, 42, batchDate))

	var after Customer
	require.NoError(t, gdb.Where("customer_number = ?", 103).First(&after).Error)
	assert.Equal(t, before.DWCustomerID, after.DWCustomerID, "surrogate is stable across batches")
	assert.Equal(t, float64(150), *after.CreditLimit)
	assert.Equal(t, int64(42), after.EtlBatchNo)
	assert.NotNil(t, after.DWUpdateTimestamp)

	var count int64
	require.NoError(t, gdb.Model(&Customer{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "no duplicate row for an updated key")
}

func TestMerger_SelfReferenceResolvesForwardRefs(t *testing.T) {
	m, gdb := newTestMerger(t)
	ctx := context.Background()
	batchDate := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	require.NoError(t, gdb.Create(&stage.Office{OfficeCode: "1"}).Error)
	// 1002 reports to 1056, which appears later in the same batch.
	require.NoError(t, gdb.Create(&stage.Employee{
		EmployeeNumber: 1002, OfficeCode: strPtr("1"), ReportsTo: intPtr(1056),
	}).Error)
	require.NoError(t, gdb.Create(&stage.Employee{
		EmployeeNumber: 1056, OfficeCode: strPtr("1"),
	}).Error)

	require.NoError(t, m.MergeEntity(ctx, mustSpec(t, "offices"), 42, batchDate))
	require.NoError(t, m.MergeEntity(ctx, mustSpec(t, "employees"), 42, batchDate))

	var boss, report Employee
	require.NoError(t, gdb.Where("employee_number = ?", 1056).First(&boss).Error)
	require.NoError(t, gdb.Where("employee_number = ?", 1002).First(&report).Error)

	require.NotNil(t, report.DWReportingEmployeeID)
	assert.Equal(t, boss.DWEmployeeID, *report.DWReportingEmployeeID)
	assert.Nil(t, boss.DWReportingEmployeeID)
}

func TestMerger_OptionalParentLoadsWithoutMatch(t *testing.T) {
	m, gdb := newTestMerger(t)
	ctx := context.Background()
	batchDate := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	require.NoError(t, gdb.Create(&stage.Customer{
		CustomerNumber: 125,
		CustomerName:   strPtr("Havel & Zbyszek Co"),
	}).Error)

	require.NoError(t, m.MergeEntity(ctx, mustSpec(t, "customers"), 42, batchDate))

	var c Customer
	require.NoError(t, gdb.Where("customer_number = ?", 125).First(&c).Error)
	assert.Nil(t, c.DWSalesRepEmployeeID)
}

func TestMerger_Deterministic(t *testing.T) {
	m, gdb := newTestMerger(t)
	ctx := context.Background()
	batchDate := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	require.NoError(t, gdb.Create(&stage.Office{OfficeCode: "1", City: strPtr("Boston")}).Error)

	spec := mustSpec(t, "offices")
	require.NoError(t, m.MergeEntity(ctx, spec, 42, batchDate))
	require.NoError(t, m.MergeEntity(ctx, spec, 42, batchDate))

	var rows []Office
	require.NoError(t, gdb.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "Boston", *rows[0].City)
}

func TestMerger_OrderInsertOnlyColumns(t *testing.T) {
	m, gdb := newTestMerger(t)
	ctx := context.Background()

	require.NoError(t, gdb.Create(&stage.Customer{CustomerNumber: 103}).Error)
	require.NoError(t, m.MergeEntity(ctx, mustSpec(t, "customers"), 41, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))

	orderDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, gdb.Create(&stage.Order{
		OrderNumber:    10100,
		OrderDate:      timePtr(orderDate),
		CustomerNumber: 103,
		Status:         strPtr("In Process"),
	}).Error)
	require.NoError(t, m.MergeEntity(ctx, mustSpec(t, "orders"), 41, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))

	// The order ships in a later batch; order_date must not move.
	require.NoError(t, gdb.Exec("DELETE FROM stg_orders").Error)
	shipped := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	require.NoError(t, gdb.Create(&stage.Order{
		OrderNumber:    10100,
		OrderDate:      timePtr(orderDate.Add(72 * time.Hour)), // drifted upstream, ignored
		CustomerNumber: 103,
		ShippedDate:    timePtr(shipped),
		Status:         strPtr("Shipped"),
	}).Error)
	require.NoError(t, m.MergeEntity(ctx, mustSpec(t, "orders"), 42, shipped))

	var o Order
	require.NoError(t, gdb.Where("order_number = ?", 10100).First(&o).Error)
	assert.Equal(t, "Shipped", *o.Status)
	require.NotNil(t, o.OrderDate)
	assert.True(t, orderDate.Equal(*o.OrderDate), "order_date is immutable after first load")
	require.NotNil(t, o.ShippedDate)
	assert.True(t, shipped.Equal(*o.ShippedDate))
}
