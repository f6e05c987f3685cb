package history

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/loadstone/internal/warehouse"
	"github.com/smallbiznis/loadstone/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestTracker(t *testing.T) (*Tracker, *gorm.DB) {
	t.Helper()

	gdb, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(warehouse.Models()...))
	require.NoError(t, gdb.AutoMigrate(Models()...))

	return NewTracker(Params{DB: gdb, Log: zap.NewNop()}), gdb
}

func floatPtr(v float64) *float64 { return &v }

func customerSpec() Spec { return Specs()[0] }

func seedCustomer(t *testing.T, gdb *gorm.DB, number int64, credit float64) {
	t.Helper()
	require.NoError(t, gdb.Create(&warehouse.Customer{
		CustomerNumber: number,
		CreditLimit:    floatPtr(credit),
	}).Error)
}

func setCredit(t *testing.T, gdb *gorm.DB, number int64, credit float64) {
	t.Helper()
	require.NoError(t, gdb.Model(&warehouse.Customer{}).
		Where("customer_number = ?", number).
		Update("credit_limit", credit).Error)
}

func TestTracker_FirstSeenKeyOpensActiveVersion(t *testing.T) {
	tr, gdb := newTestTracker(t)
	batchDate := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	seedCustomer(t, gdb, 103, 100)
	require.NoError(t, tr.Track(context.Background(), customerSpec(), 41, batchDate))

	var rows []CustomerHistory
	require.NoError(t, gdb.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].DWActiveRecordInd)
	assert.Equal(t, float64(100), *rows[0].CreditLimit)
	assert.True(t, batchDate.Equal(rows[0].EffectiveFromDate))
	assert.Nil(t, rows[0].EffectiveToDate)
	assert.Equal(t, int64(41), rows[0].CreateEtlBatchNo)
}

func TestTracker_ChangeClosesAndReopens(t *testing.T) {
	tr, gdb := newTestTracker(t)
	ctx := context.Background()

	seedCustomer(t, gdb, 103, 100)
	require.NoError(t, tr.Track(ctx, customerSpec(), 41, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))

	// Batch 42 on 2024-03-05 sees the credit limit move 100 -> 150.
	setCredit(t, gdb, 103, 150)
	batchDate := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	require.NoError(t, tr.Track(ctx, customerSpec(), 42, batchDate))

	var rows []CustomerHistory
	require.NoError(t, gdb.Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)

	closed, active := rows[0], rows[1]

	assert.Equal(t, 0, closed.DWActiveRecordInd)
	assert.Equal(t, float64(100), *closed.CreditLimit)
	require.NotNil(t, closed.EffectiveToDate)
	assert.True(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC).Equal(*closed.EffectiveToDate))
	require.NotNil(t, closed.UpdateEtlBatchNo)
	assert.Equal(t, int64(42), *closed.UpdateEtlBatchNo)

	assert.Equal(t, 1, active.DWActiveRecordInd)
	assert.Equal(t, float64(150), *active.CreditLimit)
	assert.True(t, batchDate.Equal(active.EffectiveFromDate))
	assert.Nil(t, active.EffectiveToDate)

	// Ranges chain: closed ends the day before the new version starts.
	assert.True(t, closed.EffectiveToDate.Before(active.EffectiveFromDate))
	assert.Equal(t, 24*time.Hour, active.EffectiveFromDate.Sub(*closed.EffectiveToDate))
}

func TestTracker_UnchangedValueAddsNothing(t *testing.T) {
	tr, gdb := newTestTracker(t)
	ctx := context.Background()

	seedCustomer(t, gdb, 103, 100)
	require.NoError(t, tr.Track(ctx, customerSpec(), 41, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, tr.Track(ctx, customerSpec(), 42, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))

	var count int64
	require.NoError(t, gdb.Model(&CustomerHistory{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestTracker_SingleActiveVersionPerKey(t *testing.T) {
	tr, gdb := newTestTracker(t)
	ctx := context.Background()

	seedCustomer(t, gdb, 103, 100)
	seedCustomer(t, gdb, 112, 7000)

	dates := []time.Time{
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
	}
	for i, d := range dates {
		require.NoError(t, tr.Track(ctx, customerSpec(), int64(41+i), d))
		setCredit(t, gdb, 103, 100*float64(i+2))
	}

	var active int64
	require.NoError(t, gdb.Model(&CustomerHistory{}).
		Where("dw_customer_id = (SELECT dw_customer_id FROM dw_customers WHERE customer_number = 103) AND dw_active_record_ind = 1").
		Count(&active).Error)
	assert.Equal(t, int64(1), active)
}

func TestTracker_ProductMSRP(t *testing.T) {
	tr, gdb := newTestTracker(t)
	ctx := context.Background()

	require.NoError(t, gdb.Create(&warehouse.Product{
		ProductCode: "S10_1678",
		MSRP:        floatPtr(95.70),
	}).Error)
	require.NoError(t, tr.Track(ctx, Specs()[1], 41, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))

	require.NoError(t, gdb.Model(&warehouse.Product{}).
		Where("product_code = ?", "S10_1678").
		Update("msrp", 99.99).Error)
	require.NoError(t, tr.Track(ctx, Specs()[1], 42, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))

	var rows []ProductHistory
	require.NoError(t, gdb.Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, 0, rows[0].DWActiveRecordInd)
	assert.Equal(t, 1, rows[1].DWActiveRecordInd)
	assert.Equal(t, 99.99, *rows[1].MSRP)
}
