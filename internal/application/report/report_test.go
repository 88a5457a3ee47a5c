package report_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/xiebiao/scrapledger/internal/application/apptest"
	"github.com/xiebiao/scrapledger/internal/application/inventory"
	"github.com/xiebiao/scrapledger/internal/application/report"
	apperrors "github.com/xiebiao/scrapledger/pkg/errors"
)

var day = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func TestUnallocatedRoundTrip(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	copper := env.Material(t, "紫铜")
	steel := env.Material(t, "废钢")

	_, older, _ := env.Completed(t, "Buying", day, apptest.Line{MaterialID: steel, Weight: "5", Price: "2"})
	_, newer, _ := env.Completed(t, "Buying", day.AddDate(0, 0, 2), apptest.Line{MaterialID: copper, Weight: "20", Price: "300"})
	env.Draft(t, "Buying", day, apptest.Line{MaterialID: copper, Weight: "99", Price: "1"})

	rows, err := env.Reports.Unallocated(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2, "草稿不计入")
	assert.Equal(t, newer[0], rows[0].LineItemID, "新交易在前")
	assert.Equal(t, older[0], rows[1].LineItemID)
	assert.True(t, apptest.D("20").Equal(rows[0].Remaining))

	batchID := env.Batch(t, "C1", copper, "0", day)
	_, err = env.Allocations.Link(ctx, inventory.LinkRequest{BatchID: batchID, LineItemID: newer[0], Weight: apptest.D("12")})
	require.NoError(t, err)

	rows, err = env.Reports.Unallocated(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, apptest.D("12").Equal(rows[0].Allocated))
	assert.True(t, apptest.D("8").Equal(rows[0].Remaining))

	// 剩余0.005低于报表容差
	_, err = env.Allocations.Link(ctx, inventory.LinkRequest{BatchID: batchID, LineItemID: newer[0], Weight: apptest.D("7.995")})
	require.NoError(t, err)

	rows, err = env.Reports.Unallocated(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, older[0], rows[0].LineItemID)
}

func TestStockAndProfit(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	copper := env.Material(t, "紫铜")
	steel := env.Material(t, "废钢")
	env.Batch(t, "C1", copper, "6", day)
	env.Batch(t, "C2", copper, "4", day)
	env.Batch(t, "S1", steel, "100", day)

	env.Completed(t, "Buying", day, apptest.Line{MaterialID: copper, Weight: "10", Price: "300"})
	env.Completed(t, "Selling", day, apptest.Line{MaterialID: copper, Weight: "10", Price: "350"})
	env.Completed(t, "Selling", day.AddDate(0, 0, 1), apptest.Line{MaterialID: steel, Weight: "40", Price: "2"})
	env.Completed(t, "Selling", day.AddDate(0, 0, 10), apptest.Line{MaterialID: steel, Weight: "1", Price: "2"})

	stock, err := env.Reports.Stock(ctx)
	require.NoError(t, err)
	require.Len(t, stock, 1, "紫铜已全部售出")
	assert.Equal(t, steel, stock[0].MaterialID)
	assert.Equal(t, 1, stock[0].Batches)
	assert.True(t, apptest.D("59").Equal(stock[0].NetWeight))

	points, err := env.Reports.Profit(ctx, report.ProfitRequest{From: "2026-03-01", To: "2026-03-02"})
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "2026-03-01", points[0].Date)
	assert.True(t, apptest.D("3500").Equal(points[0].Revenue))
	assert.True(t, apptest.D("3000").Equal(points[0].Cost))
	assert.True(t, apptest.D("500").Equal(points[0].Profit))
	assert.Equal(t, "2026-03-02", points[1].Date)
	assert.True(t, apptest.D("80").Equal(points[1].Profit))

	_, err = env.Reports.Profit(ctx, report.ProfitRequest{From: "03/01/2026"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestExport(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	copper := env.Material(t, "紫铜")
	env.Batch(t, "C1", copper, "6", day)
	env.Completed(t, "Buying", day, apptest.Line{MaterialID: copper, Weight: "10", Price: "300"})

	var buf bytes.Buffer
	err := env.Reports.Export(ctx, &buf, report.ExportRequest{Stock: true, Unallocated: true})
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Stock", "Unallocated"}, f.GetSheetList())

	rows, err := f.GetRows("Unallocated")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	err = env.Reports.Export(ctx, &buf, report.ExportRequest{})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}
