package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/xiebiao/scrapledger/internal/domain/report"
)

func TestWrite(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	wb := Workbook{
		Stock: []report.MaterialStock{
			{MaterialID: 1, MaterialName: "Copper", Unit: "kg", Batches: 2, NetWeight: decimal.RequireFromString("12.5")},
		},
		Unallocated: []report.UnallocatedPurchase{
			{
				PurchaseLine: report.PurchaseLine{
					LineItemID: 7, TransactionID: 3, MaterialName: "Copper",
					TransactionDate: day, Counterparty: "Lee", Weight: decimal.NewFromInt(20),
				},
				Allocated: decimal.NewFromInt(5),
				Remaining: decimal.NewFromInt(15),
			},
		},
		Profit: []report.ProfitPoint{},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, wb))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetStock, SheetUnallocated, SheetProfit}, f.GetSheetList())

	stock, err := f.GetRows(SheetStock)
	require.NoError(t, err)
	require.Len(t, stock, 2)
	assert.Equal(t, []string{"MaterialID", "Material", "Unit", "Batches", "NetWeight"}, stock[0])
	assert.Equal(t, []string{"1", "Copper", "kg", "2", "12.5"}, stock[1])

	unallocated, err := f.GetRows(SheetUnallocated)
	require.NoError(t, err)
	require.Len(t, unallocated, 2)
	assert.Equal(t, "2026-03-01", unallocated[1][2])
	assert.Equal(t, "15", unallocated[1][7])

	profit, err := f.GetRows(SheetProfit)
	require.NoError(t, err)
	assert.Len(t, profit, 1, "空报表只有表头")
}

func TestSaveAsOnlySelectedSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profit.xlsx")
	require.NoError(t, SaveAs(path, Workbook{
		Profit: []report.ProfitPoint{
			{Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), Revenue: decimal.NewFromInt(1280), Cost: decimal.NewFromInt(3000), Profit: decimal.NewFromInt(-1720)},
		},
	}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetProfit}, f.GetSheetList())
	rows, err := f.GetRows(SheetProfit)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-02", "1280", "3000", "-1720"}, rows[1])
}
