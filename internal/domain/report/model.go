package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseLine 已定稿收购单的明细
type PurchaseLine struct {
	LineItemID      uint
	TransactionID   uint
	MaterialID      uint
	MaterialName    string
	TransactionDate time.Time
	Counterparty    string
	Weight          decimal.Decimal
}

// UnallocatedPurchase 尚未全部挂入批次的收购明细
type UnallocatedPurchase struct {
	PurchaseLine
	Allocated decimal.Decimal
	Remaining decimal.Decimal
}

// StockRow 在库批次的一行
type StockRow struct {
	MaterialID   uint
	MaterialName string
	Unit         string
	NetWeight    decimal.Decimal
}

// MaterialStock 按物料汇总的库存
type MaterialStock struct {
	MaterialID   uint
	MaterialName string
	Unit         string
	Batches      int
	NetWeight    decimal.Decimal
}

// TotalRow 已定稿交易单的金额
type TotalRow struct {
	Date   time.Time
	Kind   int
	Amount decimal.Decimal
}

// ProfitPoint 某日的收支
type ProfitPoint struct {
	Date    time.Time
	Revenue decimal.Decimal // Σ销售总额
	Cost    decimal.Decimal // Σ收购总额
	Profit  decimal.Decimal
}
