package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository 报表只读查询端口
type Repository interface {
	// ListPurchaseLines 已定稿收购明细,按交易日期、ID倒序
	ListPurchaseLines(ctx context.Context) ([]PurchaseLine, error)

	// AllocatedIn 每个收购明细已挂入批次的重量
	AllocatedIn(ctx context.Context, lineItemIDs []uint) (map[uint]decimal.Decimal, error)

	ListInStock(ctx context.Context) ([]StockRow, error)

	// ListCompletedTotals 区间[from, to]内已定稿交易单的总额
	ListCompletedTotals(ctx context.Context, from, to time.Time) ([]TotalRow, error)
}
