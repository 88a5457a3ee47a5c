package allocation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Direction 分配方向
type Direction string

const (
	DirectionIn  Direction = "IN"  // 采购重量挂入批次
	DirectionOut Direction = "OUT" // 销售从批次消耗
)

// Sign 方向对批次重量的符号
func (d Direction) Sign() int64 {
	if d == DirectionOut {
		return -1
	}
	return 1
}

// Link 分配记录:交易明细与批次之间的重量关联
type Link struct {
	ID         uint
	BatchID    uint
	LineItemID uint
	Weight     decimal.Decimal // 恒大于0
	Direction  Direction
	CreatedAt  time.Time
}

// Signed 对批次重量的带符号影响
func (l *Link) Signed() decimal.Decimal {
	return l.Weight.Mul(decimal.NewFromInt(l.Direction.Sign()))
}

// LinkRepository 分配记录仓储接口
type LinkRepository interface {
	Create(ctx context.Context, l *Link) error
	FindByID(ctx context.Context, id uint) (*Link, error)
	Delete(ctx context.Context, id uint) error
	CountByBatch(ctx context.Context, batchID uint) (int64, error)
	ListByBatch(ctx context.Context, batchID uint) ([]*Link, error)
	ListByLineItem(ctx context.Context, lineItemID uint) ([]*Link, error)
}

// SumWeight 按方向汇总重量
func SumWeight(links []*Link, dir Direction) decimal.Decimal {
	total := decimal.Zero
	for _, l := range links {
		if l.Direction == dir {
			total = total.Add(l.Weight)
		}
	}
	return total
}
