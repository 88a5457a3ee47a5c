package ledger

import (
	"context"
	"time"
)

// Repository 交易单仓储接口
type Repository interface {
	Create(ctx context.Context, t *Transaction) error

	// FindByID 查询交易单(包含明细)
	FindByID(ctx context.Context, id uint) (*Transaction, error)

	// LockByID 加排他锁读取交易单(包含明细),必须在事务中调用
	LockByID(ctx context.Context, id uint) (*Transaction, error)

	// Update 更新抬头、状态与金额,不涉及明细
	Update(ctx context.Context, t *Transaction) error

	FindItem(ctx context.Context, itemID uint) (*LineItem, error)
	AddItem(ctx context.Context, item *LineItem) error
	UpdateItem(ctx context.Context, item *LineItem) error
	RemoveItem(ctx context.Context, itemID uint) error

	List(ctx context.Context, params ListParams) ([]*Transaction, int64, error)
}

// ListParams 交易单列表查询参数
type ListParams struct {
	Page     int
	PageSize int
	Kind     Kind   // 0表示不过滤
	Status   Status // 0表示不过滤
	From     time.Time
	To       time.Time
}

// Normalize 分页参数归一化:page<1取1,pageSize缺省20,最大100
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}
