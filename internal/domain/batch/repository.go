package batch

import (
	"context"
)

// Repository 批次仓储接口
type Repository interface {
	Create(ctx context.Context, b *Batch) error
	FindByID(ctx context.Context, id uint) (*Batch, error)
	FindByCode(ctx context.Context, code string) (*Batch, error)

	// LockByID 加排他锁读取,必须在事务中调用
	LockByID(ctx context.Context, id uint) (*Batch, error)

	// ListInStock 在库批次,按创建时间、ID升序;lock为true时加排他锁
	ListInStock(ctx context.Context, materialID *uint, lock bool) ([]*Batch, error)

	// UpdateWeight 保存重量与状态,版本号不匹配返回ErrConcurrentUpdate,成功后版本号+1
	UpdateWeight(ctx context.Context, b *Batch) error

	List(ctx context.Context, params ListParams) ([]*Batch, int64, error)

	// ListAll 全部批次(含已作废),用于对账
	ListAll(ctx context.Context) ([]*Batch, error)
}

// LinkCounter 统计指向批次的分配记录
type LinkCounter interface {
	CountByBatch(ctx context.Context, batchID uint) (int64, error)
}

// ListParams 批次列表查询参数
type ListParams struct {
	Page       int
	PageSize   int
	MaterialID uint   // 0表示不过滤
	Status     Status // 0表示不过滤
	Keyword    string // 批次号模糊匹配
}

// Normalize 分页参数归一化
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
