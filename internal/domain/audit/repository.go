package audit

import "context"

// Repository 审计仓储接口
// 只提供追加与查询,没有更新和删除
type Repository interface {
	Append(ctx context.Context, e *Entry) error

	// ListByBatch 按(日期,ID)升序返回批次的全部记录
	ListByBatch(ctx context.Context, batchID uint) ([]*Entry, error)

	// LastByBatch 返回批次最近一条记录,没有记录返回nil
	LastByBatch(ctx context.Context, batchID uint) (*Entry, error)
}

// ProvenanceReader 按交易明细ID反查来源交易单
type ProvenanceReader interface {
	ProvenanceFor(ctx context.Context, lineItemIDs []uint) (map[uint]Provenance, error)
}
