package batch

import (
	"context"

	"github.com/xiebiao/scrapledger/internal/domain/audit"
)

// AuditAppender 审计追加端口,由audit.Recorder实现
type AuditAppender interface {
	Append(ctx context.Context, req audit.AppendRequest) (*audit.Entry, error)
}

// Journal 批次重量的唯一写入口:改重量和写审计在同一步完成
// 调用方负责提供事务
type Journal struct {
	repo  Repository
	audit AuditAppender
}

// NewJournal 创建重量日志
func NewJournal(repo Repository, appender AuditAppender) *Journal {
	return &Journal{repo: repo, audit: appender}
}

// Apply 对批次执行一次变动并追加审计记录,b会被原地更新
func (j *Journal) Apply(ctx context.Context, b *Batch, m Mutation) (*audit.Entry, error) {
	prev, next, err := b.apply(m)
	if err != nil {
		return nil, err
	}
	if err := j.repo.UpdateWeight(ctx, b); err != nil {
		return nil, err
	}
	return j.audit.Append(ctx, audit.AppendRequest{
		BatchID:        b.ID,
		LinkID:         m.LinkID,
		LineItemID:     m.LineItemID,
		Action:         m.Action,
		Notes:          m.Notes,
		PreviousWeight: prev,
		NewWeight:      next,
	})
}
