package allocation

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/scrapledger/internal/domain/audit"
	"github.com/xiebiao/scrapledger/internal/domain/batch"
)

// Drift 单个批次的对账差异
type Drift struct {
	BatchID    uint
	BatchCode  string
	Cached     decimal.Decimal // 批次表上的重量
	AuditTotal decimal.Decimal // 审计链累计
	LinkTotal  decimal.Decimal // 初始重量 + IN - OUT
	BrokenAt   int             // 审计链第一处断链位置,-1表示连续
}

// ReconcileReport 对账结果
type ReconcileReport struct {
	Checked int
	Drifts  []Drift
}

// Reconcile 对账:比较批次缓存重量与审计链累计值、分配记录推导值
// 只报告差异,不做修正;存在差异时同时返回报告和ErrDrift
func (e *Engine) Reconcile(ctx context.Context, batchID *uint) (*ReconcileReport, error) {
	var targets []*batch.Batch
	if batchID != nil {
		b, err := e.batches.FindByID(ctx, *batchID)
		if err != nil {
			return nil, err
		}
		targets = []*batch.Batch{b}
	} else {
		all, err := e.batches.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		targets = all
	}

	report := &ReconcileReport{Checked: len(targets)}
	for _, b := range targets {
		d, err := e.reconcileBatch(ctx, b)
		if err != nil {
			return nil, err
		}
		if d != nil {
			report.Drifts = append(report.Drifts, *d)
		}
	}

	if len(report.Drifts) > 0 {
		codes := make([]string, len(report.Drifts))
		for i, d := range report.Drifts {
			codes[i] = d.BatchCode
		}
		return report, ErrDrift.WithDetail("%d个批次: %s", len(codes), strings.Join(codes, ","))
	}
	return report, nil
}

func (e *Engine) reconcileBatch(ctx context.Context, b *batch.Batch) (*Drift, error) {
	entries, err := e.audits.ListByBatch(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	links, err := e.links.ListByBatch(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	auditTotal, broken := audit.ChainTotal(entries)
	linkTotal := b.SeedWeight.Add(SumWeight(links, DirectionIn)).Sub(SumWeight(links, DirectionOut))
	if b.IsDeleted() {
		// 作废批次没有分配记录,重量应为0
		linkTotal = decimal.Zero
	}

	if broken < 0 && b.NetWeight.Equal(auditTotal) && b.NetWeight.Equal(linkTotal) {
		return nil, nil
	}
	return &Drift{
		BatchID:    b.ID,
		BatchCode:  b.Code,
		Cached:     b.NetWeight,
		AuditTotal: auditTotal,
		LinkTotal:  linkTotal,
		BrokenAt:   broken,
	}, nil
}
