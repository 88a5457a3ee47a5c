package report

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/scrapledger/internal/domain/ledger"
	"github.com/xiebiao/scrapledger/internal/domain/weight"
)

// Reporter 未分配库存与经营报表
type Reporter struct {
	repo Repository
}

// NewReporter 创建报表服务
func NewReporter(repo Repository) *Reporter {
	return &Reporter{repo: repo}
}

// ListUnallocatedPurchases 剩余重量(明细重量 - 已挂入)大于0.01的收购明细,新交易在前
func (r *Reporter) ListUnallocatedPurchases(ctx context.Context) ([]UnallocatedPurchase, error) {
	lines, err := r.repo.ListPurchaseLines(ctx)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return []UnallocatedPurchase{}, nil
	}

	ids := make([]uint, len(lines))
	for i, l := range lines {
		ids[i] = l.LineItemID
	}
	allocated, err := r.repo.AllocatedIn(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]UnallocatedPurchase, 0, len(lines))
	for _, l := range lines {
		done := allocated[l.LineItemID]
		remaining := l.Weight.Sub(done)
		if remaining.GreaterThan(weight.ReportEpsilon) {
			out = append(out, UnallocatedPurchase{
				PurchaseLine: l,
				Allocated:    done,
				Remaining:    remaining,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TransactionDate.After(out[j].TransactionDate)
	})
	return out, nil
}

// StockByMaterial 在库批次按物料汇总
func (r *Reporter) StockByMaterial(ctx context.Context) ([]MaterialStock, error) {
	rows, err := r.repo.ListInStock(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[uint]int)
	out := make([]MaterialStock, 0)
	for _, row := range rows {
		i, ok := index[row.MaterialID]
		if !ok {
			index[row.MaterialID] = len(out)
			out = append(out, MaterialStock{
				MaterialID:   row.MaterialID,
				MaterialName: row.MaterialName,
				Unit:         row.Unit,
				NetWeight:    decimal.Zero,
			})
			i = len(out) - 1
		}
		out[i].Batches++
		out[i].NetWeight = out[i].NetWeight.Add(row.NetWeight)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MaterialID < out[j].MaterialID })
	return out, nil
}

// ProfitTrend 按日期统计 Σ销售 - Σ收购,日期升序
func (r *Reporter) ProfitTrend(ctx context.Context, from, to time.Time) ([]ProfitPoint, error) {
	from, to = weight.CalendarDate(from), weight.CalendarDate(to)
	if to.Before(from) {
		from, to = to, from
	}
	rows, err := r.repo.ListCompletedTotals(ctx, from, to)
	if err != nil {
		return nil, err
	}

	byDate := make(map[time.Time]*ProfitPoint)
	for _, row := range rows {
		day := weight.CalendarDate(row.Date)
		p, ok := byDate[day]
		if !ok {
			p = &ProfitPoint{Date: day, Revenue: decimal.Zero, Cost: decimal.Zero}
			byDate[day] = p
		}
		switch ledger.Kind(row.Kind) {
		case ledger.KindSelling:
			p.Revenue = p.Revenue.Add(row.Amount)
		case ledger.KindBuying:
			p.Cost = p.Cost.Add(row.Amount)
		}
	}

	out := make([]ProfitPoint, 0, len(byDate))
	for _, p := range byDate {
		p.Profit = p.Revenue.Sub(p.Cost)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
