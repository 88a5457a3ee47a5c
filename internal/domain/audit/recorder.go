package audit

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/scrapledger/internal/domain/weight"
)

// AppendRequest 追加审计记录的参数
type AppendRequest struct {
	BatchID        uint
	LinkID         *uint
	LineItemID     *uint
	Action         Action
	Notes          string
	PreviousWeight decimal.Decimal
	NewWeight      decimal.Decimal
}

// Recorder 审计轨迹记录器
type Recorder struct {
	repo       Repository
	provenance ProvenanceReader
	now        func() time.Time
}

// NewRecorder 创建记录器,provenance为nil时历史查询不做来源关联
func NewRecorder(repo Repository, provenance ProvenanceReader) *Recorder {
	return &Recorder{repo: repo, provenance: provenance, now: time.Now}
}

// Append 追加一条记录
// 变动前重量必须等于上一条记录的变动后重量(首条记录从0开始)
func (r *Recorder) Append(ctx context.Context, req AppendRequest) (*Entry, error) {
	if req.BatchID == 0 {
		return nil, ErrInvalidBatch
	}
	if !req.Action.Valid() {
		return nil, ErrInvalidAction
	}
	if req.PreviousWeight.IsNegative() || req.NewWeight.IsNegative() {
		return nil, ErrNegativeWeight
	}

	last, err := r.repo.LastByBatch(ctx, req.BatchID)
	if err != nil {
		return nil, err
	}
	expected := weight.Zero
	if last != nil {
		expected = last.NewWeight
	}
	if !req.PreviousWeight.Equal(expected) {
		return nil, ErrBrokenChain.WithDetail("批次%d: 上一条=%s, 本次变动前=%s",
			req.BatchID, expected.String(), req.PreviousWeight.String())
	}

	now := r.now()
	e := &Entry{
		BatchID:        req.BatchID,
		LinkID:         req.LinkID,
		LineItemID:     req.LineItemID,
		Action:         req.Action,
		Notes:          req.Notes,
		Date:           weight.CalendarDate(now),
		PreviousWeight: req.PreviousWeight,
		NewWeight:      req.NewWeight,
		CreatedAt:      now,
	}
	if err := r.repo.Append(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// HistoryFor 返回批次的审计历史(升序),可选关联来源交易单
func (r *Recorder) HistoryFor(ctx context.Context, batchID uint, withProvenance bool) ([]HistoryEntry, error) {
	entries, err := r.repo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	history := make([]HistoryEntry, len(entries))
	var itemIDs []uint
	for i, e := range entries {
		history[i] = HistoryEntry{Entry: *e}
		if e.LineItemID != nil {
			itemIDs = append(itemIDs, *e.LineItemID)
		}
	}
	if !withProvenance || r.provenance == nil || len(itemIDs) == 0 {
		return history, nil
	}

	sources, err := r.provenance.ProvenanceFor(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	for i := range history {
		if id := history[i].LineItemID; id != nil {
			if p, ok := sources[*id]; ok {
				history[i].Provenance = &p
			}
		}
	}
	return history, nil
}

// ChainTotal 从零开始累加全部变动量,同时校验每条记录与上一条衔接
// 返回累计重量以及第一处断链的位置(-1表示无断链)
func ChainTotal(entries []*Entry) (decimal.Decimal, int) {
	total := weight.Zero
	broken := -1
	for i, e := range entries {
		if broken < 0 && !e.PreviousWeight.Equal(total) {
			broken = i
		}
		total = total.Add(e.Delta())
	}
	return total, broken
}
