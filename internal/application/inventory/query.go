package inventory

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/scrapledger/internal/domain/allocation"
	"github.com/xiebiao/scrapledger/internal/domain/audit"
	"github.com/xiebiao/scrapledger/internal/domain/batch"
	"github.com/xiebiao/scrapledger/internal/infrastructure/logger"
	"github.com/xiebiao/scrapledger/pkg/metrics"
	"github.com/xiebiao/scrapledger/pkg/tracing"
)

// QueryUseCase 批次查询、审计历史与对账
type QueryUseCase struct {
	service  *batch.Service
	recorder *audit.Recorder
	engine   *allocation.Engine
	log      logrus.FieldLogger
}

// NewQueryUseCase 创建批次查询用例
func NewQueryUseCase(service *batch.Service, recorder *audit.Recorder, engine *allocation.Engine, log logrus.FieldLogger) *QueryUseCase {
	return &QueryUseCase{service: service, recorder: recorder, engine: engine, log: log}
}

// ListRequest 批次列表请求DTO
type ListRequest struct {
	Page       int
	PageSize   int
	MaterialID uint
	Status     batch.Status
	Keyword    string
}

// ListResponse 批次列表响应DTO
type ListResponse struct {
	Items    []*BatchResponse `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

func (uc *QueryUseCase) Get(ctx context.Context, id uint) (*BatchResponse, error) {
	b, err := uc.service.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBatchResponse(b), nil
}

func (uc *QueryUseCase) List(ctx context.Context, req ListRequest) (*ListResponse, error) {
	params := batch.ListParams{
		Page:       req.Page,
		PageSize:   req.PageSize,
		MaterialID: req.MaterialID,
		Status:     req.Status,
		Keyword:    req.Keyword,
	}
	params.Normalize()

	list, total, err := uc.service.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return &ListResponse{
		Items:    toBatchResponses(list),
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	}, nil
}

// InStock 可参与FIFO的在库批次,materialID为nil时返回全部物料
func (uc *QueryUseCase) InStock(ctx context.Context, materialID *uint) ([]*BatchResponse, error) {
	list, err := uc.service.QueryInStock(ctx, materialID)
	if err != nil {
		return nil, err
	}
	return toBatchResponses(list), nil
}

// History 批次审计历史,升序
func (uc *QueryUseCase) History(ctx context.Context, batchID uint, withProvenance bool) ([]*AuditEntryResponse, error) {
	if _, err := uc.service.Get(ctx, batchID); err != nil {
		return nil, err
	}
	history, err := uc.recorder.HistoryFor(ctx, batchID, withProvenance)
	if err != nil {
		return nil, err
	}
	out := make([]*AuditEntryResponse, len(history))
	for i, h := range history {
		out[i] = toHistoryResponse(h)
	}
	return out, nil
}

// DriftResponse 对账差异
type DriftResponse struct {
	BatchID    uint   `json:"batch_id"`
	BatchCode  string `json:"batch_code"`
	Cached     string `json:"cached"`
	AuditTotal string `json:"audit_total"`
	LinkTotal  string `json:"link_total"`
	BrokenAt   int    `json:"broken_at"`
}

// ReconcileResponse 对账结果
type ReconcileResponse struct {
	Checked int             `json:"checked"`
	Drifts  []DriftResponse `json:"drifts"`
}

// Reconcile 只报告差异不修正;存在差异时同时返回结果和Consistency错误
func (uc *QueryUseCase) Reconcile(ctx context.Context, batchID *uint) (resp *ReconcileResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "inventory.Reconcile")
	defer func() { tracing.EndSpan(span, err) }()

	report, err := uc.engine.Reconcile(ctx, batchID)
	if report == nil {
		return nil, err
	}
	metrics.SetGauge(metrics.BatchDriftBatches, float64(len(report.Drifts)))

	resp = &ReconcileResponse{Checked: report.Checked, Drifts: []DriftResponse{}}
	for _, d := range report.Drifts {
		resp.Drifts = append(resp.Drifts, DriftResponse{
			BatchID:    d.BatchID,
			BatchCode:  d.BatchCode,
			Cached:     d.Cached.String(),
			AuditTotal: d.AuditTotal.String(),
			LinkTotal:  d.LinkTotal.String(),
			BrokenAt:   d.BrokenAt,
		})
	}
	if err != nil {
		logger.LogError(ctx, uc.log, "inventory", "Reconcile", "对账发现差异", len(report.Drifts), err)
	}
	return resp, err
}
