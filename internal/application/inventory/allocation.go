package inventory

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/scrapledger/internal/domain/allocation"
	"github.com/xiebiao/scrapledger/internal/domain/audit"
	"github.com/xiebiao/scrapledger/internal/domain/batch"
	"github.com/xiebiao/scrapledger/internal/infrastructure/lock"
	"github.com/xiebiao/scrapledger/internal/infrastructure/logger"
	"github.com/xiebiao/scrapledger/pkg/metrics"
	"github.com/xiebiao/scrapledger/pkg/tracing"
	"github.com/xiebiao/scrapledger/pkg/validation"
)

// AllocationUseCase 手工挂批与撤回
type AllocationUseCase struct {
	engine  *allocation.Engine
	batches batch.Repository
	links   allocation.LinkRepository
	locker  lock.Locker
	log     logrus.FieldLogger
}

// NewAllocationUseCase 创建分配用例
func NewAllocationUseCase(
	engine *allocation.Engine,
	batches batch.Repository,
	links allocation.LinkRepository,
	locker lock.Locker,
	log logrus.FieldLogger,
) *AllocationUseCase {
	return &AllocationUseCase{
		engine:  engine,
		batches: batches,
		links:   links,
		locker:  locker,
		log:     log,
	}
}

// LinkRequest 挂批请求DTO
type LinkRequest struct {
	BatchID    uint            `validate:"required"`
	LineItemID uint            `validate:"required"`
	Weight     decimal.Decimal `validate:"gt=0"`
}

// Link 把已定稿收购明细的重量挂入批次
func (uc *AllocationUseCase) Link(ctx context.Context, req LinkRequest) (resp *LinkResponse, err error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	ctx, span := tracing.StartSpan(ctx, "inventory.LinkManual",
		attribute.Int("batch_id", int(req.BatchID)),
		attribute.Int("line_item_id", int(req.LineItemID)),
	)
	defer func() { tracing.EndSpan(span, err) }()

	b, err := uc.batches.FindByID(ctx, req.BatchID)
	if err != nil {
		return nil, err
	}
	release, err := uc.locker.Acquire(ctx, lock.MaterialKey(b.MaterialID))
	if err != nil {
		return nil, err
	}
	defer release()

	link, err := uc.engine.LinkManual(ctx, req.BatchID, req.LineItemID, req.Weight)
	if err != nil {
		logger.LogError(ctx, uc.log, "inventory", "LinkManual", "挂批失败", req, err)
		return nil, err
	}

	after, err := uc.batches.FindByID(ctx, req.BatchID)
	if err != nil {
		return nil, err
	}

	w, _ := link.Weight.Float64()
	metrics.IncCounterVec(metrics.AllocationsTotal, map[string]string{"direction": string(allocation.DirectionIn), "mode": "manual"})
	metrics.AddCounterVec(metrics.AllocatedWeightTotal, map[string]string{"direction": string(allocation.DirectionIn)}, w)
	metrics.IncCounterVec(metrics.AuditEntriesTotal, map[string]string{"action": string(audit.ActionBatchUpdate)})

	uc.log.WithFields(logrus.Fields{
		"link_id":      link.ID,
		"batch_id":     link.BatchID,
		"line_item_id": link.LineItemID,
		"weight":       link.Weight.String(),
	}).Info("收购重量已挂入批次")
	return toLinkResponse(link, after.NetWeight), nil
}

// Unlink 撤回分配记录,冲回批次重量并记录审计
func (uc *AllocationUseCase) Unlink(ctx context.Context, linkID uint) (resp *AuditEntryResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "inventory.Unlink", attribute.Int("link_id", int(linkID)))
	defer func() { tracing.EndSpan(span, err) }()

	link, err := uc.links.FindByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	b, err := uc.batches.FindByID(ctx, link.BatchID)
	if err != nil {
		return nil, err
	}
	release, err := uc.locker.Acquire(ctx, lock.MaterialKey(b.MaterialID))
	if err != nil {
		return nil, err
	}
	defer release()

	entry, err := uc.engine.Unlink(ctx, linkID)
	if err != nil {
		logger.LogError(ctx, uc.log, "inventory", "Unlink", "撤回分配失败", linkID, err)
		return nil, err
	}
	metrics.IncCounterVec(metrics.AuditEntriesTotal, map[string]string{"action": string(entry.Action)})

	uc.log.WithFields(logrus.Fields{
		"link_id":  linkID,
		"batch_id": entry.BatchID,
		"action":   entry.Action,
		"weight":   entry.NewWeight.String(),
	}).Info("分配记录已撤回")
	return toAuditEntryResponse(entry), nil
}
