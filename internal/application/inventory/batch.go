package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/scrapledger/internal/domain/audit"
	"github.com/xiebiao/scrapledger/internal/domain/batch"
	"github.com/xiebiao/scrapledger/internal/infrastructure/lock"
	"github.com/xiebiao/scrapledger/internal/infrastructure/logger"
	"github.com/xiebiao/scrapledger/pkg/metrics"
	"github.com/xiebiao/scrapledger/pkg/tracing"
	"github.com/xiebiao/scrapledger/pkg/validation"
)

// BatchUseCase 批次建立与作废
// 两者都改变物料的可用库存,在物料锁内执行
type BatchUseCase struct {
	service *batch.Service
	locker  lock.Locker
	log     logrus.FieldLogger
}

// NewBatchUseCase 创建批次用例
func NewBatchUseCase(service *batch.Service, locker lock.Locker, log logrus.FieldLogger) *BatchUseCase {
	return &BatchUseCase{service: service, locker: locker, log: log}
}

// CreateBatchRequest 建批请求DTO
type CreateBatchRequest struct {
	MaterialID  uint            `validate:"required"`
	Code        string          `validate:"max=64"`
	Seed        decimal.Decimal `validate:"gte=0"`
	CreatedAt   time.Time
	Notes       string
	EvidenceRef string `validate:"max=255"`
	QRRef       string `validate:"max=255"`
}

func (uc *BatchUseCase) Create(ctx context.Context, req CreateBatchRequest) (resp *BatchResponse, err error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	ctx, span := tracing.StartSpan(ctx, "inventory.CreateBatch", attribute.Int("material_id", int(req.MaterialID)))
	defer func() { tracing.EndSpan(span, err) }()

	release, err := uc.locker.Acquire(ctx, lock.MaterialKey(req.MaterialID))
	if err != nil {
		return nil, err
	}
	defer release()

	b, err := uc.service.CreateBatch(ctx, batch.CreateRequest{
		MaterialID:  req.MaterialID,
		Code:        req.Code,
		Seed:        req.Seed,
		CreatedAt:   req.CreatedAt,
		Notes:       req.Notes,
		EvidenceRef: req.EvidenceRef,
		QRRef:       req.QRRef,
	})
	if err != nil {
		logger.LogError(ctx, uc.log, "inventory", "CreateBatch", "建批失败", req.Code, err)
		return nil, err
	}
	if b.SeedWeight.IsPositive() {
		metrics.IncCounterVec(metrics.AuditEntriesTotal, map[string]string{"action": string(audit.ActionStockIn)})
	}

	uc.log.WithFields(logrus.Fields{
		"batch_id": b.ID,
		"code":     b.Code,
		"seed":     b.SeedWeight.String(),
	}).Info("批次已建立")
	return toBatchResponse(b), nil
}

// Delete 软删除,仍有分配记录时返回ReferentialIntegrity错误
func (uc *BatchUseCase) Delete(ctx context.Context, batchID uint) (resp *BatchResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "inventory.DeleteBatch", attribute.Int("batch_id", int(batchID)))
	defer func() { tracing.EndSpan(span, err) }()

	current, err := uc.service.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}
	release, err := uc.locker.Acquire(ctx, lock.MaterialKey(current.MaterialID))
	if err != nil {
		return nil, err
	}
	defer release()

	b, err := uc.service.SoftDelete(ctx, batchID)
	if err != nil {
		logger.LogError(ctx, uc.log, "inventory", "DeleteBatch", "作废批次失败", batchID, err)
		return nil, err
	}
	metrics.IncCounterVec(metrics.AuditEntriesTotal, map[string]string{"action": string(audit.ActionDeleted)})

	uc.log.WithFields(logrus.Fields{"batch_id": b.ID, "code": b.Code}).Info("批次已作废")
	return toBatchResponse(b), nil
}
