package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/scrapledger/internal/domain/allocation"
	"github.com/xiebiao/scrapledger/internal/domain/audit"
	"github.com/xiebiao/scrapledger/internal/domain/ledger"
	"github.com/xiebiao/scrapledger/internal/domain/uow"
	"github.com/xiebiao/scrapledger/internal/infrastructure/lock"
	"github.com/xiebiao/scrapledger/internal/infrastructure/logger"
	apperrors "github.com/xiebiao/scrapledger/pkg/errors"
	"github.com/xiebiao/scrapledger/pkg/metrics"
	"github.com/xiebiao/scrapledger/pkg/tracing"
	"github.com/xiebiao/scrapledger/pkg/validation"
)

// FinalizeUseCase 交易单定稿
//
// 按交易类型分派副作用:
//   - Buying: 只改状态,收购重量之后由挂批流程(LinkManual)分配到批次
//   - Selling: 每条明细按FIFO从在库批次出库
//
// 全部在一个数据库事务中完成,任一明细库存不足则整单回滚,交易单保持草稿
type FinalizeUseCase struct {
	repo   ledger.Repository
	engine *allocation.Engine
	tx     uow.Transactor
	locker lock.Locker
	log    logrus.FieldLogger
}

// NewFinalizeUseCase 创建定稿用例
func NewFinalizeUseCase(
	repo ledger.Repository,
	engine *allocation.Engine,
	tx uow.Transactor,
	locker lock.Locker,
	log logrus.FieldLogger,
) *FinalizeUseCase {
	return &FinalizeUseCase{
		repo:   repo,
		engine: engine,
		tx:     tx,
		locker: locker,
		log:    log,
	}
}

// FinalizeRequest 定稿请求DTO
type FinalizeRequest struct {
	TransactionID uint `validate:"required"`

	// PaidAmount 实付金额,为nil时等于总额
	PaidAmount *decimal.Decimal
}

// FinalizeResponse 定稿响应DTO
type FinalizeResponse struct {
	Transaction *TransactionResponse `json:"transaction"`
	Allocations []AllocationResponse `json:"allocations,omitempty"`
}

// Execute 执行定稿
//
// 并发控制:
//  1. 先读取明细得到涉及的物料,按物料ID升序加物料锁
//  2. 事务内再加行锁读取交易单,确认加锁期间明细物料没有变化
//  3. 物料锁在事务提交后释放
func (uc *FinalizeUseCase) Execute(ctx context.Context, req FinalizeRequest) (resp *FinalizeResponse, err error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	ctx, span := tracing.StartSpan(ctx, "ledger.Finalize", attribute.Int("txn_id", int(req.TransactionID)))
	start := time.Now()
	kind := "Unknown"
	defer func() {
		result := "success"
		if err != nil {
			result = "failure"
			logger.LogError(ctx, uc.log, "ledger", "Finalize", "定稿失败", req.TransactionID, err)
		}
		metrics.IncCounterVec(metrics.FinalizeTotal, map[string]string{"kind": kind, "result": result})
		metrics.ObserveHistogram(metrics.FinalizeDuration, time.Since(start).Seconds())
		tracing.EndSpan(span, err)
	}()

	snapshot, err := uc.repo.FindByID(ctx, req.TransactionID)
	if err != nil {
		return nil, err
	}
	kind = snapshot.Kind.String()
	if !snapshot.IsDraft() {
		return nil, ledger.ErrNotDraft
	}

	lockKeys := materialKeys(snapshot)
	release, err := uc.locker.Acquire(ctx, lockKeys...)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		final  *ledger.Transaction
		allocs []*allocation.Allocation
	)
	err = uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		t, err := uc.repo.LockByID(txCtx, req.TransactionID)
		if err != nil {
			return err
		}
		if !sameKeys(lockKeys, materialKeys(t)) {
			return apperrors.ErrLockFailed.WithDetail("交易单%d的明细在加锁期间被修改", t.ID)
		}

		paid := t.CalculateTotal()
		if req.PaidAmount != nil {
			paid = *req.PaidAmount
		}
		if err := t.Complete(paid); err != nil {
			return err
		}

		allocs, err = uc.dispatch(txCtx, t)
		if err != nil {
			return err
		}
		if err := uc.repo.Update(txCtx, t); err != nil {
			return err
		}
		final = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordAllocationMetrics(allocs)
	uc.log.WithFields(logrus.Fields{
		"txn_id":      final.ID,
		"kind":        kind,
		"total":       final.TotalAmount.String(),
		"allocations": len(allocs),
	}).Info("交易单已定稿")

	resp = &FinalizeResponse{Transaction: toTransactionResponse(final)}
	for _, a := range allocs {
		resp.Allocations = append(resp.Allocations, toAllocationResponse(a))
	}
	return resp, nil
}

// dispatch 按交易类型执行定稿副作用
func (uc *FinalizeUseCase) dispatch(ctx context.Context, t *ledger.Transaction) ([]*allocation.Allocation, error) {
	switch t.Kind {
	case ledger.KindBuying:
		return nil, nil
	case ledger.KindSelling:
		allocs := make([]*allocation.Allocation, 0, len(t.Items))
		for _, item := range t.Items {
			a, err := uc.engine.AllocateForSale(ctx, item.MaterialID, item.Weight, item.ID)
			if err != nil {
				return nil, err
			}
			allocs = append(allocs, a)
		}
		return allocs, nil
	default:
		return nil, ledger.ErrInvalidKind
	}
}

func recordAllocationMetrics(allocs []*allocation.Allocation) {
	for _, a := range allocs {
		for _, p := range a.Parts {
			metrics.IncCounterVec(metrics.AllocationsTotal, map[string]string{"direction": string(allocation.DirectionOut), "mode": "fifo"})
			metrics.IncCounterVec(metrics.AuditEntriesTotal, map[string]string{"action": string(audit.ActionStockOut)})
			w, _ := p.Weight.Float64()
			metrics.AddCounterVec(metrics.AllocatedWeightTotal, map[string]string{"direction": string(allocation.DirectionOut)}, w)
		}
	}
}

// materialKeys 销售单涉及的物料锁;收购单定稿不动库存,不需要加锁
func materialKeys(t *ledger.Transaction) []string {
	if t.Kind != ledger.KindSelling {
		return nil
	}
	ids := make([]uint, len(t.Items))
	for i, item := range t.Items {
		ids[i] = item.MaterialID
	}
	return lock.MaterialKeys(ids...)
}

func sameKeys(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, k := range a {
		set[k] = struct{}{}
	}
	if len(set) != len(b) {
		return false
	}
	for _, k := range b {
		if _, ok := set[k]; !ok {
			return false
		}
	}
	return true
}
