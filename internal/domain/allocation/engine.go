package allocation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/scrapledger/internal/domain/audit"
	"github.com/xiebiao/scrapledger/internal/domain/batch"
	"github.com/xiebiao/scrapledger/internal/domain/ledger"
	"github.com/xiebiao/scrapledger/internal/domain/uow"
	"github.com/xiebiao/scrapledger/internal/domain/weight"
)

// Part FIFO分配中从单个批次取走的部分
type Part struct {
	LinkID    uint
	BatchID   uint
	BatchCode string
	Weight    decimal.Decimal
	Remaining decimal.Decimal // 取走后批次剩余
}

// Allocation 一次销售分配的结果
type Allocation struct {
	LineItemID uint
	MaterialID uint
	Required   decimal.Decimal
	Allocated  decimal.Decimal
	Parts      []Part
}

// Engine 分配引擎
// 所有批次重量变动都经由batch.Journal,保证每次变动都有审计记录
type Engine struct {
	batches batch.Repository
	links   LinkRepository
	ledger  ledger.Repository
	audits  audit.Repository
	journal *batch.Journal
	tx      uow.Transactor
}

// NewEngine 创建分配引擎
func NewEngine(
	batches batch.Repository,
	links LinkRepository,
	ledgerRepo ledger.Repository,
	audits audit.Repository,
	journal *batch.Journal,
	tx uow.Transactor,
) *Engine {
	return &Engine{
		batches: batches,
		links:   links,
		ledger:  ledgerRepo,
		audits:  audits,
		journal: journal,
		tx:      tx,
	}
}

// AllocateForSale 按FIFO从物料的在库批次中消耗required重量
//
// 流程:
//  1. 锁定物料的全部在库批次(按入库时间升序)
//  2. 可用总量不足时直接返回ErrInsufficientStock,不做任何修改
//  3. 依次从最早的批次取 min(剩余需求, 批次重量),每取一次生成一条OUT分配记录和一条StockOut审计
//  4. 批次重量低于容差时状态变为Depleted
func (e *Engine) AllocateForSale(ctx context.Context, materialID uint, required decimal.Decimal, lineItemID uint) (*Allocation, error) {
	if !weight.IsPositive(required) {
		return nil, ErrInvalidWeight
	}

	var result *Allocation
	err := e.tx.Transaction(ctx, func(txCtx context.Context) error {
		if err := e.checkSaleItem(txCtx, materialID, required, lineItemID); err != nil {
			return err
		}

		candidates, err := e.batches.ListInStock(txCtx, &materialID, true)
		if err != nil {
			return err
		}
		candidates = batch.FilterAvailable(candidates)

		available := decimal.Zero
		for _, b := range candidates {
			available = available.Add(b.NetWeight)
		}
		if required.Sub(available).GreaterThan(weight.Epsilon) {
			return ErrInsufficientStock.WithDetail("物料%d: 需要%s, 可用%s",
				materialID, required.String(), available.String())
		}

		alloc := &Allocation{
			LineItemID: lineItemID,
			MaterialID: materialID,
			Required:   required,
			Allocated:  decimal.Zero,
		}
		remaining := required
		for _, b := range candidates {
			if weight.IsEmpty(remaining) {
				break
			}
			take := weight.Min(remaining, b.NetWeight)
			if !take.IsPositive() {
				continue
			}

			link := &Link{
				BatchID:    b.ID,
				LineItemID: lineItemID,
				Weight:     take,
				Direction:  DirectionOut,
			}
			if err := e.links.Create(txCtx, link); err != nil {
				return err
			}
			if _, err := e.journal.Apply(txCtx, b, batch.Mutation{
				Action:        audit.ActionStockOut,
				Delta:         take.Neg(),
				Notes:         fmt.Sprintf("销售明细#%d FIFO出库", lineItemID),
				LinkID:        &link.ID,
				LineItemID:    &lineItemID,
				DrainedStatus: batch.StatusDepleted,
			}); err != nil {
				return err
			}

			alloc.Parts = append(alloc.Parts, Part{
				LinkID:    link.ID,
				BatchID:   b.ID,
				BatchCode: b.Code,
				Weight:    take,
				Remaining: b.NetWeight,
			})
			alloc.Allocated = alloc.Allocated.Add(take)
			remaining = remaining.Sub(take)
		}

		result = alloc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// checkSaleItem 校验销售明细:类型、物料一致、累计出库不超过明细重量
func (e *Engine) checkSaleItem(ctx context.Context, materialID uint, required decimal.Decimal, lineItemID uint) error {
	item, err := e.ledger.FindItem(ctx, lineItemID)
	if err != nil {
		return err
	}
	txn, err := e.ledger.FindByID(ctx, item.TransactionID)
	if err != nil {
		return err
	}
	if txn.Kind != ledger.KindSelling {
		return ErrNotSale
	}
	if item.MaterialID != materialID {
		return ErrMaterialMismatch
	}

	existing, err := e.links.ListByLineItem(ctx, lineItemID)
	if err != nil {
		return err
	}
	allocated := SumWeight(existing, DirectionOut)
	if allocated.Add(required).Sub(item.Weight).GreaterThan(weight.Epsilon) {
		return ErrOverAllocation.WithDetail("明细#%d: 重量%s, 已出库%s, 本次%s",
			lineItemID, item.Weight.String(), allocated.String(), required.String())
	}
	return nil
}

// LinkManual 把收购明细的重量挂入指定批次(收货流程,不走FIFO)
// 前置条件:w ≤ 明细重量 - 该明细已挂入的重量
func (e *Engine) LinkManual(ctx context.Context, batchID, lineItemID uint, w decimal.Decimal) (*Link, error) {
	if !weight.IsPositive(w) {
		return nil, ErrInvalidWeight
	}
	if err := weight.CheckScale("分配重量", w); err != nil {
		return nil, err
	}

	var result *Link
	err := e.tx.Transaction(ctx, func(txCtx context.Context) error {
		item, err := e.ledger.FindItem(txCtx, lineItemID)
		if err != nil {
			return err
		}
		// 锁交易单,保证同一明细的并发挂批不会突破重量上限
		txn, err := e.ledger.LockByID(txCtx, item.TransactionID)
		if err != nil {
			return err
		}
		if txn.Kind != ledger.KindBuying {
			return ErrNotPurchase
		}
		if txn.IsDraft() {
			return ErrPurchaseNotClosed
		}

		b, err := e.batches.LockByID(txCtx, batchID)
		if err != nil {
			return err
		}
		if b.IsDeleted() {
			return batch.ErrBatchDeleted.WithDetail("批次%s", b.Code)
		}
		if b.MaterialID != item.MaterialID {
			return ErrMaterialMismatch
		}

		existing, err := e.links.ListByLineItem(txCtx, lineItemID)
		if err != nil {
			return err
		}
		remaining := item.Weight.Sub(SumWeight(existing, DirectionIn))
		if w.GreaterThan(remaining) {
			return ErrOverAllocation.WithDetail("明细#%d: 剩余%s, 本次%s",
				lineItemID, remaining.String(), w.String())
		}

		link := &Link{
			BatchID:    b.ID,
			LineItemID: lineItemID,
			Weight:     w,
			Direction:  DirectionIn,
		}
		if err := e.links.Create(txCtx, link); err != nil {
			return err
		}
		if _, err := e.journal.Apply(txCtx, b, batch.Mutation{
			Action:     audit.ActionBatchUpdate,
			Delta:      w,
			Notes:      fmt.Sprintf("收购明细#%d挂入批次", lineItemID),
			LinkID:     &link.ID,
			LineItemID: &lineItemID,
		}); err != nil {
			return err
		}
		result = link
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Unlink 删除分配记录并反向冲回其对批次重量的影响,同时追加冲回审计
// IN记录冲回为StockOut,OUT记录冲回为StockIn;冲回后无剩余则状态为SoldOut
func (e *Engine) Unlink(ctx context.Context, linkID uint) (*audit.Entry, error) {
	var result *audit.Entry
	err := e.tx.Transaction(ctx, func(txCtx context.Context) error {
		link, err := e.links.FindByID(txCtx, linkID)
		if err != nil {
			return err
		}
		b, err := e.batches.LockByID(txCtx, link.BatchID)
		if err != nil {
			return err
		}

		action := audit.ActionStockOut
		if link.Direction == DirectionOut {
			action = audit.ActionStockIn
		}

		if err := e.links.Delete(txCtx, link.ID); err != nil {
			return err
		}
		entry, err := e.journal.Apply(txCtx, b, batch.Mutation{
			Action:        action,
			Delta:         link.Signed().Neg(),
			Notes:         fmt.Sprintf("撤回分配#%d(%s %s)", link.ID, link.Direction, link.Weight.String()),
			LinkID:        &link.ID,
			LineItemID:    &link.LineItemID,
			DrainedStatus: batch.StatusSoldOut,
		})
		if err != nil {
			return err
		}
		result = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
