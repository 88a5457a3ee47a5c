package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/scrapledger/internal/domain/material"
	"github.com/xiebiao/scrapledger/internal/domain/uow"
)

// Service 交易台账领域服务,负责草稿阶段的全部修改
// 定稿涉及库存分配,由应用层FinalizeUseCase编排
// 草稿修改与定稿一样先锁交易单再检查状态,定稿提交后不会再插入或改动明细
type Service interface {
	CreateDraft(ctx context.Context, kind Kind) (*Transaction, error)
	UpdateHeader(ctx context.Context, id uint, h Header) (*Transaction, error)
	AddLineItem(ctx context.Context, txnID, materialID uint, w, unitPrice decimal.Decimal) (*LineItem, error)
	UpdateLineItem(ctx context.Context, itemID uint, w, unitPrice decimal.Decimal) (*LineItem, error)
	RemoveLineItem(ctx context.Context, itemID uint) error
	Get(ctx context.Context, id uint) (*Transaction, error)
	List(ctx context.Context, params ListParams) ([]*Transaction, int64, error)
}

type service struct {
	repo      Repository
	materials material.Repository
	tx        uow.Transactor
}

// NewService 创建交易台账服务
func NewService(repo Repository, materials material.Repository, tx uow.Transactor) Service {
	return &service{repo: repo, materials: materials, tx: tx}
}

// CreateDraft 立即落库并返回ID,抬头字段可以之后补全
func (s *service) CreateDraft(ctx context.Context, kind Kind) (*Transaction, error) {
	t, err := NewDraft(kind)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) UpdateHeader(ctx context.Context, id uint, h Header) (*Transaction, error) {
	var result *Transaction
	err := s.tx.Transaction(ctx, func(txCtx context.Context) error {
		t, err := s.lockDraft(txCtx, id)
		if err != nil {
			return err
		}
		if err := t.ApplyHeader(h); err != nil {
			return err
		}
		if err := s.repo.Update(txCtx, t); err != nil {
			return err
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) AddLineItem(ctx context.Context, txnID, materialID uint, w, unitPrice decimal.Decimal) (*LineItem, error) {
	item, err := NewLineItem(materialID, w, unitPrice)
	if err != nil {
		return nil, err
	}

	err = s.tx.Transaction(ctx, func(txCtx context.Context) error {
		t, err := s.lockDraft(txCtx, txnID)
		if err != nil {
			return err
		}
		if _, err := s.materials.LockByID(txCtx, materialID); err != nil {
			return err
		}
		item.TransactionID = t.ID
		return s.repo.AddItem(txCtx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) UpdateLineItem(ctx context.Context, itemID uint, w, unitPrice decimal.Decimal) (*LineItem, error) {
	var result *LineItem
	err := s.tx.Transaction(ctx, func(txCtx context.Context) error {
		item, err := s.draftItem(txCtx, itemID)
		if err != nil {
			return err
		}
		if err := item.Set(w, unitPrice); err != nil {
			return err
		}
		if err := s.repo.UpdateItem(txCtx, item); err != nil {
			return err
		}
		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) RemoveLineItem(ctx context.Context, itemID uint) error {
	return s.tx.Transaction(ctx, func(txCtx context.Context) error {
		if _, err := s.draftItem(txCtx, itemID); err != nil {
			return err
		}
		return s.repo.RemoveItem(txCtx, itemID)
	})
}

func (s *service) Get(ctx context.Context, id uint) (*Transaction, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context, params ListParams) ([]*Transaction, int64, error) {
	params.Normalize()
	return s.repo.List(ctx, params)
}

// lockDraft 锁定交易单并确认仍是草稿,必须在事务内调用
func (s *service) lockDraft(ctx context.Context, id uint) (*Transaction, error) {
	t, err := s.repo.LockByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsDraft() {
		return nil, ErrNotDraft
	}
	return t, nil
}

// draftItem 读取明细并锁定所属交易单,确认仍是草稿
func (s *service) draftItem(ctx context.Context, itemID uint) (*LineItem, error) {
	item, err := s.repo.FindItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if _, err := s.lockDraft(ctx, item.TransactionID); err != nil {
		return nil, err
	}
	return item, nil
}
