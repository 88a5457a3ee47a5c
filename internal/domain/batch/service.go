package batch

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/scrapledger/internal/domain/audit"
	"github.com/xiebiao/scrapledger/internal/domain/material"
	"github.com/xiebiao/scrapledger/internal/domain/uow"
	"github.com/xiebiao/scrapledger/internal/domain/weight"
)

// CreateRequest 建批参数
type CreateRequest struct {
	MaterialID  uint
	Code        string // 为空时自动生成
	Seed        decimal.Decimal
	CreatedAt   time.Time // 入库日期,为空取当前时间;决定FIFO顺序
	Notes       string
	EvidenceRef string
	QRRef       string
}

// Service 库存批次存储
type Service struct {
	repo      Repository
	materials material.Repository
	links     LinkCounter
	journal   *Journal
	tx        uow.Transactor
}

// NewService 创建批次服务
func NewService(repo Repository, materials material.Repository, links LinkCounter, journal *Journal, tx uow.Transactor) *Service {
	return &Service{
		repo:      repo,
		materials: materials,
		links:     links,
		journal:   journal,
		tx:        tx,
	}
}

// CreateBatch 建批,初始重量大于0时记一条StockIn
func (s *Service) CreateBatch(ctx context.Context, req CreateRequest) (*Batch, error) {
	if req.Seed.IsNegative() {
		return nil, ErrInvalidSeed
	}
	if err := weight.CheckScale("初始重量", req.Seed); err != nil {
		return nil, err
	}
	if req.Seed.IsPositive() && !weight.IsPositive(req.Seed) {
		return nil, ErrSeedTooSmall.WithDetail("%s", req.Seed.String())
	}
	b, err := NewBatch(req.Code, req.MaterialID, req.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.Notes = req.Notes
	b.EvidenceRef = req.EvidenceRef
	b.QRRef = req.QRRef
	b.SeedWeight = req.Seed

	err = s.tx.Transaction(ctx, func(txCtx context.Context) error {
		if _, err := s.materials.LockByID(txCtx, b.MaterialID); err != nil {
			return err
		}
		existing, err := s.repo.FindByCode(txCtx, b.Code)
		if err != nil && !errors.Is(err, ErrBatchNotFound) {
			return err
		}
		if existing != nil {
			return ErrCodeDuplicate.WithDetail("批次号%s", b.Code)
		}

		if err := s.repo.Create(txCtx, b); err != nil {
			return err
		}
		if !weight.IsPositive(b.SeedWeight) {
			return nil
		}
		_, err = s.journal.Apply(txCtx, b, Mutation{
			Action: audit.ActionStockIn,
			Delta:  b.SeedWeight,
			Notes:  "建批初始重量",
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// SoftDelete 作废批次:保留记录,重量清零,状态改为Deleted
// 仍有分配记录时返回ErrBatchInUse,批次保持不变
func (s *Service) SoftDelete(ctx context.Context, id uint) (*Batch, error) {
	var result *Batch
	err := s.tx.Transaction(ctx, func(txCtx context.Context) error {
		b, err := s.repo.LockByID(txCtx, id)
		if err != nil {
			return err
		}
		if b.IsDeleted() {
			return ErrBatchDeleted.WithDetail("批次%s", b.Code)
		}

		refs, err := s.links.CountByBatch(txCtx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return ErrBatchInUse.WithDetail("批次%s仍有%d条分配记录", b.Code, refs)
		}

		if _, err := s.journal.Apply(txCtx, b, Mutation{
			Action: audit.ActionDeleted,
			Notes:  "批次作废",
		}); err != nil {
			return err
		}
		result = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// QueryInStock 在库且重量大于容差的批次,按创建时间升序
func (s *Service) QueryInStock(ctx context.Context, materialID *uint) ([]*Batch, error) {
	batches, err := s.repo.ListInStock(ctx, materialID, false)
	if err != nil {
		return nil, err
	}
	return FilterAvailable(batches), nil
}

func (s *Service) Get(ctx context.Context, id uint) (*Batch, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, params ListParams) ([]*Batch, int64, error) {
	params.Normalize()
	return s.repo.List(ctx, params)
}

// FilterAvailable 去掉重量已低于容差的批次
func FilterAvailable(batches []*Batch) []*Batch {
	out := batches[:0]
	for _, b := range batches {
		if weight.IsPositive(b.Available()) {
			out = append(out, b)
		}
	}
	return out
}
