package material

import (
	"context"
	"errors"

	"github.com/xiebiao/scrapledger/internal/domain/uow"
)

// Service 物料目录领域服务
type Service interface {
	Register(ctx context.Context, name string, unit Unit, class string) (*Material, error)
	Get(ctx context.Context, id uint) (*Material, error)
	List(ctx context.Context) ([]*Material, error)
	Delete(ctx context.Context, id uint) error
}

type service struct {
	repo Repository
	tx   uow.Transactor
}

// NewService 创建物料目录服务
func NewService(repo Repository, tx uow.Transactor) Service {
	return &service{repo: repo, tx: tx}
}

// Register 登记物料,名称重复返回ErrNameDuplicate
func (s *service) Register(ctx context.Context, name string, unit Unit, class string) (*Material, error) {
	m, err := NewMaterial(name, unit, class)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByName(ctx, m.Name)
	if err != nil && !errors.Is(err, ErrMaterialNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrNameDuplicate
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) Get(ctx context.Context, id uint) (*Material, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]*Material, error) {
	return s.repo.List(ctx)
}

// Delete 删除物料,仍被引用时拒绝
// 引用检查与删除在同一事务内,物料行加锁;新增明细和建批读取物料时也加锁
func (s *service) Delete(ctx context.Context, id uint) error {
	return s.tx.Transaction(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.LockByID(txCtx, id); err != nil {
			return err
		}
		refs, err := s.repo.CountReferences(txCtx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return ErrMaterialInUse.WithDetail("引用数=%d", refs)
		}
		return s.repo.Delete(txCtx, id)
	})
}
