package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/scrapledger/internal/domain/allocation"
	apperrors "github.com/xiebiao/scrapledger/pkg/errors"
)

// LinkRepository 分配记录仓储
// 同时实现allocation.LinkRepository与batch.LinkCounter
type LinkRepository struct {
	db *gorm.DB
}

// NewLinkRepository 创建分配记录仓储
func NewLinkRepository(db *gorm.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

func (r *LinkRepository) Create(ctx context.Context, l *allocation.Link) error {
	model := toLinkModel(l)
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建分配记录失败")
	}
	l.ID = model.ID
	l.CreatedAt = model.CreatedAt
	return nil
}

func (r *LinkRepository) FindByID(ctx context.Context, id uint) (*allocation.Link, error) {
	var model AllocationLinkModel
	if err := r.getDB(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, allocation.ErrLinkNotFound.WithDetail("ID=%d", id)
		}
		return nil, apperrors.Wrap(err, "查询分配记录失败")
	}
	return toLinkEntity(&model), nil
}

func (r *LinkRepository) Delete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&AllocationLinkModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除分配记录失败")
	}
	if result.RowsAffected == 0 {
		return allocation.ErrLinkNotFound
	}
	return nil
}

func (r *LinkRepository) CountByBatch(ctx context.Context, batchID uint) (int64, error) {
	var n int64
	if err := r.getDB(ctx).Model(&AllocationLinkModel{}).Where("batch_id = ?", batchID).Count(&n).Error; err != nil {
		return 0, apperrors.Wrap(err, "统计分配记录失败")
	}
	return n, nil
}

func (r *LinkRepository) ListByBatch(ctx context.Context, batchID uint) ([]*allocation.Link, error) {
	return r.list(ctx, "batch_id = ?", batchID)
}

func (r *LinkRepository) ListByLineItem(ctx context.Context, lineItemID uint) ([]*allocation.Link, error) {
	return r.list(ctx, "line_item_id = ?", lineItemID)
}

func (r *LinkRepository) list(ctx context.Context, query string, arg interface{}) ([]*allocation.Link, error) {
	var models []AllocationLinkModel
	if err := r.getDB(ctx).Where(query, arg).Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询分配记录失败")
	}
	out := make([]*allocation.Link, len(models))
	for i := range models {
		out[i] = toLinkEntity(&models[i])
	}
	return out, nil
}

func (r *LinkRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

func toLinkModel(l *allocation.Link) *AllocationLinkModel {
	return &AllocationLinkModel{
		ID:         l.ID,
		BatchID:    l.BatchID,
		LineItemID: l.LineItemID,
		Weight:     l.Weight,
		Direction:  string(l.Direction),
		CreatedAt:  l.CreatedAt.UTC(),
	}
}

func toLinkEntity(model *AllocationLinkModel) *allocation.Link {
	return &allocation.Link{
		ID:         model.ID,
		BatchID:    model.BatchID,
		LineItemID: model.LineItemID,
		Weight:     model.Weight,
		Direction:  allocation.Direction(model.Direction),
		CreatedAt:  model.CreatedAt,
	}
}
