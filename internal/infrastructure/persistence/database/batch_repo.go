package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/scrapledger/internal/domain/batch"
	apperrors "github.com/xiebiao/scrapledger/pkg/errors"
)

// batchRepository 库存批次仓储
// 1. 重量只通过UpdateWeight修改,带乐观锁版本条件
// 2. LockByID/ListInStock(lock=true)在MySQL上使用SELECT ... FOR UPDATE
type batchRepository struct {
	db *gorm.DB
}

// NewBatchRepository 创建批次仓储
func NewBatchRepository(db *gorm.DB) batch.Repository {
	return &batchRepository{db: db}
}

func (r *batchRepository) Create(ctx context.Context, b *batch.Batch) error {
	model := toBatchModel(b)
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return batch.ErrCodeDuplicate.WithDetail("批次号%s", b.Code)
		}
		return apperrors.Wrap(err, "创建批次失败")
	}
	b.ID = model.ID
	return nil
}

func (r *batchRepository) FindByID(ctx context.Context, id uint) (*batch.Batch, error) {
	return r.first(r.getDB(ctx), "id = ?", id)
}

func (r *batchRepository) FindByCode(ctx context.Context, code string) (*batch.Batch, error) {
	return r.first(r.getDB(ctx), "code = ?", code)
}

func (r *batchRepository) LockByID(ctx context.Context, id uint) (*batch.Batch, error) {
	return r.first(forUpdate(r.getDB(ctx)), "id = ?", id)
}

func (r *batchRepository) first(db *gorm.DB, query string, arg interface{}) (*batch.Batch, error) {
	var model BatchModel
	if err := db.Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, batch.ErrBatchNotFound.WithDetail("%v", arg)
		}
		return nil, apperrors.Wrap(err, "查询批次失败")
	}
	return toBatchEntity(&model), nil
}

// ListInStock 在库批次,FIFO顺序:入库时间升序,同一时间按ID升序
func (r *batchRepository) ListInStock(ctx context.Context, materialID *uint, lock bool) ([]*batch.Batch, error) {
	db := r.getDB(ctx)
	if lock {
		db = forUpdate(db)
	}
	query := db.Where("status = ?", int(batch.StatusInStock))
	if materialID != nil {
		query = query.Where("material_id = ?", *materialID)
	}

	var models []BatchModel
	if err := query.Order("created_at ASC").Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询在库批次失败")
	}
	return toBatchEntities(models), nil
}

// UpdateWeight 保存重量与状态
// WHERE version = 旧版本,RowsAffected为0说明被并发修改或不存在
func (r *batchRepository) UpdateWeight(ctx context.Context, b *batch.Batch) error {
	result := r.getDB(ctx).Model(&BatchModel{}).
		Where("id = ? AND version = ?", b.ID, b.Version).
		Updates(map[string]interface{}{
			"net_weight": b.NetWeight,
			"status":     int(b.Status),
			"version":    gorm.Expr("version + 1"),
			"updated_at": b.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新批次重量失败")
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, b.ID); err != nil {
			return err
		}
		return batch.ErrConcurrentUpdate.WithDetail("批次%s版本%d", b.Code, b.Version)
	}
	b.Version++
	return nil
}

func (r *batchRepository) List(ctx context.Context, params batch.ListParams) ([]*batch.Batch, int64, error) {
	query := r.getDB(ctx).Model(&BatchModel{})
	if params.MaterialID != 0 {
		query = query.Where("material_id = ?", params.MaterialID)
	}
	if params.Status != 0 {
		query = query.Where("status = ?", int(params.Status))
	}
	if params.Keyword != "" {
		query = query.Where("code LIKE ?", "%"+params.Keyword+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询批次总数失败")
	}

	var models []BatchModel
	err := query.Order("created_at DESC").Order("id DESC").
		Scopes(paginate(params.Page, params.PageSize)).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询批次列表失败")
	}
	return toBatchEntities(models), total, nil
}

func (r *batchRepository) ListAll(ctx context.Context) ([]*batch.Batch, error) {
	var models []BatchModel
	if err := r.getDB(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询批次失败")
	}
	return toBatchEntities(models), nil
}

func (r *batchRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

func toBatchModel(b *batch.Batch) *BatchModel {
	return &BatchModel{
		ID:          b.ID,
		Code:        b.Code,
		MaterialID:  b.MaterialID,
		NetWeight:   b.NetWeight,
		SeedWeight:  b.SeedWeight,
		Status:      int(b.Status),
		Notes:       b.Notes,
		EvidenceRef: b.EvidenceRef,
		QRRef:       b.QRRef,
		Version:     b.Version,
		CreatedAt:   b.CreatedAt.UTC(),
		UpdatedAt:   b.UpdatedAt.UTC(),
	}
}

func toBatchEntity(model *BatchModel) *batch.Batch {
	return &batch.Batch{
		ID:          model.ID,
		Code:        model.Code,
		MaterialID:  model.MaterialID,
		NetWeight:   model.NetWeight,
		SeedWeight:  model.SeedWeight,
		Status:      batch.Status(model.Status),
		Notes:       model.Notes,
		EvidenceRef: model.EvidenceRef,
		QRRef:       model.QRRef,
		Version:     model.Version,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toBatchEntities(models []BatchModel) []*batch.Batch {
	out := make([]*batch.Batch, len(models))
	for i := range models {
		out[i] = toBatchEntity(&models[i])
	}
	return out
}
