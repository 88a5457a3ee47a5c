package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/scrapledger/internal/domain/material"
	apperrors "github.com/xiebiao/scrapledger/pkg/errors"
)

type materialRepository struct {
	db *gorm.DB
}

// NewMaterialRepository 创建物料仓储
func NewMaterialRepository(db *gorm.DB) material.Repository {
	return &materialRepository{db: db}
}

func (r *materialRepository) Create(ctx context.Context, m *material.Material) error {
	model := toMaterialModel(m)
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return material.ErrNameDuplicate
		}
		return apperrors.Wrap(err, "创建物料失败")
	}
	m.ID = model.ID
	return nil
}

func (r *materialRepository) FindByID(ctx context.Context, id uint) (*material.Material, error) {
	return r.find(r.getDB(ctx), id)
}

func (r *materialRepository) LockByID(ctx context.Context, id uint) (*material.Material, error) {
	return r.find(forUpdate(r.getDB(ctx)), id)
}

func (r *materialRepository) find(db *gorm.DB, id uint) (*material.Material, error) {
	var model MaterialModel
	if err := db.First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, material.ErrMaterialNotFound.WithDetail("ID=%d", id)
		}
		return nil, apperrors.Wrap(err, "查询物料失败")
	}
	return toMaterialEntity(&model), nil
}

func (r *materialRepository) FindByName(ctx context.Context, name string) (*material.Material, error) {
	var model MaterialModel
	if err := r.getDB(ctx).Where("name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, material.ErrMaterialNotFound
		}
		return nil, apperrors.Wrap(err, "查询物料失败")
	}
	return toMaterialEntity(&model), nil
}

func (r *materialRepository) List(ctx context.Context) ([]*material.Material, error) {
	var models []MaterialModel
	if err := r.getDB(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询物料列表失败")
	}
	out := make([]*material.Material, len(models))
	for i := range models {
		out[i] = toMaterialEntity(&models[i])
	}
	return out, nil
}

func (r *materialRepository) Delete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&MaterialModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除物料失败")
	}
	if result.RowsAffected == 0 {
		return material.ErrMaterialNotFound
	}
	return nil
}

// CountReferences 交易明细引用数 + 批次引用数(含已作废批次,审计外键要保留)
func (r *materialRepository) CountReferences(ctx context.Context, id uint) (int64, error) {
	db := r.getDB(ctx)

	var items, batches int64
	if err := db.Model(&LineItemModel{}).Where("material_id = ?", id).Count(&items).Error; err != nil {
		return 0, apperrors.Wrap(err, "统计物料引用失败")
	}
	if err := db.Model(&BatchModel{}).Where("material_id = ?", id).Count(&batches).Error; err != nil {
		return 0, apperrors.Wrap(err, "统计物料引用失败")
	}
	return items + batches, nil
}

func (r *materialRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

func toMaterialModel(m *material.Material) *MaterialModel {
	return &MaterialModel{
		ID:        m.ID,
		Name:      m.Name,
		Unit:      string(m.Unit),
		Class:     m.Class,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func toMaterialEntity(model *MaterialModel) *material.Material {
	return &material.Material{
		ID:        model.ID,
		Name:      model.Name,
		Unit:      material.Unit(model.Unit),
		Class:     model.Class,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
