package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/scrapledger/internal/domain/audit"
	apperrors "github.com/xiebiao/scrapledger/pkg/errors"
)

// auditRepository 审计仓储,只追加
type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository 创建审计仓储
func NewAuditRepository(db *gorm.DB) audit.Repository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(ctx context.Context, e *audit.Entry) error {
	model := &AuditEntryModel{
		BatchID:        e.BatchID,
		LinkID:         e.LinkID,
		LineItemID:     e.LineItemID,
		Action:         string(e.Action),
		Notes:          e.Notes,
		Date:           e.Date.UTC(),
		PreviousWeight: e.PreviousWeight,
		NewWeight:      e.NewWeight,
		CreatedAt:      e.CreatedAt.UTC(),
	}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "写入审计记录失败")
	}
	e.ID = model.ID
	return nil
}

func (r *auditRepository) ListByBatch(ctx context.Context, batchID uint) ([]*audit.Entry, error) {
	var models []AuditEntryModel
	err := r.getDB(ctx).Where("batch_id = ?", batchID).
		Order("date ASC").Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询审计记录失败")
	}
	out := make([]*audit.Entry, len(models))
	for i := range models {
		out[i] = toAuditEntity(&models[i])
	}
	return out, nil
}

// LastByBatch 按ID取最新一条;ID单调递增,与写入顺序一致
func (r *auditRepository) LastByBatch(ctx context.Context, batchID uint) (*audit.Entry, error) {
	var models []AuditEntryModel
	err := r.getDB(ctx).Where("batch_id = ?", batchID).
		Order("id DESC").Limit(1).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询审计记录失败")
	}
	if len(models) == 0 {
		return nil, nil
	}
	return toAuditEntity(&models[0]), nil
}

func (r *auditRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

func toAuditEntity(model *AuditEntryModel) *audit.Entry {
	return &audit.Entry{
		ID:             model.ID,
		BatchID:        model.BatchID,
		LinkID:         model.LinkID,
		LineItemID:     model.LineItemID,
		Action:         audit.Action(model.Action),
		Notes:          model.Notes,
		Date:           model.Date,
		PreviousWeight: model.PreviousWeight,
		NewWeight:      model.NewWeight,
		CreatedAt:      model.CreatedAt,
	}
}
