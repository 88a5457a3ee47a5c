package database

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/xiebiao/scrapledger/internal/domain/audit"
	"github.com/xiebiao/scrapledger/internal/domain/ledger"
	apperrors "github.com/xiebiao/scrapledger/pkg/errors"
)

// transactionRepository 交易单仓储
// 交易单与明细是聚合关系,查询时Preload明细
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository 创建交易单仓储
func NewTransactionRepository(db *gorm.DB) ledger.Repository {
	return &transactionRepository{db: db}
}

// Create 只写抬头,明细通过AddItem逐条写入
func (r *transactionRepository) Create(ctx context.Context, t *ledger.Transaction) error {
	model := toTransactionModel(t)
	model.Items = nil
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建交易单失败")
	}
	t.ID = model.ID
	return nil
}

func (r *transactionRepository) FindByID(ctx context.Context, id uint) (*ledger.Transaction, error) {
	return r.find(r.getDB(ctx), id)
}

func (r *transactionRepository) LockByID(ctx context.Context, id uint) (*ledger.Transaction, error) {
	return r.find(forUpdate(r.getDB(ctx)), id)
}

func (r *transactionRepository) find(db *gorm.DB, id uint) (*ledger.Transaction, error) {
	var model TransactionModel
	err := db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrTransactionNotFound.WithDetail("ID=%d", id)
		}
		return nil, apperrors.Wrap(err, "查询交易单失败")
	}
	return toTransactionEntity(&model), nil
}

// Update 更新抬头、状态与金额
func (r *transactionRepository) Update(ctx context.Context, t *ledger.Transaction) error {
	model := toTransactionModel(t)
	result := r.getDB(ctx).Model(&TransactionModel{}).Where("id = ?", t.ID).Updates(map[string]interface{}{
		"status":         model.Status,
		"date":           model.Date,
		"counterparty":   model.Counterparty,
		"affiliation":    model.Affiliation,
		"payment_method": model.PaymentMethod,
		"total_amount":   model.TotalAmount,
		"paid_amount":    model.PaidAmount,
		"driver":         model.Driver,
		"plate":          model.Plate,
		"gross_weight":   model.GrossWeight,
		"license_ref":    model.LicenseRef,
		"updated_at":     model.UpdatedAt,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新交易单失败")
	}
	if result.RowsAffected == 0 {
		return ledger.ErrTransactionNotFound
	}
	return nil
}

func (r *transactionRepository) FindItem(ctx context.Context, itemID uint) (*ledger.LineItem, error) {
	var model LineItemModel
	if err := r.getDB(ctx).First(&model, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrLineItemNotFound.WithDetail("ID=%d", itemID)
		}
		return nil, apperrors.Wrap(err, "查询交易明细失败")
	}
	item := toLineItemEntity(&model)
	return &item, nil
}

func (r *transactionRepository) AddItem(ctx context.Context, item *ledger.LineItem) error {
	model := toLineItemModel(item)
	if err := r.getDB(ctx).Create(&model).Error; err != nil {
		return apperrors.Wrap(err, "新增交易明细失败")
	}
	item.ID = model.ID
	return nil
}

func (r *transactionRepository) UpdateItem(ctx context.Context, item *ledger.LineItem) error {
	result := r.getDB(ctx).Model(&LineItemModel{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
		"weight":     item.Weight,
		"unit_price": item.UnitPrice,
		"subtotal":   item.Subtotal,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新交易明细失败")
	}
	if result.RowsAffected == 0 {
		return ledger.ErrLineItemNotFound
	}
	return nil
}

func (r *transactionRepository) RemoveItem(ctx context.Context, itemID uint) error {
	result := r.getDB(ctx).Delete(&LineItemModel{}, itemID)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除交易明细失败")
	}
	if result.RowsAffected == 0 {
		return ledger.ErrLineItemNotFound
	}
	return nil
}

// List 分页查询交易单,按日期、ID倒序
func (r *transactionRepository) List(ctx context.Context, params ledger.ListParams) ([]*ledger.Transaction, int64, error) {
	query := r.getDB(ctx).Model(&TransactionModel{})
	if params.Kind != 0 {
		query = query.Where("kind = ?", int(params.Kind))
	}
	if params.Status != 0 {
		query = query.Where("status = ?", int(params.Status))
	}
	if !params.From.IsZero() {
		query = query.Where("date >= ?", params.From.UTC())
	}
	if !params.To.IsZero() {
		query = query.Where("date <= ?", params.To.UTC())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询交易单总数失败")
	}

	var models []TransactionModel
	err := query.Preload("Items").
		Order("date DESC").Order("id DESC").
		Scopes(paginate(params.Page, params.PageSize)).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询交易单列表失败")
	}

	out := make([]*ledger.Transaction, len(models))
	for i := range models {
		out[i] = toTransactionEntity(&models[i])
	}
	return out, total, nil
}

func (r *transactionRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

// provenanceReader 审计历史的来源追溯:交易明细 → 交易单
type provenanceReader struct {
	db *gorm.DB
}

// NewProvenanceReader 创建来源追溯查询
func NewProvenanceReader(db *gorm.DB) audit.ProvenanceReader {
	return &provenanceReader{db: db}
}

func (r *provenanceReader) ProvenanceFor(ctx context.Context, lineItemIDs []uint) (map[uint]audit.Provenance, error) {
	type provenanceRow struct {
		LineItemID    uint
		TransactionID uint
		Kind          int
		Date          time.Time
		Counterparty  string
	}
	var rows []provenanceRow
	err := dbFromContext(ctx, r.db).
		Table("transaction_line_items AS li").
		Select("li.id AS line_item_id, t.id AS transaction_id, t.kind, t.date, t.counterparty").
		Joins("JOIN transactions AS t ON t.id = li.transaction_id").
		Where("li.id IN ?", lineItemIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询审计来源失败")
	}

	out := make(map[uint]audit.Provenance, len(rows))
	for _, row := range rows {
		out[row.LineItemID] = audit.Provenance{
			LineItemID:    row.LineItemID,
			TransactionID: row.TransactionID,
			Kind:          ledger.Kind(row.Kind).String(),
			Date:          row.Date,
			Counterparty:  row.Counterparty,
		}
	}
	return out, nil
}

// =========================================
// 模型转换
// =========================================

func toTransactionModel(t *ledger.Transaction) *TransactionModel {
	model := &TransactionModel{
		ID:            t.ID,
		Kind:          int(t.Kind),
		Status:        int(t.Status),
		Date:          t.Date.UTC(),
		Counterparty:  t.Counterparty,
		Affiliation:   t.Affiliation,
		PaymentMethod: t.PaymentMethod,
		TotalAmount:   t.TotalAmount,
		PaidAmount:    t.PaidAmount,
		GrossWeight:   decimal.Zero,
		CreatedAt:     t.CreatedAt.UTC(),
		UpdatedAt:     t.UpdatedAt.UTC(),
	}
	if d := t.Delivery; d != nil {
		model.Driver = d.Driver
		model.Plate = d.Plate
		model.GrossWeight = d.GrossWeight
		model.LicenseRef = d.LicenseRef
	}
	model.Items = make([]LineItemModel, len(t.Items))
	for i := range t.Items {
		model.Items[i] = toLineItemModel(&t.Items[i])
	}
	return model
}

func toTransactionEntity(model *TransactionModel) *ledger.Transaction {
	t := &ledger.Transaction{
		ID:            model.ID,
		Kind:          ledger.Kind(model.Kind),
		Status:        ledger.Status(model.Status),
		Date:          model.Date,
		Counterparty:  model.Counterparty,
		Affiliation:   model.Affiliation,
		PaymentMethod: model.PaymentMethod,
		TotalAmount:   model.TotalAmount,
		PaidAmount:    model.PaidAmount,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
	if t.Kind == ledger.KindSelling &&
		(model.Driver != "" || model.Plate != "" || model.LicenseRef != "" || !model.GrossWeight.IsZero()) {
		t.Delivery = &ledger.Delivery{
			Driver:      model.Driver,
			Plate:       model.Plate,
			GrossWeight: model.GrossWeight,
			LicenseRef:  model.LicenseRef,
		}
	}
	t.Items = make([]ledger.LineItem, len(model.Items))
	for i := range model.Items {
		t.Items[i] = toLineItemEntity(&model.Items[i])
	}
	return t
}

func toLineItemModel(item *ledger.LineItem) LineItemModel {
	return LineItemModel{
		ID:            item.ID,
		TransactionID: item.TransactionID,
		MaterialID:    item.MaterialID,
		Weight:        item.Weight,
		UnitPrice:     item.UnitPrice,
		Subtotal:      item.Subtotal,
	}
}

func toLineItemEntity(model *LineItemModel) ledger.LineItem {
	return ledger.LineItem{
		ID:            model.ID,
		TransactionID: model.TransactionID,
		MaterialID:    model.MaterialID,
		Weight:        model.Weight,
		UnitPrice:     model.UnitPrice,
		Subtotal:      model.Subtotal,
	}
}
