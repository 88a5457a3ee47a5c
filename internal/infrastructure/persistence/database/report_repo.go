package database

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/xiebiao/scrapledger/internal/domain/allocation"
	"github.com/xiebiao/scrapledger/internal/domain/batch"
	"github.com/xiebiao/scrapledger/internal/domain/ledger"
	"github.com/xiebiao/scrapledger/internal/domain/report"
	apperrors "github.com/xiebiao/scrapledger/pkg/errors"
)

// reportRepository 报表只读查询
// 汇总在Go中用decimal完成,不依赖数据库SUM的浮点行为
type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository 创建报表仓储
func NewReportRepository(db *gorm.DB) report.Repository {
	return &reportRepository{db: db}
}

func (r *reportRepository) ListPurchaseLines(ctx context.Context) ([]report.PurchaseLine, error) {
	type purchaseRow struct {
		LineItemID    uint
		TransactionID uint
		MaterialID    uint
		MaterialName  string
		Date          time.Time
		Counterparty  string
		Weight        decimal.Decimal
	}
	var rows []purchaseRow
	err := r.getDB(ctx).
		Table("transaction_line_items AS li").
		Select("li.id AS line_item_id, t.id AS transaction_id, li.material_id, m.name AS material_name, t.date, t.counterparty, li.weight").
		Joins("JOIN transactions AS t ON t.id = li.transaction_id").
		Joins("JOIN materials AS m ON m.id = li.material_id").
		Where("t.kind = ? AND t.status = ?", int(ledger.KindBuying), int(ledger.StatusCompleted)).
		Order("t.date DESC").Order("li.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询收购明细失败")
	}

	out := make([]report.PurchaseLine, len(rows))
	for i, row := range rows {
		out[i] = report.PurchaseLine{
			LineItemID:      row.LineItemID,
			TransactionID:   row.TransactionID,
			MaterialID:      row.MaterialID,
			MaterialName:    row.MaterialName,
			TransactionDate: row.Date,
			Counterparty:    row.Counterparty,
			Weight:          row.Weight,
		}
	}
	return out, nil
}

func (r *reportRepository) AllocatedIn(ctx context.Context, lineItemIDs []uint) (map[uint]decimal.Decimal, error) {
	out := make(map[uint]decimal.Decimal, len(lineItemIDs))
	if len(lineItemIDs) == 0 {
		return out, nil
	}

	var links []AllocationLinkModel
	err := r.getDB(ctx).
		Where("line_item_id IN ? AND direction = ?", lineItemIDs, string(allocation.DirectionIn)).
		Find(&links).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询分配记录失败")
	}
	for _, l := range links {
		out[l.LineItemID] = out[l.LineItemID].Add(l.Weight)
	}
	return out, nil
}

func (r *reportRepository) ListInStock(ctx context.Context) ([]report.StockRow, error) {
	var rows []report.StockRow
	err := r.getDB(ctx).
		Table("inventory_batches AS b").
		Select("b.material_id, m.name AS material_name, m.unit, b.net_weight").
		Joins("JOIN materials AS m ON m.id = b.material_id").
		Where("b.status = ?", int(batch.StatusInStock)).
		Order("b.material_id ASC").Order("b.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询在库批次失败")
	}
	return rows, nil
}

func (r *reportRepository) ListCompletedTotals(ctx context.Context, from, to time.Time) ([]report.TotalRow, error) {
	var models []TransactionModel
	err := r.getDB(ctx).
		Select("id", "kind", "date", "total_amount").
		Where("status = ? AND date >= ? AND date <= ?", int(ledger.StatusCompleted), from.UTC(), to.UTC()).
		Order("date ASC").Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询交易总额失败")
	}

	out := make([]report.TotalRow, len(models))
	for i, m := range models {
		out[i] = report.TotalRow{
			Date:   m.Date,
			Kind:   m.Kind,
			Amount: m.TotalAmount,
		}
	}
	return out, nil
}

func (r *reportRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}
