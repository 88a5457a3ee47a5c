// Package report 报表用例:库存汇总、未分配收购、收支趋势与Excel导出
package report

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/xiebiao/scrapledger/internal/domain/report"
	"github.com/xiebiao/scrapledger/internal/infrastructure/export"
	"github.com/xiebiao/scrapledger/internal/infrastructure/logger"
	apperrors "github.com/xiebiao/scrapledger/pkg/errors"
	"github.com/xiebiao/scrapledger/pkg/tracing"
)

const dateLayout = "2006-01-02"

// UseCase 报表用例
type UseCase struct {
	reporter *report.Reporter
	log      logrus.FieldLogger
}

// NewUseCase 创建报表用例
func NewUseCase(reporter *report.Reporter, log logrus.FieldLogger) *UseCase {
	return &UseCase{reporter: reporter, log: log}
}

// StockResponse 物料库存汇总
type StockResponse struct {
	MaterialID   uint            `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Unit         string          `json:"unit"`
	Batches      int             `json:"batches"`
	NetWeight    decimal.Decimal `json:"net_weight"`
}

// UnallocatedResponse 未分配收购明细
type UnallocatedResponse struct {
	LineItemID    uint            `json:"line_item_id"`
	TransactionID uint            `json:"transaction_id"`
	MaterialID    uint            `json:"material_id"`
	MaterialName  string          `json:"material_name"`
	Date          string          `json:"date"`
	Counterparty  string          `json:"counterparty,omitempty"`
	Weight        decimal.Decimal `json:"weight"`
	Allocated     decimal.Decimal `json:"allocated"`
	Remaining     decimal.Decimal `json:"remaining"`
}

// ProfitResponse 每日收支
type ProfitResponse struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
}

func (uc *UseCase) Stock(ctx context.Context) ([]StockResponse, error) {
	rows, err := uc.reporter.StockByMaterial(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]StockResponse, len(rows))
	for i, r := range rows {
		out[i] = StockResponse{
			MaterialID:   r.MaterialID,
			MaterialName: r.MaterialName,
			Unit:         r.Unit,
			Batches:      r.Batches,
			NetWeight:    r.NetWeight,
		}
	}
	return out, nil
}

// Unallocated 剩余重量超过0.01kg的收购明细,新交易在前
func (uc *UseCase) Unallocated(ctx context.Context) ([]UnallocatedResponse, error) {
	rows, err := uc.reporter.ListUnallocatedPurchases(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UnallocatedResponse, len(rows))
	for i, r := range rows {
		out[i] = UnallocatedResponse{
			LineItemID:    r.LineItemID,
			TransactionID: r.TransactionID,
			MaterialID:    r.MaterialID,
			MaterialName:  r.MaterialName,
			Date:          r.TransactionDate.Format(dateLayout),
			Counterparty:  r.Counterparty,
			Weight:        r.Weight,
			Allocated:     r.Allocated,
			Remaining:     r.Remaining,
		}
	}
	return out, nil
}

// ProfitRequest 收支趋势请求,日期格式2006-01-02
type ProfitRequest struct {
	From string
	To   string
}

func (uc *UseCase) Profit(ctx context.Context, req ProfitRequest) ([]ProfitResponse, error) {
	from, to, err := parseRange(req.From, req.To)
	if err != nil {
		return nil, err
	}
	points, err := uc.reporter.ProfitTrend(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]ProfitResponse, len(points))
	for i, p := range points {
		out[i] = ProfitResponse{
			Date:    p.Date.Format(dateLayout),
			Revenue: p.Revenue,
			Cost:    p.Cost,
			Profit:  p.Profit,
		}
	}
	return out, nil
}

// ExportRequest 导出请求
// 三类报表至少选一个;Profit需要日期区间
type ExportRequest struct {
	Stock       bool
	Unallocated bool
	Profit      bool
	Range       ProfitRequest
}

// Export 把选中的报表写成xlsx
func (uc *UseCase) Export(ctx context.Context, w io.Writer, req ExportRequest) (err error) {
	ctx, span := tracing.StartSpan(ctx, "report.Export")
	defer func() { tracing.EndSpan(span, err) }()

	if !req.Stock && !req.Unallocated && !req.Profit {
		return apperrors.ErrInvalidParams.WithDetail("至少选择一个报表")
	}

	var wb export.Workbook
	if req.Stock {
		if wb.Stock, err = uc.reporter.StockByMaterial(ctx); err != nil {
			return err
		}
	}
	if req.Unallocated {
		if wb.Unallocated, err = uc.reporter.ListUnallocatedPurchases(ctx); err != nil {
			return err
		}
	}
	if req.Profit {
		from, to, err := parseRange(req.Range.From, req.Range.To)
		if err != nil {
			return err
		}
		if wb.Profit, err = uc.reporter.ProfitTrend(ctx, from, to); err != nil {
			return err
		}
	}

	if err := export.Write(w, wb); err != nil {
		logger.LogError(ctx, uc.log, "report", "Export", "导出失败", nil, err)
		return apperrors.Wrap(err, "导出报表失败")
	}
	uc.log.WithFields(logrus.Fields{
		"stock":       len(wb.Stock),
		"unallocated": len(wb.Unallocated),
		"profit":      len(wb.Profit),
	}).Info("报表已导出")
	return nil
}

// parseRange 缺省区间为最近30天
func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	to := time.Now().UTC()
	if toStr != "" {
		t, err := time.Parse(dateLayout, toStr)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.ErrInvalidParams.WithDetail("结束日期格式错误: %s", toStr)
		}
		to = t
	}
	from := to.AddDate(0, 0, -30)
	if fromStr != "" {
		t, err := time.Parse(dateLayout, fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.ErrInvalidParams.WithDetail("开始日期格式错误: %s", fromStr)
		}
		from = t
	}
	return from, to, nil
}
