package cli

import (
	"context"
	"os"
	"strings"

	"github.com/xiebiao/scrapledger/internal/application/report"
	apperrors "github.com/xiebiao/scrapledger/pkg/errors"
)

func (a *App) reportStock(ctx context.Context, args []string) (interface{}, error) {
	if err := parse(a.newFlagSet("report stock"), args); err != nil {
		return nil, err
	}
	return a.reports.Stock(ctx)
}

func (a *App) reportUnallocated(ctx context.Context, args []string) (interface{}, error) {
	if err := parse(a.newFlagSet("report unallocated"), args); err != nil {
		return nil, err
	}
	return a.reports.Unallocated(ctx)
}

func (a *App) reportProfit(ctx context.Context, args []string) (interface{}, error) {
	fs := a.newFlagSet("report profit")
	var req report.ProfitRequest
	fs.StringVar(&req.From, "from", "", "开始日期,默认30天前")
	fs.StringVar(&req.To, "to", "", "结束日期,默认今天")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return a.reports.Profit(ctx, req)
}

func (a *App) reportExport(ctx context.Context, args []string) (interface{}, error) {
	fs := a.newFlagSet("report export")
	out := fs.String("out", "scrapledger.xlsx", "输出文件")
	sheets := fs.String("sheets", "stock,unallocated,profit", "导出的报表,逗号分隔")
	var req report.ExportRequest
	fs.StringVar(&req.Range.From, "from", "", "收支开始日期")
	fs.StringVar(&req.Range.To, "to", "", "收支结束日期")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	for _, name := range strings.Split(*sheets, ",") {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "stock":
			req.Stock = true
		case "unallocated":
			req.Unallocated = true
		case "profit":
			req.Profit = true
		case "":
		default:
			return nil, ErrUsage.WithDetail("未知报表: %s", name)
		}
	}

	f, err := os.Create(*out)
	if err != nil {
		return nil, apperrors.Wrap(err, "创建导出文件失败")
	}
	if err := a.reports.Export(ctx, f, req); err != nil {
		f.Close()
		_ = os.Remove(*out)
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, apperrors.Wrap(err, "写入导出文件失败")
	}
	return map[string]string{"file": *out}, nil
}
