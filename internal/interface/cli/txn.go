package cli

import (
	"context"
	"flag"

	"github.com/xiebiao/scrapledger/internal/application/ledger"
	"github.com/xiebiao/scrapledger/pkg/response"
)

// headerFlags 抬头参数,draft与header共用
type headerFlags struct {
	date  dateFlag
	gross decimalFlag
	req   ledger.HeaderRequest
}

func bindHeader(fs *flag.FlagSet) *headerFlags {
	h := &headerFlags{}
	fs.Var(&h.date, "date", "交易日期(2006-01-02),默认今天")
	fs.StringVar(&h.req.Counterparty, "counterparty", "", "客户/供应商")
	fs.StringVar(&h.req.Affiliation, "affiliation", "", "所属单位")
	fs.StringVar(&h.req.PaymentMethod, "payment", "", "付款方式")
	fs.StringVar(&h.req.Driver, "driver", "", "司机(仅销售)")
	fs.StringVar(&h.req.Plate, "plate", "", "车牌(仅销售)")
	fs.Var(&h.gross, "gross", "毛重(仅销售)")
	fs.StringVar(&h.req.LicenseRef, "license", "", "驾照影像引用(仅销售)")
	return h
}

func (h *headerFlags) request() ledger.HeaderRequest {
	req := h.req
	req.Date = h.date.value
	req.GrossWeight = h.gross.value
	return req
}

func (a *App) txnDraft(ctx context.Context, args []string) (interface{}, error) {
	fs := a.newFlagSet("txn draft")
	kind := fs.String("kind", "", "交易类型: Buying|Selling")
	header := bindHeader(fs)
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return a.drafts.Execute(ctx, ledger.CreateDraftRequest{Kind: *kind, Header: header.request()})
}

func (a *App) txnHeader(ctx context.Context, args []string) (interface{}, error) {
	fs := a.newFlagSet("txn header")
	id := fs.Uint("id", 0, "交易单ID")
	header := bindHeader(fs)
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return a.headers.Execute(ctx, ledger.UpdateHeaderRequest{TransactionID: *id, Header: header.request()})
}

func (a *App) txnAddItem(ctx context.Context, args []string) (interface{}, error) {
	fs := a.newFlagSet("txn add-item")
	var w, price decimalFlag
	txnID := fs.Uint("txn", 0, "交易单ID")
	materialID := fs.Uint("material", 0, "物料ID")
	fs.Var(&w, "weight", "重量")
	fs.Var(&price, "price", "单价")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return a.items.Add(ctx, ledger.AddLineItemRequest{
		TransactionID: *txnID,
		MaterialID:    *materialID,
		Weight:        w.value,
		UnitPrice:     price.value,
	})
}

func (a *App) txnUpdateItem(ctx context.Context, args []string) (interface{}, error) {
	fs := a.newFlagSet("txn update-item")
	var w, price decimalFlag
	itemID := fs.Uint("item", 0, "明细ID")
	fs.Var(&w, "weight", "重量")
	fs.Var(&price, "price", "单价")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return a.items.Update(ctx, ledger.UpdateLineItemRequest{
		LineItemID: *itemID,
		Weight:     w.value,
		UnitPrice:  price.value,
	})
}

func (a *App) txnRemoveItem(ctx context.Context, args []string) (interface{}, error) {
	fs := a.newFlagSet("txn remove-item")
	itemID := fs.Uint("item", 0, "明细ID")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if *itemID == 0 {
		return nil, ErrUsage.WithDetail("缺少-item")
	}
	if err := a.items.Remove(ctx, *itemID); err != nil {
		return nil, err
	}
	return map[string]uint{"removed": *itemID}, nil
}

func (a *App) txnFinalize(ctx context.Context, args []string) (interface{}, error) {
	fs := a.newFlagSet("txn finalize")
	var paid decimalFlag
	id := fs.Uint("id", 0, "交易单ID")
	fs.Var(&paid, "paid", "实付金额,默认等于总额")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return a.finalize.Execute(ctx, ledger.FinalizeRequest{TransactionID: *id, PaidAmount: paid.ptr()})
}

func (a *App) txnGet(ctx context.Context, args []string) (interface{}, error) {
	fs := a.newFlagSet("txn get")
	id := fs.Uint("id", 0, "交易单ID")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return a.txns.Get(ctx, *id)
}

func (a *App) txnList(ctx context.Context, args []string) (interface{}, error) {
	fs := a.newFlagSet("txn list")
	var from, to dateFlag
	var req ledger.ListRequest
	fs.StringVar(&req.Kind, "kind", "", "交易类型: Buying|Selling")
	fs.StringVar(&req.Status, "status", "", "状态: Draft|Completed")
	fs.Var(&from, "from", "开始日期")
	fs.Var(&to, "to", "结束日期")
	fs.IntVar(&req.Page, "page", 1, "页码")
	fs.IntVar(&req.PageSize, "size", 20, "每页条数")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	req.From, req.To = from.value, to.value

	resp, err := a.txns.List(ctx, req)
	if err != nil {
		return nil, err
	}
	return response.NewPageData(resp.Items, resp.Total, resp.Page, resp.PageSize), nil
}
