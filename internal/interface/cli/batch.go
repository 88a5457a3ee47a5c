package cli

import (
	"context"

	"github.com/xiebiao/scrapledger/internal/application/inventory"
	"github.com/xiebiao/scrapledger/internal/domain/batch"
	"github.com/xiebiao/scrapledger/pkg/response"
)

func (a *App) batchCreate(ctx context.Context, args []string) (interface{}, error) {
	fs := a.newFlagSet("batch create")
	var (
		seed decimalFlag
		date dateFlag
		req  inventory.CreateBatchRequest
	)
	fs.UintVar(&req.MaterialID, "material", 0, "物料ID")
	fs.StringVar(&req.Code, "code", "", "批次号,为空自动生成")
	fs.Var(&seed, "seed", "初始重量")
	fs.Var(&date, "date", "入库日期,决定FIFO顺序")
	fs.StringVar(&req.Notes, "notes", "", "备注")
	fs.StringVar(&req.EvidenceRef, "evidence", "", "凭证引用")
	fs.StringVar(&req.QRRef, "qr", "", "二维码引用")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	req.Seed = seed.value
	req.CreatedAt = date.value
	return a.batches.Create(ctx, req)
}

func (a *App) batchDelete(ctx context.Context, args []string) (interface{}, error) {
	fs := a.newFlagSet("batch delete")
	id := fs.Uint("id", 0, "批次ID")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return a.batches.Delete(ctx, *id)
}

func (a *App) batchLink(ctx context.Context, args []string) (interface{}, error) {
	fs := a.newFlagSet("batch link")
	var w decimalFlag
	var req inventory.LinkRequest
	fs.UintVar(&req.BatchID, "batch", 0, "批次ID")
	fs.UintVar(&req.LineItemID, "item", 0, "收购明细ID")
	fs.Var(&w, "weight", "挂入重量")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	req.Weight = w.value
	return a.allocations.Link(ctx, req)
}

func (a *App) batchUnlink(ctx context.Context, args []string) (interface{}, error) {
	fs := a.newFlagSet("batch unlink")
	id := fs.Uint("link", 0, "分配记录ID")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return a.allocations.Unlink(ctx, *id)
}

func (a *App) batchHistory(ctx context.Context, args []string) (interface{}, error) {
	fs := a.newFlagSet("batch history")
	id := fs.Uint("id", 0, "批次ID")
	provenance := fs.Bool("provenance", true, "关联来源交易单")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return a.inventory.History(ctx, *id, *provenance)
}

func (a *App) batchGet(ctx context.Context, args []string) (interface{}, error) {
	fs := a.newFlagSet("batch get")
	id := fs.Uint("id", 0, "批次ID")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return a.inventory.Get(ctx, *id)
}

func (a *App) batchList(ctx context.Context, args []string) (interface{}, error) {
	fs := a.newFlagSet("batch list")
	var req inventory.ListRequest
	status := fs.String("status", "", "状态: InStock|Depleted|SoldOut|Deleted")
	fs.UintVar(&req.MaterialID, "material", 0, "物料ID")
	fs.StringVar(&req.Keyword, "keyword", "", "批次号关键字")
	fs.IntVar(&req.Page, "page", 1, "页码")
	fs.IntVar(&req.PageSize, "size", 20, "每页条数")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if *status != "" {
		s, err := batch.ParseStatus(*status)
		if err != nil {
			return nil, err
		}
		req.Status = s
	}

	resp, err := a.inventory.List(ctx, req)
	if err != nil {
		return nil, err
	}
	return response.NewPageData(resp.Items, resp.Total, resp.Page, resp.PageSize), nil
}

func (a *App) batchInStock(ctx context.Context, args []string) (interface{}, error) {
	fs := a.newFlagSet("batch instock")
	materialID := fs.Uint("material", 0, "物料ID,0表示全部")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return a.inventory.InStock(ctx, optionalUint(*materialID))
}

func (a *App) reconcile(ctx context.Context, args []string) (interface{}, error) {
	fs := a.newFlagSet("reconcile")
	batchID := fs.Uint("batch", 0, "只对账指定批次,0表示全部")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return a.inventory.Reconcile(ctx, optionalUint(*batchID))
}
