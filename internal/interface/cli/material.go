package cli

import (
	"context"

	"github.com/xiebiao/scrapledger/internal/application/catalog"
)

func (a *App) materialAdd(ctx context.Context, args []string) (interface{}, error) {
	fs := a.newFlagSet("material add")
	var req catalog.RegisterRequest
	fs.StringVar(&req.Name, "name", "", "物料名称(必填)")
	fs.StringVar(&req.Unit, "unit", "kg", "计量单位: kg|ton|pcs")
	fs.StringVar(&req.Class, "class", "", "分类")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return a.catalog.Register(ctx, req)
}

func (a *App) materialList(ctx context.Context, args []string) (interface{}, error) {
	if err := parse(a.newFlagSet("material list"), args); err != nil {
		return nil, err
	}
	return a.catalog.List(ctx)
}

func (a *App) materialDelete(ctx context.Context, args []string) (interface{}, error) {
	fs := a.newFlagSet("material delete")
	id := fs.Uint("id", 0, "物料ID")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if *id == 0 {
		return nil, ErrUsage.WithDetail("缺少-id")
	}
	if err := a.catalog.Delete(ctx, *id); err != nil {
		return nil, err
	}
	return map[string]uint{"deleted": *id}, nil
}
