// Package cli 命令行入口适配器
//
// 用法: scrapledger <group> <command> [flags]
// 每个子命令使用独立的flag.FlagSet,结果以JSON写到标准输出
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/xiebiao/scrapledger/internal/application/catalog"
	"github.com/xiebiao/scrapledger/internal/application/inventory"
	"github.com/xiebiao/scrapledger/internal/application/ledger"
	"github.com/xiebiao/scrapledger/internal/application/report"
	"github.com/xiebiao/scrapledger/internal/domain/allocation"
	"github.com/xiebiao/scrapledger/internal/infrastructure/persistence/database"
	apperrors "github.com/xiebiao/scrapledger/pkg/errors"
	"github.com/xiebiao/scrapledger/pkg/response"
)

// ErrUsage 命令或参数不合法
var ErrUsage = apperrors.New(apperrors.ErrCodeBindError, "命令参数错误")

// command 子命令处理函数,返回值作为data输出
type command func(ctx context.Context, args []string) (interface{}, error)

// App 命令行应用,持有全部用例
type App struct {
	db *gorm.DB

	catalog     *catalog.UseCase
	drafts      *ledger.CreateDraftUseCase
	headers     *ledger.UpdateHeaderUseCase
	items       *ledger.LineItemUseCase
	txns        *ledger.QueryUseCase
	finalize    *ledger.FinalizeUseCase
	batches     *inventory.BatchUseCase
	allocations *inventory.AllocationUseCase
	inventory   *inventory.QueryUseCase
	reports     *report.UseCase

	out    io.Writer
	errOut io.Writer
	groups map[string]map[string]command
}

// NewApp 创建命令行应用
func NewApp(
	db *gorm.DB,
	catalogUseCase *catalog.UseCase,
	drafts *ledger.CreateDraftUseCase,
	headers *ledger.UpdateHeaderUseCase,
	items *ledger.LineItemUseCase,
	txns *ledger.QueryUseCase,
	finalize *ledger.FinalizeUseCase,
	batches *inventory.BatchUseCase,
	allocations *inventory.AllocationUseCase,
	inventoryQuery *inventory.QueryUseCase,
	reports *report.UseCase,
) *App {
	a := &App{
		db:          db,
		catalog:     catalogUseCase,
		drafts:      drafts,
		headers:     headers,
		items:       items,
		txns:        txns,
		finalize:    finalize,
		batches:     batches,
		allocations: allocations,
		inventory:   inventoryQuery,
		reports:     reports,
		out:         os.Stdout,
		errOut:      os.Stderr,
	}
	a.groups = map[string]map[string]command{
		"migrate": {"": a.migrate},
		"material": {
			"add":    a.materialAdd,
			"list":   a.materialList,
			"delete": a.materialDelete,
		},
		"txn": {
			"draft":       a.txnDraft,
			"header":      a.txnHeader,
			"add-item":    a.txnAddItem,
			"update-item": a.txnUpdateItem,
			"remove-item": a.txnRemoveItem,
			"finalize":    a.txnFinalize,
			"get":         a.txnGet,
			"list":        a.txnList,
		},
		"batch": {
			"create":  a.batchCreate,
			"delete":  a.batchDelete,
			"link":    a.batchLink,
			"unlink":  a.batchUnlink,
			"history": a.batchHistory,
			"list":    a.batchList,
			"instock": a.batchInStock,
			"get":     a.batchGet,
		},
		"report": {
			"stock":       a.reportStock,
			"unallocated": a.reportUnallocated,
			"profit":      a.reportProfit,
			"export":      a.reportExport,
		},
		"reconcile": {"": a.reconcile},
	}
	return a
}

// SetOutput 替换输出目标,测试使用
func (a *App) SetOutput(out, errOut io.Writer) {
	a.out = out
	a.errOut = errOut
}

// Run 执行一条命令并输出结果
// 成功与失败都会输出一个JSON对象;失败时同时返回错误,由调用方决定退出码
func (a *App) Run(ctx context.Context, args []string) error {
	cmd, rest, err := a.lookup(args)
	if err != nil {
		fmt.Fprintln(a.errOut, a.usage())
		_ = response.Error(a.out, err, nil)
		return err
	}

	data, err := cmd(ctx, rest)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		// 对账发现差异时仍输出差异明细,其余错误不带data
		var payload interface{}
		if errors.Is(err, allocation.ErrDrift) {
			payload = data
		}
		if werr := response.Error(a.out, err, payload); werr != nil {
			return werr
		}
		return err
	}
	return response.Success(a.out, data)
}

func (a *App) lookup(args []string) (command, []string, error) {
	if len(args) == 0 {
		return nil, nil, ErrUsage.WithDetail("缺少命令")
	}
	group, ok := a.groups[args[0]]
	if !ok {
		return nil, nil, ErrUsage.WithDetail("未知命令: %s", args[0])
	}
	if cmd, ok := group[""]; ok {
		return cmd, args[1:], nil
	}
	if len(args) < 2 {
		return nil, nil, ErrUsage.WithDetail("%s缺少子命令", args[0])
	}
	cmd, ok := group[args[1]]
	if !ok {
		return nil, nil, ErrUsage.WithDetail("未知子命令: %s %s", args[0], args[1])
	}
	return cmd, args[2:], nil
}

func (a *App) usage() string {
	names := make([]string, 0, len(a.groups))
	for name := range a.groups {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("用法: scrapledger <命令> [子命令] [参数]\n")
	for _, name := range names {
		subs := make([]string, 0, len(a.groups[name]))
		for sub := range a.groups[name] {
			if sub != "" {
				subs = append(subs, sub)
			}
		}
		sort.Strings(subs)
		if len(subs) == 0 {
			fmt.Fprintf(&b, "  %s\n", name)
		} else {
			fmt.Fprintf(&b, "  %s %s\n", name, strings.Join(subs, "|"))
		}
	}
	return b.String()
}

// newFlagSet 子命令参数集,解析错误不退出进程
func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// parse 解析参数,--help直接透传,其余错误转为参数错误
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return ErrUsage.WithDetail("%s: %v", fs.Name(), err)
	}
	if fs.NArg() > 0 {
		return ErrUsage.WithDetail("%s: 多余的参数 %v", fs.Name(), fs.Args())
	}
	return nil
}

func (a *App) migrate(ctx context.Context, args []string) (interface{}, error) {
	if err := parse(a.newFlagSet("migrate"), args); err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(a.db.WithContext(ctx)); err != nil {
		return nil, apperrors.Wrap(err, "数据库迁移失败")
	}
	return map[string]string{"status": "migrated"}, nil
}
