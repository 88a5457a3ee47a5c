// Package apptest 在sqlite内存库上组装全部用例,供应用层测试使用
package apptest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/xiebiao/scrapledger/internal/application/catalog"
	"github.com/xiebiao/scrapledger/internal/application/inventory"
	"github.com/xiebiao/scrapledger/internal/application/ledger"
	"github.com/xiebiao/scrapledger/internal/application/report"
	"github.com/xiebiao/scrapledger/internal/domain/allocation"
	"github.com/xiebiao/scrapledger/internal/domain/audit"
	"github.com/xiebiao/scrapledger/internal/domain/batch"
	domainledger "github.com/xiebiao/scrapledger/internal/domain/ledger"
	"github.com/xiebiao/scrapledger/internal/domain/material"
	domainreport "github.com/xiebiao/scrapledger/internal/domain/report"
	"github.com/xiebiao/scrapledger/internal/infrastructure/lock"
	"github.com/xiebiao/scrapledger/internal/infrastructure/logger"
	"github.com/xiebiao/scrapledger/internal/infrastructure/persistence/database"
	"github.com/xiebiao/scrapledger/internal/infrastructure/persistence/database/dbtest"
)

// Env 一套独立的测试环境
type Env struct {
	DB *gorm.DB

	Catalog     *catalog.UseCase
	Drafts      *ledger.CreateDraftUseCase
	Headers     *ledger.UpdateHeaderUseCase
	Items       *ledger.LineItemUseCase
	Ledger      *ledger.QueryUseCase
	Finalize    *ledger.FinalizeUseCase
	Batches     *inventory.BatchUseCase
	Allocations *inventory.AllocationUseCase
	Inventory   *inventory.QueryUseCase
	Reports     *report.UseCase

	Links  *database.LinkRepository
	Audits audit.Repository
}

// New 组装用例,依赖关系与命令行入口一致
func New(t testing.TB) *Env {
	t.Helper()
	db := dbtest.New(t)
	log := logger.Discard()
	locker := lock.NewLocalLocker()

	txm := database.NewTxManager(db)
	materials := database.NewMaterialRepository(db)
	txns := database.NewTransactionRepository(db)
	batches := database.NewBatchRepository(db)
	links := database.NewLinkRepository(db)
	audits := database.NewAuditRepository(db)

	recorder := audit.NewRecorder(audits, database.NewProvenanceReader(db))
	journal := batch.NewJournal(batches, recorder)
	engine := allocation.NewEngine(batches, links, txns, audits, journal, txm)
	ledgerService := domainledger.NewService(txns, materials, txm)
	batchService := batch.NewService(batches, materials, links, journal, txm)

	return &Env{
		DB:          db,
		Catalog:     catalog.NewUseCase(material.NewService(materials, txm), log),
		Drafts:      ledger.NewCreateDraftUseCase(ledgerService, log),
		Headers:     ledger.NewUpdateHeaderUseCase(ledgerService),
		Items:       ledger.NewLineItemUseCase(ledgerService),
		Ledger:      ledger.NewQueryUseCase(ledgerService),
		Finalize:    ledger.NewFinalizeUseCase(txns, engine, txm, locker, log),
		Batches:     inventory.NewBatchUseCase(batchService, locker, log),
		Allocations: inventory.NewAllocationUseCase(engine, batches, links, locker, log),
		Inventory:   inventory.NewQueryUseCase(batchService, recorder, engine, log),
		Reports:     report.NewUseCase(domainreport.NewReporter(database.NewReportRepository(db)), log),
		Links:       links,
		Audits:      audits,
	}
}

// D 解析十进制字面量
func D(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Material 登记物料并返回ID
func (e *Env) Material(t testing.TB, name string) uint {
	t.Helper()
	m, err := e.Catalog.Register(context.Background(), catalog.RegisterRequest{Name: name})
	require.NoError(t, err)
	return m.ID
}

// Batch 建批并返回ID
func (e *Env) Batch(t testing.TB, code string, materialID uint, seed string, createdAt time.Time) uint {
	t.Helper()
	b, err := e.Batches.Create(context.Background(), inventory.CreateBatchRequest{
		MaterialID: materialID,
		Code:       code,
		Seed:       D(seed),
		CreatedAt:  createdAt,
	})
	require.NoError(t, err)
	return b.ID
}

// Line 一条明细:物料、重量、单价
type Line struct {
	MaterialID uint
	Weight     string
	Price      string
}

// Draft 建草稿并加入明细,返回交易单ID和明细ID
func (e *Env) Draft(t testing.TB, kind string, date time.Time, lines ...Line) (uint, []uint) {
	t.Helper()
	ctx := context.Background()
	txn, err := e.Drafts.Execute(ctx, ledger.CreateDraftRequest{
		Kind:   kind,
		Header: ledger.HeaderRequest{Date: date, Counterparty: "测试客户"},
	})
	require.NoError(t, err)

	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		item, err := e.Items.Add(ctx, ledger.AddLineItemRequest{
			TransactionID: txn.ID,
			MaterialID:    l.MaterialID,
			Weight:        D(l.Weight),
			UnitPrice:     D(l.Price),
		})
		require.NoError(t, err)
		ids = append(ids, item.ID)
	}
	return txn.ID, ids
}

// Completed 建单并定稿
func (e *Env) Completed(t testing.TB, kind string, date time.Time, lines ...Line) (uint, []uint, *ledger.FinalizeResponse) {
	t.Helper()
	id, items := e.Draft(t, kind, date, lines...)
	resp, err := e.Finalize.Execute(context.Background(), ledger.FinalizeRequest{TransactionID: id})
	require.NoError(t, err)
	return id, items, resp
}
