//go:build wireinject
// +build wireinject

// Wire依赖注入配置
// 修改后执行 `wire gen ./cmd/scrapledger` 重新生成wire_gen.go

package main

import (
	"context"

	"github.com/google/wire"

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
	"github.com/xiebiao/scrapledger/internal/domain/uow"
	"github.com/xiebiao/scrapledger/internal/infrastructure/config"
	"github.com/xiebiao/scrapledger/internal/infrastructure/persistence/database"
	"github.com/xiebiao/scrapledger/internal/interface/cli"
)

// infrastructureSet 数据库、物料锁、日志
var infrastructureSet = wire.NewSet(
	provideDB,
	provideLocker,
	provideLogger,
)

// repositorySet 仓储与事务管理器
var repositorySet = wire.NewSet(
	database.NewMaterialRepository,
	database.NewTransactionRepository,
	database.NewBatchRepository,
	database.NewLinkRepository,
	database.NewAuditRepository,
	database.NewReportRepository,
	database.NewProvenanceReader,
	database.NewTxManager,
	wire.Bind(new(uow.Transactor), new(*database.TxManager)),
	wire.Bind(new(allocation.LinkRepository), new(*database.LinkRepository)),
	wire.Bind(new(batch.LinkCounter), new(*database.LinkRepository)),
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	material.NewService,
	domainledger.NewService,
	audit.NewRecorder,
	wire.Bind(new(batch.AuditAppender), new(*audit.Recorder)),
	batch.NewJournal,
	batch.NewService,
	allocation.NewEngine,
	domainreport.NewReporter,
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	catalog.NewUseCase,
	ledger.NewCreateDraftUseCase,
	ledger.NewUpdateHeaderUseCase,
	ledger.NewLineItemUseCase,
	ledger.NewQueryUseCase,
	ledger.NewFinalizeUseCase,
	inventory.NewBatchUseCase,
	inventory.NewAllocationUseCase,
	inventory.NewQueryUseCase,
	report.NewUseCase,
)

// InitializeApp 组装命令行应用
func InitializeApp(ctx context.Context, cfg *config.Config) (*cli.App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		cli.NewApp,
	)
	return nil, nil, nil
}
