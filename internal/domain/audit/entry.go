package audit

import (
	"time"

	"github.com/shopspring/decimal"
)

// Action 批次重量变动类型
type Action string

const (
	ActionStockIn     Action = "StockIn"     // 入库(初始重量、销售撤回)
	ActionStockOut    Action = "StockOut"    // 出库(销售消耗、采购撤回)
	ActionBatchUpdate Action = "BatchUpdate" // 采购重量挂入批次
	ActionDeleted     Action = "Deleted"     // 批次作废,重量清零
)

// Valid 是否为已知动作
func (a Action) Valid() bool {
	switch a {
	case ActionStockIn, ActionStockOut, ActionBatchUpdate, ActionDeleted:
		return true
	}
	return false
}

// Entry 审计记录,只追加不修改
type Entry struct {
	ID             uint
	BatchID        uint
	LinkID         *uint // 产生该记录的分配记录(撤回后分配记录会被删除,ID保留)
	LineItemID     *uint // 来源交易明细,用于追溯交易单
	Action         Action
	Notes          string
	Date           time.Time // 日历日期,不含时分秒
	PreviousWeight decimal.Decimal
	NewWeight      decimal.Decimal
	CreatedAt      time.Time
}

// Delta 本次变动量(带符号)
func (e *Entry) Delta() decimal.Decimal {
	return e.NewWeight.Sub(e.PreviousWeight)
}

// Provenance 审计记录的来源交易
type Provenance struct {
	LineItemID    uint
	TransactionID uint
	Kind          string
	Date          time.Time
	Counterparty  string
}

// HistoryEntry 审计记录及其来源(可选)
type HistoryEntry struct {
	Entry
	Provenance *Provenance
}
