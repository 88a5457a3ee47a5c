package batch

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/scrapledger/internal/domain/audit"
	"github.com/xiebiao/scrapledger/internal/domain/weight"
)

// Status 批次状态
//
//	InStock → Depleted/SoldOut  重量耗尽
//	Depleted/SoldOut → InStock  重新挂入重量
//	InStock/Depleted/SoldOut → Deleted  作废(终态)
type Status int

const (
	StatusInStock  Status = 1 // 在库
	StatusDepleted Status = 2 // 销售消耗完
	StatusSoldOut  Status = 3 // 撤回后无剩余
	StatusDeleted  Status = 4 // 已作废
)

func (s Status) String() string {
	switch s {
	case StatusInStock:
		return "InStock"
	case StatusDepleted:
		return "Depleted"
	case StatusSoldOut:
		return "SoldOut"
	case StatusDeleted:
		return "Deleted"
	default:
		return "Unknown"
	}
}

// ParseStatus 解析状态名称
func ParseStatus(s string) (Status, error) {
	for _, st := range []Status{StatusInStock, StatusDepleted, StatusSoldOut, StatusDeleted} {
		if strings.EqualFold(s, st.String()) {
			return st, nil
		}
	}
	return 0, ErrInvalidStatus.WithDetail("%s", s)
}

// Batch 库存批次(一批实物)
// NetWeight只能经由Journal修改
type Batch struct {
	ID          uint
	Code        string // 批次号,唯一,如BATCH-1
	MaterialID  uint
	NetWeight   decimal.Decimal
	SeedWeight  decimal.Decimal // 建批时的初始重量
	Status      Status
	Notes       string
	EvidenceRef string // 过磅照片等凭证引用
	QRRef       string // 批次二维码引用
	Version     int    // 乐观锁版本号
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBatch 创建空批次,初始重量通过Journal以StockIn记入
func NewBatch(code string, materialID uint, createdAt time.Time) (*Batch, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		code = GenerateBatchCode()
	}
	if materialID == 0 {
		return nil, ErrMaterialRequired
	}
	now := time.Now()
	if createdAt.IsZero() {
		createdAt = now
	}
	return &Batch{
		Code:       code,
		MaterialID: materialID,
		NetWeight:  decimal.Zero,
		SeedWeight: decimal.Zero,
		Status:     StatusInStock,
		CreatedAt:  createdAt,
		UpdatedAt:  now,
	}, nil
}

// IsDeleted 是否已作废
func (b *Batch) IsDeleted() bool {
	return b.Status == StatusDeleted
}

// Available FIFO可用重量,非在库状态为0
func (b *Batch) Available() decimal.Decimal {
	if b.Status != StatusInStock || weight.IsEmpty(b.NetWeight) {
		return decimal.Zero
	}
	return b.NetWeight
}

// Mutation 一次重量变动
type Mutation struct {
	Action     audit.Action
	Delta      decimal.Decimal
	Notes      string
	LinkID     *uint
	LineItemID *uint

	// DrainedStatus 变动后重量耗尽时进入的状态(Depleted或SoldOut)
	DrainedStatus Status
}

// apply 计算变动后的重量和状态,只由Journal调用
func (b *Batch) apply(m Mutation) (prev, next decimal.Decimal, err error) {
	if b.IsDeleted() {
		return prev, next, ErrBatchDeleted.WithDetail("批次%s", b.Code)
	}
	prev = b.NetWeight

	if m.Action == audit.ActionDeleted {
		b.NetWeight = decimal.Zero
		b.Status = StatusDeleted
		b.UpdatedAt = time.Now()
		return prev, b.NetWeight, nil
	}

	next = prev.Add(m.Delta)
	if next.IsNegative() {
		return prev, next, ErrWeightUnderflow.WithDetail("批次%s: 当前%s, 变动%s",
			b.Code, prev.String(), m.Delta.String())
	}

	switch {
	case weight.IsPositive(next):
		b.Status = StatusInStock
	case m.DrainedStatus == StatusDepleted || m.DrainedStatus == StatusSoldOut:
		b.Status = m.DrainedStatus
	default:
		b.Status = StatusDepleted
	}
	b.NetWeight = next
	b.UpdatedAt = time.Now()
	return prev, next, nil
}
