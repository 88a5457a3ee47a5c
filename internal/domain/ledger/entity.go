package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/scrapledger/internal/domain/weight"
)

// Kind 交易类型
type Kind int

const (
	KindBuying  Kind = 1 // 收购
	KindSelling Kind = 2 // 销售
)

// String 实现Stringer接口
func (k Kind) String() string {
	switch k {
	case KindBuying:
		return "Buying"
	case KindSelling:
		return "Selling"
	default:
		return "Unknown"
	}
}

// Valid 是否为已知交易类型
func (k Kind) Valid() bool {
	return k == KindBuying || k == KindSelling
}

// ParseKind 解析交易类型名称
func ParseKind(s string) (Kind, error) {
	switch s {
	case "Buying", "buying", "buy":
		return KindBuying, nil
	case "Selling", "selling", "sell":
		return KindSelling, nil
	}
	return 0, ErrInvalidKind
}

// ParseStatus 解析状态名称
func ParseStatus(s string) (Status, error) {
	switch s {
	case "Draft", "draft":
		return StatusDraft, nil
	case "Completed", "completed":
		return StatusCompleted, nil
	}
	return 0, ErrInvalidStatus.WithDetail("%s", s)
}

// Status 交易状态
type Status int

const (
	StatusDraft     Status = 1 // 草稿,可修改
	StatusCompleted Status = 2 // 已完成,不可变
)

func (s Status) String() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Delivery 销售单的出货信息
type Delivery struct {
	Driver      string
	Plate       string
	GrossWeight decimal.Decimal
	LicenseRef  string // 驾照影像引用
}

// Header 交易单抬头,草稿阶段可以陆续补全
type Header struct {
	Date          time.Time
	Counterparty  string
	Affiliation   string
	PaymentMethod string
	Delivery      *Delivery
}

// Transaction 交易单(聚合根),LineItem是其子实体
type Transaction struct {
	ID            uint
	Kind          Kind
	Date          time.Time
	Counterparty  string
	Affiliation   string
	PaymentMethod string
	Status        Status
	TotalAmount   decimal.Decimal
	PaidAmount    decimal.Decimal
	Delivery      *Delivery // 仅销售单
	Items         []LineItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LineItem 交易明细
type LineItem struct {
	ID            uint
	TransactionID uint
	MaterialID    uint
	Weight        decimal.Decimal
	UnitPrice     decimal.Decimal
	Subtotal      decimal.Decimal
}

// NewDraft 创建草稿交易单,只需要交易类型
func NewDraft(kind Kind) (*Transaction, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	now := time.Now()
	return &Transaction{
		Kind:        kind,
		Date:        weight.CalendarDate(now),
		Status:      StatusDraft,
		TotalAmount: decimal.Zero,
		PaidAmount:  decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// NewLineItem 创建明细,重量必须为正,单价不能为负
func NewLineItem(materialID uint, w, unitPrice decimal.Decimal) (*LineItem, error) {
	item := &LineItem{MaterialID: materialID}
	if err := item.Set(w, unitPrice); err != nil {
		return nil, err
	}
	return item, nil
}

// Set 更新重量与单价并重算小计
func (li *LineItem) Set(w, unitPrice decimal.Decimal) error {
	if li.MaterialID == 0 {
		return ErrMaterialRequired
	}
	if !w.IsPositive() {
		return ErrInvalidWeight
	}
	if unitPrice.IsNegative() {
		return ErrInvalidPrice
	}
	if err := weight.CheckScale("重量", w); err != nil {
		return err
	}
	if err := weight.CheckScale("单价", unitPrice); err != nil {
		return err
	}
	li.Weight = w
	li.UnitPrice = unitPrice
	li.Subtotal = weight.Round(w.Mul(unitPrice))
	return nil
}

// IsDraft 是否仍可修改
func (t *Transaction) IsDraft() bool {
	return t.Status == StatusDraft
}

// ApplyHeader 更新抬头字段,出货信息只允许出现在销售单上
func (t *Transaction) ApplyHeader(h Header) error {
	if !t.IsDraft() {
		return ErrNotDraft
	}
	if h.Delivery != nil && t.Kind != KindSelling {
		return ErrDeliveryOnBuying
	}
	if h.Delivery != nil {
		if err := weight.CheckScale("毛重", h.Delivery.GrossWeight); err != nil {
			return err
		}
	}
	if !h.Date.IsZero() {
		t.Date = weight.CalendarDate(h.Date)
	}
	t.Counterparty = h.Counterparty
	t.Affiliation = h.Affiliation
	t.PaymentMethod = h.PaymentMethod
	if h.Delivery != nil {
		t.Delivery = h.Delivery
	}
	t.UpdatedAt = time.Now()
	return nil
}

// CanTransitionTo 状态机:Draft→Completed单向
func (t *Transaction) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusDraft:     {StatusCompleted},
		StatusCompleted: {},
	}
	for _, allowed := range transitions[t.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Complete 定稿:重算总额并记录实付金额
func (t *Transaction) Complete(paidAmount decimal.Decimal) error {
	if !t.CanTransitionTo(StatusCompleted) {
		return ErrNotDraft
	}
	if len(t.Items) == 0 {
		return ErrEmptyTransaction
	}
	if paidAmount.IsNegative() {
		return ErrInvalidPaidAmount
	}
	if err := weight.CheckScale("实付金额", paidAmount); err != nil {
		return err
	}
	t.TotalAmount = t.CalculateTotal()
	t.PaidAmount = paidAmount
	t.Status = StatusCompleted
	t.UpdatedAt = time.Now()
	return nil
}

// CalculateTotal 总额 = Σ小计
func (t *Transaction) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range t.Items {
		total = total.Add(item.Subtotal)
	}
	return total
}

// FindItem 在聚合内查找明细
func (t *Transaction) FindItem(itemID uint) (*LineItem, bool) {
	for i := range t.Items {
		if t.Items[i].ID == itemID {
			return &t.Items[i], true
		}
	}
	return nil, false
}
