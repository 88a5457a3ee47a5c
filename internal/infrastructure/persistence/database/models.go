package database

import (
	"time"

	"github.com/shopspring/decimal"
)

// GORM数据模型,与领域实体分离,由各Repository负责转换
// 重量与金额统一使用decimal(18,4)

// MaterialModel 物料
type MaterialModel struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;size:100;not null;comment:物料名称"`
	Unit      string    `gorm:"size:16;not null;comment:计量单位"`
	Class     string    `gorm:"size:50;comment:分类"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (MaterialModel) TableName() string {
	return "materials"
}

// TransactionModel 交易单
type TransactionModel struct {
	ID            uint            `gorm:"primaryKey"`
	Kind          int             `gorm:"index:idx_kind_status_date;not null;comment:类型(1收购2销售)"`
	Status        int             `gorm:"index:idx_kind_status_date;not null;default:1;comment:状态(1草稿2已完成)"`
	Date          time.Time       `gorm:"index:idx_kind_status_date;type:date;comment:交易日期"`
	Counterparty  string          `gorm:"size:100;comment:交易对象"`
	Affiliation   string          `gorm:"size:100;comment:所属单位"`
	PaymentMethod string          `gorm:"size:50;comment:付款方式"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0;comment:总金额"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0;comment:实付金额"`
	Driver        string          `gorm:"size:50;comment:司机(销售)"`
	Plate         string          `gorm:"size:20;comment:车牌(销售)"`
	GrossWeight   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0;comment:毛重(销售)"`
	LicenseRef    string          `gorm:"size:255;comment:驾照影像引用(销售)"`
	Items         []LineItemModel `gorm:"foreignKey:TransactionID"`
	CreatedAt     time.Time       `gorm:"comment:创建时间"`
	UpdatedAt     time.Time       `gorm:"comment:更新时间"`
}

func (TransactionModel) TableName() string {
	return "transactions"
}

// LineItemModel 交易明细
type LineItemModel struct {
	ID            uint            `gorm:"primaryKey"`
	TransactionID uint            `gorm:"index;not null;comment:交易单ID"`
	MaterialID    uint            `gorm:"index;not null;comment:物料ID"`
	Weight        decimal.Decimal `gorm:"type:decimal(18,4);not null;comment:重量"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;comment:单价"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(18,4);not null;comment:小计"`
}

func (LineItemModel) TableName() string {
	return "transaction_line_items"
}

// BatchModel 库存批次
// Version用于乐观锁,所有重量更新都带版本条件
type BatchModel struct {
	ID          uint            `gorm:"primaryKey"`
	Code        string          `gorm:"uniqueIndex;size:64;not null;comment:批次号"`
	MaterialID  uint            `gorm:"index:idx_material_status_created;not null;comment:物料ID"`
	NetWeight   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0;comment:当前净重"`
	SeedWeight  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0;comment:初始重量"`
	Status      int             `gorm:"index:idx_material_status_created;not null;default:1;comment:状态(1在库2耗尽3售罄4作废)"`
	Notes       string          `gorm:"type:text;comment:备注"`
	EvidenceRef string          `gorm:"size:255;comment:凭证引用"`
	QRRef       string          `gorm:"size:255;comment:二维码引用"`
	Version     int             `gorm:"not null;default:0;comment:乐观锁版本"`
	CreatedAt   time.Time       `gorm:"index:idx_material_status_created;comment:入库时间"`
	UpdatedAt   time.Time       `gorm:"comment:更新时间"`
}

func (BatchModel) TableName() string {
	return "inventory_batches"
}

// AllocationLinkModel 分配记录
type AllocationLinkModel struct {
	ID         uint            `gorm:"primaryKey"`
	BatchID    uint            `gorm:"index;not null;comment:批次ID"`
	LineItemID uint            `gorm:"index;not null;comment:交易明细ID"`
	Weight     decimal.Decimal `gorm:"type:decimal(18,4);not null;comment:分配重量"`
	Direction  string          `gorm:"size:8;not null;comment:方向(IN/OUT)"`
	CreatedAt  time.Time       `gorm:"comment:创建时间"`
}

func (AllocationLinkModel) TableName() string {
	return "allocation_links"
}

// AuditEntryModel 批次审计记录(只追加)
type AuditEntryModel struct {
	ID             uint            `gorm:"primaryKey"`
	BatchID        uint            `gorm:"index:idx_batch_date;not null;comment:批次ID"`
	LinkID         *uint           `gorm:"comment:分配记录ID"`
	LineItemID     *uint           `gorm:"index;comment:来源交易明细ID"`
	Action         string          `gorm:"size:16;not null;comment:动作"`
	Notes          string          `gorm:"type:text;comment:备注"`
	Date           time.Time       `gorm:"index:idx_batch_date;type:date;not null;comment:日期"`
	PreviousWeight decimal.Decimal `gorm:"type:decimal(18,4);not null;comment:变动前重量"`
	NewWeight      decimal.Decimal `gorm:"type:decimal(18,4);not null;comment:变动后重量"`
	CreatedAt      time.Time       `gorm:"comment:写入时间"`
}

func (AuditEntryModel) TableName() string {
	return "audit_entries"
}
