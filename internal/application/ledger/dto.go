package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/scrapledger/internal/domain/allocation"
	"github.com/xiebiao/scrapledger/internal/domain/ledger"
)

const dateLayout = "2006-01-02"

// TransactionResponse 交易单响应DTO
type TransactionResponse struct {
	ID            uint               `json:"id"`
	Kind          string             `json:"kind"`
	Status        string             `json:"status"`
	Date          string             `json:"date"`
	Counterparty  string             `json:"counterparty,omitempty"`
	Affiliation   string             `json:"affiliation,omitempty"`
	PaymentMethod string             `json:"payment_method,omitempty"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	PaidAmount    decimal.Decimal    `json:"paid_amount"`
	Delivery      *DeliveryResponse  `json:"delivery,omitempty"`
	Items         []LineItemResponse `json:"items"`
	CreatedAt     string             `json:"created_at"`
}

// DeliveryResponse 出货信息
type DeliveryResponse struct {
	Driver      string          `json:"driver,omitempty"`
	Plate       string          `json:"plate,omitempty"`
	GrossWeight decimal.Decimal `json:"gross_weight"`
	LicenseRef  string          `json:"license_ref,omitempty"`
}

// LineItemResponse 交易明细响应DTO
type LineItemResponse struct {
	ID            uint            `json:"id"`
	TransactionID uint            `json:"transaction_id"`
	MaterialID    uint            `json:"material_id"`
	Weight        decimal.Decimal `json:"weight"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// AllocationResponse 销售明细的FIFO分配结果
type AllocationResponse struct {
	LineItemID uint                     `json:"line_item_id"`
	MaterialID uint                     `json:"material_id"`
	Allocated  decimal.Decimal          `json:"allocated"`
	Parts      []AllocationPartResponse `json:"parts"`
}

// AllocationPartResponse 从单个批次取走的部分
type AllocationPartResponse struct {
	LinkID    uint            `json:"link_id"`
	BatchID   uint            `json:"batch_id"`
	BatchCode string          `json:"batch_code"`
	Weight    decimal.Decimal `json:"weight"`
	Remaining decimal.Decimal `json:"remaining"`
}

func toTransactionResponse(t *ledger.Transaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:            t.ID,
		Kind:          t.Kind.String(),
		Status:        t.Status.String(),
		Date:          t.Date.Format(dateLayout),
		Counterparty:  t.Counterparty,
		Affiliation:   t.Affiliation,
		PaymentMethod: t.PaymentMethod,
		TotalAmount:   t.TotalAmount,
		PaidAmount:    t.PaidAmount,
		Items:         make([]LineItemResponse, len(t.Items)),
		CreatedAt:     t.CreatedAt.Format(time.RFC3339),
	}
	if d := t.Delivery; d != nil {
		resp.Delivery = &DeliveryResponse{
			Driver:      d.Driver,
			Plate:       d.Plate,
			GrossWeight: d.GrossWeight,
			LicenseRef:  d.LicenseRef,
		}
	}
	for i := range t.Items {
		resp.Items[i] = toLineItemResponse(&t.Items[i])
	}
	return resp
}

func toLineItemResponse(item *ledger.LineItem) LineItemResponse {
	return LineItemResponse{
		ID:            item.ID,
		TransactionID: item.TransactionID,
		MaterialID:    item.MaterialID,
		Weight:        item.Weight,
		UnitPrice:     item.UnitPrice,
		Subtotal:      item.Subtotal,
	}
}

func toAllocationResponse(a *allocation.Allocation) AllocationResponse {
	resp := AllocationResponse{
		LineItemID: a.LineItemID,
		MaterialID: a.MaterialID,
		Allocated:  a.Allocated,
		Parts:      make([]AllocationPartResponse, len(a.Parts)),
	}
	for i, p := range a.Parts {
		resp.Parts[i] = AllocationPartResponse{
			LinkID:    p.LinkID,
			BatchID:   p.BatchID,
			BatchCode: p.BatchCode,
			Weight:    p.Weight,
			Remaining: p.Remaining,
		}
	}
	return resp
}
