package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/scrapledger/internal/domain/allocation"
	"github.com/xiebiao/scrapledger/internal/domain/audit"
	"github.com/xiebiao/scrapledger/internal/domain/batch"
)

const dateLayout = "2006-01-02"

// BatchResponse 批次响应DTO
type BatchResponse struct {
	ID          uint            `json:"id"`
	Code        string          `json:"code"`
	MaterialID  uint            `json:"material_id"`
	NetWeight   decimal.Decimal `json:"net_weight"`
	SeedWeight  decimal.Decimal `json:"seed_weight"`
	Status      string          `json:"status"`
	Notes       string          `json:"notes,omitempty"`
	EvidenceRef string          `json:"evidence_ref,omitempty"`
	QRRef       string          `json:"qr_ref,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

// LinkResponse 分配记录响应DTO
type LinkResponse struct {
	ID         uint            `json:"id"`
	BatchID    uint            `json:"batch_id"`
	LineItemID uint            `json:"line_item_id"`
	Weight     decimal.Decimal `json:"weight"`
	Direction  string          `json:"direction"`
	BatchNet   decimal.Decimal `json:"batch_net_weight"`
}

// AuditEntryResponse 审计记录响应DTO
type AuditEntryResponse struct {
	ID             uint                `json:"id"`
	BatchID        uint                `json:"batch_id"`
	LinkID         *uint               `json:"link_id,omitempty"`
	LineItemID     *uint               `json:"line_item_id,omitempty"`
	Action         string              `json:"action"`
	Notes          string              `json:"notes,omitempty"`
	Date           string              `json:"date"`
	PreviousWeight decimal.Decimal     `json:"previous_weight"`
	NewWeight      decimal.Decimal     `json:"new_weight"`
	Provenance     *ProvenanceResponse `json:"provenance,omitempty"`
}

// ProvenanceResponse 审计记录的来源交易单
type ProvenanceResponse struct {
	TransactionID uint   `json:"transaction_id"`
	Kind          string `json:"kind"`
	Date          string `json:"date"`
	Counterparty  string `json:"counterparty,omitempty"`
}

func toBatchResponse(b *batch.Batch) *BatchResponse {
	return &BatchResponse{
		ID:          b.ID,
		Code:        b.Code,
		MaterialID:  b.MaterialID,
		NetWeight:   b.NetWeight,
		SeedWeight:  b.SeedWeight,
		Status:      b.Status.String(),
		Notes:       b.Notes,
		EvidenceRef: b.EvidenceRef,
		QRRef:       b.QRRef,
		CreatedAt:   b.CreatedAt.Format(time.RFC3339),
	}
}

func toBatchResponses(list []*batch.Batch) []*BatchResponse {
	out := make([]*BatchResponse, len(list))
	for i, b := range list {
		out[i] = toBatchResponse(b)
	}
	return out
}

func toLinkResponse(l *allocation.Link, batchNet decimal.Decimal) *LinkResponse {
	return &LinkResponse{
		ID:         l.ID,
		BatchID:    l.BatchID,
		LineItemID: l.LineItemID,
		Weight:     l.Weight,
		Direction:  string(l.Direction),
		BatchNet:   batchNet,
	}
}

func toAuditEntryResponse(e *audit.Entry) *AuditEntryResponse {
	return &AuditEntryResponse{
		ID:             e.ID,
		BatchID:        e.BatchID,
		LinkID:         e.LinkID,
		LineItemID:     e.LineItemID,
		Action:         string(e.Action),
		Notes:          e.Notes,
		Date:           e.Date.Format(dateLayout),
		PreviousWeight: e.PreviousWeight,
		NewWeight:      e.NewWeight,
	}
}

func toHistoryResponse(h audit.HistoryEntry) *AuditEntryResponse {
	resp := toAuditEntryResponse(&h.Entry)
	if p := h.Provenance; p != nil {
		resp.Provenance = &ProvenanceResponse{
			TransactionID: p.TransactionID,
			Kind:          p.Kind,
			Date:          p.Date.Format(dateLayout),
			Counterparty:  p.Counterparty,
		}
	}
	return resp
}
