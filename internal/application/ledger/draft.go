package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/xiebiao/scrapledger/internal/domain/ledger"
	"github.com/xiebiao/scrapledger/internal/infrastructure/logger"
	"github.com/xiebiao/scrapledger/pkg/validation"
)

// CreateDraftUseCase 创建草稿交易单
type CreateDraftUseCase struct {
	service ledger.Service
	log     logrus.FieldLogger
}

// NewCreateDraftUseCase 创建草稿用例
func NewCreateDraftUseCase(service ledger.Service, log logrus.FieldLogger) *CreateDraftUseCase {
	return &CreateDraftUseCase{service: service, log: log}
}

// HeaderRequest 抬头字段,全部可选;修改抬头时整体替换
type HeaderRequest struct {
	Date          time.Time
	Counterparty  string `validate:"max=100"`
	Affiliation   string `validate:"max=100"`
	PaymentMethod string `validate:"max=50"`

	// 以下仅销售单
	Driver      string          `validate:"max=50"`
	Plate       string          `validate:"max=20"`
	GrossWeight decimal.Decimal `validate:"gte=0"`
	LicenseRef  string          `validate:"max=255"`
}

func (h HeaderRequest) hasDelivery() bool {
	return h.Driver != "" || h.Plate != "" || h.LicenseRef != "" || !h.GrossWeight.IsZero()
}

func (h HeaderRequest) isZero() bool {
	return h.Date.IsZero() && h.Counterparty == "" && h.Affiliation == "" && h.PaymentMethod == "" && !h.hasDelivery()
}

func (h HeaderRequest) toHeader() ledger.Header {
	header := ledger.Header{
		Date:          h.Date,
		Counterparty:  h.Counterparty,
		Affiliation:   h.Affiliation,
		PaymentMethod: h.PaymentMethod,
	}
	if h.hasDelivery() {
		header.Delivery = &ledger.Delivery{
			Driver:      h.Driver,
			Plate:       h.Plate,
			GrossWeight: h.GrossWeight,
			LicenseRef:  h.LicenseRef,
		}
	}
	return header
}

// CreateDraftRequest 创建草稿请求DTO
type CreateDraftRequest struct {
	Kind   string `validate:"required"`
	Header HeaderRequest
}

// Execute 草稿立即落库;请求带抬头时随后写入抬头
func (uc *CreateDraftUseCase) Execute(ctx context.Context, req CreateDraftRequest) (*TransactionResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	kind, err := ledger.ParseKind(req.Kind)
	if err != nil {
		return nil, err
	}

	t, err := uc.service.CreateDraft(ctx, kind)
	if err != nil {
		logger.LogError(ctx, uc.log, "ledger", "CreateDraft", "创建草稿失败", req.Kind, err)
		return nil, err
	}
	if !req.Header.isZero() {
		if t, err = uc.service.UpdateHeader(ctx, t.ID, req.Header.toHeader()); err != nil {
			return nil, err
		}
	}

	uc.log.WithFields(logrus.Fields{"txn_id": t.ID, "kind": t.Kind.String()}).Info("草稿已创建")
	return toTransactionResponse(t), nil
}

// UpdateHeaderUseCase 修改草稿抬头
type UpdateHeaderUseCase struct {
	service ledger.Service
}

// NewUpdateHeaderUseCase 创建修改抬头用例
func NewUpdateHeaderUseCase(service ledger.Service) *UpdateHeaderUseCase {
	return &UpdateHeaderUseCase{service: service}
}

// UpdateHeaderRequest 修改抬头请求DTO
type UpdateHeaderRequest struct {
	TransactionID uint `validate:"required"`
	Header        HeaderRequest
}

func (uc *UpdateHeaderUseCase) Execute(ctx context.Context, req UpdateHeaderRequest) (*TransactionResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	t, err := uc.service.UpdateHeader(ctx, req.TransactionID, req.Header.toHeader())
	if err != nil {
		return nil, err
	}
	return toTransactionResponse(t), nil
}
