package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/scrapledger/internal/domain/ledger"
	"github.com/xiebiao/scrapledger/pkg/validation"
)

// LineItemUseCase 草稿明细的增删改
// 已完成的交易单不可变,由领域服务检查
type LineItemUseCase struct {
	service ledger.Service
}

// NewLineItemUseCase 创建明细用例
func NewLineItemUseCase(service ledger.Service) *LineItemUseCase {
	return &LineItemUseCase{service: service}
}

// AddLineItemRequest 新增明细请求DTO
type AddLineItemRequest struct {
	TransactionID uint            `validate:"required"`
	MaterialID    uint            `validate:"required"`
	Weight        decimal.Decimal `validate:"gt=0"`
	UnitPrice     decimal.Decimal `validate:"gte=0"`
}

// UpdateLineItemRequest 修改明细请求DTO
type UpdateLineItemRequest struct {
	LineItemID uint            `validate:"required"`
	Weight     decimal.Decimal `validate:"gt=0"`
	UnitPrice  decimal.Decimal `validate:"gte=0"`
}

func (uc *LineItemUseCase) Add(ctx context.Context, req AddLineItemRequest) (*LineItemResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	item, err := uc.service.AddLineItem(ctx, req.TransactionID, req.MaterialID, req.Weight, req.UnitPrice)
	if err != nil {
		return nil, err
	}
	resp := toLineItemResponse(item)
	return &resp, nil
}

func (uc *LineItemUseCase) Update(ctx context.Context, req UpdateLineItemRequest) (*LineItemResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	item, err := uc.service.UpdateLineItem(ctx, req.LineItemID, req.Weight, req.UnitPrice)
	if err != nil {
		return nil, err
	}
	resp := toLineItemResponse(item)
	return &resp, nil
}

func (uc *LineItemUseCase) Remove(ctx context.Context, lineItemID uint) error {
	if lineItemID == 0 {
		return ledger.ErrLineItemNotFound
	}
	return uc.service.RemoveLineItem(ctx, lineItemID)
}
