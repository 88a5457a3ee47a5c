package ledger

import (
	"context"
	"time"

	"github.com/xiebiao/scrapledger/internal/domain/ledger"
)

// QueryUseCase 交易单查询
type QueryUseCase struct {
	service ledger.Service
}

// NewQueryUseCase 创建交易单查询用例
func NewQueryUseCase(service ledger.Service) *QueryUseCase {
	return &QueryUseCase{service: service}
}

// ListRequest 列表请求DTO,Kind/Status为空表示不过滤
type ListRequest struct {
	Page     int
	PageSize int
	Kind     string
	Status   string
	From     time.Time
	To       time.Time
}

// ListResponse 列表响应DTO
type ListResponse struct {
	Items    []*TransactionResponse `json:"items"`
	Total    int64                  `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"page_size"`
}

func (uc *QueryUseCase) Get(ctx context.Context, id uint) (*TransactionResponse, error) {
	t, err := uc.service.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTransactionResponse(t), nil
}

func (uc *QueryUseCase) List(ctx context.Context, req ListRequest) (*ListResponse, error) {
	params := ledger.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		From:     req.From,
		To:       req.To,
	}
	if req.Kind != "" {
		kind, err := ledger.ParseKind(req.Kind)
		if err != nil {
			return nil, err
		}
		params.Kind = kind
	}
	if req.Status != "" {
		status, err := ledger.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		params.Status = status
	}
	params.Normalize()

	list, total, err := uc.service.List(ctx, params)
	if err != nil {
		return nil, err
	}
	resp := &ListResponse{
		Items:    make([]*TransactionResponse, len(list)),
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	}
	for i, t := range list {
		resp.Items[i] = toTransactionResponse(t)
	}
	return resp, nil
}
