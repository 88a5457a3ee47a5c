package allocation

import (
	apperrors "github.com/xiebiao/scrapledger/pkg/errors"
)

// 分配领域错误定义
var (
	ErrLinkNotFound = apperrors.New(apperrors.ErrCodeLinkNotFound, "分配记录不存在")

	ErrInvalidWeight     = apperrors.New(apperrors.ErrCodeInvalidParams, "分配重量必须大于0")
	ErrMaterialMismatch  = apperrors.New(apperrors.ErrCodeInvalidParams, "批次物料与明细物料不一致")
	ErrNotPurchase       = apperrors.New(apperrors.ErrCodeInvalidParams, "只有收购明细可以挂入批次")
	ErrNotSale           = apperrors.New(apperrors.ErrCodeInvalidParams, "只有销售明细可以按FIFO出库")
	ErrPurchaseNotClosed = apperrors.New(apperrors.ErrCodeInvalidStatus, "收购单尚未定稿")

	// ErrOverAllocation 分配重量超过明细剩余重量
	ErrOverAllocation = apperrors.New(apperrors.ErrCodeOverAllocation, "分配重量超过明细剩余重量")

	// ErrInsufficientStock FIFO可用库存不足
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "可用库存不足")

	// ErrDrift 缓存重量与台账推导值不一致
	ErrDrift = apperrors.New(apperrors.ErrCodeConsistency, "批次重量与台账不一致")
)
