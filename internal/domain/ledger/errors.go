package ledger

import (
	apperrors "github.com/xiebiao/scrapledger/pkg/errors"
)

// 交易领域错误定义
var (
	ErrTransactionNotFound = apperrors.New(apperrors.ErrCodeTransactionNotFound, "交易单不存在")
	ErrLineItemNotFound    = apperrors.New(apperrors.ErrCodeLineItemNotFound, "交易明细不存在")

	// ErrNotDraft 交易单已完成,不允许修改
	ErrNotDraft = apperrors.New(apperrors.ErrCodeInvalidStatus, "交易单已完成,不允许修改")

	ErrInvalidKind       = apperrors.New(apperrors.ErrCodeInvalidParams, "交易类型必须是Buying或Selling")
	ErrInvalidStatus     = apperrors.New(apperrors.ErrCodeInvalidParams, "交易状态必须是Draft或Completed")
	ErrMaterialRequired  = apperrors.New(apperrors.ErrCodeInvalidParams, "明细必须指定物料")
	ErrInvalidWeight     = apperrors.New(apperrors.ErrCodeInvalidParams, "重量必须大于0")
	ErrInvalidPrice      = apperrors.New(apperrors.ErrCodeInvalidParams, "单价不能为负数")
	ErrInvalidPaidAmount = apperrors.New(apperrors.ErrCodeInvalidParams, "实付金额不能为负数")
	ErrEmptyTransaction  = apperrors.New(apperrors.ErrCodeInvalidParams, "交易单没有明细,无法定稿")
	ErrDeliveryOnBuying  = apperrors.New(apperrors.ErrCodeInvalidParams, "收购单不能填写出货信息")
)
