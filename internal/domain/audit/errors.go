package audit

import (
	apperrors "github.com/xiebiao/scrapledger/pkg/errors"
)

var (
	ErrInvalidAction  = apperrors.New(apperrors.ErrCodeInvalidParams, "未知的审计动作")
	ErrInvalidBatch   = apperrors.New(apperrors.ErrCodeInvalidParams, "审计记录必须关联批次")
	ErrNegativeWeight = apperrors.New(apperrors.ErrCodeInvalidParams, "审计重量不能为负数")

	// ErrBrokenChain 新记录的变动前重量与上一条记录的变动后重量不衔接
	ErrBrokenChain = apperrors.New(apperrors.ErrCodeConsistency, "审计链不连续")
)
