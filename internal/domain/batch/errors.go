package batch

import (
	apperrors "github.com/xiebiao/scrapledger/pkg/errors"
)

// 批次领域错误定义
var (
	ErrBatchNotFound    = apperrors.New(apperrors.ErrCodeBatchNotFound, "批次不存在")
	ErrCodeDuplicate    = apperrors.New(apperrors.ErrCodeDuplicateEntry, "批次号已存在")
	ErrMaterialRequired = apperrors.New(apperrors.ErrCodeInvalidParams, "批次必须指定物料")
	ErrInvalidSeed      = apperrors.New(apperrors.ErrCodeInvalidParams, "初始重量不能为负数")
	ErrSeedTooSmall     = apperrors.New(apperrors.ErrCodeInvalidParams, "初始重量必须大于0.0001")
	ErrInvalidStatus    = apperrors.New(apperrors.ErrCodeInvalidParams, "批次状态必须是InStock、Depleted、SoldOut或Deleted")

	// ErrBatchDeleted 批次已作废,拒绝任何重量变动
	ErrBatchDeleted = apperrors.New(apperrors.ErrCodeInvalidStatus, "批次已作废")

	// ErrBatchInUse 仍有分配记录指向该批次
	ErrBatchInUse = apperrors.New(apperrors.ErrCodeReferentialIntegrity, "批次仍有分配记录,无法作废")

	// ErrWeightUnderflow 变动后重量为负
	ErrWeightUnderflow = apperrors.New(apperrors.ErrCodeInsufficientStock, "批次重量不足")

	// ErrConcurrentUpdate 乐观锁冲突
	ErrConcurrentUpdate = apperrors.New(apperrors.ErrCodeConsistency, "批次已被并发修改")
)
