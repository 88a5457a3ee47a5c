package material

import (
	apperrors "github.com/xiebiao/scrapledger/pkg/errors"
)

// 物料领域错误定义
var (
	// ErrMaterialNotFound 物料不存在
	ErrMaterialNotFound = apperrors.New(apperrors.ErrCodeMaterialNotFound, "物料不存在")

	// ErrNameDuplicate 物料名称已存在
	ErrNameDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "物料名称已存在")

	// ErrInvalidName 物料名称为空
	ErrInvalidName = apperrors.New(apperrors.ErrCodeInvalidParams, "物料名称不能为空")

	// ErrInvalidUnit 不支持的计量单位
	ErrInvalidUnit = apperrors.New(apperrors.ErrCodeInvalidParams, "不支持的计量单位")

	// ErrMaterialInUse 物料仍被交易明细或批次引用
	ErrMaterialInUse = apperrors.New(apperrors.ErrCodeReferentialIntegrity, "物料仍被交易明细或批次引用,无法删除")
)
