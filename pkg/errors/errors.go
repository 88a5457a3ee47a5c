package errors

import (
	"errors"
	"fmt"
)

// AppError 自定义应用错误
// Code决定错误类别(Kind),Message是稳定的提示语,Detail携带本次失败的上下文,
// Err是底层错误,仅用于日志。
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	msg := fmt.Sprintf("[%d] %s", e.Code, e.Message)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按Code+Message匹配,预定义错误派生出的副本仍然可以用errors.Is判断
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// Kind 返回错误类别
func (e *AppError) Kind() Kind {
	return kindForCode(e.Code)
}

// WithDetail 基于预定义错误生成带上下文的副本(不修改原错误)
func (e *AppError) WithDetail(format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Detail:  fmt.Sprintf(format, args...),
		Err:     e.Err,
	}
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误(如数据库错误),隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 4xxxx: 调用方错误(参数错误、业务规则校验失败)
// - 5xxxx: 系统错误(数据库异常、账实不一致)

const (
	// 系统级错误码(50000-50099)
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误
	ErrCodeLockError     = 50003 // 加锁失败
	ErrCodeConsistency   = 50010 // 缓存重量与台账不一致

	// 资源错误(40400-40499)
	ErrCodeNotFound            = 40400 // 资源不存在(通用)
	ErrCodeMaterialNotFound    = 40401 // 物料不存在
	ErrCodeTransactionNotFound = 40402 // 交易单不存在
	ErrCodeLineItemNotFound    = 40403 // 交易明细不存在
	ErrCodeBatchNotFound       = 40404 // 批次不存在
	ErrCodeLinkNotFound        = 40405 // 分配记录不存在

	// 业务规则错误(40000-40099)
	ErrCodeBusinessError        = 40000 // 业务错误(通用)
	ErrCodeInsufficientStock    = 40001 // 库存不足
	ErrCodeInvalidStatus        = 40002 // 状态不允许此操作
	ErrCodeDuplicateEntry       = 40009 // 重复记录(通用)
	ErrCodeReferentialIntegrity = 40010 // 存在关联记录,禁止删除
	ErrCodeOverAllocation       = 40011 // 分配重量超过明细重量

	// 参数错误(40900-40999)
	ErrCodeInvalidParams = 40900 // 参数错误
	ErrCodeBindError     = 40901 // 参数格式错误
)

// =========================================
// 预定义错误(避免每次都New)
// =========================================

var (
	// 系统错误
	ErrLockFailed = New(ErrCodeLockError, "获取物料锁失败")

	// 业务规则
	ErrInsufficientStock    = New(ErrCodeInsufficientStock, "库存不足")
	ErrInvalidStatus        = New(ErrCodeInvalidStatus, "当前状态不允许此操作")
	ErrReferentialIntegrity = New(ErrCodeReferentialIntegrity, "存在关联记录,无法删除")
	ErrConsistency          = New(ErrCodeConsistency, "库存重量与台账不一致")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
)

// =========================================
// 错误类别
// =========================================

// Kind 错误类别,调用方按类别处理而不关心具体错误码
type Kind string

const (
	KindValidation           Kind = "ValidationError"
	KindReferentialIntegrity Kind = "ReferentialIntegrityError"
	KindInsufficientStock    Kind = "InsufficientStockError"
	KindConsistency          Kind = "ConsistencyError"
	KindNotFound             Kind = "NotFoundError"
	KindBusiness             Kind = "BusinessError"
	KindInternal             Kind = "InternalError"
)

func kindForCode(code int) Kind {
	switch {
	case code == ErrCodeInsufficientStock:
		return KindInsufficientStock
	case code == ErrCodeReferentialIntegrity:
		return KindReferentialIntegrity
	case code == ErrCodeConsistency:
		return KindConsistency
	case code == ErrCodeOverAllocation, code == ErrCodeDuplicateEntry:
		return KindValidation
	case code >= 40900 && code <= 40999:
		return KindValidation
	case code >= 40400 && code <= 40499:
		return KindNotFound
	case code >= 40000 && code <= 40099:
		return KindBusiness
	default:
		return KindInternal
	}
}

// =========================================
// 辅助函数
// =========================================

// GetAppError 提取AppError(如果不是AppError则包装成Internal错误)
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// KindOf 返回错误类别,nil返回空串
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return GetAppError(err).Kind()
}

// IsKind 判断错误是否属于指定类别
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
