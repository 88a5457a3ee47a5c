package response

import (
	"encoding/json"
	"fmt"
	"io"

	apperrors "github.com/xiebiao/scrapledger/pkg/errors"
)

// Response 统一输出结构
// Code是业务错误码,0表示成功;Kind是错误类别,调用方按类别处理
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Kind    string      `json:"kind,omitempty"`
	Detail  string      `json:"detail,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功输出(Code=0)
func Success(w io.Writer, data interface{}) error {
	return write(w, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误输出,非AppError按内部错误处理,底层错误不输出
// data不为nil时一并输出(如对账差异明细)
func Error(w io.Writer, err error, data interface{}) error {
	appErr := apperrors.GetAppError(err)
	return write(w, Response{
		Code:    appErr.Code,
		Message: appErr.Message,
		Kind:    string(appErr.Kind()),
		Detail:  appErr.Detail,
		Data:    data,
	})
}

func write(w io.Writer, resp Response) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("输出结果失败: %w", err)
	}
	return nil
}

// =========================================
// 分页输出结构
// =========================================

// PageData 分页数据封装
type PageData struct {
	List       interface{} `json:"list"`        // 数据列表
	Total      int64       `json:"total"`       // 总记录数
	Page       int         `json:"page"`        // 当前页码
	PageSize   int         `json:"page_size"`   // 每页大小
	TotalPages int         `json:"total_pages"` // 总页数
}

// NewPageData 创建分页数据
func NewPageData(list interface{}, total int64, page, pageSize int) *PageData {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(total) / pageSize
		if int(total)%pageSize != 0 {
			totalPages++
		}
	}

	return &PageData{
		List:       list,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
