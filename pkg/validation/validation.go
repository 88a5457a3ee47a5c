// Package validation 请求参数校验
// 用例的Request结构体通过validate标签声明约束,失败时转换为ErrInvalidParams
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	apperrors "github.com/xiebiao/scrapledger/pkg/errors"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// decimal.Decimal按数值参与gt/gte等比较
		validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
			if d, ok := v.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
	})
	return validate
}

// Struct 校验结构体,返回的错误可用errors.Is(err, ErrInvalidParams)判断
func Struct(s interface{}) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.ErrInvalidParams.WithDetail("%v", err)
	}
	msgs := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		msgs[i] = message(fe)
	}
	return apperrors.ErrInvalidParams.WithDetail("%s", strings.Join(msgs, "; "))
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s不能为空", fe.Field())
	case "gt":
		return fmt.Sprintf("%s必须大于%s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s不能小于%s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s必须是[%s]之一", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s长度不能超过%s", fe.Field(), fe.Param())
	case "gtfield", "gtefield":
		return fmt.Sprintf("%s必须不早于%s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s不满足%s", fe.Field(), fe.Tag())
	}
}
