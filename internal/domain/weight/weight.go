// Package weight 重量与金额的十进制运算约定
//
// 所有重量(kg)和金额统一使用decimal.Decimal,避免float64累计误差。
package weight

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/xiebiao/scrapledger/pkg/errors"
)

// Scale 重量与金额保留的小数位数,与数据库decimal(18,4)一致
const Scale int32 = 4

var (
	// Epsilon 批次重量比较容差,低于该值视为已耗尽
	Epsilon = decimal.New(1, -4)

	// ReportEpsilon 未分配采购报表的容差(0.01kg)
	ReportEpsilon = decimal.New(1, -2)

	// Zero 零值
	Zero = decimal.Zero

	// ErrScale 小数位超过Scale,落库后会被数据库舍入
	ErrScale = apperrors.New(apperrors.ErrCodeInvalidParams, "重量和金额最多保留4位小数")
)

// IsEmpty 重量是否可视为0
func IsEmpty(w decimal.Decimal) bool {
	return w.LessThanOrEqual(Epsilon)
}

// IsPositive 重量是否大于容差
func IsPositive(w decimal.Decimal) bool {
	return w.GreaterThan(Epsilon)
}

// Min 返回较小值
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Sum 求和
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// CalendarDate 截断为UTC零点,用于只关心日期的字段
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CheckScale 入口校验:超过Scale位小数直接拒绝,不做舍入
func CheckScale(field string, d decimal.Decimal) error {
	if !d.Equal(d.Truncate(Scale)) {
		return ErrScale.WithDetail("%s: %s", field, d.String())
	}
	return nil
}

// Round 计算结果(如小计)按Scale四舍五入
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}
