package cli

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// decimalFlag 十进制参数,set记录是否显式传入
type decimalFlag struct {
	value decimal.Decimal
	set   bool
}

func (f *decimalFlag) String() string {
	if f == nil {
		return ""
	}
	return f.value.String()
}

func (f *decimalFlag) Set(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("无效的数值: %s", s)
	}
	f.value, f.set = d, true
	return nil
}

// ptr 未传入时返回nil
func (f *decimalFlag) ptr() *decimal.Decimal {
	if !f.set {
		return nil
	}
	v := f.value
	return &v
}

// dateFlag 日期参数,格式2006-01-02
type dateFlag struct {
	value time.Time
}

func (f *dateFlag) String() string {
	if f == nil || f.value.IsZero() {
		return ""
	}
	return f.value.Format(dateLayout)
}

func (f *dateFlag) Set(s string) error {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("日期格式应为%s: %s", dateLayout, s)
	}
	f.value = t
	return nil
}

// optionalUint 0表示未指定
func optionalUint(v uint) *uint {
	if v == 0 {
		return nil
	}
	return &v
}
