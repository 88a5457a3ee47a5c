package weight

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/xiebiao/scrapledger/pkg/errors"
)

func TestEpsilonComparisons(t *testing.T) {
	assert.True(t, IsEmpty(decimal.Zero))
	assert.True(t, IsEmpty(decimal.RequireFromString("0.00005")))
	assert.False(t, IsEmpty(decimal.RequireFromString("0.001")))
	assert.True(t, IsPositive(decimal.RequireFromString("0.5")))
	assert.False(t, IsPositive(decimal.RequireFromString("-1")))
}

func TestMinAndSum(t *testing.T) {
	a := decimal.NewFromInt(5)
	b := decimal.RequireFromString("3.25")

	assert.True(t, Min(a, b).Equal(b))
	assert.True(t, Sum(a, b, decimal.NewFromInt(1)).Equal(decimal.RequireFromString("9.25")))
	assert.True(t, Sum().IsZero())
}

func TestCalendarDate(t *testing.T) {
	ts := time.Date(2024, 3, 9, 23, 59, 1, 500, time.UTC)
	got := CalendarDate(ts)

	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), got)
}

func TestCheckScale(t *testing.T) {
	tests := []struct {
		value string
		ok    bool
	}{
		{"10", true},
		{"0.1235", true},
		{"1.20000", true},
		{"0.12345", false},
		{"10.123456789012345678", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := CheckScale("重量", decimal.RequireFromString(tt.value))
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrScale)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
		})
	}
}

func TestRound(t *testing.T) {
	got := Round(decimal.RequireFromString("3.33335").Mul(decimal.NewFromInt(3)))
	assert.True(t, got.Equal(decimal.RequireFromString("10.0001")), got.String())
}
