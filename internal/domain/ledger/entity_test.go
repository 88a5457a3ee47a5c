package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/scrapledger/internal/domain/weight"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewDraft(t *testing.T) {
	txn, err := NewDraft(KindSelling)
	require.NoError(t, err)
	assert.True(t, txn.IsDraft())
	assert.True(t, txn.TotalAmount.IsZero())
	assert.Equal(t, 0, txn.Date.Hour())

	_, err = NewDraft(Kind(9))
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestLineItemSet(t *testing.T) {
	item, err := NewLineItem(1, d("2.5"), d("3.2"))
	require.NoError(t, err)
	assert.True(t, d("8").Equal(item.Subtotal))

	_, err = NewLineItem(0, d("1"), d("1"))
	assert.ErrorIs(t, err, ErrMaterialRequired)
	_, err = NewLineItem(1, d("0"), d("1"))
	assert.ErrorIs(t, err, ErrInvalidWeight)
	_, err = NewLineItem(1, d("1"), d("-1"))
	assert.ErrorIs(t, err, ErrInvalidPrice)

	assert.ErrorIs(t, item.Set(d("-1"), d("1")), ErrInvalidWeight)
	assert.True(t, d("2.5").Equal(item.Weight), "校验失败不修改明细")

	assert.ErrorIs(t, item.Set(d("0.12345"), d("1")), weight.ErrScale)
	assert.ErrorIs(t, item.Set(d("1"), d("0.00001")), weight.ErrScale)
	assert.True(t, d("2.5").Equal(item.Weight))

	// 小计按4位小数舍入
	require.NoError(t, item.Set(d("3.3333"), d("1.5")))
	assert.True(t, d("5").Equal(item.Subtotal), item.Subtotal.String())
}

func TestComplete(t *testing.T) {
	txn, err := NewDraft(KindBuying)
	require.NoError(t, err)
	assert.ErrorIs(t, txn.Complete(decimal.Zero), ErrEmptyTransaction)

	txn.Items = []LineItem{
		{MaterialID: 1, Weight: d("10"), UnitPrice: d("300"), Subtotal: d("3000")},
		{MaterialID: 2, Weight: d("1.5"), UnitPrice: d("2"), Subtotal: d("3")},
	}
	assert.ErrorIs(t, txn.Complete(d("-1")), ErrInvalidPaidAmount)
	assert.ErrorIs(t, txn.Complete(d("1.00001")), weight.ErrScale)
	assert.Equal(t, StatusDraft, txn.Status)
	require.NoError(t, txn.Complete(d("3000")))

	assert.Equal(t, StatusCompleted, txn.Status)
	assert.True(t, d("3003").Equal(txn.TotalAmount))
	assert.True(t, d("3000").Equal(txn.PaidAmount))
	assert.ErrorIs(t, txn.Complete(d("3003")), ErrNotDraft)
	assert.ErrorIs(t, txn.ApplyHeader(Header{Counterparty: "x"}), ErrNotDraft)
}

func TestApplyHeader(t *testing.T) {
	buying, _ := NewDraft(KindBuying)
	err := buying.ApplyHeader(Header{Delivery: &Delivery{Plate: "A1"}})
	assert.ErrorIs(t, err, ErrDeliveryOnBuying)

	rejected, _ := NewDraft(KindSelling)
	err = rejected.ApplyHeader(Header{Delivery: &Delivery{GrossWeight: d("3.21234")}})
	assert.ErrorIs(t, err, weight.ErrScale)

	selling, _ := NewDraft(KindSelling)
	date := time.Date(2026, 3, 1, 15, 4, 5, 0, time.UTC)
	require.NoError(t, selling.ApplyHeader(Header{
		Date:         date,
		Counterparty: "回收站A",
		Delivery:     &Delivery{Plate: "A1", GrossWeight: d("3.2")},
	}))
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), selling.Date)
	assert.Equal(t, "A1", selling.Delivery.Plate)
}

func TestParse(t *testing.T) {
	k, err := ParseKind("sell")
	require.NoError(t, err)
	assert.Equal(t, KindSelling, k)
	_, err = ParseKind("lend")
	assert.ErrorIs(t, err, ErrInvalidKind)

	s, err := ParseStatus("Completed")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s)
	_, err = ParseStatus("Void")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
