package batch

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/scrapledger/internal/domain/audit"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewBatch(t *testing.T) {
	b, err := NewBatch("  BATCH-1 ", 3, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "BATCH-1", b.Code)
	assert.Equal(t, StatusInStock, b.Status)
	assert.True(t, b.NetWeight.IsZero())
	assert.False(t, b.CreatedAt.IsZero())

	auto, err := NewBatch("", 3, time.Time{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(auto.Code, "BATCH"))

	_, err = NewBatch("X", 0, time.Time{})
	assert.ErrorIs(t, err, ErrMaterialRequired)
}

func TestApply(t *testing.T) {
	tests := []struct {
		name       string
		start      string
		mutation   Mutation
		wantPrev   string
		wantNext   string
		wantStatus Status
		wantErr    error
	}{
		{
			name:       "入库",
			start:      "0",
			mutation:   Mutation{Action: audit.ActionStockIn, Delta: d("5")},
			wantPrev:   "0",
			wantNext:   "5",
			wantStatus: StatusInStock,
		},
		{
			name:       "FIFO耗尽",
			start:      "5",
			mutation:   Mutation{Action: audit.ActionStockOut, Delta: d("-5"), DrainedStatus: StatusDepleted},
			wantPrev:   "5",
			wantNext:   "0",
			wantStatus: StatusDepleted,
		},
		{
			name:       "撤回耗尽",
			start:      "5",
			mutation:   Mutation{Action: audit.ActionStockOut, Delta: d("-5"), DrainedStatus: StatusSoldOut},
			wantPrev:   "5",
			wantNext:   "0",
			wantStatus: StatusSoldOut,
		},
		{
			name:       "低于容差视为耗尽",
			start:      "5",
			mutation:   Mutation{Action: audit.ActionStockOut, Delta: d("-4.99995"), DrainedStatus: StatusDepleted},
			wantPrev:   "5",
			wantNext:   "0.00005",
			wantStatus: StatusDepleted,
		},
		{
			name:     "重量不能为负",
			start:    "2",
			mutation: Mutation{Action: audit.ActionStockOut, Delta: d("-3")},
			wantErr:  ErrWeightUnderflow,
		},
		{
			name:       "作废清零",
			start:      "7",
			mutation:   Mutation{Action: audit.ActionDeleted},
			wantPrev:   "7",
			wantNext:   "0",
			wantStatus: StatusDeleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Batch{Code: "B", MaterialID: 1, NetWeight: d(tt.start), Status: StatusInStock}
			prev, next, err := b.apply(tt.mutation)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, d(tt.start).Equal(b.NetWeight), "失败时批次不变")
				return
			}
			require.NoError(t, err)
			assert.True(t, d(tt.wantPrev).Equal(prev))
			assert.True(t, d(tt.wantNext).Equal(next))
			assert.True(t, d(tt.wantNext).Equal(b.NetWeight))
			assert.Equal(t, tt.wantStatus, b.Status)
		})
	}

	t.Run("作废后不能再变动", func(t *testing.T) {
		b := &Batch{Code: "B", NetWeight: decimal.Zero, Status: StatusDeleted}
		_, _, err := b.apply(Mutation{Action: audit.ActionStockIn, Delta: d("1")})
		assert.ErrorIs(t, err, ErrBatchDeleted)
	})
}

func TestAvailable(t *testing.T) {
	assert.True(t, d("3").Equal((&Batch{NetWeight: d("3"), Status: StatusInStock}).Available()))
	assert.True(t, (&Batch{NetWeight: d("3"), Status: StatusDeleted}).Available().IsZero())
	assert.True(t, (&Batch{NetWeight: d("0.00001"), Status: StatusInStock}).Available().IsZero())

	list := FilterAvailable([]*Batch{
		{ID: 1, NetWeight: d("1"), Status: StatusInStock},
		{ID: 2, NetWeight: d("0"), Status: StatusInStock},
		{ID: 3, NetWeight: d("2"), Status: StatusSoldOut},
	})
	require.Len(t, list, 1)
	assert.Equal(t, uint(1), list[0].ID)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("soldout")
	require.NoError(t, err)
	assert.Equal(t, StatusSoldOut, s)

	_, err = ParseStatus("Lost")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
