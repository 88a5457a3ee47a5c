package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/scrapledger/internal/application/apptest"
	"github.com/xiebiao/scrapledger/internal/application/inventory"
	"github.com/xiebiao/scrapledger/internal/application/ledger"
	"github.com/xiebiao/scrapledger/internal/domain/allocation"
	"github.com/xiebiao/scrapledger/internal/domain/batch"
	"github.com/xiebiao/scrapledger/internal/domain/weight"
	apperrors "github.com/xiebiao/scrapledger/pkg/errors"
)

var day = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func TestCreateBatch(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	copper := env.Material(t, "紫铜")

	b, err := env.Batches.Create(ctx, inventory.CreateBatchRequest{MaterialID: copper, Seed: apptest.D("12.5"), Notes: "期初库存"})
	require.NoError(t, err)
	assert.NotEmpty(t, b.Code, "批次号为空时自动生成")
	assert.True(t, apptest.D("12.5").Equal(b.NetWeight))
	assert.Equal(t, "InStock", b.Status)

	history, err := env.Inventory.History(ctx, b.ID, false)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "StockIn", history[0].Action)

	_, err = env.Batches.Create(ctx, inventory.CreateBatchRequest{MaterialID: copper, Code: b.Code})
	assert.ErrorIs(t, err, batch.ErrCodeDuplicate)

	_, err = env.Batches.Create(ctx, inventory.CreateBatchRequest{MaterialID: 999})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	_, err = env.Batches.Create(ctx, inventory.CreateBatchRequest{MaterialID: copper, Seed: apptest.D("-1")})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = env.Batches.Create(ctx, inventory.CreateBatchRequest{MaterialID: copper, Seed: apptest.D("0.00001")})
	assert.ErrorIs(t, err, weight.ErrScale)
	_, err = env.Batches.Create(ctx, inventory.CreateBatchRequest{MaterialID: copper, Seed: apptest.D("0.0001")})
	assert.ErrorIs(t, err, batch.ErrSeedTooSmall, "低于容差的初始重量不能被静默丢弃")

	empty, err := env.Batches.Create(ctx, inventory.CreateBatchRequest{MaterialID: copper, Code: "EMPTY"})
	require.NoError(t, err)
	history, err = env.Inventory.History(ctx, empty.ID, false)
	require.NoError(t, err)
	assert.Empty(t, history, "没有初始重量不记审计")
}

func TestLinkManual(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	copper := env.Material(t, "紫铜")
	brass := env.Material(t, "黄铜")
	_, items, _ := env.Completed(t, "Buying", day, apptest.Line{MaterialID: copper, Weight: "10", Price: "300"})
	b1 := env.Batch(t, "C1", copper, "0", day)
	b2 := env.Batch(t, "C2", copper, "0", day)

	t.Run("同一明细可以拆到多个批次", func(t *testing.T) {
		_, err := env.Allocations.Link(ctx, inventory.LinkRequest{BatchID: b1, LineItemID: items[0], Weight: apptest.D("6")})
		require.NoError(t, err)
		_, err = env.Allocations.Link(ctx, inventory.LinkRequest{BatchID: b2, LineItemID: items[0], Weight: apptest.D("4")})
		require.NoError(t, err)
	})

	t.Run("超出明细剩余重量", func(t *testing.T) {
		_, err := env.Allocations.Link(ctx, inventory.LinkRequest{BatchID: b1, LineItemID: items[0], Weight: apptest.D("0.5")})
		assert.ErrorIs(t, err, allocation.ErrOverAllocation)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("物料不一致", func(t *testing.T) {
		brassBatch := env.Batch(t, "H1", brass, "0", day)
		_, err := env.Allocations.Link(ctx, inventory.LinkRequest{BatchID: brassBatch, LineItemID: items[0], Weight: apptest.D("1")})
		assert.ErrorIs(t, err, allocation.ErrMaterialMismatch)
	})

	t.Run("草稿收购单不能挂批", func(t *testing.T) {
		_, draftItems := env.Draft(t, "Buying", day, apptest.Line{MaterialID: copper, Weight: "5", Price: "1"})
		_, err := env.Allocations.Link(ctx, inventory.LinkRequest{BatchID: b1, LineItemID: draftItems[0], Weight: apptest.D("1")})
		assert.ErrorIs(t, err, allocation.ErrPurchaseNotClosed)
	})

	t.Run("销售明细不能挂批", func(t *testing.T) {
		_, saleItems := env.Draft(t, "Selling", day, apptest.Line{MaterialID: copper, Weight: "1", Price: "1"})
		_, err := env.Allocations.Link(ctx, inventory.LinkRequest{BatchID: b1, LineItemID: saleItems[0], Weight: apptest.D("1")})
		assert.ErrorIs(t, err, allocation.ErrNotPurchase)
	})

	t.Run("最多4位小数", func(t *testing.T) {
		_, err := env.Allocations.Link(ctx, inventory.LinkRequest{BatchID: b2, LineItemID: items[0], Weight: apptest.D("0.12345")})
		assert.ErrorIs(t, err, weight.ErrScale)
	})

	t.Run("重量必须为正", func(t *testing.T) {
		_, err := env.Allocations.Link(ctx, inventory.LinkRequest{BatchID: b1, LineItemID: items[0], Weight: decimal.Zero})
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	first, err := env.Inventory.Get(ctx, b1)
	require.NoError(t, err)
	assert.True(t, apptest.D("6").Equal(first.NetWeight))
}

func TestUnlinkRoundTrip(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	copper := env.Material(t, "紫铜")
	_, items, _ := env.Completed(t, "Buying", day, apptest.Line{MaterialID: copper, Weight: "10", Price: "300"})
	batchID := env.Batch(t, "C1", copper, "0", day)

	link, err := env.Allocations.Link(ctx, inventory.LinkRequest{BatchID: batchID, LineItemID: items[0], Weight: apptest.D("10")})
	require.NoError(t, err)

	entry, err := env.Allocations.Unlink(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, "StockOut", entry.Action)
	require.NotNil(t, entry.LinkID)
	assert.Equal(t, link.ID, *entry.LinkID)

	b, err := env.Inventory.Get(ctx, batchID)
	require.NoError(t, err)
	assert.True(t, b.NetWeight.IsZero())
	assert.Equal(t, "SoldOut", b.Status)

	_, err = env.Allocations.Unlink(ctx, link.ID)
	assert.ErrorIs(t, err, allocation.ErrLinkNotFound)

	// 撤回后明细重量重新可挂
	unallocated, err := env.Reports.Unallocated(ctx)
	require.NoError(t, err)
	require.Len(t, unallocated, 1)
	assert.True(t, apptest.D("10").Equal(unallocated[0].Remaining))

	_, err = env.Allocations.Link(ctx, inventory.LinkRequest{BatchID: batchID, LineItemID: items[0], Weight: apptest.D("10")})
	require.NoError(t, err)
	b, err = env.Inventory.Get(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, "InStock", b.Status)

	history, err := env.Inventory.History(ctx, batchID, false)
	require.NoError(t, err)
	actions := make([]string, len(history))
	for i, h := range history {
		actions[i] = h.Action
	}
	assert.Equal(t, []string{"BatchUpdate", "StockOut", "BatchUpdate"}, actions)
}

func TestUnlinkSaleRestoresStock(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	steel := env.Material(t, "废钢")
	batchID := env.Batch(t, "S1", steel, "5", day)
	_, _, sale := env.Completed(t, "Selling", day, apptest.Line{MaterialID: steel, Weight: "5", Price: "1"})

	b, err := env.Inventory.Get(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, "Depleted", b.Status)

	entry, err := env.Allocations.Unlink(ctx, sale.Allocations[0].Parts[0].LinkID)
	require.NoError(t, err)
	assert.Equal(t, "StockIn", entry.Action)
	assert.True(t, apptest.D("5").Equal(entry.NewWeight))

	b, err = env.Inventory.Get(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, "InStock", b.Status)
	assert.True(t, apptest.D("5").Equal(b.NetWeight))
}

func TestDeleteBatchGuard(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	copper := env.Material(t, "紫铜")
	_, items, _ := env.Completed(t, "Buying", day, apptest.Line{MaterialID: copper, Weight: "3", Price: "300"})
	batchID := env.Batch(t, "C1", copper, "2", day)

	link, err := env.Allocations.Link(ctx, inventory.LinkRequest{BatchID: batchID, LineItemID: items[0], Weight: apptest.D("3")})
	require.NoError(t, err)

	_, err = env.Batches.Delete(ctx, batchID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindReferentialIntegrity))

	b, err := env.Inventory.Get(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, "InStock", b.Status)
	assert.True(t, apptest.D("5").Equal(b.NetWeight))

	_, err = env.Allocations.Unlink(ctx, link.ID)
	require.NoError(t, err)

	deleted, err := env.Batches.Delete(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, "Deleted", deleted.Status)
	assert.True(t, deleted.NetWeight.IsZero())

	history, err := env.Inventory.History(ctx, batchID, false)
	require.NoError(t, err)
	last := history[len(history)-1]
	assert.Equal(t, "Deleted", last.Action)
	assert.True(t, apptest.D("2").Equal(last.PreviousWeight))

	_, err = env.Batches.Delete(ctx, batchID)
	assert.ErrorIs(t, err, batch.ErrBatchDeleted)

	stock, err := env.Inventory.InStock(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, stock)

	rec, err := env.Inventory.Reconcile(ctx, &batchID)
	require.NoError(t, err)
	assert.Empty(t, rec.Drifts)
}

// 任意操作序列之后:批次重量 = 初始重量 + ΣIN - ΣOUT,且与审计链一致
func TestWeightConservation(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	steel := env.Material(t, "废钢")
	_, buys, _ := env.Completed(t, "Buying", day,
		apptest.Line{MaterialID: steel, Weight: "7.25", Price: "2"},
		apptest.Line{MaterialID: steel, Weight: "3.5", Price: "2"},
	)
	b1 := env.Batch(t, "S1", steel, "4", day)
	b2 := env.Batch(t, "S2", steel, "0", day.Add(time.Hour))

	_, err := env.Allocations.Link(ctx, inventory.LinkRequest{BatchID: b2, LineItemID: buys[0], Weight: apptest.D("7.25")})
	require.NoError(t, err)
	l2, err := env.Allocations.Link(ctx, inventory.LinkRequest{BatchID: b1, LineItemID: buys[1], Weight: apptest.D("3.5")})
	require.NoError(t, err)

	_, _, sale := env.Completed(t, "Selling", day, apptest.Line{MaterialID: steel, Weight: "9.1", Price: "3"})
	_, err = env.Allocations.Unlink(ctx, sale.Allocations[0].Parts[1].LinkID)
	require.NoError(t, err)
	_, err = env.Allocations.Unlink(ctx, l2.ID)
	require.Error(t, err, "S1已被销售耗尽,冲回IN会使重量为负")
	assert.ErrorIs(t, err, batch.ErrWeightUnderflow)

	total := decimal.Zero
	for _, id := range []uint{b1, b2} {
		b, err := env.Inventory.Get(ctx, id)
		require.NoError(t, err)
		links, err := env.Links.ListByBatch(ctx, id)
		require.NoError(t, err)
		expected := b.SeedWeight.Add(allocation.SumWeight(links, allocation.DirectionIn)).Sub(allocation.SumWeight(links, allocation.DirectionOut))
		assert.True(t, expected.Equal(b.NetWeight), "批次%s: 期望%s 实际%s", b.Code, expected, b.NetWeight)
		total = total.Add(b.NetWeight)
	}
	// 4 + 7.25 + 3.5 - 7.5(S1耗尽) = 7.25(S2未动)
	assert.True(t, apptest.D("7.25").Equal(total), "总量%s", total)

	rec, err := env.Inventory.Reconcile(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Checked)
	assert.Empty(t, rec.Drifts)
}

// 小数重量经过落库再读出后,缓存重量仍与分配记录、审计链一致
func TestFractionalWeightsStayConsistent(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	copper := env.Material(t, "紫铜")

	draftID, _ := env.Draft(t, "Buying", day)
	_, err := env.Items.Add(ctx, ledger.AddLineItemRequest{
		TransactionID: draftID,
		MaterialID:    copper,
		Weight:        apptest.D("10.123456789012345678"),
		UnitPrice:     apptest.D("1"),
	})
	require.ErrorIs(t, err, weight.ErrScale)

	_, buys, _ := env.Completed(t, "Buying", day, apptest.Line{MaterialID: copper, Weight: "10.1235", Price: "300.0001"})
	batchID := env.Batch(t, "P1", copper, "0.1235", day)
	_, err = env.Allocations.Link(ctx, inventory.LinkRequest{BatchID: batchID, LineItemID: buys[0], Weight: apptest.D("10.1235")})
	require.NoError(t, err)
	env.Completed(t, "Selling", day, apptest.Line{MaterialID: copper, Weight: "3.3333", Price: "333.3333"})

	b, err := env.Inventory.Get(ctx, batchID)
	require.NoError(t, err)
	assert.True(t, apptest.D("6.9137").Equal(b.NetWeight), b.NetWeight.String())

	rec, err := env.Inventory.Reconcile(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, rec.Drifts)

	unallocated, err := env.Reports.Unallocated(ctx)
	require.NoError(t, err)
	assert.Empty(t, unallocated)
}

func TestReconcileReportsDrift(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	steel := env.Material(t, "废钢")
	batchID := env.Batch(t, "S1", steel, "10", day)
	env.Batch(t, "S2", steel, "3", day)

	require.NoError(t, env.DB.Exec("UPDATE inventory_batches SET net_weight = ? WHERE id = ?", "9", batchID).Error)

	rec, err := env.Inventory.Reconcile(ctx, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConsistency))
	require.NotNil(t, rec)
	assert.Equal(t, 2, rec.Checked)
	require.Len(t, rec.Drifts, 1)
	d := rec.Drifts[0]
	assert.Equal(t, "S1", d.BatchCode)
	assert.Equal(t, "9", d.Cached)
	assert.Equal(t, "10", d.AuditTotal)
	assert.Equal(t, "10", d.LinkTotal)
	assert.Equal(t, -1, d.BrokenAt)

	// 对账只报告,不修正
	b, err := env.Inventory.Get(ctx, batchID)
	require.NoError(t, err)
	assert.True(t, apptest.D("9").Equal(b.NetWeight))
}

func TestListBatches(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	steel := env.Material(t, "废钢")
	copper := env.Material(t, "紫铜")
	env.Batch(t, "S-001", steel, "1", day)
	env.Batch(t, "S-002", steel, "1", day)
	env.Batch(t, "C-001", copper, "1", day)

	resp, err := env.Inventory.List(ctx, inventory.ListRequest{MaterialID: steel})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)

	resp, err = env.Inventory.List(ctx, inventory.ListRequest{Keyword: "C-"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "C-001", resp.Items[0].Code)

	_, err = env.Inventory.History(ctx, 999, false)
	assert.ErrorIs(t, err, batch.ErrBatchNotFound)
}
