package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/scrapledger/internal/application/apptest"
	"github.com/xiebiao/scrapledger/internal/interface/cli"
	apperrors "github.com/xiebiao/scrapledger/pkg/errors"
)

type result struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Kind    string          `json:"kind"`
	Detail  string          `json:"detail"`
	Data    json.RawMessage `json:"data"`
}

type harness struct {
	t   *testing.T
	app *cli.App
	env *apptest.Env
}

func newHarness(t *testing.T) *harness {
	env := apptest.New(t)
	app := cli.NewApp(env.DB, env.Catalog, env.Drafts, env.Headers, env.Items, env.Ledger,
		env.Finalize, env.Batches, env.Allocations, env.Inventory, env.Reports)
	return &harness{t: t, app: app, env: env}
}

// run 执行命令,返回解析后的输出与Run的错误
func (h *harness) run(args ...string) (result, error) {
	var out, errOut bytes.Buffer
	h.app.SetOutput(&out, &errOut)
	err := h.app.Run(context.Background(), args)

	var r result
	require.NoError(h.t, json.Unmarshal(out.Bytes(), &r), out.String())
	return r, err
}

// ok 执行命令并断言成功,data解析到v
func (h *harness) ok(v interface{}, args ...string) {
	h.t.Helper()
	r, err := h.run(args...)
	require.NoError(h.t, err, "%v: %s", args, r.Detail)
	assert.Equal(h.t, 0, r.Code)
	if v != nil {
		require.NoError(h.t, json.Unmarshal(r.Data, v))
	}
}

type idOnly struct {
	ID uint `json:"id"`
}

func TestCopperScenario(t *testing.T) {
	h := newHarness(t)

	var copper idOnly
	h.ok(&copper, "material", "add", "-name", "Copper", "-class", "有色金属")

	var buy idOnly
	h.ok(&buy, "txn", "draft", "-kind", "Buying", "-date", "2026-03-01", "-counterparty", "老王")
	var buyItem idOnly
	h.ok(&buyItem, "txn", "add-item", "-txn", itoa(buy.ID), "-material", itoa(copper.ID), "-weight", "10", "-price", "300")
	h.ok(nil, "txn", "finalize", "-id", itoa(buy.ID))

	var b idOnly
	h.ok(&b, "batch", "create", "-material", itoa(copper.ID), "-code", "BATCH-1", "-date", "2026-03-01")
	h.ok(nil, "batch", "link", "-batch", itoa(b.ID), "-item", itoa(buyItem.ID), "-weight", "10")

	var sell idOnly
	h.ok(&sell, "txn", "draft", "-kind", "Selling", "-date", "2026-03-02", "-plate", "粤A12345")
	h.ok(nil, "txn", "add-item", "-txn", itoa(sell.ID), "-material", itoa(copper.ID), "-weight", "4", "-price", "350")

	var finalized struct {
		Transaction struct {
			Status string `json:"status"`
		} `json:"transaction"`
		Allocations []struct {
			Parts []struct {
				BatchCode string `json:"batch_code"`
				Remaining string `json:"remaining"`
			} `json:"parts"`
		} `json:"allocations"`
	}
	h.ok(&finalized, "txn", "finalize", "-id", itoa(sell.ID))
	assert.Equal(t, "Completed", finalized.Transaction.Status)
	require.Len(t, finalized.Allocations, 1)
	assert.Equal(t, "BATCH-1", finalized.Allocations[0].Parts[0].BatchCode)
	assert.Equal(t, "6", finalized.Allocations[0].Parts[0].Remaining)

	var history []struct {
		Action         string `json:"action"`
		PreviousWeight string `json:"previous_weight"`
		NewWeight      string `json:"new_weight"`
	}
	h.ok(&history, "batch", "history", "-id", itoa(b.ID))
	require.Len(t, history, 2)
	assert.Equal(t, "StockOut", history[1].Action)
	assert.Equal(t, "10", history[1].PreviousWeight)
	assert.Equal(t, "6", history[1].NewWeight)

	var unallocated []json.RawMessage
	h.ok(&unallocated, "report", "unallocated")
	assert.Empty(t, unallocated)

	var page struct {
		Total int64 `json:"total"`
	}
	h.ok(&page, "txn", "list", "-kind", "Selling")
	assert.Equal(t, int64(1), page.Total)
	h.ok(&page, "batch", "list", "-status", "InStock")
	assert.Equal(t, int64(1), page.Total)

	h.ok(nil, "reconcile")

	out := filepath.Join(t.TempDir(), "report.xlsx")
	var exported map[string]string
	h.ok(&exported, "report", "export", "-out", out, "-sheets", "stock,unallocated")
	assert.Equal(t, out, exported["file"])
	assert.FileExists(t, out)
}

func TestErrorsAreRenderedAsJSON(t *testing.T) {
	h := newHarness(t)
	var steel idOnly
	h.ok(&steel, "material", "add", "-name", "废钢")
	h.ok(nil, "batch", "create", "-material", itoa(steel.ID), "-seed", "5")

	var sell idOnly
	h.ok(&sell, "txn", "draft", "-kind", "sell")
	h.ok(nil, "txn", "add-item", "-txn", itoa(sell.ID), "-material", itoa(steel.ID), "-weight", "8", "-price", "1")

	r, err := h.run("txn", "finalize", "-id", itoa(sell.ID))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInsufficientStock, r.Code)
	assert.Equal(t, string(apperrors.KindInsufficientStock), r.Kind)
	assert.Contains(t, r.Detail, "可用5")

	r, err = h.run("batch", "create", "-seed", "abc")
	require.Error(t, err)
	assert.Equal(t, string(apperrors.KindValidation), r.Kind)

	r, err = h.run("warehouse", "list")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeBindError, r.Code)

	_, err = h.run("batch")
	assert.ErrorIs(t, err, cli.ErrUsage)
}

func TestReconcileOutputsDrifts(t *testing.T) {
	h := newHarness(t)
	var steel, b idOnly
	h.ok(&steel, "material", "add", "-name", "废钢")
	h.ok(&b, "batch", "create", "-material", itoa(steel.ID), "-seed", "5", "-code", "S1")
	require.NoError(t, h.env.DB.Exec("UPDATE inventory_batches SET net_weight = ? WHERE id = ?", "4", b.ID).Error)

	r, err := h.run("reconcile")
	require.Error(t, err)
	assert.Equal(t, string(apperrors.KindConsistency), r.Kind)

	var rec struct {
		Checked int `json:"checked"`
		Drifts  []struct {
			BatchCode string `json:"batch_code"`
		} `json:"drifts"`
	}
	require.NoError(t, json.Unmarshal(r.Data, &rec))
	assert.Equal(t, 1, rec.Checked)
	require.Len(t, rec.Drifts, 1)
	assert.Equal(t, "S1", rec.Drifts[0].BatchCode)
}

func itoa(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
