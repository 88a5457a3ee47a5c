package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMetrics(t *testing.T) {
	InitMetrics()
	InitMetrics() // 重复调用不应panic(重复注册)

	assert.NotNil(t, AllocationsTotal)
	assert.NotNil(t, AllocatedWeightTotal)
	assert.NotNil(t, FinalizeTotal)
	assert.NotNil(t, FinalizeDuration)
	assert.NotNil(t, AuditEntriesTotal)
	assert.NotNil(t, BatchDriftBatches)
}

func TestCounterVec(t *testing.T) {
	InitMetrics()

	out := map[string]string{"direction": "OUT", "mode": "fifo"}
	before := getCounterVecValue(t, AllocationsTotal, out)

	IncCounterVec(AllocationsTotal, out)
	IncCounterVec(AllocationsTotal, out)
	IncCounterVec(AllocationsTotal, map[string]string{"direction": "IN", "mode": "manual"})

	assert.Equal(t, before+2, getCounterVecValue(t, AllocationsTotal, out))
}

func TestAddCounterVec(t *testing.T) {
	InitMetrics()

	labels := map[string]string{"direction": "OUT"}
	before := getCounterVecValue(t, AllocatedWeightTotal, labels)

	AddCounterVec(AllocatedWeightTotal, labels, 5)
	AddCounterVec(AllocatedWeightTotal, labels, 3)

	assert.InDelta(t, before+8, getCounterVecValue(t, AllocatedWeightTotal, labels), 1e-9)
}

func TestGauge(t *testing.T) {
	InitMetrics()

	SetGauge(BatchDriftBatches, 3)
	assert.Equal(t, float64(3), getGaugeValue(t, BatchDriftBatches))

	SetGauge(BatchDriftBatches, 0)
	assert.Equal(t, float64(0), getGaugeValue(t, BatchDriftBatches))
}

func TestHistogram(t *testing.T) {
	InitMetrics()

	before := getHistogramCount(t, FinalizeDuration)
	ObserveHistogram(FinalizeDuration, 0.004)
	ObserveHistogram(FinalizeDuration, 0.02)

	assert.Equal(t, before+2, getHistogramCount(t, FinalizeDuration))
}

func TestNilHelpers(t *testing.T) {
	assert.NotPanics(t, func() {
		IncCounterVec(nil, nil)
		AddCounterVec(nil, nil, 1)
		SetGauge(nil, 1)
		ObserveHistogram(nil, 1)
	})
}

func TestWriteTextfile(t *testing.T) {
	InitMetrics()
	IncCounterVec(FinalizeTotal, map[string]string{"kind": "Selling", "result": "success"})

	path := filepath.Join(t.TempDir(), "scrapledger.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "finalize_total")
	assert.Contains(t, string(data), `kind="Selling"`)
}

func getCounterVecValue(t *testing.T, counterVec *prometheus.CounterVec, labels map[string]string) float64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, counterVec.With(labels).Write(&metric))
	return metric.GetCounter().GetValue()
}

func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, gauge.Write(&metric))
	return metric.GetGauge().GetValue()
}

func getHistogramCount(t *testing.T, histogram prometheus.Histogram) uint64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, histogram.Write(&metric))
	return metric.GetHistogram().GetSampleCount()
}
