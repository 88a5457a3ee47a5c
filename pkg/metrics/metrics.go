// Package metrics 基于Prometheus的台账指标
//
// 指标类型:
//   - Counter: 分配次数、分配重量、定稿次数、审计条数,只增不减
//   - Histogram: 定稿耗时
//   - Gauge: 最近一次对账发现的差异批次数
//
// 命令行进程生命周期很短,不暴露/metrics端点;
// 开启后进程退出前通过WriteTextfile写成node_exporter textfile格式,由采集端读取。
//
// 使用示例:
//
//	metrics.InitMetrics()
//	defer metrics.WriteTextfile("/var/lib/node_exporter/scrapledger.prom")
//
//	metrics.IncCounterVec(metrics.FinalizeTotal, map[string]string{"kind": "Selling", "result": "success"})
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	initOnce sync.Once

	// 分配指标

	// AllocationsTotal 分配记录创建次数(Counter)
	// 标签:direction(IN/OUT)、mode(fifo/manual)
	AllocationsTotal *prometheus.CounterVec

	// AllocatedWeightTotal 累计分配重量(Counter),单位kg
	// 标签:direction(IN/OUT)
	AllocatedWeightTotal *prometheus.CounterVec

	// 交易单指标

	// FinalizeTotal 定稿次数(Counter)
	// 标签:kind(Buying/Selling)、result(success/failure)
	FinalizeTotal *prometheus.CounterVec

	// FinalizeDuration 定稿耗时(Histogram)
	FinalizeDuration prometheus.Histogram

	// 审计与对账指标

	// AuditEntriesTotal 审计记录追加次数(Counter)
	// 标签:action(StockIn/StockOut/BatchUpdate/Deleted)
	AuditEntriesTotal *prometheus.CounterVec

	// BatchDriftBatches 最近一次对账的差异批次数(Gauge)
	BatchDriftBatches prometheus.Gauge
)

// InitMetrics 注册全部指标到默认Registry,可重复调用
func InitMetrics() {
	initOnce.Do(func() {
		AllocationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "allocations_total",
				Help: "分配记录创建次数",
			},
			[]string{"direction", "mode"},
		)

		AllocatedWeightTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "allocated_weight_kg_total",
				Help: "累计分配重量(kg)",
			},
			[]string{"direction"},
		)

		FinalizeTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finalize_total",
				Help: "交易单定稿次数",
			},
			[]string{"kind", "result"},
		)

		FinalizeDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name: "finalize_duration_seconds",
				Help: "交易单定稿耗时(秒)",
				// 定稿在单个数据库事务内完成,通常在毫秒级
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		)

		AuditEntriesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "audit_entries_total",
				Help: "审计记录追加次数",
			},
			[]string{"action"},
		)

		BatchDriftBatches = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "batch_drift_batches",
				Help: "最近一次对账发现的差异批次数",
			},
		)
	})
}

// WriteTextfile 把默认Registry中的指标写入textfile
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

// IncCounterVec 递增CounterVec(带标签)
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	if counter == nil {
		return
	}
	counter.With(labels).Inc()
}

// AddCounterVec 累加CounterVec(带标签)
func AddCounterVec(counter *prometheus.CounterVec, labels map[string]string, value float64) {
	if counter == nil {
		return
	}
	counter.With(labels).Add(value)
}

// SetGauge 设置Gauge值
func SetGauge(gauge prometheus.Gauge, value float64) {
	if gauge == nil {
		return
	}
	gauge.Set(value)
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	if histogram == nil {
		return
	}
	histogram.Observe(value)
}
