package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// withRecorder 安装内存记录器,测试结束恢复原Provider
func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestInitTracer(t *testing.T) {
	// gRPC exporter惰性连接,Collector不在线也能初始化成功
	shutdown, err := InitTracer("scrapledger-test", "localhost:4317")
	require.NoError(t, err)
	assert.NotNil(t, shutdown)
	_ = shutdown(context.Background())
}

func TestStartSpan(t *testing.T) {
	recorder := withRecorder(t)

	t.Run("子Span继承TraceID", func(t *testing.T) {
		ctx, root := StartSpan(context.Background(), "Finalize", attribute.Int("txn_id", 7))
		_, child := StartSpan(ctx, "AllocateForSale")

		assert.Equal(t, root.SpanContext().TraceID(), child.SpanContext().TraceID())
		assert.NotEqual(t, root.SpanContext().SpanID(), child.SpanContext().SpanID())

		EndSpan(child, nil)
		EndSpan(root, nil)
	})

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "AllocateForSale", ended[0].Name())
	assert.Equal(t, "Finalize", ended[1].Name())
	assert.Contains(t, ended[1].Attributes(), attribute.Int("txn_id", 7))
}

func TestEndSpanRecordsError(t *testing.T) {
	recorder := withRecorder(t)

	_, span := StartSpan(context.Background(), "Unlink")
	EndSpan(span, errors.New("库存不足"))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "库存不足", ended[0].Status().Description)
	assert.NotEmpty(t, ended[0].Events(), "错误应记录为事件")
}

func TestExtractTraceID(t *testing.T) {
	assert.Empty(t, ExtractTraceID(context.Background()))

	withRecorder(t)
	ctx, span := StartSpan(context.Background(), "Reconcile")
	defer span.End()

	traceID := ExtractTraceID(ctx)
	assert.Len(t, traceID, 32)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)
}
