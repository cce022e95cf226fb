package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *metric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestRecordReply(t *testing.T) {
	reader := metric.NewManualReader()
	o := NewWithReader("voice-assistant-test", reader)
	defer o.Shutdown()

	o.RecordReply(context.Background(), "intent", 3*time.Millisecond)
	o.RecordReply(context.Background(), "intent", time.Millisecond)
	o.RecordReply(context.Background(), "fallback", 2*time.Millisecond)

	data := collect(t, reader)

	sum, ok := data["assistant.replies"].(metricdata.Sum[int64])
	require.True(t, ok)
	total := int64(0)
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(3), total)
	assert.Len(t, sum.DataPoints, 2)

	hist, ok := data["assistant.reply.duration"].(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, hist.DataPoints, 2)
}

func TestZeroValueIsSafe(t *testing.T) {
	o := &Observability{}
	assert.NotPanics(t, func() {
		o.RecordReply(context.Background(), "error", time.Second)
		o.RecordJobProcessed(context.Background(), "completed")
		o.RecordJobDuration(context.Background(), time.Second, "completed")
		o.Shutdown()
	})
}
