package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pca-scheduler/core/factory"
	coremetrics "github.com/kilianp07/pca-scheduler/core/metrics"
)

func TestPromSinkRecordGeneration(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg, reg, "")
	require.NoError(t, err)

	require.NoError(t, sink.RecordGeneration(coremetrics.GenerationEvent{Workers: 2, Requested: 5, Produced: 1, Trials: 2, Duration: time.Millisecond}))
	require.NoError(t, sink.RecordGeneration(coremetrics.GenerationEvent{Workers: 3, Requested: 1, Produced: 1, Trials: 1}))

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.generations.WithLabelValues("partial")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.generations.WithLabelValues("complete")))
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.produced))
	assert.Equal(t, 3.0, testutil.ToFloat64(sink.workers))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.trials))
}

func TestPromSinkReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg, reg, "")
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg, reg, "")
	require.NoError(t, err)

	require.NoError(t, second.RecordGeneration(coremetrics.GenerationEvent{Requested: 1, Produced: 1}))
	assert.Equal(t, 1.0, testutil.ToFloat64(first.produced))
}

func TestPromSinkFlushWritesTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pcasched.prom")
	sink, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{
		Type: "prometheus",
		Conf: map[string]any{"textfile": path},
	}})
	require.NoError(t, err)

	require.NoError(t, sink.RecordGeneration(coremetrics.GenerationEvent{Requested: 2, Produced: 0}))
	require.NoError(t, coremetrics.Flush(sink))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `pcasched_generations_total{outcome="empty"} 1`), string(data))
}
