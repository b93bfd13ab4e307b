package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Stage(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveStage("router", true, 200*time.Millisecond)
	m.ObserveStage("router", false, time.Second)
	m.ObserveStage("router", true, 100*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StageTotal.WithLabelValues("router", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageTotal.WithLabelValues("router", "failure")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StageDuration))
}

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveStrategy("combined")
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)
	m.ObserveTask("comparison", "local_only")
	m.ObserveAudioDeleted(3)
	m.ObserveIndexed(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StrategyTotal.WithLabelValues("combined")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnswerCacheTotal.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AnswerCacheTotal.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TasksAnswered.WithLabelValues("comparison", "local_only")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.AudioFilesDeleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProductsIndexed.WithLabelValues("failure")))
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	// Two instances on separate registries must not collide
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
