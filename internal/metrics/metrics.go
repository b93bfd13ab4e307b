// Package metrics provides Prometheus metrics for the shopping assistant.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "shopping"

// Metrics groups every collector. Create one per registry.
type Metrics struct {
	// StageTotal counts pipeline stage runs by outcome.
	StageTotal *prometheus.CounterVec
	// StageDuration measures pipeline stage latency.
	StageDuration *prometheus.HistogramVec
	// StrategyTotal counts selected retrieval strategies.
	StrategyTotal *prometheus.CounterVec
	// QueryDuration measures end-to-end query handling per channel.
	QueryDuration *prometheus.HistogramVec
	// AnswerCacheTotal counts answer cache lookups.
	AnswerCacheTotal *prometheus.CounterVec
	// TasksAnswered counts answered queries by task, fed from NATS events.
	TasksAnswered *prometheus.CounterVec
	// AudioFilesDeleted counts removed TTS files.
	AudioFilesDeleted prometheus.Counter
	// ProductsIndexed counts catalog indexing attempts.
	ProductsIndexed *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		StageTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_stage_total",
				Help:      "Total number of pipeline stage runs",
			},
			[]string{"stage", "status"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_stage_duration_seconds",
				Help:      "Duration of pipeline stages in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"stage"},
		),
		StrategyTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retrieval_strategy_total",
				Help:      "Total number of selected retrieval strategies",
			},
			[]string{"strategy"},
		),
		QueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Duration of full query handling in seconds",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"channel"},
		),
		AnswerCacheTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "answer_cache_total",
				Help:      "Answer cache lookups by result",
			},
			[]string{"result"},
		),
		TasksAnswered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_answered_total",
				Help:      "Answered queries by task and strategy",
			},
			[]string{"task", "strategy"},
		),
		AudioFilesDeleted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "audio_files_deleted_total",
				Help:      "Total number of expired TTS files removed",
			},
		),
		ProductsIndexed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "products_indexed_total",
				Help:      "Catalog indexing attempts by status",
			},
			[]string{"status"},
		),
	}
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// ObserveStage records one pipeline stage run
func (m *Metrics) ObserveStage(stage string, success bool, elapsed time.Duration) {
	m.StageTotal.WithLabelValues(stage, status(success)).Inc()
	m.StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveStrategy(strategy string) {
	m.StrategyTotal.WithLabelValues(strategy).Inc()
}

func (m *Metrics) ObserveQuery(channel string, elapsed time.Duration) {
	m.QueryDuration.WithLabelValues(channel).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveCache(hit bool) {
	if hit {
		m.AnswerCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	m.AnswerCacheTotal.WithLabelValues("miss").Inc()
}

func (m *Metrics) ObserveTask(task, strategy string) {
	m.TasksAnswered.WithLabelValues(task, strategy).Inc()
}

func (m *Metrics) ObserveAudioDeleted(n int) {
	m.AudioFilesDeleted.Add(float64(n))
}

func (m *Metrics) ObserveIndexed(success bool) {
	m.ProductsIndexed.WithLabelValues(status(success)).Inc()
}
