package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	TaskStatusSucceeded = "succeeded"
	TaskStatusFailed    = "failed"
	TaskStatusSkipped   = "skipped"
)

const (
	BatchStatusCompleted = "completed"
	BatchStatusFailed    = "failed"
)

// Config carries the constant labels stamped on every pipeline metric.
type Config struct {
	ServiceName string
	Environment string
}

// PipelineMetrics captures batch pipeline health signals.
type PipelineMetrics struct {
	taskRuns      *prometheus.CounterVec
	taskDuration  *prometheus.HistogramVec
	taskRetries   *prometheus.CounterVec
	rowsExtracted *prometheus.CounterVec
	rowsLoaded    *prometheus.CounterVec
	batchRuns     *prometheus.CounterVec
	batchDuration prometheus.Observer
}

var (
	pipelineMetricsOnce sync.Once
	pipelineMetrics     *PipelineMetrics
)

// Pipeline returns the singleton pipeline metrics registry.
func Pipeline() *PipelineMetrics {
	return PipelineWithConfig(Config{})
}

// PipelineWithConfig returns the singleton pipeline metrics registry using config labels.
func PipelineWithConfig(cfg Config) *PipelineMetrics {
	pipelineMetricsOnce.Do(func() {
		pipelineMetrics = newPipelineMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return pipelineMetrics
}

// ResetPipelineMetricsForTest resets the pipeline metrics singleton for tests.
func ResetPipelineMetricsForTest() {
	pipelineMetricsOnce = sync.Once{}
	pipelineMetrics = nil
}

func newPipelineMetrics(registerer prometheus.Registerer, cfg Config) *PipelineMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "loadstone"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	taskRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "loadstone_pipeline_task_runs_total",
		Help:        "Pipeline task runs by task and final status.",
		ConstLabels: constLabels,
	}, []string{"task", "status"})
	taskDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "loadstone_pipeline_task_duration_seconds",
		Help:        "Pipeline task latency to protect batch freshness.",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600, 1800},
		ConstLabels: constLabels,
	}, []string{"task"})
	taskRetries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "loadstone_pipeline_task_retries_total",
		Help:        "Pipeline task retry attempts beyond the first.",
		ConstLabels: constLabels,
	}, []string{"task"})
	rowsExtracted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "loadstone_rows_extracted_total",
		Help:        "Rows extracted from the source per entity.",
		ConstLabels: constLabels,
	}, []string{"entity"})
	rowsLoaded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "loadstone_rows_loaded_total",
		Help:        "Rows bulk loaded into staging per entity.",
		ConstLabels: constLabels,
	}, []string{"entity"})
	batchRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "loadstone_batch_runs_total",
		Help:        "Batch runs by outcome.",
		ConstLabels: constLabels,
	}, []string{"status"})
	batchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "loadstone_batch_duration_seconds",
		Help:        "End to end batch run latency.",
		Buckets:     []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800, 3600},
		ConstLabels: constLabels,
	})

	registerer.MustRegister(
		taskRuns,
		taskDuration,
		taskRetries,
		rowsExtracted,
		rowsLoaded,
		batchRuns,
		batchDuration,
	)

	return &PipelineMetrics{
		taskRuns:      taskRuns,
		taskDuration:  taskDuration,
		taskRetries:   taskRetries,
		rowsExtracted: rowsExtracted,
		rowsLoaded:    rowsLoaded,
		batchRuns:     batchRuns,
		batchDuration: batchDuration,
	}
}

// IncTaskRun increments the run counter for a pipeline task.
func (m *PipelineMetrics) IncTaskRun(task, status string) {
	if m == nil || m.taskRuns == nil {
		return
	}
	m.taskRuns.WithLabelValues(task, status).Inc()
}

// ObserveTaskDuration records pipeline task latency in seconds.
func (m *PipelineMetrics) ObserveTaskDuration(task string, duration time.Duration) {
	if m == nil || m.taskDuration == nil {
		return
	}
	m.taskDuration.WithLabelValues(task).Observe(duration.Seconds())
}

// AddTaskRetries adds retry attempts beyond the first for a task.
func (m *PipelineMetrics) AddTaskRetries(task string, retries int) {
	if m == nil || m.taskRetries == nil || retries <= 0 {
		return
	}
	m.taskRetries.WithLabelValues(task).Add(float64(retries))
}

// AddRowsExtracted adds extracted row counts for an entity.
func (m *PipelineMetrics) AddRowsExtracted(entity string, rows int) {
	if m == nil || m.rowsExtracted == nil || rows <= 0 {
		return
	}
	m.rowsExtracted.WithLabelValues(entity).Add(float64(rows))
}

// AddRowsLoaded adds bulk loaded row counts for an entity.
func (m *PipelineMetrics) AddRowsLoaded(entity string, rows int) {
	if m == nil || m.rowsLoaded == nil || rows <= 0 {
		return
	}
	m.rowsLoaded.WithLabelValues(entity).Add(float64(rows))
}

// IncBatchRun increments the batch outcome counter.
func (m *PipelineMetrics) IncBatchRun(status string) {
	if m == nil || m.batchRuns == nil {
		return
	}
	m.batchRuns.WithLabelValues(status).Inc()
}

// ObserveBatchDuration records end to end batch latency in seconds.
func (m *PipelineMetrics) ObserveBatchDuration(duration time.Duration) {
	if m == nil || m.batchDuration == nil {
		return
	}
	if duration < 0 {
		duration = 0
	}
	m.batchDuration.Observe(duration.Seconds())
}
