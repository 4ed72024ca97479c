package metrics

import (
	"context"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Task processing metrics
	workerTasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lazordrop",
			Subsystem: "worker",
			Name:      "tasks_total",
			Help:      "Total number of tasks processed by type and status",
		},
		[]string{"task_type", "status"}, // status: completed, failed
	)

	workerTaskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lazordrop",
			Subsystem: "worker",
			Name:      "task_duration_seconds",
			Help:      "Duration of task processing by type",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"task_type"},
	)

	workerTasksActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "lazordrop",
			Subsystem: "worker",
			Name:      "tasks_active",
			Help:      "Number of currently active tasks by type",
		},
		[]string{"task_type"},
	)

	// Error tracking
	workerErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lazordrop",
			Subsystem: "worker",
			Name:      "errors_total",
			Help:      "Total number of errors by task type and error type",
		},
		[]string{"task_type", "error_type"},
	)

	// Health tracking
	workerLastTaskTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lazordrop",
			Subsystem: "worker",
			Name:      "last_task_timestamp",
			Help:      "Timestamp of when worker last processed a task",
		},
	)
)

// WorkerMetrics provides methods to update worker-related metrics
type WorkerMetrics struct{}

// NewWorkerMetrics creates a new instance of WorkerMetrics
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{}
}

// RecordTaskCompleted records a successfully completed task
func (wm *WorkerMetrics) RecordTaskCompleted(taskType string, duration float64) {
	workerTasksTotal.WithLabelValues(taskType, "completed").Inc()
	workerTaskDuration.WithLabelValues(taskType).Observe(duration)
	workerLastTaskTimestamp.SetToCurrentTime()
}

// RecordTaskFailed records a failed task
func (wm *WorkerMetrics) RecordTaskFailed(taskType string, duration float64) {
	workerTasksTotal.WithLabelValues(taskType, "failed").Inc()
	workerTaskDuration.WithLabelValues(taskType).Observe(duration)
	workerLastTaskTimestamp.SetToCurrentTime()
}

// RecordTaskStarted records when a task starts (increments active count)
func (wm *WorkerMetrics) RecordTaskStarted(taskType string) {
	workerTasksActive.WithLabelValues(taskType).Inc()
}

// RecordTaskFinished records when a task finishes (decrements active count)
func (wm *WorkerMetrics) RecordTaskFinished(taskType string) {
	workerTasksActive.WithLabelValues(taskType).Dec()
}

// RecordError records an error during task processing
func (wm *WorkerMetrics) RecordError(taskType, errorType string) {
	workerErrorsTotal.WithLabelValues(taskType, errorType).Inc()
}

// WithWorkerMetrics wraps a task handler with worker metrics collection
func WithWorkerMetrics(handler asynq.HandlerFunc, taskType string, metrics *WorkerMetrics) asynq.HandlerFunc {
	return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
		// If metrics are disabled, just run the handler
		if metrics == nil {
			return handler.ProcessTask(ctx, task)
		}

		start := time.Now()
		metrics.RecordTaskStarted(taskType)
		defer metrics.RecordTaskFinished(taskType)

		// Execute the task
		err := handler.ProcessTask(ctx, task)
		duration := time.Since(start).Seconds()

		// Record results
		if err != nil {
			metrics.RecordTaskFailed(taskType, duration)
			metrics.RecordError(taskType, classifyError(err))
		} else {
			metrics.RecordTaskCompleted(taskType, duration)
		}

		return err
	})
}

// classifyError provides basic error classification for metrics
func classifyError(err error) string {
	if err == nil {
		return "none"
	}

	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "cooldown"):
		return "cooldown"
	case strings.Contains(errStr, "timeout"):
		return "timeout"
	case strings.Contains(errStr, "context"):
		return "context_cancelled"
	case strings.Contains(errStr, "network") || strings.Contains(errStr, "connection"):
		return "network"
	case strings.Contains(errStr, "validation") || strings.Contains(errStr, "invalid"):
		return "validation"
	default:
		return "unknown"
	}
}
