package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

// Service names for metrics registration
const (
	ServiceAirdrop = "airdrop"
	ServiceWorker  = "worker"
	ServiceHTTP    = "http"
)

// RegisterMetrics registers metrics for the specified services with a custom registry
func RegisterMetrics(services []string, registry *prometheus.Registry, logger *logrus.Logger) {
	// Always register Go and process metrics
	registerIfNotExists(collectors.NewGoCollector(), "go_collector", registry, logger)
	registerIfNotExists(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), "process_collector", registry, logger)

	for _, service := range services {
		switch service {
		case ServiceAirdrop:
			registerAirdropMetrics(registry, logger)
		case ServiceWorker:
			registerWorkerMetrics(registry, logger)
		case ServiceHTTP:
			registerHTTPMetrics(registry, logger)
		default:
			logger.Warnf("Unknown service type for metrics registration: %s", service)
		}
	}
}

// registerIfNotExists registers a collector if it's not already registered
func registerIfNotExists(collector prometheus.Collector, name string, registry *prometheus.Registry, logger *logrus.Logger) {
	if err := registry.Register(collector); err != nil {
		var alreadyRegErr prometheus.AlreadyRegisteredError
		if !errors.As(err, &alreadyRegErr) {
			logger.Errorf("Failed to register %s: %v", name, err)
		}
	}
}

func registerAirdropMetrics(registry *prometheus.Registry, logger *logrus.Logger) {
	registerIfNotExists(airdropRequestsTotal, "airdrop_requests_total", registry, logger)
	registerIfNotExists(airdropDuration, "airdrop_duration", registry, logger)
	registerIfNotExists(balanceQueriesTotal, "airdrop_balance_queries_total", registry, logger)
	registerIfNotExists(pollAttemptsTotal, "poll_attempts_total", registry, logger)
	registerIfNotExists(pollAttemptsPerConfirmation, "poll_attempts_per_confirmation", registry, logger)
	registerIfNotExists(pollOutcomesTotal, "poll_outcomes_total", registry, logger)
}

func registerWorkerMetrics(registry *prometheus.Registry, logger *logrus.Logger) {
	registerIfNotExists(workerTasksTotal, "worker_tasks_total", registry, logger)
	registerIfNotExists(workerTaskDuration, "worker_task_duration", registry, logger)
	registerIfNotExists(workerTasksActive, "worker_tasks_active", registry, logger)
	registerIfNotExists(workerErrorsTotal, "worker_errors_total", registry, logger)
	registerIfNotExists(workerLastTaskTimestamp, "worker_last_task_timestamp", registry, logger)
}

func registerHTTPMetrics(registry *prometheus.Registry, logger *logrus.Logger) {
	registerIfNotExists(httpRequestsTotal, "http_requests_total", registry, logger)
	registerIfNotExists(httpRequestDuration, "http_request_duration", registry, logger)
	registerIfNotExists(httpActiveRequests, "http_active_requests", registry, logger)
}
