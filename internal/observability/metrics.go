package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	apiRequestsTotal     *prometheus.CounterVec
	apiLatencySeconds    *prometheus.HistogramVec
	apiErrorsTotal       *prometheus.CounterVec
	submissionsExported  *prometheus.CounterVec
	submissionOverwrites prometheus.Counter
	integrityFailures    *prometheus.CounterVec
	filesSkipped         *prometheus.CounterVec
	dashboardCacheEvents *prometheus.CounterVec
	chatReplies          *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatty_api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chatty_api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatty_api_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		submissionsExported = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatty_submissions_exported_total",
			Help: "Submission exports by result.",
		}, []string{"result"})

		submissionOverwrites = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatty_submission_overwrites_total",
			Help: "Exports that replaced an earlier submission file.",
		})

		integrityFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatty_integrity_failures_total",
			Help: "Submission chains that failed verification, by failure kind.",
		}, []string{"kind"})

		filesSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatty_files_skipped_total",
			Help: "Files ignored while loading data folders.",
		}, []string{"reason"})

		dashboardCacheEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatty_dashboard_cache_events_total",
			Help: "Dashboard cache lookups by outcome.",
		}, []string{"outcome"})

		chatReplies = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatty_chat_replies_total",
			Help: "Chat replies by outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			submissionsExported,
			submissionOverwrites,
			integrityFailures,
			filesSkipped,
			dashboardCacheEvents,
			chatReplies,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// SubmissionsExported counts exports labelled ok, rejected or failed.
func SubmissionsExported() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsExported
}

// SubmissionOverwrites counts resubmissions that replaced a file.
func SubmissionOverwrites() prometheus.Counter {
	RegisterMetrics()
	return submissionOverwrites
}

// IntegrityFailures counts failed verifications by kind.
func IntegrityFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return integrityFailures
}

// FilesSkipped counts files skipped while loading submissions, packs or modules.
func FilesSkipped() *prometheus.CounterVec {
	RegisterMetrics()
	return filesSkipped
}

// DashboardCacheEvents counts cache hits and misses.
func DashboardCacheEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return dashboardCacheEvents
}

// ChatReplies counts chat replies labelled answered, filtered or fallback.
func ChatReplies() *prometheus.CounterVec {
	RegisterMetrics()
	return chatReplies
}
