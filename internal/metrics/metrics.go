package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_tagger_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_tagger_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_tagger_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Tag store metrics
var (
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_tagger_store_operations_total",
			Help: "Total number of tag store mutations by operation and outcome",
		},
		[]string{"operation", "status"},
	)

	ImagesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_tagger_images",
			Help: "Number of images in the open directory",
		},
	)

	VocabularySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_tagger_vocabulary_size",
			Help: "Number of distinct tags in the vocabulary",
		},
	)

	TaggedImagesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_tagger_tagged_images",
			Help: "Number of images carrying at least one tag",
		},
	)
)

// Filter metrics
var (
	FilterEvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_tagger_filter_evaluations_total",
			Help: "Total number of filter query evaluations by branch",
		},
		[]string{"branch"},
	)

	FilterEvaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_tagger_filter_evaluation_duration_seconds",
			Help:    "Filter query evaluation duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"branch"},
	)

	FilterResultSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "image_tagger_filter_result_images",
			Help:    "Number of images returned by filter evaluations",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)

// Persistence queue metrics
var (
	SaveQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_tagger_save_queue_depth",
			Help: "Number of save tasks waiting to be processed",
		},
	)

	SavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_tagger_saves_total",
			Help: "Total number of tag saves by sink and outcome",
		},
		[]string{"sink", "status"},
	)

	SaveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_tagger_save_duration_seconds",
			Help:    "Duration of a single tag save in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5, 1},
		},
		[]string{"sink"},
	)

	SaveWorkerRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_tagger_save_worker_running",
			Help: "Whether the save worker is running (1 = running, 0 = stopped)",
		},
	)
)

// Loader metrics
var (
	LoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_tagger_loads_total",
			Help: "Total number of directory loads by outcome",
		},
		[]string{"status"},
	)

	LoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "image_tagger_load_duration_seconds",
			Help:    "Directory load duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	LoadSidecarErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_tagger_load_sidecar_errors_total",
			Help: "Total number of sidecar files that could not be read during load",
		},
	)

	LoadLastTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_tagger_load_last_timestamp",
			Help: "Unix timestamp of the last completed directory load",
		},
	)

	WatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_tagger_watcher_events_total",
			Help: "Total number of directory watcher events by operation",
		},
		[]string{"op"},
	)
)

// Catalog (SQLite mirror) metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_tagger_db_queries_total",
			Help: "Total number of catalog database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_tagger_db_query_duration_seconds",
			Help:    "Catalog database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_tagger_filesystem_operation_duration_seconds",
			Help:    "Duration of filesystem operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_tagger_filesystem_operation_errors_total",
			Help: "Total number of failed filesystem operations",
		},
		[]string{"operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_tagger_filesystem_retry_attempts_total",
			Help: "Total number of filesystem retries after a stale NFS handle",
		},
		[]string{"operation"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_tagger_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retrying",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_tagger_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_tagger_filesystem_stale_errors_total",
			Help: "Total number of ESTALE errors observed",
		},
		[]string{"operation"},
	)
)

// Application info
var AppInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "image_tagger_app_info",
		Help: "Application build information",
	},
	[]string{"version", "commit", "go_version"},
)
