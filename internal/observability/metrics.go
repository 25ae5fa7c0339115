package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec
	assetUploadsTotal  *prometheus.CounterVec
	assetRejectedTotal *prometheus.CounterVec
	reportCacheTotal   *prometheus.CounterVec
	gradedEventsTotal  prometheus.Counter
	codesRedeemedTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "school_api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "school_api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "school_api_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		assetUploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "school_api_asset_uploads_total",
			Help: "Total number of content asset files stored, by asset type.",
		}, []string{"type"})

		assetRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "school_api_asset_uploads_rejected_total",
			Help: "Total number of rejected content asset uploads, by reason.",
		}, []string{"reason"})

		reportCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "school_api_report_cache_total",
			Help: "Report cache lookups, by outcome.",
		}, []string{"outcome"})

		gradedEventsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "school_api_graded_events_total",
			Help: "Total number of submission graded events published.",
		})

		codesRedeemedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "school_api_codes_redeemed_total",
			Help: "Total number of enrollment codes redeemed.",
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			assetUploadsTotal,
			assetRejectedTotal,
			reportCacheTotal,
			gradedEventsTotal,
			codesRedeemedTotal,
		)
	})
}

// HTTPRequests exposes the counter for served requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// AssetUploads exposes the counter for stored asset files.
func AssetUploads() *prometheus.CounterVec {
	RegisterMetrics()
	return assetUploadsTotal
}

// AssetUploadRejected exposes the counter for rejected asset uploads.
func AssetUploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return assetRejectedTotal
}

// ReportCache exposes the counter for report cache hits and misses.
func ReportCache() *prometheus.CounterVec {
	RegisterMetrics()
	return reportCacheTotal
}

// GradedEvents exposes the counter for published grading events.
func GradedEvents() prometheus.Counter {
	RegisterMetrics()
	return gradedEventsTotal
}

// CodesRedeemed exposes the counter for redeemed enrollment codes.
func CodesRedeemed() prometheus.Counter {
	RegisterMetrics()
	return codesRedeemedTotal
}
