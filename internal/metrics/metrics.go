// Package metrics provides Prometheus instrumentation for the fraud service.
package metrics

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, route, and status bucket.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraud",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, route template, and status code class.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and route.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fraud",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// PredictionsTotal counts scored transactions by label.
	PredictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraud",
			Name:      "predictions_total",
			Help:      "Total scored transactions by predicted label.",
		},
		[]string{"label"},
	)

	// FraudProbability observes the fraud probability of each scored transaction.
	FraudProbability = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fraud",
		Name:      "probability",
		Help:      "Distribution of predicted fraud probabilities.",
		Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
	})

	// IncompleteFeaturesTotal counts transactions scored without temporal features.
	IncompleteFeaturesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fraud",
		Name:      "incomplete_features_total",
		Help:      "Transactions whose date could not be parsed.",
	})

	// StoreErrorsTotal counts record store failures by operation.
	StoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraud",
			Name:      "store_errors_total",
			Help:      "Record store failures by operation.",
		},
		[]string{"op"},
	)

	// AlertsTotal counts fraud alert deliveries by result.
	AlertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraud",
			Name:      "alerts_total",
			Help:      "Fraud alert mails by result.",
		},
		[]string{"result"},
	)

	// DBOpenConnections tracks open database connections.
	DBOpenConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fraud", Name: "db_open_connections",
		Help: "Number of open database connections.",
	})
	// DBInUseConnections tracks in-use database connections.
	DBInUseConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fraud", Name: "db_in_use_connections",
		Help: "Number of in-use database connections.",
	})
	// GoroutineCount tracks the current number of goroutines.
	GoroutineCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fraud", Name: "goroutines",
		Help: "Current number of goroutines.",
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		PredictionsTotal,
		FraudProbability,
		IncompleteFeaturesTotal,
		StoreErrorsTotal,
		AlertsTotal,
		DBOpenConnections,
		DBInUseConnections,
		GoroutineCount,
	)
}

// ObservePrediction records one scored transaction.
func ObservePrediction(label int, probability float64) {
	name := "legit"
	if label == 1 {
		name = "fraud"
	}
	PredictionsTotal.WithLabelValues(name).Inc()
	FraudProbability.Observe(probability)
}

// StartDBStatsCollector periodically samples sql.DBStats into gauges.
// Call in a goroutine; exits when ctx is done.
func StartDBStatsCollector(ctx context.Context, db *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := db.Stats()
			DBOpenConnections.Set(float64(stats.OpenConnections))
			DBInUseConnections.Set(float64(stats.InUse))
			GoroutineCount.Set(float64(runtime.NumGoroutine()))
		}
	}
}

// Handler returns the Prometheus metrics HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StatusBucket groups HTTP status codes into 1xx..5xx.
func StatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
