package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eduinsight"

// Outcomes recorded for feedback submissions.
const (
	SubmissionAccepted = "accepted"
	SubmissionInvalid  = "invalid"
	SubmissionFailed   = "failed"
	SubmissionLimited  = "rate_limited"
)

// Outcomes recorded for forecasts.
const (
	ForecastProjected = "forecast"
	ForecastFlat      = "flat"
	ForecastAbsent    = "absent"
)

var (
	// Labels: route (gin full path), method, status
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served",
	}, []string{"route", "method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"route", "method"})

	submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "feedback",
		Name:      "submissions_total",
		Help:      "Feedback submissions by outcome",
	}, []string{"outcome"})

	forecasts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "analytics",
		Name:      "forecasts_total",
		Help:      "Forecast requests by outcome",
	}, []string{"outcome"})
)

// ObserveHTTP records one served request.
func ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func RecordSubmission(outcome string) {
	submissions.WithLabelValues(outcome).Inc()
}

// RecordForecast classifies a forecast by how many points it was fitted on.
func RecordForecast(points int) {
	switch {
	case points == 0:
		forecasts.WithLabelValues(ForecastAbsent).Inc()
	case points == 1:
		forecasts.WithLabelValues(ForecastFlat).Inc()
	default:
		forecasts.WithLabelValues(ForecastProjected).Inc()
	}
}
