package handlers

import (
	"log"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp"
)

var (
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	translationsTotal *prometheus.CounterVec
	creditsTotal      *prometheus.CounterVec
)

func InitPrometheusMetrics() {
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linguaflow",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"path", "method", "status"},
	)
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "linguaflow",
			Name:      "request_duration_seconds",
			Help:      "Histogram of HTTP request durations in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"path", "method"},
	)
	translationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linguaflow",
			Name:      "translations_total",
			Help:      "Total number of fulfilled translation operations.",
		},
		[]string{"operation"},
	)
	creditsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linguaflow",
			Name:      "credits_moved_total",
			Help:      "Total credits moved through the ledger, by direction.",
		},
		[]string{"type"},
	)
	prometheus.MustRegister(requestsTotal, requestDuration, translationsTotal, creditsTotal)
}

// observeTranslation and observeCredits tolerate an unregistered
// metrics set so handlers stay testable without the global registry.
func observeTranslation(operation string) {
	if translationsTotal != nil {
		translationsTotal.WithLabelValues(operation).Inc()
	}
}

func observeCredits(txType string, amount int64) {
	if creditsTotal != nil {
		creditsTotal.WithLabelValues(txType).Add(float64(amount))
	}
}

// RequestLogger returns fasthttp middleware that logs method, path,
// status, duration and records the request metrics.
func RequestLogger(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)
		elapsed := time.Since(start)

		path := string(ctx.Path())
		method := string(ctx.Method())
		status := ctx.Response.StatusCode()

		if requestsTotal != nil {
			requestsTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
			requestDuration.WithLabelValues(path, method).Observe(elapsed.Seconds())
		}

		log.Printf("%s %s -> %d (%s) ip=%s", method, path, status, elapsed, ctx.RemoteAddr())
	}
}
