package echoapi

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricsNamespace = "coursepanel"
	metricsSubsystem = "api"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "requests_total",
			Help:      "Count of HTTP requests by route, method and status code.",
		},
		[]string{"route", "method", "code"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	modelUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "llm_model_updates_total",
			Help:      "Count of course LLM model updates by model and outcome.",
		},
		[]string{"model", "outcome"},
	)

	registerMetrics sync.Once
)

// RegisterMetrics registers the API metrics with the default prometheus registry.
func RegisterMetrics() {
	registerMetrics.Do(func() {
		prometheus.MustRegister(requestsTotal, requestDuration, modelUpdatesTotal)
	})
}

func metricsHandler() http.Handler {
	RegisterMetrics()
	return promhttp.Handler()
}

func metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		start := time.Now()
		err := next(ctx)

		code := ctx.Response().Status
		if herr, ok := errors.Cause(err).(*echo.HTTPError); ok {
			code = herr.Code
		} else if err != nil {
			// the error handler has not run yet
			code = http.StatusInternalServerError
		}
		route := ctx.Path()
		method := ctx.Request().Method
		requestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
		requestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
		return err
	}
}

func recordModelUpdate(modelID string, ok bool) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	modelUpdatesTotal.WithLabelValues(modelID, outcome).Inc()
}
