package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	llmCallsTotal   *prometheus.CounterVec
	llmDuration     *prometheus.HistogramVec
	retriesTotal    prometheus.Counter
	extractedItems  prometheus.Histogram
	purchasesSaved  prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "purchases",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "purchases",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		llmCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "purchases",
			Subsystem: "llm",
			Name:      "calls_total",
			Help:      "Upstream LLM calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		llmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "purchases",
			Subsystem: "llm",
			Name:      "call_duration_seconds",
			Help:      "Upstream LLM call duration in seconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"operation"}),
		retriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "purchases",
			Subsystem: "ocr",
			Name:      "zero_item_retries_total",
			Help:      "Extractions that needed the focused items-only retry.",
		}),
		extractedItems: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "purchases",
			Subsystem: "ocr",
			Name:      "extracted_items",
			Help:      "Line items per completed extraction.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 40, 80},
		}),
		purchasesSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "purchases",
			Subsystem: "ingestion",
			Name:      "saved_total",
			Help:      "Purchases persisted from confirmed extractions.",
		}),
	}

	registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.llmCallsTotal,
		m.llmDuration,
		m.retriesTotal,
		m.extractedItems,
		m.purchasesSaved,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		m.requestTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

func (m *Metrics) ObserveLLMCall(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.llmCallsTotal.WithLabelValues(operation, outcome).Inc()
	m.llmDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *Metrics) RecordRetry() {
	if m == nil {
		return
	}
	m.retriesTotal.Inc()
}

func (m *Metrics) RecordExtraction(items int) {
	if m == nil {
		return
	}
	m.extractedItems.Observe(float64(items))
}

func (m *Metrics) RecordPurchaseSaved() {
	if m == nil {
		return
	}
	m.purchasesSaved.Inc()
}
