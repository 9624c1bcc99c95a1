package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	scenarioTotal   *prometheus.CounterVec
	ocrFallbacks    *prometheus.CounterVec
	llmTokensTotal  *prometheus.CounterVec
	queueLag        *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docdigest",
			Subsystem: "worker",
			Name:      "document_process_total",
			Help:      "Total processed documents by status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docdigest",
			Subsystem: "worker",
			Name:      "document_process_duration_seconds",
			Help:      "Document processing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docdigest",
			Subsystem: "worker",
			Name:      "document_process_in_flight",
			Help:      "Number of in-flight document processing tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	scenarioTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docdigest",
			Subsystem: "worker",
			Name:      "failure_scenario_total",
			Help:      "Total failed documents by error scenario.",
		},
		[]string{"service", "scenario"},
	)
	ocrFallbacks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docdigest",
			Subsystem: "worker",
			Name:      "ocr_fallback_total",
			Help:      "Total documents routed through the OCR fallback.",
		},
		[]string{"service", "status"},
	)
	llmTokensTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docdigest",
			Subsystem: "worker",
			Name:      "llm_tokens_total",
			Help:      "Total LLM tokens consumed by summarization.",
		},
		[]string{"service", "model"},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docdigest",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between document upload and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(processTotal, processDuration, processInFlight, scenarioTotal, ocrFallbacks, llmTokensTotal, queueLag)

	return &WorkerMetrics{
		registry:        registry,
		processTotal:    processTotal,
		processDuration: processDuration,
		processInFlight: processInFlight,
		scenarioTotal:   scenarioTotal,
		ocrFallbacks:    ocrFallbacks,
		llmTokensTotal:  llmTokensTotal,
		queueLag:        queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartDocument() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) FinishDocument(service, status string, duration time.Duration) {
	m.processInFlight.Dec()
	m.processTotal.WithLabelValues(service, status).Inc()
	m.processDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) RecordScenario(service, scenario string) {
	if scenario == "" {
		return
	}
	m.scenarioTotal.WithLabelValues(service, scenario).Inc()
}

func (m *WorkerMetrics) RecordOCRFallback(service string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.ocrFallbacks.WithLabelValues(service, status).Inc()
}

func (m *WorkerMetrics) AddLLMTokens(service, model string, tokens int) {
	if tokens <= 0 {
		return
	}
	m.llmTokensTotal.WithLabelValues(service, model).Add(float64(tokens))
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
