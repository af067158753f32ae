package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var documentsIngested = promauto.NewCounter(prometheus.CounterOpts{
	Name: "documents_ingested_total",
	Help: "Number of documents successfully ingested",
})

var chunksIndexed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "chunks_indexed_total",
	Help: "Number of chunks written to the vector index",
})

var responseModeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chat_response_mode_total",
	Help: "Chat responses by selected mode",
}, []string{"mode"})

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "request_duration_seconds",
	Help:    "Total time spent serving a request.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30},
}, []string{"path"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureRequestMetrics(path string, timeElapsed time.Duration) {
	requestDuration.WithLabelValues(path).Observe(timeElapsed.Seconds())
}

func CountIngestedDocument(chunks int) {
	documentsIngested.Inc()
	chunksIndexed.Add(float64(chunks))
}

func CountResponseMode(mode string) {
	responseModeTotal.WithLabelValues(mode).Inc()
}
