package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/synapserag/synapse/internal/api"
	"github.com/synapserag/synapse/internal/metrics"
	"github.com/synapserag/synapse/pkg/logger_i"
)

type requestResponseStruct struct {
	writer      http.ResponseWriter
	req         *http.Request
	badRequest  failureStruct
	isPreflight bool
	logger      *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

// Wrap chains trace injection, CORS, the per-IP rate limiter and request
// metrics around a handler. Every route goes through it.
func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec})

		if !re.badRequest.isBadRequest && !re.isPreflight {
			next(rec, re.req)
		}

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
		metrics.CaptureRequestMetrics(r.URL.Path, time.Since(start))
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re.logger.Info("New request received")

	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		handleBadRequest(re)
		return re
	}
	re = applyCors(re)
	if re.isPreflight {
		return re //preflight already answered
	}
	re = rateLimiter(re)
	if re.badRequest.isBadRequest {
		handleBadRequest(re)
		return re //stop here if rate limit fails
	}

	return re
}

func writeError(w http.ResponseWriter, httpCode int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpCode)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{Detail: detail})
}
