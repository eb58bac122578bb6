package middleware

import (
	"net/http"
	"strconv"
	"time"
)

// RequestRecorder records request metrics. Implemented by the telemetry
// collector.
type RequestRecorder interface {
	RecordRequest(endpoint, method, status string, duration time.Duration)
}

// Metrics records one request metric per completed request. The raw URL path
// is used as the endpoint label; the cardinality guard downstream keeps a
// hostile path population from exploding the series set.
func Metrics(recorder RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			recorder.RecordRequest(
				r.URL.Path,
				r.Method,
				strconv.Itoa(rw.statusCode),
				time.Since(startTime),
			)
		})
	}
}
