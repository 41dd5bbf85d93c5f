package middleware

import (
	"net/http"
	"time"

	"shopdesk-be/internal/metrics"
)

type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Metrics records request count and latency under a fixed handler name.
func Metrics(m *metrics.Metrics, name string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.ObserveRequest(name, rec.statusCode, time.Since(start))
	})
}
