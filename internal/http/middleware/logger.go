package middleware

import (
	"log/slog"
	"net/http"
	"time"

	uuid "github.com/satori/go.uuid"
)

const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func Logger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		log := log.With(slog.String("component", "middleware/logger"))

		log.Info("logger middleware enabled")

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" || len(requestID) > 128 {
				requestID = uuid.NewV4().String()
			}
			w.Header().Set(RequestIDHeader, requestID)

			entry := log.With(
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
				slog.String("request_id", requestID),
			)

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			defer func() {
				status := rec.status
				if status == 0 {
					status = http.StatusOK
				}
				entry.Info("request completed",
					slog.Int("status", status),
					slog.Int("bytes", rec.bytes),
					slog.String("duration", time.Since(start).String()),
				)
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
