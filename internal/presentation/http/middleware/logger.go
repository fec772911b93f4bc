package middleware

import (
	"net/http"
	"time"

	"menu-to-app/internal/modules/shared/observability"
)

// HealthPath 正常時はアクセスログを出さないパス
const HealthPath = "/health"

// responseWriter ステータスコードと書き込みバイト数をキャプチャするラッパー
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

func wrap(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// Logger アクセスログを出力するミドルウェア。request_idはRequestIDミドルウェアが設定したものを使う
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := wrap(w)

		next.ServeHTTP(rw, r)

		logAccess(r, rw, time.Since(start))
	})
}

// LoggerWithHealthCheck ヘルスチェックの成功を除外するロギングミドルウェア
func LoggerWithHealthCheck(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != HealthPath {
			Logger(next).ServeHTTP(w, r)
			return
		}

		rw := wrap(w)
		next.ServeHTTP(rw, r)

		if rw.statusCode != http.StatusOK {
			observability.Logger(r.Context()).Error("Health check failed",
				"status", rw.statusCode,
			)
		}
	})
}

func logAccess(r *http.Request, rw *responseWriter, duration time.Duration) {
	logger := observability.Logger(r.Context())
	attrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status", rw.statusCode,
		"bytes", rw.written,
		"duration", duration,
	}
	if rw.statusCode >= http.StatusInternalServerError {
		logger.Warn("HTTP request", attrs...)
		return
	}
	logger.Info("HTTP request", attrs...)
}
