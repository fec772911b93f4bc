package observability

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// RequestIDHeader リクエストIDを受け渡すヘッダー名
const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// NewRequestID 新しいリクエストIDを発行
func NewRequestID() string {
	return uuid.NewString()
}

// WithRequestID コンテキストにリクエストIDを設定
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID コンテキストからリクエストIDを取得（未設定なら空文字）
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// Logger リクエストIDを付与したロガーを返す
func Logger(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if id := RequestID(ctx); id != "" {
		return logger.With("request_id", id)
	}
	return logger
}
