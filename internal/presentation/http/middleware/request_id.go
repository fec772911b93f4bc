package middleware

import (
	"net/http"

	"menu-to-app/internal/modules/shared/observability"
)

// maxRequestIDLength 受け付けるX-Request-Idの最大長
const maxRequestIDLength = 128

// RequestID リクエストIDをコンテキストとレスポンスヘッダーに設定する。
// クライアントが送ってきたIDは長さが妥当な場合のみ引き継ぐ
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(observability.RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = observability.NewRequestID()
		}

		w.Header().Set(observability.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(observability.WithRequestID(r.Context(), id)))
	})
}
