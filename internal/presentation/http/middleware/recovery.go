package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"menu-to-app/internal/modules/menu/domain"
	"menu-to-app/internal/modules/shared/observability"
)

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Error   string `json:"error"`
}

// Recovery パニックリカバリーミドルウェア
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				observability.Logger(r.Context()).Error("Panic recovered",
					"error", err,
					"stack", string(debug.Stack()),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(ErrorResponse{
					Success: false,
					Code:    string(domain.KindInternal),
					Error:   "Internal server error",
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
