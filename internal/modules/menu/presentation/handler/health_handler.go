package handler

import (
	"context"
	"net/http"
	"time"
)

// Version APIバージョン
const Version = "1.0.0"

// Pinger 依存サービスの疎通確認
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler ヘルスチェックのハンドラー
type HealthHandler struct {
	provider string
	checks   map[string]Pinger
}

// NewHealthHandler 新しいHealthHandlerを作成。checksはnilでもよい
func NewHealthHandler(provider string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{provider: provider, checks: checks}
}

// HealthResponse ヘルスチェックのレスポンス
type HealthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Provider string            `json:"provider,omitempty"`
	Checks   map[string]string `json:"checks,omitempty"`
}

// ServeHTTP ヘルスチェックを処理。依存先が1つでも落ちていれば503
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendMethodNotAllowed(w, http.MethodGet)
		return
	}

	response := HealthResponse{
		Status:   "ok",
		Version:  Version,
		Provider: h.provider,
	}
	status := http.StatusOK

	if len(h.checks) > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		response.Checks = make(map[string]string, len(h.checks))
		for name, p := range h.checks {
			if err := p.Ping(ctx); err != nil {
				response.Checks[name] = "down"
				response.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			response.Checks[name] = "up"
		}
	}

	sendJSON(w, status, response)
}
