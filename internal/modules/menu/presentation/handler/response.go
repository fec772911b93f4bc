package handler

import (
	"encoding/json"
	"net/http"

	"menu-to-app/internal/modules/menu/domain"
	"menu-to-app/internal/modules/shared/observability"
)

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Error   string `json:"error"`
}

// StatusFor エラー種別に対応するHTTPステータス
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindEncoding:
		return http.StatusBadRequest
	case domain.KindExtractionParse:
		return http.StatusUnprocessableEntity
	case domain.KindExtraction:
		return http.StatusBadGateway
	case domain.KindPersistence:
		return http.StatusServiceUnavailable
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func sendJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// sendError ドメインエラーを code 付きのJSONで返す
func sendError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status := StatusFor(kind)

	message := err.Error()
	if kind == domain.KindInternal {
		message = "internal server error"
	}
	if status >= http.StatusInternalServerError {
		observability.Logger(r.Context()).Error("request failed", "code", kind, "error", err)
	}

	sendJSON(w, status, ErrorResponse{
		Success: false,
		Code:    string(kind),
		Error:   message,
	})
}

func sendMethodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	sendJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
		Success: false,
		Code:    string(domain.KindValidation),
		Error:   "method not allowed",
	})
}
