package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"menu-to-app/internal/modules/menu/domain"
	"menu-to-app/internal/modules/menu/usecase"
)

// UploadFormField 画像を受け取るマルチパートのフィールド名
const UploadFormField = "file"

// DefaultMaxUploadBytes アップロードサイズの既定上限（10MB）
const DefaultMaxUploadBytes = 10 << 20

// UploadProcessor アップロードされた画像をカタログに反映する
type UploadProcessor interface {
	Process(ctx context.Context, data []byte, filename string) (*usecase.UploadResult, error)
}

// UploadHandler POST /upload のハンドラー
type UploadHandler struct {
	processor UploadProcessor
	maxBytes  int64
}

// NewUploadHandler 新しいUploadHandlerを作成
func NewUploadHandler(processor UploadProcessor, maxBytes int64) *UploadHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &UploadHandler{
		processor: processor,
		maxBytes:  maxBytes,
	}
}

// UploadResponse 成功時のレスポンス
type UploadResponse struct {
	Success bool     `json:"success"`
	Rows    int      `json:"rows"`
	Dishes  []string `json:"dishes"`
}

// ServeHTTP 画像を受け取り、正規化・抽出・反映を順に実行する
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendMethodNotAllowed(w, http.MethodPost)
		return
	}

	// マルチパート全体にサイズ上限をかける
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			sendJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
				Success: false,
				Code:    string(domain.KindValidation),
				Error:   fmt.Sprintf("upload must not be larger than %d bytes", h.maxBytes),
			})
			return
		}
		sendError(w, r, domain.NewError(domain.KindValidation, "failed to parse multipart form", err))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile(UploadFormField)
	if err != nil {
		sendError(w, r, domain.NewError(domain.KindValidation, fmt.Sprintf("multipart field %q is required", UploadFormField), nil))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		sendError(w, r, domain.NewError(domain.KindValidation, "failed to read uploaded file", err))
		return
	}

	result, err := h.processor.Process(r.Context(), data, header.Filename)
	if err != nil {
		sendError(w, r, err)
		return
	}

	sendJSON(w, http.StatusOK, UploadResponse{
		Success: true,
		Rows:    result.Rows,
		Dishes:  result.Dishes,
	})
}
