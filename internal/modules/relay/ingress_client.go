package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"
)

const (
	// ForwardFilename 転送時のファイル名。Telegramの写真は常にJPEG
	ForwardFilename = "image.jpg"
	// ForwardContentType 転送時のパートのContent-Type
	ForwardContentType = "image/jpeg"

	formField    = "file"
	maxErrorBody = 4096
)

// IngressClient 取り込みAPI（POST /upload）のクライアント
type IngressClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewIngressClient 新しいIngressClientを作成
func NewIngressClient(endpoint string, timeout time.Duration) *IngressClient {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &IngressClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ingressError 取り込みAPIのエラーレスポンス
type ingressError struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// Forward 画像をマルチパートで取り込みAPIへ送る。200以外は*TransportError
func (c *IngressClient) Forward(ctx context.Context, image []byte) error {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, formField, ForwardFilename))
	header.Set("Content-Type", ForwardContentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create multipart part: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	te := &TransportError{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload ingressError
	if json.Unmarshal(raw, &payload) == nil {
		te.Code = payload.Code
		te.Message = payload.Error
	}
	return te
}
