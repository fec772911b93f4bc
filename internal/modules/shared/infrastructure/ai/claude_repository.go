package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"menu-to-app/internal/config"
	"menu-to-app/internal/modules/menu/domain"
)

const (
	claudeEndpoint   = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
)

// ClaudeRepository Claude APIのリポジトリ実装
type ClaudeRepository struct {
	apiKey      string
	model       string
	maxTokens   int
	httpClient  *http.Client
	apiEndpoint string // テスト用にエンドポイントを差し替え可能に
}

// NewClaudeRepository 新しいClaudeRepositoryを作成
func NewClaudeRepository(cfg *config.LLMConfig) *ClaudeRepository {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = claudeEndpoint
	}
	return &ClaudeRepository{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		httpClient:  newHTTPClient(cfg.Timeout),
		apiEndpoint: endpoint,
	}
}

// setHTTPClient テスト用にHTTPクライアントを設定
func (r *ClaudeRepository) setHTTPClient(client *http.Client) {
	r.httpClient = client
}

// RecognizeMenu メニュー画像をCSVテキストに書き起こす
func (r *ClaudeRepository) RecognizeMenu(ctx context.Context, image domain.EncodedImage) (*domain.VisionResult, error) {
	mediaType := image.MIMEType()
	payload := image.Payload()
	if mediaType == "" || payload == "" {
		return nil, domain.NewError(domain.KindEncoding, "malformed data url", nil)
	}

	requestBody := map[string]interface{}{
		"model":       r.model,
		"max_tokens":  r.maxTokens,
		"temperature": 0,
		"system":      menuSystemPrompt,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{
						"type": "image",
						"source": map[string]string{
							"type":       "base64",
							"media_type": mediaType,
							"data":       payload,
						},
					},
					{
						"type": "text",
						"text": menuPrompt,
					},
				},
			},
		},
	}

	var response struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}

	headers := map[string]string{
		"x-api-key":         r.apiKey,
		"anthropic-version": anthropicVersion,
	}
	if err := postJSON(ctx, r.httpClient, r.apiEndpoint, headers, requestBody, &response); err != nil {
		return nil, err
	}

	var b strings.Builder
	for _, c := range response.Content {
		if c.Type == "" || c.Type == "text" {
			b.WriteString(c.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return nil, fmt.Errorf("API returned empty content")
	}

	return domain.NewVisionResult(
		b.String(),
		response.Usage.InputTokens,
		response.Usage.OutputTokens,
		r.model,
	), nil
}

// ProviderName プロバイダー名を返す
func (r *ClaudeRepository) ProviderName() string {
	return "Anthropic Claude"
}
