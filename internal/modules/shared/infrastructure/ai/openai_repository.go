package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"menu-to-app/internal/config"
	"menu-to-app/internal/modules/menu/domain"
)

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

// OpenAIRepository OpenAI Chat Completions APIのリポジトリ実装
type OpenAIRepository struct {
	apiKey      string
	model       string
	maxTokens   int
	httpClient  *http.Client
	apiEndpoint string
}

// NewOpenAIRepository 新しいOpenAIRepositoryを作成
func NewOpenAIRepository(cfg *config.LLMConfig) *OpenAIRepository {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = openAIEndpoint
	}
	return &OpenAIRepository{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		httpClient:  newHTTPClient(cfg.Timeout),
		apiEndpoint: endpoint,
	}
}

// RecognizeMenu data URLをそのまま image_url として渡す
func (r *OpenAIRepository) RecognizeMenu(ctx context.Context, image domain.EncodedImage) (*domain.VisionResult, error) {
	if image.MIMEType() == "" {
		return nil, domain.NewError(domain.KindEncoding, "malformed data url", nil)
	}

	requestBody := map[string]interface{}{
		"model":       r.model,
		"max_tokens":  r.maxTokens,
		"temperature": 0,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{
						"type": "text",
						"text": menuPrompt,
					},
					{
						"type":      "image_url",
						"image_url": map[string]string{"url": image.String()},
					},
				},
			},
		},
	}

	var response struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}

	headers := map[string]string{"Authorization": "Bearer " + r.apiKey}
	if err := postJSON(ctx, r.httpClient, r.apiEndpoint, headers, requestBody, &response); err != nil {
		return nil, err
	}

	if len(response.Choices) == 0 || strings.TrimSpace(response.Choices[0].Message.Content) == "" {
		return nil, fmt.Errorf("API returned empty content")
	}

	model := response.Model
	if model == "" {
		model = r.model
	}
	return domain.NewVisionResult(
		response.Choices[0].Message.Content,
		response.Usage.PromptTokens,
		response.Usage.CompletionTokens,
		model,
	), nil
}

// ProviderName プロバイダー名を返す
func (r *OpenAIRepository) ProviderName() string {
	return "OpenAI"
}
