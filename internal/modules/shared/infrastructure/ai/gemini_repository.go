package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"menu-to-app/internal/config"
	"menu-to-app/internal/modules/menu/domain"
)

// contentGenerator genai.Models のうち利用するメソッド
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiRepository Gemini APIのリポジトリ実装
type GeminiRepository struct {
	models    contentGenerator
	model     string
	maxTokens int
}

// NewGeminiRepository 新しいGeminiRepositoryを作成
func NewGeminiRepository(ctx context.Context, cfg *config.LLMConfig) (*GeminiRepository, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: newHTTPClient(cfg.Timeout),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiRepository{
		models:    client.Models,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// RecognizeMenu 画像をインラインデータとして送る
func (r *GeminiRepository) RecognizeMenu(ctx context.Context, image domain.EncodedImage) (*domain.VisionResult, error) {
	data, err := image.Decode()
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(menuPrompt),
			genai.NewPartFromBytes(data, image.MIMEType()),
		}, genai.RoleUser),
	}
	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](0),
		SystemInstruction: genai.NewContentFromText(menuSystemPrompt, genai.RoleUser),
	}
	if r.maxTokens > 0 {
		cfg.MaxOutputTokens = int32(r.maxTokens)
	}

	resp, err := r.models.GenerateContent(ctx, r.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("API returned empty content")
	}

	var inputTokens, outputTokens int
	if resp.UsageMetadata != nil {
		inputTokens = int(resp.UsageMetadata.PromptTokenCount)
		outputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return domain.NewVisionResult(text, inputTokens, outputTokens, r.model), nil
}

// ProviderName プロバイダー名を返す
func (r *GeminiRepository) ProviderName() string {
	return "Google Gemini"
}
