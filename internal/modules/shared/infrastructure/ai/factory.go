package ai

import (
	"context"
	"fmt"

	"menu-to-app/internal/config"
	"menu-to-app/internal/modules/menu/domain"
)

// NewVisionRepository 設定のプロバイダーに応じたVisionRepositoryを作成
func NewVisionRepository(ctx context.Context, cfg *config.LLMConfig) (domain.VisionRepository, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key for provider %q is not set", cfg.Provider)
	}
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return NewClaudeRepository(cfg), nil
	case config.ProviderOpenAI:
		return NewOpenAIRepository(cfg), nil
	case config.ProviderGemini:
		return NewGeminiRepository(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", cfg.Provider)
	}
}
