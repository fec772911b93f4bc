package usecase

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"menu-to-app/internal/modules/menu/domain"
	"menu-to-app/internal/modules/shared/observability"
)

// DefaultCacheTTL 抽出結果キャッシュの既定TTL
const DefaultCacheTTL = 24 * time.Hour

const cacheKeyPrefix = "menu:extract:"

// ExtractUseCase メニュー画像から表を抽出するユースケース
type ExtractUseCase struct {
	visionRepo domain.VisionRepository
	cacheRepo  domain.CacheRepository
	cacheTTL   time.Duration
}

// NewExtractUseCase 新しいExtractUseCaseを作成。cacheRepoはnilでもよい
func NewExtractUseCase(visionRepo domain.VisionRepository, cacheRepo domain.CacheRepository, cacheTTL time.Duration) *ExtractUseCase {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &ExtractUseCase{
		visionRepo: visionRepo,
		cacheRepo:  cacheRepo,
		cacheTTL:   cacheTTL,
	}
}

// Extract 画像をLLMで書き起こし、3列の表に変換する
func (uc *ExtractUseCase) Extract(ctx context.Context, image domain.EncodedImage) (domain.MenuTable, error) {
	if image == "" {
		return nil, domain.NewError(domain.KindEncoding, "encoded image is empty", nil)
	}
	logger := observability.Logger(ctx)
	key := CacheKey(image)

	if table, ok := uc.fromCache(ctx, key); ok {
		logger.Info("menu extraction cache hit", "rows", len(table))
		return table, nil
	}

	result, err := uc.visionRepo.RecognizeMenu(ctx, image)
	if err != nil {
		if domain.KindOf(err) != domain.KindInternal {
			return nil, err
		}
		return nil, domain.NewError(domain.KindExtraction, "vision model call failed", err)
	}
	logger.Info("vision model responded",
		"provider", uc.visionRepo.ProviderName(),
		"model", result.Model,
		"input_tokens", result.InputTokens,
		"output_tokens", result.OutputTokens,
	)

	table, err := ParseMenuTable(result.Text)
	if err != nil {
		logger.Warn("menu extraction parse failed", "error", err)
		return nil, err
	}
	logTable(ctx, logger, table)

	if uc.cacheRepo != nil {
		if err := uc.cacheRepo.Set(ctx, key, []byte(result.Text), uc.cacheTTL); err != nil {
			logger.Warn("failed to cache extraction", "error", err)
		}
	}
	return table, nil
}

// ProviderName 利用中のプロバイダー名
func (uc *ExtractUseCase) ProviderName() string {
	return uc.visionRepo.ProviderName()
}

func (uc *ExtractUseCase) fromCache(ctx context.Context, key string) (domain.MenuTable, bool) {
	if uc.cacheRepo == nil {
		return nil, false
	}
	cached, err := uc.cacheRepo.Get(ctx, key)
	if err != nil || cached == nil {
		return nil, false
	}
	table, err := ParseMenuTable(string(cached))
	if err != nil {
		// 壊れたエントリは消して取り直す
		_ = uc.cacheRepo.Delete(ctx, key)
		return nil, false
	}
	return table, true
}

// logTable デバッグレベルのときだけ抽出表をCSVで出力する
func logTable(ctx context.Context, logger *slog.Logger, table domain.MenuTable) {
	if !logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	var buf bytes.Buffer
	if err := table.WriteCSV(&buf); err != nil {
		logger.Warn("failed to render menu table", "error", err)
		return
	}
	logger.Debug("menu table parsed", "rows", len(table), "csv", buf.String())
}

// CacheKey data URLのハッシュからキャッシュキーを作る
func CacheKey(image domain.EncodedImage) string {
	sum := sha256.Sum256([]byte(image))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
