package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"menu-to-app/internal/config"
	menuDomain "menu-to-app/internal/modules/menu/domain"
	menuHandler "menu-to-app/internal/modules/menu/presentation/handler"
	menuUsecase "menu-to-app/internal/modules/menu/usecase"
	sharedAI "menu-to-app/internal/modules/shared/infrastructure/ai"
	sharedCache "menu-to-app/internal/modules/shared/infrastructure/cache"
	sharedDB "menu-to-app/internal/modules/shared/infrastructure/database"
	"menu-to-app/internal/modules/shared/infrastructure/spreadsheet"
)

// Container DIコンテナ
type Container struct {
	// Shared Infrastructure
	visionRepo  menuDomain.VisionRepository
	cacheRepo   *sharedCache.RedisRepository
	catalogRepo menuDomain.CatalogRepository

	// Menu Module
	extractUseCase *menuUsecase.ExtractUseCase
	uploadUseCase  *menuUsecase.UploadUseCase
	catalogUseCase *menuUsecase.CatalogUseCase
	uploadHandler  *menuHandler.UploadHandler
	catalogHandler *menuHandler.CatalogHandler
	healthHandler  *menuHandler.HealthHandler
}

// NewContainer 設定から外部依存を初期化してContainerを作成
//
// Redisに接続できない場合はキャッシュなしで続行する。
// MySQLが有効で接続できない場合はエラーを返す
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	visionRepo, err := sharedAI.NewVisionRepository(ctx, &cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vision repository: %w", err)
	}

	var cacheRepo *sharedCache.RedisRepository
	if cfg.Redis.Enabled {
		cacheRepo, err = sharedCache.NewRedisRepository(&cfg.Redis)
		if err != nil {
			slog.Warn("Redis unavailable, extraction cache disabled", "error", err)
			cacheRepo = nil
		}
	}

	var catalogRepo menuDomain.CatalogRepository
	if cfg.MySQL.Enabled {
		bunRepo, err := sharedDB.NewBunCatalogRepository(&cfg.MySQL)
		if err != nil {
			closeQuietly(cacheRepo)
			return nil, fmt.Errorf("failed to initialize catalog repository: %w", err)
		}
		if err := bunRepo.EnsureSchema(ctx); err != nil {
			_ = bunRepo.Close()
			closeQuietly(cacheRepo)
			return nil, fmt.Errorf("failed to prepare catalog schema: %w", err)
		}
		catalogRepo = bunRepo
	} else {
		slog.Warn("MySQL disabled, using in-memory catalog")
		catalogRepo = sharedDB.NewMemoryCatalogRepository()
	}

	return NewContainerWithDeps(cfg, visionRepo, cacheRepo, catalogRepo), nil
}

// NewContainerWithDeps 初期化済みの依存からContainerを組み立てる。cacheRepoはnilでもよい
func NewContainerWithDeps(
	cfg *config.Config,
	visionRepo menuDomain.VisionRepository,
	cacheRepo *sharedCache.RedisRepository,
	catalogRepo menuDomain.CatalogRepository,
) *Container {
	c := &Container{
		visionRepo:  visionRepo,
		cacheRepo:   cacheRepo,
		catalogRepo: catalogRepo,
	}

	// nilの*RedisRepositoryをインターフェースに入れるとnil判定が効かない
	var cache menuDomain.CacheRepository
	if cacheRepo != nil {
		cache = cacheRepo
	}

	c.extractUseCase = menuUsecase.NewExtractUseCase(visionRepo, cache, cfg.Redis.TTL)
	c.uploadUseCase = menuUsecase.NewUploadUseCase(c.extractUseCase, catalogRepo, cfg.Server.UploadTimeout)
	c.catalogUseCase = menuUsecase.NewCatalogUseCase(catalogRepo, spreadsheet.NewExcelExporter())

	c.uploadHandler = menuHandler.NewUploadHandler(c.uploadUseCase, cfg.Server.MaxUploadBytes)
	c.catalogHandler = menuHandler.NewCatalogHandler(c.catalogUseCase)
	c.healthHandler = menuHandler.NewHealthHandler(visionRepo.ProviderName(), c.healthChecks())

	return c
}

func (c *Container) healthChecks() map[string]menuHandler.Pinger {
	checks := make(map[string]menuHandler.Pinger)
	if p, ok := c.catalogRepo.(menuHandler.Pinger); ok {
		checks["mysql"] = p
	}
	if c.cacheRepo != nil {
		checks["redis"] = c.cacheRepo
	}
	return checks
}

// ExtractUseCase メニュー抽出ユースケースを取得
func (c *Container) ExtractUseCase() *menuUsecase.ExtractUseCase {
	return c.extractUseCase
}

// UploadUseCase アップロードユースケースを取得
func (c *Container) UploadUseCase() *menuUsecase.UploadUseCase {
	return c.uploadUseCase
}

// CatalogUseCase カタログユースケースを取得
func (c *Container) CatalogUseCase() *menuUsecase.CatalogUseCase {
	return c.catalogUseCase
}

// UploadHandler アップロードハンドラーを取得
func (c *Container) UploadHandler() *menuHandler.UploadHandler {
	return c.uploadHandler
}

// CatalogHandler カタログハンドラーを取得
func (c *Container) CatalogHandler() *menuHandler.CatalogHandler {
	return c.catalogHandler
}

// HealthHandler ヘルスチェックハンドラーを取得
func (c *Container) HealthHandler() *menuHandler.HealthHandler {
	return c.healthHandler
}

// Close リソースをクローズ
func (c *Container) Close() error {
	var errs []error

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close cache repository: %w", err))
		}
	}

	if c.catalogRepo != nil {
		if err := c.catalogRepo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close catalog repository: %w", err))
		}
	}

	return errors.Join(errs...)
}

func closeQuietly(r *sharedCache.RedisRepository) {
	if r != nil {
		_ = r.Close()
	}
}
