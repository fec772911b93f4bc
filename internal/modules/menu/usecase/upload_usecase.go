package usecase

import (
	"context"
	"time"

	"menu-to-app/internal/modules/menu/domain"
	"menu-to-app/internal/modules/shared/observability"
)

// DefaultUploadTimeout アップロード1件あたりの処理時間の上限
const DefaultUploadTimeout = 90 * time.Second

// MenuExtractor 画像から表を取り出す
type MenuExtractor interface {
	Extract(ctx context.Context, image domain.EncodedImage) (domain.MenuTable, error)
}

// UploadResult アップロード処理の結果
type UploadResult struct {
	Rows   int      `json:"rows"`
	Dishes []string `json:"dishes"`
}

// UploadUseCase 正規化 → 抽出 → 反映 を順に実行するユースケース
type UploadUseCase struct {
	extractor   MenuExtractor
	catalogRepo domain.CatalogRepository
	timeout     time.Duration
}

// NewUploadUseCase 新しいUploadUseCaseを作成
func NewUploadUseCase(extractor MenuExtractor, catalogRepo domain.CatalogRepository, timeout time.Duration) *UploadUseCase {
	if timeout <= 0 {
		timeout = DefaultUploadTimeout
	}
	return &UploadUseCase{
		extractor:   extractor,
		catalogRepo: catalogRepo,
		timeout:     timeout,
	}
}

// Process アップロードされた画像をカタログに反映する。
// 途中の段が失敗した場合、後続の段は実行しない
func (uc *UploadUseCase) Process(ctx context.Context, data []byte, filename string) (*UploadResult, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	logger := observability.Logger(ctx)

	image := domain.NewMenuImage(data, filename)
	encoded, err := domain.Normalize(image)
	if err != nil {
		return nil, err
	}
	logger.Info("menu image normalized", "mime_type", image.MIMEType, "bytes", len(data))

	table, err := uc.extractor.Extract(ctx, encoded)
	if err != nil {
		return nil, err
	}
	logger.Info("menu extracted", "rows", len(table))

	n, err := uc.catalogRepo.Upsert(ctx, table)
	if err != nil {
		if domain.KindOf(err) == domain.KindInternal {
			err = domain.NewError(domain.KindPersistence, "failed to update catalog", err)
		}
		return nil, err
	}
	logger.Info("catalog updated", "rows", n)

	return &UploadResult{Rows: n, Dishes: table.Dishes()}, nil
}
