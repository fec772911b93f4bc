package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"

	"menu-to-app/internal/modules/menu/domain"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// CatalogExporter カタログを外部フォーマットに書き出す
type CatalogExporter interface {
	Export(w io.Writer, items []*domain.CatalogItem) error
	ContentType() string
}

// CatalogUseCase カタログ参照・削除・エクスポートのユースケース
type CatalogUseCase struct {
	catalogRepo domain.CatalogRepository
	exporter    CatalogExporter
}

// NewCatalogUseCase 新しいCatalogUseCaseを作成
func NewCatalogUseCase(catalogRepo domain.CatalogRepository, exporter CatalogExporter) *CatalogUseCase {
	return &CatalogUseCase{
		catalogRepo: catalogRepo,
		exporter:    exporter,
	}
}

// List カタログを料理名順に取得
func (uc *CatalogUseCase) List(ctx context.Context, limit, offset int) ([]*domain.CatalogItem, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		return nil, domain.NewError(domain.KindValidation, "offset must not be negative", nil)
	}
	items, err := uc.catalogRepo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, asPersistence(err, "failed to list catalog")
	}
	return items, nil
}

// Get 料理名で1件取得
func (uc *CatalogUseCase) Get(ctx context.Context, dish string) (*domain.CatalogItem, error) {
	dish = strings.TrimSpace(dish)
	if dish == "" {
		return nil, domain.NewError(domain.KindValidation, "dish is required", nil)
	}
	item, err := uc.catalogRepo.FindByDish(ctx, dish)
	if err != nil {
		return nil, asPersistence(err, "failed to find dish")
	}
	return item, nil
}

// Delete 料理名で1件削除
func (uc *CatalogUseCase) Delete(ctx context.Context, dish string) error {
	dish = strings.TrimSpace(dish)
	if dish == "" {
		return domain.NewError(domain.KindValidation, "dish is required", nil)
	}
	if err := uc.catalogRepo.Delete(ctx, dish); err != nil {
		return asPersistence(err, "failed to delete dish")
	}
	return nil
}

// Export カタログ全件を書き出す
func (uc *CatalogUseCase) Export(ctx context.Context, w io.Writer) error {
	if uc.exporter == nil {
		return domain.NewError(domain.KindInternal, "exporter is not configured", nil)
	}
	items, err := uc.catalogRepo.FindAll(ctx, 0, 0)
	if err != nil {
		return asPersistence(err, "failed to load catalog")
	}
	if err := uc.exporter.Export(w, items); err != nil {
		return fmt.Errorf("failed to export catalog: %w", err)
	}
	return nil
}

// ExportContentType エクスポート形式のContent-Type
func (uc *CatalogUseCase) ExportContentType() string {
	if uc.exporter == nil {
		return "application/octet-stream"
	}
	return uc.exporter.ContentType()
}

func asPersistence(err error, msg string) error {
	if domain.KindOf(err) != domain.KindInternal {
		return err
	}
	return domain.NewError(domain.KindPersistence, msg, err)
}
