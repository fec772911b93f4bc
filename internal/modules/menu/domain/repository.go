package domain

import (
	"context"
	"time"
)

// VisionRepository ビジョンLLMのリポジトリインターフェース
type VisionRepository interface {
	// RecognizeMenu メニュー画像を3列のCSVテキストに書き起こす
	RecognizeMenu(ctx context.Context, image EncodedImage) (*VisionResult, error)

	// ProviderName プロバイダー名を返す
	ProviderName() string
}

// CatalogRepository メニューカタログのリポジトリインターフェース
type CatalogRepository interface {
	// Upsert 料理名をキーに挿入または更新し、適用した行数を返す
	Upsert(ctx context.Context, table MenuTable) (int, error)
	FindAll(ctx context.Context, limit, offset int) ([]*CatalogItem, error)
	FindByDish(ctx context.Context, dish string) (*CatalogItem, error)
	Delete(ctx context.Context, dish string) error
	Close() error
}

// CacheRepository キャッシュリポジトリのインターフェース
type CacheRepository interface {
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
