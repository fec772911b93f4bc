package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"menu-to-app/internal/modules/menu/domain"
)

// MockVisionRepository モックビジョンリポジトリ
type MockVisionRepository struct {
	RecognizeMenuFunc func(ctx context.Context, image domain.EncodedImage) (*domain.VisionResult, error)
	ProviderNameFunc  func() string
	calls             int
}

func (m *MockVisionRepository) RecognizeMenu(ctx context.Context, image domain.EncodedImage) (*domain.VisionResult, error) {
	m.calls++
	if m.RecognizeMenuFunc != nil {
		return m.RecognizeMenuFunc(ctx, image)
	}
	return domain.NewVisionResult("Burger,Classic beef burger,9.5\nFries,Crispy fries,3", 10, 5, "test"), nil
}

func (m *MockVisionRepository) ProviderName() string {
	if m.ProviderNameFunc != nil {
		return m.ProviderNameFunc()
	}
	return "Mock Vision Provider"
}

// MockCacheRepository mapベースのモックキャッシュ
type MockCacheRepository struct {
	mu      sync.Mutex
	data    map[string][]byte
	SetFunc func(ctx context.Context, key string, value []byte, expiration time.Duration) error
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string][]byte)}
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, expiration)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, fmt.Errorf("cache not found: %s", key)
	}
	return v, nil
}

func (m *MockCacheRepository) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Exists テストからキャッシュ内容を確かめる
func (m *MockCacheRepository) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

// MockCatalogRepository モックカタログリポジトリ
type MockCatalogRepository struct {
	UpsertFunc     func(ctx context.Context, table domain.MenuTable) (int, error)
	FindAllFunc    func(ctx context.Context, limit, offset int) ([]*domain.CatalogItem, error)
	FindByDishFunc func(ctx context.Context, dish string) (*domain.CatalogItem, error)
	DeleteFunc     func(ctx context.Context, dish string) error
	upserted       []domain.MenuTable
}

func (m *MockCatalogRepository) Upsert(ctx context.Context, table domain.MenuTable) (int, error) {
	m.upserted = append(m.upserted, table)
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, table)
	}
	return len(table), nil
}

func (m *MockCatalogRepository) FindAll(ctx context.Context, limit, offset int) ([]*domain.CatalogItem, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx, limit, offset)
	}
	return []*domain.CatalogItem{}, nil
}

func (m *MockCatalogRepository) FindByDish(ctx context.Context, dish string) (*domain.CatalogItem, error) {
	if m.FindByDishFunc != nil {
		return m.FindByDishFunc(ctx, dish)
	}
	return nil, domain.NewError(domain.KindNotFound, "dish not found: "+dish, nil)
}

func (m *MockCatalogRepository) Delete(ctx context.Context, dish string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, dish)
	}
	return nil
}

func (m *MockCatalogRepository) Close() error {
	return nil
}
