package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"menu-to-app/internal/modules/menu/domain"
)

// MemoryCatalogRepository プロセス内のカタログ（MySQL無効時とテスト用）
type MemoryCatalogRepository struct {
	mu     sync.RWMutex
	items  map[string]*domain.CatalogItem
	nextID int64
}

// NewMemoryCatalogRepository 新しいMemoryCatalogRepositoryを作成
func NewMemoryCatalogRepository() *MemoryCatalogRepository {
	return &MemoryCatalogRepository{
		items:  make(map[string]*domain.CatalogItem),
		nextID: 1,
	}
}

// Upsert 検証に通った場合のみ全行を反映する
func (r *MemoryCatalogRepository) Upsert(ctx context.Context, table domain.MenuTable) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, persistenceError("failed to update catalog", err)
	}
	if err := table.Validate(); err != nil {
		return 0, domain.NewError(domain.KindValidation, "invalid menu table", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, row := range table {
		if item, ok := r.items[row.Dish]; ok {
			item.Description = row.Description
			item.Price = row.Price
			item.UpdatedAt = now
			continue
		}
		r.items[row.Dish] = &domain.CatalogItem{
			ID:          r.nextID,
			Dish:        row.Dish,
			Description: row.Description,
			Price:       row.Price,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		r.nextID++
	}
	return len(table), nil
}

// FindAll 料理名順に取得
func (r *MemoryCatalogRepository) FindAll(_ context.Context, limit, offset int) ([]*domain.CatalogItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*domain.CatalogItem, 0, len(r.items))
	for _, item := range r.items {
		copied := *item
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Dish < all[j].Dish })

	if limit <= 0 {
		return all, nil
	}
	if offset >= len(all) {
		return []*domain.CatalogItem{}, nil
	}
	if offset < 0 {
		offset = 0
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// FindByDish 料理名で検索
func (r *MemoryCatalogRepository) FindByDish(_ context.Context, dish string) (*domain.CatalogItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[dish]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, fmt.Sprintf("dish not found: %s", dish), nil)
	}
	copied := *item
	return &copied, nil
}

// Delete 料理名で削除
func (r *MemoryCatalogRepository) Delete(_ context.Context, dish string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[dish]; !ok {
		return domain.NewError(domain.KindNotFound, fmt.Sprintf("dish not found: %s", dish), nil)
	}
	delete(r.items, dish)
	return nil
}

// Close 何もしない
func (r *MemoryCatalogRepository) Close() error {
	return nil
}
