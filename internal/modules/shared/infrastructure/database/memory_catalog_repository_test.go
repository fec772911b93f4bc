package database

import (
	"context"
	"testing"

	"menu-to-app/internal/modules/menu/domain"
)

func TestMemoryCatalogRepository_Upsert(t *testing.T) {
	repo := NewMemoryCatalogRepository()
	ctx := context.Background()

	n, err := repo.Upsert(ctx, domain.MenuTable{
		{Dish: "Burger", Description: "Classic beef burger", Price: 9.5},
		{Dish: "Fries", Description: "Crispy fries", Price: 3},
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Upsert() = %d, want 2", n)
	}

	first, _ := repo.FindByDish(ctx, "Burger")

	// 既存の料理は上書き、行は増えない
	if _, err := repo.Upsert(ctx, domain.MenuTable{{Dish: "Burger", Description: "Double", Price: 12}}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	items, _ := repo.FindAll(ctx, 0, 0)
	if len(items) != 2 {
		t.Fatalf("FindAll() = %d items, want 2", len(items))
	}
	burger, err := repo.FindByDish(ctx, "Burger")
	if err != nil {
		t.Fatalf("FindByDish() error = %v", err)
	}
	if burger.Description != "Double" || burger.Price != 12 {
		t.Errorf("Burger = %+v, want overwritten", burger)
	}
	if burger.ID != first.ID {
		t.Errorf("ID changed from %d to %d", first.ID, burger.ID)
	}
	if !burger.CreatedAt.Equal(first.CreatedAt) {
		t.Error("CreatedAt should not change on update")
	}
}

func TestMemoryCatalogRepository_LastDuplicateWins(t *testing.T) {
	repo := NewMemoryCatalogRepository()
	ctx := context.Background()

	if _, err := repo.Upsert(ctx, domain.MenuTable{
		{Dish: "Tea", Description: "Green", Price: 2},
		{Dish: "Tea", Description: "Black", Price: 2.5},
	}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	tea, _ := repo.FindByDish(ctx, "Tea")
	if tea.Description != "Black" || tea.Price != 2.5 {
		t.Errorf("Tea = %+v, want last row", tea)
	}
}

func TestMemoryCatalogRepository_InvalidBatchIsAtomic(t *testing.T) {
	repo := NewMemoryCatalogRepository()
	ctx := context.Background()

	_, err := repo.Upsert(ctx, domain.MenuTable{
		{Dish: "Soup", Price: 4},
		{Dish: "Bad", Price: -1},
	})
	if !domain.IsKind(err, domain.KindValidation) {
		t.Errorf("Upsert() error = %v, want %v", err, domain.KindValidation)
	}
	items, _ := repo.FindAll(ctx, 0, 0)
	if len(items) != 0 {
		t.Errorf("FindAll() = %d items, want 0", len(items))
	}
}

func TestMemoryCatalogRepository_FindAllPaging(t *testing.T) {
	repo := NewMemoryCatalogRepository()
	ctx := context.Background()
	_, _ = repo.Upsert(ctx, domain.MenuTable{
		{Dish: "C", Price: 3}, {Dish: "A", Price: 1}, {Dish: "B", Price: 2},
	})

	tests := []struct {
		name   string
		limit  int
		offset int
		want   []string
	}{
		{name: "全件", limit: 0, offset: 0, want: []string{"A", "B", "C"}},
		{name: "先頭2件", limit: 2, offset: 0, want: []string{"A", "B"}},
		{name: "オフセット", limit: 2, offset: 2, want: []string{"C"}},
		{name: "範囲外", limit: 2, offset: 5, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := repo.FindAll(ctx, tt.limit, tt.offset)
			if err != nil {
				t.Fatalf("FindAll() error = %v", err)
			}
			if len(items) != len(tt.want) {
				t.Fatalf("FindAll() = %d items, want %d", len(items), len(tt.want))
			}
			for i, dish := range tt.want {
				if items[i].Dish != dish {
					t.Errorf("items[%d] = %v, want %v", i, items[i].Dish, dish)
				}
			}
		})
	}
}

func TestMemoryCatalogRepository_Delete(t *testing.T) {
	repo := NewMemoryCatalogRepository()
	ctx := context.Background()
	_, _ = repo.Upsert(ctx, domain.MenuTable{{Dish: "Burger", Price: 9}})

	if err := repo.Delete(ctx, "Burger"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.FindByDish(ctx, "Burger"); !domain.IsKind(err, domain.KindNotFound) {
		t.Errorf("FindByDish() error = %v, want NOT_FOUND", err)
	}
	if err := repo.Delete(ctx, "Burger"); !domain.IsKind(err, domain.KindNotFound) {
		t.Errorf("Delete() error = %v, want NOT_FOUND", err)
	}
	if err := repo.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestMemoryCatalogRepository_CanceledContext(t *testing.T) {
	repo := NewMemoryCatalogRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Upsert(ctx, domain.MenuTable{{Dish: "Burger", Price: 9}})
	if !domain.IsKind(err, domain.KindPersistence) {
		t.Errorf("Upsert() error = %v, want %v", err, domain.KindPersistence)
	}
}
