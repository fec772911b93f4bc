package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"menu-to-app/internal/config"
	"menu-to-app/internal/modules/shared/infrastructure/testcontainer"
)

func setupRedisRepo(t *testing.T) *RedisRepository {
	t.Helper()
	rc := testcontainer.Redis(t)

	repo, err := NewRedisRepository(rc.Config())
	if err != nil {
		t.Fatalf("Failed to create redis repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRedisRepository(t *testing.T) {
	repo := setupRedisRepo(t)

	ctx := context.Background()
	key := "menu:extract:abc"
	raw := []byte("Burger,Classic beef burger,9.5\nFries,Crispy fries,3")

	t.Run("Ping", func(t *testing.T) {
		if err := repo.Ping(ctx); err != nil {
			t.Errorf("Ping() error = %v", err)
		}
	})

	t.Run("SetとGet", func(t *testing.T) {
		if err := repo.Set(ctx, key, raw, time.Hour); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, err := repo.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(got) != string(raw) {
			t.Errorf("Get() = %q, want %q", got, raw)
		}
	})

	t.Run("存在しないキーはErrCacheMiss", func(t *testing.T) {
		_, err := repo.Get(ctx, "menu:extract:missing")
		if !errors.Is(err, ErrCacheMiss) {
			t.Errorf("Get() error = %v, want ErrCacheMiss", err)
		}
	})

	t.Run("Exists", func(t *testing.T) {
		tests := []struct {
			name string
			key  string
			want bool
		}{
			{name: "存在するキー", key: key, want: true},
			{name: "存在しないキー", key: "menu:extract:none", want: false},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := repo.Exists(ctx, tt.key)
				if err != nil {
					t.Fatalf("Exists() error = %v", err)
				}
				if got != tt.want {
					t.Errorf("Exists() = %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("有効期限切れ", func(t *testing.T) {
		if err := repo.Set(ctx, "menu:extract:short", raw, time.Second); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		time.Sleep(1500 * time.Millisecond)
		if ok, _ := repo.Exists(ctx, "menu:extract:short"); ok {
			t.Error("Expected key to expire")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := repo.Delete(ctx, key); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := repo.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
			t.Errorf("Get() after Delete() error = %v, want ErrCacheMiss", err)
		}
	})
}

func TestNewRedisRepository_Unreachable(t *testing.T) {
	_, err := NewRedisRepository(&config.RedisConfig{Host: "127.0.0.1", Port: 1})
	if err == nil {
		t.Error("Expected connection error")
	}
}

func TestNewRedisRepositoryWithClient(t *testing.T) {
	rc := testcontainer.Redis(t)
	ctx := context.Background()

	repo := NewRedisRepositoryWithClient(rc.Client(t))

	if err := repo.Set(ctx, "menu:extract:client", []byte("Tea,Green,2"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if ok, err := repo.Exists(ctx, "menu:extract:client"); err != nil || !ok {
		t.Errorf("Exists() = %v, %v; want true", ok, err)
	}
}
