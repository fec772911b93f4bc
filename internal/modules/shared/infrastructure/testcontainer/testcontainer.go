// Package testcontainer 統合テスト用のMySQL/Redisコンテナ。
// どちらも -short では Skip し、テスト終了時に自動で停止する
package testcontainer

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	rediscontainer "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"menu-to-app/internal/config"
)

const (
	mysqlImage = "mysql:8.0"
	redisImage = "redis:7-alpine"

	mysqlDatabase = "menu_test"
	mysqlUser     = "menu"
	mysqlPassword = "menu"
)

// MySQLContainer カタログ用MySQL
type MySQLContainer struct {
	container *mysql.MySQLContainer
	cfg       config.MySQLConfig
	dsn       string
}

// RedisContainer 抽出キャッシュ用Redis
type RedisContainer struct {
	cfg config.RedisConfig
	url string
}

// MySQL menu_test データベースを持つMySQLを起動する
func MySQL(t *testing.T) *MySQLContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping mysql container test in short mode")
	}
	ctx := context.Background()

	ctr, err := mysql.Run(ctx, mysqlImage,
		mysql.WithDatabase(mysqlDatabase),
		mysql.WithUsername(mysqlUser),
		mysql.WithPassword(mysqlPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(90*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("failed to start mysql container: %v", err)
	}

	// アプリ本体と同じ接続パラメータ
	dsn, err := ctr.ConnectionString(ctx, "charset=utf8mb4", "parseTime=true", "loc=Local")
	if err != nil {
		t.Fatalf("failed to build mysql dsn: %v", err)
	}

	return &MySQLContainer{
		container: ctr,
		cfg: config.MySQLConfig{
			Enabled:  true,
			Host:     host(ctx, t, ctr),
			Port:     mappedPort(ctx, t, ctr, "3306/tcp"),
			User:     mysqlUser,
			Password: mysqlPassword,
			Database: mysqlDatabase,
		},
		dsn: dsn,
	}
}

// Config コンテナを指すMySQL設定
func (m *MySQLContainer) Config() *config.MySQLConfig {
	cfg := m.cfg
	return &cfg
}

// DSN go-sql-driver/mysql 形式の接続文字列
func (m *MySQLContainer) DSN() string {
	return m.dsn
}

// Redis Redisを起動する
func Redis(t *testing.T) *RedisContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	ctx := context.Background()

	ctr, err := rediscontainer.Run(ctx, redisImage,
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").WithStartupTimeout(30*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}

	url, err := ctr.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to build redis url: %v", err)
	}

	return &RedisContainer{
		cfg: config.RedisConfig{
			Enabled: true,
			Host:    host(ctx, t, ctr),
			Port:    mappedPort(ctx, t, ctr, "6379/tcp"),
			TTL:     time.Minute,
		},
		url: url,
	}
}

// Config コンテナを指すRedis設定
func (r *RedisContainer) Config() *config.RedisConfig {
	cfg := r.cfg
	return &cfg
}

// Client redis:// URL から作ったクライアント。テスト終了時に閉じる
func (r *RedisContainer) Client(t *testing.T) *redis.Client {
	t.Helper()
	opts, err := redis.ParseURL(r.url)
	if err != nil {
		t.Fatalf("failed to parse redis url %q: %v", r.url, err)
	}
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func host(ctx context.Context, t *testing.T, ctr testcontainers.Container) string {
	t.Helper()
	h, err := ctr.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	return h
}

func mappedPort(ctx context.Context, t *testing.T, ctr testcontainers.Container, port string) int {
	t.Helper()
	p, err := ctr.MappedPort(ctx, nat.Port(port))
	if err != nil {
		t.Fatalf("failed to get mapped port %s: %v", port, err)
	}
	n, err := strconv.Atoi(p.Port())
	if err != nil {
		t.Fatalf("invalid mapped port %q: %v", p.Port(), err)
	}
	return n
}
