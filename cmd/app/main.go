package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"menu-to-app/internal/config"
	"menu-to-app/internal/modules/shared/observability"
	"menu-to-app/internal/presentation/di"
	"menu-to-app/internal/presentation/http/router"
)

// AppConfig アプリケーション設定
type AppConfig struct {
	ConfigPath string
	Port       string
	// Config 指定された場合はConfigPathを読まずにこれを使う
	Config *config.Config
}

// ServerInterface サーバーインターフェース（Seam化）
type ServerInterface interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// App アプリケーション構造体（Seamパターン）
type App struct {
	config     *AppConfig
	cfg        *config.Config
	container  *di.Container
	server     *http.Server
	serverSeam ServerInterface // テスト用のSeam
}

// NewApp 新しいAppを作成
func NewApp(ctx context.Context, appCfg *AppConfig) (*App, error) {
	cfg := appCfg.Config
	if cfg == nil {
		loaded, err := config.Load(appCfg.ConfigPath)
		if err != nil {
			slog.Warn("Failed to load config, using defaults", "path", appCfg.ConfigPath, "error", err)
			loaded = config.DefaultConfig()
		}
		cfg = loaded
	}

	if appCfg.Port == "" {
		appCfg.Port = cfg.Server.Port
	}
	if appCfg.Port == "" {
		appCfg.Port = "8000"
	}

	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize DI container: %w", err)
	}

	// 抽出はLLM呼び出しを含むので、書き込みタイムアウトはアップロード期限より長くとる
	server := &http.Server{
		Addr:              ":" + appCfg.Port,
		Handler:           router.NewRouter(container),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.UploadTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	app := &App{
		config:    appCfg,
		cfg:       cfg,
		container: container,
		server:    server,
	}
	app.serverSeam = server

	return app, nil
}

// Start サーバーを起動
func (a *App) Start() error {
	a.printStartupMessage()
	return a.serverSeam.ListenAndServe()
}

func (a *App) printStartupMessage() {
	slog.Info("Menu-to-App server starting",
		"provider", a.container.ExtractUseCase().ProviderName(),
		"model", a.cfg.LLM.Model,
		"addr", "http://0.0.0.0:"+a.config.Port,
		"redis", a.cfg.Redis.Enabled,
		"mysql", a.cfg.MySQL.Enabled,
	)
	slog.Info("Endpoints",
		"upload", "POST /upload",
		"list", "GET|DELETE /api/v1/menu",
		"export", "GET /api/v1/menu/export.xlsx",
		"health", "GET /health",
	)
}

// Shutdown サーバーをシャットダウン
func (a *App) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down server...")

	if err := a.serverSeam.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if err := a.container.Close(); err != nil {
		return fmt.Errorf("container close failed: %w", err)
	}

	slog.Info("Server stopped")
	return nil
}

// Run アプリケーションを実行（グレースフルシャットダウン付き）
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)
	go func() {
		if err := a.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		_ = a.container.Close()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return a.Shutdown(shutdownCtx)
	}
}

// defaultConfigPath CONFIG_PATHがなければ ~/.menu-to-app/config.yaml
func defaultConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		slog.Warn("Failed to get home directory, using current directory", "error", err)
		homeDir = "."
	}
	return filepath.Join(homeDir, ".menu-to-app", "config.yaml")
}

// realMain 実際のmain処理（テスト可能にするため分離）
func realMain() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	configPath := defaultConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	slog.SetDefault(observability.NewLogger(os.Stdout, cfg.Log))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, &AppConfig{
		ConfigPath: configPath,
		Config:     cfg,
	})
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	return app.Run(ctx)
}

func main() {
	if err := realMain(); err != nil {
		slog.Error("Application error", "error", err)
		os.Exit(1)
	}
}
