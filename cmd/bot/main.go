package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"menu-to-app/internal/config"
	"menu-to-app/internal/modules/relay"
	"menu-to-app/internal/modules/shared/observability"
)

// pollTimeout ロングポーリングの待ち時間（秒）
const pollTimeout = 60

// Poller Telegramの更新取得（*tgbotapi.BotAPIが満たす）
type Poller interface {
	relay.Messenger
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// run 更新チャネルを開き、ctxが終わるまでボットを動かす
func run(ctx context.Context, api Poller, cfg *config.TelegramConfig) {
	bot := relay.NewBot(api, relay.NewIngressClient(cfg.IngressURL, cfg.RequestTimeout), nil)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := api.GetUpdatesChan(u)

	slog.Info("Menu relay bot started", "ingress", cfg.IngressURL)
	bot.Run(ctx, updates)
	api.StopReceivingUpdates()
	slog.Info("Menu relay bot stopped")
}

// loadConfig 設定を読み込み、log設定に従ってデフォルトロガーを差し替える
func loadConfig(path string, logOut io.Writer) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slog.SetDefault(observability.NewLogger(logOut, cfg.Log))
	return cfg, nil
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".menu-to-app", "config.yaml")
}

func realMain() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cfg, err := loadConfig(configPath(), os.Stdout)
	if err != nil {
		return err
	}

	if cfg.Telegram.Token == "" {
		return errors.New("TELEGRAM_TOKEN is not set")
	}

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("failed to connect to telegram: %w", err)
	}
	slog.Info("Authorized on telegram", "account", api.Self.UserName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	run(ctx, api, &cfg.Telegram)
	return nil
}

func main() {
	if err := realMain(); err != nil {
		slog.Error("Bot error", "error", err)
		os.Exit(1)
	}
}
