package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"menu-to-app/internal/modules/menu/domain"
	"menu-to-app/internal/modules/shared/observability"
)

// 返信メッセージ
const (
	MessageWelcome     = "Welcome to your Menu Creator! Please upload a Photo of your menu."
	MessageSuccess     = "Your Menu should be ready in your app!"
	MessageUnreadable  = "Sorry, I could not read the menu in that photo. Please try a clearer picture."
	MessageTryLater    = "The menu service is busy right now. Please try again later."
	MessageUnreachable = "The menu service could not be reached. Please try again later."
	MessageFailed      = "Error processing your image."
)

// maxPhotoBytes Telegramからダウンロードする写真の上限
const maxPhotoBytes = 20 << 20

// Messenger Telegram Bot APIのうちボットが使う操作（*tgbotapi.BotAPIが満たす）
type Messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Forwarder 画像を取り込みAPIへ送る
type Forwarder interface {
	Forward(ctx context.Context, image []byte) error
}

// Bot 写真を受け取って取り込みAPIへ中継するボット
type Bot struct {
	api        Messenger
	ingress    Forwarder
	httpClient *http.Client
}

// NewBot 新しいBotを作成。httpClientがnilなら30秒タイムアウトのクライアントを使う
func NewBot(api Messenger, ingress Forwarder, httpClient *http.Client) *Bot {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Bot{api: api, ingress: ingress, httpClient: httpClient}
}

// Run updatesが閉じるかctxが終わるまで更新を処理する。処理中の更新は待ってから戻る
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				b.HandleUpdate(ctx, update)
			}()
		}
	}
}

// HandleUpdate 1件の更新を処理する。/start と写真以外は無視する
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}

	ctx = observability.WithRequestID(ctx, fmt.Sprintf("tg-%d", update.UpdateID))
	logger := observability.Logger(ctx).With("chat_id", msg.Chat.ID)

	switch {
	case msg.IsCommand() && msg.Command() == "start":
		b.reply(ctx, msg, MessageWelcome)
	case len(msg.Photo) > 0:
		if err := b.relayPhoto(ctx, msg.Photo); err != nil {
			logger.Error("failed to relay photo", "error", err)
			b.reply(ctx, msg, ReplyFor(err))
			return
		}
		logger.Info("photo relayed")
		b.reply(ctx, msg, MessageSuccess)
	}
}

// relayPhoto 最大解像度の写真をダウンロードして転送する
func (b *Bot) relayPhoto(ctx context.Context, photos []tgbotapi.PhotoSize) error {
	largest := photos[len(photos)-1]

	fileURL, err := b.api.GetFileDirectURL(largest.FileID)
	if err != nil {
		return fmt.Errorf("failed to resolve photo file: %w", err)
	}

	image, err := b.download(ctx, fileURL)
	if err != nil {
		return err
	}

	return b.ingress.Forward(ctx, image)
}

// download URLにはボットトークンが含まれるためエラーに含めない
func (b *Bot) download(ctx context.Context, fileURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, errors.New("failed to create photo download request")
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("failed to download photo: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download photo: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	if len(data) > maxPhotoBytes {
		return nil, fmt.Errorf("photo exceeds %d bytes", maxPhotoBytes)
	}
	return data, nil
}

func (b *Bot) reply(ctx context.Context, msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(out); err != nil {
		observability.Logger(ctx).Error("failed to send reply", "chat_id", msg.Chat.ID, "error", err)
	}
}

// ReplyFor 転送エラーをユーザー向けの返信に変換する
func ReplyFor(err error) string {
	var te *TransportError
	if !errors.As(err, &te) {
		return MessageFailed
	}
	if te.Status == 0 {
		return MessageUnreachable
	}
	switch domain.ErrorKind(te.Code) {
	case domain.KindExtractionParse:
		return MessageUnreadable
	case domain.KindPersistence, domain.KindExtraction:
		return MessageTryLater
	default:
		return MessageFailed
	}
}
