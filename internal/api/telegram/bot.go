package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "samosa-vision/internal/application"
	"samosa-vision/internal/domain/entity"
	"samosa-vision/internal/domain/port"
)

const (
	msgStart = `👋 Hi! I rate how crispy your samosa is.

📸 Send me a photo of a samosa and I will score it and comment on every corner.

📋 Commands:
/analyze — analyze another samosa
/help — help`

	msgHelp = `ℹ️ How to use the bot:

1️⃣ Send a photo of a samosa
2️⃣ Wait while it is being analyzed
3️⃣ Get a crispiness score from 0 to 100 and a comment for each corner

💡 Tips:
• Good lighting helps
• Keep the whole samosa in the frame`

	msgReady          = "📸 Send a photo of your samosa."
	msgSendPhoto      = "📸 Please send a photo of a samosa."
	msgUnknownCommand = "❓ Unknown command. Use /help."
	msgBusy           = "⏳ Still analyzing the previous photo, please wait."
	msgDownloadError  = "⚠️ Could not download the photo. Please try again."

	sessionPrefix = "tg:"
)

const (
	// apiTimeout ограничивает каждый запрос к Telegram, включая правку прогресса;
	// long polling должен укладываться в него
	apiTimeout  = 30 * time.Second
	pollTimeout = 20 // секунд
)

// Bot представляет Telegram-бота
type Bot struct {
	api          *tgbotapi.BotAPI
	sessions     *app.SessionService
	httpc        *http.Client
	fileEndpoint string

	mu     sync.Mutex
	status map[int64]int // chatID -> ID сообщения с прогрессом
}

// NewBot создаёт нового бота и подписывает его на события сессий
func NewBot(token string, sessions *app.SessionService) (*Bot, error) {
	httpc := &http.Client{Timeout: apiTimeout}
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, httpc)
	if err != nil {
		return nil, err
	}

	slog.Info("telegram authorized", "account", api.Self.UserName)

	return newBot(api, sessions, httpc), nil
}

func newBot(api *tgbotapi.BotAPI, sessions *app.SessionService, httpc *http.Client) *Bot {
	b := &Bot{
		api:          api,
		sessions:     sessions,
		httpc:        httpc,
		fileEndpoint: tgbotapi.FileEndpoint,
		status:       make(map[int64]int),
	}
	sessions.Observe(b)
	return b
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Обработка фото
	if len(msg.Photo) > 0 {
		photo := msg.Photo[len(msg.Photo)-1]
		b.handleImage(ctx, msg.Chat.ID, photo.FileID, "photo.jpg", "image/jpeg")
		return
	}

	// Картинка, отправленная файлом
	if msg.Document != nil {
		b.handleImage(ctx, msg.Chat.ID, msg.Document.FileID, msg.Document.FileName, msg.Document.MimeType)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	sid := sessionKey(msg.Chat.ID)

	switch msg.Command() {
	case "start":
		// /start начинает с чистой сессии
		if err := b.sessions.Drop(ctx, sid); err != nil {
			if errors.Is(err, entity.ErrBusy) {
				b.sendMessage(msg.Chat.ID, msgBusy)
				return
			}
			slog.Error("drop session", "session", sid, "error", err)
		}
		b.sendMessage(msg.Chat.ID, msgStart)

	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)

	case "analyze":
		if b.reset(ctx, msg.Chat.ID, sid) {
			b.sendMessage(msg.Chat.ID, msgReady)
		}

	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}
}

// reset переводит сессию из Result в Upload; false — если анализ ещё идёт
func (b *Bot) reset(ctx context.Context, chatID int64, sid string) bool {
	if _, err := b.sessions.Reset(ctx, sid); err != nil {
		if errors.Is(err, entity.ErrBusy) {
			b.sendMessage(chatID, msgBusy)
		} else {
			slog.Error("reset session", "session", sid, "error", err)
		}
		return false
	}
	return true
}

// handleImage скачивает файл и запускает анализ
func (b *Bot) handleImage(ctx context.Context, chatID int64, fileID, name, mediaType string) {
	sid := sessionKey(chatID)

	// Новое фото после результата — это «проанализировать ещё»
	if !b.reset(ctx, chatID, sid) {
		return
	}

	data, err := b.downloadFile(ctx, fileID)
	if err != nil {
		slog.Error("download photo", "chat", chatID, "error", err)
		b.sendMessage(chatID, msgDownloadError)
		return
	}

	img := &entity.ImageFile{Name: name, MediaType: mediaType, Reader: bytes.NewReader(data)}

	// Сообщение о прогрессе отправляем до запуска, чтобы тикер мог его редактировать
	sent, err := b.api.Send(tgbotapi.NewMessage(chatID, "⏳ "+b.sessions.Caption(0)))
	if err == nil {
		b.mu.Lock()
		b.status[chatID] = sent.MessageID
		b.mu.Unlock()
	}

	if _, err := b.sessions.SelectFile(context.WithoutCancel(ctx), sid, img); err != nil {
		b.mu.Lock()
		delete(b.status, chatID)
		b.mu.Unlock()
		if errors.Is(err, entity.ErrBusy) {
			b.sendMessage(chatID, msgBusy)
			return
		}
		slog.Error("select file", "session", sid, "error", err)
		b.sendMessage(chatID, msgDownloadError)
	}
}

// Progress обновляет сообщение о прогрессе
func (b *Bot) Progress(sessionID, caption string) {
	chatID, ok := chatFromSession(sessionID)
	if !ok {
		return
	}
	b.mu.Lock()
	msgID, ok := b.status[chatID]
	b.mu.Unlock()
	if !ok {
		return
	}
	if _, err := b.api.Request(tgbotapi.NewEditMessageText(chatID, msgID, "⏳ "+caption)); err != nil {
		slog.Debug("edit progress", "chat", chatID, "error", err)
	}
}

// Finished отправляет результат или ошибку
func (b *Bot) Finished(sessionID string, state entity.State, alert string) {
	chatID, ok := chatFromSession(sessionID)
	if !ok {
		return
	}
	b.mu.Lock()
	delete(b.status, chatID)
	b.mu.Unlock()

	if res, ok := state.(entity.Result); ok {
		b.sendMessage(chatID, formatResult(res.Record))
		return
	}

	// уведомление показано в чате, в сессии оно больше не нужно
	if _, err := b.sessions.TakeAlert(context.Background(), sessionID); err != nil {
		slog.Error("take alert", "session", sessionID, "error", err)
	}
	b.sendMessage(chatID, "⚠️ "+alert)
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	url := fmt.Sprintf(b.fileEndpoint, b.api.Token, file.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		slog.Error("send message", "chat", chatID, "error", err)
	}
}

func sessionKey(chatID int64) string {
	return sessionPrefix + strconv.FormatInt(chatID, 10)
}

func chatFromSession(sessionID string) (int64, bool) {
	rest, ok := strings.CutPrefix(sessionID, sessionPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// formatResult собирает текст с оценкой и комментариями по углам
func formatResult(rec entity.AnalysisRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🥟 Crispiness score: %.0f/100\n", rec.Score)
	for _, c := range rec.Corners {
		fmt.Fprintf(&sb, "\n• %s (%.0f°): %s", c.Name, c.Angle, c.Comment)
	}
	sb.WriteString("\n\nSend another photo or /analyze to start over.")
	return sb.String()
}

// Проверка реализации интерфейса
var _ port.SessionObserver = (*Bot)(nil)
