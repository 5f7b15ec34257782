package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	app "edge-lab-bot/internal/application"
	"edge-lab-bot/internal/container"
	"edge-lab-bot/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я показываю классические операторы обработки изображений.

📸 Отправьте фото или картинку файлом (JPEG, PNG, WebP), затем выберите оператор.

📋 Команды:
/canny [low] [high] — границы Canny
/sobel [ksize] — производная Собеля
/prewitt [ksize] — фильтр Прюитт
/harris [quality] — углы Харриса
/corners [max] [quality] [distance] — углы goodFeaturesToTrack
/set <параметр> <значение> — изменить параметр
/run — повторить обработку
/upload — загрузить новое изображение
/operators — параметры и значения по умолчанию
/cancel — сбросить изображение и оператор`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте изображение
2️⃣ Выберите оператор командой, например /canny 50 150
3️⃣ Получите сравнение: слева оригинал, справа результат

Параметры можно менять командой /set, например /set kernel_size 5.
Новое изображение сразу обрабатывается выбранным оператором.`

	msgAwaitingPhoto   = "📸 Отправьте изображение для обработки."
	msgCancelled       = "❌ Изображение и оператор сброшены."
	msgSendPhoto       = "📸 Отправьте изображение или выберите оператор. /help — справка."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgImageLoaded     = "✅ Изображение загружено (%d×%d). Выберите оператор."
	msgOperatorChosen  = "✅ Выбран оператор %s. Теперь отправьте изображение."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте другое."
	msgDecodeError     = "⚠️ Не удалось прочитать изображение. Поддерживаются JPEG, PNG и WebP."
	msgNoImage         = "📸 Сначала отправьте изображение."
	msgNoOperator      = "🔧 Сначала выберите оператор, например /canny."
	msgNotAnImage      = "⚠️ Этот файл не похож на изображение."
)

// operatorCommands команда → оператор
var operatorCommands = map[string]entity.Operator{
	"canny":   entity.OperatorCanny,
	"sobel":   entity.OperatorSobel,
	"prewitt": entity.OperatorPrewitt,
	"harris":  entity.OperatorHarris,
	"corners": entity.OperatorGoodFeatures,
}

// Bot представляет Telegram-бота
type Bot struct {
	api       *tgbotapi.BotAPI
	users     *app.UserService
	detection *app.DetectionService
	resolver  *app.ParameterResolver
	client    *http.Client
	log       zerolog.Logger
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log = log.With().Str("component", "telegram").Logger()
	log.Info().Str("account", api.Self.UserName).Msg("authorized")

	return &Bot{
		api:       api,
		users:     c.UserService,
		detection: c.DetectionService,
		resolver:  c.Resolver,
		client:    &http.Client{Timeout: 30 * time.Second},
		log:       log,
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx.
// Сообщения обрабатываются по одному, как в интерактивном интерфейсе.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
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
	if msg.From == nil {
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Обработка фото
	if len(msg.Photo) > 0 {
		photo := msg.Photo[len(msg.Photo)-1]
		b.handleImage(ctx, msg, photo.FileID)
		return
	}

	// Картинка, отправленная файлом, приходит без пережатия
	if msg.Document != nil {
		if !isImageMime(msg.Document.MimeType) {
			b.sendMessage(msg.Chat.ID, msgNotAnImage)
			if b.currentState(ctx, msg) == entity.StateAwaitingPhoto {
				b.sendMessage(msg.Chat.ID, msgAwaitingPhoto)
			}
			return
		}
		b.handleImage(ctx, msg, msg.Document.FileID)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, textPrompt(b.currentState(ctx, msg)))
}

// currentState возвращает состояние пользователя, при ошибке хранилища главное меню
func (b *Bot) currentState(ctx context.Context, msg *tgbotapi.Message) entity.UserState {
	user, err := b.users.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.log.Error().Err(err).Int64("user_id", msg.From.ID).Msg("get user")
		return entity.StateMainMenu
	}
	return user.State
}

// textPrompt подсказка на обычный текст: после /upload бот ждёт только изображение
func textPrompt(state entity.UserState) string {
	if state == entity.StateAwaitingPhoto {
		return msgAwaitingPhoto
	}
	return msgSendPhoto
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	if op, ok := operatorCommands[msg.Command()]; ok {
		b.handleOperator(ctx, msg, op)
		return
	}

	switch msg.Command() {
	case "start":
		if _, err := b.users.SetState(ctx, userID, chatID, entity.StateMainMenu); err != nil {
			b.log.Error().Err(err).Int64("user_id", userID).Msg("set state")
		}
		b.sendWithKeyboard(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "operators":
		b.sendMessage(chatID, operatorsHelp(b.resolver))

	case "upload":
		if _, err := b.users.BeginUpload(ctx, userID, chatID); err != nil {
			b.log.Error().Err(err).Int64("user_id", userID).Msg("begin upload")
		}
		b.sendMessage(chatID, msgAwaitingPhoto)

	case "set":
		control, value, err := parseSetArgs(msg.CommandArguments())
		if err != nil {
			b.sendMessage(chatID, "⚠️ "+err.Error())
			return
		}
		if _, _, err := b.detection.SetControl(ctx, userID, chatID, control, value); err != nil {
			b.sendMessage(chatID, userMessage(err))
			return
		}
		b.runAndReply(ctx, msg, false)

	case "run":
		b.runAndReply(ctx, msg, true)

	case "cancel":
		if _, err := b.detection.Reset(ctx, userID, chatID); err != nil {
			b.log.Error().Err(err).Int64("user_id", userID).Msg("reset")
		}
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handleOperator выбирает оператор и сразу обрабатывает текущее изображение, если оно есть
func (b *Bot) handleOperator(ctx context.Context, msg *tgbotapi.Message, op entity.Operator) {
	controls, err := parseOperatorArgs(op, msg.CommandArguments())
	if err != nil {
		b.sendMessage(msg.Chat.ID, "⚠️ "+err.Error())
		return
	}

	if _, _, err := b.detection.Select(ctx, msg.From.ID, msg.Chat.ID, string(op), controls); err != nil {
		b.sendMessage(msg.Chat.ID, userMessage(err))
		return
	}
	b.runAndReply(ctx, msg, false)
}

// handleImage скачивает изображение, делает его текущим и перезапускает выбранный оператор
func (b *Bot) handleImage(ctx context.Context, msg *tgbotapi.Message, fileID string) {
	imageData, err := b.downloadFile(ctx, fileID)
	if err != nil {
		b.log.Error().Err(err).Int64("user_id", msg.From.ID).Msg("download image")
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	user, img, err := b.detection.LoadImage(ctx, msg.From.ID, msg.Chat.ID, imageData)
	if err != nil {
		b.log.Warn().Err(err).Int64("user_id", msg.From.ID).Int("bytes", len(imageData)).Msg("load image")
		b.sendMessage(msg.Chat.ID, userMessage(err))
		return
	}

	if !user.HasOperator() {
		b.sendWithKeyboard(msg.Chat.ID, fmt.Sprintf(msgImageLoaded, img.Width, img.Height))
		return
	}
	b.runAndReply(ctx, msg, true)
}

// runAndReply запускает конвейер и отправляет сравнение
func (b *Bot) runAndReply(ctx context.Context, msg *tgbotapi.Message, announce bool) {
	if announce {
		b.sendMessage(msg.Chat.ID, msgProcessing)
	}

	out, err := b.detection.Run(ctx, msg.From.ID, msg.Chat.ID)
	if errors.Is(err, app.ErrNoImage) {
		user, uerr := b.users.Get(ctx, msg.From.ID, msg.Chat.ID)
		if uerr == nil && user.HasOperator() {
			b.sendMessage(msg.Chat.ID, fmt.Sprintf(msgOperatorChosen, user.Operator.Title()))
			return
		}
	}
	if err != nil {
		b.log.Warn().Err(err).Int64("user_id", msg.From.ID).Msg("run detection")
		b.sendMessage(msg.Chat.ID, userMessage(err))
		return
	}

	photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileBytes{Name: "comparison.png", Bytes: out.Comparison})
	photo.Caption = caption(out)
	if _, err := b.api.Send(photo); err != nil {
		b.log.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("send photo")
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %s", resp.Status)
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
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("send message")
	}
}

// sendWithKeyboard отправляет сообщение с клавиатурой выбора оператора
func (b *Bot) sendWithKeyboard(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = operatorKeyboard()
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("send message")
	}
}

func operatorKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/canny"),
			tgbotapi.NewKeyboardButton("/sobel"),
			tgbotapi.NewKeyboardButton("/prewitt"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/harris"),
			tgbotapi.NewKeyboardButton("/corners"),
		),
	)
}

// userMessage переводит ошибку в сообщение для пользователя
func userMessage(err error) string {
	var ipe *entity.InvalidParameterError
	switch {
	case errors.As(err, &ipe):
		if ipe.Control == "" {
			return "⚠️ Недопустимые параметры: " + ipe.Reason
		}
		return fmt.Sprintf("⚠️ Недопустимое значение %s=%g: %s", ipe.Control, ipe.Value, ipe.Reason) + controlsHint(ipe.Operator)
	case errors.Is(err, entity.ErrUnsupportedOperator):
		return msgUnknownCommand
	case errors.Is(err, entity.ErrDecode):
		return msgDecodeError
	case errors.Is(err, app.ErrNoImage):
		return msgNoImage
	case errors.Is(err, app.ErrNoOperator):
		return msgNoOperator
	}
	return msgProcessingError
}

func isImageMime(mime string) bool {
	switch strings.ToLower(mime) {
	case "image/jpeg", "image/jpg", "image/png", "image/webp":
		return true
	}
	return false
}
