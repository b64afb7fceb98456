package telegram

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mixelka/stashbot/internal/categorize"
	"github.com/mixelka/stashbot/internal/config"
	"github.com/mixelka/stashbot/internal/database"
	"github.com/mixelka/stashbot/internal/document"
	"github.com/mixelka/stashbot/internal/formatter"
	"github.com/mixelka/stashbot/internal/ocr"
)

// Bot represents the Telegram bot
type Bot struct {
	bot       *bot.Bot
	db        *database.DB
	service   *categorize.Service
	ocr       *ocr.Provider
	documents *document.Extractor
	formatter *formatter.TelegramFormatter
	logger    *slog.Logger
	config    *config.Config
}

// BotDeps dependencies for creating a bot
type BotDeps struct {
	Config    *config.Config
	DB        *database.DB
	Service   *categorize.Service
	OCR       *ocr.Provider
	Documents *document.Extractor
	Formatter *formatter.TelegramFormatter
	Logger    *slog.Logger
}

// NewBot creates a new Telegram bot
func NewBot(deps BotDeps) (*Bot, error) {
	b := &Bot{
		db:        deps.DB,
		service:   deps.Service,
		ocr:       deps.OCR,
		documents: deps.Documents,
		formatter: deps.Formatter,
		logger:    deps.Logger.With("component", "telegram_bot"),
		config:    deps.Config,
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(b.defaultHandler),
		bot.WithMiddlewares(b.privateOnly),
		bot.WithErrorsHandler(func(err error) {
			b.logger.Error("telegram api error", "error", err)
		}),
	}

	tgBot, err := bot.New(deps.Config.TelegramToken, opts...)
	if err != nil {
		return nil, err
	}

	b.bot = tgBot
	b.registerHandlers()

	return b, nil
}

// registerHandlers registers command handlers under the configured prefix
func (b *Bot) registerHandlers() {
	p := b.config.CommandPrefix
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, p+"start", bot.MatchTypePrefix, b.handleStart)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, p+"help", bot.MatchTypePrefix, b.handleHelp)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, p+"get", bot.MatchTypePrefix, b.handleGet)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, p+"list", bot.MatchTypePrefix, b.handleList)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, p+"recent", bot.MatchTypePrefix, b.handleRecent)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, p+"search", bot.MatchTypePrefix, b.handleSearch)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, p+"clear", bot.MatchTypePrefix, b.handleClear)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, p+"wake", bot.MatchTypePrefix, b.handleWake)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, p+"hey", bot.MatchTypePrefix, b.handleWake)
	b.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, b.handleCallback)
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) {
	b.logger.Info("starting telegram bot")
	b.bot.Start(ctx)
}

// privateOnly drops updates from groups and channels; stored data is personal
func (b *Bot) privateOnly(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
		var chat *models.Chat
		switch {
		case update.Message != nil:
			chat = &update.Message.Chat
		case update.CallbackQuery != nil && update.CallbackQuery.Message.Message != nil:
			chat = &update.CallbackQuery.Message.Message.Chat
		}

		if chat != nil && chat.Type != "private" {
			b.logger.Debug("ignoring non-private update", "chat_id", chat.ID, "chat_type", chat.Type)
			return
		}
		next(ctx, tgBot, update)
	}
}
