// Package bot consumes Telegram updates, turns URL messages into pipeline
// runs, and reports each run's outcome back into the originating chat.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"tgvidbot/internal/config"
	"tgvidbot/internal/domain"
	"tgvidbot/internal/pipeline"
	"tgvidbot/internal/worker"
)

// Runner prepares one request's media and delivers the outcome. Implemented
// by *pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, req *domain.MediaRequest, deliver pipeline.Deliverer)
}

// Submitter queues one task onto the shared worker pool.
type Submitter interface {
	Submit(ctx context.Context, task worker.Task) error
}

// Bot is the Telegram front of the service. One instance handles all chats;
// per-request state lives in the submitted tasks.
type Bot struct {
	api      sender
	updates  updateSource
	pipeline Runner
	pool     Submitter
	capBytes int64
	logger   *slog.Logger
}

// updateSource is the polling slice of the Telegram client.
type updateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// New authenticates against the Bot API and assembles the bot.
func New(cfg config.TelegramConfig, pl Runner, pool Submitter, logger *slog.Logger) (*Bot, error) {
	if cfg.BotToken == "" {
		return nil, domain.ErrMissingToken
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	logger.Info("telegram bot authorized", "username", api.Self.UserName)

	return &Bot{
		api:      api,
		updates:  api,
		pipeline: pl,
		pool:     pool,
		capBytes: cfg.MaxFileSize,
		logger:   logger,
	}, nil
}

// Run polls for updates until ctx is canceled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.updates.GetUpdatesChan(u)

	b.logger.Info("update loop started")
	for {
		select {
		case <-ctx.Done():
			b.updates.StopReceivingUpdates()
			b.logger.Info("update loop stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(update.Message)
	case update.Message != nil && update.Message.Text != "":
		b.handleText(ctx, update.Message)
	}
}

// handleCommand serves /start; other commands are ignored.
func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	if msg.Command() != "start" {
		return
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, greetingText(b.capBytes))
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyMarkup = helpKeyboard()
	if _, err := b.api.Send(reply); err != nil {
		b.logger.Error("greeting send failed", "chat_id", msg.Chat.ID, "error", err)
	}
}

// handleCallback acknowledges the callback and serves the help text.
func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn("callback ack failed", "error", err)
	}
	if cb.Data != helpCallback || cb.Message == nil {
		return
	}

	reply := tgbotapi.NewMessage(cb.Message.Chat.ID, helpText)
	reply.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(reply); err != nil {
		b.logger.Error("help send failed", "chat_id", cb.Message.Chat.ID, "error", err)
	}
}

// handleText accepts URL messages. Anything else is conversation and gets
// no reply. An accepted request is answered with a status message before it
// is queued, so the user sees progress even while all workers are busy.
func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	req, err := domain.ParseRequest(msg.Text, msg.Chat.ID, msg.MessageID)
	if err != nil {
		return
	}
	req.ID = domain.RequestID("req_" + uuid.New().String()[:8])

	logger := b.logger.With("request_id", req.ID)
	logger.Info("request accepted", "chat_id", req.ChatID, "url", req.SourceURL)

	status := tgbotapi.NewMessage(req.ChatID, statusDownloading)
	status.ReplyToMessageID = req.MessageID
	statusMsg, err := b.api.Send(status)
	if err != nil {
		logger.Warn("status message send failed", "error", err)
	}

	deliver := &chatDelivery{
		api:         b.api,
		capBytes:    b.capBytes,
		statusMsgID: statusMsg.MessageID,
		logger:      logger,
	}

	task := func(taskCtx context.Context) {
		b.pipeline.Run(taskCtx, req, deliver)
	}
	if err := b.pool.Submit(ctx, task); err != nil {
		logger.Error("task submit failed", "error", err)
		deliver.ReportFailure(ctx, req, domain.ReasonFetch)
	}
}
