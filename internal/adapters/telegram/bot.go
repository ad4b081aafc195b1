package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/m-mizutani/goerr/v2"

	"pet-health-bot/internal/domain/dialog"
	"pet-health-bot/internal/platform/httpclient"
)

// Long-poll tuning. The API server holds an empty GetUpdates request open
// for pollTimeout seconds, so the HTTP client's total timeout must sit
// above it or every idle poll dies on the client side.
const (
	pollTimeout          = 30
	DefaultClientTimeout = (pollTimeout + 10) * time.Second
)

// Bot is the messaging transport: it turns Telegram updates into dialog
// engine events and delivers the engine's outbound instructions. The core
// never imports this package.
type Bot struct {
	api    *tgbotapi.BotAPI
	engine *dialog.Engine
	logger *slog.Logger
}

func New(token string, engine *dialog.Engine, hc *httpclient.Client, logger *slog.Logger) (*Bot, error) {
	if hc == nil {
		hc = httpclient.New(DefaultClientTimeout)
	}
	if logger == nil {
		logger = slog.Default()
	}

	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, hc.HTTP)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect to telegram")
	}

	return &Bot{api: api, engine: engine, logger: logger}, nil
}

// Run long-polls for updates until ctx is cancelled. Updates are handled
// sequentially so one user's events reach the engine in arrival order.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("telegram bot started", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("telegram bot stopped")
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, upd)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, upd tgbotapi.Update) {
	in, chatID, ok := toInbound(upd)
	if !ok {
		return
	}

	if upd.CallbackQuery != nil {
		// Ack so the client stops the spinner; failure is cosmetic.
		if _, err := b.api.Request(tgbotapi.NewCallback(upd.CallbackQuery.ID, "")); err != nil {
			b.logger.Warn("callback ack failed", "error", err)
		}
	}

	for _, out := range b.engine.Handle(ctx, in) {
		if err := b.send(chatID, out); err != nil {
			b.logger.Error("failed to send message", "chat_id", chatID, "error", err)
		}
	}
}

func toInbound(upd tgbotapi.Update) (dialog.Inbound, int64, bool) {
	switch {
	case upd.CallbackQuery != nil && upd.CallbackQuery.Message != nil:
		chatID := upd.CallbackQuery.Message.Chat.ID
		return dialog.Inbound{
			UserID:  strconv.FormatInt(chatID, 10),
			Kind:    dialog.InboundButton,
			Payload: upd.CallbackQuery.Data,
		}, chatID, true
	case upd.Message != nil && upd.Message.Text != "":
		chatID := upd.Message.Chat.ID
		return dialog.Inbound{
			UserID:  strconv.FormatInt(chatID, 10),
			Kind:    dialog.InboundText,
			Payload: upd.Message.Text,
		}, chatID, true
	}
	return dialog.Inbound{}, 0, false
}

func (b *Bot) send(chatID int64, out dialog.Outbound) error {
	if out.Attachment != nil {
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
			Name:  out.Attachment.Filename,
			Bytes: out.Attachment.Bytes,
		})
		doc.Caption = out.Text
		if _, err := b.api.Send(doc); err != nil {
			return goerr.Wrap(err, "failed to send document", goerr.V("chat_id", chatID))
		}
		return nil
	}

	msg := tgbotapi.NewMessage(chatID, out.Text)
	if len(out.Buttons) > 0 {
		msg.ReplyMarkup = keyboard(out.Buttons)
	}
	if _, err := b.api.Send(msg); err != nil {
		return goerr.Wrap(err, "failed to send message", goerr.V("chat_id", chatID))
	}
	return nil
}

// keyboard lays buttons out two per row.
func keyboard(buttons []dialog.Button) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(buttons); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(buttons[i].Label, buttons[i].Payload),
		}
		if i+1 < len(buttons) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(buttons[i+1].Label, buttons[i+1].Payload))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// Notify implements the reminder scheduler's delivery contract.
func (b *Bot) Notify(ctx context.Context, userID, text string) error {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return goerr.Wrap(err, "invalid chat id", goerr.V("user_id", userID))
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		return goerr.Wrap(err, "failed to deliver reminder", goerr.V("chat_id", chatID))
	}
	return nil
}
