package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"todobot/internal/bot"
	"todobot/internal/config"
)

// API is the subset of *tgbotapi.BotAPI the transport uses.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	StopReceivingUpdates()
}

type Handler interface {
	Handle(ctx context.Context, m bot.Message) error
}

type Transport struct {
	api         API
	handler     Handler
	logger      log.FieldLogger
	pollTimeout int
	keyboard    tgbotapi.ReplyKeyboardMarkup
}

// Dial authenticates against the Bot API with the configured token.
func Dial(cfg config.Telegram) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	api.Debug = cfg.Debug
	return api, nil
}

func New(api API, handler Handler, logger log.FieldLogger, pollTimeout int) *Transport {
	return &Transport{
		api:         api,
		handler:     handler,
		logger:      logger,
		pollTimeout: pollTimeout,
		keyboard:    menuKeyboard(),
	}
}

func menuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	labels := bot.Menu()
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(labels[0])),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(labels[1]),
			tgbotapi.NewKeyboardButton(labels[2]),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(labels[3]),
			tgbotapi.NewKeyboardButton(labels[4]),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// Run long-polls updates and hands each text message to the handler, one
// at a time, until ctx is cancelled or the update channel closes.
func (t *Transport) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = t.pollTimeout
	updates := t.api.GetUpdatesChan(u)
	defer t.api.StopReceivingUpdates()

	t.logger.Info("telegram transport started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			t.handleUpdate(ctx, upd)
		}
	}
}

func (t *Transport) handleUpdate(ctx context.Context, upd tgbotapi.Update) {
	in := upd.Message
	if in == nil || in.Text == "" || in.Chat == nil {
		return
	}
	sender := in.Chat.ID
	if in.From != nil {
		sender = in.From.ID
	}
	chatID := in.Chat.ID
	replyTo := in.MessageID

	reply := func(_ context.Context, text string) error {
		return t.send(chatID, replyTo, text)
	}
	send := func(_ context.Context, text string) error {
		return t.send(chatID, 0, text)
	}
	if err := t.handler.Handle(ctx, bot.NewMessage(sender, in.Text, reply, send)); err != nil {
		t.logger.WithError(err).WithField("user_id", sender).Error("message handling failed")
	}
}

func (t *Transport) send(chatID int64, replyTo int, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo
	msg.ReplyMarkup = t.keyboard
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
