package telegram

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todobot/internal/bot"
	"todobot/internal/storage"
)

type fakeAPI struct {
	updates chan tgbotapi.Update
	sent    []tgbotapi.MessageConfig
	sendErr error
	stopped bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 16)}
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) StopReceivingUpdates() { f.stopped = true }

type nopLog struct{}

func (nopLog) LogAction(int64, string, string) {}

func textUpdate(id int, userID, chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: id,
		Message: &tgbotapi.Message{
			MessageID: id * 10,
			From:      &tgbotapi.User{ID: userID},
			Chat:      &tgbotapi.Chat{ID: chatID},
			Text:      text,
		},
	}
}

func quietLogger() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

func runAll(t *testing.T, api *fakeAPI, h Handler, logger log.FieldLogger, updates ...tgbotapi.Update) {
	t.Helper()
	for _, u := range updates {
		api.updates <- u
	}
	close(api.updates)
	require.NoError(t, New(api, h, logger, 60).Run(context.Background()))
}

func TestRun_ConversationOverTelegram(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "tg.db"))
	require.NoError(t, err)
	defer store.Close()
	d := bot.NewDispatcher(store, nopLog{})
	api := newFakeAPI()

	runAll(t, api, d, quietLogger(),
		textUpdate(1, 7, 700, bot.LabelAdd),
		textUpdate(2, 7, 700, "Buy milk"),
		textUpdate(3, 7, 700, bot.LabelList),
	)

	require.Len(t, api.sent, 3)
	assert.True(t, api.stopped)

	prompt := api.sent[0]
	assert.Equal(t, int64(700), prompt.ChatID)
	assert.Zero(t, prompt.ReplyToMessageID)

	added := api.sent[1]
	assert.Equal(t, 20, added.ReplyToMessageID)
	assert.Contains(t, added.Text, "Buy milk")

	assert.Contains(t, api.sent[2].Text, "1. Buy milk - ❌")
	for _, m := range api.sent {
		kb, ok := m.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
		require.True(t, ok)
		assert.True(t, kb.ResizeKeyboard)
		assert.Len(t, kb.Keyboard, 3)
	}
}

type recordingHandler struct {
	got []bot.Message
	err error
}

func (h *recordingHandler) Handle(_ context.Context, m bot.Message) error {
	h.got = append(h.got, m)
	return h.err
}

func TestRun_SkipsNonTextUpdates(t *testing.T) {
	api := newFakeAPI()
	h := &recordingHandler{}
	photo := textUpdate(1, 1, 1, "")
	runAll(t, api, h, quietLogger(), tgbotapi.Update{UpdateID: 9}, photo, textUpdate(2, 3, 4, "hi"))

	require.Len(t, h.got, 1)
	assert.Equal(t, int64(3), h.got[0].SenderID())
	assert.Equal(t, "hi", h.got[0].Text())
}

func TestRun_HandlerErrorIsLoggedAndLoopContinues(t *testing.T) {
	api := newFakeAPI()
	h := &recordingHandler{err: errors.New("db closed")}
	logger, hook := test.NewNullLogger()

	runAll(t, api, h, logger, textUpdate(1, 1, 1, "a"), textUpdate(2, 1, 1, "b"))

	assert.Len(t, h.got, 2)
	var failures int
	for _, e := range hook.AllEntries() {
		if e.Level == log.ErrorLevel {
			failures++
		}
	}
	assert.Equal(t, 2, failures)
	assert.Equal(t, log.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, int64(1), hook.LastEntry().Data["user_id"])
}

func TestSend_WrapsAPIError(t *testing.T) {
	api := newFakeAPI()
	api.sendErr = errors.New("forbidden")
	tr := New(api, &recordingHandler{}, quietLogger(), 60)
	err := tr.send(1, 0, "x")
	assert.ErrorIs(t, err, api.sendErr)
}

func TestRun_StopsOnCancel(t *testing.T) {
	api := newFakeAPI()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, New(api, &recordingHandler{}, quietLogger(), 60).Run(ctx))
	assert.True(t, api.stopped)
}
