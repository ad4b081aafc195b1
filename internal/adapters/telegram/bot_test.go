package telegram

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pet-health-bot/internal/domain/dialog"
	"pet-health-bot/internal/platform/httpclient"
)

// stubTransport answers the Telegram API offline and records every call.
type stubTransport struct {
	mu    sync.Mutex
	paths []string
	forms []url.Values
}

func (s *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var form url.Values
	if req.Body != nil {
		raw, err := io.ReadAll(req.Body)
		if err == nil {
			form, _ = url.ParseQuery(string(raw))
		}
	}

	s.mu.Lock()
	s.paths = append(s.paths, req.URL.Path)
	s.forms = append(s.forms, form)
	s.mu.Unlock()

	var body string
	switch {
	case strings.HasSuffix(req.URL.Path, "/getMe"):
		body = `{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"petbot","username":"petbot"}}`
	case strings.HasSuffix(req.URL.Path, "/sendMessage"), strings.HasSuffix(req.URL.Path, "/sendDocument"):
		body = `{"ok":true,"result":{"message_id":1,"date":1700000000,"chat":{"id":1001,"type":"private"}}}`
	default:
		body = `{"ok":true,"result":[]}`
	}

	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}, nil
}

func (s *stubTransport) lastCall(suffix string) (url.Values, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.paths) - 1; i >= 0; i-- {
		if strings.HasSuffix(s.paths[i], suffix) {
			return s.forms[i], true
		}
	}
	return nil, false
}

func newTestBot(t *testing.T) (*Bot, *stubTransport) {
	t.Helper()

	tr := &stubTransport{}
	hc := httpclient.NewWithTransport(DefaultClientTimeout, tr)
	bot, err := New("test-token", nil, hc, nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return bot, tr
}

func TestNew_ClientTimeoutOutlivesLongPoll(t *testing.T) {
	tr := &stubTransport{}
	hc := httpclient.NewWithTransport(DefaultClientTimeout, tr)

	if _, err := New("test-token", nil, hc, nil); err != nil {
		t.Fatalf("New error: %v", err)
	}

	// An empty long poll is held open server-side for pollTimeout seconds;
	// a client timeout at or below that kills every idle poll.
	if hc.HTTP.Timeout <= pollTimeout*time.Second {
		t.Fatalf("client timeout %v must exceed the %ds poll hold", hc.HTTP.Timeout, pollTimeout)
	}
}

func TestNotify_DeliversToChat(t *testing.T) {
	bot, tr := newTestBot(t)

	if err := bot.Notify(context.Background(), "1001", "vaccination due soon"); err != nil {
		t.Fatalf("Notify error: %v", err)
	}

	form, ok := tr.lastCall("/sendMessage")
	if !ok {
		t.Fatalf("no sendMessage call recorded")
	}
	if form.Get("chat_id") != "1001" {
		t.Fatalf("chat_id = %q, want 1001", form.Get("chat_id"))
	}
	if form.Get("text") != "vaccination due soon" {
		t.Fatalf("text = %q", form.Get("text"))
	}
}

func TestNotify_RejectsBadChatID(t *testing.T) {
	bot, _ := newTestBot(t)

	if err := bot.Notify(context.Background(), "not-a-chat", "x"); err == nil {
		t.Fatalf("expected an error for a non-numeric chat id")
	}
}

func TestSend_AttachmentGoesAsDocument(t *testing.T) {
	bot, tr := newTestBot(t)

	err := bot.send(1001, dialog.Outbound{
		Text: "here you go",
		Attachment: &dialog.Attachment{
			Filename: "luna-health-history-20250615.pdf",
			Bytes:    []byte("%PDF-1.4 fake"),
			MIMEType: "application/pdf",
		},
	})
	if err != nil {
		t.Fatalf("send error: %v", err)
	}
	if _, ok := tr.lastCall("/sendDocument"); !ok {
		t.Fatalf("attachment must be uploaded via sendDocument")
	}
}

func TestKeyboard_TwoButtonsPerRow(t *testing.T) {
	buttons := []dialog.Button{
		{Label: "a", Payload: "a"},
		{Label: "b", Payload: "b"},
		{Label: "c", Payload: "c"},
	}

	kb := keyboard(buttons)
	if len(kb.InlineKeyboard) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(kb.InlineKeyboard))
	}
	if len(kb.InlineKeyboard[0]) != 2 || len(kb.InlineKeyboard[1]) != 1 {
		t.Fatalf("unexpected row layout: %d/%d", len(kb.InlineKeyboard[0]), len(kb.InlineKeyboard[1]))
	}
}

func updateWithText(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text: text,
			Chat: &tgbotapi.Chat{ID: chatID},
		},
	}
}

func updateWithCallback(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb-1",
			Data: data,
			Message: &tgbotapi.Message{
				Chat: &tgbotapi.Chat{ID: chatID},
			},
		},
	}
}

func TestToInbound(t *testing.T) {
	// Free text.
	in, chatID, ok := toInbound(updateWithText(1001, "hello"))
	if !ok || chatID != 1001 {
		t.Fatalf("text update not converted: ok=%v chat=%d", ok, chatID)
	}
	if in.Kind != dialog.InboundText || in.Payload != "hello" || in.UserID != "1001" {
		t.Fatalf("unexpected inbound: %+v", in)
	}

	// Button press.
	in, chatID, ok = toInbound(updateWithCallback(1001, "add_pet"))
	if !ok || chatID != 1001 {
		t.Fatalf("callback update not converted: ok=%v chat=%d", ok, chatID)
	}
	if in.Kind != dialog.InboundButton || in.Payload != "add_pet" {
		t.Fatalf("unexpected inbound: %+v", in)
	}
}
