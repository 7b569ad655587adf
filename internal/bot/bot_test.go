package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tgvidbot/internal/worker"
)

func TestBot_HandleText_IgnoresConversation(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"plain text", "привет, как дела?"},
		{"bare domain", "example.com/watch"},
		{"unsupported scheme", "ftp://example.com/file"},
		{"empty", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeSender{}
			pool := newFakePool()
			b := newTestBot(api, newFakeUpdates(), &fakeRunner{}, pool)

			b.handleText(context.Background(), textMessage(tt.text))

			if len(api.sent) != 0 {
				t.Errorf("sent %d messages for conversational input, want silence", len(api.sent))
			}
			if pool.taskCount() != 0 {
				t.Errorf("queued %d tasks for conversational input, want 0", pool.taskCount())
			}
		})
	}
}

func TestBot_HandleText_AcceptsURL(t *testing.T) {
	api := &fakeSender{}
	runner := &fakeRunner{}
	pool := newFakePool()
	b := newTestBot(api, newFakeUpdates(), runner, pool)

	b.handleText(context.Background(), textMessage("https://example.com/watch?v=abc"))

	if len(api.sent) != 1 {
		t.Fatalf("sent %d messages, want the status reply", len(api.sent))
	}
	status, ok := api.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("payload is %T, want a message", api.sent[0])
	}
	if status.Text != statusDownloading {
		t.Errorf("status text = %q, want %q", status.Text, statusDownloading)
	}
	if status.ChatID != 42 || status.ReplyToMessageID != 7 {
		t.Errorf("status target = (%d, %d), want the originating message", status.ChatID, status.ReplyToMessageID)
	}

	if pool.taskCount() != 1 {
		t.Fatalf("queued %d tasks, want 1", pool.taskCount())
	}

	// Running the queued task must drive the pipeline with the parsed
	// request and a delivery bound to the status message.
	pool.tasks[0](context.Background())
	if len(runner.runs) != 1 {
		t.Fatalf("pipeline ran %d times, want 1", len(runner.runs))
	}
	req := runner.runs[0]
	if req.SourceURL != "https://example.com/watch?v=abc" {
		t.Errorf("request url = %q", req.SourceURL)
	}
	if !strings.HasPrefix(req.ID.String(), "req_") {
		t.Errorf("request id = %q, want a req_ prefix", req.ID)
	}
	deliver, ok := runner.deliver.(*chatDelivery)
	if !ok {
		t.Fatalf("deliverer is %T, want *chatDelivery", runner.deliver)
	}
	if deliver.statusMsgID != 101 {
		t.Errorf("delivery status message = %d, want the one just sent", deliver.statusMsgID)
	}
}

func TestBot_HandleText_StatusSendFailure(t *testing.T) {
	api := &fakeSender{
		sendErr: func(c tgbotapi.Chattable) error {
			return context.DeadlineExceeded
		},
	}
	runner := &fakeRunner{}
	pool := newFakePool()
	b := newTestBot(api, newFakeUpdates(), runner, pool)

	b.handleText(context.Background(), textMessage("https://example.com/watch?v=abc"))

	if pool.taskCount() != 1 {
		t.Fatalf("queued %d tasks, want 1 even when the status send fails", pool.taskCount())
	}
	pool.tasks[0](context.Background())
	deliver := runner.deliver.(*chatDelivery)
	if deliver.statusMsgID != 0 {
		t.Errorf("status message id = %d, want 0 after a failed send", deliver.statusMsgID)
	}
}

func TestBot_HandleText_SubmitFailure(t *testing.T) {
	api := &fakeSender{}
	pool := newFakePool()
	pool.err = worker.ErrPoolStopped
	b := newTestBot(api, newFakeUpdates(), &fakeRunner{}, pool)

	b.handleText(context.Background(), textMessage("https://example.com/watch?v=abc"))

	if len(api.sent) != 2 {
		t.Fatalf("sent %d payloads, want status + failure edit", len(api.sent))
	}
	edit, ok := api.sent[1].(tgbotapi.EditMessageTextConfig)
	if !ok {
		t.Fatalf("second payload is %T, want a status edit", api.sent[1])
	}
	if edit.Text != failureGenericText {
		t.Errorf("failure text = %q", edit.Text)
	}
}

func TestBot_HandleCommand_Start(t *testing.T) {
	api := &fakeSender{}
	b := newTestBot(api, newFakeUpdates(), &fakeRunner{}, newFakePool())

	b.handleCommand(commandMessage("/start"))

	if len(api.sent) != 1 {
		t.Fatalf("sent %d messages, want the greeting", len(api.sent))
	}
	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("payload is %T, want a message", api.sent[0])
	}
	if msg.ParseMode != tgbotapi.ModeHTML {
		t.Errorf("parse mode = %q, want HTML", msg.ParseMode)
	}
	if !strings.Contains(msg.Text, "Привет!") {
		t.Errorf("greeting text = %q", msg.Text)
	}
	if msg.ReplyMarkup == nil {
		t.Error("greeting should carry the help keyboard")
	}
}

func TestBot_HandleCommand_Unknown(t *testing.T) {
	api := &fakeSender{}
	b := newTestBot(api, newFakeUpdates(), &fakeRunner{}, newFakePool())

	b.handleCommand(commandMessage("/ping"))

	if len(api.sent) != 0 {
		t.Errorf("sent %d messages for an unknown command, want 0", len(api.sent))
	}
}

func TestBot_HandleCallback_Help(t *testing.T) {
	api := &fakeSender{}
	b := newTestBot(api, newFakeUpdates(), &fakeRunner{}, newFakePool())

	b.handleCallback(&tgbotapi.CallbackQuery{
		ID:      "cb1",
		Data:    helpCallback,
		Message: textMessage(""),
	})

	if len(api.requested) != 1 {
		t.Fatalf("requested %d payloads, want the callback ack", len(api.requested))
	}
	if _, ok := api.requested[0].(tgbotapi.CallbackConfig); !ok {
		t.Errorf("ack payload is %T, want a callback answer", api.requested[0])
	}

	if len(api.sent) != 1 {
		t.Fatalf("sent %d messages, want the help text", len(api.sent))
	}
	msg := api.sent[0].(tgbotapi.MessageConfig)
	if !strings.Contains(msg.Text, "Как пользоваться ботом") {
		t.Errorf("help text = %q", msg.Text)
	}
	if msg.ParseMode != tgbotapi.ModeHTML {
		t.Errorf("parse mode = %q, want HTML", msg.ParseMode)
	}
}

func TestBot_HandleCallback_UnknownData(t *testing.T) {
	api := &fakeSender{}
	b := newTestBot(api, newFakeUpdates(), &fakeRunner{}, newFakePool())

	b.handleCallback(&tgbotapi.CallbackQuery{ID: "cb1", Data: "noop", Message: textMessage("")})

	if len(api.requested) != 1 {
		t.Errorf("callback should still be acknowledged, got %d requests", len(api.requested))
	}
	if len(api.sent) != 0 {
		t.Errorf("sent %d messages for unknown callback data, want 0", len(api.sent))
	}
}

func TestBot_Run_DispatchesUpdates(t *testing.T) {
	api := &fakeSender{}
	updates := newFakeUpdates()
	pool := newFakePool()
	b := newTestBot(api, updates, &fakeRunner{}, pool)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	updates.ch <- tgbotapi.Update{Message: textMessage("https://example.com/watch?v=abc")}

	select {
	case <-pool.submitted:
	case <-time.After(2 * time.Second):
		t.Fatal("update was not dispatched to the pool")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if !updates.isStopped() {
		t.Error("polling should be stopped on shutdown")
	}
}

func TestBot_Run_StopsOnCancel(t *testing.T) {
	updates := newFakeUpdates()
	b := newTestBot(&fakeSender{}, updates, &fakeRunner{}, newFakePool())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
