package bot

import (
	"context"
	"io"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tgvidbot/internal/domain"
	"tgvidbot/internal/pipeline"
	"tgvidbot/internal/worker"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSender records outbound Telegram calls. Send hands out message IDs
// from 101 upward; sendErr, when set, decides per payload whether the call
// fails (failed calls are not recorded).
type fakeSender struct {
	mu        sync.Mutex
	sent      []tgbotapi.Chattable
	requested []tgbotapi.Chattable
	sendErr   func(c tgbotapi.Chattable) error
	nextID    int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		if err := f.sendErr(c); err != nil {
			return tgbotapi.Message{}, err
		}
	}
	f.sent = append(f.sent, c)
	f.nextID++
	return tgbotapi.Message{MessageID: 100 + f.nextID}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = append(f.requested, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// fakeUpdates feeds the bot's polling loop from a plain channel.
type fakeUpdates struct {
	ch      chan tgbotapi.Update
	mu      sync.Mutex
	stopped bool
}

func newFakeUpdates() *fakeUpdates {
	return &fakeUpdates{ch: make(chan tgbotapi.Update, 1)}
}

func (u *fakeUpdates) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return u.ch
}

func (u *fakeUpdates) StopReceivingUpdates() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.stopped {
		u.stopped = true
		close(u.ch)
	}
}

func (u *fakeUpdates) isStopped() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.stopped
}

// fakeRunner records pipeline runs.
type fakeRunner struct {
	mu      sync.Mutex
	runs    []*domain.MediaRequest
	deliver pipeline.Deliverer
}

func (r *fakeRunner) Run(ctx context.Context, req *domain.MediaRequest, deliver pipeline.Deliverer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, req)
	r.deliver = deliver
}

// fakePool records submitted tasks without running them and signals each
// submission on the submitted channel.
type fakePool struct {
	mu        sync.Mutex
	tasks     []worker.Task
	err       error
	submitted chan struct{}
}

func newFakePool() *fakePool {
	return &fakePool{submitted: make(chan struct{}, 8)}
}

func (p *fakePool) Submit(ctx context.Context, task worker.Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.tasks = append(p.tasks, task)
	select {
	case p.submitted <- struct{}{}:
	default:
	}
	return nil
}

func (p *fakePool) taskCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tasks)
}

func newTestBot(api *fakeSender, updates *fakeUpdates, runner *fakeRunner, pool *fakePool) *Bot {
	return &Bot{
		api:      api,
		updates:  updates,
		pipeline: runner,
		pool:     pool,
		capBytes: 50 << 20,
		logger:   testLogger(),
	}
}

func textMessage(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 7,
		Chat:      &tgbotapi.Chat{ID: 42},
		Text:      text,
	}
}

func commandMessage(text string) *tgbotapi.Message {
	msg := textMessage(text)
	cmdLen := len(text)
	for i, r := range text {
		if r == ' ' {
			cmdLen = i
			break
		}
	}
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}}
	return msg
}
