package panel

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/amishk599/tailorin/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeBackend counts calls per endpoint and fails with err when set.
type fakeBackend struct {
	mu     sync.Mutex
	calls  map[string]int
	err    error
	score  model.Score
	answer string
	// chatGate, when set, blocks Chat until it is closed.
	chatGate chan struct{}

	lastPosting model.JobPosting
	lastFormat  model.DocFormat
	lastPath    string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{calls: make(map[string]int)}
}

func (b *fakeBackend) hit(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[name]++
	return b.err
}

func (b *fakeBackend) count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[name]
}

func (b *fakeBackend) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, v := range b.calls {
		n += v
	}
	return n
}

func (b *fakeBackend) UploadResume(_ context.Context, path string) error {
	b.lastPath = path
	return b.hit("upload")
}

func (b *fakeBackend) Tailor(_ context.Context, p model.JobPosting) error {
	b.lastPosting = p
	return b.hit("tailor")
}

func (b *fakeBackend) Generate(_ context.Context, f model.DocFormat, _, _ string) error {
	b.lastFormat = f
	return b.hit("generate")
}

func (b *fakeBackend) MarkApplied(_ context.Context, _, _ string) error {
	return b.hit("applied")
}

func (b *fakeBackend) MatchScore(_ context.Context, _ string) (model.Score, error) {
	if err := b.hit("match"); err != nil {
		return model.Score{}, err
	}
	return b.score, nil
}

func (b *fakeBackend) Chat(_ context.Context, _ string) (string, error) {
	if b.chatGate != nil {
		<-b.chatGate
	}
	if err := b.hit("chat"); err != nil {
		return "", err
	}
	return b.answer, nil
}

// fakeHost injects by sending a fixed posting straight to the sender.
type fakeHost struct {
	tab       model.Tab
	tabErr    error
	injectErr error
	posting   model.JobPosting
	injected  int
}

func (h *fakeHost) ActiveTab(_ context.Context) (model.Tab, error) {
	return h.tab, h.tabErr
}

func (h *fakeHost) Inject(_ context.Context, _ model.Tab, requestID string, send model.Sender) error {
	if h.injectErr != nil {
		return h.injectErr
	}
	h.injected++
	send.Send(model.NewJobDataMessage(requestID, h.posting))
	return nil
}

// memTranscript keeps appended entries in memory.
type memTranscript struct {
	entries []Entry
	err     error
}

func (m *memTranscript) Append(_ context.Context, e Entry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, e)
	return nil
}

var (
	errTransport = &model.TransportError{Op: "POST /x", Err: errors.New("connection refused")}
	errBadInput  = &model.ApplicationError{StatusCode: 400, Message: "bad input"}
)
