package tui

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/tailorin/internal/model"
	"github.com/amishk599/tailorin/internal/panel"
)

// stubBackend answers every call immediately and counts them.
type stubBackend struct {
	calls  int
	answer string
	err    error
}

func (b *stubBackend) UploadResume(context.Context, string) error {
	b.calls++
	return b.err
}

func (b *stubBackend) Tailor(context.Context, model.JobPosting) error {
	b.calls++
	return b.err
}

func (b *stubBackend) Generate(context.Context, model.DocFormat, string, string) error {
	b.calls++
	return b.err
}

func (b *stubBackend) MarkApplied(context.Context, string, string) error {
	b.calls++
	return b.err
}

func (b *stubBackend) MatchScore(context.Context, string) (model.Score, error) {
	b.calls++
	return model.Score{Score: 80, Reason: "good"}, b.err
}

func (b *stubBackend) Chat(context.Context, string) (string, error) {
	b.calls++
	return b.answer, b.err
}

func newTestModel(t *testing.T, b *stubBackend) (panelModel, *panel.Controller, *bytes.Buffer) {
	t.Helper()
	ctrl := panel.New(panel.Options{
		Backend: b,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	var clip bytes.Buffer
	m := newPanelModel(context.Background(), ctrl, nil, &clip)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(panelModel), ctrl, &clip
}

func press(t *testing.T, m panelModel, k tea.KeyType) (panelModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(panelModel), cmd
}

func TestPanel_ChatClearsInputBeforeReply(t *testing.T) {
	b := &stubBackend{answer: "Lead with Go."}
	m, ctrl, _ := newTestModel(t, b)

	m, _ = press(t, m, tea.KeyCtrlF)
	if m.side != sideChat {
		t.Fatal("ctrl+f should flip to the chat side")
	}
	m.chatInput.SetValue("What should I highlight?")

	m, cmd := press(t, m, tea.KeyEnter)
	if cmd == nil {
		t.Fatal("expected a command for the chat request")
	}
	if got := m.chatInput.Value(); got != "" {
		t.Errorf("input = %q, want cleared before the reply", got)
	}
	conv := ctrl.Snapshot().Conversation
	if len(conv) != 1 || conv[0].Sender != panel.SenderYou {
		t.Fatalf("conversation before reply = %+v", conv)
	}
	if b.calls != 0 {
		t.Fatal("backend should not be called until the command runs")
	}

	next, _ := m.Update(cmd())
	m = next.(panelModel)
	conv = ctrl.Snapshot().Conversation
	if len(conv) != 2 || conv[1].Sender != panel.SenderAssistant || conv[1].Text != "Lead with Go." {
		t.Fatalf("conversation after reply = %+v", conv)
	}
}

func TestPanel_BlankChatIgnored(t *testing.T) {
	b := &stubBackend{}
	m, ctrl, _ := newTestModel(t, b)
	m, _ = press(t, m, tea.KeyCtrlF)
	m.chatInput.SetValue("   ")

	_, cmd := press(t, m, tea.KeyEnter)
	if cmd != nil {
		t.Error("blank input should not produce a request")
	}
	if n := len(ctrl.Snapshot().Conversation); n != 0 {
		t.Errorf("conversation has %d entries", n)
	}
}

func TestPanel_TailorValidationSkipsRequest(t *testing.T) {
	b := &stubBackend{}
	m, ctrl, _ := newTestModel(t, b)

	_, cmd := press(t, m, tea.KeyCtrlT)
	if cmd != nil {
		t.Error("tailor with an empty form should not produce a request")
	}
	st := ctrl.Snapshot().Status
	if st.Kind != panel.StatusWarning {
		t.Errorf("status = %+v, want warning", st)
	}
}

func TestPanel_TailorRunsAndFinishes(t *testing.T) {
	b := &stubBackend{}
	m, ctrl, _ := newTestModel(t, b)
	m.company.SetValue("Acme")
	m.role.SetValue("SRE")
	m.jd.SetValue("Keep prod up.")

	m, cmd := press(t, m, tea.KeyCtrlT)
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if got := ctrl.Snapshot().Status.Kind; got != panel.StatusProgress {
		t.Errorf("status kind before call = %v, want progress", got)
	}

	next, _ := m.Update(cmd())
	m = next.(panelModel)
	s := ctrl.Snapshot()
	if s.Status.Kind != panel.StatusSuccess || !s.DownloadsVisible {
		t.Errorf("after tailor: %+v", s)
	}
	if !strings.Contains(m.View(), "ctrl+d DOCX") {
		t.Error("downloads hint should be shown after tailoring")
	}
}

func TestPanel_DownloadsHiddenUntilTailored(t *testing.T) {
	b := &stubBackend{}
	m, ctrl, _ := newTestModel(t, b)
	m.company.SetValue("Acme")
	m.role.SetValue("SRE")

	m, cmd := press(t, m, tea.KeyCtrlD)
	if cmd != nil {
		t.Error("ctrl+d should not start a request before tailoring")
	}
	if b.calls != 0 {
		t.Errorf("backend calls = %d, want 0", b.calls)
	}
	s := ctrl.Snapshot().Status
	if s.Kind != panel.StatusWarning || s.Text != "⚠️ Tailor the resume first to enable downloads." {
		t.Errorf("status = %+v", s)
	}
	if strings.Contains(m.View(), "ctrl+d DOCX") {
		t.Error("downloads hint should stay hidden")
	}
}

func TestPanel_PostingFillsInputs(t *testing.T) {
	m, ctrl, _ := newTestModel(t, &stubBackend{})
	m.company.SetValue("old")

	next, _ := m.Update(postingMsg{posting: model.JobPosting{Company: "Acme", Role: "SRE", JobDescription: "JD"}})
	m = next.(panelModel)

	if m.company.Value() != "Acme" || m.role.Value() != "SRE" || m.jd.Value() != "JD" {
		t.Errorf("inputs = %q/%q/%q", m.company.Value(), m.role.Value(), m.jd.Value())
	}
	if got := ctrl.Snapshot().Status.Text; got != "✅ JD scraped successfully!" {
		t.Errorf("status = %q", got)
	}
}

func TestPanel_CopyOnlyAssistantReplies(t *testing.T) {
	b := &stubBackend{err: &model.ApplicationError{StatusCode: 500, Message: "boom"}}
	m, _, clip := newTestModel(t, b)
	m, _ = press(t, m, tea.KeyCtrlF)

	m.chatInput.SetValue("first")
	m, cmd := press(t, m, tea.KeyEnter)
	next, _ := m.Update(cmd())
	m = next.(panelModel)

	m, _ = press(t, m, tea.KeyCtrlY)
	if clip.Len() != 0 {
		t.Fatalf("error entries must not be copied, clipboard got %q", clip.String())
	}

	b.err = nil
	b.answer = "copy me"
	m.chatInput.SetValue("second")
	m, cmd = press(t, m, tea.KeyEnter)
	next, _ = m.Update(cmd())
	m = next.(panelModel)

	m, _ = press(t, m, tea.KeyCtrlY)
	want := base64.StdEncoding.EncodeToString([]byte("copy me"))
	if !strings.Contains(clip.String(), want) {
		t.Errorf("clipboard sequence %q does not carry %q", clip.String(), want)
	}
	if m.copied == "" {
		t.Error("expected a copied hint")
	}
}

func TestPanel_ActionErrorRendered(t *testing.T) {
	b := &stubBackend{err: &model.TransportError{Op: "POST /applied", Err: errors.New("connection refused")}}
	m, ctrl, _ := newTestModel(t, b)
	m.company.SetValue("Acme")
	m.role.SetValue("SRE")

	m, cmd := press(t, m, tea.KeyCtrlA)
	m.Update(cmd())

	if got := ctrl.Snapshot().Status.Text; got != "❌ Network error: connection refused" {
		t.Errorf("status = %q", got)
	}
}

func TestWordWrap(t *testing.T) {
	got := wordWrap("one two three four", 9)
	if got != "one two\nthree\nfour" {
		t.Errorf("wordWrap = %q", got)
	}
}
