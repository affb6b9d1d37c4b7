// Package tui is the terminal front end: the interactive panel and an
// inline spinner for one-shot commands.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/tailorin/internal/bus"
	"github.com/amishk599/tailorin/internal/model"
	"github.com/amishk599/tailorin/internal/panel"
)

type side int

const (
	sideForm side = iota
	sideChat
)

// form fields in focus order.
const (
	fieldCompany = iota
	fieldRole
	fieldJD
	fieldResume
	fieldCount
)

var fieldLabels = [fieldCount]string{"Company", "Role", "JD", "Resume"}

// actionDoneMsg carries the outcome of a guarded backend call.
type actionDoneMsg struct {
	action panel.Action
	err    error
}

// extractRequestedMsg is sent once the host has accepted (or refused) the injection.
type extractRequestedMsg struct {
	err error
}

// postingMsg is a posting received from the bus.
type postingMsg struct {
	posting model.JobPosting
}

// listenStoppedMsg means the bus listener's context ended.
type listenStoppedMsg struct {
	err error
}

// chatDoneMsg carries the backend's reply to a chat question.
type chatDoneMsg struct {
	answer string
	err    error
}

type panelModel struct {
	ctrl     *panel.Controller
	listener *bus.Listener
	ctx      context.Context

	side    side
	focus   int
	company textinput.Model
	role    textinput.Model
	jd      textarea.Model
	resume  textinput.Model

	chatInput    textinput.Model
	chatViewport viewport.Model
	// selected indexes the conversation entry ctrl+y copies; -1 follows the latest reply.
	selected  int
	clipboard io.Writer
	copied    string

	width  int
	height int
	ready  bool
}

func newPanelModel(ctx context.Context, ctrl *panel.Controller, listener *bus.Listener, clipboard io.Writer) panelModel {
	company := textinput.New()
	company.Placeholder = "Company"
	role := textinput.New()
	role.Placeholder = "Role"
	resume := textinput.New()
	resume.Placeholder = "path/to/resume.pdf"
	jd := textarea.New()
	jd.Placeholder = "Job description"
	jd.ShowLineNumbers = false

	chatInput := textinput.New()
	chatInput.Placeholder = "Ask about this role..."

	m := panelModel{
		ctrl:      ctrl,
		listener:  listener,
		ctx:       ctx,
		company:   company,
		role:      role,
		jd:        jd,
		resume:    resume,
		chatInput: chatInput,
		selected:  -1,
		clipboard: clipboard,
	}
	m.pullForm()
	m.focusField(fieldCompany)
	return m
}

func (m panelModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForPosting())
}

// waitForPosting blocks on the bus for the next extraction result.
func (m panelModel) waitForPosting() tea.Cmd {
	if m.listener == nil {
		return nil
	}
	l, ctx := m.listener, m.ctx
	return func() tea.Msg {
		p, err := l.Next(ctx)
		if err != nil {
			return listenStoppedMsg{err: err}
		}
		return postingMsg{posting: p}
	}
}

func (m panelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case postingMsg:
		m.ctrl.Deliver(msg.posting)
		m.pullForm()
		return m, m.waitForPosting()

	case listenStoppedMsg:
		return m, nil

	case extractRequestedMsg:
		return m, nil

	case actionDoneMsg:
		m.ctrl.Finish(msg.action, msg.err)
		return m, nil

	case chatDoneMsg:
		m.ctrl.FinishChat(m.ctx, msg.answer, msg.err)
		m.refreshChat()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+f":
			m.flip()
			return m, nil
		}
		if m.side == sideChat {
			return m.updateChat(msg)
		}
		return m.updateForm(msg)
	}

	return m, nil
}

func (m panelModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		m.focusField((m.focus + 1) % fieldCount)
		return m, nil
	case "shift+tab":
		m.focusField((m.focus + fieldCount - 1) % fieldCount)
		return m, nil
	case "ctrl+e":
		return m, m.requestExtraction()
	case "ctrl+u":
		return m, m.startAction(m.ctrl.UploadAction)
	case "ctrl+t":
		return m, m.startAction(m.ctrl.TailorAction)
	case "ctrl+d", "ctrl+p":
		format := model.FormatDOCX
		if msg.String() == "ctrl+p" {
			format = model.FormatPDF
		}
		return m, m.startAction(func() panel.Action { return m.ctrl.DownloadAction(format) })
	case "ctrl+a":
		return m, m.startAction(m.ctrl.AppliedAction)
	case "ctrl+s":
		return m, m.startAction(m.ctrl.MatchAction)
	}

	var cmd tea.Cmd
	switch m.focus {
	case fieldCompany:
		m.company, cmd = m.company.Update(msg)
	case fieldRole:
		m.role, cmd = m.role.Update(msg)
	case fieldJD:
		m.jd, cmd = m.jd.Update(msg)
	case fieldResume:
		m.resume, cmd = m.resume.Update(msg)
	}
	m.pushForm()
	return m, cmd
}

func (m panelModel) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m, m.sendChat()
	case "ctrl+y":
		m.copySelected()
		return m, nil
	case "ctrl+k":
		m.moveSelection(-1)
		return m, nil
	case "ctrl+j":
		m.moveSelection(1)
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.chatViewport, cmd = m.chatViewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

// startAction pushes the form into the controller, builds the action from
// it and, if validation passes, runs the call as a command.
func (m *panelModel) startAction(build func() panel.Action) tea.Cmd {
	m.pushForm()
	a := build()
	if err := m.ctrl.Begin(a); err != nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{action: a, err: a.Call(ctx)}
	}
}

func (m *panelModel) requestExtraction() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return extractRequestedMsg{err: ctrl.RequestExtraction(ctx)}
	}
}

// sendChat appends the question and clears the input before returning the
// command that asks the backend.
func (m *panelModel) sendChat() tea.Cmd {
	m.ctrl.SetChatInput(m.chatInput.Value())
	q, ok := m.ctrl.BeginChat(m.ctx)
	m.chatInput.SetValue(m.ctrl.Snapshot().ChatInput)
	if !ok {
		return nil
	}
	m.refreshChat()

	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		answer, err := ctrl.AskChat(ctx, q)
		return chatDoneMsg{answer: answer, err: err}
	}
}

// copySelected writes the selected assistant reply to the terminal
// clipboard. Other entries can't be copied.
func (m *panelModel) copySelected() {
	conv := m.ctrl.Snapshot().Conversation
	i := m.selectedIndex(conv)
	if i < 0 || !conv[i].Copyable() {
		return
	}
	if _, err := osc52.New(conv[i].Text).WriteTo(m.clipboard); err != nil {
		m.copied = "copy failed: " + err.Error()
		return
	}
	m.copied = "📋 Copied"
	m.refreshChat()
}

// selectedIndex resolves m.selected against conv, returning -1 when there
// is no assistant reply to select.
func (m panelModel) selectedIndex(conv []panel.Entry) int {
	if m.selected >= 0 && m.selected < len(conv) && conv[m.selected].Copyable() {
		return m.selected
	}
	for i := len(conv) - 1; i >= 0; i-- {
		if conv[i].Copyable() {
			return i
		}
	}
	return -1
}

// moveSelection steps to the previous or next assistant reply.
func (m *panelModel) moveSelection(delta int) {
	conv := m.ctrl.Snapshot().Conversation
	cur := m.selectedIndex(conv)
	if cur < 0 {
		return
	}
	for i := cur + delta; i >= 0 && i < len(conv); i += delta {
		if conv[i].Copyable() {
			m.selected = i
			break
		}
	}
	m.copied = ""
	m.refreshChat()
}

func (m *panelModel) flip() {
	if m.side == sideForm {
		m.side = sideChat
		m.blurAll()
		m.chatInput.Focus()
		m.refreshChat()
		return
	}
	m.side = sideForm
	m.chatInput.Blur()
	m.focusField(m.focus)
}

func (m *panelModel) blurAll() {
	m.company.Blur()
	m.role.Blur()
	m.jd.Blur()
	m.resume.Blur()
}

func (m *panelModel) focusField(f int) {
	m.blurAll()
	m.focus = f
	switch f {
	case fieldCompany:
		m.company.Focus()
	case fieldRole:
		m.role.Focus()
	case fieldJD:
		m.jd.Focus()
	case fieldResume:
		m.resume.Focus()
	}
}

// pushForm copies the inputs into the controller.
func (m *panelModel) pushForm() {
	m.ctrl.SetCompany(m.company.Value())
	m.ctrl.SetRole(m.role.Value())
	m.ctrl.SetJobDescription(m.jd.Value())
	m.ctrl.SetResumePath(m.resume.Value())
}

// pullForm copies the controller's fields into the inputs.
func (m *panelModel) pullForm() {
	s := m.ctrl.Snapshot()
	m.company.SetValue(s.Company)
	m.role.SetValue(s.Role)
	m.jd.SetValue(s.JobDescription)
	m.resume.SetValue(s.ResumePath)
}

func (m *panelModel) recalcLayout() {
	inner := max(m.width-4, 20)
	labelW := labelStyle.GetWidth()
	m.company.Width = inner - labelW - 2
	m.role.Width = inner - labelW - 2
	m.resume.Width = inner - labelW - 2
	m.jd.SetWidth(inner - labelW)
	m.jd.SetHeight(max(m.height-16, 3))
	m.chatInput.Width = inner - 2

	// Header (1) + borders (2) + input (1) + status bar (1) + hint (1).
	vpHeight := max(m.height-6, 3)
	if !m.ready {
		m.chatViewport = viewport.New(inner, vpHeight)
		m.ready = true
	} else {
		m.chatViewport.Width = inner
		m.chatViewport.Height = vpHeight
	}
	m.refreshChat()
}

func (m *panelModel) refreshChat() {
	s := m.ctrl.Snapshot()
	m.chatViewport.SetContent(renderConversation(s.Conversation, m.selectedIndex(s.Conversation), max(m.chatViewport.Width, 20)))
	m.chatViewport.GotoBottom()
}

func (m panelModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.side == sideChat {
		return m.viewChat()
	}
	return m.viewForm()
}

func (m panelModel) viewForm() string {
	s := m.ctrl.Snapshot()
	var b strings.Builder

	row := func(f int, view string) {
		st := labelStyle
		if f == m.focus {
			st = focusedLabelStyle
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, st.Render(fieldLabels[f]), " ", view))
		b.WriteByte('\n')
	}
	row(fieldCompany, m.company.View())
	row(fieldRole, m.role.View())
	row(fieldJD, m.jd.View())
	row(fieldResume, m.resume.View())

	b.WriteByte('\n')
	if s.DownloadsVisible {
		b.WriteString(hintStyle.Render("  downloads: ctrl+d DOCX  ctrl+p PDF") + "\n")
	}
	if match := renderMatch(s.Match); match != "" {
		b.WriteString(match + "\n")
	}
	b.WriteString(renderStatus(s.Status))

	content := activeBorderStyle.Width(m.width - 2).Render(b.String())
	help := " ctrl+e extract  ctrl+u upload  ctrl+t tailor  ctrl+a applied  ctrl+s score  tab next  ctrl+f chat  esc quit"
	return headerStyle.Render("tailorin") + "\n" + content + "\n" + statusBarStyle.Width(m.width).Render(help)
}

func (m panelModel) viewChat() string {
	box := inactiveBorderStyle.Width(m.width - 2).Render(m.chatViewport.View())
	hint := ""
	if m.copied != "" {
		hint = hintStyle.Render("  " + m.copied)
	}
	help := " enter send  ctrl+y copy reply  ctrl+k/ctrl+j select reply  pgup/pgdown scroll  ctrl+f form  esc quit"
	return headerStyle.Render("tailorin · chat") + "\n" + box + "\n" + m.chatInput.View() + hint + "\n" +
		statusBarStyle.Width(m.width).Render(help)
}

func renderConversation(conv []panel.Entry, selected, width int) string {
	if len(conv) == 0 {
		return hintStyle.Render("  ask anything about the role or your résumé")
	}
	var b strings.Builder
	for i, e := range conv {
		var label string
		switch e.Sender {
		case panel.SenderYou:
			label = youStyle.Render("You")
		case panel.SenderAssistant:
			label = assistantStyle.Render("Assistant")
		default:
			label = errorEntryStyle.Render(string(e.Sender))
		}
		text := wordWrap(e.Text, width-2)
		line := fmt.Sprintf("%s  %s\n%s", label, hintStyle.Render(e.At.Format("15:04")), text)
		if e.Copyable() {
			line += " 📋"
		}
		if i == selected {
			line = selectedEntryStyle.Render(line)
		}
		b.WriteString(line)
		if i < len(conv)-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func wordWrap(text string, width int) string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if len(line)+1+len(w) <= width {
				line += " " + w
			} else {
				out = append(out, line)
				line = w
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// RunPanel launches the interactive panel in the alternate screen. It
// returns when the user quits.
func RunPanel(ctx context.Context, ctrl *panel.Controller, listener *bus.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newPanelModel(ctx, ctrl, listener, os.Stderr)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
