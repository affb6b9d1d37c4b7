package panel

import (
	"context"
	"strings"
	"time"
)

// Sender tags who a conversation entry came from.
type Sender string

const (
	SenderYou       Sender = "You"
	SenderAssistant Sender = "Assistant"
	SenderError     Sender = "Error"
)

// Entry is one line of the chat conversation.
type Entry struct {
	Sender Sender
	Text   string
	At     time.Time
}

// Copyable reports whether the entry offers copy-to-clipboard. Only
// assistant replies do.
func (e Entry) Copyable() bool {
	return e.Sender == SenderAssistant
}

const chatFallback = "Failed to get answer"

// SetChatInput replaces the pending chat input.
func (c *Controller) SetChatInput(v string) {
	c.mu.Lock()
	c.chatInput = v
	c.mu.Unlock()
}

// BeginChat takes the pending input as a question. Blank input is ignored
// and reported as !ok. Otherwise the question is appended as a You entry
// and the input is cleared before anything is sent.
func (c *Controller) BeginChat(ctx context.Context) (question string, ok bool) {
	c.mu.Lock()
	question = strings.TrimSpace(c.chatInput)
	if question == "" {
		c.mu.Unlock()
		return "", false
	}
	e := c.appendLocked(SenderYou, question)
	c.chatInput = ""
	c.mu.Unlock()

	c.record(ctx, e)
	return question, true
}

// AskChat sends question to the backend.
func (c *Controller) AskChat(ctx context.Context, question string) (string, error) {
	return c.backend.Chat(ctx, question)
}

// FinishChat appends the assistant's answer, or an Error entry for err.
func (c *Controller) FinishChat(ctx context.Context, answer string, err error) {
	var e Entry
	c.mu.Lock()
	if err != nil {
		c.logger.Warn("chat failed", "error", err)
		e = c.appendLocked(SenderError, chatError(err))
	} else {
		e = c.appendLocked(SenderAssistant, answer)
	}
	c.mu.Unlock()

	c.record(ctx, e)
}

// SendChat runs a full chat turn and returns the backend error, if any.
// Blank input is a no-op.
func (c *Controller) SendChat(ctx context.Context) error {
	q, ok := c.BeginChat(ctx)
	if !ok {
		return nil
	}
	answer, err := c.AskChat(ctx, q)
	c.FinishChat(ctx, answer, err)
	return err
}

func (c *Controller) appendLocked(s Sender, text string) Entry {
	e := Entry{Sender: s, Text: text, At: c.now()}
	c.conversation = append(c.conversation, e)
	return e
}

// record writes e to the transcript. Transcript failures never disturb the chat.
func (c *Controller) record(ctx context.Context, e Entry) {
	if c.transcript == nil {
		return
	}
	if err := c.transcript.Append(ctx, e); err != nil {
		c.logger.Warn("transcript append failed", "sender", e.Sender, "error", err)
	}
}

// chatError is the text of an Error entry. It keeps the same distinction
// between network and server failures as the status line.
func chatError(err error) string {
	return describe(err, chatFallback)
}
