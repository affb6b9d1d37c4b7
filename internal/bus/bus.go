// Package bus carries extractor results from a tab back to the panel.
//
// Delivery is fire-and-forget and at-most-once: Send never blocks, and a
// message that doesn't fit in the buffer is dropped. Nothing is acknowledged
// or retried.
package bus

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/amishk599/tailorin/internal/model"
)

// Ensure Bus implements model.Sender.
var _ model.Sender = (*Bus)(nil)

// Bus is a buffered channel of messages with a single consumer.
type Bus struct {
	ch     chan model.Message
	logger *slog.Logger
}

// New returns a bus that holds up to buffer undelivered messages.
func New(buffer int, logger *slog.Logger) *Bus {
	if buffer < 1 {
		buffer = 1
	}
	return &Bus{
		ch:     make(chan model.Message, buffer),
		logger: logger,
	}
}

// NewRequestID mints an identifier for one extraction request.
func NewRequestID() string {
	return uuid.NewString()
}

// Send enqueues msg without blocking. It returns false if the message was dropped.
func (b *Bus) Send(msg model.Message) bool {
	select {
	case b.ch <- msg:
		return true
	default:
		b.logger.Warn("bus full, message dropped", "type", msg.Type, "request_id", msg.RequestID)
		return false
	}
}

// Listener returns the consumer side of the bus. Only one listener should
// read from a bus at a time.
func (b *Bus) Listener() *Listener {
	return &Listener{ch: b.ch, logger: b.logger}
}

// Listener yields job postings from jd_data messages and skips everything else.
type Listener struct {
	ch     <-chan model.Message
	logger *slog.Logger
}

// Next blocks until the next jd_data message arrives or ctx is done.
// There is no timeout beyond ctx.
func (l *Listener) Next(ctx context.Context) (model.JobPosting, error) {
	for {
		select {
		case <-ctx.Done():
			return model.JobPosting{}, ctx.Err()
		case msg := <-l.ch:
			if msg.Type != model.MessageTypeJobData {
				l.logger.Debug("ignoring message", "type", msg.Type)
				continue
			}
			l.logger.Debug("job data received", "request_id", msg.RequestID)
			return msg.Posting(), nil
		}
	}
}
