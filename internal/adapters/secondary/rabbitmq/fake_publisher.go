package rabbitmq

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lorrc/user-registry/internal/core/ports"
)

// FakePublisher logs notifications instead of publishing them.
type FakePublisher struct {
	mu        sync.Mutex
	published []Envelope
	logger    *slog.Logger
}

var _ ports.Sender = (*FakePublisher)(nil)

func NewFakePublisher(logger *slog.Logger) *FakePublisher {
	return &FakePublisher{logger: logger.With("component", "queue_sender")}
}

func (f *FakePublisher) Send(ctx context.Context, message, recipient string) error {
	f.mu.Lock()
	f.published = append(f.published, Envelope{Message: message, Recipient: recipient})
	f.mu.Unlock()

	f.logger.InfoContext(ctx, "mock queue message published", "recipient", recipient, "message", message)
	return nil
}

// Published returns a copy of everything accepted so far.
func (f *FakePublisher) Published() []Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Envelope, len(f.published))
	copy(out, f.published)
	return out
}
