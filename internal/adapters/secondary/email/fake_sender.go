package email

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lorrc/user-registry/internal/core/ports"
)

// Delivery is one notification accepted by a FakeSender.
type Delivery struct {
	Message   string
	Recipient string
}

// FakeSender logs emails instead of sending them.
type FakeSender struct {
	mu     sync.Mutex
	sent   []Delivery
	logger *slog.Logger
}

var _ ports.Sender = (*FakeSender)(nil)

func NewFakeSender(logger *slog.Logger) *FakeSender {
	return &FakeSender{logger: logger.With("component", "email_sender")}
}

func (f *FakeSender) Send(ctx context.Context, message, recipient string) error {
	f.mu.Lock()
	f.sent = append(f.sent, Delivery{Message: message, Recipient: recipient})
	f.mu.Unlock()

	f.logger.InfoContext(ctx, "mock email sent", "to_email", recipient, "message", message)
	return nil
}

// Sent returns a copy of everything accepted so far.
func (f *FakeSender) Sent() []Delivery {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Delivery, len(f.sent))
	copy(out, f.sent)
	return out
}
